package table

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Option is one selectable value of a filter. Query, when set, is applied for
// this value instead of the plain membership test.
type Option struct {
	Value string
	Label string
	Icon  string
	Query sq.Sqlizer
}

type Filter struct {
	name     string
	label    string
	field    ColumnPath
	options  []Option
	multiple bool
	query    func(values []string) sq.Sqlizer
}

// NewFilter filters on the field with the same name unless Field says otherwise.
func NewFilter(name, label string) *Filter {
	return &Filter{
		name:  name,
		label: label,
		field: ParsePath(name),
	}
}

func (f *Filter) Options(opts ...Option) *Filter {
	f.options = append(f.options, opts...)
	return f
}

func (f *Filter) Multiple() *Filter {
	f.multiple = true
	return f
}

func (f *Filter) Field(name string) *Filter {
	f.field = ParsePath(name)
	return f
}

// QueryUsing sets a predicate applied with every submitted value, in addition to
// any option predicates.
func (f *Filter) QueryUsing(fn func(values []string) sq.Sqlizer) *Filter {
	f.query = fn
	return f
}

func (f *Filter) Name() string                            { return f.name }
func (f *Filter) Label() string                           { return f.label }
func (f *Filter) FieldPath() ColumnPath                   { return f.field }
func (f *Filter) IsMultiple() bool                        { return f.multiple }
func (f *Filter) Query() func(values []string) sq.Sqlizer { return f.query }

func (f *Filter) Option(value string) (Option, bool) {
	for _, opt := range f.options {
		if opt.Value == value {
			return opt, true
		}
	}
	return Option{}, false
}

type OptionDescriptor struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
}

type FilterDescriptor struct {
	Name     string             `json:"name"`
	Label    string             `json:"label"`
	Multiple bool               `json:"multiple"`
	Options  []OptionDescriptor `json:"options"`
}

func (f *Filter) Descriptor() FilterDescriptor {
	opts := make([]OptionDescriptor, 0, len(f.options))
	for _, o := range f.options {
		opts = append(opts, OptionDescriptor{Value: o.Value, Label: o.Label, Icon: o.Icon})
	}
	return FilterDescriptor{
		Name:     f.name,
		Label:    f.label,
		Multiple: f.multiple,
		Options:  opts,
	}
}

// SplitValues normalizes a submitted filter value. "a,b" and ["a","b"] give the
// same result; blanks are dropped.
func SplitValues(v any) []string {
	var raw []string
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		raw = strings.Split(val, ",")
	case []string:
		raw = val
	case []any:
		for _, item := range val {
			if item == nil {
				continue
			}
			raw = append(raw, SplitValues(item)...)
		}
	default:
		raw = []string{fmt.Sprint(val)}
	}

	values := make([]string, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r != "" {
			values = append(values, r)
		}
	}
	return values
}
