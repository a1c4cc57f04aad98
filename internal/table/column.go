package table

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

type ColumnType string

const (
	PlainColumn    ColumnType = "plain"
	CheckboxColumn ColumnType = "checkbox"
	ActionColumn   ColumnType = "action"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection defaults to Asc for anything but "desc".
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

func (d Direction) SQL() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// Column declares how one field is displayed, searched, ordered, filtered and
// exported. Build columns with NewColumn, NewCheckboxColumn or NewActionColumn and
// chain the setters.
type Column struct {
	name  string
	label string
	path  ColumnPath
	kind  ColumnType
	width string

	sortable   bool
	searchable bool
	toggable   bool
	exportable bool
	visible    bool

	render func(Record) any
	order  func(Direction) string
	search func(term string) sq.Sqlizer
	filter func(value string) sq.Sqlizer
	icon   func(Record) string
	export func(Record) any

	checkValue Value
	checked    func(Record) bool
	disabled   func(Record) bool

	actions []ActionItem
}

func NewColumn(name, label string) *Column {
	return &Column{
		name:       name,
		label:      label,
		path:       ParsePath(name),
		kind:       PlainColumn,
		sortable:   true,
		searchable: true,
		toggable:   true,
		exportable: true,
		visible:    true,
	}
}

// NewCheckboxColumn adds a selection column whose value identifies the row.
func NewCheckboxColumn(name, label string, value Value) *Column {
	return &Column{
		name:       name,
		label:      label,
		path:       ParsePath(name),
		kind:       CheckboxColumn,
		visible:    true,
		checkValue: value,
	}
}

// NewActionColumn adds a column carrying per-row actions.
func NewActionColumn(name, label string, items ...ActionItem) *Column {
	return &Column{
		name:    name,
		label:   label,
		path:    ParsePath(name),
		kind:    ActionColumn,
		visible: true,
		actions: items,
	}
}

func (c *Column) Sortable(v bool) *Column   { c.sortable = v; return c }
func (c *Column) Searchable(v bool) *Column { c.searchable = v; return c }
func (c *Column) Toggable(v bool) *Column   { c.toggable = v; return c }
func (c *Column) Exportable(v bool) *Column { c.exportable = v; return c }
func (c *Column) Width(w string) *Column    { c.width = w; return c }

// Hidden makes the column invisible until the user toggles it on.
func (c *Column) Hidden() *Column { c.visible = false; return c }

func (c *Column) RenderUsing(fn func(Record) any) *Column { c.render = fn; return c }

// OrderUsing replaces the ORDER BY expression. The returned string must include
// the direction.
func (c *Column) OrderUsing(fn func(Direction) string) *Column { c.order = fn; return c }

func (c *Column) SearchUsing(fn func(term string) sq.Sqlizer) *Column { c.search = fn; return c }

func (c *Column) FilterUsing(fn func(value string) sq.Sqlizer) *Column { c.filter = fn; return c }

func (c *Column) IconUsing(fn func(Record) string) *Column { c.icon = fn; return c }

func (c *Column) ExportUsing(fn func(Record) any) *Column { c.export = fn; return c }

func (c *Column) CheckedUsing(fn func(Record) bool) *Column { c.checked = fn; return c }

func (c *Column) DisabledUsing(fn func(Record) bool) *Column { c.disabled = fn; return c }

func (c *Column) Name() string       { return c.name }
func (c *Column) Label() string      { return c.label }
func (c *Column) Path() ColumnPath   { return c.path }
func (c *Column) Type() ColumnType   { return c.kind }
func (c *Column) IsSortable() bool   { return c.sortable }
func (c *Column) IsSearchable() bool { return c.searchable }
func (c *Column) IsToggable() bool   { return c.toggable }
func (c *Column) IsExportable() bool { return c.exportable }
func (c *Column) IsVisible() bool    { return c.visible }

func (c *Column) RowActions() []ActionItem {
	return c.actions
}

// Joined reports whether the column is read through a relation join.
func (c *Column) Joined() bool {
	return c.kind == PlainColumn && c.path.IsRelation()
}

func (c *Column) CustomOrder() func(Direction) string         { return c.order }
func (c *Column) CustomSearch() func(term string) sq.Sqlizer  { return c.search }
func (c *Column) CustomFilter() func(value string) sq.Sqlizer { return c.filter }

// Value reads the raw field for the column, nil when a relation hop is absent.
func (c *Column) Value(rec Record) any {
	return rec.Get(c.name)
}

// Render is the display value for the column.
func (c *Column) Render(rec Record) any {
	if c.render != nil {
		return c.render(rec)
	}
	return c.Value(rec)
}

func (c *Column) Icon(rec Record) (string, bool) {
	if c.icon == nil {
		return "", false
	}
	return c.icon(rec), true
}

// ExportValue is the cell written to spreadsheets.
func (c *Column) ExportValue(rec Record) any {
	if c.export != nil {
		return c.export(rec)
	}
	return c.Render(rec)
}

// CheckboxField is the field holding the checkbox value, empty when computed.
func (c *Column) CheckboxField() string {
	return c.checkValue.Field()
}

func (c *Column) CheckboxValue(rec Record) any {
	return c.checkValue.Resolve(rec)
}

func (c *Column) Checked(rec Record) bool {
	return c.checked != nil && c.checked(rec)
}

func (c *Column) Disabled(rec Record) bool {
	return c.disabled != nil && c.disabled(rec)
}

func (c *Column) String() string {
	return fmt.Sprintf("%s(%s) %q sort: %t search: %t", c.name, c.kind, c.label, c.sortable, c.searchable)
}

// ColumnDescriptor is the serialized form sent to the client.
type ColumnDescriptor struct {
	Name       string     `json:"name"`
	Label      string     `json:"label"`
	Type       ColumnType `json:"type"`
	Sortable   bool       `json:"sortable"`
	Searchable bool       `json:"searchable"`
	Toggable   bool       `json:"toggable"`
	Exportable bool       `json:"exportable"`
	Visible    bool       `json:"visible"`
	Width      string     `json:"width,omitempty"`
	HasIcon    bool       `json:"hasIcon,omitempty"`
}

func (c *Column) Descriptor() ColumnDescriptor {
	return ColumnDescriptor{
		Name:       c.name,
		Label:      c.label,
		Type:       c.kind,
		Sortable:   c.sortable,
		Searchable: c.searchable,
		Toggable:   c.toggable,
		Exportable: c.exportable,
		Visible:    c.visible,
		Width:      c.width,
		HasIcon:    c.icon != nil,
	}
}
