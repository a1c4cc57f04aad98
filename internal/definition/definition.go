package definition

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML document declaring sources and the tables built on them.
type File struct {
	Sources map[string]SourceDef `yaml:"sources"`
	Tables  []TableDef           `yaml:"tables"`
}

type SourceDef struct {
	Table      string                 `yaml:"table"`
	PrimaryKey string                 `yaml:"primary_key,omitempty"`
	Relations  map[string]RelationDef `yaml:"relations,omitempty"`
}

type RelationDef struct {
	Kind       string `yaml:"kind"`
	Source     string `yaml:"source"`
	ForeignKey string `yaml:"foreign_key"`
	OwnerKey   string `yaml:"owner_key,omitempty"`
}

type TableDef struct {
	ID           string      `yaml:"id"`
	Source       string      `yaml:"source"`
	Columns      []ColumnDef `yaml:"columns"`
	Filters      []FilterDef `yaml:"filters,omitempty"`
	Actions      []ActionDef `yaml:"actions,omitempty"`
	DefaultSort  *SortDef    `yaml:"default_sort,omitempty"`
	SearchFields []string    `yaml:"search_fields,omitempty"`
	PageSize     int         `yaml:"page_size,omitempty"`
	PageSizes    []int       `yaml:"page_sizes,omitempty"`
	Export       *ExportDef  `yaml:"export,omitempty"`
}

type ColumnDef struct {
	Name       string            `yaml:"name"`
	Label      string            `yaml:"label"`
	Type       string            `yaml:"type,omitempty"`
	Sortable   *bool             `yaml:"sortable,omitempty"`
	Searchable *bool             `yaml:"searchable,omitempty"`
	Toggable   *bool             `yaml:"toggable,omitempty"`
	Exportable *bool             `yaml:"exportable,omitempty"`
	Hidden     bool              `yaml:"hidden,omitempty"`
	Width      string            `yaml:"width,omitempty"`
	Icons      map[string]string `yaml:"icons,omitempty"`

	// Value is the field supplying checkbox values.
	Value string `yaml:"value,omitempty"`
	// DisabledWhen disables checkboxes whose row has field == value.
	DisabledWhen map[string]string `yaml:"disabled_when,omitempty"`

	Actions []ActionDef `yaml:"actions,omitempty"`
}

type FilterDef struct {
	Name     string      `yaml:"name"`
	Label    string      `yaml:"label"`
	Field    string      `yaml:"field,omitempty"`
	Multiple bool        `yaml:"multiple,omitempty"`
	Options  []OptionDef `yaml:"options,omitempty"`
}

type OptionDef struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
	Icon  string `yaml:"icon,omitempty"`
}

// ActionDef is an action, or a group when Actions is set.
type ActionDef struct {
	Name    string         `yaml:"name"`
	Label   string         `yaml:"label"`
	Icon    string         `yaml:"icon,omitempty"`
	Style   string         `yaml:"style,omitempty"`
	Builtin string         `yaml:"builtin,omitempty"`
	URL     string         `yaml:"url,omitempty"`
	Confirm *ConfirmDef    `yaml:"confirm,omitempty"`
	Props   map[string]any `yaml:"props,omitempty"`
	Actions []ActionDef    `yaml:"actions,omitempty"`
}

type ConfirmDef struct {
	Title   string `yaml:"title"`
	Message string `yaml:"message"`
	Confirm string `yaml:"confirm,omitempty"`
	Cancel  string `yaml:"cancel,omitempty"`
}

type SortDef struct {
	Column    string `yaml:"column"`
	Direction string `yaml:"direction,omitempty"`
}

type ExportDef struct {
	Enabled  bool   `yaml:"enabled"`
	Format   string `yaml:"format,omitempty"`
	Columns  string `yaml:"columns,omitempty"`
	FileName string `yaml:"file_name,omitempty"`
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read table definitions: %w", err)
	}
	return Parse(data)
}

// Parse decodes a definitions document, rejecting unknown keys.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse table definitions: %w", err)
	}
	return &f, nil
}

// ApplyExportDefaults fills the export format and column scope of every
// exportable table that leaves them unset.
func (f *File) ApplyExportDefaults(format, columns string) {
	for i := range f.Tables {
		e := f.Tables[i].Export
		if e == nil {
			continue
		}
		if e.Format == "" {
			e.Format = format
		}
		if e.Columns == "" {
			e.Columns = columns
		}
	}
}
