package table

import (
	"errors"
	"fmt"
	"strings"
)

type ExportFormat string

const (
	CSV   ExportFormat = "csv"
	Excel ExportFormat = "excel"
)

func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case CSV:
		return CSV, nil
	case Excel, "xlsx":
		return Excel, nil
	}
	return "", fmt.Errorf("%w: export type %q (want csv or excel)", ErrInvalidEnum, s)
}

func (f ExportFormat) Extension() string {
	if f == Excel {
		return "xlsx"
	}
	return "csv"
}

type ColumnScope string

const (
	VisibleColumns ColumnScope = "visible"
	AllColumns     ColumnScope = "all"
)

func ParseColumnScope(s string) (ColumnScope, error) {
	switch ColumnScope(strings.ToLower(strings.TrimSpace(s))) {
	case VisibleColumns:
		return VisibleColumns, nil
	case AllColumns:
		return AllColumns, nil
	}
	return "", fmt.Errorf("%w: export columns %q (want visible or all)", ErrInvalidEnum, s)
}

type Export struct {
	Enabled  bool
	Format   ExportFormat
	Columns  ColumnScope
	FileName string
}

// Table is the immutable descriptor produced by Builder.Build.
type Table struct {
	id          string
	source      *Source
	columns     []*Column
	columnIndex map[string]*Column
	filters     []*Filter
	filterIndex map[string]*Filter
	actions     []ActionItem
	actionIndex map[string]*Action
	rowActions  map[string]map[string]*Action

	export       Export
	defaultSort  string
	defaultDir   Direction
	searchFields []ColumnPath
	pageSize     int
	pageSizes    []int
}

func (t *Table) ID() string                 { return t.id }
func (t *Table) Source() *Source            { return t.source }
func (t *Table) Columns() []*Column         { return t.columns }
func (t *Table) Filters() []*Filter         { return t.filters }
func (t *Table) Actions() []ActionItem      { return t.actions }
func (t *Table) Export() Export             { return t.export }
func (t *Table) SearchFields() []ColumnPath { return t.searchFields }
func (t *Table) PageSize() int              { return t.pageSize }
func (t *Table) PageSizes() []int           { return t.pageSizes }

func (t *Table) DefaultSort() (string, Direction) {
	return t.defaultSort, t.defaultDir
}

func (t *Table) Column(name string) (*Column, bool) {
	c, ok := t.columnIndex[name]
	return c, ok
}

func (t *Table) Filter(name string) (*Filter, bool) {
	f, ok := t.filterIndex[name]
	return f, ok
}

// Action looks up a bulk action by name, group members included.
func (t *Table) Action(name string) (*Action, bool) {
	a, ok := t.actionIndex[name]
	return a, ok
}

// RowAction looks up a per-row action declared on an action column.
func (t *Table) RowAction(column, name string) (*Action, bool) {
	byName, ok := t.rowActions[column]
	if !ok {
		return nil, false
	}
	a, ok := byName[name]
	return a, ok
}

// CheckboxColumn returns the first checkbox column, which supplies row ids.
func (t *Table) CheckboxColumn() *Column {
	for _, c := range t.columns {
		if c.kind == CheckboxColumn {
			return c
		}
	}
	return nil
}

// IDField is the base-table field row ids are read from: the checkbox field when
// the table has a static checkbox on the base table, else the primary key. ok is
// false when ids are computed or come through a relation, so they can only be
// matched against fetched records.
func (t *Table) IDField() (field string, ok bool) {
	cb := t.CheckboxColumn()
	if cb == nil {
		return t.source.PrimaryKey, true
	}
	field = cb.CheckboxField()
	if field == "" || strings.Contains(field, ".") {
		return "", false
	}
	return field, true
}

// RowID is the id a serialized row carries: the checkbox value when the table
// has a checkbox column, else the primary key.
func (t *Table) RowID(rec Record) any {
	if cb := t.CheckboxColumn(); cb != nil {
		return cb.CheckboxValue(rec)
	}
	return rec.Get(t.source.PrimaryKey)
}

// Builder collects the declarative table definition.
type Builder struct {
	t            *Table
	searchFields []string
}

func New(id string, source *Source) *Builder {
	return &Builder{t: &Table{
		id:     id,
		source: source,
		export: Export{Format: CSV, Columns: VisibleColumns, FileName: id},
	}}
}

func (b *Builder) Columns(cols ...*Column) *Builder {
	b.t.columns = append(b.t.columns, cols...)
	return b
}

func (b *Builder) Filters(filters ...*Filter) *Builder {
	b.t.filters = append(b.t.filters, filters...)
	return b
}

func (b *Builder) Actions(items ...ActionItem) *Builder {
	b.t.actions = append(b.t.actions, items...)
	return b
}

func (b *Builder) Exportable(v bool) *Builder {
	b.t.export.Enabled = v
	return b
}

func (b *Builder) ExportFormat(f ExportFormat) *Builder {
	b.t.export.Format = f
	return b
}

func (b *Builder) ExportColumns(scope ColumnScope) *Builder {
	b.t.export.Columns = scope
	return b
}

func (b *Builder) ExportFileName(base string) *Builder {
	b.t.export.FileName = base
	return b
}

func (b *Builder) DefaultSort(column string, dir Direction) *Builder {
	b.t.defaultSort = column
	b.t.defaultDir = dir
	return b
}

// SearchFields adds fields matched by the global search besides the searchable
// columns. Dotted names traverse relations.
func (b *Builder) SearchFields(fields ...string) *Builder {
	b.searchFields = append(b.searchFields, fields...)
	return b
}

func (b *Builder) PageSize(n int) *Builder {
	b.t.pageSize = n
	return b
}

func (b *Builder) PageSizes(sizes ...int) *Builder {
	b.t.pageSizes = append([]int(nil), sizes...)
	return b
}

// Build validates the definition. Column, filter and action names must be unique;
// action names are unique across groups because dispatch resolves by name alone.
func (b *Builder) Build() (*Table, error) {
	t := b.t
	if t.source == nil || t.source.Table == "" {
		return nil, fmt.Errorf("table %q: %w", t.id, ErrNoSource)
	}

	var errs []error

	// action names are unique across bulk actions and every action column
	actionOwner := make(map[string]string)

	t.columnIndex = make(map[string]*Column, len(t.columns))
	t.rowActions = make(map[string]map[string]*Action)
	for _, c := range t.columns {
		if _, dup := t.columnIndex[c.name]; dup {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.name))
			continue
		}
		t.columnIndex[c.name] = c

		if c.Joined() {
			hops, err := t.source.Resolve(c.path)
			if err != nil {
				errs = append(errs, fmt.Errorf("column %q: %w", c.name, err))
			} else if !ToOne(hops) {
				errs = append(errs, fmt.Errorf("%w: %q", ErrToManyColumn, c.name))
			}
		}

		if c.kind == ActionColumn {
			byName := make(map[string]*Action)
			for _, a := range Flatten(c.actions) {
				where := fmt.Sprintf("column %q", c.name)
				if prev, dup := actionOwner[a.Name]; dup {
					errs = append(errs, fmt.Errorf("%w: %q in %s, already declared in %s", ErrDuplicateAction, a.Name, where, prev))
					continue
				}
				actionOwner[a.Name] = where
				byName[a.Name] = a
			}
			t.rowActions[c.name] = byName
		}
	}

	t.filterIndex = make(map[string]*Filter, len(t.filters))
	for _, f := range t.filters {
		if _, dup := t.filterIndex[f.name]; dup {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateFilter, f.name))
			continue
		}
		if _, err := t.source.Resolve(f.field); err != nil {
			errs = append(errs, fmt.Errorf("filter %q: %w", f.name, err))
		}
		t.filterIndex[f.name] = f
	}

	t.actionIndex = make(map[string]*Action)
	for _, a := range Flatten(t.actions) {
		if prev, dup := actionOwner[a.Name]; dup {
			errs = append(errs, fmt.Errorf("%w: %q, already declared in %s", ErrDuplicateAction, a.Name, prev))
			continue
		}
		actionOwner[a.Name] = "bulk actions"
		t.actionIndex[a.Name] = a
	}

	for _, name := range b.searchFields {
		p := ParsePath(name)
		if _, err := t.source.Resolve(p); err != nil {
			errs = append(errs, fmt.Errorf("search field %q: %w", name, err))
			continue
		}
		t.searchFields = append(t.searchFields, p)
	}

	if t.defaultSort != "" {
		if _, ok := t.columnIndex[t.defaultSort]; !ok {
			errs = append(errs, fmt.Errorf("default sort: %w: %q", ErrUnknownColumn, t.defaultSort))
		}
	}
	if t.defaultDir == "" {
		t.defaultDir = Asc
	}

	if _, err := ParseExportFormat(string(t.export.Format)); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseColumnScope(string(t.export.Columns)); err != nil {
		errs = append(errs, err)
	}
	if t.export.FileName == "" {
		t.export.FileName = t.id
	}

	if t.pageSize < 0 {
		t.pageSize = 0
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("table %q: %w", t.id, errors.Join(errs...))
	}
	return t, nil
}

// MustBuild is Build for definitions known at compile time.
func (b *Builder) MustBuild() *Table {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}
