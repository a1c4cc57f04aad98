package definition

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Rana718/tablo/internal/database"
	"github.com/Rana718/tablo/internal/table"
)

var (
	ErrUnknownSource  = errors.New("unknown source")
	ErrUnknownBuiltin = errors.New("unknown builtin action")
	ErrRelationID     = errors.New("rows identified through a relation cannot be deleted")
)

// Registry holds the built tables by id.
type Registry struct {
	tables map[string]*table.Table
}

func (r *Registry) Get(id string) (*table.Table, bool) {
	t, ok := r.tables[id]
	return t, ok
}

// IDs lists the table ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.tables))
	for id := range r.tables {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) Len() int {
	return len(r.tables)
}

// Build turns the definitions into validated tables. Builtin actions run their
// statements against db.
func (f *File) Build(db *database.DB) (*Registry, error) {
	sources, err := f.buildSources()
	if err != nil {
		return nil, err
	}

	reg := &Registry{tables: make(map[string]*table.Table, len(f.Tables))}
	var errs []error
	for _, def := range f.Tables {
		if _, dup := reg.tables[def.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate table id %q", def.ID))
			continue
		}
		t, err := def.build(sources, db)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		reg.tables[def.ID] = t
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return reg, nil
}

// buildSources creates every source first so relations may point anywhere,
// cycles included.
func (f *File) buildSources() (map[string]*table.Source, error) {
	sources := make(map[string]*table.Source, len(f.Sources))
	for name, def := range f.Sources {
		tableName := def.Table
		if tableName == "" {
			tableName = name
		}
		s := table.NewSource(tableName)
		if def.PrimaryKey != "" {
			s.WithPrimaryKey(def.PrimaryKey)
		}
		sources[name] = s
	}

	for name, def := range f.Sources {
		s := sources[name]
		for relName, rel := range def.Relations {
			related, ok := sources[rel.Source]
			if !ok {
				return nil, fmt.Errorf("source %q relation %q: %w %q", name, relName, ErrUnknownSource, rel.Source)
			}
			switch table.RelationKind(rel.Kind) {
			case table.BelongsTo:
				s.BelongsTo(relName, related, rel.ForeignKey, rel.OwnerKey)
			case table.HasOne:
				s.HasOne(relName, related, rel.ForeignKey, rel.OwnerKey)
			case table.HasMany:
				s.HasMany(relName, related, rel.ForeignKey, rel.OwnerKey)
			default:
				return nil, fmt.Errorf("source %q relation %q: %w: kind %q", name, relName, table.ErrInvalidEnum, rel.Kind)
			}
		}
	}
	return sources, nil
}

func (def TableDef) build(sources map[string]*table.Source, db *database.DB) (*table.Table, error) {
	srcName := def.Source
	if srcName == "" {
		srcName = def.ID
	}
	src, ok := sources[srcName]
	if !ok {
		return nil, fmt.Errorf("table %q: %w %q", def.ID, ErrUnknownSource, srcName)
	}

	sc := scope{tableID: def.ID, src: src, db: db, idField: def.idField(src)}
	b := table.New(def.ID, src)
	for _, cd := range def.Columns {
		col, err := cd.build(sc)
		if err != nil {
			return nil, fmt.Errorf("table %q: %w", def.ID, err)
		}
		b.Columns(col)
	}

	for _, fd := range def.Filters {
		f := table.NewFilter(fd.Name, fd.Label)
		if fd.Field != "" {
			f.Field(fd.Field)
		}
		if fd.Multiple {
			f.Multiple()
		}
		for _, od := range fd.Options {
			f.Options(table.Option{Value: od.Value, Label: od.Label, Icon: od.Icon})
		}
		b.Filters(f)
	}

	for _, ad := range def.Actions {
		item, err := ad.build(sc)
		if err != nil {
			return nil, fmt.Errorf("table %q: %w", def.ID, err)
		}
		b.Actions(item)
	}

	if def.DefaultSort != nil {
		b.DefaultSort(def.DefaultSort.Column, table.ParseDirection(def.DefaultSort.Direction))
	}
	b.SearchFields(def.SearchFields...)
	b.PageSize(def.PageSize)
	if len(def.PageSizes) > 0 {
		b.PageSizes(def.PageSizes...)
	}

	if e := def.Export; e != nil {
		b.Exportable(e.Enabled)
		if e.Format != "" {
			format, err := table.ParseExportFormat(e.Format)
			if err != nil {
				return nil, fmt.Errorf("table %q: %w", def.ID, err)
			}
			b.ExportFormat(format)
		}
		if e.Columns != "" {
			scope, err := table.ParseColumnScope(e.Columns)
			if err != nil {
				return nil, fmt.Errorf("table %q: %w", def.ID, err)
			}
			b.ExportColumns(scope)
		}
		if e.FileName != "" {
			b.ExportFileName(e.FileName)
		}
	}

	return b.Build()
}

// scope is what column and action definitions of one table are built against.
type scope struct {
	tableID string
	src     *table.Source
	db      *database.DB
	// idField holds the row ids the client sends back.
	idField string
}

// idField is the checkbox value field, or the primary key without a checkbox.
func (def TableDef) idField(src *table.Source) string {
	for _, cd := range def.Columns {
		if cd.Type == string(table.CheckboxColumn) && cd.Value != "" {
			return cd.Value
		}
	}
	return src.PrimaryKey
}

func (cd ColumnDef) build(sc scope) (*table.Column, error) {
	var col *table.Column
	switch cd.Type {
	case "", string(table.PlainColumn):
		col = table.NewColumn(cd.Name, cd.Label)
	case string(table.CheckboxColumn):
		field := cd.Value
		if field == "" {
			field = sc.src.PrimaryKey
		}
		col = table.NewCheckboxColumn(cd.Name, cd.Label, table.Static(field))
		if len(cd.DisabledWhen) > 0 {
			when := cd.DisabledWhen
			col.DisabledUsing(func(rec table.Record) bool {
				for field, value := range when {
					if fmt.Sprint(rec.Get(field)) == value {
						return true
					}
				}
				return false
			})
		}
	case string(table.ActionColumn):
		items := make([]table.ActionItem, 0, len(cd.Actions))
		for _, ad := range cd.Actions {
			item, err := ad.build(sc)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", cd.Name, err)
			}
			items = append(items, item)
		}
		col = table.NewActionColumn(cd.Name, cd.Label, items...)
	default:
		return nil, fmt.Errorf("column %q: %w: type %q", cd.Name, table.ErrInvalidEnum, cd.Type)
	}

	if cd.Sortable != nil {
		col.Sortable(*cd.Sortable)
	}
	if cd.Searchable != nil {
		col.Searchable(*cd.Searchable)
	}
	if cd.Toggable != nil {
		col.Toggable(*cd.Toggable)
	}
	if cd.Exportable != nil {
		col.Exportable(*cd.Exportable)
	}
	if cd.Hidden {
		col.Hidden()
	}
	if cd.Width != "" {
		col.Width(cd.Width)
	}
	if len(cd.Icons) > 0 {
		icons, name := cd.Icons, cd.Name
		col.IconUsing(func(rec table.Record) string {
			return icons[fmt.Sprint(rec.Get(name))]
		})
	}
	return col, nil
}
