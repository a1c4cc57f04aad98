package datatable

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Rana718/tablo/internal/database"
	"github.com/Rana718/tablo/internal/table"
)

var (
	ErrNoTable    = errors.New("datatable: no table descriptor configured")
	ErrNoDatabase = errors.New("datatable: no database configured")
)

const DefaultPageSize = 15

var DefaultPageSizes = []int{10, 15, 25, 50, 100}

// Engine answers table requests for a single table descriptor.
type Engine struct {
	table        *table.Table
	db           *database.DB
	planner      *planner
	log          *zap.SugaredLogger
	pageSize     int
	pageSizes    []int
	translations map[string]string
	now          func() time.Time

	// extra search fields from WithSearchFields, checked against the
	// schema on first use
	searchFields []table.ColumnPath
	searchOnce   sync.Once
}

type Option func(*Engine)

func WithLogger(log *zap.SugaredLogger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithPageSize sets the page size used when neither the request nor the table
// names one.
func WithPageSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

func WithPageSizes(sizes []int) Option {
	return func(e *Engine) {
		if len(sizes) > 0 {
			e.pageSizes = append([]int(nil), sizes...)
		}
	}
}

// WithSearchFields adds fields matched by the global search on every table.
// Fields a table cannot reach are skipped for that table.
func WithSearchFields(fields ...string) Option {
	return func(e *Engine) {
		for _, f := range fields {
			if f != "" {
				e.searchFields = append(e.searchFields, table.ParsePath(f))
			}
		}
	}
}

func WithTranslations(tr map[string]string) Option {
	return func(e *Engine) {
		e.translations = tr
	}
}

// New binds a table to a database. A nil table is a programming error.
func New(t *table.Table, db *database.DB, opts ...Option) *Engine {
	if t == nil {
		panic(ErrNoTable)
	}
	if db == nil {
		panic(ErrNoDatabase)
	}

	e := &Engine{
		table:     t,
		db:        db,
		log:       zap.NewNop().Sugar(),
		pageSize:  DefaultPageSize,
		pageSizes: DefaultPageSizes,
		now:       time.Now,
	}
	e.planner = &planner{t: t, dialect: db.Dialect()}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With("table", t.ID())
	e.planner.log = e.log
	return e
}

func (e *Engine) Table() *table.Table {
	return e.table
}

// Handle dispatches the requested action, if any, then queries the page the
// params describe so the response reflects the action's effects.
func (e *Engine) Handle(ctx context.Context, p Params) (*Props, error) {
	var result any
	if p.Action != "" {
		r, err := e.Dispatch(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("action %q: %w", p.Action, err)
		}
		result = r
	}

	page, pn, err := e.query(ctx, p)
	if err != nil {
		return nil, err
	}
	return e.props(p, page, pn, result), nil
}

// Query returns one page of rows for p.
func (e *Engine) Query(ctx context.Context, p Params) (*Page, error) {
	page, _, err := e.query(ctx, p)
	return page, err
}

func (e *Engine) query(ctx context.Context, p Params) (*Page, *plan, error) {
	e.loadSearchFields(ctx)
	pn := e.planner.build(p)
	size := e.resolvePageSize(p.PageSize)

	total, err := e.db.QueryInt(ctx, e.planner.countQuery(pn))
	if err != nil {
		return nil, nil, fmt.Errorf("count %s: %w", e.table.ID(), err)
	}

	lastPage := (total + size - 1) / size
	if lastPage < 1 {
		lastPage = 1
	}
	current := p.Page
	if current < 1 {
		current = 1
	}
	offset := (current - 1) * size

	records, err := e.db.QueryRows(ctx, e.planner.rowsQuery(pn).
		Limit(uint64(size)).
		Offset(uint64(offset)))
	if err != nil {
		return nil, nil, fmt.Errorf("query %s: %w", e.table.ID(), err)
	}

	page := &Page{
		Rows:        e.serialize(records, offset),
		CurrentPage: current,
		LastPage:    lastPage,
		PerPage:     size,
		Total:       total,
	}
	if len(records) > 0 {
		page.From = offset + 1
		page.To = offset + len(records)
	}

	e.log.Debugw("table query",
		"search", p.Search,
		"sort", pn.sorted,
		"page", current,
		"pageSize", size,
		"total", total,
	)
	return page, pn, nil
}

// loadSearchFields hands the planner the extra search fields whose relation
// path resolves and whose column exists on the table the path ends at.
func (e *Engine) loadSearchFields(ctx context.Context) {
	e.searchOnce.Do(func() {
		columns := make(map[string]map[string]bool)
		for _, path := range e.searchFields {
			hops, err := e.table.Source().Resolve(path)
			if err != nil {
				e.log.Warnw("skipping search field", "field", path.String(), "error", err)
				continue
			}
			target := e.table.Source().Table
			if len(hops) > 0 {
				target = hops[len(hops)-1].Relation.Source.Table
			}

			known, ok := columns[target]
			if !ok {
				names, err := e.db.Columns(ctx, target)
				if err != nil {
					e.log.Warnw("cannot check search field", "field", path.String(), "error", err)
				} else {
					known = make(map[string]bool, len(names))
					for _, n := range names {
						known[n] = true
					}
				}
				columns[target] = known
			}
			if known != nil && !known[path.Leaf] {
				e.log.Warnw("skipping search field", "field", path.String(), "error", fmt.Sprintf("no column %q on %s", path.Leaf, target))
				continue
			}
			e.planner.searchFields = append(e.planner.searchFields, path)
		}
	})
}

// resolvePageSize prefers the request, then the table, then the engine default.
func (e *Engine) resolvePageSize(requested int) int {
	switch {
	case requested >= 1:
		return requested
	case requested < 0:
		return 1
	case e.table.PageSize() > 0:
		return e.table.PageSize()
	}
	return e.pageSize
}

// fetchRecord loads the record whose id is id, or nil when none matches.
func (e *Engine) fetchRecord(ctx context.Context, id string) (table.Record, error) {
	pn := e.planner.newPlan()
	query := e.planner.selectBuilder(pn, e.planner.selectColumns()...)
	cond, direct := e.idCondition([]string{id})
	if direct {
		query = query.Where(cond).Limit(1)
	}

	rows, err := e.db.QueryRows(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch %s %s: %w", e.table.ID(), id, err)
	}
	if !direct {
		rows = e.filterByID(rows, []string{id})
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return table.Record(rows[0]), nil
}

func (e *Engine) props(p Params, page *Page, pn *plan, result any) *Props {
	t := e.table

	columns := make([]table.ColumnDescriptor, 0, len(t.Columns()))
	visible := make(map[string]bool, len(t.Columns()))
	for _, col := range t.Columns() {
		columns = append(columns, col.Descriptor())
		visible[col.Name()] = isVisible(col, p.VisibleColumns)
	}

	filters := make([]table.FilterDescriptor, 0, len(t.Filters()))
	for _, f := range t.Filters() {
		filters = append(filters, f.Descriptor())
	}

	actions := make([]table.ActionDescriptor, 0, len(t.Actions()))
	for _, a := range t.Actions() {
		actions = append(actions, a.Descriptor())
	}

	sizes := t.PageSizes()
	if len(sizes) == 0 {
		sizes = e.pageSizes
	}

	export := t.Export()
	return &Props{
		ID:             t.ID(),
		Data:           page,
		Columns:        columns,
		Filters:        filters,
		Actions:        actions,
		Search:         p.Search,
		CurrentFilters: p.ActiveFilters(),
		Sort:           pn.sorted,
		Direction:      pn.dir,
		PageSize:       page.PerPage,
		PageSizes:      sizes,
		VisibleColumns: visible,
		Exportable:     export.Enabled,
		ExportType:     export.Format,
		ExportColumns:  export.Columns,
		Translations:   Translations(e.translations),
		ActionResult:   result,
		Seq:            p.Seq,
	}
}

// isVisible applies a request override over the column default. Columns that
// cannot be toggled keep their default.
func isVisible(col *table.Column, overrides map[string]bool) bool {
	if v, ok := overrides[col.Name()]; ok && col.IsToggable() {
		return v
	}
	return col.IsVisible()
}
