package datatable

import (
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"github.com/Rana718/tablo/internal/database"
	"github.com/Rana718/tablo/internal/table"
)

// matchNothing keeps a query valid while excluding every row.
var matchNothing = sq.Expr("1 = 0")

// planner turns request params into joins, conditions and ordering for one
// table. Relation columns shown in the grid are LEFT JOINed; relation searches
// and filters use EXISTS subqueries so to-many hops never duplicate rows.
type planner struct {
	t            *table.Table
	dialect      database.Dialect
	searchFields []table.ColumnPath
	log          *zap.SugaredLogger
}

type plan struct {
	joins  []string
	joined map[string]bool
	where  sq.And
	order  []string
	sorted string
	dir    table.Direction
}

func (pl *planner) quote(parts ...string) string {
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = pl.dialect.Quote(p)
	}
	return strings.Join(quoted, ".")
}

func (pl *planner) base() string {
	return pl.t.Source().Table
}

// newPlan joins every relation the displayed columns read from.
func (pl *planner) newPlan() *plan {
	pn := &plan{joined: make(map[string]bool)}
	for _, col := range pl.t.Columns() {
		if col.Joined() {
			pl.join(pn, col.Path())
		}
	}
	return pn
}

// build plans a listing: joins, search, filters, direct filters and ordering.
func (pl *planner) build(p Params) *plan {
	pn := pl.newPlan()
	pl.applySearch(pn, p.Search)
	pl.applyFilters(pn, p.Filters)
	pl.applyDirect(pn, p.Direct)
	pl.applyOrder(pn, p.Sort, p.Direction)
	return pn
}

func (pl *planner) join(pn *plan, path table.ColumnPath) {
	hops, err := pl.t.Source().Resolve(path)
	if err != nil {
		pl.log.Debugw("skipping unresolvable join", "path", path.String(), "error", err)
		return
	}
	parent := pl.base()
	for i, hop := range hops {
		alias := path.Alias(i + 1)
		if !pn.joined[alias] {
			pn.joined[alias] = true
			pn.joins = append(pn.joins, pl.dialect.Quote(hop.Relation.Source.Table)+" AS "+
				pl.dialect.Quote(alias)+" ON "+pl.joinCondition(hop.Relation, parent, alias))
		}
		parent = alias
	}
}

func (pl *planner) joinCondition(rel *table.Relation, parent, related string) string {
	if rel.Kind == table.BelongsTo {
		return pl.quote(parent, rel.ForeignKey) + " = " + pl.quote(related, rel.OwnerKey)
	}
	return pl.quote(related, rel.ForeignKey) + " = " + pl.quote(parent, rel.OwnerKey)
}

// selectColumns is every base column plus each joined relation leaf aliased by
// its dotted column name.
func (pl *planner) selectColumns() []string {
	cols := []string{pl.dialect.Quote(pl.base()) + ".*"}
	for _, col := range pl.t.Columns() {
		if !col.Joined() {
			continue
		}
		path := col.Path()
		cols = append(cols, pl.quote(path.Alias(len(path.Segments)), path.Leaf)+" AS "+pl.dialect.Quote(col.Name()))
	}
	return cols
}

// onField applies cond to the column behind path. Relation paths become nested
// EXISTS subqueries, one per hop.
func (pl *planner) onField(path table.ColumnPath, cond func(column string) sq.Sqlizer) sq.Sqlizer {
	if !path.IsRelation() {
		return cond(pl.quote(pl.base(), path.Leaf))
	}
	hops, err := pl.t.Source().Resolve(path)
	if err != nil {
		pl.log.Debugw("unresolvable relation field", "path", path.String(), "error", err)
		return matchNothing
	}
	return pl.exists(hops, 0, pl.base(), path, cond)
}

func (pl *planner) exists(hops []table.Hop, i int, parent string, path table.ColumnPath, cond func(string) sq.Sqlizer) sq.Sqlizer {
	rel := hops[i].Relation
	alias := "ex_" + strings.Join(path.Segments[:i+1], "__")
	sub := sq.Select("1").
		From(pl.dialect.Quote(rel.Source.Table) + " AS " + pl.dialect.Quote(alias)).
		Where(pl.joinCondition(rel, parent, alias))
	if i == len(hops)-1 {
		sub = sub.Where(cond(pl.quote(alias, path.Leaf)))
	} else {
		sub = sub.Where(pl.exists(hops, i+1, alias, path, cond))
	}
	return existsClause{sub: sub}
}

type existsClause struct {
	sub sq.SelectBuilder
}

func (e existsClause) ToSql() (string, []any, error) {
	stmt, args, err := e.sub.ToSql()
	if err != nil {
		return "", nil, err
	}
	return "EXISTS (" + stmt + ")", args, nil
}

func (pl *planner) applySearch(pn *plan, term string) {
	if term == "" {
		return
	}
	pattern := "%" + term + "%"
	like := func(column string) sq.Sqlizer {
		return pl.dialect.Like(column, pattern)
	}

	var or sq.Or
	for _, col := range pl.t.Columns() {
		if !col.IsSearchable() {
			continue
		}
		if fn := col.CustomSearch(); fn != nil {
			if cond := fn(term); cond != nil {
				or = append(or, cond)
			}
			continue
		}
		if col.Type() != table.PlainColumn {
			continue
		}
		or = append(or, pl.onField(col.Path(), like))
	}
	for _, path := range pl.t.SearchFields() {
		or = append(or, pl.onField(path, like))
	}
	for _, path := range pl.searchFields {
		or = append(or, pl.onField(path, like))
	}

	if len(or) == 0 {
		pn.where = append(pn.where, matchNothing)
		return
	}
	pn.where = append(pn.where, or)
}

func (pl *planner) applyFilters(pn *plan, filters map[string][]string) {
	for _, name := range sortedKeys(filters) {
		values := filters[name]
		if len(values) == 0 {
			continue
		}
		f, ok := pl.t.Filter(name)
		if !ok {
			pl.log.Debugw("ignoring unknown filter", "filter", name)
			continue
		}
		pn.where = append(pn.where, pl.filterCondition(f, values))
	}
}

// filterCondition ANDs the filter-level predicate with the OR of the selected
// options. Values without an option predicate fall back to membership on the
// filter field, unless a filter-level predicate already covers them.
func (pl *planner) filterCondition(f *table.Filter, values []string) sq.Sqlizer {
	membership := func(vals []string) sq.Sqlizer {
		return pl.onField(f.FieldPath(), func(column string) sq.Sqlizer {
			return sq.Eq{column: vals}
		})
	}

	var top sq.Sqlizer
	if fn := f.Query(); fn != nil {
		top = fn(values)
	}

	var (
		options sq.Or
		plain   []string
	)
	for _, v := range values {
		if opt, ok := f.Option(v); ok && opt.Query != nil {
			options = append(options, opt.Query)
			continue
		}
		plain = append(plain, v)
	}

	if top == nil && len(options) == 0 {
		return membership(values)
	}
	if top == nil && len(plain) > 0 {
		options = append(options, membership(plain))
	}

	var and sq.And
	if top != nil {
		and = append(and, top)
	}
	if len(options) > 0 {
		and = append(and, options)
	}
	if len(and) == 1 {
		return and[0]
	}
	return and
}

func (pl *planner) applyDirect(pn *plan, direct map[string][]string) {
	for _, key := range sortedKeys(direct) {
		values := direct[key]
		col, ok := pl.t.Column(key)
		if !ok || len(values) == 0 {
			continue
		}
		if fn := col.CustomFilter(); fn != nil {
			if cond := fn(strings.Join(values, ",")); cond != nil {
				pn.where = append(pn.where, cond)
			}
			continue
		}
		if col.Type() != table.PlainColumn {
			continue
		}
		pn.where = append(pn.where, pl.onField(col.Path(), func(column string) sq.Sqlizer {
			return sq.Eq{column: values}
		}))
	}
}

// applyOrder sorts by the requested column when it is sortable, otherwise by the
// table default. The primary key always breaks ties.
func (pl *planner) applyOrder(pn *plan, sortName string, dir table.Direction) {
	col, ok := pl.t.Column(sortName)
	if !ok || !col.IsSortable() {
		if sortName != "" {
			pl.log.Debugw("ignoring unsortable column", "column", sortName)
		}
		name, defaultDir := pl.t.DefaultSort()
		col, ok = pl.t.Column(name)
		dir = defaultDir
	}
	if ok {
		pn.order = append(pn.order, pl.orderExpr(col, dir))
		pn.sorted = col.Name()
		pn.dir = dir
	}
	pn.order = append(pn.order, pl.quote(pl.base(), pl.t.Source().PrimaryKey)+" ASC")
}

func (pl *planner) orderExpr(col *table.Column, dir table.Direction) string {
	if fn := col.CustomOrder(); fn != nil {
		return fn(dir)
	}
	path := col.Path()
	if col.Joined() {
		return pl.quote(path.Alias(len(path.Segments)), path.Leaf) + " " + dir.SQL()
	}
	return pl.quote(pl.base(), path.Leaf) + " " + dir.SQL()
}

func (pl *planner) selectBuilder(pn *plan, columns ...string) sq.SelectBuilder {
	b := sq.StatementBuilder.PlaceholderFormat(pl.dialect.Placeholder()).
		Select(columns...).
		From(pl.dialect.Quote(pl.base()))
	for _, j := range pn.joins {
		b = b.LeftJoin(j)
	}
	if len(pn.where) > 0 {
		b = b.Where(pn.where)
	}
	return b
}

func (pl *planner) countQuery(pn *plan) sq.SelectBuilder {
	return pl.selectBuilder(pn, "COUNT(*)")
}

func (pl *planner) rowsQuery(pn *plan) sq.SelectBuilder {
	return pl.selectBuilder(pn, pl.selectColumns()...).OrderBy(pn.order...)
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
