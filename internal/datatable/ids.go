package datatable

import (
	"fmt"
	"strconv"

	sq "github.com/Masterminds/squirrel"

	"github.com/Rana718/tablo/internal/table"
)

// idCondition matches the rows whose id is in ids. ok is false when row ids are
// not a base-table field and must be matched with filterByID instead.
func (e *Engine) idCondition(ids []string) (cond sq.Sqlizer, ok bool) {
	field, ok := e.table.IDField()
	if !ok {
		return nil, false
	}
	return sq.Eq{e.planner.quote(e.planner.base(), field): ids}, true
}

// filterByID keeps the records whose row id is in ids, in their fetched order.
func (e *Engine) filterByID(records []map[string]any, ids []string) []map[string]any {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []map[string]any
	for _, raw := range records {
		if want[idString(e.table.RowID(table.Record(raw)))] {
			out = append(out, raw)
		}
	}
	return out
}

// idString formats a row id the way it travels in requests.
func idString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case []byte:
		return string(id)
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(id), 'f', -1, 32)
	default:
		return fmt.Sprint(id)
	}
}
