package datatable

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Rana718/tablo/internal/table"
)

func TestParseParamsJSONBody(t *testing.T) {
	p := ParseParams(map[string]any{
		"search":         "  bob ",
		"sort":           "name",
		"direction":      "DESC",
		"filters":        map[string]any{"status": []any{"active", "inactive"}, "team": ""},
		"pageSize":       float64(25),
		"page":           float64(2),
		"visibleColumns": map[string]any{"email": false, "name": true},
		"action":         "archive_confirm",
		"ids":            []any{float64(1), "2"},
		"column":         "actions",
		"seq":            float64(3),
		"team_id":        "4",
		"blank":          "",
	})

	assert.Equal(t, "bob", p.Search)
	assert.Equal(t, "name", p.Sort)
	assert.Equal(t, table.Desc, p.Direction)
	assert.Equal(t, []string{"active", "inactive"}, p.Filters["status"])
	assert.Equal(t, map[string][]string{"status": {"active", "inactive"}}, p.ActiveFilters())
	assert.Equal(t, 25, p.PageSize)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, map[string]bool{"email": false, "name": true}, p.VisibleColumns)
	assert.Equal(t, "archive_confirm", p.Action)
	assert.Equal(t, []string{"1", "2"}, p.IDs)
	assert.Equal(t, "actions", p.Column)
	assert.Equal(t, int64(3), p.Seq)
	assert.Equal(t, map[string][]string{"team_id": {"4"}}, p.Direct)
}

func TestParseParamsQueryString(t *testing.T) {
	p := ParseParams(map[string]any{
		"filters[status]":       "active,inactive",
		"visibleColumns[email]": "0",
		"visibleColumns[name]":  "true",
		"pageSize":              "0",
		"export":                "1",
		"exportType":            "excel",
		"exportColumns":         "all",
		"exportRows":            "selected",
		"selectedIds":           "3,4",
	})

	assert.Equal(t, []string{"active", "inactive"}, p.Filters["status"])
	assert.Equal(t, map[string]bool{"email": false, "name": true}, p.VisibleColumns)
	assert.Equal(t, 1, p.PageSize, "page size is floored at one")
	assert.True(t, p.Export)
	assert.Equal(t, "excel", p.ExportType)
	assert.Equal(t, "all", p.ExportColumns)
	assert.Equal(t, "selected", p.ExportRows)
	assert.Equal(t, []string{"3", "4"}, p.SelectedIDs)
	assert.Empty(t, p.Direct)
}

func TestParseParamsDefaults(t *testing.T) {
	p := ParseParams(nil)
	assert.Equal(t, table.Asc, p.Direction)
	assert.Zero(t, p.PageSize)
	assert.Nil(t, p.VisibleColumns)
	assert.Empty(t, p.Filters)

	p = ParseParams(map[string]any{"filters": `{"status":"active"}`})
	assert.Equal(t, []string{"active"}, p.Filters["status"])
}
