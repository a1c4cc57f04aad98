package datatable

import "github.com/Rana718/tablo/internal/table"

// Row is one serialized record. Besides the column values it carries the
// synthetic id and _id keys plus per-column _icon, _value, _checked, _disabled
// and _action companions.
type Row map[string]any

// Page is one page of serialized rows with its pagination metadata.
type Page struct {
	Rows        []Row `json:"data"`
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	Total       int   `json:"total"`
	From        int   `json:"from"`
	To          int   `json:"to"`
}

// Props is everything the client renderer needs for one table state.
type Props struct {
	ID             string                   `json:"id"`
	Data           *Page                    `json:"data"`
	Columns        []table.ColumnDescriptor `json:"columns"`
	Filters        []table.FilterDescriptor `json:"filters"`
	Actions        []table.ActionDescriptor `json:"actions"`
	Search         string                   `json:"search"`
	CurrentFilters map[string][]string      `json:"currentFilters"`
	Sort           string                   `json:"sort,omitempty"`
	Direction      table.Direction          `json:"direction,omitempty"`
	PageSize       int                      `json:"pageSize"`
	PageSizes      []int                    `json:"availablePageSizes"`
	VisibleColumns map[string]bool          `json:"visibleColumns"`
	Exportable     bool                     `json:"exportable"`
	ExportType     table.ExportFormat       `json:"exportType"`
	ExportColumns  table.ColumnScope        `json:"exportColumns"`
	Translations   map[string]string        `json:"translations"`
	ActionResult   any                      `json:"actionResult,omitempty"`
	Seq            int64                    `json:"seq,omitempty"`
}

// ConfirmResult is returned by an action dispatched with the _confirm suffix.
type ConfirmResult struct {
	ConfirmData *table.Confirmation `json:"confirmData"`
}

var defaultTranslations = map[string]string{
	"search":         "Search...",
	"no_results":     "No results found",
	"per_page":       "Per page",
	"previous":       "Previous",
	"next":           "Next",
	"showing":        "Showing :from to :to of :total",
	"columns":        "Columns",
	"filters":        "Filters",
	"clear_filters":  "Clear filters",
	"export":         "Export",
	"export_all":     "All rows",
	"export_visible": "Visible columns",
	"selected":       ":count selected",
	"actions":        "Actions",
	"confirm":        "Confirm",
	"cancel":         "Cancel",
	"loading":        "Loading...",
}

// Translations returns the default client labels merged with overrides.
func Translations(overrides map[string]string) map[string]string {
	out := make(map[string]string, len(defaultTranslations)+len(overrides))
	for k, v := range defaultTranslations {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}
