package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/Rana718/tablo/internal/client"
	"github.com/Rana718/tablo/internal/datatable"
	tablo "github.com/Rana718/tablo/internal/table"
)

const maxColWidth = 30

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	cursorStyle  = lipgloss.NewStyle().Reverse(true)
	tableBox     = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("8"))
	dialogStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("11")).Padding(1, 2)
	helpRenderer = help.New()
)

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("8")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	return s
}

// refresh rebuilds the table from the view state.
func (m *Model) refresh() {
	var (
		columns []table.Column
		rows    []table.Row
	)
	m.client.View(func(s *client.ViewState) {
		visible := visibleColumns(s)
		columns = make([]table.Column, 0, len(visible)+1)
		columns = append(columns, table.Column{Title: " ", Width: 3})
		for _, col := range visible {
			columns = append(columns, table.Column{Title: m.header(s, col), Width: 0})
		}

		rows = make([]table.Row, 0, len(s.Rows))
		for _, row := range s.Rows {
			cells := make(table.Row, 0, len(columns))
			cells = append(cells, selectionMark(s, row))
			for _, col := range visible {
				cells = append(cells, m.cell(row, col))
			}
			rows = append(rows, cells)
		}
	})

	for i := range columns {
		if i == 0 {
			continue
		}
		w := lipgloss.Width(columns[i].Title)
		for _, r := range rows {
			w = max(w, lipgloss.Width(r[i]))
		}
		columns[i].Width = min(w, maxColWidth)
	}

	// rows and columns must agree whenever the table renders
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(columns)
	m.tbl.SetRows(rows)
	if c := m.tbl.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.tbl.SetCursor(len(rows) - 1)
	}
}

func visibleColumns(s *client.ViewState) []tablo.ColumnDescriptor {
	out := make([]tablo.ColumnDescriptor, 0, len(s.Columns))
	for _, col := range s.Columns {
		if s.IsVisible(col.Name) {
			out = append(out, col)
		}
	}
	return out
}

func (m *Model) header(s *client.ViewState, col tablo.ColumnDescriptor) string {
	title := col.Label
	if s.Sort == col.Name {
		if s.Direction == tablo.Desc {
			title += " " + m.icons.Resolve("arrow-down")
		} else {
			title += " " + m.icons.Resolve("arrow-up")
		}
	}
	if cols := s.Columns; m.colCursor < len(cols) && cols[m.colCursor].Name == col.Name {
		title = "›" + title
	}
	return title
}

func selectionMark(s *client.ViewState, row datatable.Row) string {
	for _, col := range s.Columns {
		if col.Type != tablo.CheckboxColumn {
			continue
		}
		if disabled, _ := row[col.Name+"_disabled"].(bool); disabled {
			return "[-]"
		}
		id, _ := client.RowKey(row[col.Name+"_value"])
		return checkbox(s.IsSelected(id))
	}
	id, ok := client.RowKey(row["id"])
	if !ok {
		return ""
	}
	return checkbox(s.IsSelected(id))
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m *Model) cell(row datatable.Row, col tablo.ColumnDescriptor) string {
	var text string
	switch col.Type {
	case tablo.ActionColumn:
		actions := rowActions(row[col.Name+"_action"])
		labels := make([]string, 0, len(actions))
		for i, a := range actions {
			labels = append(labels, fmt.Sprintf("%d:%s", i+1, a.Label))
		}
		text = strings.Join(labels, " ")
	case tablo.CheckboxColumn:
		text = formatValue(row[col.Name+"_value"])
	default:
		text = formatValue(row[col.Name])
	}
	if icon, ok := row[col.Name+"_icon"].(string); ok {
		if glyph := m.icons.Resolve(icon); glyph != "" {
			text = glyph + " " + text
		}
	}
	return text
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprint(val)
	}
}

func (m Model) View() string {
	var b strings.Builder
	var (
		title, search, footer, filters string
		confirm                        *tablo.Confirmation
		tr                             map[string]string
	)
	m.client.View(func(s *client.ViewState) {
		tr = s.Translations
		title = m.client.TableID()
		search = s.Search
		confirm = s.ConfirmData
		filters = activeFilters(s)
		footer = pageSummary(s)
	})

	b.WriteString(titleStyle.Render(title))
	if m.loading {
		b.WriteString(mutedStyle.Render("  " + translate(tr, "loading", "Loading...")))
	}
	b.WriteString("\n")

	switch {
	case m.mode == modeSearch:
		b.WriteString(m.search.View())
	case search != "":
		b.WriteString(mutedStyle.Render("search: ") + search)
	}
	b.WriteString("\n")
	if filters != "" {
		b.WriteString(mutedStyle.Render(translate(tr, "filters", "Filters")+": ") + filters + "\n")
	}

	if len(m.tbl.Rows()) == 0 && !m.loading {
		b.WriteString(mutedStyle.Render(translate(tr, "no_results", "No results found")) + "\n")
	} else {
		b.WriteString(tableBox.Render(m.tbl.View()) + "\n")
	}
	b.WriteString(footer + "\n")
	if col, ok := m.currentColumn(); ok {
		line := "column: " + col.Label
		if !m.columnShown(col.Name) {
			line += " (hidden)"
		}
		b.WriteString(mutedStyle.Render(line) + "\n")
	}

	if m.mode == modeFilter {
		b.WriteString(m.filterPicker())
	}
	if confirm != nil {
		b.WriteString(m.confirmDialog(confirm, tr) + "\n")
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status) + "\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	}
	b.WriteString(helpRenderer.ShortHelpView(keys.help()))
	return b.String()
}

func (m Model) columnShown(name string) bool {
	var shown bool
	m.client.View(func(s *client.ViewState) { shown = s.IsVisible(name) })
	return shown
}

func (m Model) filterPicker() string {
	var b strings.Builder
	var current map[string][]string
	m.client.View(func(s *client.ViewState) { current = s.Filters })
	for i, o := range m.filterOptions() {
		line := checkbox(containsValue(current[o.filter], o.value)) + " " + o.label
		if i == m.filterCursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) confirmDialog(c *tablo.Confirmation, tr map[string]string) string {
	confirmLabel := c.Confirm
	if confirmLabel == "" {
		confirmLabel = translate(tr, "confirm", "Confirm")
	}
	cancelLabel := c.Cancel
	if cancelLabel == "" {
		cancelLabel = translate(tr, "cancel", "Cancel")
	}
	body := titleStyle.Render(c.Title) + "\n" + c.Message + "\n\n" +
		fmt.Sprintf("[y] %s   [n] %s", confirmLabel, cancelLabel)
	return dialogStyle.Render(body)
}

func activeFilters(s *client.ViewState) string {
	names := make([]string, 0, len(s.Filters))
	for name := range s.Filters {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+strings.Join(s.Filters[name], ","))
	}
	return strings.Join(parts, " ")
}

func pageSummary(s *client.ViewState) string {
	from, to := 0, 0
	if s.Total > 0 {
		from = (s.Page-1)*s.PageSize + 1
		to = from + len(s.Rows) - 1
	}
	showing := translate(s.Translations, "showing", "Showing :from to :to of :total")
	showing = strings.NewReplacer(
		":from", fmt.Sprint(from),
		":to", fmt.Sprint(to),
		":total", fmt.Sprint(s.Total),
	).Replace(showing)

	parts := []string{showing, fmt.Sprintf("page %d/%d", s.Page, s.PageCount)}
	if s.PageSize > 0 {
		parts = append(parts, fmt.Sprintf("%s %d", translate(s.Translations, "per_page", "Per page"), s.PageSize))
	}
	if n := len(s.Selected); n > 0 {
		parts = append(parts, strings.ReplaceAll(translate(s.Translations, "selected", ":count selected"), ":count", fmt.Sprint(n)))
	}
	return mutedStyle.Render(strings.Join(parts, " · "))
}

func translate(tr map[string]string, key, fallback string) string {
	if v, ok := tr[key]; ok && v != "" {
		return v
	}
	return fallback
}

func containsValue(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
