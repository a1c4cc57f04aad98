package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rana718/tablo/internal/client"
	"github.com/Rana718/tablo/internal/datatable"
	tablo "github.com/Rana718/tablo/internal/table"
)

type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeFilter
)

type propsMsg struct{ props *datatable.Props }

type errMsg struct{ err error }

type savedMsg struct{}

// filterOption is one selectable entry of the filter picker.
type filterOption struct {
	filter string
	value  string
	label  string
}

// Model renders one table through a client.Client.
type Model struct {
	ctx    context.Context
	client *client.Client
	icons  client.Icons

	tbl    table.Model
	search textinput.Model

	mode         mode
	colCursor    int
	filterCursor int
	loading      bool
	status       string
	err          error
	width        int
	height       int
}

func New(ctx context.Context, c *client.Client, icons client.Icons) Model {
	ti := textinput.New()
	ti.Placeholder = "search..."
	ti.CharLimit = 100
	ti.Width = 30

	tbl := table.New(
		table.WithFocused(true),
		table.WithStyles(tableStyles()),
		table.WithKeyMap(tableKeys()),
		table.WithHeight(15),
	)

	return Model{
		ctx:    ctx,
		client: c,
		icons:  icons,
		tbl:    tbl,
		search: ti,
	}
}

func (m Model) Init() tea.Cmd {
	var req *client.Request
	m.client.View(func(s *client.ViewState) { req = s.Initial() })
	return m.fetch(req)
}

func (m Model) fetch(req *client.Request) tea.Cmd {
	if req == nil {
		return nil
	}
	return func() tea.Msg {
		props, err := m.client.Fetch(m.ctx, req)
		if err != nil {
			return errMsg{err}
		}
		return propsMsg{props}
	}
}

func (m Model) saveColumns(visible map[string]bool) tea.Cmd {
	return func() tea.Msg {
		if err := m.client.SaveColumns(m.ctx, visible); err != nil {
			return errMsg{err}
		}
		return savedMsg{}
	}
}

// transition runs fn on the view state and fetches the request it returns.
func (m *Model) transition(fn func(*client.ViewState) *client.Request) tea.Cmd {
	var req *client.Request
	m.client.View(func(s *client.ViewState) { req = fn(s) })
	if req == nil {
		return nil
	}
	m.loading = true
	m.err = nil
	return m.fetch(req)
}

func (m Model) do(fn func(*client.ViewState) *client.Request) (tea.Model, tea.Cmd) {
	cmd := m.transition(fn)
	return m, cmd
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.tbl.SetHeight(max(msg.Height-10, 3))
		return m, nil

	case propsMsg:
		m.loading = false
		if m.client.Apply(msg.props) {
			m.client.View(func(s *client.ViewState) { m.status = resultMessage(s.ActionResult) })
			m.refresh()
		}
		return m, nil

	case errMsg:
		m.loading = false
		m.err = msg.err
		return m, nil

	case savedMsg:
		return m, nil

	case tea.KeyMsg:
		if m.confirming() {
			return m.updateConfirm(msg)
		}
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeFilter:
			return m.updateFilter(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Search):
		m.mode = modeSearch
		m.client.View(func(s *client.ViewState) { m.search.SetValue(s.Search) })
		m.search.Focus()
		return m, textinput.Blink

	case key.Matches(msg, keys.Filters):
		if len(m.filterOptions()) > 0 {
			m.mode = modeFilter
			m.filterCursor = 0
		}
		return m, nil

	case key.Matches(msg, keys.ClearFilter):
		return m.do((*client.ViewState).ClearFilters)

	case key.Matches(msg, keys.ColLeft):
		if m.colCursor > 0 {
			m.colCursor--
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, keys.ColRight):
		if m.colCursor < len(m.allColumns())-1 {
			m.colCursor++
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, keys.Sort):
		col, ok := m.currentColumn()
		if !ok {
			return m, nil
		}
		return m.do(func(s *client.ViewState) *client.Request { return s.SortClicked(col.Name) })

	case key.Matches(msg, keys.ToggleCol):
		col, ok := m.currentColumn()
		if !ok {
			return m, nil
		}
		var visible map[string]bool
		var err error
		m.client.View(func(s *client.ViewState) { visible, err = s.ToggleColumn(col.Name) })
		if err != nil {
			m.err = err
			return m, nil
		}
		m.refresh()
		return m, m.saveColumns(visible)

	case key.Matches(msg, keys.Select):
		if id, ok := m.cursorRowID(); ok {
			m.client.View(func(s *client.ViewState) { s.ToggleRow(id) })
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, keys.SelectAll):
		m.client.View(func(s *client.ViewState) { s.ToggleAll() })
		m.refresh()
		return m, nil

	case key.Matches(msg, keys.NextPage):
		return m.do((*client.ViewState).NextPage)
	case key.Matches(msg, keys.PrevPage):
		return m.do((*client.ViewState).PrevPage)
	case key.Matches(msg, keys.FirstPage):
		return m.do((*client.ViewState).FirstPage)
	case key.Matches(msg, keys.LastPage):
		return m.do((*client.ViewState).LastPage)

	case key.Matches(msg, keys.PageSize):
		return m.do(func(s *client.ViewState) *client.Request {
			return s.SetPageSize(nextPageSize(s.PageSizes, s.PageSize))
		})
	}

	if n, ok := digit(msg); ok {
		cmd := m.triggerAction(n)
		return m, cmd
	}

	var cmd tea.Cmd
	m.tbl, cmd = m.tbl.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.mode = modeNormal
		m.search.Blur()
		term := m.search.Value()
		return m.do(func(s *client.ViewState) *client.Request { return s.SearchChanged(term) })
	case tea.KeyEsc:
		m.mode = modeNormal
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	opts := m.filterOptions()
	switch msg.String() {
	case "up", "k":
		if m.filterCursor > 0 {
			m.filterCursor--
		}
	case "down", "j":
		if m.filterCursor < len(opts)-1 {
			m.filterCursor++
		}
	case " ", "enter":
		if m.filterCursor < len(opts) {
			o := opts[m.filterCursor]
			return m.do(func(s *client.ViewState) *client.Request { return s.FilterToggled(o.filter, o.value) })
		}
	case "x":
		return m.do((*client.ViewState).ClearFilters)
	case "esc", "f", "q":
		m.mode = modeNormal
	}
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Confirm):
		return m.do((*client.ViewState).Confirm)
	case key.Matches(msg, keys.Cancel), msg.String() == "n":
		m.client.View(func(s *client.ViewState) { s.CancelConfirm() })
	}
	return m, nil
}

func (m Model) confirming() bool {
	var open bool
	m.client.View(func(s *client.ViewState) { open = s.ConfirmData != nil })
	return open
}

// triggerAction runs the nth action: a row action of the cursor row when the
// column cursor sits on an action column, else a bulk action on the selection.
func (m *Model) triggerAction(n int) tea.Cmd {
	col, ok := m.currentColumn()
	if ok && col.Type == tablo.ActionColumn {
		row, ok := m.cursorRow()
		if !ok {
			return nil
		}
		actions := rowActions(row[col.Name+"_action"])
		id, hasID := client.RowKey(row["id"])
		if n >= len(actions) || !hasID {
			return nil
		}
		return m.transition(func(s *client.ViewState) *client.Request {
			return s.TriggerAction(actions[n], col.Name, id)
		})
	}

	return m.transition(func(s *client.ViewState) *client.Request {
		actions := flattenActions(s.Actions)
		if n >= len(actions) || len(s.Selected) == 0 {
			return nil
		}
		return s.TriggerAction(actions[n], "")
	})
}

func (m Model) filterOptions() []filterOption {
	var out []filterOption
	m.client.View(func(s *client.ViewState) {
		for _, f := range s.FilterDefs {
			for _, o := range f.Options {
				out = append(out, filterOption{filter: f.Name, value: o.Value, label: f.Label + ": " + o.Label})
			}
		}
	})
	return out
}

func (m Model) allColumns() []tablo.ColumnDescriptor {
	var cols []tablo.ColumnDescriptor
	m.client.View(func(s *client.ViewState) { cols = slices.Clone(s.Columns) })
	return cols
}

func (m Model) currentColumn() (tablo.ColumnDescriptor, bool) {
	cols := m.allColumns()
	if m.colCursor < 0 || m.colCursor >= len(cols) {
		return tablo.ColumnDescriptor{}, false
	}
	return cols[m.colCursor], true
}

func (m Model) cursorRow() (datatable.Row, bool) {
	var row datatable.Row
	m.client.View(func(s *client.ViewState) {
		if i := m.tbl.Cursor(); i >= 0 && i < len(s.Rows) {
			row = s.Rows[i]
		}
	})
	return row, row != nil
}

// cursorRowID is the id the row is selected by.
func (m Model) cursorRowID() (string, bool) {
	row, ok := m.cursorRow()
	if !ok {
		return "", false
	}
	for _, col := range m.allColumns() {
		if col.Type == tablo.CheckboxColumn {
			return client.RowKey(row[col.Name+"_value"])
		}
	}
	return client.RowKey(row["id"])
}

// rowActions reads an action column cell. In-process rows carry typed
// descriptors, decoded ones carry plain maps.
func rowActions(v any) []tablo.ActionDescriptor {
	if typed, ok := v.([]tablo.ActionDescriptor); ok {
		return flattenActions(typed)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out []tablo.ActionDescriptor
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return flattenActions(out)
}

// flattenActions lists runnable actions, group members after top-level ones.
func flattenActions(items []tablo.ActionDescriptor) []tablo.ActionDescriptor {
	var out []tablo.ActionDescriptor
	for _, a := range items {
		if a.Type != "group" {
			out = append(out, a)
		}
	}
	for _, a := range items {
		if a.Type == "group" {
			out = append(out, a.Actions...)
		}
	}
	return out
}

func nextPageSize(sizes []int, current int) int {
	if len(sizes) == 0 {
		return current
	}
	for i, n := range sizes {
		if n == current {
			return sizes[(i+1)%len(sizes)]
		}
	}
	return sizes[0]
}

// digit maps keys 1-9 to action indexes 0-8.
func digit(msg tea.KeyMsg) (int, bool) {
	s := msg.String()
	if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		return int(s[0] - '1'), true
	}
	return 0, false
}

func resultMessage(result any) string {
	switch r := result.(type) {
	case nil:
		return ""
	case map[string]any:
		if msg, ok := r["message"].(string); ok {
			return msg
		}
	case fmt.Stringer:
		return r.String()
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprint(result)
	}
	return string(data)
}
