package client

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rana718/tablo/internal/datatable"
	"github.com/Rana718/tablo/internal/table"
)

var userColumns = []table.ColumnDescriptor{
	{Name: "name", Label: "Name", Type: table.PlainColumn, Sortable: true, Toggable: true, Visible: true},
	{Name: "status", Label: "Status", Type: table.PlainColumn, Sortable: true, Toggable: true, Visible: true},
	{Name: "email", Label: "Email", Type: table.PlainColumn, Toggable: true},
	{Name: "id", Label: "ID", Type: table.PlainColumn},
}

func rowsWithIDs(ids ...any) []datatable.Row {
	rows := make([]datatable.Row, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, datatable.Row{"id": id, "_id": id})
	}
	return rows
}

func propsFor(seq int64, rows []datatable.Row) *datatable.Props {
	return &datatable.Props{
		ID:      "users",
		Columns: userColumns,
		Filters: []table.FilterDescriptor{
			{Name: "status", Label: "Status", Multiple: true},
			{Name: "team", Label: "Team"},
		},
		Data:           &datatable.Page{Rows: rows, CurrentPage: 1, LastPage: 3, PerPage: 15, Total: 40},
		CurrentFilters: map[string][]string{},
		PageSize:       15,
		Seq:            seq,
	}
}

func loaded(rows []datatable.Row) *ViewState {
	s := NewViewState()
	s.Apply(propsFor(0, rows))
	return s
}

func TestSelectionIsPrunedToPresentRows(t *testing.T) {
	s := loaded(rowsWithIDs(1.0, 2.0, 3.0))
	for _, id := range []string{"1", "2", "3"} {
		require.True(t, s.ToggleRow(id))
	}

	require.True(t, s.Apply(propsFor(0, rowsWithIDs(2.0, 4.0))))
	assert.Equal(t, []string{"2"}, s.Selected)

	require.True(t, s.Apply(propsFor(0, rowsWithIDs(1.0, 2.0, 3.0))))
	assert.Equal(t, []string{"2"}, s.Selected, "dropped ids do not come back")
}

func TestToggleAllWithCheckboxColumn(t *testing.T) {
	s := NewViewState()
	p := propsFor(0, []datatable.Row{
		{"id": "a", "select": "a", "select_value": "a", "select_disabled": false},
		{"id": "b", "select": "b", "select_value": "b", "select_disabled": true},
		{"id": "c", "select": "c", "select_value": "c", "select_disabled": false},
	})
	p.Columns = append([]table.ColumnDescriptor{{Name: "select", Type: table.CheckboxColumn}}, userColumns...)
	s.Apply(p)

	assert.False(t, s.ToggleRow("b"), "disabled rows cannot be selected")

	s.ToggleAll()
	assert.Equal(t, []string{"a", "c"}, s.Selected)

	s.ToggleAll()
	assert.Empty(t, s.Selected)

	s.ToggleRow("c")
	s.ToggleAll()
	assert.Equal(t, []string{"c", "a"}, s.Selected)
}

func TestToggleAllWithoutCheckboxColumn(t *testing.T) {
	s := loaded(rowsWithIDs(1.0, nil, map[string]any{"k": 1}, "x"))

	s.ToggleAll()
	assert.Equal(t, []string{"1", "x"}, s.Selected)
}

func TestSortCycles(t *testing.T) {
	s := loaded(rowsWithIDs(1.0))

	req := s.SortClicked("name")
	require.NotNil(t, req)
	assert.Equal(t, "name", req.Sort)
	assert.Equal(t, table.Asc, req.Direction)

	req = s.SortClicked("name")
	assert.Equal(t, table.Desc, req.Direction)

	req = s.SortClicked("name")
	assert.Equal(t, table.Asc, req.Direction)

	s.SortClicked("name")
	req = s.SortClicked("status")
	assert.Equal(t, "status", req.Sort)
	assert.Equal(t, table.Asc, req.Direction, "a new column starts ascending")

	assert.Nil(t, s.SortClicked("email"), "not sortable")
	assert.Nil(t, s.SortClicked("missing"))
}

func TestFilterToggleSendsAllActiveFilters(t *testing.T) {
	s := loaded(rowsWithIDs(1.0))
	s.Page = 2

	req := s.FilterToggled("status", "active")
	assert.Equal(t, map[string][]string{"status": {"active"}}, req.Filters)
	assert.Equal(t, 1, req.Page)

	req = s.FilterToggled("team", "Sales")
	assert.Equal(t, map[string][]string{"status": {"active"}, "team": {"Sales"}}, req.Filters)

	req = s.FilterToggled("status", "inactive")
	assert.Equal(t, []string{"active", "inactive"}, req.Filters["status"])

	req = s.FilterToggled("team", "Engineering")
	assert.Equal(t, []string{"Engineering"}, req.Filters["team"], "single choice replaces")

	s.FilterToggled("team", "Engineering")
	req = s.FilterToggled("status", "active")
	assert.Equal(t, map[string][]string{"status": {"inactive"}}, req.Filters)

	req = s.ClearFilters()
	require.NotNil(t, req)
	assert.NotNil(t, req.Filters)
	assert.Empty(t, req.Filters)
	assert.Nil(t, s.ClearFilters())
}

func TestSearchResetsPage(t *testing.T) {
	s := loaded(rowsWithIDs(1.0))
	s.Page = 3
	s.Sort = "name"

	req := s.SearchChanged("ali")
	assert.Equal(t, "ali", req.Search)
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, "name", req.Sort)
	assert.Nil(t, s.SearchChanged("ali"))
}

func TestToggleColumn(t *testing.T) {
	s := loaded(rowsWithIDs(1.0))

	visible, err := s.ToggleColumn("status")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"status": false}, visible)
	assert.False(t, s.IsVisible("status"))

	visible, err = s.ToggleColumn("email")
	require.NoError(t, err)
	assert.True(t, visible["email"])

	_, err = s.ToggleColumn("id")
	assert.ErrorIs(t, err, ErrNotToggable)
	assert.False(t, s.IsVisible("id"))

	_, err = s.ToggleColumn("nope")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestPaginationBoundaries(t *testing.T) {
	s := loaded(rowsWithIDs(1.0))

	assert.Nil(t, s.PrevPage())
	assert.Nil(t, s.FirstPage())

	req := s.NextPage()
	require.NotNil(t, req)
	assert.Equal(t, 2, req.Page)

	req = s.LastPage()
	require.NotNil(t, req)
	assert.Equal(t, 3, req.Page)
	assert.Nil(t, s.NextPage())
	assert.Nil(t, s.LastPage())
	assert.Nil(t, s.GotoPage(4))

	assert.Nil(t, s.SetPageSize(15))
	assert.Nil(t, s.SetPageSize(0))
	req = s.SetPageSize(50)
	assert.Equal(t, 50, req.PageSize)
	assert.Equal(t, 1, req.Page)
}

func TestConfirmFlow(t *testing.T) {
	s := loaded(rowsWithIDs(1.0, 2.0))
	s.ToggleAll()
	remove := table.ActionDescriptor{Type: "action", Name: "delete", Confirmable: true}

	req := s.TriggerAction(remove, "")
	require.NotNil(t, req)
	assert.Equal(t, "delete_confirm", req.Action)
	assert.Equal(t, []string{"1", "2"}, req.IDs)
	assert.Nil(t, s.Confirm(), "nothing to confirm before the dialog content arrives")

	p := propsFor(req.Seq, rowsWithIDs(1.0, 2.0))
	p.ActionResult = map[string]any{"confirmData": map[string]any{"title": "Delete", "message": "Delete 2 users?"}}
	s.Apply(p)
	require.NotNil(t, s.ConfirmData)
	assert.Equal(t, "Delete 2 users?", s.ConfirmData.Message)

	req = s.Confirm()
	require.NotNil(t, req)
	assert.Equal(t, "delete", req.Action)
	assert.Equal(t, []string{"1", "2"}, req.IDs)
	assert.Nil(t, s.Pending)
	assert.Nil(t, s.Confirm())
}

func TestCancelConfirmSendsNothing(t *testing.T) {
	s := loaded(rowsWithIDs(1.0))
	req := s.TriggerAction(table.ActionDescriptor{Type: "action", Name: "remove", Confirmable: true}, "actions", "1")
	assert.Equal(t, "remove_confirm", req.Action)
	assert.Equal(t, "actions", req.Column)

	p := propsFor(req.Seq, rowsWithIDs(1.0))
	p.ActionResult = datatable.ConfirmResult{ConfirmData: &table.Confirmation{Title: "Remove"}}
	s.Apply(p)
	require.NotNil(t, s.ConfirmData)

	s.CancelConfirm()
	assert.Nil(t, s.Pending)
	assert.Nil(t, s.ConfirmData)
	assert.Nil(t, s.Confirm())
}

func TestPlainActionRunsImmediately(t *testing.T) {
	s := loaded(rowsWithIDs(1.0))

	req := s.TriggerAction(table.ActionDescriptor{Type: "action", Name: "archive"}, "", "1")
	assert.Equal(t, "archive", req.Action)
	assert.Nil(t, s.Pending)

	assert.Nil(t, s.TriggerAction(table.ActionDescriptor{Type: "action", Name: "edit", URL: "/users/1"}, "actions", "1"))
	assert.Nil(t, s.TriggerAction(table.ActionDescriptor{Type: "group", Name: "more"}, ""))
}

func TestStaleResponsesAreDiscarded(t *testing.T) {
	s := loaded(rowsWithIDs(1.0))
	first := s.SearchChanged("a")
	second := s.SearchChanged("al")

	newer := propsFor(second.Seq, rowsWithIDs(2.0))
	newer.Search = "al"
	require.True(t, s.Apply(newer))

	older := propsFor(first.Seq, rowsWithIDs(1.0, 2.0, 3.0))
	older.Search = "a"
	assert.False(t, s.Apply(older))
	assert.Equal(t, "al", s.Search)
	assert.Len(t, s.Rows, 1)
}

func TestRowKey(t *testing.T) {
	tests := []struct {
		in   any
		want string
		ok   bool
	}{
		{1.0, "1", true},
		{42, "42", true},
		{"abc", "abc", true},
		{nil, "", false},
		{map[string]any{}, "", false},
		{[]any{1}, "", false},
	}
	for _, tt := range tests {
		got, ok := RowKey(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestIconsPreferCallerMap(t *testing.T) {
	icons := Icons{"check": "[ok]", "custom": "*"}

	assert.Equal(t, "[ok]", icons.Resolve("check"))
	assert.Equal(t, "*", icons.Resolve("custom"))
	assert.Equal(t, "✗", icons.Resolve("x"))
	assert.Equal(t, "", icons.Resolve("unknown"))
	assert.Equal(t, "✓", Icons(nil).Resolve("check"))
}

func TestInitialRequestLeavesRestorableStateOut(t *testing.T) {
	s := NewViewState()

	body, err := json.Marshal(s.Initial())
	require.NoError(t, err)
	assert.JSONEq(t, `{"page":1,"seq":1}`, string(body))

	body, err = json.Marshal(s.SearchChanged("bob"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"search":"bob","filters":{},"page":1,"seq":2}`, string(body))

	body, err = json.Marshal(s.SearchChanged(""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"search":"","filters":{},"page":1,"seq":3}`, string(body), "a cleared search is sent explicitly")
}
