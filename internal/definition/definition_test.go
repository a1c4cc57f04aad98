package definition

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rana718/tablo/internal/database"
	"github.com/Rana718/tablo/internal/datatable"
	"github.com/Rana718/tablo/internal/table"
)

const doc = `
sources:
  teams:
    table: teams
  users:
    table: users
    relations:
      team: {kind: belongs_to, source: teams, foreign_key: team_id}
      tasks: {kind: has_many, source: tasks, foreign_key: user_id}
  tasks:
    table: tasks
    relations:
      user: {kind: belongs_to, source: users, foreign_key: user_id}

tables:
  - id: users
    source: users
    columns:
      - {name: select, type: checkbox, disabled_when: {status: locked}}
      - {name: name, label: Name}
      - {name: email, label: Email, searchable: false, hidden: true}
      - {name: status, label: Status, icons: {active: check, inactive: x}}
      - {name: team.name, label: Team}
      - name: actions
        type: action
        actions:
          - {name: edit, label: Edit, url: "/users/{id}/edit"}
          - name: remove
            label: Remove
            builtin: delete
            confirm: {title: "Remove {name}", message: "Remove {name}?"}
    filters:
      - name: status
        label: Status
        multiple: true
        options:
          - {value: active, label: Active}
          - {value: inactive, label: Inactive}
      - {name: team, label: Team, field: team.name}
    actions:
      - name: delete
        label: Delete selected
        builtin: delete
        confirm: {title: Delete, message: "Delete :count users?"}
      - name: more
        label: More
        actions:
          - {name: archive, label: Archive}
    default_sort: {column: name, direction: desc}
    page_sizes: [2, 4]
    export: {enabled: true, format: xlsx, file_name: people}

  - id: tasks
    columns:
      - {name: title, label: Title}
      - {name: user.team.name, label: Team}
`

func seed(t *testing.T) *database.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for _, stmt := range []string{
		`CREATE TABLE teams (id INTEGER PRIMARY KEY, name TEXT)`,
		`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, email TEXT, status TEXT, team_id INTEGER)`,
		`CREATE TABLE tasks (id INTEGER PRIMARY KEY, title TEXT, user_id INTEGER)`,
		`INSERT INTO teams VALUES (1, 'Engineering'), (2, 'Sales')`,
		`INSERT INTO users VALUES (1, 'Alice', 'a@x.io', 'active', 1), (2, 'Bob', 'b@x.io', 'inactive', 2), (3, 'Charlie', 'c@x.io', 'locked', 1)`,
		`INSERT INTO tasks VALUES (1, 'Write docs', 1), (2, 'Fix bug', 2)`,
	} {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}
	return db
}

func build(t *testing.T, db *database.DB) *Registry {
	t.Helper()
	f, err := Parse([]byte(doc))
	require.NoError(t, err)
	reg, err := f.Build(db)
	require.NoError(t, err)
	return reg
}

func TestBuildTables(t *testing.T) {
	reg := build(t, seed(t))
	assert.Equal(t, []string{"tasks", "users"}, reg.IDs())

	users, ok := reg.Get("users")
	require.True(t, ok)
	assert.Len(t, users.Columns(), 6)

	email, _ := users.Column("email")
	assert.False(t, email.IsSearchable())
	assert.False(t, email.IsVisible())

	sortCol, dir := users.DefaultSort()
	assert.Equal(t, "name", sortCol)
	assert.Equal(t, table.Desc, dir)
	assert.Equal(t, []int{2, 4}, users.PageSizes())
	assert.Equal(t, table.Export{Enabled: true, Format: table.Excel, Columns: table.VisibleColumns, FileName: "people"}, users.Export())

	_, ok = users.Action("archive")
	assert.True(t, ok, "group members are dispatchable")
	_, ok = users.RowAction("actions", "remove")
	assert.True(t, ok)
}

func TestBuiltTableServesRequests(t *testing.T) {
	ctx := context.Background()
	db := seed(t)
	reg := build(t, db)
	users, _ := reg.Get("users")
	e := datatable.New(users, db)

	props, err := e.Handle(ctx, datatable.Params{})
	require.NoError(t, err)
	rows := props.Data.Rows
	require.Len(t, rows, 3)
	assert.Equal(t, "Charlie", rows[0]["name"], "default sort is name desc")
	assert.Equal(t, true, rows[0]["select_disabled"])
	assert.Equal(t, "Engineering", rows[0]["team.name"])
	assert.Equal(t, "x", rows[1]["status_icon"])

	actions := rows[2]["actions_action"].([]table.ActionDescriptor)
	assert.Equal(t, "/users/1/edit", actions[0].URL)
	assert.True(t, actions[1].Confirmable)

	tasks, _ := reg.Get("tasks")
	page, err := datatable.New(tasks, db).Query(ctx, datatable.Params{Search: "Sales"})
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "Fix bug", page.Rows[0]["title"])
}

func TestBuiltinDelete(t *testing.T) {
	ctx := context.Background()
	db := seed(t)
	users, _ := build(t, db).Get("users")
	e := datatable.New(users, db)

	res, err := e.Dispatch(ctx, datatable.Params{Action: "delete_confirm", IDs: []string{"1", "2"}})
	require.NoError(t, err)
	assert.Equal(t, "Delete 2 users?", res.(datatable.ConfirmResult).ConfirmData.Message)

	res, err = e.Dispatch(ctx, datatable.Params{Action: "delete", IDs: []string{"1", "2"}})
	require.NoError(t, err)
	assert.Equal(t, Result{Success: true, Message: "Deleted 2 of 2 selected rows", Title: "Deleted", Variant: "success"}, res)

	n, err := db.CountRows(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	res, err = e.Dispatch(ctx, datatable.Params{Action: "remove_confirm", Column: "actions", IDs: []string{"3"}})
	require.NoError(t, err)
	confirm := res.(datatable.ConfirmResult).ConfirmData
	assert.Equal(t, "Remove Charlie", confirm.Title)
	assert.Equal(t, "Remove Charlie?", confirm.Message)

	res, err = e.Dispatch(ctx, datatable.Params{Action: "remove", Column: "actions", IDs: []string{"3"}})
	require.NoError(t, err)
	assert.True(t, res.(Result).Success)

	res, err = e.Dispatch(ctx, datatable.Params{Action: "delete"})
	require.NoError(t, err)
	assert.Equal(t, "warning", res.(Result).Variant)
}

func TestBuiltinDeleteUsesCheckboxValue(t *testing.T) {
	ctx := context.Background()
	db := seed(t)
	f, err := Parse([]byte(`
sources: {users: {}}
tables:
  - id: users
    columns:
      - {name: pick, label: Pick, type: checkbox, value: email}
      - {name: name, label: Name}
      - name: actions
        type: action
        actions: [{name: remove, label: Remove, builtin: delete}]
    actions: [{name: delete, label: Delete, builtin: delete}]
`))
	require.NoError(t, err)
	reg, err := f.Build(db)
	require.NoError(t, err)
	users, _ := reg.Get("users")
	e := datatable.New(users, db)

	res, err := e.Dispatch(ctx, datatable.Params{Action: "delete", IDs: []string{"c@x.io", "3"}})
	require.NoError(t, err)
	assert.Equal(t, "Deleted 1 of 2 selected rows", res.(Result).Message)

	res, err = e.Dispatch(ctx, datatable.Params{Action: "remove", Column: "actions", IDs: []string{"b@x.io"}})
	require.NoError(t, err)
	assert.True(t, res.(Result).Success)

	page, err := e.Query(ctx, datatable.Params{})
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "Alice", page.Rows[0]["name"])
	assert.Equal(t, "a@x.io", page.Rows[0]["id"])
}

func TestBuildRejections(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		err  error
	}{
		{"unknown source", "tables:\n  - {id: users, columns: [{name: name, label: Name}]}\n", ErrUnknownSource},
		{"relation kind", "sources:\n  users:\n    relations:\n      team: {kind: owns, source: users, foreign_key: x}\ntables: []\n", table.ErrInvalidEnum},
		{"column type", "sources: {users: {}}\ntables:\n  - {id: users, columns: [{name: name, label: Name, type: chart}]}\n", table.ErrInvalidEnum},
		{"builtin", "sources: {users: {}}\ntables:\n  - {id: users, columns: [{name: name, label: Name}], actions: [{name: x, label: X, builtin: explode}]}\n", ErrUnknownBuiltin},
		{"export format", "sources: {users: {}}\ntables:\n  - {id: users, columns: [{name: name, label: Name}], export: {enabled: true, format: pdf}}\n", table.ErrInvalidEnum},
		{"duplicate column", "sources: {users: {}}\ntables:\n  - {id: users, columns: [{name: name, label: A}, {name: name, label: B}]}\n", table.ErrDuplicateColumn},
		{"delete by relation id", "sources:\n  teams: {}\n  users:\n    relations:\n      team: {kind: belongs_to, source: teams, foreign_key: team_id}\ntables:\n  - {id: users, columns: [{name: pick, label: Pick, type: checkbox, value: team.name}, {name: name, label: Name}], actions: [{name: wipe, label: Wipe, builtin: delete}]}\n", ErrRelationID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse([]byte(tt.doc))
			require.NoError(t, err)
			_, err = f.Build(nil)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("tables:\n  - {id: users, colums: []}\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, f.Tables, 2)
	assert.Len(t, f.Sources, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBuiltinExportLink(t *testing.T) {
	ctx := context.Background()
	db := seed(t)
	f, err := Parse([]byte(`
sources: {users: {}}
tables:
  - id: users
    columns: [{name: name, label: Name}]
    actions: [{name: download, label: Download, builtin: export}]
    export: {enabled: true}
`))
	require.NoError(t, err)
	reg, err := f.Build(db)
	require.NoError(t, err)
	users, _ := reg.Get("users")
	e := datatable.New(users, db)

	res, err := e.Dispatch(ctx, datatable.Params{Action: "download", IDs: []string{"1", "3"}})
	require.NoError(t, err)
	link := res.(Result)
	assert.Equal(t, "/api/tables/users/export?exportRows=selected&selectedIds=1%2C3", link.URL)
	assert.Equal(t, "Exporting 2 selected rows", link.Message)

	res, err = e.Dispatch(ctx, datatable.Params{Action: "download"})
	require.NoError(t, err)
	assert.Equal(t, "/api/tables/users/export?exportRows=all", res.(Result).URL)
}

func TestApplyExportDefaults(t *testing.T) {
	f, err := Parse([]byte(doc))
	require.NoError(t, err)
	f.ApplyExportDefaults("csv", "all")

	users := f.Tables[0].Export
	assert.Equal(t, "xlsx", users.Format, "explicit format wins")
	assert.Equal(t, "all", users.Columns)
	assert.Nil(t, f.Tables[1].Export)
}
