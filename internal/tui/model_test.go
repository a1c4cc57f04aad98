package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rana718/tablo/internal/client"
	"github.com/Rana718/tablo/internal/database"
	"github.com/Rana718/tablo/internal/datatable"
	tablo "github.com/Rana718/tablo/internal/table"
)

func newModel(t *testing.T) (Model, *client.Client) {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for _, stmt := range []string{
		`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, status TEXT)`,
		`INSERT INTO users VALUES (1, 'Alice', 'active'), (2, 'Bob', 'inactive'), (3, 'Charlie', 'active')`,
	} {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}

	users := tablo.New("users", tablo.NewSource("users")).
		Columns(
			tablo.NewColumn("name", "Name"),
			tablo.NewColumn("status", "Status").IconUsing(func(r tablo.Record) string {
				if r.Get("status") == "active" {
					return "check"
				}
				return "x"
			}),
		).
		Filters(tablo.NewFilter("status", "Status").Multiple().Options(
			tablo.Option{Value: "active", Label: "Active"},
			tablo.Option{Value: "inactive", Label: "Inactive"},
		)).
		Actions(&tablo.Action{
			Name:  "archive",
			Label: "Archive",
			Handle: func(_ context.Context, ids []string) (any, error) {
				return map[string]any{"message": "archived"}, nil
			},
			Confirm: func(context.Context, tablo.Target) *tablo.Confirmation {
				return &tablo.Confirmation{Title: "Archive", Message: "Sure?"}
			},
		}).
		MustBuild()

	c := client.New("users", client.NewLocalTransport(datatable.New(users, db)))
	m := New(ctx, c, nil)
	return run(t, m, m.Init()), c
}

// run feeds cmd results back into the model until nothing is left.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for cmd != nil {
		msg := cmd()
		if _, ok := msg.(errMsg); ok {
			t.Fatalf("unexpected error: %v", msg.(errMsg).err)
		}
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, cmd := m.Update(msg)
		m = next.(Model)
		if m.mode == modeSearch {
			// cursor blinks only matter to a real terminal
			continue
		}
		m = run(t, m, cmd)
	}
	return m
}

func names(c *client.Client) []any {
	var out []any
	c.View(func(s *client.ViewState) {
		for _, r := range s.Rows {
			out = append(out, r["name"])
		}
	})
	return out
}

func TestInitialLoadRenders(t *testing.T) {
	m, c := newModel(t)

	assert.Equal(t, []any{"Alice", "Bob", "Charlie"}, names(c))
	assert.Len(t, m.tbl.Rows(), 3)
	assert.Equal(t, "✓ active", m.tbl.Rows()[0][2], "icons resolve through the built-in set")

	view := m.View()
	assert.Contains(t, view, "users")
	assert.Contains(t, view, "Showing 1 to 3 of 3")
}

func TestSortAndSearchKeys(t *testing.T) {
	m, c := newModel(t)

	m = press(t, m, "s", "s")
	assert.Equal(t, []any{"Charlie", "Bob", "Alice"}, names(c))
	assert.Contains(t, m.tbl.Columns()[1].Title, "↓")

	m = press(t, m, "/", "b", "o", "b", "enter")
	assert.Equal(t, []any{"Bob"}, names(c))
	assert.Equal(t, modeNormal, m.mode)
}

func TestFilterPicker(t *testing.T) {
	m, c := newModel(t)

	m = press(t, m, "f", "down", " ")
	assert.Equal(t, []any{"Bob"}, names(c))
	assert.Contains(t, m.View(), "[x] Status: Inactive")

	m = press(t, m, "esc", "x")
	assert.Len(t, names(c), 3)
}

func TestColumnToggleAndSelection(t *testing.T) {
	m, c := newModel(t)

	m = press(t, m, "right", "v")
	c.View(func(s *client.ViewState) { assert.False(t, s.IsVisible("status")) })
	assert.Len(t, m.tbl.Columns(), 2)

	m = press(t, m, " ")
	c.View(func(s *client.ViewState) { assert.Equal(t, []string{"1"}, s.Selected) })
	assert.Equal(t, "[x]", m.tbl.Rows()[0][0])

	press(t, m, "a")
	c.View(func(s *client.ViewState) { assert.Equal(t, []string{"1", "2", "3"}, s.Selected) })
}

func TestConfirmKeys(t *testing.T) {
	m, c := newModel(t)

	m = press(t, m, "1")
	c.View(func(s *client.ViewState) { assert.Nil(t, s.Pending, "bulk actions need a selection") })

	m = press(t, m, "a", "1")
	assert.Contains(t, m.View(), "Sure?")

	m = press(t, m, "n")
	c.View(func(s *client.ViewState) { assert.Nil(t, s.ConfirmData) })

	m = press(t, m, "1", "y")
	assert.Equal(t, "archived", m.status)
	c.View(func(s *client.ViewState) { assert.Nil(t, s.ConfirmData) })
}

func TestPageKeysStopAtBoundaries(t *testing.T) {
	m, _ := newModel(t)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("]")})
	assert.Nil(t, cmd, "a single page has nowhere to go")
	assert.False(t, next.(Model).loading)
}

func TestNextPageSize(t *testing.T) {
	assert.Equal(t, 25, nextPageSize([]int{10, 25, 50}, 10))
	assert.Equal(t, 10, nextPageSize([]int{10, 25, 50}, 50))
	assert.Equal(t, 10, nextPageSize([]int{10, 25, 50}, 15))
	assert.Equal(t, 15, nextPageSize(nil, 15))
}
