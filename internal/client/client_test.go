package client

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rana718/tablo/internal/database"
	"github.com/Rana718/tablo/internal/datatable"
	"github.com/Rana718/tablo/internal/server"
	"github.com/Rana718/tablo/internal/table"
)

type recordingTransport struct {
	requests []*Request
	saved    []map[string]bool
	respond  func(req *Request) *datatable.Props
}

func (r *recordingTransport) Fetch(_ context.Context, _ string, req *Request) (*datatable.Props, error) {
	r.requests = append(r.requests, req)
	return r.respond(req), nil
}

func (r *recordingTransport) SaveColumns(_ context.Context, _ string, visible map[string]bool) error {
	r.saved = append(r.saved, visible)
	return nil
}

func TestClientSkipsNilRequests(t *testing.T) {
	ctx := context.Background()
	tr := &recordingTransport{respond: func(req *Request) *datatable.Props {
		return propsFor(req.Seq, rowsWithIDs(1.0))
	}}
	c := New("users", tr)
	require.NoError(t, c.Load(ctx))

	sent, err := c.Update(ctx, (*ViewState).PrevPage)
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Len(t, tr.requests, 1)

	sent, err = c.Update(ctx, (*ViewState).NextPage)
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, 2, tr.requests[1].Page)
}

func TestClientToggleColumnPersists(t *testing.T) {
	ctx := context.Background()
	tr := &recordingTransport{respond: func(req *Request) *datatable.Props {
		return propsFor(req.Seq, rowsWithIDs(1.0))
	}}
	c := New("users", tr)
	require.NoError(t, c.Load(ctx))

	require.NoError(t, c.ToggleColumn(ctx, "name"))
	assert.Equal(t, []map[string]bool{{"name": false}}, tr.saved)

	assert.ErrorIs(t, c.ToggleColumn(ctx, "id"), ErrNotToggable)
	assert.Len(t, tr.saved, 1, "rejected toggles are not persisted")
}

func startServer(t *testing.T) string {
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

	users := table.New("users", table.NewSource("users")).
		Columns(
			table.NewColumn("name", "Name"),
			table.NewColumn("status", "Status"),
		).
		Actions(&table.Action{
			Name:  "archive",
			Label: "Archive",
			Handle: func(_ context.Context, ids []string) (any, error) {
				return map[string]any{"archived": len(ids)}, nil
			},
			Confirm: func(_ context.Context, target table.Target) *table.Confirmation {
				return &table.Confirmation{Title: "Archive", Message: "Archive rows?"}
			},
		}).
		MustBuild()

	srv := server.New(db, []*table.Table{users}, server.Options{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go srv.App().Listener(ln)
	t.Cleanup(func() { srv.Shutdown() })

	return "http://" + ln.Addr().String()
}

func TestHTTPTransportRoundTrip(t *testing.T) {
	ctx := context.Background()
	base := startServer(t)
	tr := NewHTTPTransport(base)

	tables, err := tr.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []TableInfo{{ID: "users", Columns: 2}}, tables)

	c := New("users", tr)
	require.NoError(t, c.Load(ctx))

	_, err = c.Update(ctx, func(s *ViewState) *Request { return s.SearchChanged("Charl") })
	require.NoError(t, err)
	c.View(func(s *ViewState) {
		require.Len(t, s.Rows, 1)
		assert.Equal(t, "Charlie", s.Rows[0]["name"])
		s.ToggleAll()
		assert.Equal(t, []string{"3"}, s.Selected)
	})

	_, err = c.Update(ctx, func(s *ViewState) *Request { return s.TriggerAction(s.Actions[0], "") })
	require.NoError(t, err)
	c.View(func(s *ViewState) {
		require.NotNil(t, s.ConfirmData)
		assert.Equal(t, "Archive rows?", s.ConfirmData.Message)
	})

	_, err = c.Update(ctx, (*ViewState).Confirm)
	require.NoError(t, err)
	c.View(func(s *ViewState) {
		assert.Equal(t, map[string]any{"archived": float64(1)}, s.ActionResult)
		assert.Nil(t, s.ConfirmData)
	})

	require.NoError(t, c.ToggleColumn(ctx, "status"))
	other := New("users", tr)
	require.NoError(t, other.Load(ctx))
	other.View(func(s *ViewState) {
		assert.False(t, s.IsVisible("status"), "state follows the client key")
		assert.Equal(t, "Charl", s.Search)
	})

	_, err = NewHTTPTransport(base).Fetch(ctx, "missing", &Request{})
	assert.ErrorContains(t, err, "404")
}
