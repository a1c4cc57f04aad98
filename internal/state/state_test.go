package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	got, err := store.Get(ctx, "users", "client-a")
	require.NoError(t, err)
	assert.Nil(t, got)

	want := &State{Sort: "name", Direction: "desc", Filters: map[string][]string{"status": {"active"}}}
	require.NoError(t, store.Put(ctx, "users", "client-a", want))

	got, err = store.Get(ctx, "users", "client-a")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	other, err := store.Get(ctx, "users", "client-b")
	require.NoError(t, err)
	assert.Nil(t, other, "state is scoped per client")

	require.NoError(t, store.Delete(ctx, "users", "client-a"))
	got, err = store.Get(ctx, "users", "client-a")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Put(ctx, "users", "c", &State{Search: "bob"}))
	now = now.Add(30 * time.Second)
	got, err := store.Get(ctx, "users", "c")
	require.NoError(t, err)
	require.NotNil(t, got)

	now = now.Add(time.Minute)
	got, err = store.Get(ctx, "users", "c")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMergeFillsMissingKeys(t *testing.T) {
	s := &State{
		Search:         "bob",
		Sort:           "name",
		Direction:      "desc",
		PageSize:       25,
		Filters:        map[string][]string{"status": {"active"}},
		VisibleColumns: map[string]bool{"email": false},
	}

	raw := s.Merge(map[string]any{"search": "", "filters[team]": "Sales", "page": 2})
	assert.Equal(t, "", raw["search"], "explicit empty search wins")
	assert.Equal(t, "name", raw["sort"])
	assert.Equal(t, "desc", raw["direction"])
	assert.Equal(t, 25, raw["pageSize"])
	assert.NotContains(t, raw, "filters", "bracketed filters count as sent")
	assert.Equal(t, map[string]bool{"email": false}, raw["visibleColumns"])
	assert.Equal(t, 2, raw["page"])

	var empty *State
	assert.Equal(t, map[string]any{"x": 1}, empty.Merge(map[string]any{"x": 1}))
}
