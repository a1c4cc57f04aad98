package state

import (
	"context"
	"fmt"
)

// State is the table UI state remembered per client between requests.
type State struct {
	Search         string              `json:"search,omitempty"`
	Sort           string              `json:"sort,omitempty"`
	Direction      string              `json:"direction,omitempty"`
	Filters        map[string][]string `json:"filters,omitempty"`
	PageSize       int                 `json:"pageSize,omitempty"`
	VisibleColumns map[string]bool     `json:"visibleColumns,omitempty"`
}

// Store persists State keyed by table id and client key. Get returns nil without
// an error when nothing is stored.
type Store interface {
	Get(ctx context.Context, tableID, clientKey string) (*State, error)
	Put(ctx context.Context, tableID, clientKey string, s *State) error
	Delete(ctx context.Context, tableID, clientKey string) error
}

// Merge fills the request keys the client did not send from the stored state.
// The page is never restored.
func (s *State) Merge(raw map[string]any) map[string]any {
	if raw == nil {
		raw = make(map[string]any)
	}
	if s == nil {
		return raw
	}

	setDefault := func(key string, v any, empty bool) {
		if empty {
			return
		}
		if _, ok := raw[key]; !ok {
			raw[key] = v
		}
	}
	setDefault("search", s.Search, s.Search == "")
	setDefault("sort", s.Sort, s.Sort == "")
	setDefault("direction", s.Direction, s.Direction == "")
	setDefault("pageSize", s.PageSize, s.PageSize == 0)

	if !hasPrefixed(raw, "filters") && len(s.Filters) > 0 {
		filters := make(map[string]any, len(s.Filters))
		for name, values := range s.Filters {
			filters[name] = values
		}
		raw["filters"] = filters
	}
	if !hasPrefixed(raw, "visibleColumns") && len(s.VisibleColumns) > 0 {
		raw["visibleColumns"] = s.VisibleColumns
	}
	return raw
}

// hasPrefixed reports whether raw carries key itself or any "key[...]" entry.
func hasPrefixed(raw map[string]any, key string) bool {
	if _, ok := raw[key]; ok {
		return true
	}
	for k := range raw {
		if len(k) > len(key) && k[:len(key)+1] == key+"[" {
			return true
		}
	}
	return false
}

func storeKey(tableID, clientKey string) string {
	return fmt.Sprintf("tablo:state:%s:%s", tableID, clientKey)
}
