package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Rana718/tablo/internal/datatable"
)

// LocalTransport serves requests from in-process engines, going through the
// same JSON encoding as the HTTP API. Column visibility is kept in memory.
type LocalTransport struct {
	engines map[string]*datatable.Engine

	mu      sync.Mutex
	visible map[string]map[string]bool
}

func NewLocalTransport(engines ...*datatable.Engine) *LocalTransport {
	t := &LocalTransport{
		engines: make(map[string]*datatable.Engine, len(engines)),
		visible: make(map[string]map[string]bool),
	}
	for _, e := range engines {
		t.engines[e.Table().ID()] = e
	}
	return t
}

func (t *LocalTransport) Fetch(ctx context.Context, tableID string, req *Request) (*datatable.Props, error) {
	e, ok := t.engines[tableID]
	if !ok {
		return nil, fmt.Errorf("table %q not found", tableID)
	}

	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	p := datatable.ParseParams(raw)

	t.mu.Lock()
	if v, ok := t.visible[tableID]; ok && p.VisibleColumns == nil {
		p.VisibleColumns = v
	}
	t.mu.Unlock()

	props, err := e.Handle(ctx, p)
	if err != nil {
		return nil, err
	}

	data, err = json.Marshal(props)
	if err != nil {
		return nil, err
	}
	var out datatable.Props
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode props: %w", err)
	}
	return &out, nil
}

func (t *LocalTransport) SaveColumns(_ context.Context, tableID string, visible map[string]bool) error {
	if _, ok := t.engines[tableID]; !ok {
		return fmt.Errorf("table %q not found", tableID)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.visible[tableID] = visible
	return nil
}
