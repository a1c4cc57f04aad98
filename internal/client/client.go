package client

import (
	"context"
	"sync"

	"github.com/Rana718/tablo/internal/datatable"
)

// Client couples a ViewState with a Transport for one table.
type Client struct {
	mu        sync.Mutex
	tableID   string
	transport Transport
	state     *ViewState
}

func New(tableID string, transport Transport) *Client {
	return &Client{
		tableID:   tableID,
		transport: transport,
		state:     NewViewState(),
	}
}

func (c *Client) TableID() string { return c.tableID }

// Update runs fn against the view state and sends the request it returns.
func (c *Client) Update(ctx context.Context, fn func(*ViewState) *Request) (bool, error) {
	c.mu.Lock()
	req := fn(c.state)
	c.mu.Unlock()
	return c.Send(ctx, req)
}

// Load fetches the first page.
func (c *Client) Load(ctx context.Context) error {
	_, err := c.Update(ctx, (*ViewState).Initial)
	return err
}

// Send posts req and applies the response. A nil request is a no-op. The
// returned flag is false when the response was stale.
func (c *Client) Send(ctx context.Context, req *Request) (bool, error) {
	if req == nil {
		return false, nil
	}
	props, err := c.Fetch(ctx, req)
	if err != nil {
		return false, err
	}
	return c.Apply(props), nil
}

// Fetch posts req without applying the response.
func (c *Client) Fetch(ctx context.Context, req *Request) (*datatable.Props, error) {
	return c.transport.Fetch(ctx, c.tableID, req)
}

func (c *Client) Apply(props *datatable.Props) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Apply(props)
}

// ToggleColumn flips visibility locally, then persists it.
func (c *Client) ToggleColumn(ctx context.Context, name string) error {
	c.mu.Lock()
	visible, err := c.state.ToggleColumn(name)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	return c.SaveColumns(ctx, visible)
}

func (c *Client) SaveColumns(ctx context.Context, visible map[string]bool) error {
	return c.transport.SaveColumns(ctx, c.tableID, visible)
}

// View runs fn with the state locked.
func (c *Client) View(fn func(*ViewState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.state)
}
