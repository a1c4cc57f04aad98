package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Rana718/tablo/internal/datatable"
)

// Transport carries requests for one renderer to the server.
type Transport interface {
	Fetch(ctx context.Context, tableID string, req *Request) (*datatable.Props, error)
	SaveColumns(ctx context.Context, tableID string, visible map[string]bool) error
}

// TableInfo is one entry of the server's table list.
type TableInfo struct {
	ID      string `json:"id"`
	Columns int    `json:"columns"`
}

const clientCookie = "tablo_client"

// HTTPTransport talks to a tablo server over its JSON API. Every instance
// presents its own client key so the server keeps its state apart.
type HTTPTransport struct {
	baseURL string
	key     string
	timeout time.Duration
}

func NewHTTPTransport(baseURL string) *HTTPTransport {
	return &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     uuid.NewString(),
		timeout: 30 * time.Second,
	}
}

// ClientKey is the key sent in the client cookie.
func (t *HTTPTransport) ClientKey() string {
	return t.key
}

func (t *HTTPTransport) Fetch(ctx context.Context, tableID string, req *Request) (*datatable.Props, error) {
	var props datatable.Props
	if err := t.do(ctx, fiber.MethodPost, t.tableURL(tableID), req, &props); err != nil {
		return nil, err
	}
	return &props, nil
}

func (t *HTTPTransport) SaveColumns(ctx context.Context, tableID string, visible map[string]bool) error {
	body := map[string]any{"visibleColumns": visible}
	return t.do(ctx, fiber.MethodPost, t.tableURL(tableID)+"/columns", body, nil)
}

// Tables lists the tables the server exposes.
func (t *HTTPTransport) Tables(ctx context.Context) ([]TableInfo, error) {
	var resp struct {
		Data []TableInfo `json:"data"`
	}
	if err := t.do(ctx, fiber.MethodGet, t.baseURL+"/api/tables", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (t *HTTPTransport) tableURL(tableID string) string {
	return t.baseURL + "/api/tables/" + url.PathEscape(tableID)
}

func (t *HTTPTransport) do(ctx context.Context, method, target string, body, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var a *fiber.Agent
	if method == fiber.MethodGet {
		a = fiber.Get(target)
	} else {
		a = fiber.Post(target)
	}
	a.Cookie(clientCookie, t.key)
	a.Timeout(t.requestTimeout(ctx))
	if body != nil {
		a.JSON(body)
	}
	if err := a.Parse(); err != nil {
		return fmt.Errorf("failed to prepare request: %w", err)
	}

	code, data, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("request %s failed: %w", target, errors.Join(errs...))
	}
	if code >= fiber.StatusBadRequest {
		var failure struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &failure) == nil && failure.Message != "" {
			return fmt.Errorf("server returned %d: %s", code, failure.Message)
		}
		return fmt.Errorf("server returned %d", code)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (t *HTTPTransport) requestTimeout(ctx context.Context) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d < t.timeout {
			return d
		}
	}
	return t.timeout
}
