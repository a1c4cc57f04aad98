package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Rana718/tablo/internal/datatable"
	"github.com/Rana718/tablo/internal/state"
)

const clientCookie = "tablo_client"

type tableInfo struct {
	ID      string `json:"id"`
	Columns int    `json:"columns"`
}

func (s *Server) engine(c *fiber.Ctx) (*datatable.Engine, error) {
	id := c.Params("id")
	e, ok := s.engines[id]
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("table %q not found", id))
	}
	return e, nil
}

// clientKey identifies the browser for the state store, issuing a cookie on
// first contact.
func (s *Server) clientKey(c *fiber.Ctx) string {
	if key := c.Cookies(clientCookie); key != "" {
		if _, err := uuid.Parse(key); err == nil {
			return key
		}
	}
	key := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     clientCookie,
		Value:    key,
		Path:     "/",
		Expires:  time.Now().Add(365 * 24 * time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return key
}

// requestParams reads the query string, or the JSON body for POST, and fills
// what the client left out from its stored state.
func (s *Server) requestParams(c *fiber.Ctx, tableID, clientKey string) (datatable.Params, error) {
	raw := queryParams(c)
	if c.Method() == fiber.MethodPost && len(bytes.TrimSpace(c.Body())) > 0 {
		raw = make(map[string]any)
		if err := json.Unmarshal(c.Body(), &raw); err != nil {
			return datatable.Params{}, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}

	stored, err := s.store.Get(c.UserContext(), tableID, clientKey)
	if err != nil {
		s.log.Warnw("failed to load table state", "table", tableID, "error", err)
	}
	return datatable.ParseParams(stored.Merge(raw)), nil
}

func (s *Server) saveState(c *fiber.Ctx, tableID, clientKey string, p datatable.Params, props *datatable.Props) {
	st := &state.State{
		Search:         p.Search,
		Sort:           props.Sort,
		Direction:      string(props.Direction),
		Filters:        props.CurrentFilters,
		PageSize:       p.PageSize,
		VisibleColumns: p.VisibleColumns,
	}
	if err := s.store.Put(c.UserContext(), tableID, clientKey, st); err != nil {
		s.log.Warnw("failed to save table state", "table", tableID, "error", err)
	}
}

// props runs one table request end to end.
func (s *Server) props(c *fiber.Ctx) (*datatable.Props, error) {
	e, err := s.engine(c)
	if err != nil {
		return nil, err
	}
	id := e.Table().ID()
	key := s.clientKey(c)

	p, err := s.requestParams(c, id, key)
	if err != nil {
		return nil, err
	}

	props, err := e.Handle(c.UserContext(), p)
	if err != nil {
		s.log.Errorw("table request failed", "table", id, "error", err)
		return nil, err
	}
	s.saveState(c, id, key, p, props)
	return props, nil
}

func (s *Server) handleProps(c *fiber.Ctx) error {
	props, err := s.props(c)
	if err != nil {
		return JSONError(c, statusFor(err), err.Error())
	}
	return c.JSON(props)
}

func (s *Server) handleListTables(c *fiber.Ctx) error {
	tables := make([]tableInfo, 0, len(s.order))
	for _, id := range s.order {
		tables = append(tables, tableInfo{ID: id, Columns: len(s.engines[id].Table().Columns())})
	}
	return JSON(c, tables)
}

func (s *Server) handleColumns(c *fiber.Ctx) error {
	e, err := s.engine(c)
	if err != nil {
		return JSONError(c, statusFor(err), err.Error())
	}

	var req struct {
		VisibleColumns map[string]bool `json:"visibleColumns"`
	}
	if err := c.BodyParser(&req); err != nil {
		return JSONError(c, fiber.StatusBadRequest, "Invalid request")
	}

	visible := make(map[string]bool, len(req.VisibleColumns))
	for name, v := range req.VisibleColumns {
		col, ok := e.Table().Column(name)
		if !ok || !col.IsToggable() {
			continue
		}
		visible[name] = v
	}

	id, key := e.Table().ID(), s.clientKey(c)
	st, err := s.store.Get(c.UserContext(), id, key)
	if err != nil {
		return JSONError(c, fiber.StatusInternalServerError, err.Error())
	}
	if st == nil {
		st = &state.State{}
	}
	st.VisibleColumns = visible
	if err := s.store.Put(c.UserContext(), id, key, st); err != nil {
		return JSONError(c, fiber.StatusInternalServerError, err.Error())
	}
	return JSON(c, visible)
}

func (s *Server) handleExport(c *fiber.Ctx) error {
	e, err := s.engine(c)
	if err != nil {
		return JSONError(c, statusFor(err), err.Error())
	}

	p, err := s.requestParams(c, e.Table().ID(), s.clientKey(c))
	if err != nil {
		return JSONError(c, statusFor(err), err.Error())
	}
	p.Export = true

	var buf bytes.Buffer
	res, err := e.Export(c.UserContext(), p, &buf)
	if err != nil {
		return JSONError(c, statusFor(err), err.Error())
	}

	c.Set(fiber.HeaderContentType, res.ContentType)
	c.Attachment(res.FileName)
	return c.Send(buf.Bytes())
}

// UI Handlers
func (s *Server) handleIndex(c *fiber.Ctx) error {
	return c.Render("templates/index", fiber.Map{"Title": "Tablo", "Tables": s.order})
}

func (s *Server) handleTablePage(c *fiber.Ctx) error {
	props, err := s.props(c)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(props)
	if err != nil {
		return err
	}

	visible := make([]any, 0, len(props.Columns))
	for _, col := range props.Columns {
		if props.VisibleColumns[col.Name] {
			visible = append(visible, col)
		}
	}

	return c.Render("templates/table", fiber.Map{
		"Title":   props.ID,
		"Props":   props,
		"Columns": visible,
		"Page":    string(encoded),
	})
}
