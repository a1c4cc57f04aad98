package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/Rana718/tablo/internal/datatable"
	"github.com/Rana718/tablo/internal/table"
)

var (
	ErrNotToggable   = errors.New("column cannot be toggled")
	ErrUnknownColumn = errors.New("unknown column")
)

// PendingAction is an action waiting on the user's confirmation.
type PendingAction struct {
	Name   string
	Column string
	IDs    []string
}

// ViewState is the renderer's copy of one table. Transitions return the
// request to send next, or nil when nothing needs to go to the server.
type ViewState struct {
	Search         string
	Sort           string
	Direction      table.Direction
	Filters        map[string][]string
	Page           int
	PageCount      int
	Total          int
	PageSize       int
	PageSizes      []int
	VisibleColumns map[string]bool
	Selected       []string
	Pending        *PendingAction
	ConfirmData    *table.Confirmation
	ActionResult   any

	Columns      []table.ColumnDescriptor
	FilterDefs   []table.FilterDescriptor
	Actions      []table.ActionDescriptor
	Rows         []datatable.Row
	Exportable   bool
	Translations map[string]string

	seq     int64
	applied int64
}

func NewViewState() *ViewState {
	return &ViewState{
		Direction:      table.Asc,
		Filters:        make(map[string][]string),
		VisibleColumns: make(map[string]bool),
		Page:           1,
		PageCount:      1,
	}
}

// Initial is the first request, carrying whatever state is already set.
func (s *ViewState) Initial() *Request {
	req := s.request()
	req.initial = true
	return req
}

func (s *ViewState) request() *Request {
	s.seq++
	filters := make(map[string][]string, len(s.Filters))
	for k, v := range s.Filters {
		filters[k] = slices.Clone(v)
	}
	req := &Request{
		Search:   s.Search,
		Sort:     s.Sort,
		Filters:  filters,
		Page:     s.Page,
		PageSize: s.PageSize,
		Seq:      s.seq,
	}
	if s.Sort != "" {
		req.Direction = s.Direction
	}
	return req
}

// SearchChanged sends the new term from the first page. Everything else is kept.
func (s *ViewState) SearchChanged(term string) *Request {
	if term == s.Search {
		return nil
	}
	s.Search = term
	s.Page = 1
	return s.request()
}

// SortClicked cycles asc, desc, asc on the same column. A different column
// starts at asc.
func (s *ViewState) SortClicked(name string) *Request {
	col, ok := s.column(name)
	if !ok || !col.Sortable {
		return nil
	}
	if s.Sort == name {
		if s.Direction == table.Asc {
			s.Direction = table.Desc
		} else {
			s.Direction = table.Asc
		}
	} else {
		s.Sort = name
		s.Direction = table.Asc
	}
	return s.request()
}

// FilterToggled flips one option and resubmits the whole active filter map.
// A single-choice filter replaces its value, or clears it when the same
// value is chosen again.
func (s *ViewState) FilterToggled(name, value string) *Request {
	multiple := false
	for _, f := range s.FilterDefs {
		if f.Name == name {
			multiple = f.Multiple
			break
		}
	}

	current := s.Filters[name]
	var next []string
	switch {
	case slices.Contains(current, value):
		next = slices.DeleteFunc(slices.Clone(current), func(v string) bool { return v == value })
	case multiple:
		next = append(slices.Clone(current), value)
	default:
		next = []string{value}
	}

	filters := make(map[string][]string, len(s.Filters)+1)
	for k, v := range s.Filters {
		if k != name && len(v) > 0 {
			filters[k] = v
		}
	}
	if len(next) > 0 {
		filters[name] = next
	}
	s.Filters = filters
	s.Page = 1
	return s.request()
}

func (s *ViewState) ClearFilters() *Request {
	if len(s.Filters) == 0 {
		return nil
	}
	s.Filters = make(map[string][]string)
	s.Page = 1
	return s.request()
}

// ToggleColumn flips a column's visibility locally and returns the map to
// persist on the server.
func (s *ViewState) ToggleColumn(name string) (map[string]bool, error) {
	col, ok := s.column(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	if !col.Toggable {
		return nil, fmt.Errorf("%w: %s", ErrNotToggable, name)
	}
	if s.VisibleColumns == nil {
		s.VisibleColumns = make(map[string]bool)
	}
	s.VisibleColumns[name] = !s.IsVisible(name)

	out := make(map[string]bool, len(s.VisibleColumns))
	for k, v := range s.VisibleColumns {
		out[k] = v
	}
	return out, nil
}

func (s *ViewState) IsVisible(name string) bool {
	if v, ok := s.VisibleColumns[name]; ok {
		return v
	}
	col, ok := s.column(name)
	return ok && col.Visible
}

// ToggleRow selects or deselects a row id. Disabled or unknown rows are
// left alone.
func (s *ViewState) ToggleRow(id string) bool {
	if i := slices.Index(s.Selected, id); i >= 0 {
		s.Selected = slices.Delete(s.Selected, i, i+1)
		return true
	}
	if !slices.Contains(s.selectable(), id) {
		return false
	}
	s.Selected = append(s.Selected, id)
	return true
}

// ToggleAll selects every selectable row on the page, or deselects exactly
// that set when all of it is already selected.
func (s *ViewState) ToggleAll() {
	all := s.selectable()
	if len(all) == 0 {
		return
	}
	allSelected := true
	for _, id := range all {
		if !slices.Contains(s.Selected, id) {
			allSelected = false
			break
		}
	}
	if allSelected {
		s.Selected = slices.DeleteFunc(s.Selected, func(id string) bool { return slices.Contains(all, id) })
		return
	}
	for _, id := range all {
		if !slices.Contains(s.Selected, id) {
			s.Selected = append(s.Selected, id)
		}
	}
}

func (s *ViewState) IsSelected(id string) bool {
	return slices.Contains(s.Selected, id)
}

// TriggerAction starts a bulk action on the selection, or a row action when
// column is set. Confirmable actions first ask the server for the dialog
// content. Link actions are followed by the caller and send nothing.
func (s *ViewState) TriggerAction(action table.ActionDescriptor, column string, ids ...string) *Request {
	if action.Type == "group" || action.URL != "" {
		return nil
	}
	if column == "" && len(ids) == 0 {
		ids = slices.Clone(s.Selected)
	}

	s.ConfirmData = nil
	s.Pending = nil
	if action.Confirmable {
		s.Pending = &PendingAction{Name: action.Name, Column: column, IDs: ids}
		return s.actionRequest(action.Name+datatable.ConfirmSuffix, column, ids)
	}
	return s.actionRequest(action.Name, column, ids)
}

// Confirm fires the pending action. It needs the dialog content to have
// arrived.
func (s *ViewState) Confirm() *Request {
	if s.Pending == nil || s.ConfirmData == nil || s.ConfirmData.Disabled {
		return nil
	}
	p := s.Pending
	s.Pending = nil
	s.ConfirmData = nil
	return s.actionRequest(p.Name, p.Column, p.IDs)
}

func (s *ViewState) CancelConfirm() {
	s.Pending = nil
	s.ConfirmData = nil
}

func (s *ViewState) actionRequest(name, column string, ids []string) *Request {
	req := s.request()
	req.Action = name
	req.Column = column
	req.IDs = ids
	return req
}

func (s *ViewState) GotoPage(n int) *Request {
	if n < 1 || n > s.PageCount || n == s.Page {
		return nil
	}
	s.Page = n
	return s.request()
}

func (s *ViewState) NextPage() *Request  { return s.GotoPage(s.Page + 1) }
func (s *ViewState) PrevPage() *Request  { return s.GotoPage(s.Page - 1) }
func (s *ViewState) FirstPage() *Request { return s.GotoPage(1) }
func (s *ViewState) LastPage() *Request  { return s.GotoPage(s.PageCount) }

func (s *ViewState) SetPageSize(n int) *Request {
	if n < 1 || n == s.PageSize {
		return nil
	}
	s.PageSize = n
	s.Page = 1
	return s.request()
}

// Apply merges a response. A response older than the newest one applied is
// dropped and Apply reports false.
func (s *ViewState) Apply(props *datatable.Props) bool {
	if props == nil {
		return false
	}
	if props.Seq != 0 && props.Seq < s.applied {
		return false
	}
	if props.Seq > s.applied {
		s.applied = props.Seq
	}

	s.Columns = props.Columns
	s.FilterDefs = props.Filters
	s.Actions = props.Actions
	s.Search = props.Search
	s.Sort = props.Sort
	s.Direction = props.Direction
	if s.Direction == "" {
		s.Direction = table.Asc
	}
	s.Filters = make(map[string][]string, len(props.CurrentFilters))
	for k, v := range props.CurrentFilters {
		if len(v) > 0 {
			s.Filters[k] = v
		}
	}
	s.PageSize = props.PageSize
	s.PageSizes = props.PageSizes
	if props.VisibleColumns != nil {
		s.VisibleColumns = props.VisibleColumns
	}
	s.Exportable = props.Exportable
	s.Translations = props.Translations

	if props.Data != nil {
		s.Rows = props.Data.Rows
		s.Page = max(props.Data.CurrentPage, 1)
		s.PageCount = max(props.Data.LastPage, 1)
		s.Total = props.Data.Total
	}

	s.ActionResult = nil
	if confirm, ok := confirmData(props.ActionResult); ok {
		if s.Pending != nil {
			s.ConfirmData = confirm
		}
	} else {
		s.ActionResult = props.ActionResult
		if props.ActionResult == nil && s.Pending != nil && s.ConfirmData == nil {
			// no confirmation policy answered; nothing to confirm
			s.Pending = nil
		}
	}

	s.reconcile()
	return true
}

// reconcile keeps only selected ids still present and enabled on the page.
func (s *ViewState) reconcile() {
	present := s.selectable()
	s.Selected = slices.DeleteFunc(s.Selected, func(id string) bool {
		return !slices.Contains(present, id)
	})
}

// selectable lists the ids the user may select: non-disabled checkbox values
// when the table has a checkbox column, otherwise every scalar row id.
func (s *ViewState) selectable() []string {
	checkbox, hasCheckbox := s.checkboxColumn()
	out := make([]string, 0, len(s.Rows))
	for _, row := range s.Rows {
		if hasCheckbox {
			if disabled, _ := row[checkbox+"_disabled"].(bool); disabled {
				continue
			}
			if id, ok := RowKey(row[checkbox+"_value"]); ok {
				out = append(out, id)
			}
			continue
		}
		if id, ok := RowKey(row["id"]); ok {
			out = append(out, id)
		}
	}
	return out
}

func (s *ViewState) checkboxColumn() (string, bool) {
	for _, c := range s.Columns {
		if c.Type == table.CheckboxColumn {
			return c.Name, true
		}
	}
	return "", false
}

func (s *ViewState) column(name string) (table.ColumnDescriptor, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return table.ColumnDescriptor{}, false
}

// RowKey renders a scalar row id as a string. Null and composite ids have no key.
func RowKey(v any) (string, bool) {
	switch id := v.(type) {
	case nil:
		return "", false
	case string:
		return id, true
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), true
	case json.Number:
		return id.String(), true
	case bool:
		return strconv.FormatBool(id), true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32:
		return fmt.Sprint(id), true
	default:
		return "", false
	}
}

func confirmData(result any) (*table.Confirmation, bool) {
	switch r := result.(type) {
	case datatable.ConfirmResult:
		return r.ConfirmData, r.ConfirmData != nil
	case *datatable.ConfirmResult:
		return r.ConfirmData, r != nil && r.ConfirmData != nil
	case map[string]any:
		raw, ok := r["confirmData"]
		if !ok {
			return nil, false
		}
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, false
		}
		c := &table.Confirmation{}
		c.Title, _ = m["title"].(string)
		c.Message, _ = m["message"].(string)
		c.Confirm, _ = m["confirm"].(string)
		c.Cancel, _ = m["cancel"].(string)
		c.Disabled, _ = m["disabled"].(bool)
		return c, true
	}
	return nil, false
}
