package client

import (
	"encoding/json"

	"github.com/Rana718/tablo/internal/table"
)

// Request is the payload sent after an interaction, in the server's wire shape.
type Request struct {
	Search         string              `json:"search"`
	Sort           string              `json:"sort,omitempty"`
	Direction      table.Direction     `json:"direction,omitempty"`
	Filters        map[string][]string `json:"filters"`
	Page           int                 `json:"page,omitempty"`
	PageSize       int                 `json:"pageSize,omitempty"`
	VisibleColumns map[string]bool     `json:"visibleColumns,omitempty"`
	Action         string              `json:"action,omitempty"`
	IDs            []string            `json:"ids,omitempty"`
	Column         string              `json:"column,omitempty"`
	Seq            int64               `json:"seq"`

	// initial requests leave empty search and filters out so the server
	// can restore them from the client's stored state.
	initial bool
}

func (r Request) MarshalJSON() ([]byte, error) {
	type wire Request
	if !r.initial {
		return json.Marshal(wire(r))
	}
	return json.Marshal(struct {
		wire
		Search  string              `json:"search,omitempty"`
		Filters map[string][]string `json:"filters,omitempty"`
	}{wire(r), r.Search, r.Filters})
}
