package table

import "context"

// ActionItem is either an *Action or an *ActionGroup.
type ActionItem interface {
	actionItem()
	Descriptor() ActionDescriptor
	RowDescriptor(rec Record) ActionDescriptor
}

// Confirmation is the content of the dialog shown before an action runs.
type Confirmation struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Confirm  string `json:"confirm"`
	Cancel   string `json:"cancel"`
	Disabled bool   `json:"disabled"`
}

// Target is what an action runs against: the selected ids of a bulk action or
// the single record of a row action.
type Target struct {
	IDs    []string
	Record Record
}

type Action struct {
	Name  string
	Label string
	Icon  string
	Style string
	Props map[string]any

	// Handle runs a bulk action against the selected ids. Row actions without
	// HandleRecord fall back to it with the row id.
	Handle       func(ctx context.Context, ids []string) (any, error)
	HandleRecord func(ctx context.Context, rec Record) (any, error)

	// Confirm, when set, gates the action behind a confirmation dialog.
	Confirm func(ctx context.Context, target Target) *Confirmation

	// URL resolves a link for row actions, per row.
	URL func(rec Record) string
}

type ActionGroup struct {
	Name    string
	Label   string
	Icon    string
	Style   string
	Actions []*Action
}

func (*Action) actionItem()      {}
func (*ActionGroup) actionItem() {}

type ActionDescriptor struct {
	Type        string             `json:"type"`
	Name        string             `json:"name"`
	Label       string             `json:"label"`
	Icon        string             `json:"icon,omitempty"`
	Style       string             `json:"style,omitempty"`
	Props       map[string]any     `json:"props,omitempty"`
	Confirmable bool               `json:"confirmable"`
	URL         string             `json:"url,omitempty"`
	Actions     []ActionDescriptor `json:"actions,omitempty"`
}

func (a *Action) Descriptor() ActionDescriptor {
	return ActionDescriptor{
		Type:        "action",
		Name:        a.Name,
		Label:       a.Label,
		Icon:        a.Icon,
		Style:       a.Style,
		Props:       a.Props,
		Confirmable: a.Confirm != nil,
	}
}

// RowDescriptor is the descriptor with the URL resolved for rec.
func (a *Action) RowDescriptor(rec Record) ActionDescriptor {
	d := a.Descriptor()
	if a.URL != nil {
		d.URL = a.URL(rec)
	}
	return d
}

func (g *ActionGroup) Descriptor() ActionDescriptor {
	members := make([]ActionDescriptor, 0, len(g.Actions))
	for _, a := range g.Actions {
		members = append(members, a.Descriptor())
	}
	return ActionDescriptor{
		Type:    "group",
		Name:    g.Name,
		Label:   g.Label,
		Icon:    g.Icon,
		Style:   g.Style,
		Actions: members,
	}
}

func (g *ActionGroup) RowDescriptor(rec Record) ActionDescriptor {
	d := g.Descriptor()
	for i, a := range g.Actions {
		d.Actions[i] = a.RowDescriptor(rec)
	}
	return d
}

// Flatten lists every action of items, group members included, in lookup
// order: top-level actions first, then group members.
func Flatten(items []ActionItem) []*Action {
	var out []*Action
	for _, item := range items {
		if a, ok := item.(*Action); ok {
			out = append(out, a)
		}
	}
	for _, item := range items {
		if g, ok := item.(*ActionGroup); ok {
			out = append(out, g.Actions...)
		}
	}
	return out
}
