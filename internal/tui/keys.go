package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
)

type keyMap struct {
	Search      key.Binding
	Sort        key.Binding
	ColLeft     key.Binding
	ColRight    key.Binding
	ToggleCol   key.Binding
	Filters     key.Binding
	ClearFilter key.Binding
	Select      key.Binding
	SelectAll   key.Binding
	NextPage    key.Binding
	PrevPage    key.Binding
	FirstPage   key.Binding
	LastPage    key.Binding
	PageSize    key.Binding
	Confirm     key.Binding
	Cancel      key.Binding
	Quit        key.Binding
}

var keys = keyMap{
	Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Sort:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
	ColLeft:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev column")),
	ColRight:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next column")),
	ToggleCol:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "show/hide column")),
	Filters:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filters")),
	ClearFilter: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear filters")),
	Select:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
	SelectAll:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
	NextPage:    key.NewBinding(key.WithKeys("]", "n"), key.WithHelp("]", "next page")),
	PrevPage:    key.NewBinding(key.WithKeys("[", "p"), key.WithHelp("[", "prev page")),
	FirstPage:   key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "first page")),
	LastPage:    key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "last page")),
	PageSize:    key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "page size")),
	Confirm:     key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "confirm")),
	Cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.Search, k.Sort, k.ToggleCol, k.Filters, k.Select, k.SelectAll, k.NextPage, k.PrevPage, k.Quit}
}

// tableKeys leaves the letters the model binds to the model.
func tableKeys() table.KeyMap {
	return table.KeyMap{
		LineUp:       key.NewBinding(key.WithKeys("up", "k")),
		LineDown:     key.NewBinding(key.WithKeys("down", "j")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		GotoTop:      key.NewBinding(key.WithKeys("home", "g")),
		GotoBottom:   key.NewBinding(key.WithKeys("end", "G")),
	}
}
