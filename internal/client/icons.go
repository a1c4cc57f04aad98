package client

// Icons maps icon names sent by the server to what the renderer draws.
type Icons map[string]string

var builtinIcons = Icons{
	"check":        "✓",
	"x":            "✗",
	"circle":       "●",
	"star":         "★",
	"warning":      "⚠",
	"info":         "ℹ",
	"lock":         "🔒",
	"trash":        "🗑",
	"edit":         "✎",
	"arrow-up":     "↑",
	"arrow-down":   "↓",
	"chevron-up":   "▲",
	"chevron-down": "▼",
}

// Resolve looks name up in i first, then in the built-in set. Unknown names
// resolve to "".
func (i Icons) Resolve(name string) string {
	if glyph, ok := i[name]; ok {
		return glyph
	}
	return builtinIcons[name]
}
