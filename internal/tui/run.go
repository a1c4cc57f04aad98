package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rana718/tablo/internal/client"
)

// Run browses one table until the user quits.
func Run(ctx context.Context, c *client.Client, icons client.Icons) error {
	p := tea.NewProgram(New(ctx, c, icons), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
