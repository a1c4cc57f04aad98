package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Rana718/tablo/internal/client"
	"github.com/Rana718/tablo/internal/datatable"
	"github.com/Rana718/tablo/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse [table]",
	Short: "Browse a table in the terminal",
	Long: `
Open a table in an interactive terminal view. Without --url the table is
queried directly from the configured database; with --url it is fetched from a
running "tablo serve".

The table may be omitted when only one is declared.

Examples:
  tablo browse users
  tablo browse users --url http://localhost:5580`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		baseURL, _ := cmd.Flags().GetString("url")
		var (
			transport client.Transport
			tableIDs  []string
		)
		if baseURL != "" {
			remote := client.NewHTTPTransport(baseURL)
			infos, err := remote.Tables(ctx)
			if err != nil {
				return fmt.Errorf("failed to list tables at %s: %w", baseURL, err)
			}
			for _, info := range infos {
				tableIDs = append(tableIDs, info.ID)
			}
			transport = remote
		} else {
			p, err := loadProject(ctx, cmd, true)
			if err != nil {
				return err
			}
			defer p.Close()

			engines := make([]*datatable.Engine, 0, p.registry.Len())
			for _, t := range p.tables() {
				engines = append(engines, datatable.New(t, p.db, p.engineOptions()...))
			}
			tableIDs = p.registry.IDs()
			transport = client.NewLocalTransport(engines...)
		}

		tableID, err := pickTable(args, tableIDs)
		if err != nil {
			return err
		}
		return tui.Run(ctx, client.New(tableID, transport), nil)
	},
}

func pickTable(args, available []string) (string, error) {
	if len(args) == 1 {
		for _, id := range available {
			if id == args[0] {
				return id, nil
			}
		}
		return "", fmt.Errorf("%w: %s (available: %v)", errUnknownTable, args[0], available)
	}
	switch len(available) {
	case 0:
		return "", fmt.Errorf("no tables declared")
	case 1:
		return available[0], nil
	}
	return "", fmt.Errorf("several tables declared, pick one of %v", available)
}

func init() {
	rootCmd.AddCommand(browseCmd)
	browseCmd.Flags().String("url", "", "Base URL of a running tablo server")
}
