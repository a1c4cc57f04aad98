package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the declared tables",
	Long: `
List every table in the definitions file with its source, row count and
the number of columns, filters and actions it declares.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, err := loadProject(ctx, cmd, true)
		if err != nil {
			return err
		}
		defer p.Close()

		if p.registry.Len() == 0 {
			color.Yellow("No tables declared in %s", p.cfg.TablesPath)
			return nil
		}

		headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
		cellStyle := lipgloss.NewStyle().Padding(0, 1)
		t := ltable.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == ltable.HeaderRow {
					return headerStyle
				}
				return cellStyle
			}).
			Headers("TABLE", "SOURCE", "ROWS", "COLUMNS", "FILTERS", "ACTIONS", "EXPORT")

		for _, tbl := range p.tables() {
			rows := "?"
			if n, err := p.db.CountRows(ctx, tbl.Source().Table); err != nil {
				p.log.Warnw("failed to count rows", "table", tbl.ID(), "error", err)
			} else {
				rows = strconv.Itoa(n)
			}

			export := "-"
			if e := tbl.Export(); e.Enabled {
				export = string(e.Format)
			}
			t.Row(
				tbl.ID(),
				tbl.Source().Table,
				rows,
				strconv.Itoa(len(tbl.Columns())),
				strconv.Itoa(len(tbl.Filters())),
				strconv.Itoa(len(tbl.Actions())),
				export,
			)
		}

		fmt.Println(t.Render())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}
