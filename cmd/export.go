package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Rana718/tablo/internal/datatable"
	"github.com/Rana718/tablo/internal/table"
)

var exportCmd = &cobra.Command{
	Use:   "export <table>",
	Short: "Export a table to CSV or Excel",
	Long: `
Export every row of a declared table that matches the given search and
filters, ignoring pagination. Files are written to export.path.

Examples:
  tablo export users
  tablo export users --format xlsx --columns all
  tablo export users --search alice --filter status=active --filter status=inactive
  tablo export users --ids 1,3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, err := loadProject(ctx, cmd, true)
		if err != nil {
			return err
		}
		defer p.Close()

		engine, err := p.engine(args[0])
		if err != nil {
			return err
		}

		params, err := exportParams(cmd)
		if err != nil {
			return err
		}

		plan, err := engine.ExportPlan(params)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(p.cfg.Export.Path, 0755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
		path := filepath.Join(p.cfg.Export.Path, plan.FileName)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create export file: %w", err)
		}
		defer f.Close()

		res, err := engine.Export(ctx, params, f)
		if err != nil {
			os.Remove(path)
			return err
		}

		fmt.Printf("✅ Export completed: %s (%d rows, %d columns)\n", path, res.Rows, len(res.Columns))
		return nil
	},
}

func exportParams(cmd *cobra.Command) (datatable.Params, error) {
	format, _ := cmd.Flags().GetString("format")
	columns, _ := cmd.Flags().GetString("columns")
	search, _ := cmd.Flags().GetString("search")
	sortBy, _ := cmd.Flags().GetString("sort")
	desc, _ := cmd.Flags().GetBool("desc")
	ids, _ := cmd.Flags().GetStringSlice("ids")
	rawFilters, _ := cmd.Flags().GetStringArray("filter")

	filters := make(map[string][]string, len(rawFilters))
	for _, f := range rawFilters {
		name, value, ok := strings.Cut(f, "=")
		if !ok || name == "" {
			return datatable.Params{}, fmt.Errorf("invalid filter %q, expected name=value", f)
		}
		filters[name] = append(filters[name], value)
	}

	p := datatable.Params{
		Export:        true,
		ExportType:    format,
		ExportColumns: columns,
		Search:        search,
		Sort:          sortBy,
		Filters:       filters,
		SelectedIDs:   ids,
	}
	if sortBy != "" {
		p.Direction = table.Asc
		if desc {
			p.Direction = table.Desc
		}
	}
	if len(ids) > 0 {
		p.ExportRows = "selected"
	}
	return p, nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	addExportFlags(exportCmd.Flags())
}

func addExportFlags(fs *pflag.FlagSet) {
	fs.StringP("format", "f", "", "Export format: csv or xlsx (defaults to the table's)")
	fs.StringP("columns", "c", "", "Columns to export: visible or all (defaults to the table's)")
	fs.StringP("search", "s", "", "Search term")
	fs.String("sort", "", "Column to sort by")
	fs.Bool("desc", false, "Sort descending")
	fs.StringSlice("ids", nil, "Export only these row ids")
	fs.StringArray("filter", nil, "Filter as name=value, repeatable")
}
