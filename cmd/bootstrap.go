package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Rana718/tablo/internal/config"
	"github.com/Rana718/tablo/internal/database"
	"github.com/Rana718/tablo/internal/datatable"
	"github.com/Rana718/tablo/internal/definition"
	"github.com/Rana718/tablo/internal/logger"
	"github.com/Rana718/tablo/internal/table"
)

var errUnknownTable = errors.New("unknown table")

// project is everything a command needs once config, logging, the database
// and the table definitions are loaded.
type project struct {
	cfg      *config.Config
	log      *zap.SugaredLogger
	db       *database.DB
	registry *definition.Registry
}

func loadProject(ctx context.Context, cmd *cobra.Command, quiet bool) (*project, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if dbURL, _ := cmd.Flags().GetString("db"); dbURL != "" {
		os.Setenv(cfg.Database.URLEnv, dbURL)
		if !quiet {
			fmt.Printf("📊 Using database: %s\n", maskDBURL(dbURL))
		}
	}
	if path, _ := cmd.Flags().GetString("tables"); path != "" {
		cfg.TablesPath = path
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		Compress:   cfg.Log.Compress,
		Quiet:      quiet,
	})
	if err != nil {
		return nil, err
	}

	dbURL, err := cfg.GetDatabaseURL()
	if err != nil {
		return nil, err
	}
	db, err := database.Open(ctx, cfg.Database.Provider, dbURL)
	if err != nil {
		return nil, err
	}

	defs, err := definition.Load(cfg.TablesPath)
	if err != nil {
		db.Close()
		return nil, err
	}
	defs.ApplyExportDefaults(cfg.Export.Format, cfg.Export.Columns)

	registry, err := defs.Build(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("invalid table definitions in %s: %w", cfg.TablesPath, err)
	}

	log.Debugw("project loaded", "provider", cfg.Database.Provider, "tables", registry.Len())
	return &project{cfg: cfg, log: log, db: db, registry: registry}, nil
}

func (p *project) Close() {
	p.db.Close()
	p.log.Sync()
}

func (p *project) tables() []*table.Table {
	out := make([]*table.Table, 0, p.registry.Len())
	for _, id := range p.registry.IDs() {
		t, _ := p.registry.Get(id)
		out = append(out, t)
	}
	return out
}

func (p *project) engineOptions() []datatable.Option {
	return []datatable.Option{
		datatable.WithLogger(p.log),
		datatable.WithPageSize(p.cfg.Table.PageSize),
		datatable.WithPageSizes(p.cfg.Table.PageSizes),
		datatable.WithSearchFields(p.cfg.Table.SearchFields...),
		datatable.WithTranslations(p.cfg.Translations),
	}
}

func (p *project) engine(tableID string) (*datatable.Engine, error) {
	t, ok := p.registry.Get(tableID)
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", errUnknownTable, tableID, p.registry.IDs())
	}
	return datatable.New(t, p.db, p.engineOptions()...), nil
}

// maskDBURL masks password in database URL for display
func maskDBURL(url string) string {
	if len(url) < 20 {
		return "***"
	}
	return url[:10] + "***" + url[len(url)-10:]
}
