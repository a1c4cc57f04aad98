package config

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/spf13/viper"

	"github.com/Rana718/tablo/internal/table"
)

const FileName = "tablo.config.json"

type Config struct {
	TablesPath   string            `json:"tables_path" mapstructure:"tables_path"`
	Database     Database          `json:"database" mapstructure:"database"`
	Server       Server            `json:"server" mapstructure:"server"`
	Table        Table             `json:"table" mapstructure:"table"`
	Export       Export            `json:"export" mapstructure:"export"`
	State        State             `json:"state" mapstructure:"state"`
	Log          Log               `json:"log" mapstructure:"log"`
	Translations map[string]string `json:"translations,omitempty" mapstructure:"translations"`
}

type Database struct {
	Provider string `json:"provider" mapstructure:"provider"`
	URLEnv   string `json:"url_env" mapstructure:"url_env"`
}

type Server struct {
	Port int `json:"port" mapstructure:"port"`
}

type Table struct {
	PageSize     int      `json:"page_size" mapstructure:"page_size"`
	PageSizes    []int    `json:"page_sizes" mapstructure:"page_sizes"`
	SearchFields []string `json:"search_fields,omitempty" mapstructure:"search_fields"`
}

type Export struct {
	Path    string `json:"path" mapstructure:"path"`
	Format  string `json:"format" mapstructure:"format"`
	Columns string `json:"columns" mapstructure:"columns"`
}

type State struct {
	Driver      string        `json:"driver" mapstructure:"driver"`
	RedisURLEnv string        `json:"redis_url_env" mapstructure:"redis_url_env"`
	TTL         time.Duration `json:"ttl" mapstructure:"ttl"`
}

type Log struct {
	Level      string `json:"level" mapstructure:"level"`
	File       string `json:"file,omitempty" mapstructure:"file"`
	MaxSize    int    `json:"max_size" mapstructure:"max_size"`
	MaxBackups int    `json:"max_backups" mapstructure:"max_backups"`
	Compress   bool   `json:"compress" mapstructure:"compress"`
}

func Load() (*Config, error) {
	var cfg Config

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.TablesPath == "" {
		c.TablesPath = "tables.yaml"
	}
	if c.Database.Provider == "" {
		c.Database.Provider = "postgresql"
	}
	if c.Database.URLEnv == "" {
		c.Database.URLEnv = "DATABASE_URL"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 5580
	}
	if c.Table.PageSize == 0 {
		c.Table.PageSize = 15
	}
	if len(c.Table.PageSizes) == 0 {
		c.Table.PageSizes = []int{10, 15, 25, 50, 100}
	}
	if c.Export.Path == "" {
		c.Export.Path = "db/export"
	}
	if c.Export.Format == "" {
		c.Export.Format = string(table.CSV)
	}
	if c.Export.Columns == "" {
		c.Export.Columns = string(table.VisibleColumns)
	}
	if c.State.Driver == "" {
		c.State.Driver = "memory"
	}
	if c.State.RedisURLEnv == "" {
		c.State.RedisURLEnv = "REDIS_URL"
	}
	if c.State.TTL == 0 {
		c.State.TTL = 24 * time.Hour
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSize == 0 {
		c.Log.MaxSize = 10
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 5
	}
}

func (c *Config) GetDatabaseURL() (string, error) {
	dbURL := os.Getenv(c.Database.URLEnv)
	if dbURL == "" {
		return "", fmt.Errorf("database URL not found in environment variable %s", c.Database.URLEnv)
	}
	return dbURL, nil
}

func (c *Config) GetRedisURL() (string, error) {
	redisURL := os.Getenv(c.State.RedisURLEnv)
	if redisURL == "" {
		return "", fmt.Errorf("redis URL not found in environment variable %s", c.State.RedisURLEnv)
	}
	return redisURL, nil
}

func (c *Config) Validate() error {
	supportedProviders := []string{"postgresql", "postgres", "mysql", "sqlite", "sqlite3"}
	if !slices.Contains(supportedProviders, c.Database.Provider) {
		return fmt.Errorf("unsupported database provider: %s. Supported providers: %v", c.Database.Provider, supportedProviders)
	}

	supportedDrivers := []string{"memory", "redis"}
	if !slices.Contains(supportedDrivers, c.State.Driver) {
		return fmt.Errorf("unsupported state driver: %s. Supported drivers: %v", c.State.Driver, supportedDrivers)
	}

	if _, err := table.ParseExportFormat(c.Export.Format); err != nil {
		return fmt.Errorf("export.format: %w", err)
	}
	if _, err := table.ParseColumnScope(c.Export.Columns); err != nil {
		return fmt.Errorf("export.columns: %w", err)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Table.PageSize < 1 {
		return fmt.Errorf("table.page_size must be positive, got %d", c.Table.PageSize)
	}

	return nil
}
