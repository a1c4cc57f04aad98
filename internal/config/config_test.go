package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "tables.yaml", cfg.TablesPath)
	assert.Equal(t, "postgresql", cfg.Database.Provider)
	assert.Equal(t, "DATABASE_URL", cfg.Database.URLEnv)
	assert.Equal(t, 5580, cfg.Server.Port)
	assert.Equal(t, 15, cfg.Table.PageSize)
	assert.Equal(t, []int{10, 15, 25, 50, 100}, cfg.Table.PageSizes)
	assert.Equal(t, "csv", cfg.Export.Format)
	assert.Equal(t, "visible", cfg.Export.Columns)
	assert.Equal(t, "memory", cfg.State.Driver)
	assert.Equal(t, 24*time.Hour, cfg.State.TTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{
		"tables_path": "defs/tables.yaml",
		"database": {"provider": "sqlite", "url_env": "TABLO_DB"},
		"server": {"port": 8080},
		"table": {"page_size": 25, "search_fields": ["email"]},
		"state": {"driver": "redis", "ttl": "1h"},
		"translations": {"search": "Find"}
	}`), 0644))

	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "defs/tables.yaml", cfg.TablesPath)
	assert.Equal(t, "sqlite", cfg.Database.Provider)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 25, cfg.Table.PageSize)
	assert.Equal(t, []string{"email"}, cfg.Table.SearchFields)
	assert.Equal(t, "redis", cfg.State.Driver)
	assert.Equal(t, time.Hour, cfg.State.TTL)
	assert.Equal(t, "Find", cfg.Translations["search"])

	t.Setenv("TABLO_DB", "file.db")
	url, err := cfg.GetDatabaseURL()
	require.NoError(t, err)
	assert.Equal(t, "file.db", url)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"provider", func(c *Config) { c.Database.Provider = "oracle" }},
		{"state driver", func(c *Config) { c.State.Driver = "memcached" }},
		{"export format", func(c *Config) { c.Export.Format = "pdf" }},
		{"export columns", func(c *Config) { c.Export.Columns = "some" }},
		{"port", func(c *Config) { c.Server.Port = 70000 }},
		{"page size", func(c *Config) { c.Table.PageSize = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.applyDefaults()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestMissingDatabaseURL(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Database.URLEnv = "TABLO_TEST_UNSET_URL"

	_, err := cfg.GetDatabaseURL()
	assert.ErrorContains(t, err, "TABLO_TEST_UNSET_URL")
}
