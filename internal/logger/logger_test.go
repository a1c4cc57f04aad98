package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tablo.log")
	log, err := New(Config{Level: "debug", File: path, MaxSize: 1, Quiet: true})
	require.NoError(t, err)

	log.Infow("table query", "table", "users", "total", 3)
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"table query"`)
	assert.Contains(t, string(data), `"table":"users"`)
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestQuietWithoutFileIsNop(t *testing.T) {
	log, err := New(Config{Level: "info", Quiet: true})
	require.NoError(t, err)
	assert.NotNil(t, log)
}
