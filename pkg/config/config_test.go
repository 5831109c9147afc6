package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Nil(t, cfg)

	cfg = Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, uint64(math.MaxInt64), cfg.Memory.Limit)
	assert.Equal(t, DefaultReserve, cfg.Memory.Reserve)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rowexec.yaml")
	content := []byte(`
memory:
  limit: 4096
  reserve: 1024
log:
  level: debug
  format: json
fixtures:
  path: tables.yaml
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(4096), cfg.Memory.Limit)
	assert.Equal(t, uint64(1024), cfg.Memory.Reserve)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "tables.yaml", cfg.Fixtures.Path)
	assert.Equal(t, uint8(18), cfg.Engine.DecimalPrecision)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rowexec.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\n"), 0o600))
	t.Setenv("ROWEXEC_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero limit", func(c *Config) { c.Memory.Limit = 0 }},
		{"bad precision", func(c *Config) { c.Engine.DecimalPrecision = 40 }},
		{"scale above precision", func(c *Config) { c.Engine.DecimalScale = 20 }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
