package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDownload_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadDownload(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultDownload(), cfg)
}

func TestLoadDownload_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "download.yaml")
	yamlBody := "host: pso.example.com\nport: 9200\nships:\n  - Ship01\n  - Ship02\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o644))

	cfg, err := LoadDownload(path)
	require.NoError(t, err)
	assert.Equal(t, "pso.example.com", cfg.Host)
	assert.Equal(t, 9200, cfg.Port)
	assert.Equal(t, []string{"Ship01", "Ship02"}, cfg.Ships)
	assert.Equal(t, DefaultDownload().OutputDir, cfg.OutputDir, "unset fields keep their default")
}

func TestLoadDownload_RejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("host: [unterminated"), 0o644))

	_, err := LoadDownload(path)
	assert.Error(t, err)
}
