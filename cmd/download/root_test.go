package main

import (
	"testing"

	"github.com/fuzziqer/psocore/internal/config"
	"github.com/fuzziqer/psocore/internal/pstype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	v, err := parseVersion("gc-v3")
	require.NoError(t, err)
	assert.Equal(t, pstype.GCV3, v)

	_, err = parseVersion("not-a-version")
	assert.Error(t, err)
}

func TestParseLanguage(t *testing.T) {
	l, err := parseLanguage("zh-tw")
	require.NoError(t, err)
	assert.Equal(t, pstype.LangChineseTraditional, l)

	_, err = parseLanguage("xx")
	assert.Error(t, err)
}

func TestSplitEndpoint(t *testing.T) {
	host, port, err := splitEndpoint("pso.example.com:9100")
	require.NoError(t, err)
	assert.Equal(t, "pso.example.com", host)
	assert.Equal(t, 9100, port)

	_, _, err = splitEndpoint("no-port-here")
	assert.Error(t, err)
}

func TestBuildConfig_AppendsFlagShipsToDefaults(t *testing.T) {
	defaults := config.DefaultDownload()
	defaults.Ships = []string{"DefaultShip"}

	f := flags{
		version: "gc-v3",
		language: "en",
		ships:    []string{"FlagShip"},
	}

	cfg, err := buildConfig("127.0.0.1:9100", f, defaults)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, pstype.GCV3, cfg.Version)
	assert.Equal(t, []string{"DefaultShip", "FlagShip"}, cfg.Ships)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "a", firstNonEmpty("a", "b"))
	assert.Equal(t, "b", firstNonEmpty("", "b"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}
