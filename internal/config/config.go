// Package config implements the yaml.v3-backed configuration pattern the
// teacher uses for its login/game servers (internal/config.LoadLoginServer,
// internal/config.LoadGameServer): a Default*() constructor plus a
// Load*(path) loader that falls back to defaults when the file is absent
// (SPEC_FULL.md §2 "Configuration").
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DownloadDefaults holds the optional defaults file for the download
// session CLI (spec.md §6): any flag the user omits on the command line
// falls back to the matching field here, which itself falls back to the
// zero-ish defaults in DefaultDownload.
type DownloadDefaults struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	OutputDir string `yaml:"output_dir"`
	Version   string `yaml:"version"` // decoded by cmd/download via pstype parsing
	Language  string `yaml:"language"`
	BBKeyFile string `yaml:"bb_key_file"`

	SerialNumber string `yaml:"serial_number"`
	AccessKey    string `yaml:"access_key"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	XBGamertag   string `yaml:"xb_gamertag"`
	XBUserID     string `yaml:"xb_user_id"`
	XBAccountID  string `yaml:"xb_account_id"`

	Ships      []string `yaml:"ships"`
	OnComplete []string `yaml:"on_complete_commands"`

	Interactive     bool `yaml:"interactive"`
	ShowCommandData bool `yaml:"show_command_data"`

	LogLevel string `yaml:"log_level"` // debug, info, warn, error (default: info)
}

// DefaultDownload returns DownloadDefaults with the same conservative
// defaults the teacher's DefaultLoginServer uses for network/logging
// fields: loopback host, info-level logging, non-interactive by default.
func DefaultDownload() DownloadDefaults {
	return DownloadDefaults{
		Host:      "127.0.0.1",
		Port:      9100,
		OutputDir: ".",
		Version:   "gc-v3",
		Language:  "en",
		LogLevel:  "info",
	}
}

// LoadDownload loads a DownloadDefaults file from path. If the file
// doesn't exist, it returns the defaults unchanged (spec.md §6: a
// defaults file is optional; the CLI flags and this loader compose,
// flags always winning).
func LoadDownload(path string) (DownloadDefaults, error) {
	cfg := DefaultDownload()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
