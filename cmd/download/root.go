package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fuzziqer/psocore/internal/config"
	"github.com/fuzziqer/psocore/internal/download"
	"github.com/fuzziqer/psocore/internal/psoerr"
)

// flags mirrors spec.md §6's CLI surface: one struct of raw flag values,
// decoded into a download.Config once parsing succeeds.
type flags struct {
	configFile string

	outputDir string
	version   string
	language  string
	bbKeyFile string

	serialNumber string
	accessKey    string
	password     string
	username     string
	xbGamertag   string
	xbUserID     string
	xbAccountID  string

	ships      []string
	onComplete []string

	interactive     bool
	showCommandData bool
}

func newRootCommand() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "download <host:port>",
		Short: "Log into a PSO server as an emulated client and archive its quest catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd.Context(), args[0], f)
		},
	}

	flagsSet := cmd.Flags()
	flagsSet.StringVar(&f.configFile, "config", "", "optional YAML defaults file (internal/config.DownloadDefaults)")
	flagsSet.StringVar(&f.outputDir, "output-dir", "", "directory to write recovered quest payloads to")
	flagsSet.StringVar(&f.version, "version", "", "client family to emulate (dc-v1, dc-v2, pc-v2, gc-v3, gc-ep3, xb-v3, bb-v4, ...)")
	flagsSet.StringVar(&f.language, "language", "", "client language (ja, en, de, fr, es, zh-cn, zh-tw, ko)")
	flagsSet.StringVar(&f.bbKeyFile, "bb-key-file", "", "BB encryption key file path (BB family only)")
	flagsSet.StringVar(&f.serialNumber, "serial-number", "", "account serial number")
	flagsSet.StringVar(&f.accessKey, "access-key", "", "account access key")
	flagsSet.StringVar(&f.password, "password", "", "account password (GC/BB)")
	flagsSet.StringVar(&f.username, "username", "", "account username (BB)")
	flagsSet.StringVar(&f.xbGamertag, "xb-gamertag", "", "Xbox gamertag (XB family only)")
	flagsSet.StringVar(&f.xbUserID, "xb-user-id", "", "Xbox user id (XB family only)")
	flagsSet.StringVar(&f.xbAccountID, "xb-account-id", "", "Xbox account id (XB family only)")
	flagsSet.StringArrayVar(&f.ships, "ship", nil, "ship display name to auto-select (repeatable)")
	flagsSet.StringArrayVar(&f.onComplete, "on-complete-command", nil, "chat command to run after each completed download (repeatable)")
	flagsSet.BoolVar(&f.interactive, "interactive", false, "prompt for ship/quest selection instead of using --ship")
	flagsSet.BoolVar(&f.showCommandData, "show-command-data", false, "log a hex dump of every command")

	return cmd
}

// runDownload resolves configuration, builds a download.Session, and
// drives it to completion in an errgroup whose single goroutine dials and
// then runs the driver; cancellation arrives through ctx (SPEC_FULL.md §2
// "Concurrency"). A session failure is returned with a
// "[DownloadSession:<version>]" prefix.
func runDownload(ctx context.Context, endpoint string, f flags) error {
	defaults := config.DefaultDownload()
	if f.configFile != "" {
		loaded, err := config.LoadDownload(f.configFile)
		if err != nil {
			return psoerr.New(psoerr.KindTransient, "load config", err)
		}
		defaults = loaded
	}

	cfg, err := buildConfig(endpoint, f, defaults)
	if err != nil {
		return psoerr.New(psoerr.KindProtocol, "build config", err)
	}

	slog.Info("starting download session",
		"host", cfg.Host, "port", cfg.Port, "version", cfg.Version, "language", cfg.Language,
		"output_dir", cfg.OutputDir, "interactive", cfg.Interactive)

	sess := download.NewSession(cfg)
	driver := download.NewDriver(sess, slog.Default())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := driver.Dial(gctx); err != nil {
			return err
		}
		defer driver.Close()
		return driver.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("[DownloadSession:%s] %w", cfg.Version, err)
	}
	return nil
}

func buildConfig(endpoint string, f flags, defaults config.DownloadDefaults) (download.Config, error) {
	host, port, err := splitEndpoint(endpoint)
	if err != nil {
		return download.Config{}, err
	}

	versionStr := firstNonEmpty(f.version, defaults.Version)
	v, err := parseVersion(versionStr)
	if err != nil {
		return download.Config{}, err
	}

	langStr := firstNonEmpty(f.language, defaults.Language)
	lang, err := parseLanguage(langStr)
	if err != nil {
		return download.Config{}, err
	}

	if v.UsesV4Cipher() {
		return download.Config{}, fmt.Errorf("--version %s: BB is not supported by this driver (no v4 login install); pick a DC/PC/GC/XB family", versionStr)
	}

	return download.Config{
		Host:      host,
		Port:      port,
		OutputDir: firstNonEmpty(f.outputDir, defaults.OutputDir),
		Version:   v,
		Language:  lang,
		BBKeyFile: firstNonEmpty(f.bbKeyFile, defaults.BBKeyFile),
		Creds: download.Credentials{
			SerialNumber: firstNonEmpty(f.serialNumber, defaults.SerialNumber),
			AccessKey:    firstNonEmpty(f.accessKey, defaults.AccessKey),
			Username:     firstNonEmpty(f.username, defaults.Username),
			Password:     firstNonEmpty(f.password, defaults.Password),
			XBGamertag:   firstNonEmpty(f.xbGamertag, defaults.XBGamertag),
			XBUserID:     firstNonEmpty(f.xbUserID, defaults.XBUserID),
			XBAccountID:  firstNonEmpty(f.xbAccountID, defaults.XBAccountID),
		},
		Ships:           appendUnique(defaults.Ships, f.ships),
		OnComplete:      appendUnique(defaults.OnComplete, f.onComplete),
		Interactive:     f.interactive || defaults.Interactive,
		ShowCommandData: f.showCommandData || defaults.ShowCommandData,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func appendUnique(base, extra []string) []string {
	out := append([]string(nil), base...)
	out = append(out, extra...)
	return out
}

func splitEndpoint(endpoint string) (host string, port int, err error) {
	h, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		return "", 0, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	p, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port in %q: %w", endpoint, err)
	}
	return h, p, nil
}
