// Command download is the download-session CLI (spec.md §6): it logs
// into a remote PSO server impersonating a real client, walks its ship
// and quest menus, and archives every quest payload it can reach to
// disk. Grounded on the teacher's cmd/loginserver and cmd/gameserver
// entry points: slog configured once via slog.SetDefault, a
// context.WithCancel cancelled by SIGINT/SIGTERM, errors from run()
// logged and translated into a process exit code.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fuzziqer/psocore/internal/psoerr"
)

// Exit codes (spec.md §6): 0 clean completion, 1 authentication
// failure, 2 I/O failure. Anything else the session returns (framing,
// crypto, codec, protocol errors) is treated as an I/O-class failure
// since the CLI's only recourse in every case is to stop and report.
const (
	exitOK        = 0
	exitAuthFail  = 1
	exitIOFailure = 2
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	cmd := newRootCommand()
	cmd.SetContext(ctx)

	if err := cmd.Execute(); err != nil {
		slog.Error("download session failed", "err", err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps a returned error to spec.md §6's exit-code contract.
func exitCodeFor(err error) int {
	if psoerr.Is(err, psoerr.KindAuth) {
		return exitAuthFail
	}
	return exitIOFailure
}
