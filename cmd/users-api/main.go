// Command users-api runs the demo users service. The contract test harness
// can start this binary itself (--local-run) or be pointed at an already
// running instance (--source), so all configuration comes from environment
// variables with workable defaults.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/usersdemo/api-contract-tests/usersvc"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "users-api:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := usersvc.LoadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)

	store, err := usersvc.OpenStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting users-api", "addr", cfg.Addr, "db", cfg.DBPath)
	return usersvc.NewServer(cfg, store, logger).Run(ctx)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "", "info":
		lvl = slog.LevelInfo
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
