package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"us-bars/internal/app"
	"us-bars/internal/slogx"
	"us-bars/internal/tickers"
)

const usageText = `Usage:
  us-bars [serve]              HTTP bar proxy (default)
  us-bars refresh [-once]      batch cache refresh on a daily schedule
  us-bars help

Configuration is read from the environment (DATA_PROVIDER, TIINGO_API_KEY,
POLYGON_API_KEYS, CACHE_BACKEND, CACHE_DIR, HTTP_ADDR, TICKERS_FILE, ...).
`

func init() {
	slog.SetDefault(slogx.NewDefault("info"))
}

func main() {
	cmd, args := "serve", os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd {
	case "serve":
		err = runServe(ctx, args)
	case "refresh":
		err = runRefresh(ctx, args)
	case "help", "-h", "--help":
		fmt.Print(usageText)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usageText)
		os.Exit(2)
	}
	if err != nil {
		slog.Error("exit", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func initialize() (*App, func(), error) {
	a, cleanup, err := InitializeApp()
	if err != nil {
		return nil, nil, fmt.Errorf("initialize app: %w", err)
	}
	slog.SetDefault(slogx.NewDefault(a.Config.LogLevel))
	return a, cleanup, nil
}

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	fs.Usage = func() { fmt.Fprint(fs.Output(), usageText) }
	fs.Parse(args)

	a, cleanup, err := initialize()
	if err != nil {
		return err
	}
	defer cleanup()

	return a.Server.Start(ctx)
}

func runRefresh(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("refresh", flag.ExitOnError)
	once := fs.Bool("once", false, "run a single refresh pass and exit")
	fs.Usage = func() { fmt.Fprint(fs.Output(), usageText) }
	fs.Parse(args)

	a, cleanup, err := initialize()
	if err != nil {
		return err
	}
	defer cleanup()

	symbols, err := tickers.Load(a.Config.TickersFile)
	if err != nil {
		return fmt.Errorf("load tickers: %w", err)
	}
	if len(symbols) == 0 {
		return fmt.Errorf("ticker list is empty")
	}
	slog.Info("got tickers", "count", len(symbols), "timeframes", a.Config.RefreshTimeframes,
		"group_size", a.Config.RefreshGroupSize, "group_delay", a.Config.RefreshGroupDelay)
	if a.Config.ExportFormat != "" {
		slog.Info("export", "format", a.Config.ExportFormat, "dir", a.Config.ExportDir)
	}

	return app.RunSchedule(ctx, a.Config, a.Refresher, symbols, *once)
}
