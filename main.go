package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpsrv "github.com/mark3labs/mcp-go/server"
)

func main() {
	hosted := flag.Bool("http", false, "serve MCP over HTTP (streamable + legacy SSE) instead of stdio")
	testMode := flag.Bool("t", false, "run in interactive CLI test mode")
	flag.Parse()

	lg := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(lg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, *hosted, *testMode, lg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *Config, hosted, testMode bool, lg *slog.Logger) error {
	if hosted {
		// Hosted mode authenticates per connection; no process-level token.
		srv := newHTTPServer(cfg, NewRegistry(lg), lg)
		return srv.ListenAndServe(ctx)
	}

	if err := cfg.RequireToken(); err != nil {
		return err
	}
	client := NewClient(cfg.BaseURL, cfg.Token, lg)

	if testMode {
		newToolset(client, lg).runInteractiveCLI(ctx)
		return nil
	}

	engine := newEngine(client, lg)
	srv := mcpsrv.NewStdioServer(engine)
	lg.InfoContext(ctx, "mcp server listening on stdio", "base_url", cfg.BaseURL)
	if err := srv.Listen(ctx, os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("mcp stdio server error: %w", err)
	}
	return nil
}
