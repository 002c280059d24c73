// CLAUDE:SUMMARY CLI entry point for arbex — exports a rendered file tree into a zip archive, optionally serving the MCP tools over stdio.
// Command arbex exports the file tree presented by a dynamically rendered
// page into a zip archive.
//
// Usage:
//
//	arbex -config arbex.yaml                # full run from YAML config
//	arbex -url https://example.com/project  # quick run with defaults
//	arbex -config arbex.yaml -mcp           # serve the MCP tools on stdio
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/arbex"
)

func main() {
	configPath := flag.String("config", "", "path to arbex.yaml config file")
	url := flag.String("url", "", "target page URL (overrides config)")
	out := flag.String("out", "", "output directory for the archive (overrides config)")
	manifestPath := flag.String("manifest", "", "sqlite manifest path (overrides config)")
	mode := flag.String("mode", "", "browser mode: headless or headful (overrides config)")
	mcpServe := flag.Bool("mcp", false, "serve the MCP tools on stdio instead of running once")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(*configPath, *url, *out, *manifestPath, *mode)
	if err != nil {
		logger.Error("arbex: config", "error", err)
		os.Exit(1)
	}

	if err := run(ctx, logger, cfg, *mcpServe); err != nil {
		logger.Error("arbex: fatal", "error", err)
		os.Exit(1)
	}
}

func loadConfig(path, url, out, manifestPath, mode string) (*arbex.Config, error) {
	cfg := &arbex.Config{}
	if path != "" {
		loaded, err := arbex.LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if url != "" {
		cfg.URL = url
	}
	if out != "" {
		cfg.OutputDir = out
	}
	if manifestPath != "" {
		cfg.ManifestPath = manifestPath
	}
	if mode != "" {
		cfg.Browser.Mode = mode
	}
	cfg.ApplyDefaults()

	if cfg.URL == "" && path == "" {
		fmt.Fprintln(os.Stderr, "usage: arbex -config <file> | -url <url> [-out <dir>] [-mcp]")
		os.Exit(1)
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, logger *slog.Logger, cfg *arbex.Config, mcpServe bool) error {
	r := arbex.New(*cfg, logger)
	if err := r.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer r.Stop()

	if mcpServe {
		return serveMCP(ctx, logger, r)
	}

	rep, path, err := r.Export(ctx)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	logger.Info("arbex: export done",
		"run_id", rep.RunID,
		"artifact", path,
		"leaves", rep.Leaves,
		"text", rep.TextEntries,
		"binary", rep.BinEntries,
		"placeholders", rep.Placeholders,
		"stalled", rep.Stalled,
		"passes", rep.Passes)
	return nil
}

func serveMCP(ctx context.Context, logger *slog.Logger, r *arbex.Runner) error {
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "arbex",
		Version: "1.0.0",
	}, nil)
	r.RegisterMCP(srv)

	logger.Info("arbex: serving MCP on stdio")
	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp: %w", err)
	}
	return nil
}
