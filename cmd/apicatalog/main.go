package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/i2y/apicatalog/configs"
)

const (
	serviceName    = "apicatalog"
	serviceVersion = "0.1.0"
)

type CLI struct {
	Scan  ScanCmd  `cmd:"" help:"Check out a repository at a commit and catalog its HTTP endpoints."`
	Local LocalCmd `cmd:"" help:"Catalog the HTTP endpoints of a local directory."`
	Serve ServeCmd `cmd:"" help:"Serve catalog building over MCP and the admin HTTP API."`
}

func main() {
	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name(serviceName),
		kong.Description("Build endpoint catalogs from Spring-style Java sources."),
		kong.UsageOnError(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === Configuration ===
	cfg, err := configs.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// === Logging ===
	stdio := kctx.Command() == "serve" && cli.Serve.Transport == "stdio"
	logger := newLogger(cfg, stdio)
	slog.SetDefault(logger)
	logger.Info("Logger initialized.", slog.String("level", cfg.ParsedLogLevel().String()), slog.String("command", kctx.Command()))

	// === OpenTelemetry Initialization ===
	shutdownOtel, err := initOtelProvider(cfg)
	if err != nil {
		logger.Error("Failed to initialize OpenTelemetry.", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := shutdownOtel(context.Background()); err != nil {
			logger.Error("Failed to shutdown OpenTelemetry TracerProvider.", slog.Any("error", err))
		}
	}()

	// === Dependency Injection ===
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize dependencies.", slog.Any("error", err))
		os.Exit(1)
	}
	defer a.Close()

	kctx.BindTo(ctx, (*context.Context)(nil))
	err = kctx.Run(a)
	if err != nil {
		logger.Error("Command failed.", slog.String("command", kctx.Command()), slog.Any("error", err))
	}
	kctx.FatalIfErrorf(err)
}

// newLogger writes to stderr, or to a file in stdio mode so stdout carries only MCP traffic.
func newLogger(cfg *configs.Config, stdio bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.ParsedLogLevel()}
	if !stdio {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	logFile, err := os.OpenFile(filepath.Join(os.TempDir(), serviceName+".log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, opts))
	}
	return slog.New(slog.NewTextHandler(logFile, opts))
}
