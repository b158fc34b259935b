package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	mcpGoServer "github.com/mark3labs/mcp-go/server"

	"github.com/i2y/apicatalog/internal/adapter/inbound/mcphttp"
	"github.com/i2y/apicatalog/internal/adapter/inbound/mcptools"
	"github.com/i2y/apicatalog/internal/domain"
	"github.com/i2y/apicatalog/internal/usecase"
)

type ScanCmd struct {
	Commit  string `arg:"" help:"Commit to check out."`
	RepoURL string `arg:"" name:"repo-url" help:"Repository URL, or github://owner/repo."`
	Tag     string `arg:"" optional:"" help:"Release tag recorded with the catalog."`
	Output  string `help:"File the catalog is written to." short:"o" type:"path"`
}

func (c *ScanCmd) Run(ctx context.Context, a *app) error {
	uc, err := a.scanUseCase(a.outputFile(c.Output, ""))
	if err != nil {
		return err
	}
	catalog, err := uc.Execute(ctx, usecase.ScanRequest{RepoURL: c.RepoURL, Commit: c.Commit, Tag: c.Tag})
	if err != nil {
		return err
	}
	return printSummary(catalog)
}

type LocalCmd struct {
	Dir     string `arg:"" help:"Directory to scan." type:"existingdir"`
	RepoURL string `help:"Repository URL recorded with the catalog." name:"repo-url"`
	Commit  string `help:"Commit recorded with the catalog."`
	Tag     string `help:"Release tag recorded with the catalog."`
	Output  string `help:"File the catalog is written to." short:"o" type:"path"`
}

func (c *LocalCmd) Run(ctx context.Context, a *app) error {
	uc, err := a.scanUseCase(a.outputFile(c.Output, c.Dir))
	if err != nil {
		return err
	}
	catalog, err := uc.ExecuteLocal(ctx, c.Dir, usecase.ScanRequest{RepoURL: c.RepoURL, Commit: c.Commit, Tag: c.Tag})
	if err != nil {
		return err
	}
	return printSummary(catalog)
}

func printSummary(catalog domain.Catalog) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		ID            string              `json:"id"`
		RepoURL       string              `json:"repo_url"`
		Commit        string              `json:"commit"`
		EndpointCount int                 `json:"endpoint_count"`
		Complete      bool                `json:"complete"`
		Diagnostics   []domain.Diagnostic `json:"diagnostics,omitempty"`
	}{
		ID:            catalog.ID,
		RepoURL:       catalog.RepoURL,
		Commit:        catalog.Commit,
		EndpointCount: len(catalog.Endpoints),
		Complete:      catalog.Complete(),
		Diagnostics:   catalog.Diagnostics,
	})
}

type ServeCmd struct {
	Transport string `help:"Transport mode." enum:"sse,stdio" default:"sse"`
}

func (c *ServeCmd) Run(ctx context.Context, a *app) error {
	logger := a.logger
	scanUC, err := a.scanUseCase("")
	if err != nil {
		return err
	}

	// === MCP Server (mark3labs/mcp-go) ===
	mcpSrv := mcpGoServer.NewMCPServer(serviceName, serviceVersion)
	n := mcptools.New(scanUC, a.listUC, a.getUC, a.exporter, logger).Register(mcpSrv)
	logger.Info("MCP server initialized.", slog.Int("tool_count", n))

	switch c.Transport {
	case "stdio":
		logger.Info("Starting in STDIO mode")
		stdioServer := mcpGoServer.NewStdioServer(mcpSrv)
		if err := stdioServer.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("stdio server error: %w", err)
		}
		return nil

	case "sse":
		return c.serveSSE(ctx, a, mcpSrv, scanUC)

	default:
		return fmt.Errorf("invalid transport mode %q", c.Transport)
	}
}

func (c *ServeCmd) serveSSE(ctx context.Context, a *app, mcpSrv *mcpGoServer.MCPServer, scanUC *usecase.ScanRepositoryUseCase) error {
	cfg, logger := a.cfg, a.logger
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	sseServer := mcpGoServer.NewSSEServer(mcpSrv, mcpGoServer.WithBaseURL("http://"+cfg.ListenAddr))

	// === Admin HTTP Server Setup ===
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	mcphttp.NewHandlers(scanUC, a.listUC, a.getUC, a.exporter, logger).RegisterAdminRoutes(r)
	adminServer := &http.Server{
		Addr:         cfg.AdminAddr,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("Admin HTTP server starting.", slog.String("address", adminServer.Addr))
		if err := adminServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("admin HTTP server failed: %w", err)
			stop()
		}
	}()
	go func() {
		logger.Info("MCP SSE server starting.", slog.String("address", cfg.ListenAddr))
		if err := sseServer.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("MCP SSE server failed: %w", err)
			stop()
		}
	}()

	<-ctx.Done()

	// === Server Shutdown ===
	logger.Info("Shutting down servers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("admin HTTP server shutdown: %w", err))
	}
	if err := sseServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("MCP SSE server shutdown: %w", err))
	}
	for {
		select {
		case err := <-errCh:
			errs = append(errs, err)
		default:
			if len(errs) == 0 {
				logger.Info("Servers shut down gracefully.")
			}
			return errors.Join(errs...)
		}
	}
}
