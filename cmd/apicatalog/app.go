package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/i2y/apicatalog/configs"
	"github.com/i2y/apicatalog/internal/adapter/outbound/filesink"
	"github.com/i2y/apicatalog/internal/adapter/outbound/github"
	"github.com/i2y/apicatalog/internal/adapter/outbound/javasrc"
	"github.com/i2y/apicatalog/internal/adapter/outbound/localsrc"
	"github.com/i2y/apicatalog/internal/adapter/outbound/memrepo"
	"github.com/i2y/apicatalog/internal/adapter/outbound/openapi"
	"github.com/i2y/apicatalog/internal/adapter/outbound/publisher"
	"github.com/i2y/apicatalog/internal/adapter/outbound/scanpost"
	"github.com/i2y/apicatalog/internal/adapter/outbound/sqliterepo"
	"github.com/i2y/apicatalog/internal/usecase"
)

// app holds the wired dependencies shared by every command.
type app struct {
	cfg      *configs.Config
	logger   *slog.Logger
	exporter *openapi.Exporter

	fetcher    *github.Fetcher
	loader     *localsrc.Loader
	structurer *javasrc.Structurer
	builder    *usecase.CatalogBuilder
	repository usecase.CatalogRepository

	listUC *usecase.ListCatalogsUseCase
	getUC  *usecase.GetCatalogUseCase

	closers []func() error
}

func newApp(ctx context.Context, cfg *configs.Config, logger *slog.Logger) (*app, error) {
	a := &app{
		cfg:        cfg,
		logger:     logger,
		exporter:   openapi.NewExporter(logger),
		fetcher:    github.NewFetcher(cfg.WorkDir, cfg.KeepClones, logger),
		loader:     localsrc.NewLoader(cfg.SourceExtension, logger),
		structurer: javasrc.NewStructurer(logger),
	}
	a.builder = usecase.NewCatalogBuilder(
		usecase.NewDeclarationExtractor(logger),
		usecase.NewEndpointScanner(cfg.ControllerMarkers, cfg.ResponseWrappers, logger),
		cfg.Parallelism,
		logger,
	)

	// --- Catalog Store ---
	if cfg.StoreDSN != "" {
		repo, err := sqliterepo.Open(ctx, cfg.StoreDSN, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open catalog store: %w", err)
		}
		a.repository = repo
		a.closers = append(a.closers, repo.Close)
		logger.Debug("SQLite catalog store opened.")
	} else {
		a.repository = memrepo.NewInMemoryCatalogRepository(logger)
		logger.Debug("In-memory catalog store initialized.")
	}
	a.listUC = usecase.NewListCatalogsUseCase(a.repository, logger)
	a.getUC = usecase.NewGetCatalogUseCase(a.repository, logger)
	return a, nil
}

// scanUseCase wires a ScanRepositoryUseCase delivering to the configured
// sinks. outputFile overrides the configured output file when set.
func (a *app) scanUseCase(outputFile string) (*usecase.ScanRepositoryUseCase, error) {
	pub, err := a.publisher(outputFile)
	if err != nil {
		return nil, err
	}
	return usecase.NewScanRepositoryUseCase(a.fetcher, a.loader, a.structurer, a.builder, pub, a.repository, a.logger), nil
}

// outputFile returns the file a CLI scan writes to. When neither the flag nor the
// configuration names a delivery target, the catalog goes to the default file in dir.
func (a *app) outputFile(flag, dir string) string {
	if flag != "" || a.cfg.OutputFile != "" || a.cfg.BackendURL != "" {
		return flag
	}
	return filepath.Join(dir, filesink.DefaultFile)
}

func (a *app) publisher(outputFile string) (usecase.CatalogPublisher, error) {
	var targets []publisher.Target

	if outputFile == "" {
		outputFile = a.cfg.OutputFile
	}
	if outputFile != "" {
		sink, err := filesink.New(outputFile, filesink.Format(a.cfg.OutputFormat), a.exporter, a.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create file sink: %w", err)
		}
		targets = append(targets, publisher.Target{Name: "file", Publisher: sink})
	}

	if a.cfg.BackendURL != "" {
		httpClient := &http.Client{Timeout: a.cfg.HTTPClientTimeout}
		post, err := scanpost.New(httpClient, a.cfg.BackendURL, a.cfg.ScanEndpointPath, a.cfg.BackendHeaders, a.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create scan publisher: %w", err)
		}
		a.logger.Debug("Scan publisher configured.", slog.String("endpoint", post.Endpoint()))
		targets = append(targets, publisher.Target{Name: "backend", Publisher: post})
	}

	fan := publisher.NewFanOut(a.logger, targets...)
	if fan.Len() == 0 {
		a.logger.Warn("No delivery target configured; catalogs are only stored.")
		return nil, nil
	}
	return fan, nil
}

func (a *app) Close() {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("Failed to release resources.", slog.Any("error", err))
	}
}
