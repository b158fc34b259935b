package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/i2y/apicatalog/internal/domain"
)

var validate = validator.New()

// ScanRequest identifies the repository revision to catalog.
type ScanRequest struct {
	RepoURL string `json:"repo_url" validate:"required"`
	Commit  string `json:"commit" validate:"required"`
	Tag     string `json:"tag_name"`
}

// Validate checks that the request names a repository and a commit.
func (r ScanRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

// ScanRepositoryUseCase orchestrates acquiring a repository, building its
// endpoint catalog, storing it and delivering it.
type ScanRepositoryUseCase struct {
	fetcher    RepoFetcher
	loader     SourceLoader
	structurer SourceStructurer
	builder    *CatalogBuilder
	publisher  CatalogPublisher
	repository CatalogRepository
	logger     *slog.Logger
	ins        instruments

	now   func() time.Time
	newID func() string
}

// NewScanRepositoryUseCase creates a new ScanRepositoryUseCase. publisher and
// repository may be nil, in which case catalogs are neither delivered nor stored.
func NewScanRepositoryUseCase(
	fetcher RepoFetcher,
	loader SourceLoader,
	structurer SourceStructurer,
	builder *CatalogBuilder,
	publisher CatalogPublisher,
	repository CatalogRepository,
	logger *slog.Logger,
) *ScanRepositoryUseCase {
	return &ScanRepositoryUseCase{
		fetcher:    fetcher,
		loader:     loader,
		structurer: structurer,
		builder:    builder,
		publisher:  publisher,
		repository: repository,
		logger:     logger.With("usecase", "ScanRepository"),
		ins:        newInstruments(logger),
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Execute checks out req's repository at req.Commit, builds its catalog, stores
// it and delivers it. Acquisition and delivery failures are returned; problems
// with individual source files are reported in the catalog's diagnostics.
func (uc *ScanRepositoryUseCase) Execute(ctx context.Context, req ScanRequest) (domain.Catalog, error) {
	log := uc.logger.With(slog.String("repo_url", req.RepoURL), slog.String("commit", req.Commit), slog.String("tag", req.Tag))
	if err := req.Validate(); err != nil {
		return domain.Catalog{}, err
	}

	ctx, span := uc.ins.tracer.Start(ctx, "catalog.scan_repository")
	defer span.End()
	span.SetAttributes(attribute.String("repo.url", req.RepoURL), attribute.String("repo.commit", req.Commit))

	log.Info("Starting repository scan")
	checkout, err := uc.fetcher.Checkout(ctx, req.RepoURL, req.Commit)
	if err != nil {
		log.Error("Failed to acquire repository", slog.Any("error", err))
		uc.recordOutcome(ctx, span, "acquire_failed", err)
		return domain.Catalog{}, fmt.Errorf("failed to acquire repository %s at %s: %w", req.RepoURL, req.Commit, err)
	}
	defer func() {
		if err := checkout.Cleanup(); err != nil {
			log.Warn("Failed to remove checkout", slog.String("dir", checkout.Dir), slog.Any("error", err))
		}
	}()
	log.Info("Repository checked out", slog.String("dir", checkout.Dir))

	return uc.scan(ctx, log, span, checkout.Dir, req)
}

// ExecuteLocal builds, stores and delivers the catalog of a directory that is
// already on local storage. req supplies the metadata recorded with the catalog.
func (uc *ScanRepositoryUseCase) ExecuteLocal(ctx context.Context, dir string, req ScanRequest) (domain.Catalog, error) {
	if req.RepoURL == "" {
		req.RepoURL = dir
	}
	log := uc.logger.With(slog.String("dir", dir), slog.String("repo_url", req.RepoURL))

	ctx, span := uc.ins.tracer.Start(ctx, "catalog.scan_local")
	defer span.End()
	span.SetAttributes(attribute.String("scan.dir", dir))

	log.Info("Starting local scan")
	return uc.scan(ctx, log, span, dir, req)
}

func (uc *ScanRepositoryUseCase) scan(ctx context.Context, log *slog.Logger, span trace.Span, dir string, req ScanRequest) (domain.Catalog, error) {
	catalog, err := uc.buildFromDir(ctx, log, dir, req)
	if err != nil {
		uc.recordOutcome(ctx, span, "build_failed", err)
		return domain.Catalog{}, err
	}

	if uc.repository != nil {
		if err := uc.store(ctx, catalog); err != nil {
			// Storage failures do not block delivery.
			log.Warn("Failed to store catalog", slog.String("catalog_id", catalog.ID), slog.Any("error", err))
		}
	}

	if uc.publisher != nil {
		log.Info("Publishing catalog", slog.Int("endpoint_count", len(catalog.Endpoints)))
		if err := uc.publisher.Publish(ctx, catalog); err != nil {
			log.Error("Failed to publish catalog", slog.Any("error", err))
			uc.recordOutcome(ctx, span, "publish_failed", err)
			return catalog, fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
		}
	}

	uc.recordOutcome(ctx, span, "ok", nil)
	log.Info("Successfully built catalog",
		slog.String("catalog_id", catalog.ID),
		slog.Int("endpoint_count", len(catalog.Endpoints)),
		slog.Int("diagnostic_count", len(catalog.Diagnostics)))
	return catalog, nil
}

func (uc *ScanRepositoryUseCase) buildFromDir(ctx context.Context, log *slog.Logger, dir string, req ScanRequest) (domain.Catalog, error) {
	files, diagnostics, err := uc.loader.Load(ctx, dir)
	if err != nil {
		log.Error("Failed to load source files", slog.Any("error", err))
		return domain.Catalog{}, fmt.Errorf("failed to load source files from %s: %w", dir, err)
	}
	log.Info("Loaded source files", slog.Int("file_count", len(files)))

	units := make([]domain.SourceUnit, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return domain.Catalog{}, err
		}
		unit, err := uc.structurer.Structure(ctx, f)
		if err != nil {
			log.Warn("Skipping unparsable source file", slog.String("file", f.Path), slog.Any("error", err))
			diagnostics = append(diagnostics, domain.Diagnostic{
				Unit:    f.Path,
				Phase:   domain.PhaseStructure,
				Message: err.Error(),
				Skipped: true,
			})
			continue
		}
		units = append(units, unit)
	}

	result, err := uc.builder.Build(ctx, units)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("failed to build catalog: %w", err)
	}

	return domain.Catalog{
		ID:          uc.newID(),
		RepoURL:     req.RepoURL,
		Commit:      req.Commit,
		Tag:         req.Tag,
		CreatedAt:   uc.now().UTC(),
		Endpoints:   result.Endpoints,
		Diagnostics: append(diagnostics, result.Diagnostics...),
	}, nil
}

func (uc *ScanRepositoryUseCase) store(ctx context.Context, catalog domain.Catalog) error {
	record, err := catalog.Record()
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := uc.repository.Save(ctx, record); err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}
	return nil
}

func (uc *ScanRepositoryUseCase) recordOutcome(ctx context.Context, span trace.Span, outcome string, err error) {
	uc.ins.scans.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, outcome)
}

// IsInvalidRequest reports whether err was caused by a malformed ScanRequest.
func IsInvalidRequest(err error) bool {
	return errors.Is(err, ErrInvalidRequest)
}
