package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/i2y/apicatalog/internal/domain"
)

// DefaultListLimit caps listings that do not set a limit.
const DefaultListLimit = 50

// ListCatalogsUseCase lists the catalogs of past scans.
type ListCatalogsUseCase struct {
	repository CatalogRepository
	logger     *slog.Logger
}

// NewListCatalogsUseCase creates a new ListCatalogsUseCase.
func NewListCatalogsUseCase(repository CatalogRepository, logger *slog.Logger) *ListCatalogsUseCase {
	return &ListCatalogsUseCase{
		repository: repository,
		logger:     logger.With("usecase", "ListCatalogs"),
	}
}

// Execute returns stored catalog summaries matching filter, newest first.
func (uc *ListCatalogsUseCase) Execute(ctx context.Context, filter CatalogFilter) ([]domain.CatalogRecord, error) {
	if err := validate.Struct(filter); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if filter.Limit == 0 {
		filter.Limit = DefaultListLimit
	}
	uc.logger.Info("Listing catalogs", slog.String("repo_url", filter.RepoURL), slog.Int("limit", filter.Limit))
	records, err := uc.repository.List(ctx, filter)
	if err != nil {
		uc.logger.Error("Failed to list catalogs from repository", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list catalogs from repository: %w", err)
	}
	uc.logger.Info("Successfully listed catalogs", slog.Int("count", len(records)))
	return records, nil
}

// GetCatalogUseCase fetches one stored catalog with its payload.
type GetCatalogUseCase struct {
	repository CatalogRepository
	logger     *slog.Logger
}

// NewGetCatalogUseCase creates a new GetCatalogUseCase.
func NewGetCatalogUseCase(repository CatalogRepository, logger *slog.Logger) *GetCatalogUseCase {
	return &GetCatalogUseCase{
		repository: repository,
		logger:     logger.With("usecase", "GetCatalog"),
	}
}

// Execute returns the catalog stored under id, or an error wrapping ErrCatalogNotFound.
func (uc *GetCatalogUseCase) Execute(ctx context.Context, id string) (*domain.CatalogRecord, error) {
	log := uc.logger.With(slog.String("catalog_id", id))
	if id == "" {
		return nil, fmt.Errorf("%w: catalog id is required", ErrInvalidRequest)
	}
	record, err := uc.repository.FindByID(ctx, id)
	if err != nil {
		log.Warn("Failed to find catalog", slog.Any("error", err))
		return nil, fmt.Errorf("failed to find catalog %s: %w", id, err)
	}
	log.Debug("Found catalog", slog.Int("endpoint_count", record.EndpointCount))
	return record, nil
}

// Catalog returns the stored catalog under id, decoded from its payload.
func (uc *GetCatalogUseCase) Catalog(ctx context.Context, id string) (domain.Catalog, error) {
	record, err := uc.Execute(ctx, id)
	if err != nil {
		return domain.Catalog{}, err
	}
	catalog, err := DecodeCatalog(record.Payload)
	if err != nil {
		uc.logger.Error("Stored catalog is corrupt", slog.String("catalog_id", id), slog.Any("error", err))
		return domain.Catalog{}, err
	}
	return catalog, nil
}
