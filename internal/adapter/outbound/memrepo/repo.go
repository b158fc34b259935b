package memrepo

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/i2y/apicatalog/internal/domain"
	"github.com/i2y/apicatalog/internal/usecase"
)

// InMemoryCatalogRepository provides an in-memory implementation of the CatalogRepository.
// NOTE: This implementation is not persistent and data will be lost on restart.
type InMemoryCatalogRepository struct {
	mu       sync.RWMutex
	catalogs map[string]domain.CatalogRecord // Map catalog ID to record
	logger   *slog.Logger
}

// NewInMemoryCatalogRepository creates a new in-memory repository.
func NewInMemoryCatalogRepository(logger *slog.Logger) *InMemoryCatalogRepository {
	return &InMemoryCatalogRepository{
		catalogs: make(map[string]domain.CatalogRecord),
		logger:   logger.With("component", "mem_repo"),
	}
}

// Save stores the record, replacing any record with the same ID.
func (r *InMemoryCatalogRepository) Save(ctx context.Context, record domain.CatalogRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record.Payload = append([]byte(nil), record.Payload...)
	r.catalogs[record.ID] = record
	r.logger.Info("Saved catalog", slog.String("catalog_id", record.ID), slog.Int("total_catalogs", len(r.catalogs)))
	return nil
}

// List returns matching records newest first, without payloads.
func (r *InMemoryCatalogRepository) List(ctx context.Context, filter usecase.CatalogFilter) ([]domain.CatalogRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]domain.CatalogRecord, 0, len(r.catalogs))
	for _, rec := range r.catalogs {
		if filter.RepoURL != "" && rec.RepoURL != filter.RepoURL {
			continue
		}
		if filter.Commit != "" && rec.Commit != filter.Commit {
			continue
		}
		rec.Payload = nil
		list = append(list, rec)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	if filter.Limit > 0 && len(list) > filter.Limit {
		list = list[:filter.Limit]
	}
	r.logger.Debug("Listed catalogs from repository", slog.Int("count", len(list)))
	return list, nil
}

// FindByID retrieves a catalog record with its payload.
func (r *InMemoryCatalogRepository) FindByID(ctx context.Context, id string) (*domain.CatalogRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.catalogs[id]
	if !ok {
		r.logger.Warn("Catalog not found", slog.String("catalog_id", id))
		return nil, usecase.ErrCatalogNotFound
	}
	r.logger.Debug("Found catalog", slog.String("catalog_id", id))
	return &rec, nil
}
