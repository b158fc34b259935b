// Package sqliterepo stores catalog records in SQLite.
package sqliterepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/i2y/apicatalog/internal/domain"
	"github.com/i2y/apicatalog/internal/usecase"
)

const schema = `
CREATE TABLE IF NOT EXISTS catalogs (
	id             TEXT PRIMARY KEY,
	repo_url       TEXT NOT NULL,
	commit_sha     TEXT NOT NULL,
	tag            TEXT NOT NULL DEFAULT '',
	created_at     INTEGER NOT NULL,
	endpoint_count INTEGER NOT NULL,
	complete       INTEGER NOT NULL,
	payload        BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS catalogs_repo_created ON catalogs (repo_url, created_at DESC);
`

// Repository implements usecase.CatalogRepository on a SQLite database.
type Repository struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the database at dsn and applies the schema.
// ":memory:" gives a private in-memory database.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Repository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One connection keeps in-memory databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure sqlite database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Repository{db: db, logger: logger.With("component", "sqlite_repo")}, nil
}

// Close closes the database.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Save stores the record, replacing any record with the same ID.
func (r *Repository) Save(ctx context.Context, record domain.CatalogRecord) error {
	payload := []byte(record.Payload)
	if payload == nil {
		payload = []byte{}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO catalogs (id, repo_url, commit_sha, tag, created_at, endpoint_count, complete, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.RepoURL, record.Commit, record.Tag,
		record.CreatedAt.UnixNano(), record.EndpointCount, record.Complete, payload)
	if err != nil {
		r.logger.Error("Failed to save catalog", slog.String("catalog_id", record.ID), slog.Any("error", err))
		return fmt.Errorf("failed to save catalog %s: %w", record.ID, err)
	}
	r.logger.Info("Saved catalog", slog.String("catalog_id", record.ID))
	return nil
}

// List returns matching records newest first, without payloads.
func (r *Repository) List(ctx context.Context, filter usecase.CatalogFilter) ([]domain.CatalogRecord, error) {
	var (
		where []string
		args  []any
	)
	if filter.RepoURL != "" {
		where = append(where, "repo_url = ?")
		args = append(args, filter.RepoURL)
	}
	if filter.Commit != "" {
		where = append(where, "commit_sha = ?")
		args = append(args, filter.Commit)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}

	query := "SELECT id, repo_url, commit_sha, tag, created_at, endpoint_count, complete FROM catalogs"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id ASC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalogs: %w", err)
	}
	defer rows.Close()

	records := []domain.CatalogRecord{}
	for rows.Next() {
		var (
			rec       domain.CatalogRecord
			createdAt int64
		)
		if err := rows.Scan(&rec.ID, &rec.RepoURL, &rec.Commit, &rec.Tag, &createdAt, &rec.EndpointCount, &rec.Complete); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row: %w", err)
		}
		rec.CreatedAt = time.Unix(0, createdAt).UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalogs: %w", err)
	}
	r.logger.Debug("Listed catalogs from repository", slog.Int("count", len(records)))
	return records, nil
}

// FindByID retrieves a catalog record with its payload.
func (r *Repository) FindByID(ctx context.Context, id string) (*domain.CatalogRecord, error) {
	var (
		rec       domain.CatalogRecord
		createdAt int64
		payload   []byte
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, repo_url, commit_sha, tag, created_at, endpoint_count, complete, payload
		FROM catalogs WHERE id = ?`, id).
		Scan(&rec.ID, &rec.RepoURL, &rec.Commit, &rec.Tag, &createdAt, &rec.EndpointCount, &rec.Complete, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Warn("Catalog not found", slog.String("catalog_id", id))
		return nil, usecase.ErrCatalogNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog %s: %w", id, err)
	}
	rec.CreatedAt = time.Unix(0, createdAt).UTC()
	if len(payload) > 0 {
		rec.Payload = payload
	}
	return &rec, nil
}
