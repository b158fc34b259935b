// Package filesink writes catalogs to local files.
package filesink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/i2y/apicatalog/internal/adapter/outbound/openapi"
	"github.com/i2y/apicatalog/internal/domain"
)

// Format selects the document written by a Sink.
type Format string

const (
	// FormatEndpoints writes the bare endpoint array.
	FormatEndpoints Format = "endpoints"
	// FormatEnvelope writes the document that is posted to the scan backend.
	FormatEnvelope Format = "envelope"
	// FormatOpenAPI writes an OpenAPI 3 document.
	FormatOpenAPI Format = "openapi"
)

// DefaultFile is the file written when no path is configured.
const DefaultFile = "controller_methods.json"

// Sink implements usecase.CatalogPublisher by writing a JSON file.
type Sink struct {
	path     string
	format   Format
	exporter *openapi.Exporter
	logger   *slog.Logger
}

// New creates a new Sink.
func New(path string, format Format, exporter *openapi.Exporter, logger *slog.Logger) (*Sink, error) {
	if path == "" {
		path = DefaultFile
	}
	switch format {
	case "":
		format = FormatEndpoints
	case FormatEndpoints, FormatEnvelope:
	case FormatOpenAPI:
		if exporter == nil {
			return nil, fmt.Errorf("openapi output requires an exporter")
		}
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
	return &Sink{
		path:     path,
		format:   format,
		exporter: exporter,
		logger:   logger.With("component", "file_sink", "path", path, "format", string(format)),
	}, nil
}

// Publish writes the catalog, replacing the file atomically.
func (s *Sink) Publish(ctx context.Context, catalog domain.Catalog) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var doc any
	switch s.format {
	case FormatEnvelope:
		doc = catalog.Envelope()
	case FormatOpenAPI:
		doc = s.exporter.Export(catalog)
	default:
		doc = catalog.Envelope().Data
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := writeFile(s.path, append(data, '\n')); err != nil {
		s.logger.Error("Failed to write catalog file", slog.Any("error", err))
		return err
	}
	s.logger.Info("Wrote catalog file", slog.Int("endpoint_count", len(catalog.Endpoints)), slog.Int("size", len(data)))
	return nil
}

func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
