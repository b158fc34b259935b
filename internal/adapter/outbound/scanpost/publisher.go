// Package scanpost delivers catalogs to the scan backend over HTTP.
package scanpost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/i2y/apicatalog/internal/domain"
)

// DefaultPath is the backend route that accepts scan envelopes.
const DefaultPath = "/api/scan"

// maxErrorBody caps how much of an error response is kept in the returned error.
const maxErrorBody = 4 << 10

// Publisher POSTs a catalog's delivery envelope to the backend.
type Publisher struct {
	client   *http.Client
	endpoint string
	headers  map[string]string
	logger   *slog.Logger
}

// New creates a new Publisher posting to backendURL joined with path
// (DefaultPath when empty).
func New(client *http.Client, backendURL, path string, headers map[string]string, logger *slog.Logger) (*Publisher, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if path == "" {
		path = DefaultPath
	}
	base, err := url.Parse(backendURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend URL %q", backendURL)
	}
	base.Path = strings.TrimSuffix(base.Path, "/") + "/" + strings.TrimPrefix(path, "/")

	return &Publisher{
		client:   client,
		endpoint: base.String(),
		headers:  headers,
		logger:   logger.With("component", "scan_publisher"),
	}, nil
}

// Endpoint returns the URL catalogs are posted to.
func (p *Publisher) Endpoint() string {
	return p.endpoint
}

// Publish implements usecase.CatalogPublisher.
func (p *Publisher) Publish(ctx context.Context, catalog domain.Catalog) error {
	log := p.logger.With(slog.String("url", p.endpoint), slog.String("catalog_id", catalog.ID))

	body, err := json.Marshal(catalog.Envelope())
	if err != nil {
		log.Error("Failed to marshal scan envelope", slog.Any("error", err))
		return fmt.Errorf("failed to marshal scan envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		log.Error("Failed to create HTTP request", slog.Any("error", err))
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range p.headers {
		req.Header.Set(key, value)
	}

	log.Debug("Posting scan envelope", slog.Int("size", len(body)), slog.Int("endpoint_count", len(catalog.Endpoints)))
	resp, err := p.client.Do(req)
	if err != nil {
		log.Error("HTTP request failed", slog.Any("error", err))
		return fmt.Errorf("request execution failed: %w", err)
	}
	defer resp.Body.Close()

	log = log.With(slog.Int("status_code", resp.StatusCode))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		log.Info("Delivered scan envelope")
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	log.Warn("Received non-success status code", slog.String("response_body", string(respBody)))
	return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
}
