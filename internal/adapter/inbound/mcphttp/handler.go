package mcphttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"

	"github.com/i2y/apicatalog/internal/domain"
	"github.com/i2y/apicatalog/internal/usecase"
)

var (
	schemaDecoder = schema.NewDecoder()
	validate      = validator.New()
)

func init() {
	schemaDecoder.IgnoreUnknownKeys(true)
}

// Scanner builds and delivers the catalog of a repository revision.
type Scanner interface {
	Execute(ctx context.Context, req usecase.ScanRequest) (domain.Catalog, error)
}

// CatalogLister lists stored catalog summaries.
type CatalogLister interface {
	Execute(ctx context.Context, filter usecase.CatalogFilter) ([]domain.CatalogRecord, error)
}

// CatalogGetter fetches one stored catalog.
type CatalogGetter interface {
	Execute(ctx context.Context, id string) (*domain.CatalogRecord, error)
	Catalog(ctx context.Context, id string) (domain.Catalog, error)
}

// OpenAPIExporter renders a catalog as an OpenAPI document.
type OpenAPIExporter interface {
	Export(catalog domain.Catalog) *openapi3.T
}

// Handlers struct holds dependencies for the HTTP handlers.
type Handlers struct {
	scanner  Scanner
	lister   CatalogLister
	getter   CatalogGetter
	exporter OpenAPIExporter
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers struct.
func NewHandlers(
	scanner Scanner,
	lister CatalogLister,
	getter CatalogGetter,
	exporter OpenAPIExporter,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		scanner:  scanner,
		lister:   lister,
		getter:   getter,
		exporter: exporter,
		logger:   logger.With("component", "mcphttp_handler"),
	}
}

// RegisterAdminRoutes sets up the HTTP routes for admin endpoints.
func (h *Handlers) RegisterAdminRoutes(r chi.Router) {
	r.Get("/health", h.handleHealth)
	r.Route("/admin", func(r chi.Router) {
		r.Post("/scan", h.handleScan)
		r.Get("/catalogs", h.handleListCatalogs)
		r.Get("/catalogs/{id}", h.handleGetCatalog)
		r.Get("/catalogs/{id}/openapi", h.handleExportOpenAPI)
	})
}

// ScanResponse summarizes a finished scan.
type ScanResponse struct {
	ID            string              `json:"id"`
	EndpointCount int                 `json:"endpoint_count"`
	Complete      bool                `json:"complete"`
	Diagnostics   []domain.Diagnostic `json:"diagnostics,omitempty"`
}

func newScanResponse(c domain.Catalog) ScanResponse {
	return ScanResponse{
		ID:            c.ID,
		EndpointCount: len(c.Endpoints),
		Complete:      c.Complete(),
		Diagnostics:   c.Diagnostics,
	}
}

// handleScan implements POST /admin/scan
func (h *Handlers) handleScan(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req usecase.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Failed to decode scan request body", slog.Any("error", err))
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	h.logger.Info("Received scan request", slog.String("repo_url", req.RepoURL), slog.String("commit", req.Commit))
	catalog, err := h.scanner.Execute(r.Context(), req)
	switch {
	case err == nil:
	case usecase.IsInvalidRequest(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, usecase.ErrDeliveryFailed):
		h.logger.Error("Catalog built but not delivered", slog.String("catalog_id", catalog.ID), slog.Any("error", err))
		http.Error(w, fmt.Sprintf("Catalog %s built but not delivered: %v", catalog.ID, err), http.StatusBadGateway)
		return
	default:
		h.logger.Error("Failed to scan repository", slog.String("repo_url", req.RepoURL), slog.Any("error", err))
		http.Error(w, fmt.Sprintf("Failed to scan repository: %v", err), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, newScanResponse(catalog))
}

// handleListCatalogs implements GET /admin/catalogs
func (h *Handlers) handleListCatalogs(w http.ResponseWriter, r *http.Request) {
	var filter usecase.CatalogFilter
	if err := schemaDecoder.Decode(&filter, r.URL.Query()); err != nil {
		http.Error(w, fmt.Sprintf("Invalid query: %v", err), http.StatusBadRequest)
		return
	}
	if err := validate.Struct(filter); err != nil {
		http.Error(w, fmt.Sprintf("Invalid query: %v", err), http.StatusBadRequest)
		return
	}

	records, err := h.lister.Execute(r.Context(), filter)
	if err != nil {
		if usecase.IsInvalidRequest(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to list catalogs: %v", err), http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []domain.CatalogRecord{}
	}
	h.writeJSON(w, http.StatusOK, records)
}

// handleGetCatalog implements GET /admin/catalogs/{id}
func (h *Handlers) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	record, err := h.getter.Execute(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, record)
}

// handleExportOpenAPI implements GET /admin/catalogs/{id}/openapi
func (h *Handlers) handleExportOpenAPI(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.getter.Catalog(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.exporter.Export(catalog))
}

func (h *Handlers) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handlers) writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrCatalogNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case usecase.IsInvalidRequest(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("Failed to load catalog", slog.Any("error", err))
		http.Error(w, fmt.Sprintf("Failed to load catalog: %v", err), http.StatusInternalServerError)
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("Failed to write response", slog.Any("error", err))
	}
}
