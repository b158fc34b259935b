// Package mcptools exposes catalog operations as MCP tools.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/i2y/apicatalog/internal/domain"
	"github.com/i2y/apicatalog/internal/usecase"
)

// Scanner builds catalogs from remote repositories and local directories.
type Scanner interface {
	Execute(ctx context.Context, req usecase.ScanRequest) (domain.Catalog, error)
	ExecuteLocal(ctx context.Context, dir string, req usecase.ScanRequest) (domain.Catalog, error)
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

// Tools holds the handlers behind the registered MCP tools.
type Tools struct {
	scanner  Scanner
	lister   CatalogLister
	getter   CatalogGetter
	exporter OpenAPIExporter
	logger   *slog.Logger
}

// New creates the tool set. lister and getter may be nil when no catalog
// store is configured; the lookup tools are then not registered.
func New(scanner Scanner, lister CatalogLister, getter CatalogGetter, exporter OpenAPIExporter, logger *slog.Logger) *Tools {
	return &Tools{
		scanner:  scanner,
		lister:   lister,
		getter:   getter,
		exporter: exporter,
		logger:   logger.With("component", "mcptools"),
	}
}

// Register adds every available tool to server and returns how many were added.
func (t *Tools) Register(server usecase.MCPServerAdapter) int {
	server.AddTool(mcp.NewTool("build_catalog",
		mcp.WithDescription("Check out a repository at a commit, catalog its HTTP endpoints and deliver the result."),
		mcp.WithString("repo_url", mcp.Required(), mcp.Description("Repository URL, or github://owner/repo")),
		mcp.WithString("commit", mcp.Required(), mcp.Description("Commit to check out")),
		mcp.WithString("tag_name", mcp.Description("Release tag recorded with the catalog")),
	), t.buildCatalog)

	server.AddTool(mcp.NewTool("local_build_catalog",
		mcp.WithDescription("Catalog the HTTP endpoints of a directory on local disk."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Directory to scan")),
		mcp.WithString("repo_url", mcp.Description("Repository URL recorded with the catalog")),
		mcp.WithString("commit", mcp.Description("Commit recorded with the catalog")),
		mcp.WithString("tag_name", mcp.Description("Release tag recorded with the catalog")),
	), t.localBuildCatalog)

	count := 2
	if t.lister == nil || t.getter == nil {
		t.logger.Info("Catalog store disabled, lookup tools not registered")
		return count
	}

	server.AddTool(mcp.NewTool("list_catalogs",
		mcp.WithDescription("List stored catalogs, newest first."),
		mcp.WithString("repo_url", mcp.Description("Only catalogs of this repository")),
		mcp.WithString("commit", mcp.Description("Only catalogs of this commit")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of catalogs to return")),
	), t.listCatalogs)

	server.AddTool(mcp.NewTool("get_catalog",
		mcp.WithDescription("Return a stored catalog with all of its endpoints."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Catalog ID")),
	), t.getCatalog)

	server.AddTool(mcp.NewTool("export_openapi",
		mcp.WithDescription("Render a stored catalog as an OpenAPI 3 document."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Catalog ID")),
	), t.exportOpenAPI)

	return count + 3
}

func (t *Tools) buildCatalog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repoURL, err := req.RequireString("repo_url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	commit, err := req.RequireString("commit")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	scan := usecase.ScanRequest{RepoURL: repoURL, Commit: commit, Tag: req.GetString("tag_name", "")}

	t.logger.Info("build_catalog called", slog.String("repo_url", repoURL), slog.String("commit", commit))
	catalog, err := t.scanner.Execute(ctx, scan)
	return t.scanResult(catalog, err)
}

func (t *Tools) localBuildCatalog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	scan := usecase.ScanRequest{
		RepoURL: req.GetString("repo_url", ""),
		Commit:  req.GetString("commit", ""),
		Tag:     req.GetString("tag_name", ""),
	}

	t.logger.Info("local_build_catalog called", slog.String("path", dir))
	catalog, err := t.scanner.ExecuteLocal(ctx, dir, scan)
	return t.scanResult(catalog, err)
}

// scanResult reports a built catalog even when delivering it failed.
func (t *Tools) scanResult(catalog domain.Catalog, err error) (*mcp.CallToolResult, error) {
	if err != nil && !errors.Is(err, usecase.ErrDeliveryFailed) {
		t.logger.Warn("Scan failed", slog.Any("error", err))
		return mcp.NewToolResultError(err.Error()), nil
	}
	summary := struct {
		ID            string              `json:"id"`
		EndpointCount int                 `json:"endpoint_count"`
		Complete      bool                `json:"complete"`
		Delivered     bool                `json:"delivered"`
		DeliveryError string              `json:"delivery_error,omitempty"`
		Endpoints     []domain.Endpoint   `json:"data"`
		Diagnostics   []domain.Diagnostic `json:"diagnostics,omitempty"`
	}{
		ID:            catalog.ID,
		EndpointCount: len(catalog.Endpoints),
		Complete:      catalog.Complete(),
		Delivered:     err == nil,
		Endpoints:     catalog.Envelope().Data,
		Diagnostics:   catalog.Diagnostics,
	}
	if err != nil {
		summary.DeliveryError = err.Error()
	}
	return jsonResult(summary)
}

func (t *Tools) listCatalogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := usecase.CatalogFilter{
		RepoURL: req.GetString("repo_url", ""),
		Commit:  req.GetString("commit", ""),
		Limit:   req.GetInt("limit", 0),
	}
	records, err := t.lister.Execute(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if records == nil {
		records = []domain.CatalogRecord{}
	}
	return jsonResult(records)
}

func (t *Tools) getCatalog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	catalog, err := t.getter.Catalog(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(catalog)
}

func (t *Tools) exportOpenAPI(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	catalog, err := t.getter.Catalog(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(t.exporter.Export(catalog))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
