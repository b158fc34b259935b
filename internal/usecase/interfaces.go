package usecase

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	mcpGoServer "github.com/mark3labs/mcp-go/server"

	"github.com/i2y/apicatalog/internal/domain"
)

// Standard errors returned by use cases and adapters.
var (
	ErrCatalogNotFound = errors.New("catalog not found")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrDeliveryFailed  = errors.New("failed to publish catalog")
)

// --- Source Related ---

// SourceStructurer turns the content of one source file into its structural tree.
type SourceStructurer interface {
	Structure(ctx context.Context, file domain.SourceFile) (domain.SourceUnit, error)
}

// SourceLoader collects the source files under a directory. Files that cannot
// be read are reported as diagnostics rather than failing the load.
type SourceLoader interface {
	Load(ctx context.Context, root string) ([]domain.SourceFile, []domain.Diagnostic, error)
}

// Checkout is a local working copy of a repository at a given revision.
type Checkout struct {
	Dir string
	// Cleanup removes the working copy. It is never nil.
	Cleanup func() error
}

// RepoFetcher acquires a repository at a specific commit onto local storage.
type RepoFetcher interface {
	Checkout(ctx context.Context, repoURL, commit string) (Checkout, error)
}

// --- Delivery Related ---

// CatalogPublisher delivers a finished catalog somewhere outside the process.
type CatalogPublisher interface {
	Publish(ctx context.Context, catalog domain.Catalog) error
}

// CatalogFilter narrows a catalog listing.
type CatalogFilter struct {
	RepoURL string `schema:"repo_url"`
	Commit  string `schema:"commit"`
	Limit   int    `schema:"limit" validate:"gte=0,lte=1000"`
}

// CatalogRepository stores the catalogs produced by past scans.
type CatalogRepository interface {
	// Save stores a record, replacing any record with the same ID.
	Save(ctx context.Context, record domain.CatalogRecord) error
	// List returns records newest first, without payloads.
	List(ctx context.Context, filter CatalogFilter) ([]domain.CatalogRecord, error)
	// FindByID returns the record with its payload, or ErrCatalogNotFound.
	FindByID(ctx context.Context, id string) (*domain.CatalogRecord, error)
}

// --- MCP Server Abstraction ---

// MCPServerAdapter is the part of the MCP server the tool registration needs.
type MCPServerAdapter interface {
	AddTool(tool mcp.Tool, handlerFunc mcpGoServer.ToolHandlerFunc)
}
