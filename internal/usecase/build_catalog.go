package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/i2y/apicatalog/internal/domain"
	"github.com/i2y/apicatalog/internal/schema"
)

// BuildResult is the outcome of a catalog build. Diagnostics lists every unit
// that was skipped or needs attention; the endpoints of the remaining units
// are still reported.
type BuildResult struct {
	Endpoints   []domain.Endpoint
	Diagnostics []domain.Diagnostic
	Registry    *schema.Registry
}

// CatalogBuilder runs the two catalog passes over a set of source units: first
// every declaration goes into the type registry, then, once the registry is
// complete, every controller is scanned for endpoints.
type CatalogBuilder struct {
	extractor   *DeclarationExtractor
	scanner     *EndpointScanner
	parallelism int
	logger      *slog.Logger
	ins         instruments
}

// NewCatalogBuilder creates a new CatalogBuilder. parallelism bounds the number
// of units processed concurrently within a pass; values below 1 mean sequential.
func NewCatalogBuilder(
	extractor *DeclarationExtractor,
	scanner *EndpointScanner,
	parallelism int,
	logger *slog.Logger,
) *CatalogBuilder {
	if parallelism < 1 {
		parallelism = 1
	}
	return &CatalogBuilder{
		extractor:   extractor,
		scanner:     scanner,
		parallelism: parallelism,
		logger:      logger.With("usecase", "BuildCatalog"),
		ins:         newInstruments(logger),
	}
}

// Build runs both passes over units. Results are ordered by unit, then by
// declaration, whatever the parallelism. The only error is context cancellation.
func (b *CatalogBuilder) Build(ctx context.Context, units []domain.SourceUnit) (BuildResult, error) {
	ctx, span := b.ins.tracer.Start(ctx, "catalog.build")
	defer span.End()
	span.SetAttributes(attribute.Int("catalog.units", len(units)))

	var result BuildResult

	// Pass 1: declarations. Units are extracted concurrently but applied to the
	// registry in unit order so that name collisions resolve deterministically.
	decls := make([][]Declaration, len(units))
	extractErrs := make([]error, len(units))
	if err := b.forEachUnit(ctx, len(units), func(i int) {
		decls[i], extractErrs[i] = b.extractor.Extract(units[i])
	}); err != nil {
		return BuildResult{}, err
	}

	builder := schema.NewBuilder()
	for i, unit := range units {
		if extractErrs[i] != nil {
			b.logger.Warn("Skipping unit in declaration pass", slog.String("unit", unitID(unit)), slog.Any("error", extractErrs[i]))
			result.Diagnostics = append(result.Diagnostics, domain.Diagnostic{
				Unit:    unitID(unit),
				Phase:   domain.PhaseExtract,
				Message: extractErrs[i].Error(),
				Skipped: true,
			})
			b.ins.skippedUnits.Add(ctx, 1, metric.WithAttributes(attribute.String("phase", string(domain.PhaseExtract))))
			continue
		}
		b.extractor.Register(builder, unit, decls[i])
	}
	for _, ow := range builder.Overwrites() {
		result.Diagnostics = append(result.Diagnostics, domain.Diagnostic{
			Unit:    ow.Unit,
			Phase:   domain.PhaseExtract,
			Message: fmt.Sprintf("type %s replaces the declaration from %s", ow.Name, ow.Previous),
		})
	}
	result.Registry = builder.Build()
	b.logger.Info("Type registry built", slog.Int("types", result.Registry.Len()), slog.Int("collisions", len(builder.Overwrites())))

	// Pass 2: endpoints, against the completed registry.
	found := make([][]domain.Endpoint, len(units))
	scanErrs := make([]error, len(units))
	if err := b.forEachUnit(ctx, len(units), func(i int) {
		found[i], scanErrs[i] = b.scanner.Scan(units[i], result.Registry)
	}); err != nil {
		return BuildResult{}, err
	}

	for i, unit := range units {
		if scanErrs[i] != nil {
			b.logger.Warn("Skipping unit in endpoint pass", slog.String("unit", unitID(unit)), slog.Any("error", scanErrs[i]))
			result.Diagnostics = append(result.Diagnostics, domain.Diagnostic{
				Unit:    unitID(unit),
				Phase:   domain.PhaseScan,
				Message: scanErrs[i].Error(),
				Skipped: true,
			})
			b.ins.skippedUnits.Add(ctx, 1, metric.WithAttributes(attribute.String("phase", string(domain.PhaseScan))))
			continue
		}
		result.Endpoints = append(result.Endpoints, found[i]...)
	}

	b.ins.endpoints.Add(ctx, int64(len(result.Endpoints)))
	span.SetAttributes(
		attribute.Int("catalog.endpoints", len(result.Endpoints)),
		attribute.Int("catalog.diagnostics", len(result.Diagnostics)),
	)
	b.logger.Info("Catalog built", slog.Int("units", len(units)), slog.Int("endpoints", len(result.Endpoints)), slog.Int("diagnostics", len(result.Diagnostics)))
	return result, nil
}

// forEachUnit calls fn for every index in [0, n) with at most b.parallelism
// calls in flight, and returns once all calls have finished.
func (b *CatalogBuilder) forEachUnit(ctx context.Context, n int, fn func(i int)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.parallelism)
	for i := 0; i < n; i++ {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
