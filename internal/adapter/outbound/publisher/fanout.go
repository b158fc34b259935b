// Package publisher delivers a catalog to several destinations.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/i2y/apicatalog/internal/domain"
	"github.com/i2y/apicatalog/internal/usecase"
)

// Target is a named delivery destination.
type Target struct {
	Name      string
	Publisher usecase.CatalogPublisher
}

// FanOut implements usecase.CatalogPublisher by delivering to every target in
// order. Every target is attempted; the failures are joined into one error.
type FanOut struct {
	targets []Target
	logger  *slog.Logger
}

// NewFanOut creates a new FanOut. Targets with a nil publisher are ignored.
func NewFanOut(logger *slog.Logger, targets ...Target) *FanOut {
	f := &FanOut{logger: logger.With("component", "catalog_fanout")}
	for _, t := range targets {
		if t.Publisher != nil {
			f.targets = append(f.targets, t)
		}
	}
	return f
}

// Len returns the number of configured targets.
func (f *FanOut) Len() int {
	return len(f.targets)
}

// Publish implements usecase.CatalogPublisher.
func (f *FanOut) Publish(ctx context.Context, catalog domain.Catalog) error {
	var errs []error
	for _, t := range f.targets {
		log := f.logger.With(slog.String("target", t.Name))
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Debug("Routing catalog to target")
		if err := t.Publisher.Publish(ctx, catalog); err != nil {
			log.Error("Delivery failed", slog.Any("error", err))
			errs = append(errs, fmt.Errorf("%s: %w", t.Name, err))
		}
	}
	return errors.Join(errs...)
}
