package usecase

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/i2y/apicatalog/internal/usecase"

// instruments groups the tracer and counters shared by the catalog use cases.
// Without a configured provider the global no-op implementations are used.
type instruments struct {
	tracer       trace.Tracer
	endpoints    metric.Int64Counter
	skippedUnits metric.Int64Counter
	scans        metric.Int64Counter
}

func newInstruments(logger *slog.Logger) instruments {
	meter := otel.Meter(instrumentationName)
	ins := instruments{tracer: otel.Tracer(instrumentationName)}

	var err error
	ins.endpoints, err = meter.Int64Counter("apicatalog.endpoints",
		metric.WithDescription("Endpoints discovered by catalog builds."),
		metric.WithUnit("{endpoint}"))
	if err != nil {
		logger.Warn("Failed to create endpoints counter", slog.Any("error", err))
		ins.endpoints = noop.Int64Counter{}
	}
	ins.skippedUnits, err = meter.Int64Counter("apicatalog.units.skipped",
		metric.WithDescription("Source units skipped because they could not be processed."),
		metric.WithUnit("{unit}"))
	if err != nil {
		logger.Warn("Failed to create skipped units counter", slog.Any("error", err))
		ins.skippedUnits = noop.Int64Counter{}
	}
	ins.scans, err = meter.Int64Counter("apicatalog.scans",
		metric.WithDescription("Repository scans by outcome."),
		metric.WithUnit("{scan}"))
	if err != nil {
		logger.Warn("Failed to create scans counter", slog.Any("error", err))
		ins.scans = noop.Int64Counter{}
	}
	return ins
}
