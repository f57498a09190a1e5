package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/benedoc-inc/pdfburn/burn"
	"github.com/benedoc-inc/pdfburn/types"
)

type observableBurner struct {
	burner burn.Burner

	burnCounter        metric.Int64Counter
	burnDurationMetric metric.Float64Histogram
}

// NewBurner wraps b with a span and duration/count metrics per burn
func NewBurner(b burn.Burner) burn.Burner {
	meter := otel.Meter(instrumentationName)

	burnCounter, _ := meter.Int64Counter("pdfburn.burns",
		metric.WithDescription("Number of burns by result"),
	)

	burnDurationMetric, _ := meter.Float64Histogram("pdfburn.burn.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of burns"),
	)

	return &observableBurner{
		burner: b,

		burnCounter:        burnCounter,
		burnDurationMetric: burnDurationMetric,
	}
}

func (b *observableBurner) Burn(ctx context.Context, req types.BurnRequest) (*types.BurnResult, error) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "burn",
		trace.WithAttributes(
			attribute.String("pdfburn.document_id", req.DocumentID),
			attribute.Int("pdfburn.fields", len(req.Fields)),
		),
	)
	defer span.End()

	timestamp := time.Now()

	result, err := b.burner.Burn(ctx, req)

	outcome := "ok"

	if err != nil {
		outcome = "error"

		if code, ok := types.CodeOf(err); ok {
			outcome = string(code)
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	} else {
		span.SetAttributes(
			attribute.Int("pdfburn.pages", result.Pages),
			attribute.Int("pdfburn.drawn", result.Drawn),
			attribute.Int("pdfburn.warnings", len(result.Warnings)),
			attribute.String("pdfburn.output_digest", result.OutputDigest),
		)
	}

	attrs := metric.WithAttributes(attribute.String("pdfburn.result", outcome))

	b.burnCounter.Add(ctx, 1, attrs)
	b.burnDurationMetric.Record(ctx, time.Since(timestamp).Seconds(), attrs)

	return result, err
}
