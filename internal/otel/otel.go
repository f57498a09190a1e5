// Package otel sets up process-wide logging, tracing and metrics.
//
// With TELEMETRY set, logs, traces and metrics are exported over OTLP
// (http, or grpc when OTEL_EXPORTER_OTLP_PROTOCOL=grpc) and slog is bridged
// into the log pipeline. Otherwise slog writes text or JSON to stderr.
package otel

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/attribute"

	sdkresource "go.opentelemetry.io/otel/sdk/resource"
)

const instrumentationName = "github.com/benedoc-inc/pdfburn"

var (
	EnableDebug     = false
	EnableTelemetry = false
)

func init() {
	EnableDebug = os.Getenv("DEBUG") != ""
	EnableTelemetry = os.Getenv("TELEMETRY") != ""
}

type Options struct {
	ServiceName string

	Level  slog.Level
	Format string

	// Output receives local logs; nil means stderr
	Output io.Writer
}

// Setup installs the default logger and, when telemetry is enabled, the
// global tracer and meter providers. The returned function flushes and
// stops the exporters.
func Setup(ctx context.Context, opts Options) (func(context.Context) error, error) {
	if EnableDebug && opts.Level > slog.LevelDebug {
		opts.Level = slog.LevelDebug
	}

	if !EnableTelemetry {
		slog.SetDefault(slog.New(localHandler(opts)))
		return func(context.Context) error { return nil }, nil
	}

	if opts.ServiceName == "" {
		opts.ServiceName = "pdfburn"
	}

	resource, err := sdkresource.Merge(
		sdkresource.Default(),
		sdkresource.NewSchemaless(attribute.String("service.name", opts.ServiceName)),
	)

	if err != nil {
		return nil, err
	}

	var shutdowns []func(context.Context) error

	shutdown := func(ctx context.Context) error {
		var errs []error

		for _, s := range shutdowns {
			errs = append(errs, s(ctx))
		}

		return errors.Join(errs...)
	}

	for _, setup := range []func(context.Context, *sdkresource.Resource) (func(context.Context) error, error){
		setupLogger,
		setupTracer,
		setupMeter,
	} {
		s, err := setup(ctx, resource)

		if err != nil {
			return nil, errors.Join(err, shutdown(ctx))
		}

		shutdowns = append(shutdowns, s)
	}

	return shutdown, nil
}

func localHandler(opts Options) slog.Handler {
	out := opts.Output

	if out == nil {
		out = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.Level}

	if opts.Format == "json" {
		return slog.NewJSONHandler(out, handlerOpts)
	}

	return slog.NewTextHandler(out, handlerOpts)
}
