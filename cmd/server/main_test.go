package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benedoc-inc/pdfburn/internal/otel"
)

func TestRun_StartupFailureShutsDownTelemetry(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")

	tests := map[string]string{
		"compositor": "document:\n  fallback: " + filepath.Join(missing, "fallback.pdf") + "\n",
		"recorder":   "audit:\n  type: jsonl\n  path: " + filepath.Join(missing, "audit.jsonl") + "\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

			errShutdown := errors.New("telemetry flushed")
			calls := 0

			prev := setupTelemetry
			setupTelemetry = func(context.Context, otel.Options) (func(context.Context) error, error) {
				return func(context.Context) error {
					calls++
					return errShutdown
				}, nil
			}
			defer func() { setupTelemetry = prev }()

			err := run(context.Background(), path)
			require.Error(t, err)
			require.ErrorIs(t, err, errShutdown)
			require.Equal(t, 1, calls)
		})
	}
}

func TestRun_BadConfig(t *testing.T) {
	err := run(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
