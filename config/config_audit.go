package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/benedoc-inc/pdfburn/audit"
)

func (c *Config) applyAudit(file *configFile) error {
	a := Audit{
		Type:    file.Audit.Type,
		Path:    file.Audit.Path,
		DSN:     file.Audit.DSN,
		Timeout: file.Audit.Timeout,
	}

	if a.Type == "" {
		a.Type = "log"
	}

	switch a.Type {
	case "none", "log":
	case "jsonl":
		if a.Path == "" {
			return errors.New("audit.path is required for jsonl audit")
		}
	case "postgres":
		if a.DSN == "" {
			return errors.New("audit.dsn is required for postgres audit")
		}
	default:
		return fmt.Errorf("audit.type: unsupported type %q", a.Type)
	}

	c.Audit = a
	return nil
}

// Recorder builds the configured audit recorder, wrapped so that records
// are written in the background. The returned close function flushes
// pending records and releases the store.
func (c *Config) Recorder(ctx context.Context, log *slog.Logger) (*audit.Async, func(context.Context) error, error) {
	var next audit.Recorder
	release := func() error { return nil }

	switch c.Audit.Type {
	case "none":
		next = audit.Nop{}

	case "", "log":
		next = audit.Logger{Log: log}

	case "jsonl":
		j, err := audit.OpenJSONL(c.Audit.Path, log)

		if err != nil {
			return nil, nil, err
		}

		next = j
		release = j.Close

	case "postgres":
		p, err := audit.NewPostgres(ctx, c.Audit.DSN, log)

		if err != nil {
			return nil, nil, err
		}

		next = p
		release = func() error { p.Close(); return nil }

	default:
		return nil, nil, fmt.Errorf("unsupported audit type %q", c.Audit.Type)
	}

	a := audit.NewAsync(next, c.Audit.Timeout, log)

	closer := func(ctx context.Context) error {
		return errors.Join(a.Close(ctx), release())
	}

	return a, closer, nil
}
