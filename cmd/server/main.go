package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benedoc-inc/pdfburn/burn"
	"github.com/benedoc-inc/pdfburn/config"
	"github.com/benedoc-inc/pdfburn/internal/otel"
	"github.com/benedoc-inc/pdfburn/server"
)

var setupTelemetry = otel.Setup

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Parse(configPath)

	if err != nil {
		return err
	}

	shutdownTelemetry, err := setupTelemetry(ctx, otel.Options{
		ServiceName: "pdfburn",

		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	if err != nil {
		return err
	}

	log := slog.Default()

	fail := func(errs ...error) error {
		return errors.Join(append(errs, shutdownTelemetry(context.WithoutCancel(ctx)))...)
	}

	compositor, err := cfg.Compositor(log)

	if err != nil {
		return fail(err)
	}

	recorder, closeRecorder, err := cfg.Recorder(ctx, log)

	if err != nil {
		return fail(err)
	}

	service := burn.New(otel.NewBurner(compositor), recorder, log)

	s, err := server.New(cfg, service, log)

	if err != nil {
		return fail(err, closeRecorder(context.WithoutCancel(ctx)))
	}

	serveErr := s.ListenAndServe(ctx)

	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()

	return errors.Join(
		serveErr,
		closeRecorder(flushCtx),
		shutdownTelemetry(flushCtx),
	)
}
