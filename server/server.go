package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/benedoc-inc/pdfburn/burn"
	"github.com/benedoc-inc/pdfburn/config"
	"github.com/benedoc-inc/pdfburn/server/api"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

// ShutdownTimeout bounds how long in-flight requests may run after shutdown starts
const ShutdownTimeout = 30 * time.Second

type Server struct {
	*config.Config
	http.Handler

	log *slog.Logger
}

func New(cfg *config.Config, service *burn.Service, log *slog.Logger) (*Server, error) {
	if log == nil {
		log = slog.Default()
	}

	a, err := api.New(service, log)

	if err != nil {
		return nil, err
	}

	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)

	if cfg.TrustProxy {
		mux.Use(middleware.RealIP)
	}

	mux.Use(middleware.Recoverer)

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Content-Disposition", "X-Input-Digest", "X-Output-Digest", "X-Burn-Warnings"},
	}))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.Group(func(r chi.Router) {
		r.Use(rateLimit(cfg.Limiter))
		r.Use(bodyLimit(cfg.BodyLimit))

		a.Attach(r)
	})

	s := &Server{
		Config:  cfg,
		Handler: otelhttp.NewHandler(mux, "pdfburn"),

		log: log,
	}

	return s, nil
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight requests
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.Address,
		Handler: s.Handler,

		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)

	go func() {
		s.log.Info("server listening", "address", s.Address)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err

	case <-ctx.Done():
	}

	s.log.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"RATE_LIMITED"}` + "\n"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bodyLimit(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
