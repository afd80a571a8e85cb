package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	scriberelay "github.com/snarg/scribe-relay"
	"github.com/snarg/scribe-relay/internal/config"
	"github.com/snarg/scribe-relay/internal/metrics"
	"github.com/snarg/scribe-relay/internal/notify"
	"github.com/snarg/scribe-relay/internal/store"
	"github.com/snarg/scribe-relay/internal/transcribe"
)

type Server struct {
	http *http.Server
	log  zerolog.Logger
}

func NewServer(cfg *config.Config, st store.Store, provider *transcribe.Client, poller *transcribe.Poller, announcer *notify.Announcer, version string, startTime time.Time, log zerolog.Logger) *Server {
	r := chi.NewRouter()

	// Global middleware
	r.Use(RequestID)
	r.Use(Recoverer)
	r.Use(metrics.InstrumentHandler)
	r.Use(Logger(log))
	r.Use(CORSWithOrigins(cfg.CORSOrigins))
	r.Use(RateLimiter(float64(cfg.RateLimit)/cfg.RateWindow.Seconds(), cfg.RateLimit))

	// Keep the interfaces nil when the announcer is absent; a typed nil
	// would slip past the handlers' nil checks.
	var ann CompletionAnnouncer
	var annStatus AnnouncerStatus
	if announcer != nil {
		ann = announcer
		annStatus = announcer
	}

	r.Get("/", Welcome)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(scriberelay.OpenAPISpec)
	})

	health := NewHealthHandler(st, annStatus, version, startTime)
	r.Get("/health", health.ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())

	th := NewTranscriptionsHandler(provider, poller, st, ann, cfg.MaxUploadMB<<20, log)
	th.Routes(r)

	return &Server{
		http: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      r,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		log: log,
	}
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("http server starting")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("http server shutting down")
	return s.http.Shutdown(ctx)
}
