package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/snarg/scribe-relay/internal/api"
	"github.com/snarg/scribe-relay/internal/config"
	"github.com/snarg/scribe-relay/internal/metrics"
	"github.com/snarg/scribe-relay/internal/notify"
	"github.com/snarg/scribe-relay/internal/store"
	"github.com/snarg/scribe-relay/internal/transcribe"
)

var version = "dev"

func main() {
	startTime := time.Now()

	envFile := flag.String("env", "", "path to .env file (default .env)")
	port := flag.Int("port", 0, "listen port (overrides PORT)")
	logLevel := flag.String("log-level", "", "log level (overrides LOG_LEVEL)")
	storeURL := flag.String("store-url", "", "record store URL (overrides STORE_URL)")
	flag.Parse()

	// Config
	cfg, err := config.Load(config.Overrides{
		EnvFile:  *envFile,
		Port:     *port,
		LogLevel: *logLevel,
		StoreURL: *storeURL,
	})
	if err != nil {
		early := zerolog.New(os.Stderr).With().Timestamp().Logger()
		early.Fatal().Err(err).Msg("failed to load config")
	}

	// Logger
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
	log.Info().Str("version", version).Msg("scribe-relay starting")

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Record store
	storeLog := log.With().Str("component", "store").Logger()
	st, err := store.New(ctx, cfg.StoreURL, cfg.StoreKey, storeLog)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to record store")
	}
	defer st.Close()

	if pg, ok := st.(*store.Postgres); ok {
		metrics.RegisterPoolCollector(pg.Pool())
	}

	// Transcription provider
	provider := transcribe.NewClient(cfg.ProviderBaseURL, cfg.ProviderAPIKey, cfg.ProviderModel, cfg.ProviderTimeout)
	pollLog := log.With().Str("component", "poller").Logger()
	poller := transcribe.NewPoller(provider, transcribe.DefaultPollInterval, transcribe.DefaultMaxAttempts, pollLog)

	// Completion announcer (optional)
	var announcer *notify.Announcer
	if cfg.MQTTBrokerURL != "" {
		mqttLog := log.With().Str("component", "mqtt").Logger()
		announcer, err = notify.Connect(notify.Options{
			BrokerURL: cfg.MQTTBrokerURL,
			ClientID:  cfg.MQTTClientID,
			Topic:     cfg.MQTTTopic,
			Username:  cfg.MQTTUsername,
			Password:  cfg.MQTTPassword,
			Log:       mqttLog,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to mqtt broker")
		}
		defer announcer.Close()
	}

	// HTTP Server
	httpLog := log.With().Str("component", "http").Logger()
	srv := api.NewServer(cfg, st, provider, poller, announcer, version, startTime, httpLog)

	// Start HTTP server in background
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// Wait for shutdown signal or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server error")
		}
	}

	// Graceful shutdown with 10s timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}

	log.Info().Msg("scribe-relay stopped")
}
