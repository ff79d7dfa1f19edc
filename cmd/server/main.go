package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	httpadapter "baatrack/internal/adapters/http"
	pg "baatrack/internal/adapters/postgres"
	"baatrack/internal/compliance"
	"baatrack/internal/config"
	"baatrack/internal/ports"
	agsvc "baatrack/internal/services/agreements"
	extsvc "baatrack/internal/services/extraction"
	repsvc "baatrack/internal/services/reporting"
	"baatrack/internal/workers/alerter"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	log := newLogger(cfg.Env)
	if err != nil {
		log.Warn("config", "err", err)
	}
	if cfg.DatabaseURL == "" {
		log.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := pg.Migrate(ctx, cfg.DatabaseURL); err != nil {
		log.Error("migrate", "err", err)
		os.Exit(1)
	}

	var _ ports.AgreementRepository = db

	clock := clockwork.NewRealClock()
	agreements := agsvc.New(db, clock, log)
	reports := repsvc.New(db, compliance.New(log), clock)

	var extractor ports.Extractor = extsvc.Disabled{}
	if cfg.ExtractionModel != "" {
		provider, err := extsvc.NewProvider(cfg.ExtractionModel)
		if err != nil {
			log.Error("extraction provider", "err", err)
			os.Exit(1)
		}
		extractor = extsvc.New(provider, log)
	} else {
		log.Warn("EXTRACTION_MODEL not set; document extraction disabled")
	}

	srv := httpadapter.New(agreements, reports, extractor, log)
	r := chi.NewRouter()
	r.Mount("/", srv.Routes())

	// Background expiration alert sweep
	window := time.Duration(cfg.AlertWindowDays) * 24 * time.Hour
	interval := time.Duration(cfg.AlertIntervalMinutes) * time.Minute
	go alerter.New(db, clock, window, log).Run(ctx, interval)

	errCh := make(chan error, 1)
	go func() { errCh <- http.ListenAndServe(cfg.ListenAddr, r) }()
	log.Info("listening", "addr", cfg.ListenAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
		cancel()
		time.Sleep(300 * time.Millisecond)
	case err := <-errCh:
		log.Error("server", "err", err)
		os.Exit(1)
	}
}

func newLogger(env string) *slog.Logger {
	if env == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}
