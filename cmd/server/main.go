package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/myst-ext/myst-ext-points/internal/api"
	"github.com/myst-ext/myst-ext-points/internal/config"
	"github.com/myst-ext/myst-ext-points/internal/events"
	"github.com/myst-ext/myst-ext-points/internal/gradebook"
	"github.com/myst-ext/myst-ext-points/internal/pipeline"
	"github.com/myst-ext/myst-ext-points/internal/sheets"
	"github.com/myst-ext/myst-ext-points/internal/worksheet"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open the gradebook.
	store, err := gradebook.Open(cfg.GradebookDBPath)
	if err != nil {
		log.Error("gradebook open failed", "path", cfg.GradebookDBPath, "error", err)
		os.Exit(1)
	}

	// Shared renderer and stats.
	stats := worksheet.NewRenderStats(time.Hour)
	renderer := worksheet.NewRenderer(cfg.Categories, stats)

	// Optional backends. The service runs without either.
	var publisher *events.Publisher
	if cfg.AMQPURL != "" {
		publisher, err = events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, log)
		if err != nil {
			log.Warn("event publisher disabled", "error", err)
			publisher = nil
		}
	}
	var exporter *sheets.Client
	if cfg.SheetsSpreadsheetID != "" {
		exporter, err = sheets.New(ctx, cfg.SheetsSpreadsheetID, cfg.SheetsSheetName)
		if err != nil {
			log.Warn("sheets export disabled", "error", err)
			exporter = nil
		}
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, renderer, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, renderer, stats, store, publisher, exporter, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if publisher != nil {
			publisher.Close()
		}
		store.Close()
	}()

	log.Info("starting points service", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
