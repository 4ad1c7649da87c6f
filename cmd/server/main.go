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

	"docgraph/internal/api"
	"docgraph/internal/config"
	"docgraph/internal/importer"
	"docgraph/internal/nlp"
	"docgraph/internal/parser"
	"docgraph/internal/pipeline"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	parser.FallbackPdftotext = cfg.PDFFallbackPdftotext

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize NLP backends. Both degrade gracefully when unavailable.
	detector := nlp.NewWhatlangDetector()
	analyzer := nlp.NewKagomeAnalyzer()
	if !analyzer.Available() {
		log.Warn("morphological analyzer unavailable, Japanese chunking degrades to rune counts")
	}

	im := importer.New(log, detector, analyzer)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, im, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)

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
	}()

	log.Info("starting docgraph", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
