package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docdistill/internal/api"
	"github.com/dgallion1/docdistill/internal/config"
	"github.com/dgallion1/docdistill/internal/extract"
	"github.com/dgallion1/docdistill/internal/pipeline"
	"github.com/dgallion1/docdistill/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	stats := extract.NewLLMStats(time.Hour)
	var provider extract.Provider
	switch cfg.Provider {
	case "gemini":
		gc, err := extract.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, stats)
		if err != nil {
			log.Error("gemini init failed", "error", err)
			os.Exit(1)
		}
		provider = gc
	default:
		provider = extract.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, stats)
	}

	st, err := store.New(cfg.ArtifactDir)
	if err != nil {
		log.Error("artifact store init failed", "error", err)
		os.Exit(1)
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, provider, st, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, provider, stats, log, cfg)

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

		provider.Close()
	}()

	log.Info("starting docdistill", "port", cfg.Port, "provider", cfg.Provider, "model", provider.Model())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
