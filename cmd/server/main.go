package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/paperdesk/internal/config"
	"github.com/stemsi/paperdesk/internal/handler"
	"github.com/stemsi/paperdesk/internal/logger"
	"github.com/stemsi/paperdesk/internal/remote"
	"github.com/stemsi/paperdesk/internal/router"
	"github.com/stemsi/paperdesk/internal/service"
	"github.com/stemsi/paperdesk/internal/storage"
	"github.com/stemsi/paperdesk/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("store", cfg.StoreDriver).
		Str("generator", cfg.GeneratorURL).
		Msg("Starting Paperdesk")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Open Cache Store ──────────────────────────────────────────────
	blobs, closeStore, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache store")
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Error().Err(err).Msg("Cache store close error")
		}
	}()

	// ─── Initialize Stores and Clients ─────────────────────────────────
	paperStore := storage.NewPaperStore(blobs, log)
	formStore := storage.NewFormStateStore(blobs, log)
	generator := remote.NewClient(cfg.GeneratorURL, cfg.GeneratorTimeout, log)

	// ─── Initialize Services ──────────────────────────────────────────
	sessionService := service.NewSessionService(cfg, generator, blobs, log)
	paperService := service.NewPaperService(paperStore, generator, log)
	exportService := service.NewExportService(cfg, paperService, log)
	formStateService := service.NewFormStateService(formStore)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(sessionService),
		Paper:     handler.NewPaperHandler(paperService),
		Export:    handler.NewExportHandler(exportService),
		FormState: handler.NewFormStateHandler(formStateService),
		Catalog:   handler.NewCatalogHandler(generator),
		System:    handler.NewSystemHandler(generator, paperService, log),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(sessionService, handlers, cfg, router.DefaultOptions)

	// ─── Create HTTP Server ────────────────────────────────────────────
	// WriteTimeout stays above the generator timeout so a slow generation
	// still reaches the client.
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.GeneratorTimeout + 30*time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
