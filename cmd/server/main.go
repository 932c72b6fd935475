package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Lllllllleong/geminiscribe/internal/api"
	"github.com/Lllllllleong/geminiscribe/internal/config"
	"github.com/Lllllllleong/geminiscribe/internal/gcp"
	"github.com/Lllllllleong/geminiscribe/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("CRITICAL: Failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogging(cfg)

	ctx := context.Background()

	storageClient, err := gcp.NewStorageClient(ctx)
	if err != nil {
		slog.Error("CRITICAL: Failed to create storage client", "error", err)
		os.Exit(1)
	}
	defer storageClient.Close()

	genaiClient, err := gcp.NewGenAIClient(ctx, cfg)
	if err != nil {
		slog.Error("CRITICAL: Failed to create genai client", "error", err)
		os.Exit(1)
	}

	// Probe the configured bucket so misconfiguration shows up in the logs
	// at startup instead of on the first request.
	probeCtx, probeCancel := context.WithTimeout(ctx, 10*time.Second)
	if err := storageClient.Accessible(probeCtx, cfg.Bucket); err != nil {
		slog.Warn("Configured bucket is not accessible.", "bucket", cfg.Bucket, "error", err)
	}
	probeCancel()

	rasterizer := services.NewPDFRasterizer(cfg.MaxPages, cfg.RenderDPI)
	extractor := services.NewGeminiExtractor(genaiClient, cfg)
	pipeline := services.NewPipeline(storageClient, rasterizer, extractor, cfg)
	handler := api.New(pipeline)

	r := newRouter(cfg, handler)

	server := &http.Server{
		Addr:              cfg.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Starting Gemini Scribe server.", "address", cfg.Address, "model", cfg.Model, "vertexai", cfg.UseVertexAI)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("CRITICAL: Server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("Shutting down Gemini Scribe server.")
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}

// newRouter assembles the middleware chain and routes. Cross-origin access
// is only opened up in development; in production the service sits behind
// server-side callers and sends no CORS headers.
func newRouter(cfg *config.Config, handler *api.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if cfg.Development {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: false,
		}))
	}
	handler.Attach(r)
	return r
}

func setupLogging(cfg *config.Config) {
	var handler slog.Handler
	if cfg.Development {
		handler = slog.NewTextHandler(os.Stdout, nil)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))
}
