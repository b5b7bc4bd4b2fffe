// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/scholarbot/library-assistant/internal/agent"
	"github.com/scholarbot/library-assistant/internal/config"
	"github.com/scholarbot/library-assistant/internal/handler"
	"github.com/scholarbot/library-assistant/internal/library"
	"github.com/scholarbot/library-assistant/internal/llm"
	"github.com/scholarbot/library-assistant/internal/memory"
	"github.com/scholarbot/library-assistant/internal/middleware"
	"github.com/scholarbot/library-assistant/internal/tool"
	"github.com/scholarbot/library-assistant/pkg/logger"
	"github.com/scholarbot/library-assistant/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "library-assistant", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Initialize LLM client
	llmClient, err := llm.NewOpenAIClient(cfg.OpenAIAPIKey)
	if err != nil {
		log.Error("failed to create OpenAI client", zap.Error(err))
		os.Exit(1)
	}

	// Initialize the catalog search client and the tool set
	libraryClient := library.NewClient(library.Config{
		BaseURL:        cfg.LibraryBaseURL,
		APIKey:         cfg.LibraryAPIKey,
		Timeout:        cfg.SearchTimeout,
		RetryAttempts:  cfg.RetryAttempts,
		RetryBaseDelay: cfg.RetryBaseDelay,
		LimitMax:       cfg.ResultLimitMax,
	}, log)

	registry := tool.NewRegistry(
		tool.NewSearchTool(libraryClient, cfg.ResultLimitDefault, cfg.ResultLimitMax, log),
	)

	// Initialize conversation memory and the agent
	store := memory.NewStore()
	scholarAgent := agent.New(llmClient, registry, store, agent.Config{
		Model:         cfg.Model,
		Temperature:   cfg.Temperature,
		MaxTokens:     cfg.MaxTokens,
		MaxIterations: cfg.MaxIterations,
	}, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(llmClient)
	threadHandler := handler.NewThreadHandler(scholarAgent, store, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Route("/threads/{id}", func(r chi.Router) {
			r.Post("/messages", threadHandler.SendMessage)
			r.Get("/messages", threadHandler.ListMessages)
			r.Delete("/", threadHandler.Reset)
		})
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
