package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/componentry/compodex/internal/config"
	"github.com/componentry/compodex/internal/embedding"
	openaiEmb "github.com/componentry/compodex/internal/embedding/openai"
	"github.com/componentry/compodex/internal/extract"
	logpkg "github.com/componentry/compodex/internal/logger"
	"github.com/componentry/compodex/internal/metrics"
	"github.com/componentry/compodex/internal/store/sqlite"
	chiTransport "github.com/componentry/compodex/internal/transport/chi"
	healthuc "github.com/componentry/compodex/internal/usecase/health"
	pipelineuc "github.com/componentry/compodex/internal/usecase/pipeline"
	scanuc "github.com/componentry/compodex/internal/usecase/scan"
	"github.com/componentry/compodex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting compodex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("build_date", version.Date),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("data_dir", cfg.Storage.DataDir),
		zap.String("collection", cfg.Storage.Collection),
		zap.String("embedding_provider", cfg.Embedding.Provider),
	)

	store, err := sqlite.NewStore(cfg.Storage.DataDir, cfg.Storage.Collection, logger)
	if err != nil {
		logger.Fatal("Failed to open component store", zap.Error(err))
	}
	defer func() { _ = store.Close() }()
	logger.Info("Component store ready", zap.String("path", store.Path()))

	// Register embedding metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()

	embedder := buildEmbedder(cfg.Embedding, logger)
	if checker := embeddingChecker(cfg.Embedding.Provider, embedder); checker != nil {
		probeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := checker.HealthCheck(probeCtx); err != nil {
			cancel()
			logger.Fatal("Embedding provider unreachable", zap.Error(err))
		}
		cancel()
	}
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Int("workers", cfg.Embedding.Workers),
	)

	pipeSvc := pipelineuc.New(store, embedder, logger).
		WithLimits(cfg.Search.DefaultLimit, cfg.Search.MaxLimit)
	scanSvc := scanuc.New(extract.New(), pipeSvc, logger)
	healthSvc := healthuc.New(store, embeddingChecker(cfg.Embedding.Provider, embedder), cfg.Embedding.Model)

	server := chiTransport.NewServer(pipeSvc, scanSvc, healthSvc, chiTransport.ScanDefaults{
		IncludeStorybooks: *cfg.Scan.IncludeStorybooks,
		IncludeTests:      *cfg.Scan.IncludeTests,
		Recursive:         *cfg.Scan.Recursive,
	}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedder assembles the embedder chain: provider -> worker pool.
func buildEmbedder(cfg config.EmbeddingConfig, logger *zap.Logger) embedding.Embedder {
	var base embedding.Embedder
	switch cfg.Provider {
	case "openai":
		base = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Logger:     logger,
		})
	default:
		base = embedding.NewMock(cfg.Dimensions)
	}

	return embedding.NewPool(base, cfg.Workers)
}

// embeddingChecker extracts the health check capability for providers
// with a reachable control plane. The mock provider has none.
func embeddingChecker(provider string, e embedding.Embedder) healthuc.EmbeddingChecker {
	if provider != "openai" {
		return nil
	}
	if hc, ok := e.(embedding.HealthChecker); ok {
		return hc
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
