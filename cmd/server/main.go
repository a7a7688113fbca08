// rosterd is the board-game-cafe roster engine service.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/meeplecafe/rosterd/internal/config"
	"github.com/meeplecafe/rosterd/internal/database"
	"github.com/meeplecafe/rosterd/internal/handler"
	"github.com/meeplecafe/rosterd/internal/metrics"
	"github.com/meeplecafe/rosterd/internal/repository"
	"github.com/meeplecafe/rosterd/pkg/logger"
	"github.com/meeplecafe/rosterd/pkg/roster"
	"github.com/meeplecafe/rosterd/pkg/roster/generate"
)

// Build information, injected via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: "console",
	})

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("rosterd starting")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Error().Err(err).Msg("database connection failed")
		os.Exit(1)
	}
	defer db.Close()

	store := repository.NewStore(db)

	opts := generate.DefaultOptions()
	opts.MaxHoursPerWeek = cfg.Roster.DefaultMaxHours
	opts.TimeBudget = cfg.Roster.TimeBudget
	opts.MaxIterations = cfg.Roster.MaxIterations
	opts.PreferFairness = cfg.Roster.PreferFairness
	service := roster.NewService(store, opts)

	rosterHandler := handler.NewRosterHandler(service)

	mux := http.NewServeMux()

	// System endpoints
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := "ok"
		code := http.StatusOK
		if err := db.Health(ctx); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		fmt.Fprintf(w, `{"status":"%s","service":"rosterd"}`, status)
	})

	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","build_time":"%s","git_commit":"%s"}`, Version, BuildTime, GitCommit)
	})

	// API v1 endpoints
	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"message": "rosterd API v1",
			"endpoints": {
				"roster": {
					"generate": "POST /api/v1/roster/generate",
					"evaluate": "POST /api/v1/roster/evaluate",
					"swap_candidates": "POST /api/v1/roster/swap-candidates"
				},
				"rules": {
					"library": "GET /api/v1/rules/library"
				}
			}
		}`))
	})

	mux.HandleFunc("/api/v1/roster/generate", rosterHandler.Generate)
	mux.HandleFunc("/api/v1/roster/evaluate", rosterHandler.Evaluate)
	mux.HandleFunc("/api/v1/roster/swap-candidates", rosterHandler.SwapCandidates)
	mux.HandleFunc("/api/v1/rules/library", rosterHandler.RulesLibrary)

	// Monitoring
	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	// Middleware order: requestID -> rateLimit -> cors -> logging -> handler
	root := requestIDMiddleware(rateLimitMiddleware(cfg.API.RateLimit, corsMiddleware(loggingMiddleware(mux))))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      root,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	poolTicker := time.NewTicker(30 * time.Second)
	defer poolTicker.Stop()
	go func() {
		for range poolTicker.C {
			s := db.Stats()
			metrics.SetDBConnections("open", s.OpenConnections)
			metrics.SetDBConnections("in_use", s.InUse)
			metrics.SetDBConnections("idle", s.Idle)
		}
	}()

	go func() {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("version", Version).
			Str("url", fmt.Sprintf("http://localhost:%d", cfg.App.Port)).
			Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("server failed")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown failed")
		os.Exit(1)
	}

	logger.Info().Msg("server stopped")
}

// requestIDMiddleware reads or assigns the request ID.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestID)

		ctx := context.WithValue(r.Context(), "request_id", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware logs each request and records its metrics.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID, _ := r.Context().Value("request_id").(string)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)

		logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.statusCode).
			Dur("duration", duration).
			Msg("request handled")

		metrics.RecordRequestMetrics(r.Method, r.URL.Path, rw.statusCode, duration)
	})
}

// responseWriter captures the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RateLimiter is a simple token bucket.
type RateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens added per second
	lastRefill time.Time
	mu         sync.Mutex
}

// NewRateLimiter creates a limiter allowing requestsPerSecond sustained.
func NewRateLimiter(requestsPerSecond float64) *RateLimiter {
	return &RateLimiter{
		tokens:     requestsPerSecond,
		maxTokens:  requestsPerSecond * 2, // burst headroom
		refillRate: requestsPerSecond,
		lastRefill: time.Now(),
	}
}

// Allow reports whether one more request fits the budget.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.tokens += elapsed * rl.refillRate
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = now

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// rateLimitMiddleware rejects requests over the configured rate.
func rateLimitMiddleware(requestsPerSecond int, next http.Handler) http.Handler {
	limiter := NewRateLimiter(float64(requestsPerSecond))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":   true,
				"code":    "RATE_LIMITED",
				"message": "too many requests, slow down",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware answers preflight and sets the CORS headers.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
