// Package server provides the HTTP API for wine lookups and stored enrichments.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/wine-enricher/internal/db"
	"github.com/jonathan/wine-enricher/internal/pipeline"
	"github.com/jonathan/wine-enricher/internal/server/ratelimit"
)

const shutdownTimeout = 30 * time.Second

// WineReader is the part of the store the read endpoints need. db.Store satisfies it.
type WineReader interface {
	ListWines(ctx context.Context, opts db.ListOptions) ([]db.Wine, error)
	FindMatches(ctx context.Context, q db.MatchQuery) ([]db.Wine, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	runner      *pipeline.Runner
	wines       WineReader
	rateLimiter *ratelimit.Limiter
	validate    *validator.Validate
	logger      *slog.Logger
}

// Config holds server configuration
type Config struct {
	Port      int
	RateLimit float64 // requests per second per client; 0 disables limiting
	RateBurst int
	Whitelist string // comma-separated client IPs never limited
	Blacklist string // comma-separated client IPs always refused
	Logger    *slog.Logger
}

// New creates a new server instance. wines may be nil, in which case the read
// endpoints answer 503.
func New(cfg Config, runner *pipeline.Runner, wines WineReader) (*Server, error) {
	if runner == nil {
		return nil, fmt.Errorf("runner is required")
	}

	s := &Server{
		runner:      runner,
		wines:       wines,
		rateLimiter: ratelimit.NewLimiter(ratelimit.NewConfig(cfg.RateLimit, cfg.RateBurst, cfg.Whitelist, cfg.Blacklist)),
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      cfg.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.validate.RegisterTagNameFunc(jsonFieldName)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /wine-info", s.handleWineInfo)
	mux.HandleFunc("POST /enrich-line", s.handleEnrichLine)
	mux.HandleFunc("GET /wines", s.handleListWines)
	mux.HandleFunc("POST /find-matches", s.handleFindMatches)
	mux.HandleFunc("GET /ping", s.handlePing)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // lookups can retry the model
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer s.rateLimiter.Stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server.start", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		s.logger.Info("server.shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("server.stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.logger.Warn("http.rate_limited", "client", clientID, "path", r.URL.Path, "retry_after", info.RetryAfter)
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
		)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("pong"))
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("http.encode_failed", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request.
// Only RemoteAddr is trusted; forwarded headers are ignored.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		secs := max(int(info.RetryAfter.Round(time.Second).Seconds()), 1)
		response["retry_after"] = secs
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
