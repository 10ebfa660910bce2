// Package http exposes the subscription ledger as a JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"subtrack/internal/auth"
	"subtrack/internal/cache"
	"subtrack/internal/core"
	"subtrack/internal/ledger"
	applog "subtrack/internal/log"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

// Options tunes the server; zero values fall back to defaults.
type Options struct {
	CacheTTL       time.Duration
	CacheMaxSize   int
	UpcomingWindow int
}

func (o *Options) withDefaults() {
	if o.CacheTTL <= 0 {
		o.CacheTTL = 30 * time.Second
	}
	if o.CacheMaxSize <= 0 {
		o.CacheMaxSize = 128
	}
	if o.UpcomingWindow <= 0 {
		o.UpcomingWindow = 7
	}
}

type Server struct {
	http.Server

	ledger *ledger.Ledger
	auth   *auth.Service
	opts   Options

	rateLimiter   *rateLimiter
	statsCache    *cache.TTLCache[ledger.Stats]
	upcomingCache *cache.TTLCache[[]core.Subscription]
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, led *ledger.Ledger, authSvc *auth.Service, opts Options) *Server {
	opts.withDefaults()
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		ledger:        led,
		auth:          authSvc,
		opts:          opts,
		rateLimiter:   newRateLimiter(),
		statsCache:    cache.New[ledger.Stats](opts.CacheMaxSize, opts.CacheTTL),
		upcomingCache: cache.New[[]core.Subscription](opts.CacheMaxSize, opts.CacheTTL),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/subscriptions", s.with(s.handleCreateSubscription))
	mux.HandleFunc("GET /api/subscriptions", s.with(s.handleListSubscriptions))
	mux.HandleFunc("GET /api/subscriptions/{id}", s.with(s.handleGetSubscription))
	mux.HandleFunc("PATCH /api/subscriptions/{id}", s.with(s.handleUpdateSubscription))
	mux.HandleFunc("DELETE /api/subscriptions/{id}", s.with(s.handleDeleteSubscription))

	mux.HandleFunc("GET /api/stats", s.with(s.handleStats))
	mux.HandleFunc("GET /api/upcoming", s.with(s.handleUpcoming))
	mux.HandleFunc("GET /api/shared", s.with(s.handleShared))

	mux.HandleFunc("POST /api/import", s.with(s.handleImport))
	mux.HandleFunc("GET /api/export/csv", s.with(s.handleExportCSV))
	mux.HandleFunc("GET /api/export/xlsx", s.with(s.handleExportXLSX))

	mux.HandleFunc("POST /api/login", s.with(s.handleLogin))
	mux.HandleFunc("POST /api/login/google", s.with(s.handleLoginGoogle))
	mux.HandleFunc("POST /api/register", s.with(s.handleRegister))
	mux.HandleFunc("POST /api/logout", s.with(s.handleLogout))
	mux.HandleFunc("GET /api/me", s.with(s.handleMe))
	mux.HandleFunc("POST /api/onboarding/complete", s.with(s.handleCompleteOnboarding))

	return s
}

// with adds security headers, rate limiting, and request logging.
func (s *Server) with(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP)

		if isMutation(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatus, rw.statusCode,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodPut:
		return true
	}
	return false
}

// invalidateAggregates drops memoized responses after a mutation.
func (s *Server) invalidateAggregates() {
	s.statsCache.Purge()
	s.upcomingCache.Purge()
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if s.ledger.LoadStatus() == ledger.LoadFailed {
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

// Shutdown stops the rate limiter before draining connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.rateLimiter.stop()
	return s.Server.Shutdown(ctx)
}
