// Package web provides the HTTP server and handlers for the anonymization
// API: uploads, background anonymization jobs, downloads, sample management,
// and the audit log.
package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dataveil/dataveil/internal/anonymize"
	"github.com/dataveil/dataveil/internal/audit"
	"github.com/dataveil/dataveil/internal/config"
	"github.com/dataveil/dataveil/internal/sample"
	"github.com/dataveil/dataveil/internal/store"
)

// Version is the API version reported by the status endpoint.
const Version = "1.0.0"

// Server is the HTTP server for the anonymization API.
type Server struct {
	cfg     *config.Config
	engine  *anonymize.Engine
	store   *store.Store
	samples *sample.Generator
	auditor *audit.Recorder
	jobs    *jobRegistry

	// jobCtx scopes background anonymization work so shutdown can cancel it.
	jobCtx context.Context

	router *chi.Mux
	server *http.Server
}

// NewServer creates a new Server instance. jobCtx bounds the lifetime of
// background anonymization goroutines.
func NewServer(cfg *config.Config, engine *anonymize.Engine, st *store.Store, samples *sample.Generator, auditor *audit.Recorder, jobCtx context.Context) *Server {
	s := &Server{
		cfg:     cfg,
		engine:  engine,
		store:   st,
		samples: samples,
		auditor: auditor,
		jobs:    newJobRegistry(cfg.Cleanup.Retention),
		jobCtx:  jobCtx,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	// Security hardening
	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes. Upload and anonymize get a
// stricter per-IP rate limit than the rest of the API.
func (s *Server) setupRoutes() {
	var uploadLimiter *rateLimiter
	if s.cfg.Rate.Enabled && s.cfg.Rate.UploadLimit > 0 {
		uploadLimiter = newRateLimiter(s.cfg.Rate.UploadLimit, time.Minute)
	}
	intake := func(r chi.Router) chi.Router {
		if uploadLimiter != nil {
			return r.With(uploadLimiter.middleware)
		}
		return r
	}

	s.router.Route("/api", func(r chi.Router) {
		// File intake and retrieval
		intake(r).Post("/upload", s.handleUpload)
		r.Get("/download/{filename}", s.handleDownload)

		// Anonymization jobs
		intake(r).Post("/anonymize", s.handleAnonymize)
		r.Get("/jobs/{jobID}", s.handleJobStatus)
		r.Post("/verify", s.handleVerify)

		// Sample data
		r.Get("/samples", s.handleListSamples)
		r.Post("/generate-samples", s.handleGenerateSamples)

		// Service management
		r.Get("/status", s.handleStatus)
		r.Post("/cleanup", s.handleCleanup)
		r.Get("/audit-log", s.handleAuditLog)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		// Control referrer information
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// rateLimiter implements a simple token bucket rate limiter per IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a rate limiter with the specified rate per window.
func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
	}
	// Start cleanup goroutine
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries every minute.
func (rl *rateLimiter) cleanup() {
	for {
		time.Sleep(time.Minute)
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{
			tokens:    rl.rate - 1, // consume one token
			lastReset: time.Now(),
		}
		return true
	}

	// Reset tokens if window has passed
	if time.Since(v.lastReset) > rl.window {
		v.tokens = rl.rate - 1
		v.lastReset = time.Now()
		return true
	}

	if v.tokens <= 0 {
		return false
	}

	v.tokens--
	return true
}

// middleware returns an HTTP middleware that rate limits by IP.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		// Use X-Real-IP if set (by RealIP middleware)
		if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
			ip = realIP
		}

		if !rl.allow(ip) {
			w.Header().Set("Retry-After", "60")
			respondError(w, r, errRateLimited, http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

var errRateLimited = rateLimitError{}

type rateLimitError struct{}

func (rateLimitError) Error() string { return "rate limit exceeded" }
