package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"slotbook/internal/model"
)

// Store supplies the interval snapshots the availability core reads.
type Store interface {
	WindowsInRange(ctx context.Context, from, to time.Time) ([]model.AvailabilityWindow, error)
	ActiveBookingsInRange(ctx context.Context, from, to time.Time) ([]model.Booking, error)
	BusyInRange(ctx context.Context, from, to time.Time) ([]model.BusyInterval, error)
}

// Options configures the HTTP server.
type Options struct {
	APIKey          string
	DefaultDuration int
	MaxRangeDays    int
	RateLimit       float64
	RateBurst       int
	CacheTTL        time.Duration
}

// Server serves the availability query endpoints.
type Server struct {
	store   Store
	cache   *queryCache
	limiter *rate.Limiter
	logger  *zerolog.Logger

	// mu guards opts: defaults change at runtime on config reload.
	mu   sync.RWMutex
	opts Options

	// now is captured once per request and threaded through the core so a
	// single query sees one consistent instant.
	now func() time.Time
}

// NewServer creates the server. rdb may be nil to disable caching.
func NewServer(store Store, rdb *redis.Client, opts Options, logger *zerolog.Logger) *Server {
	if opts.DefaultDuration <= 0 {
		opts.DefaultDuration = 30
	}
	if opts.MaxRangeDays <= 0 {
		opts.MaxRangeDays = 90
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 20
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 40
	}

	return &Server{
		store:   store,
		cache:   newQueryCache(rdb, opts.CacheTTL),
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateBurst),
		logger:  logger,
		now:     time.Now,
	}
}

// FlushCache drops all cached availability responses. Wired to the busy-sync
// event so stale snapshots never outlive a calendar import.
func (s *Server) FlushCache(ctx context.Context) error {
	return s.cache.Flush(ctx)
}

// UpdateDefaults replaces the booking defaults for subsequent requests.
// Called on config reload; non-positive values keep the current setting.
func (s *Server) UpdateDefaults(durationMinutes, maxRangeDays int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if durationMinutes > 0 {
		s.opts.DefaultDuration = durationMinutes
	}
	if maxRangeDays > 0 {
		s.opts.MaxRangeDays = maxRangeDays
	}
}

func (s *Server) defaultDuration() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts.DefaultDuration
}

func (s *Server) maxRangeDays() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts.MaxRangeDays
}

// Handler returns the routed and middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/availability/dates", s.handleDates)
	mux.HandleFunc("/api/v1/availability/slots", s.handleSlots)
	mux.HandleFunc("/api/v1/availability/report.xlsx", s.handleReport)
	return s.withLogging(s.withRateLimit(s.withAuth(mux)))
}

func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.APIKey != "" {
			key := r.Header.Get("X-API-Key")
			if subtle.ConstantTimeCompare([]byte(key), []byte(s.opts.APIKey)) != 1 {
				writeError(w, http.StatusUnauthorized, "invalid API key")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
