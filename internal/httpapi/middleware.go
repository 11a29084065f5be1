package httpapi

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	app "github.com/realtydesk/realtydesk/internal/app"
	"github.com/realtydesk/realtydesk/internal/config"
	"github.com/realtydesk/realtydesk/internal/metrics"
	"github.com/realtydesk/realtydesk/pkg/logger"
)

type contextKey string

const userContextKey contextKey = "httpapi.user"

// authSkipPaths are reachable without a bearer token.
var authSkipPaths = map[string]bool{
	"/api/register": true,
	"/api/login":    true,
	"/healthz":      true,
	"/metrics":      true,
}

// tokenVerifier turns a bearer token into the username it was issued to.
type tokenVerifier interface {
	ParseToken(token string) (string, error)
}

// NewServerHandler composes the full middleware chain around the API mux:
// CORS, metrics, audit, auth, then rate limiting. db may be nil; when set,
// audit entries are also persisted to the audit_log table.
func NewServerHandler(application *app.Application, cfg *config.Config, db *sql.DB, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}

	var sinks multiAuditSink
	if fileSink, err := newFileAuditSink(cfg.Audit.FilePath); err != nil {
		log.WithError(err).Warn("audit file sink disabled")
	} else if fileSink != nil {
		sinks = append(sinks, fileSink)
	}
	if pgSink := newPostgresAuditSink(db); pgSink != nil {
		sinks = append(sinks, pgSink)
	}
	var sink auditSink
	if len(sinks) > 0 {
		sink = sinks
	}
	audit := newAuditLog(cfg.Audit.MaxEntries, sink)

	mux := http.NewServeMux()
	mux.Handle("/api/", NewHandler(application))
	mux.HandleFunc("/api/audit", audit.handler)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Audit sits inside auth so entries carry the verified username.
	var handler http.Handler = mux
	handler = wrapWithRateLimit(handler, cfg.RateLimit)
	handler = wrapWithAudit(handler, audit)
	handler = wrapWithAuth(handler, application.Auth)
	handler = metrics.InstrumentHandler(handler)
	handler = wrapWithCORS(handler)
	return handler
}

// wrapWithAuth enforces bearer token auth on every route except the skip
// list, and stores the verified username in the request context.
func wrapWithAuth(next http.Handler, verifier tokenVerifier) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if authSkipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}
		username, err := verifier.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey, username)))
	})
}

// userFromContext returns the authenticated username, if any.
func userFromContext(ctx context.Context) string {
	if u, ok := ctx.Value(userContextKey).(string); ok {
		return u
	}
	return ""
}

// wrapWithAudit records every request outcome in the audit log.
func wrapWithAudit(next http.Handler, audit *auditLog) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		audit.add(auditEntry{
			Time:       time.Now().UTC(),
			User:       userFromContext(r.Context()),
			Path:       r.URL.Path,
			Method:     r.Method,
			Status:     rec.status,
			RemoteAddr: r.RemoteAddr,
			UserAgent:  r.UserAgent(),
		})
	})
}

// wrapWithCORS answers preflight requests and tags responses for the web
// front end.
func wrapWithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// maxRateLimitKeys bounds the per-caller limiter map on long-running
// servers; crossing it resets the map and callers start from fresh buckets.
const maxRateLimitKeys = 4096

type limiterPool struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
	maxKeys  int
}

func newLimiterPool(cfg config.RateLimitConfig) *limiterPool {
	return &limiterPool{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(cfg.RequestsPerSecond),
		burst:    cfg.Burst,
		maxKeys:  maxRateLimitKeys,
	}
}

func (p *limiterPool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	lim, ok := p.limiters[key]
	if !ok {
		if len(p.limiters) >= p.maxKeys {
			p.limiters = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(p.rps, p.burst)
		p.limiters[key] = lim
	}
	return lim
}

// wrapWithRateLimit applies a token-bucket limit per authenticated user,
// falling back to the client address for anonymous routes.
func wrapWithRateLimit(next http.Handler, cfg config.RateLimitConfig) http.Handler {
	if !cfg.Enabled {
		return next
	}

	pool := newLimiterPool(cfg)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := userFromContext(r.Context())
		if key == "" {
			if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
				key = host
			} else {
				key = r.RemoteAddr
			}
		}
		if !pool.get(key).Allow() {
			writeError(w, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
