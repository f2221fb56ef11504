package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/jeraldtan21/cts/internal/config"
	"github.com/jeraldtan21/cts/pkg/errors"
)

// SecurityMiddleware holds security-related middleware
type SecurityMiddleware struct {
	config  *config.SecurityConfig
	mu      sync.Mutex
	clients map[string]*rate.Limiter
}

// NewSecurityMiddleware creates a new security middleware with the given config
func NewSecurityMiddleware(cfg *config.SecurityConfig) *SecurityMiddleware {
	return &SecurityMiddleware{
		config:  cfg,
		clients: make(map[string]*rate.Limiter),
	}
}

// RateLimit applies rate limiting per client IP
func (sm *SecurityMiddleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !sm.limiterFor(sm.getClientIP(r)).Allow() {
			WriteError(w, errors.NewAppError(errors.ErrorCodeRateLimit, "rate limit exceeded"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (sm *SecurityMiddleware) limiterFor(clientIP string) *rate.Limiter {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	limiter, exists := sm.clients[clientIP]
	if !exists {
		limiter = rate.NewLimiter(rate.Limit(sm.config.RateLimitRPS), sm.config.RateLimitBurst)
		sm.clients[clientIP] = limiter
	}
	return limiter
}

// CORS handles Cross-Origin Resource Sharing
func (sm *SecurityMiddleware) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !sm.config.EnableCORS {
			next.ServeHTTP(w, r)
			return
		}

		if origin := r.Header.Get("Origin"); sm.isOriginAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, X-Request-ID")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequestTimeout bounds every request. Handlers see the deadline on the
// request context; a handler still running when it passes gets a 408.
func (sm *SecurityMiddleware) RequestTimeout(next http.Handler) http.Handler {
	body := string(errors.TimeoutError("request").ToJSON())
	return &timeoutHandler{
		handler: http.TimeoutHandler(next, sm.config.RequestTimeout, body),
	}
}

// timeoutHandler rewrites the 503 that http.TimeoutHandler emits on expiry
// into a JSON 408.
type timeoutHandler struct {
	handler http.Handler
}

func (t *timeoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	t.handler.ServeHTTP(&timeoutStatusWriter{ResponseWriter: w}, r)
}

type timeoutStatusWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (tw *timeoutStatusWriter) WriteHeader(code int) {
	if tw.wroteHeader {
		return
	}
	tw.wroteHeader = true
	if code == http.StatusServiceUnavailable {
		tw.Header().Set("Content-Type", "application/json")
		code = http.StatusRequestTimeout
	}
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *timeoutStatusWriter) Write(b []byte) (int, error) {
	if !tw.wroteHeader {
		tw.WriteHeader(http.StatusOK)
	}
	return tw.ResponseWriter.Write(b)
}

// TrustedProxy handles trusted proxy headers for real IP detection
func (sm *SecurityMiddleware) TrustedProxy(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), clientIPKey, sm.getClientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SecurityHeaders adds common security headers
func (sm *SecurityMiddleware) SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'self'")

		next.ServeHTTP(w, r)
	})
}

// getClientIP extracts the real client IP from the request
func (sm *SecurityMiddleware) getClientIP(r *http.Request) string {
	remoteAddr := r.RemoteAddr
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		remoteAddr = host
	}

	if sm.isTrustedProxy(remoteAddr) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	return remoteAddr
}

func (sm *SecurityMiddleware) isTrustedProxy(ip string) bool {
	for _, trustedIP := range sm.config.TrustedProxies {
		if ip == trustedIP {
			return true
		}
	}
	return false
}

func (sm *SecurityMiddleware) isOriginAllowed(origin string) bool {
	if origin == "" {
		return false
	}
	for _, allowedOrigin := range sm.config.AllowedOrigins {
		if allowedOrigin == "*" || allowedOrigin == origin {
			return true
		}
	}
	return false
}
