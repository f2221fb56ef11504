package middleware

import (
	"log"
	"net/http"
	"time"
)

// LoggingMiddleware provides request logging with security context
type LoggingMiddleware struct {
	logger *log.Logger
}

func NewLoggingMiddleware(logger *log.Logger) *LoggingMiddleware {
	if logger == nil {
		logger = log.Default()
	}
	return &LoggingMiddleware{logger: logger}
}

// LogRequests logs every request and flags security-relevant statuses.
func (lm *LoggingMiddleware) LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := ClientIP(r.Context())
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		lm.logger.Printf("[%s] %s %s %d %v - IP: %s, User-Agent: %s",
			r.Method,
			r.RequestURI,
			r.Proto,
			wrapped.statusCode,
			time.Since(start),
			clientIP,
			r.UserAgent(),
		)

		switch wrapped.statusCode {
		case http.StatusUnauthorized:
			lm.logger.Printf("SECURITY: Unauthenticated request to %s from IP: %s", r.URL.Path, clientIP)
		case http.StatusForbidden:
			lm.logger.Printf("SECURITY: Forbidden request to %s from IP: %s", r.URL.Path, clientIP)
		case http.StatusTooManyRequests:
			lm.logger.Printf("SECURITY: Rate limit exceeded for IP: %s", clientIP)
		case http.StatusRequestTimeout:
			lm.logger.Printf("SECURITY: Request timeout for IP: %s", clientIP)
		}
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}
