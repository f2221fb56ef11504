package handler

import (
	"context"
	"log"
	"net/http"
	"time"
)

const healthCheckTimeout = 3 * time.Second

// Pinger reports whether the database answers.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthReporter reports whether an outbound dependency is reachable.
type HealthReporter interface {
	IsHealthy(ctx context.Context) bool
}

// HealthHandler reports service and dependency status.
type HealthHandler struct {
	DB       Pinger
	Notifier HealthReporter
	Version  string
	Logger   *log.Logger

	ErrorHandler *ErrorHandler
}

// NewHealthHandler creates a HealthHandler. A nil notifier is skipped.
func NewHealthHandler(db Pinger, notifier HealthReporter, version string, logger *log.Logger) *HealthHandler {
	if logger == nil {
		logger = log.Default()
	}

	return &HealthHandler{
		DB:           db,
		Notifier:     notifier,
		Version:      version,
		Logger:       logger,
		ErrorHandler: NewErrorHandler(logger),
	}
}

// HealthHandler always answers 200; a failing dependency turns the status
// to "degraded".
func (h *HealthHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	checks := map[string]string{"database": "up"}
	status := "healthy"

	if err := h.DB.PingContext(ctx); err != nil {
		h.Logger.Printf("Health check: database unreachable: %v", err)
		checks["database"] = "down"
		status = "degraded"
	}
	if h.Notifier != nil {
		checks["notifications"] = "up"
		if !h.Notifier.IsHealthy(ctx) {
			checks["notifications"] = "down"
			status = "degraded"
		}
	}

	message := "Service is healthy"
	if status != "healthy" {
		message = "Service is degraded"
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, message, map[string]interface{}{
		"status":    status,
		"service":   "cts",
		"version":   h.Version,
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	})
}
