package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/jeraldtan21/cts/pkg/errors"
)

// ErrorHandler provides centralized error handling functionality for handlers
type ErrorHandler struct {
	Logger *log.Logger
}

// NewErrorHandler creates a new ErrorHandler instance
func NewErrorHandler(logger *log.Logger) *ErrorHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &ErrorHandler{Logger: logger}
}

// SendError renders err. Errors that are not AppErrors are reported as
// internal errors; server-side failures are logged with their cause.
func (e *ErrorHandler) SendError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.InternalError("internal server error", err)
	}
	if requestID := r.Header.Get("X-Request-ID"); requestID != "" {
		appErr.WithRequestID(requestID)
	}

	status := appErr.GetHTTPStatus()
	if status >= http.StatusInternalServerError {
		e.Logger.Printf("%s %s failed: %v", r.Method, r.URL.Path, appErr)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(appErr.ToJSON())
}

// SendSuccessResponse sends a structured success response
func (e *ErrorHandler) SendSuccessResponse(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	e.SendJSONResponse(w, statusCode, SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// SendJSONResponse sends a generic JSON response
func (e *ErrorHandler) SendJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		e.Logger.Printf("Failed to encode JSON response: %v", err)
	}
}

// ParseAndValidateUUID parses an id path variable. It writes a 400 and
// returns false when the id is not a UUID.
func (e *ErrorHandler) ParseAndValidateUUID(w http.ResponseWriter, r *http.Request, idStr string) (uuid.UUID, bool) {
	if idStr == "" {
		e.SendError(w, r, errors.BadRequestError("ID is required"))
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		e.SendError(w, r, errors.BadRequestError("invalid UUID format").WithDetail("id", idStr))
		return uuid.Nil, false
	}
	return id, true
}
