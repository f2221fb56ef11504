package middleware

import (
	"net/http"

	"github.com/jeraldtan21/cts/pkg/errors"
)

// WriteError renders err in the API's error envelope.
func WriteError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.GetHTTPStatus())
	w.Write(err.ToJSON())
}
