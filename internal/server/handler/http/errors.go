package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/erfms/internal/schema"
	"github.com/atinyakov/erfms/internal/service"
	"github.com/atinyakov/erfms/internal/validation"
)

// Error codes of the error envelope.
const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeNotFound    = "NOT_FOUND"
	CodeUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternal    = "INTERNAL_ERROR"
)

// ErrorBody is the payload of the error envelope {"error": {...}}.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// ErrorResponse is the envelope written for every non-2xx response.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, body ErrorBody) {
	writeJSON(w, status, ErrorResponse{Error: body})
}

// writeServiceError maps a gateway error to its status and envelope.
// Store failures are logged since their detail is not returned to callers.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusUnprocessableEntity, ErrorBody{
			Code:    CodeValidation,
			Message: verr.Message,
			Field:   verr.Field,
			Reason:  string(verr.Reason),
		})
	case errors.Is(err, schema.ErrUnknownCollection):
		writeError(w, http.StatusNotFound, ErrorBody{Code: CodeNotFound, Message: err.Error()})
	case errors.Is(err, service.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, ErrorBody{
			Code:    CodeUnavailable,
			Message: "Database not available",
		})
	default:
		logger.Error("store operation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, ErrorBody{
			Code:    CodeInternal,
			Message: "internal server error",
		})
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, ErrorBody{
		Code:    CodeNotFound,
		Message: "no route for " + r.Method + " " + r.URL.Path,
	})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, ErrorBody{
		Code:    CodeNotFound,
		Message: "method " + r.Method + " not allowed on " + r.URL.Path,
	})
}
