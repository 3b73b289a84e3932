package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/erfms/internal/models"
	"github.com/atinyakov/erfms/internal/service"
	"github.com/atinyakov/erfms/internal/validation"
)

// RecordService defines the gateway operations required by the RecordHandler.
type RecordService interface {
	// ListRecords returns up to limit records of collection with canonical ids.
	ListRecords(ctx context.Context, collection string, limit int) ([]models.Record, error)
	// CreateRecord validates and stores payload, returning the new identifier.
	CreateRecord(ctx context.Context, collection string, payload map[string]any) (models.CreateResult, error)
}

// RecordHandler serves GET and POST /api/{route}.
type RecordHandler struct {
	RecordService RecordService
	Logger        *zap.Logger

	routes map[string]string
}

// NewRecordHandler creates a RecordHandler exposing service.Routes.
func NewRecordHandler(svc RecordService, logger *zap.Logger) *RecordHandler {
	routes := make(map[string]string, len(service.Routes))
	for _, r := range service.Routes {
		routes[r.Name] = r.Collection
	}
	return &RecordHandler{RecordService: svc, Logger: logger, routes: routes}
}

func (h *RecordHandler) collection(w http.ResponseWriter, r *http.Request) (string, bool) {
	c, ok := h.routes[chi.URLParam(r, "route")]
	if !ok {
		notFound(w, r)
	}
	return c, ok
}

// List handles GET /api/{route}?limit=N.
func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	collection, ok := h.collection(w, r)
	if !ok {
		return
	}

	limit := service.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, ErrorBody{
				Code:    CodeValidation,
				Message: "limit must be an integer",
				Field:   "limit",
				Reason:  string(validation.ReasonInvalidFormat),
			})
			return
		}
		if n <= 0 {
			writeError(w, http.StatusBadRequest, ErrorBody{
				Code:    CodeValidation,
				Message: "limit must be greater than 0",
				Field:   "limit",
				Reason:  string(validation.ReasonConstraintViolation),
			})
			return
		}
		limit = n
	}

	recs, err := h.RecordService.ListRecords(r.Context(), collection, limit)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// Create handles POST /api/{route} with a JSON object body.
func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	collection, ok := h.collection(w, r)
	if !ok {
		return
	}

	var payload map[string]any
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, ErrorBody{
			Code:    CodeValidation,
			Message: "request body must be a JSON object",
		})
		return
	}

	res, err := h.RecordService.CreateRecord(r.Context(), collection, payload)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}
