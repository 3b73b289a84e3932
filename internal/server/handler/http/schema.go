package http

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/atinyakov/erfms/internal/models"
)

// SchemaService defines the introspection operations required by the SchemaHandler.
type SchemaService interface {
	DescribeAll() []models.CollectionDescriptor
	OpenAPI() *openapi3.T
}

// SchemaHandler serves schema discovery.
type SchemaHandler struct {
	SchemaService SchemaService
}

// Schema handles GET /schema.
func (h *SchemaHandler) Schema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"collections": h.SchemaService.DescribeAll()})
}

// OpenAPI handles GET /openapi.json.
func (h *SchemaHandler) OpenAPI(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.SchemaService.OpenAPI())
}
