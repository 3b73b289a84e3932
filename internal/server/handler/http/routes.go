// Package http provides HTTP routing and handlers for the ERFMS record API.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/atinyakov/erfms/internal/middleware"
)

// NewRouter constructs the HTTP handler serving the record API.
//
// Routes:
//
//	GET  /               → health.Root
//	GET  /test           → health.Test
//	GET  /api/hello      → health.Hello
//	GET  /schema         → schemas.Schema
//	GET  /openapi.json   → schemas.OpenAPI
//	GET  /metrics        → prometheus exposition
//	GET  /api/{route}    → records.List
//	POST /api/{route}    → records.Create
//
// Middleware chain (applied in order):
//  1. RequestID, RealIP (request correlation)
//  2. WithRequestLogging (one log entry per request)
//  3. Recoverer (panics become 500)
//  4. Metrics (request counters and durations)
//  5. CORS (permissive cross-origin policy, 204 on preflight)
func NewRouter(
	records *RecordHandler,
	schemas *SchemaHandler,
	health *HealthHandler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS)

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Get("/", health.Root)
	r.Get("/test", health.Test)
	r.Get("/schema", schemas.Schema)
	r.Get("/openapi.json", schemas.OpenAPI)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/hello", health.Hello)
		r.Get("/{route}", records.List)
		r.Post("/{route}", records.Create)
	})

	return r
}
