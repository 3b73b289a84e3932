package http

import (
	"context"
	"net/http"
	"time"
)

// collectionPreview bounds the collection names reported by Test.
const collectionPreview = 10

// StoreStatus defines the store queries used by the diagnostic endpoint.
type StoreStatus interface {
	Available() bool
	CollectionNames(ctx context.Context, limit int) ([]string, error)
}

// HealthHandler serves the liveness and diagnostic endpoints.
type HealthHandler struct {
	Version string
	Driver  string
	Store   StoreStatus
	// DatabaseURLSet and DatabaseNameSet report whether the store
	// coordinates were configured.
	DatabaseURLSet  bool
	DatabaseNameSet bool
}

// Root handles GET /.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "ERFMS Backend running",
		"version": h.Version,
	})
}

// Hello handles GET /api/hello.
func (h *HealthHandler) Hello(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Hello from the ERFMS backend API!",
	})
}

// Diagnostics is the body of GET /test.
type Diagnostics struct {
	Backend          string   `json:"backend"`
	Driver           string   `json:"driver"`
	Database         string   `json:"database"`
	ConnectionStatus string   `json:"connection_status"`
	DatabaseURL      string   `json:"database_url"`
	DatabaseName     string   `json:"database_name"`
	Collections      []string `json:"collections"`
}

// Test handles GET /test. It always answers 200 and reports the store state
// in the body.
func (h *HealthHandler) Test(w http.ResponseWriter, r *http.Request) {
	d := Diagnostics{
		Backend:          "running",
		Driver:           h.Driver,
		Database:         "not available",
		ConnectionStatus: "not connected",
		DatabaseURL:      setOrNot(h.DatabaseURLSet),
		DatabaseName:     setOrNot(h.DatabaseNameSet),
		Collections:      []string{},
	}

	if h.Store != nil && h.Store.Available() {
		d.ConnectionStatus = "connected"
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		names, err := h.Store.CollectionNames(ctx, collectionPreview)
		if err != nil {
			d.Database = "connected but error: " + truncate(err.Error(), 50)
		} else {
			d.Database = "connected and working"
			d.Collections = names
		}
	}

	writeJSON(w, http.StatusOK, d)
}

func setOrNot(ok bool) string {
	if ok {
		return "set"
	}
	return "not set"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
