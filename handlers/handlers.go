package handlers

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dinefind/catalog"
	"dinefind/geo"
	"dinefind/logger"
	"dinefind/models"
	"dinefind/pipeline"
	"dinefind/session"
)

// Enricher supplies optional place details without blocking.
type Enricher interface {
	Request(coords ...geo.Coordinate)
	Lookup(c geo.Coordinate) (models.Detail, bool)
}

// App carries the dependencies shared by all handlers.
type App struct {
	Catalog  *catalog.Catalog
	Sessions *session.Store
	// Enricher may be nil, in which case cards carry no details.
	Enricher Enricher
	PageSize int
	Logger   logger.Logger
}

func (a *App) pageSize() int {
	if a.PageSize <= 0 {
		return pipeline.DefaultPageSize
	}
	return a.PageSize
}

// render runs the pipeline for sess over the current record set.
func (a *App) render(sess *session.Session) PageResponse {
	snap := a.Catalog.Snapshot()
	res, s := sess.Render(snap.Records, a.pageSize())
	return buildPage(snap, res, s, a.Enricher)
}

// Routes registers every endpoint on a new mux.
func Routes(app *App) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", PageHandler(app))
	mux.HandleFunc("POST /locate", LocateFormHandler(app))

	mux.HandleFunc("GET /api/restaurants", SearchHandler(app))
	mux.HandleFunc("GET /api/cities", CitiesHandler(app))
	mux.HandleFunc("GET /api/cuisines", CuisinesHandler(app))

	mux.HandleFunc("POST /api/sessions", CreateSessionHandler(app))
	mux.HandleFunc("GET /api/sessions/{id}", GetSessionHandler(app))
	mux.HandleFunc("PATCH /api/sessions/{id}", UpdateSessionHandler(app))
	mux.HandleFunc("DELETE /api/sessions/{id}", DeleteSessionHandler(app))
	mux.HandleFunc("POST /api/sessions/{id}/location", LocateHandler(app))
	mux.HandleFunc("PUT /api/sessions/{id}/location", ReportLocationHandler(app))

	mux.HandleFunc("GET /healthz", HealthHandler(app))
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// clientIP returns the address the request came from, preferring the first
// X-Forwarded-For hop.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// HealthHandler reports liveness and the catalog state.
func HealthHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := app.Catalog.Snapshot()
		body := map[string]any{
			"status":   "ok",
			"catalog":  snap.Status.String(),
			"records":  len(snap.Records),
			"sessions": app.Sessions.Len(),
		}
		if snap.Err != nil {
			body["error"] = snap.Err.Error()
		}
		writeJSON(w, http.StatusOK, body)
	}
}
