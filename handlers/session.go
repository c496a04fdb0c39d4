package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"dinefind/geo"
	"dinefind/location"
	"dinefind/session"
)

type updateRequest struct {
	Query          *string `json:"query"`
	SortByDistance *bool   `json:"sort_by_distance"`
	Page           *int    `json:"page"`
}

// locationReport is what a browser sends after its own geolocation call:
// either a coordinate or the name of the failure.
type locationReport struct {
	Lat   *float64 `json:"lat"`
	Lon   *float64 `json:"lon"`
	Error string   `json:"error"`
}

func lookupSession(app *App, w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := app.Sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return sess, true
}

func CreateSessionHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := app.Sessions.Create()
		writeJSON(w, http.StatusCreated, app.render(sess))
	}
}

func GetSessionHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := lookupSession(app, w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, app.render(sess))
	}
}

// UpdateSessionHandler applies a partial change of query, sort toggle or
// page and returns the re-rendered page.
func UpdateSessionHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := lookupSession(app, w, r)
		if !ok {
			return
		}

		var req updateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		sess.Update(session.Update{
			Query:          req.Query,
			SortByDistance: req.SortByDistance,
			Page:           req.Page,
		})
		writeJSON(w, http.StatusOK, app.render(sess))
	}
}

func DeleteSessionHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		app.Sessions.Delete(r.PathValue("id"))
		w.WriteHeader(http.StatusNoContent)
	}
}

// LocateHandler resolves the visitor's location on the server. A failed
// resolution is not an HTTP error: the page carries the location message.
func LocateHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := lookupSession(app, w, r)
		if !ok {
			return
		}

		ctx := location.WithClientIP(r.Context(), clientIP(r))
		_, err := sess.Locate(ctx)
		switch {
		case errors.Is(err, session.ErrLocating):
			writeJSON(w, http.StatusConflict, app.render(sess))
			return
		case r.Context().Err() != nil:
			// client went away, nothing to answer
			return
		case err != nil:
			app.Logger.InfoWithContext(r.Context(), "location resolution failed",
				zap.String("session", sess.ID),
				zap.String("reason", location.ReasonOf(err).String()),
				zap.Error(err))
		}
		writeJSON(w, http.StatusOK, app.render(sess))
	}
}

// ReportLocationHandler accepts the outcome of a browser-side geolocation
// request.
func ReportLocationHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := lookupSession(app, w, r)
		if !ok {
			return
		}

		var req locationReport
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		switch {
		case req.Error != "":
			sess.ReportLocationError(location.ParseReason(req.Error))
		case req.Lat != nil && req.Lon != nil:
			sess.ReportLocation(geo.Coordinate{Lat: *req.Lat, Lon: *req.Lon})
		default:
			writeError(w, http.StatusBadRequest, "either lat and lon or error is required")
			return
		}
		writeJSON(w, http.StatusOK, app.render(sess))
	}
}
