package handlers

import (
	_ "embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"dinefind/location"
	"dinefind/session"
)

const sessionCookie = "dinefind_session"

//go:embed templates/index.html
var indexHTML string

var pageTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"pageURL": func(n int) string {
		return "/?" + url.Values{"page": {fmt.Sprint(n)}}.Encode()
	},
	"km": func(d *float64) string {
		return fmt.Sprintf("%.2f km", *d)
	},
}).Parse(indexHTML))

// sessionFromCookie returns the visitor's session, starting a new one and
// setting the cookie when there is none.
func sessionFromCookie(app *App, w http.ResponseWriter, r *http.Request) *session.Session {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}

	sess, created := app.Sessions.GetOrCreate(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}

// PageHandler renders the HTML page. The q, page and sort query parameters
// change the visitor's view before rendering.
func PageHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFromCookie(app, w, r)
		sess.Update(ParseSearchParams(r.URL.Query()).Update())

		data := app.render(sess)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := pageTemplate.Execute(w, data); err != nil {
			app.Logger.ErrorWithContext(r.Context(), "error rendering page", zap.Error(err))
			http.Error(w, "Error rendering template", http.StatusInternalServerError)
		}
	}
}

// LocateFormHandler is the script-free locate button: it resolves on the
// server and redirects back to the page.
func LocateFormHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFromCookie(app, w, r)

		ctx := location.WithClientIP(r.Context(), clientIP(r))
		if _, err := sess.Locate(ctx); err != nil {
			app.Logger.InfoWithContext(r.Context(), "location resolution failed",
				zap.String("session", sess.ID),
				zap.Error(err))
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
