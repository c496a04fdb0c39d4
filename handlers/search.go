package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"dinefind/geo"
	"dinefind/pipeline"
	"dinefind/session"
)

const (
	SortDistance = "distance"
	SortSource   = "source"
)

// SearchParams are the view inputs carried in a query string. Nil fields
// were absent.
type SearchParams struct {
	Query          *string
	Page           *int
	SortByDistance *bool
	Location       *geo.Coordinate
}

// ParseSearchParams extracts view inputs from the URL query. Unparsable
// values are ignored; a page below 1 is read as 1.
func ParseSearchParams(query url.Values) SearchParams {
	var p SearchParams

	if query.Has("q") {
		q := query.Get("q")
		p.Query = &q
	} else if query.Has("name") {
		q := query.Get("name")
		p.Query = &q
	}

	if s := query.Get("page"); s != "" {
		if page, err := strconv.Atoi(s); err == nil {
			page = max(page, 1)
			p.Page = &page
		}
	}

	switch query.Get("sort") {
	case SortDistance:
		on := true
		p.SortByDistance = &on
	case SortSource:
		off := false
		p.SortByDistance = &off
	}

	latStr, lonStr := query.Get("lat"), query.Get("lon")
	if latStr != "" && lonStr != "" {
		if c, err := geo.ParseCoordinate(latStr, lonStr); err == nil {
			p.Location = &c
		}
	}

	return p
}

// Update converts the parameters to a session update.
func (p SearchParams) Update() session.Update {
	return session.Update{
		Query:          p.Query,
		SortByDistance: p.SortByDistance,
		Page:           p.Page,
	}
}

// View converts the parameters to a standalone view.
func (p SearchParams) View() pipeline.View {
	v := pipeline.View{Page: 1, Location: p.Location}
	if p.Query != nil {
		v.Query = *p.Query
	}
	if p.Page != nil {
		v.Page = *p.Page
	}
	if p.SortByDistance != nil {
		v.SortByDistance = *p.SortByDistance
	}
	return v
}

// SearchHandler renders one page without a session; all inputs come from
// the query string (q, page, sort, lat, lon).
func SearchHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := ParseSearchParams(r.URL.Query())
		v := p.View()

		snap := app.Catalog.Snapshot()
		res := pipeline.Compute(snap.Records, v, app.pageSize())
		v.Page = res.Page

		writeJSON(w, http.StatusOK, buildPage(snap, res, session.Snapshot{View: v}, app.Enricher))
	}
}
