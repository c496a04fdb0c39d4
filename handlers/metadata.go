package handlers

import (
	"net/http"
	"sort"
	"strings"

	"dinefind/models"
)

// Facet is a distinct value and how many restaurants carry it.
type Facet struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CitiesHandler lists the cities present in the record set, for filter
// suggestions.
func CitiesHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, facets(app.Catalog.Snapshot().Records, func(r models.Restaurant) string {
			return strings.TrimSpace(r.Address.City)
		}))
	}
}

// CuisinesHandler lists the guessed cuisines of the record set.
func CuisinesHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, facets(app.Catalog.Snapshot().Records, func(r models.Restaurant) string {
			return models.GuessCuisine(r.DisplayName)
		}))
	}
}

// facets counts the non-empty values of key, most frequent first and then
// by name.
func facets(records []models.Restaurant, key func(models.Restaurant) string) []Facet {
	counts := map[string]int{}
	for _, r := range records {
		if k := key(r); k != "" {
			counts[k]++
		}
	}

	out := make([]Facet, 0, len(counts))
	for name, n := range counts {
		out = append(out, Facet{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
