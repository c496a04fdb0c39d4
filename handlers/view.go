package handlers

import (
	"fmt"
	"strings"

	"dinefind/catalog"
	"dinefind/geo"
	"dinefind/models"
	"dinefind/pipeline"
	"dinefind/session"
)

const (
	loadingMessage = "Loading amazing restaurants..."
	emptyMessage   = "No restaurants found. Please try again later."
)

// Card is one rendered restaurant.
type Card struct {
	Index       int            `json:"index"`
	Name        string         `json:"name"`
	DisplayName string         `json:"display_name"`
	Address     models.Address `json:"address"`
	Lat         string         `json:"lat"`
	Lon         string         `json:"lon"`
	Cuisine     string         `json:"cuisine"`
	Image       string         `json:"image"`
	Distance    *float64       `json:"distance,omitempty"`
	Detail      *models.Detail `json:"detail,omitempty"`
}

// PageResponse is the rendered page, shared by the HTML and JSON surfaces.
type PageResponse struct {
	Status  string `json:"status"`
	Session string `json:"session,omitempty"`

	Query             string          `json:"query"`
	SortByDistance    bool            `json:"sort_by_distance"`
	Location          *geo.Coordinate `json:"location,omitempty"`
	CanSortByDistance bool            `json:"can_sort_by_distance"`
	Locating          bool            `json:"locating"`
	LocationMessage   string          `json:"location_message,omitempty"`

	Cards      []Card `json:"cards"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
	Filtered   int    `json:"filtered"`
	Total      int    `json:"total"`
	From       int    `json:"from"`
	To         int    `json:"to"`
	Window     []int  `json:"window"`
	PrevPage   int    `json:"prev_page,omitempty"`
	NextPage   int    `json:"next_page,omitempty"`

	SearchSummary string `json:"search_summary,omitempty"`
	Summary       string `json:"summary,omitempty"`
	Message       string `json:"message,omitempty"`
}

func buildPage(snap catalog.Snapshot, res pipeline.Result, sess session.Snapshot, enricher Enricher) PageResponse {
	v := sess.View
	p := PageResponse{
		Status:            snap.Status.String(),
		Session:           sess.ID,
		Query:             v.Query,
		SortByDistance:    v.SortByDistance,
		Location:          v.Location,
		CanSortByDistance: v.Location != nil,
		Locating:          sess.Locating,
		LocationMessage:   sess.LocationMessage,
		Cards:             make([]Card, 0, len(res.Items)),
		Page:              res.Page,
		PageSize:          res.PageSize,
		TotalPages:        res.TotalPages,
		Filtered:          res.Filtered,
		Total:             res.Total,
		From:              res.From,
		To:                res.To,
		Window:            res.Window,
	}
	if res.Page > 1 {
		p.PrevPage = res.Page - 1
	}
	if res.Page < res.TotalPages {
		p.NextPage = res.Page + 1
	}

	var coords []geo.Coordinate
	for _, item := range res.Items {
		r := item.Restaurant
		card := Card{
			Index:       item.Index,
			Name:        r.ShortName(),
			DisplayName: r.DisplayName,
			Address:     r.Address,
			Lat:         r.Lat,
			Lon:         r.Lon,
			Cuisine:     models.GuessCuisine(r.DisplayName),
			Image:       models.ImageFor(item.Index),
			Distance:    item.Distance,
		}
		if c, ok := r.Coordinate(); ok {
			coords = append(coords, c)
			if enricher != nil {
				if d, ok := enricher.Lookup(c); ok {
					card.Detail = &d
				}
			}
		}
		p.Cards = append(p.Cards, card)
	}
	if enricher != nil && len(coords) > 0 {
		enricher.Request(coords...)
	}

	query := strings.TrimSpace(v.Query)
	switch {
	case snap.Status == catalog.StatusLoading:
		p.Message = loadingMessage
		return p
	case query != "" && res.Filtered > 0:
		p.SearchSummary = fmt.Sprintf("Found %d %s matching %q", res.Filtered, plural(res.Filtered, "restaurant"), v.Query)
	case query != "":
		p.SearchSummary = fmt.Sprintf("No restaurants found matching %q. Try a different search term.", v.Query)
	case res.Filtered == 0:
		p.Message = emptyMessage
	}

	if res.Filtered > 0 {
		p.Summary = fmt.Sprintf("Showing %d to %d of %d restaurants", res.From, res.To, res.Filtered)
		if query != "" {
			p.Summary += fmt.Sprintf(" (filtered from %d total)", res.Total)
		}
	}

	return p
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
