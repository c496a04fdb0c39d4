package models

import (
	"strings"

	"dinefind/geo"
)

// Restaurant is one result of the upstream search API. Latitude and longitude
// arrive as numeric strings and are parsed on demand. The source provides no
// stable key, so identity is the record's position in the fetched batch.
type Restaurant struct {
	DisplayName string  `json:"display_name"`
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Address     Address `json:"address"`
}

// Address holds the optional structured address parts. An empty string means
// the upstream did not send the field.
type Address struct {
	Road   string `json:"road,omitempty"`
	Suburb string `json:"suburb,omitempty"`
	City   string `json:"city,omitempty"`
}

// Coordinate parses the record's position. ok is false when either field is
// not a finite number.
func (r Restaurant) Coordinate() (geo.Coordinate, bool) {
	c, err := geo.ParseCoordinate(r.Lat, r.Lon)
	if err != nil {
		return geo.Coordinate{}, false
	}
	return c, true
}

// ShortName is the display name up to its first comma.
func (r Restaurant) ShortName() string {
	name, _, _ := strings.Cut(r.DisplayName, ",")
	name = strings.TrimSpace(name)
	if name == "" {
		return r.DisplayName
	}
	return name
}

// Detail is the optional rating enrichment for a restaurant.
type Detail struct {
	Rating           float64 `json:"rating"`
	UserRatingsTotal int     `json:"user_ratings_total"`
	PlaceID          string  `json:"place_id"`
}
