package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dinefind/geo"
)

func TestRestaurantCoordinate(t *testing.T) {
	c, ok := Restaurant{Lat: "22.3072", Lon: "73.1812"}.Coordinate()
	require.True(t, ok)
	require.Equal(t, geo.Coordinate{Lat: 22.3072, Lon: 73.1812}, c)

	_, ok = Restaurant{Lat: "north", Lon: "73.1812"}.Coordinate()
	require.False(t, ok)

	_, ok = Restaurant{}.Coordinate()
	require.False(t, ok)
}

func TestShortName(t *testing.T) {
	assert.Equal(t, "Pizza Hut", Restaurant{DisplayName: "Pizza Hut, Alkapuri, Vadodara"}.ShortName())
	assert.Equal(t, "Dosa Corner", Restaurant{DisplayName: "Dosa Corner"}.ShortName())
	assert.Equal(t, ", Vadodara", Restaurant{DisplayName: ", Vadodara"}.ShortName())
}

func TestGuessCuisine(t *testing.T) {
	tests := map[string]string{
		"Pizza Hut":             CuisineItalian,
		"La Italian Kitchen":    CuisineItalian,
		"Coffee Culture":        CuisineCafe,
		"Mocha Cafe":            CuisineCafe,
		"Jagdish Farsan":        CuisineFarsan,
		"Mandap Gujarati Thali": CuisineGujarati,
		"South Express":         CuisineSouthIndian,
		"Dosa Corner":           CuisineSouthIndian,
		"Punjabi Dhaba":         CuisinePunjabi,
		"Chinese Wok":           CuisineChinese,
		"Barbeque Nation":       CuisineDefault,
		// first rule wins
		"Pizza Cafe": CuisineItalian,
	}

	for name, want := range tests {
		assert.Equal(t, want, GuessCuisine(name), name)
	}
}

func TestImageFor(t *testing.T) {
	n := len(RestaurantImages)
	assert.Equal(t, RestaurantImages[0], ImageFor(0))
	assert.Equal(t, RestaurantImages[1], ImageFor(n+1))
	assert.Equal(t, RestaurantImages[2], ImageFor(-2))
}
