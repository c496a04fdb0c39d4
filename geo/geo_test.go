package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceKnownPairs(t *testing.T) {
	tests := []struct {
		name string
		a, b Coordinate
		want float64
	}{
		{
			name: "same point",
			a:    Coordinate{Lat: 22.30, Lon: 73.19},
			b:    Coordinate{Lat: 22.30, Lon: 73.19},
			want: 0,
		},
		{
			name: "one degree of latitude",
			a:    Coordinate{Lat: 0, Lon: 0},
			b:    Coordinate{Lat: 1, Lon: 0},
			want: 111.19,
		},
		{
			name: "london to paris",
			a:    Coordinate{Lat: 51.5074, Lon: -0.1278},
			b:    Coordinate{Lat: 48.8566, Lon: 2.3522},
			want: 343.56,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.InDelta(t, test.want, Distance(test.a, test.b), 0.01)
		})
	}
}

func TestDistanceSymmetricAndRounded(t *testing.T) {
	points := []Coordinate{
		{Lat: 22.30, Lon: 73.19},
		{Lat: 22.3072, Lon: 73.1812},
		{Lat: -33.8688, Lon: 151.2093},
		{Lat: 40.7128, Lon: -74.006},
		{Lat: 89.9, Lon: 179.9},
	}

	for _, a := range points {
		require.Zero(t, Distance(a, a))
		for _, b := range points {
			d := Distance(a, b)
			assert.InDelta(t, d, Distance(b, a), 0.01)
			assert.Equal(t, d, math.Round(d*100)/100)
		}
	}
}

func TestParseCoordinate(t *testing.T) {
	c, err := ParseCoordinate("22.3072", " 73.1812 ")
	require.NoError(t, err)
	require.Equal(t, Coordinate{Lat: 22.3072, Lon: 73.1812}, c)

	_, err = ParseCoordinate("abc", "73.1")
	require.Error(t, err)

	_, err = ParseCoordinate("22.3", "")
	require.Error(t, err)

	_, err = ParseCoordinate("NaN", "1")
	require.Error(t, err)

	_, err = ParseCoordinate("1", "+Inf")
	require.Error(t, err)
}
