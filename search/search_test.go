package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dinefind/models"
)

const sampleResponse = `[
  {"place_id": 1, "display_name": "Pizza Hut, RC Dutt Road, Alkapuri, Vadodara", "lat": "22.3103", "lon": "73.1689",
   "address": {"road": "RC Dutt Road", "suburb": "Alkapuri", "city": "Vadodara", "country": "India"}},
  {"place_id": 2, "display_name": "Dosa Corner, Vadodara", "lat": "22.2994", "lon": "73.2081", "address": {}}
]`

func TestRestaurants(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "restaurant in Vadodara", 100, "RestaurantFinderApp/1.0", time.Second)
	restaurants, err := c.Restaurants(context.Background())
	require.NoError(t, err)

	require.Equal(t, "/search", got.URL.Path)
	q := got.URL.Query()
	require.Equal(t, "restaurant in Vadodara", q.Get("q"))
	require.Equal(t, "json", q.Get("format"))
	require.Equal(t, "1", q.Get("addressdetails"))
	require.Equal(t, "100", q.Get("limit"))
	require.Equal(t, "RestaurantFinderApp/1.0", got.Header.Get("User-Agent"))

	require.Equal(t, []models.Restaurant{
		{
			DisplayName: "Pizza Hut, RC Dutt Road, Alkapuri, Vadodara",
			Lat:         "22.3103",
			Lon:         "73.1689",
			Address:     models.Address{Road: "RC Dutt Road", Suburb: "Alkapuri", City: "Vadodara"},
		},
		{
			DisplayName: "Dosa Corner, Vadodara",
			Lat:         "22.2994",
			Lon:         "73.2081",
		},
	}, restaurants)
}

func TestRestaurantsErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"bad status", http.StatusServiceUnavailable, "", "status 503"},
		{"bad json", http.StatusOK, "{", "decode"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(test.status)
				w.Write([]byte(test.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, "q", 50, "ua", time.Second).Restaurants(context.Background())
			require.ErrorContains(t, err, test.wantErr)
			require.Equal(t, 1, calls, "fetch failures are not retried")
		})
	}
}

func TestRestaurantsValidatesRequest(t *testing.T) {
	_, err := NewClient("http://unused", "q", 0, "ua", time.Second).Restaurants(context.Background())
	require.ErrorContains(t, err, "out of range")

	_, err = NewClient("http://unused", "q", 101, "ua", time.Second).Restaurants(context.Background())
	require.ErrorContains(t, err, "out of range")

	_, err = NewClient("http://unused", "q", 10, "", time.Second).Restaurants(context.Background())
	require.ErrorContains(t, err, "client identifier")
}

func TestRestaurantsHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(srv.URL, "q", 10, "ua", time.Second).Restaurants(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
