package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dinefind/config"
	"dinefind/geo"
	"dinefind/location"
	"dinefind/logger"
)

const nominatimBody = `[
  {"display_name": "Pizza Inn, Alkapuri, Vadodara", "lat": "22.3100", "lon": "73.1900", "address": {"road": "RC Dutt Road", "city": "Vadodara"}},
  {"display_name": "Far Cafe, Manjalpur", "lat": "22.2551", "lon": "73.1900", "address": {"suburb": "Manjalpur"}},
  {"display_name": "Near Farsan House", "lat": "22.3010", "lon": "73.1900", "address": {}}
]`

func fakeNominatim(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(nominatimBody))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--log-level", "none"))
	require.NoError(t, root.Execute(), out.String())
	return out.String()
}

func TestBrowse(t *testing.T) {
	srv := fakeNominatim(t)

	out := execute(t, "browse", "--search-base-url", srv.URL, "--query", "far")
	require.Contains(t, out, `Found 2 restaurant(s) matching "far"`)
	require.Contains(t, out, "Far Cafe")
	require.Contains(t, out, "Near Farsan House")
	require.NotContains(t, out, "Pizza Inn")
	require.Contains(t, out, "Showing 1 to 2 of 2 restaurants (filtered from 3 total), page 1 of 1")
}

func TestBrowseByDistance(t *testing.T) {
	srv := fakeNominatim(t)

	out := execute(t, "browse", "--search-base-url", srv.URL, "--lat", "22.30", "--lon", "73.19", "--sort-distance")
	near := bytes.Index([]byte(out), []byte("Near Farsan House"))
	pizza := bytes.Index([]byte(out), []byte("Pizza Inn"))
	far := bytes.Index([]byte(out), []byte("Far Cafe"))
	require.True(t, near < pizza && pizza < far, out)
	require.Contains(t, out, "0.11 km")
}

func TestBrowseLocateUnsupported(t *testing.T) {
	srv := fakeNominatim(t)

	out := execute(t, "browse", "--search-base-url", srv.URL, "--locate", "--location-provider", "none")
	require.Contains(t, out, "Geolocation is not supported on this platform.")
	require.Contains(t, out, "Showing 1 to 3 of 3 restaurants")
}

func TestBrowseFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	out := execute(t, "browse", "--search-base-url", srv.URL)
	require.Contains(t, out, "Failed to fetch restaurants")
	require.Contains(t, out, "No restaurants found. Please try again later.")
}

func TestImportThenBrowseSQL(t *testing.T) {
	srv := fakeNominatim(t)
	dbPath := filepath.Join(t.TempDir(), "dinefind.db")

	execute(t, "import", "--search-base-url", srv.URL, "--source-driver", "sqlite", "--source-uri", dbPath)

	out := execute(t, "browse", "--source-kind", "sql", "--source-driver", "sqlite", "--source-uri", dbPath, "--page", "1")
	require.Contains(t, out, "Pizza Inn")
	require.Contains(t, out, "RC Dutt Road, Vadodara")
	require.Contains(t, out, "Showing 1 to 3 of 3 restaurants, page 1 of 1")
}

func TestNewProvider(t *testing.T) {
	require.Nil(t, newProvider(config.LocationConfig{Provider: config.ProviderNone}))

	p := newProvider(config.LocationConfig{Provider: config.ProviderStatic, Lat: 1, Lon: 2})
	require.Equal(t, &location.StaticProvider{Coordinate: geo.Coordinate{Lat: 1, Lon: 2}}, p)

	require.IsType(t, &location.IPAPIProvider{}, newProvider(config.LocationConfig{Provider: config.ProviderIPAPI}))
}

func TestServeShutsDownOnCancel(t *testing.T) {
	srv := fakeNominatim(t)

	cfg := config.DefaultConfig()
	cfg.HTTP.Addr = "127.0.0.1:0"
	cfg.Search.BaseURL = srv.URL
	cfg.Location.Provider = config.ProviderNone

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, cfg, logger.NewNoopLogger())
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}
}
