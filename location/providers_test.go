package location

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"dinefind/geo"
)

func TestIPAPIProvider(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","lat":22.3,"lon":73.2}`))
	}))
	defer srv.Close()

	p := NewIPAPIProvider(srv.URL + "/")
	fix, err := p.CurrentPosition(WithClientIP(context.Background(), "203.0.113.7"), DefaultOptions)
	require.NoError(t, err)
	require.Equal(t, geo.Coordinate{Lat: 22.3, Lon: 73.2}, fix.Coordinate)
	require.False(t, fix.Timestamp.IsZero())
	require.Equal(t, "/json/203.0.113.7", gotPath)
}

func TestIPAPIProviderFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		reason Reason
	}{
		{"rate limited", http.StatusTooManyRequests, ``, ReasonDenied},
		{"forbidden", http.StatusForbidden, ``, ReasonDenied},
		{"server error", http.StatusBadGateway, ``, ReasonUnavailable},
		{"fail status", http.StatusOK, `{"status":"fail","message":"reserved range"}`, ReasonUnavailable},
		{"garbage", http.StatusOK, `not json`, ReasonUnknown},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(test.status)
				w.Write([]byte(test.body))
			}))
			defer srv.Close()

			_, err := NewResolver(NewIPAPIProvider(srv.URL)).Resolve(context.Background())
			require.Error(t, err)
			require.Equal(t, test.reason, ReasonOf(err))
		})
	}
}

func TestIPAPIProviderPrivateAddress(t *testing.T) {
	p := NewIPAPIProvider("http://127.0.0.1:1")
	_, err := p.CurrentPosition(WithClientIP(context.Background(), "192.168.1.4"), DefaultOptions)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestStaticProvider(t *testing.T) {
	r := NewResolver(&StaticProvider{Coordinate: vadodara})
	c, err := r.Resolve(context.Background())
	require.NoError(t, err)
	require.Equal(t, vadodara, c)
}
