package location

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"dinefind/geo"
)

type clientIPKey struct{}

// WithClientIP attaches the requesting client's IP address to ctx for
// providers that locate by address.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIP returns the IP attached with WithClientIP.
func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

// StaticProvider always reports the same coordinate. It is meant for kiosks
// and for running the service at a fixed site.
type StaticProvider struct {
	Coordinate geo.Coordinate
}

var _ Provider = (*StaticProvider)(nil)

func (p *StaticProvider) Name() string {
	return "static"
}

func (p *StaticProvider) CurrentPosition(ctx context.Context, _ Options) (Fix, error) {
	if err := ctx.Err(); err != nil {
		return Fix{}, err
	}
	return Fix{Coordinate: p.Coordinate, Timestamp: time.Now()}, nil
}

// IPAPIProvider locates the client by IP address through the ip-api.com
// JSON endpoint. It only ever yields a coarse, city level fix.
type IPAPIProvider struct {
	BaseURL string
	Client  *http.Client
}

var _ Provider = (*IPAPIProvider)(nil)

// ipapiResponse is the subset of the ip-api.com response we read.
type ipapiResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func NewIPAPIProvider(baseURL string) *IPAPIProvider {
	return &IPAPIProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{},
	}
}

func (p *IPAPIProvider) Name() string {
	return "ipapi"
}

func (p *IPAPIProvider) CurrentPosition(ctx context.Context, _ Options) (Fix, error) {
	ip := ClientIP(ctx)
	if parsed := net.ParseIP(ip); parsed != nil && (parsed.IsLoopback() || parsed.IsPrivate()) {
		// ip-api answers "private range" for these; skip the round trip
		return Fix{}, &Error{Reason: ReasonUnavailable, Err: fmt.Errorf("no public address for %s", ip)}
	}

	apiURL := fmt.Sprintf("%s/json/%s?fields=status,message,lat,lon", p.BaseURL, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return Fix{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return Fix{}, fmt.Errorf("ip-api request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		return Fix{}, &Error{Reason: ReasonDenied, Err: fmt.Errorf("ip-api returned status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return Fix{}, &Error{Reason: ReasonUnavailable, Err: fmt.Errorf("ip-api returned status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Fix{}, err
	}

	var result ipapiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return Fix{}, fmt.Errorf("ip-api decode: %w", err)
	}
	if result.Status != "success" {
		return Fix{}, &Error{Reason: ReasonUnavailable, Err: fmt.Errorf("ip-api: %s", result.Message)}
	}

	return Fix{
		Coordinate: geo.Coordinate{Lat: result.Lat, Lon: result.Lon},
		Timestamp:  time.Now(),
	}, nil
}
