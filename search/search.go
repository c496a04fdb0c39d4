// Package search fetches restaurants from a Nominatim-compatible geocoding
// search endpoint.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"dinefind/logger"
	"dinefind/models"
)

// MaxLimit is the largest batch requested from the upstream.
const MaxLimit = 100

// Client talks to the search endpoint. The whole result set is fetched in
// one request; failures are not retried.
type Client struct {
	BaseURL   string
	Query     string
	Limit     int
	UserAgent string

	httpClient *http.Client
	logger     logger.Logger
}

type Option func(c *Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient returns a client for baseURL, e.g. https://nominatim.openstreetmap.org.
func NewClient(baseURL, query string, limit int, userAgent string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Query:      query,
		Limit:      limit,
		UserAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// nominatimResult is one element of the /search response with
// addressdetails=1. Only the fields we read are declared.
type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Address     struct {
		Road   string `json:"road"`
		Suburb string `json:"suburb"`
		City   string `json:"city"`
	} `json:"address"`
}

// Name identifies the source in logs.
func (c *Client) Name() string {
	return "search"
}

// Restaurants fetches the restaurant set in upstream order.
func (c *Client) Restaurants(ctx context.Context) ([]models.Restaurant, error) {
	if c.Limit < 1 || c.Limit > MaxLimit {
		return nil, fmt.Errorf("search limit %d out of range 1..%d", c.Limit, MaxLimit)
	}
	if c.UserAgent == "" {
		return nil, errors.New("search: a client identifier is required")
	}

	params := url.Values{}
	params.Set("q", c.Query)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", strconv.Itoa(c.Limit))
	apiURL := c.BaseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("search decode: %w", err)
	}

	restaurants := make([]models.Restaurant, 0, len(results))
	for _, r := range results {
		restaurants = append(restaurants, models.Restaurant{
			DisplayName: r.DisplayName,
			Lat:         r.Lat,
			Lon:         r.Lon,
			Address: models.Address{
				Road:   r.Address.Road,
				Suburb: r.Address.Suburb,
				City:   r.Address.City,
			},
		})
	}

	c.logger.Debug("search fetched restaurants",
		zap.String("query", c.Query),
		zap.Int("count", len(restaurants)))
	return restaurants, nil
}
