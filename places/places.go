// Package places looks up optional rating details for a restaurant through
// the Google Places nearby search API.
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"dinefind/geo"
	"dinefind/logger"
	"dinefind/models"
)

var (
	// ErrNoCredential is returned when no API key is configured.
	ErrNoCredential = errors.New("places: api key not configured")
	// ErrNoResults is returned when nothing was found near the coordinate.
	ErrNoResults = errors.New("places: no results")
)

type Client struct {
	BaseURL string
	APIKey  string
	RadiusM int

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

// NewClient returns a client whose transport retries transient failures.
func NewClient(baseURL, apiKey string, radiusM int, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		RadiusM: radiusM,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: &RetryableRoundTripper{},
		},
		logger: logger.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type nearbyResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		PlaceID          string  `json:"place_id"`
		Rating           float64 `json:"rating"`
		UserRatingsTotal int     `json:"user_ratings_total"`
	} `json:"results"`
}

// Detail returns the rating details of the first restaurant near c.
func (c *Client) Detail(ctx context.Context, coord geo.Coordinate) (models.Detail, error) {
	if c.APIKey == "" {
		return models.Detail{}, ErrNoCredential
	}

	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", coord.Lat, coord.Lon))
	params.Set("radius", strconv.Itoa(c.RadiusM))
	params.Set("type", "restaurant")
	params.Set("key", c.APIKey)
	apiURL := c.BaseURL + "/nearbysearch/json?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return models.Detail{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// the url carries the key
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return models.Detail{}, fmt.Errorf("places request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Detail{}, fmt.Errorf("places returned status %d", resp.StatusCode)
	}

	var result nearbyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return models.Detail{}, fmt.Errorf("places decode: %w", err)
	}

	switch result.Status {
	case "OK":
	case "ZERO_RESULTS":
		return models.Detail{}, ErrNoResults
	default:
		return models.Detail{}, fmt.Errorf("places API error: %s %s", result.Status, result.ErrorMessage)
	}
	if len(result.Results) == 0 {
		return models.Detail{}, ErrNoResults
	}

	first := result.Results[0]
	c.logger.Debug("places detail found",
		zap.Stringer("coordinate", coord),
		zap.String("place_id", first.PlaceID))

	return models.Detail{
		Rating:           first.Rating,
		UserRatingsTotal: first.UserRatingsTotal,
		PlaceID:          first.PlaceID,
	}, nil
}
