// Package config holds the service configuration and its defaults. Values
// come from, in increasing precedence: defaults, dinefind.yaml, a .env file,
// DINEFIND_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	SourceSearch = "search"
	SourceSQL    = "sql"

	ProviderNone   = "none"
	ProviderStatic = "static"
	ProviderIPAPI  = "ipapi"

	maxSearchLimit = 100
)

type HTTPConfig struct {
	Addr               string
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
}

type LogConfig struct {
	// Format is either 'text' or 'json'.
	Format string
	// Level is one of 'none', 'debug', 'info', 'warn', 'error' or 'fatal'.
	Level string
}

// SourceConfig selects where the restaurant set is loaded from.
type SourceConfig struct {
	Kind string
	// Driver is 'postgres' or 'sqlite', used when Kind is 'sql'.
	Driver string
	URI    string
}

// SearchConfig configures the upstream geocoding search endpoint.
type SearchConfig struct {
	BaseURL   string
	Query     string
	Limit     int
	UserAgent string
	Timeout   time.Duration
}

// PlacesConfig configures the optional rating enrichment. Enrichment is
// disabled when APIKey is empty.
type PlacesConfig struct {
	BaseURL string
	APIKey  string
	RadiusM int
	Timeout time.Duration
}

type WorkerConfig struct {
	BatchSize int
	PoolSize  int
	Interval  time.Duration
	DetailTTL time.Duration
}

// LocationConfig configures the server-side location resolver.
type LocationConfig struct {
	Provider     string
	Lat          float64
	Lon          float64
	IPAPIBaseURL string
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration
}

type SessionConfig struct {
	TTL         time.Duration
	MaxSessions int
}

type Config struct {
	HTTP     HTTPConfig
	Log      LogConfig
	Source   SourceConfig
	Search   SearchConfig
	Places   PlacesConfig
	Worker   WorkerConfig
	Location LocationConfig
	Session  SessionConfig
	PageSize int
}

// DefaultConfig returns the configuration used when nothing else is set.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:               ":3003",
			CORSAllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			ShutdownTimeout:    10 * time.Second,
		},
		Log: LogConfig{
			Format: "text",
			Level:  "info",
		},
		Source: SourceConfig{
			Kind:   SourceSearch,
			Driver: "postgres",
		},
		Search: SearchConfig{
			BaseURL:   "https://nominatim.openstreetmap.org",
			Query:     "restaurant in Vadodara",
			Limit:     maxSearchLimit,
			UserAgent: "RestaurantFinderApp/1.0",
			Timeout:   15 * time.Second,
		},
		Places: PlacesConfig{
			BaseURL: "https://maps.googleapis.com/maps/api/place",
			RadiusM: 100,
			Timeout: 10 * time.Second,
		},
		Worker: WorkerConfig{
			BatchSize: 20,
			PoolSize:  4,
			Interval:  2 * time.Second,
			DetailTTL: time.Hour,
		},
		Location: LocationConfig{
			Provider:     ProviderIPAPI,
			IPAPIBaseURL: "http://ip-api.com",
			HighAccuracy: true,
			Timeout:      10 * time.Second,
			MaximumAge:   5 * time.Minute,
		},
		Session: SessionConfig{
			TTL:         30 * time.Minute,
			MaxSessions: 10000,
		},
		PageSize: 12,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.PageSize <= 0 {
		return errors.New("page size must be positive")
	}

	switch c.Source.Kind {
	case SourceSearch:
		if c.Search.BaseURL == "" {
			return errors.New("search base url is required")
		}
		if c.Search.Limit < 1 || c.Search.Limit > maxSearchLimit {
			return fmt.Errorf("search limit must be between 1 and %d, got %d", maxSearchLimit, c.Search.Limit)
		}
		if c.Search.UserAgent == "" {
			return errors.New("search user agent is required by the upstream usage policy")
		}
	case SourceSQL:
		if c.Source.Driver != "postgres" && c.Source.Driver != "sqlite" {
			return fmt.Errorf("unsupported source driver %q", c.Source.Driver)
		}
		if c.Source.URI == "" {
			return errors.New("source uri is required for the sql source")
		}
	default:
		return fmt.Errorf("unknown source kind %q", c.Source.Kind)
	}

	switch c.Location.Provider {
	case ProviderNone, ProviderStatic, ProviderIPAPI:
	default:
		return fmt.Errorf("unknown location provider %q", c.Location.Provider)
	}
	if c.Location.Timeout <= 0 {
		return errors.New("location timeout must be positive")
	}
	if c.Location.MaximumAge < 0 {
		return errors.New("location maximum age must not be negative")
	}

	if c.Worker.PoolSize <= 0 || c.Worker.BatchSize <= 0 {
		return errors.New("worker pool size and batch size must be positive")
	}
	if c.Worker.Interval <= 0 {
		return errors.New("worker interval must be positive")
	}

	if c.Session.TTL <= 0 || c.Session.MaxSessions <= 0 {
		return errors.New("session ttl and max sessions must be positive")
	}

	return nil
}
