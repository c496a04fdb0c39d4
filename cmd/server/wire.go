package main

import (
	"context"
	"database/sql"
	"fmt"

	"dinefind/catalog"
	"dinefind/config"
	"dinefind/database"
	"dinefind/geo"
	"dinefind/location"
	"dinefind/logger"
	"dinefind/search"
)

// newSource builds the configured record source. The returned close
// function releases any database handle.
func newSource(ctx context.Context, cfg *config.Config, log logger.Logger) (catalog.Source, func(), error) {
	switch cfg.Source.Kind {
	case config.SourceSQL:
		db, err := database.Connect(ctx, cfg.Source.Driver, cfg.Source.URI, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return database.NewSource(db, cfg.Search.Limit, log), func() { db.Close() }, nil
	default:
		return newSearchClient(cfg, log), func() {}, nil
	}
}

func newSearchClient(cfg *config.Config, log logger.Logger) *search.Client {
	return search.NewClient(cfg.Search.BaseURL, cfg.Search.Query, cfg.Search.Limit,
		cfg.Search.UserAgent, cfg.Search.Timeout, search.WithLogger(log))
}

// openDatabase connects and makes sure the restaurants table exists.
func openDatabase(ctx context.Context, cfg *config.Config, log logger.Logger) (*sql.DB, error) {
	db, err := database.Connect(ctx, cfg.Source.Driver, cfg.Source.URI, log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// newProvider returns the configured location provider, or nil when the
// server has no way to locate visitors.
func newProvider(cfg config.LocationConfig) location.Provider {
	switch cfg.Provider {
	case config.ProviderStatic:
		return &location.StaticProvider{Coordinate: geo.Coordinate{Lat: cfg.Lat, Lon: cfg.Lon}}
	case config.ProviderIPAPI:
		return location.NewIPAPIProvider(cfg.IPAPIBaseURL)
	default:
		return nil
	}
}

func resolverOptions(cfg config.LocationConfig) location.Options {
	return location.Options{
		HighAccuracy: cfg.HighAccuracy,
		Timeout:      cfg.Timeout,
		MaximumAge:   cfg.MaximumAge,
	}
}

// newResolverFactory returns a constructor for per-visitor resolvers that
// share one provider.
func newResolverFactory(cfg config.LocationConfig) func() *location.Resolver {
	provider := newProvider(cfg)
	opts := resolverOptions(cfg)
	return func() *location.Resolver {
		return location.NewResolver(provider, location.WithOptions(opts))
	}
}
