package config

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// MustBindPFlag attempts to bind a specific key to a pflag (as used by cobra) and panics
// if the binding fails with a non-nil error.
func MustBindPFlag(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic("failed to bind pflag: " + err.Error())
	}
}

func MustBindEnv(v *viper.Viper, input ...string) {
	if err := v.BindEnv(input...); err != nil {
		panic("failed to bind env key: " + err.Error())
	}
}

// BindFlags registers every setting on flags and binds it to the equivalent
// viper key and DINEFIND_* environment variable.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	d := DefaultConfig()

	flags.String("http-addr", d.HTTP.Addr, "the host:port address to serve the HTTP server on")
	MustBindPFlag(v, "http.addr", flags.Lookup("http-addr"))
	MustBindEnv(v, "http.addr", "DINEFIND_HTTP_ADDR")

	flags.StringSlice("http-cors-allowed-origins", d.HTTP.CORSAllowedOrigins, "specifies the CORS allowed origins")
	MustBindPFlag(v, "http.corsAllowedOrigins", flags.Lookup("http-cors-allowed-origins"))
	MustBindEnv(v, "http.corsAllowedOrigins", "DINEFIND_HTTP_CORS_ALLOWED_ORIGINS")

	flags.Duration("http-shutdown-timeout", d.HTTP.ShutdownTimeout, "how long to wait for in-flight requests on shutdown")
	MustBindPFlag(v, "http.shutdownTimeout", flags.Lookup("http-shutdown-timeout"))
	MustBindEnv(v, "http.shutdownTimeout", "DINEFIND_HTTP_SHUTDOWN_TIMEOUT")

	flags.String("log-format", d.Log.Format, "the log format to output logs in ('text' or 'json')")
	MustBindPFlag(v, "log.format", flags.Lookup("log-format"))
	MustBindEnv(v, "log.format", "DINEFIND_LOG_FORMAT")

	flags.String("log-level", d.Log.Level, "the log level to use ('none', 'debug', 'info', 'warn', 'error', 'fatal')")
	MustBindPFlag(v, "log.level", flags.Lookup("log-level"))
	MustBindEnv(v, "log.level", "DINEFIND_LOG_LEVEL")

	flags.String("source-kind", d.Source.Kind, "where to load restaurants from ('search' or 'sql')")
	MustBindPFlag(v, "source.kind", flags.Lookup("source-kind"))
	MustBindEnv(v, "source.kind", "DINEFIND_SOURCE_KIND")

	flags.String("source-driver", d.Source.Driver, "the sql driver for the sql source ('postgres' or 'sqlite')")
	MustBindPFlag(v, "source.driver", flags.Lookup("source-driver"))
	MustBindEnv(v, "source.driver", "DINEFIND_SOURCE_DRIVER")

	flags.String("source-uri", d.Source.URI, "the connection uri for the sql source")
	MustBindPFlag(v, "source.uri", flags.Lookup("source-uri"))
	MustBindEnv(v, "source.uri", "DINEFIND_SOURCE_URI", "DATABASE_URL")

	flags.String("search-base-url", d.Search.BaseURL, "the base url of the geocoding search api")
	MustBindPFlag(v, "search.baseURL", flags.Lookup("search-base-url"))
	MustBindEnv(v, "search.baseURL", "DINEFIND_SEARCH_BASE_URL")

	flags.String("search-query", d.Search.Query, "the free-text query sent to the search api")
	MustBindPFlag(v, "search.query", flags.Lookup("search-query"))
	MustBindEnv(v, "search.query", "DINEFIND_SEARCH_QUERY")

	flags.Int("search-limit", d.Search.Limit, "the maximum number of restaurants fetched (1-100)")
	MustBindPFlag(v, "search.limit", flags.Lookup("search-limit"))
	MustBindEnv(v, "search.limit", "DINEFIND_SEARCH_LIMIT")

	flags.String("search-user-agent", d.Search.UserAgent, "the client identifier sent to the search api")
	MustBindPFlag(v, "search.userAgent", flags.Lookup("search-user-agent"))
	MustBindEnv(v, "search.userAgent", "DINEFIND_SEARCH_USER_AGENT")

	flags.Duration("search-timeout", d.Search.Timeout, "the timeout of the initial restaurant fetch")
	MustBindPFlag(v, "search.timeout", flags.Lookup("search-timeout"))
	MustBindEnv(v, "search.timeout", "DINEFIND_SEARCH_TIMEOUT")

	flags.String("places-base-url", d.Places.BaseURL, "the base url of the places detail api")
	MustBindPFlag(v, "places.baseURL", flags.Lookup("places-base-url"))
	MustBindEnv(v, "places.baseURL", "DINEFIND_PLACES_BASE_URL")

	flags.String("places-api-key", d.Places.APIKey, "the places detail api key; enrichment is disabled when empty")
	MustBindPFlag(v, "places.apiKey", flags.Lookup("places-api-key"))
	MustBindEnv(v, "places.apiKey", "DINEFIND_PLACES_API_KEY", "GOOGLE_MAPS_API_KEY")

	flags.Int("places-radius", d.Places.RadiusM, "the search radius in metres used to match a restaurant to a place")
	MustBindPFlag(v, "places.radiusM", flags.Lookup("places-radius"))
	MustBindEnv(v, "places.radiusM", "DINEFIND_PLACES_RADIUS")

	flags.Duration("places-timeout", d.Places.Timeout, "the timeout of a single places detail request")
	MustBindPFlag(v, "places.timeout", flags.Lookup("places-timeout"))
	MustBindEnv(v, "places.timeout", "DINEFIND_PLACES_TIMEOUT")

	flags.Int("worker-batch-size", d.Worker.BatchSize, "the number of restaurants enriched per worker tick")
	MustBindPFlag(v, "worker.batchSize", flags.Lookup("worker-batch-size"))
	MustBindEnv(v, "worker.batchSize", "DINEFIND_WORKER_BATCH_SIZE")

	flags.Int("worker-pool-size", d.Worker.PoolSize, "the number of concurrent enrichment requests")
	MustBindPFlag(v, "worker.poolSize", flags.Lookup("worker-pool-size"))
	MustBindEnv(v, "worker.poolSize", "DINEFIND_WORKER_POOL_SIZE")

	flags.Duration("worker-interval", d.Worker.Interval, "the delay between enrichment batches")
	MustBindPFlag(v, "worker.interval", flags.Lookup("worker-interval"))
	MustBindEnv(v, "worker.interval", "DINEFIND_WORKER_INTERVAL")

	flags.Duration("worker-detail-ttl", d.Worker.DetailTTL, "how long an enrichment result is kept")
	MustBindPFlag(v, "worker.detailTTL", flags.Lookup("worker-detail-ttl"))
	MustBindEnv(v, "worker.detailTTL", "DINEFIND_WORKER_DETAIL_TTL")

	flags.String("location-provider", d.Location.Provider, "the server-side location provider ('none', 'static' or 'ipapi')")
	MustBindPFlag(v, "location.provider", flags.Lookup("location-provider"))
	MustBindEnv(v, "location.provider", "DINEFIND_LOCATION_PROVIDER")

	flags.Float64("location-lat", d.Location.Lat, "the latitude reported by the static provider")
	MustBindPFlag(v, "location.lat", flags.Lookup("location-lat"))
	MustBindEnv(v, "location.lat", "DINEFIND_LOCATION_LAT")

	flags.Float64("location-lon", d.Location.Lon, "the longitude reported by the static provider")
	MustBindPFlag(v, "location.lon", flags.Lookup("location-lon"))
	MustBindEnv(v, "location.lon", "DINEFIND_LOCATION_LON")

	flags.String("location-ipapi-base-url", d.Location.IPAPIBaseURL, "the base url of the ip geolocation api")
	MustBindPFlag(v, "location.ipapiBaseURL", flags.Lookup("location-ipapi-base-url"))
	MustBindEnv(v, "location.ipapiBaseURL", "DINEFIND_LOCATION_IPAPI_BASE_URL")

	flags.Bool("location-high-accuracy", d.Location.HighAccuracy, "request a high accuracy fix")
	MustBindPFlag(v, "location.highAccuracy", flags.Lookup("location-high-accuracy"))
	MustBindEnv(v, "location.highAccuracy", "DINEFIND_LOCATION_HIGH_ACCURACY")

	flags.Duration("location-timeout", d.Location.Timeout, "how long a location request may take")
	MustBindPFlag(v, "location.timeout", flags.Lookup("location-timeout"))
	MustBindEnv(v, "location.timeout", "DINEFIND_LOCATION_TIMEOUT")

	flags.Duration("location-maximum-age", d.Location.MaximumAge, "how old a cached location fix may be")
	MustBindPFlag(v, "location.maximumAge", flags.Lookup("location-maximum-age"))
	MustBindEnv(v, "location.maximumAge", "DINEFIND_LOCATION_MAXIMUM_AGE")

	flags.Duration("session-ttl", d.Session.TTL, "how long an idle browsing session is kept")
	MustBindPFlag(v, "session.ttl", flags.Lookup("session-ttl"))
	MustBindEnv(v, "session.ttl", "DINEFIND_SESSION_TTL")

	flags.Int("session-max", d.Session.MaxSessions, "the maximum number of browsing sessions kept in memory")
	MustBindPFlag(v, "session.maxSessions", flags.Lookup("session-max"))
	MustBindEnv(v, "session.maxSessions", "DINEFIND_SESSION_MAX")

	flags.Int("page-size", d.PageSize, "the number of restaurants per page")
	MustBindPFlag(v, "pageSize", flags.Lookup("page-size"))
	MustBindEnv(v, "pageSize", "DINEFIND_PAGE_SIZE")
}
