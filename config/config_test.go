package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 12, cfg.PageSize)
	require.Equal(t, 10*time.Second, cfg.Location.Timeout)
	require.Equal(t, 5*time.Minute, cfg.Location.MaximumAge)
	require.Equal(t, 100, cfg.Search.Limit)
	require.Empty(t, cfg.Places.APIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"page size", func(c *Config) { c.PageSize = 0 }, "page size"},
		{"limit too high", func(c *Config) { c.Search.Limit = 101 }, "search limit"},
		{"limit zero", func(c *Config) { c.Search.Limit = 0 }, "search limit"},
		{"no user agent", func(c *Config) { c.Search.UserAgent = "" }, "user agent"},
		{"unknown source", func(c *Config) { c.Source.Kind = "csv" }, "unknown source kind"},
		{"sql without uri", func(c *Config) { c.Source.Kind = SourceSQL }, "source uri"},
		{"sql bad driver", func(c *Config) {
			c.Source.Kind = SourceSQL
			c.Source.Driver = "mysql"
			c.Source.URI = "x"
		}, "unsupported source driver"},
		{"provider", func(c *Config) { c.Location.Provider = "gps" }, "location provider"},
		{"location timeout", func(c *Config) { c.Location.Timeout = 0 }, "location timeout"},
		{"maximum age", func(c *Config) { c.Location.MaximumAge = -time.Second }, "maximum age"},
		{"worker", func(c *Config) { c.Worker.PoolSize = 0 }, "worker"},
		{"session", func(c *Config) { c.Session.TTL = 0 }, "session"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := DefaultConfig()
			test.mutate(cfg)
			require.ErrorContains(t, cfg.Validate(), test.wantErr)
		})
	}

	cfg := DefaultConfig()
	cfg.Source = SourceConfig{Kind: SourceSQL, Driver: "sqlite", URI: "file::memory:"}
	require.NoError(t, cfg.Validate())
}

func newTestViper(t *testing.T, args ...string) *Config {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)

	v := NewViper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(v, flags)
	require.NoError(t, flags.Parse(args))

	cfg, err := Read(v)
	require.NoError(t, err)
	return cfg
}

func TestReadFlagsAndEnv(t *testing.T) {
	t.Setenv("DINEFIND_PLACES_API_KEY", "secret")
	t.Setenv("DINEFIND_SEARCH_LIMIT", "50")

	cfg := newTestViper(t, "--page-size=6", "--location-provider=static", "--location-lat=22.3", "--location-lon=73.19")

	require.Equal(t, 6, cfg.PageSize)
	require.Equal(t, "secret", cfg.Places.APIKey)
	require.Equal(t, 50, cfg.Search.Limit)
	require.Equal(t, ProviderStatic, cfg.Location.Provider)
	require.InDelta(t, 22.3, cfg.Location.Lat, 1e-9)
	require.Equal(t, "restaurant in Vadodara", cfg.Search.Query)
}

func TestReadPortFallback(t *testing.T) {
	t.Setenv("PORT", "8080")
	cfg := newTestViper(t)
	require.Equal(t, ":8080", cfg.HTTP.Addr)

	cfg = newTestViper(t, "--http-addr=127.0.0.1:9000")
	require.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
}

func TestReadConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dinefind.yaml"), []byte("search:\n  query: restaurant in Surat\npageSize: 9\n"), 0o600))

	v := NewViper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(v, flags)
	require.NoError(t, flags.Parse(nil))

	cfg, err := Read(v)
	require.NoError(t, err)
	require.Equal(t, "restaurant in Surat", cfg.Search.Query)
	require.Equal(t, 9, cfg.PageSize)
}

func TestReadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)

	v := NewViper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(v, flags)
	require.NoError(t, flags.Parse([]string{"--search-limit=500"}))

	_, err := Read(v)
	require.ErrorContains(t, err, "invalid config")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("DINEFIND_TEST_DOTENV=from-file\n"), 0o600))
	t.Setenv("DINEFIND_TEST_DOTENV", "")
	os.Unsetenv("DINEFIND_TEST_DOTENV")

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	require.Equal(t, "from-file", os.Getenv("DINEFIND_TEST_DOTENV"))
}
