package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// NewViper returns a viper instance that reads dinefind.yaml from the usual
// config paths.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("dinefind")
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	for _, path := range []string{"/etc/dinefind", "$HOME/.dinefind", "."} {
		v.AddConfigPath(path)
	}
	return v
}

// LoadDotEnv loads the given .env files into the process environment. Missing
// files are ignored; variables already set win over the file.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Read resolves the configuration from v and validates it.
func Read(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	v.SetTypeByDefaultValue(true)
	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// PORT is what most hosting platforms hand out.
	if port := os.Getenv("PORT"); port != "" && !v.IsSet("http.addr") {
		cfg.HTTP.Addr = ":" + port
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
