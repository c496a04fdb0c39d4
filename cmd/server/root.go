package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dinefind/config"
	"dinefind/logger"
)

// newRootCommand enables all children commands to read settings from flags,
// DINEFIND_* environment variables, a .env file or dinefind.yaml.
func newRootCommand() *cobra.Command {
	v := config.NewViper()

	root := &cobra.Command{
		Use:   "dinefind",
		Short: "Restaurant discovery with text search, distance sort and pagination",
		Long: `dinefind fetches a list of restaurants once from a geocoding search endpoint
(or a SQL table) and lets visitors filter it by text, sort it by distance from
their current location and page through it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadDotEnv()
		},
	}

	// flags are bound once on the root so every command shares one viper
	config.BindFlags(v, root.PersistentFlags())

	root.AddCommand(newServeCommand(v))
	root.AddCommand(newBrowseCommand(v))
	root.AddCommand(newImportCommand(v))
	return root
}

// loadConfig reads the configuration and builds the logger it asks for.
func loadConfig(v *viper.Viper) (*config.Config, logger.Logger, error) {
	cfg, err := config.Read(v)
	if err != nil {
		return nil, nil, err
	}

	log, err := logger.NewLogger(cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, log, nil
}
