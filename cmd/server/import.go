package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"dinefind/database"
)

// newImportCommand copies the search endpoint's results into the SQL table
// so the service can later run with --source-kind sql.
func newImportCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Fetch restaurants from the search endpoint and store them in the SQL source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(v)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			records, err := newSearchClient(cfg, log).Restaurants(ctx)
			if err != nil {
				return err
			}

			db, err := openDatabase(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Store(ctx, db, cfg.Source.Driver, records); err != nil {
				return err
			}
			log.Info("imported restaurants", zap.Int("count", len(records)), zap.String("driver", cfg.Source.Driver))
			return nil
		},
	}
}
