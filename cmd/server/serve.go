package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"dinefind/catalog"
	"dinefind/config"
	"dinefind/handlers"
	"dinefind/logger"
	"dinefind/places"
	"dinefind/session"
	"dinefind/worker"
)

func newServeCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(v)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
}

// serve runs the server until ctx is cancelled, then drains in-flight
// requests for up to the shutdown timeout.
func serve(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	source, closeSource, err := newSource(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSource()

	cat := catalog.New(source, log)
	cat.Start(ctx)

	sessions := session.NewStore(cfg.Session.TTL, int64(cfg.Session.MaxSessions), newResolverFactory(cfg.Location))
	defer sessions.Stop()

	app := &handlers.App{
		Catalog:  cat,
		Sessions: sessions,
		PageSize: cfg.PageSize,
		Logger:   log,
	}

	if cfg.Places.APIKey == "" {
		log.Warn("places API key not set, skipping rating enrichment")
	} else {
		client := places.NewClient(cfg.Places.BaseURL, cfg.Places.APIKey, cfg.Places.RadiusM,
			cfg.Places.Timeout, places.WithLogger(log))
		enricher := worker.New(client, worker.Options{
			BatchSize: cfg.Worker.BatchSize,
			PoolSize:  cfg.Worker.PoolSize,
			Interval:  cfg.Worker.Interval,
			DetailTTL: cfg.Worker.DetailTTL,
		}, log)
		defer enricher.Stop()
		go enricher.Run(ctx)
		app.Enricher = enricher
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.HTTP.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           c.Handler(handlers.Routes(app)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server failed", zap.Error(err))
			return err
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shut down the server", zap.Error(err))
		return err
	}
	log.Info("server exited")
	return nil
}
