package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"tally-server/src/api"
	"tally-server/src/db"
	store "tally-server/src/db/sql"
	"tally-server/src/geocode"
	"tally-server/src/jobs"
	"tally-server/src/logging"
	"tally-server/src/services"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(a *app) *cobra.Command {
	var skipMigrations bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, skipMigrations)
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply pending migrations on startup")
	return cmd
}

func (a *app) serve(ctx context.Context, skipMigrations bool) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	logger := a.logger

	pool, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	if !skipMigrations {
		if err := db.RunMigrations(pool); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	geo, err := geocode.New(a.cfg.GoogleMapsAPIKey, a.cfg.GeocodeCacheTTL, logger)
	if err != nil {
		return fmt.Errorf("create geocoder: %w", err)
	}
	defer geo.Close()

	if a.cfg.RedisAddr != "" {
		shared, err := db.NewRedisCache(ctx, a.cfg.RedisAddr, "tally:geocode:")
		if err != nil {
			logger.Warn("redis unavailable, geocode cache stays in process", logging.FieldError, err)
		} else {
			defer shared.Close()
			geo.UseSharedCache(shared)
			logger.Info("geocode results shared through redis", "addr", a.cfg.RedisAddr)
		}
	}

	st := store.NewStore(pool)
	budgets := services.NewBudgetService(st, logger)

	if a.cfg.RolloverSchedule != "" {
		job, err := jobs.NewRolloverJob(budgets, a.cfg.RolloverSchedule, logger)
		if err != nil {
			return err
		}
		job.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := job.Stop(stopCtx); err != nil {
				logger.Warn("rollover job did not stop in time", logging.FieldError, err)
			}
		}()
	}

	router := api.NewRouter(api.Deps{
		Budgets:        budgets,
		Expenses:       services.NewExpenseService(st, st, logger),
		FoodReviews:    services.NewFoodReviewService(st, logger),
		FoodToTry:      services.NewFoodToTryService(st, logger),
		Geocoder:       geo,
		GeocodeCache:   geo,
		Logger:         logger,
		JWTSecret:      a.cfg.JWTSecret,
		JWTAudience:    a.cfg.JWTAudience,
		AllowedOrigins: a.cfg.AllowedOrigins,
		DemoMode:       a.cfg.DemoMode,
	})

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API server running", "port", a.cfg.Port, "demo_mode", a.cfg.DemoMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
