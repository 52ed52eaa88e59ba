package cli

import (
	"context"
	"fmt"
	"time"

	"tally-server/src/config"
	"tally-server/src/db"
	"tally-server/src/logging"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

// app carries what every subcommand shares once the root command has run.
type app struct {
	cfg    config.Config
	logger *logging.Logger
}

func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "tally",
		Short:         "Budgets, expenses and food reviews API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.cfg = config.Load()
			a.logger = logging.New(logging.Config{Level: a.cfg.LogLevel, JSON: a.cfg.LogJSON})
			logging.SetDefault(a.logger)
			return nil
		},
	}
	root.AddCommand(
		newServeCommand(a),
		newMigrateCommand(a),
		newSeedCommand(a),
		newRolloverCommand(a),
	)
	return root
}

// connect opens the pool for commands that only need the database URL.
func (a *app) connect(ctx context.Context) (*pgxpool.Pool, error) {
	if a.cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := db.Connect(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return pool, nil
}
