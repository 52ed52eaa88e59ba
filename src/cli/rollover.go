package cli

import (
	"fmt"

	store "tally-server/src/db/sql"
	"tally-server/src/jobs"
	"tally-server/src/services"

	"github.com/spf13/cobra"
)

func newRolloverCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rollover",
		Short: "Create this month's budget for every user with a recurring budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			budgets := services.NewBudgetService(store.NewStore(pool), a.logger)
			job, err := jobs.NewRolloverJob(budgets, "@monthly", a.logger)
			if err != nil {
				return err
			}
			created, err := job.RunOnce(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "created %d budget(s)\n", created)
			return err
		},
	}
}
