package cli

import (
	"context"
	"fmt"
	"time"

	store "tally-server/src/db/sql"
	"tally-server/src/models"
	"tally-server/src/services"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var seedCuisines = []string{"Japanese", "Thai", "Italian", "Korean", "Mexican", "Indian", "Vietnamese"}

type budgetUpserter interface {
	Upsert(ctx context.Context, key models.BudgetKey, patch models.BudgetPatch) (*models.Budget, bool, error)
}

type expenseCreator interface {
	Create(ctx context.Context, e *models.Expense) (*models.Expense, error)
}

type foodToTryCreator interface {
	Create(ctx context.Context, userID uuid.UUID, in models.FoodToTryInput) (*models.FoodToTry, error)
}

// seeder fills a user's account with plausible demo data.
type seeder struct {
	budgets  budgetUpserter
	expenses expenseCreator
	wishlist foodToTryCreator
	fake     *gofakeit.Faker
}

type seedStats struct {
	Budgets   int
	Expenses  int
	FoodToTry int
}

func newSeedCommand(a *app) *cobra.Command {
	var (
		userFlag    string
		months      int
		perMonth    int
		wishlistLen int
		seed        int64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate demo budgets, expenses and food to try for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(userFlag)
			if err != nil {
				return fmt.Errorf("--user must be a uuid: %w", err)
			}
			pool, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			st := store.NewStore(pool)
			s := &seeder{
				budgets:  services.NewBudgetService(st, a.logger),
				expenses: services.NewExpenseService(st, st, a.logger),
				wishlist: services.NewFoodToTryService(st, a.logger),
				fake:     gofakeit.New(seed),
			}
			stats, err := s.run(cmd.Context(), userID, months, perMonth, wishlistLen, time.Now().UTC())
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d budget(s), %d expense(s), %d food to try\n",
				stats.Budgets, stats.Expenses, stats.FoodToTry)
			return err
		},
	}
	cmd.Flags().StringVar(&userFlag, "user", "", "user id to seed (required)")
	cmd.Flags().IntVar(&months, "months", 6, "number of months of budgets and expenses, ending with the current one")
	cmd.Flags().IntVar(&perMonth, "expenses", 15, "expenses per month")
	cmd.Flags().IntVar(&wishlistLen, "food-to-try", 10, "food to try items")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed, 0 for a random one")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// run writes months of budgets ending at now's month. The newest one is the
// recurring template.
func (s *seeder) run(ctx context.Context, userID uuid.UUID, months, perMonth, wishlistLen int, now time.Time) (seedStats, error) {
	var stats seedStats
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	for i := months - 1; i >= 0; i-- {
		start := first.AddDate(0, -i, 0)
		key := models.BudgetKey{UserID: userID, Month: int(start.Month()), Year: start.Year()}
		if _, _, err := s.budgets.Upsert(ctx, key, s.budgetPatch(i == 0)); err != nil {
			return stats, fmt.Errorf("seed budget %d/%d: %w", key.Month, key.Year, err)
		}
		stats.Budgets++

		end := start.AddDate(0, 1, -1)
		if end.After(now) {
			end = now
		}
		for j := 0; j < perMonth; j++ {
			if _, err := s.expenses.Create(ctx, s.expense(userID, start, end)); err != nil {
				return stats, fmt.Errorf("seed expense: %w", err)
			}
			stats.Expenses++
		}
	}

	for i := 0; i < wishlistLen; i++ {
		if _, err := s.wishlist.Create(ctx, userID, s.foodToTry()); err != nil {
			return stats, fmt.Errorf("seed food to try: %w", err)
		}
		stats.FoodToTry++
	}
	return stats, nil
}

func (s *seeder) budgetPatch(recurring bool) models.BudgetPatch {
	income := decimal.NewFromInt(int64(s.fake.Number(30, 90) * 100))
	expenses := decimal.NewFromInt(int64(s.fake.Number(40, 50)))
	investments := decimal.NewFromInt(int64(s.fake.Number(10, 20)))
	savings := decimal.NewFromInt(int64(s.fake.Number(10, 20)))
	other := decimal.NewFromInt(100).Sub(expenses).Sub(investments).Sub(savings)
	return models.BudgetPatch{
		MonthlyIncome:         &income,
		ExpensesPercentage:    &expenses,
		InvestmentsPercentage: &investments,
		SavingsPercentage:     &savings,
		OtherPercentage:       &other,
		IsRecurring:           &recurring,
	}
}

func (s *seeder) expense(userID uuid.UUID, from, to time.Time) *models.Expense {
	day := s.fake.DateRange(from, to)
	category := models.DefaultCategories[s.fake.Number(0, len(models.DefaultCategories)-1)].Name
	description := s.fake.Company()
	if category == models.CategoryFoodAndDining {
		description = s.fake.Lunch()
	}
	return &models.Expense{
		UserID:      userID,
		Amount:      decimal.NewFromFloat(s.fake.Price(3, 250)).Round(2),
		Description: description,
		Category:    category,
		Date:        models.NewDate(day.Year(), day.Month(), day.Day()),
	}
}

func (s *seeder) foodToTry() models.FoodToTryInput {
	name := s.fake.Company()
	cuisine := s.fake.RandomString(seedCuisines)
	location := s.fake.City()
	description := s.fake.Dinner()
	return models.FoodToTryInput{
		Name:        &name,
		Cuisine:     &cuisine,
		Location:    &location,
		Description: &description,
	}
}
