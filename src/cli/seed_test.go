package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	"tally-server/src/models"
	"tally-server/src/services"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type recordingSeedTarget struct {
	keys       []models.BudgetKey
	patches    []models.BudgetPatch
	expenses   []*models.Expense
	wishlist   []models.FoodToTryInput
	expenseErr error
}

func (r *recordingSeedTarget) Upsert(_ context.Context, key models.BudgetKey, patch models.BudgetPatch) (*models.Budget, bool, error) {
	r.keys = append(r.keys, key)
	r.patches = append(r.patches, patch)
	return &models.Budget{UserID: key.UserID, Month: key.Month, Year: key.Year}, true, nil
}

func (r *recordingSeedTarget) Create(_ context.Context, e *models.Expense) (*models.Expense, error) {
	if r.expenseErr != nil {
		return nil, r.expenseErr
	}
	r.expenses = append(r.expenses, e)
	return e, nil
}

type wishlistRecorder struct{ r *recordingSeedTarget }

func (w wishlistRecorder) Create(_ context.Context, userID uuid.UUID, in models.FoodToTryInput) (*models.FoodToTry, error) {
	w.r.wishlist = append(w.r.wishlist, in)
	return &models.FoodToTry{ID: uuid.New(), UserID: userID}, nil
}

func newTestSeeder(r *recordingSeedTarget) *seeder {
	return &seeder{budgets: r, expenses: r, wishlist: wishlistRecorder{r}, fake: gofakeit.New(42)}
}

func TestSeederRun(t *testing.T) {
	rec := &recordingSeedTarget{}
	user := uuid.New()
	now := time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)

	stats, err := newTestSeeder(rec).run(context.Background(), user, 3, 4, 2, now)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stats != (seedStats{Budgets: 3, Expenses: 12, FoodToTry: 2}) {
		t.Fatalf("stats = %+v", stats)
	}

	wantKeys := []models.BudgetKey{
		{UserID: user, Month: 1, Year: 2025},
		{UserID: user, Month: 2, Year: 2025},
		{UserID: user, Month: 3, Year: 2025},
	}
	for i, want := range wantKeys {
		if rec.keys[i] != want {
			t.Errorf("key[%d] = %+v, want %+v", i, rec.keys[i], want)
		}
	}

	for i, p := range rec.patches {
		if err := services.ValidatePercentages(*p.ExpensesPercentage, *p.InvestmentsPercentage, *p.SavingsPercentage, *p.OtherPercentage); err != nil {
			t.Errorf("patch %d: %v", i, err)
		}
		if wantRecurring := i == len(rec.patches)-1; *p.IsRecurring != wantRecurring {
			t.Errorf("patch %d recurring = %v", i, *p.IsRecurring)
		}
	}

	earliest := models.NewDate(2025, time.January, 1)
	for _, e := range rec.expenses {
		if e.UserID != user || !e.Amount.GreaterThan(decimal.Zero) || e.Description == "" {
			t.Errorf("bad expense %+v", e)
		}
		if e.Date.Before(earliest.Time) || e.Date.After(now) {
			t.Errorf("expense date %s outside the seeded range", e.Date)
		}
	}

	for _, in := range rec.wishlist {
		if in.Name == nil || in.Cuisine == nil || *in.Name == "" {
			t.Errorf("bad food to try %+v", in)
		}
	}
}

func TestSeederStopsOnError(t *testing.T) {
	rec := &recordingSeedTarget{expenseErr: errors.New("db down")}
	stats, err := newTestSeeder(rec).run(context.Background(), uuid.New(), 2, 3, 1, time.Now().UTC())
	if err == nil {
		t.Fatal("expected error")
	}
	if stats.Budgets != 1 || stats.Expenses != 0 || stats.FoodToTry != 0 {
		t.Errorf("stats = %+v", stats)
	}
}
