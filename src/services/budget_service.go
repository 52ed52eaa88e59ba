package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tally-server/src/logging"
	"tally-server/src/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	hundred          = decimal.NewFromInt(100)
	percentTolerance = decimal.RequireFromString("0.01")
	maxIncome        = decimal.RequireFromString("9999999999.99")
)

const (
	minYear = 1900
	maxYear = 9999
)

// BudgetStore is the persistence the budget service needs. Lookups return
// models.ErrNotFound when nothing matches and CreateBudget returns
// models.ErrConflict when the (user, month, year) key is taken.
type BudgetStore interface {
	GetBudgetByMonth(ctx context.Context, key models.BudgetKey) (*models.Budget, error)
	ListBudgets(ctx context.Context, userID uuid.UUID, year *int) ([]models.Budget, error)
	GetRecurringTemplate(ctx context.Context, userID uuid.UUID) (*models.Budget, error)
	CreateBudget(ctx context.Context, budget *models.Budget) (*models.Budget, error)
	UpdateBudget(ctx context.Context, key models.BudgetKey, patch models.BudgetPatch) (*models.Budget, error)
	DeleteBudget(ctx context.Context, key models.BudgetKey) error
	ListUsersWithRecurringTemplate(ctx context.Context) ([]uuid.UUID, error)
}

// ValidatePercentages checks the four allocation percentages are non-negative
// and add up to 100 within 0.01.
func ValidatePercentages(expenses, investments, savings, other decimal.Decimal) error {
	for _, p := range []decimal.Decimal{expenses, investments, savings, other} {
		if p.IsNegative() {
			return models.ErrNegativeValue
		}
	}
	sum := expenses.Add(investments).Add(savings).Add(other)
	if sum.Sub(hundred).Abs().GreaterThan(percentTolerance) {
		return models.ErrPercentageSum
	}
	return nil
}

// ValidateKey checks the month and year of a budget key.
func ValidateKey(key models.BudgetKey) error {
	if key.Month < 1 || key.Month > 12 {
		return models.ErrInvalidMonth
	}
	if key.Year < minYear || key.Year > maxYear {
		return models.ErrInvalidYear
	}
	return nil
}

func validateValues(v models.BudgetValues) error {
	if v.MonthlyIncome.IsNegative() {
		return models.ErrNegativeValue
	}
	if v.MonthlyIncome.GreaterThan(maxIncome) {
		return models.ErrIncomeTooLarge
	}
	return ValidatePercentages(v.ExpensesPercentage, v.InvestmentsPercentage, v.SavingsPercentage, v.OtherPercentage)
}

type BudgetService struct {
	store  BudgetStore
	logger *logging.Logger
}

func NewBudgetService(store BudgetStore, logger *logging.Logger) *BudgetService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &BudgetService{store: store, logger: logger.WithComponent(logging.ComponentBudget)}
}

func (s *BudgetService) Get(ctx context.Context, key models.BudgetKey) (*models.Budget, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	return s.store.GetBudgetByMonth(ctx, key)
}

// GetCurrent returns the budget for the calendar month containing now.
func (s *BudgetService) GetCurrent(ctx context.Context, userID uuid.UUID, now time.Time) (*models.Budget, error) {
	return s.Get(ctx, CurrentKey(userID, now))
}

func CurrentKey(userID uuid.UUID, now time.Time) models.BudgetKey {
	return models.BudgetKey{UserID: userID, Month: int(now.Month()), Year: now.Year()}
}

func (s *BudgetService) List(ctx context.Context, userID uuid.UUID, year *int) ([]models.Budget, error) {
	return s.store.ListBudgets(ctx, userID, year)
}

// ResolveTemplate returns the most recent recurring budget. When several are
// flagged recurring the latest (year, month) wins.
func (s *BudgetService) ResolveTemplate(ctx context.Context, userID uuid.UUID) (*models.Budget, error) {
	return s.store.GetRecurringTemplate(ctx, userID)
}

// GetOrCreate returns the budget for key, creating a non-recurring snapshot of
// the recurring template when the month has none. It returns
// models.ErrNotFound when there is neither a budget nor a template.
func (s *BudgetService) GetOrCreate(ctx context.Context, key models.BudgetKey) (*models.Budget, bool, error) {
	existing, err := s.Get(ctx, key)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, false, err
	}

	created, err := s.CreateFromTemplate(ctx, key)
	switch {
	case errors.Is(err, models.ErrNoTemplate):
		return nil, false, fmt.Errorf("get or create budget: %w", models.ErrNotFound)
	case errors.Is(err, models.ErrConflict):
		// A concurrent request created it between our read and write.
		b, err := s.store.GetBudgetByMonth(ctx, key)
		return b, false, err
	case err != nil:
		return nil, false, err
	}
	return created, true, nil
}

// CreateFromTemplate copies the recurring template into key as a snapshot.
func (s *BudgetService) CreateFromTemplate(ctx context.Context, key models.BudgetKey) (*models.Budget, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	tmpl, err := s.ResolveTemplate(ctx, key.UserID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrNoTemplate
	}
	if err != nil {
		return nil, err
	}

	values := tmpl.Values()
	values.IsRecurring = false
	created, err := s.store.CreateBudget(ctx, newBudget(key, values))
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "created budget from recurring template",
		logging.FieldUserID, key.UserID,
		logging.FieldMonth, key.Month,
		logging.FieldYear, key.Year,
		"template_month", tmpl.Month,
		"template_year", tmpl.Year,
	)
	return created, nil
}

// Upsert writes patch to key. An existing budget is updated with the supplied
// fields merged over its stored values; otherwise a budget is created, which
// needs income and all four percentages. The returned bool reports whether a
// new record was created.
func (s *BudgetService) Upsert(ctx context.Context, key models.BudgetKey, patch models.BudgetPatch) (*models.Budget, bool, error) {
	if err := ValidateKey(key); err != nil {
		return nil, false, err
	}
	patch = patch.Rounded()

	existing, err := s.store.GetBudgetByMonth(ctx, key)
	if err == nil {
		b, err := s.update(ctx, existing, patch)
		return b, false, err
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, false, err
	}

	if !patch.Complete() {
		return nil, false, models.ErrMissingFields
	}
	values := patch.Apply(models.BudgetValues{})
	if err := validateValues(values); err != nil {
		return nil, false, err
	}
	created, err := s.store.CreateBudget(ctx, newBudget(key, values))
	if errors.Is(err, models.ErrConflict) {
		s.logger.WarnContext(ctx, "budget created concurrently, retrying as update",
			logging.FieldUserID, key.UserID,
			logging.FieldMonth, key.Month,
			logging.FieldYear, key.Year,
		)
		existing, err := s.store.GetBudgetByMonth(ctx, key)
		if err != nil {
			return nil, false, err
		}
		b, err := s.update(ctx, existing, patch)
		return b, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// Update applies a partial change. Fields left out keep their stored values and
// the merged result must still satisfy the percentage total.
func (s *BudgetService) Update(ctx context.Context, key models.BudgetKey, patch models.BudgetPatch) (*models.Budget, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, models.ErrEmptyPatch
	}
	patch = patch.Rounded()
	existing, err := s.store.GetBudgetByMonth(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, existing, patch)
}

func (s *BudgetService) update(ctx context.Context, existing *models.Budget, patch models.BudgetPatch) (*models.Budget, error) {
	if err := validateValues(patch.Apply(existing.Values())); err != nil {
		return nil, err
	}
	return s.store.UpdateBudget(ctx, existing.Key(), patch)
}

// CopyToMonths upserts the source budget into every target month as a
// non-recurring copy. Targets are processed in order and independently; on
// failure the records already written are returned along with the error.
func (s *BudgetService) CopyToMonths(ctx context.Context, userID uuid.UUID, source models.MonthRef, targets []models.MonthRef) ([]models.Budget, error) {
	src, err := s.Get(ctx, models.BudgetKey{UserID: userID, Month: source.Month, Year: source.Year})
	if err != nil {
		return nil, fmt.Errorf("copy source budget: %w", err)
	}

	values := src.Values()
	values.IsRecurring = false
	patch := models.PatchFromValues(values)

	results := make([]models.Budget, 0, len(targets))
	for _, t := range targets {
		key := models.BudgetKey{UserID: userID, Month: t.Month, Year: t.Year}
		b, _, err := s.Upsert(ctx, key, patch)
		if err != nil {
			return results, fmt.Errorf("copy budget to %d/%d: %w", t.Month, t.Year, err)
		}
		results = append(results, *b)
	}
	s.logger.InfoContext(ctx, "copied budget",
		logging.FieldUserID, userID,
		logging.FieldMonth, source.Month,
		logging.FieldYear, source.Year,
		"targets", len(results),
	)
	return results, nil
}

// Delete removes the budget for key. A missing budget is not an error.
func (s *BudgetService) Delete(ctx context.Context, key models.BudgetKey) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	err := s.store.DeleteBudget(ctx, key)
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	return err
}

// Rollover makes sure every user with a recurring template has a budget for
// the month containing now. It returns how many budgets were created.
func (s *BudgetService) Rollover(ctx context.Context, now time.Time) (int, error) {
	users, err := s.store.ListUsersWithRecurringTemplate(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users with recurring budgets: %w", err)
	}
	var (
		created int
		errs    []error
	)
	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			return created, err
		}
		_, isNew, err := s.GetOrCreate(ctx, CurrentKey(userID, now))
		if err != nil {
			s.logger.ErrorContext(ctx, "rollover failed",
				logging.FieldUserID, userID,
				logging.FieldError, err,
			)
			errs = append(errs, err)
			continue
		}
		if isNew {
			created++
		}
	}
	return created, errors.Join(errs...)
}

func newBudget(key models.BudgetKey, v models.BudgetValues) *models.Budget {
	return &models.Budget{
		UserID:                key.UserID,
		Month:                 key.Month,
		Year:                  key.Year,
		MonthlyIncome:         v.MonthlyIncome,
		ExpensesPercentage:    v.ExpensesPercentage,
		InvestmentsPercentage: v.InvestmentsPercentage,
		SavingsPercentage:     v.SavingsPercentage,
		OtherPercentage:       v.OtherPercentage,
		IsRecurring:           v.IsRecurring,
	}
}
