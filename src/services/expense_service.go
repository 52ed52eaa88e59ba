package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tally-server/src/logging"
	"tally-server/src/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ExpenseStore interface {
	CreateExpense(ctx context.Context, expense *models.Expense) (*models.Expense, error)
	GetExpense(ctx context.Context, userID, expenseID uuid.UUID) (*models.Expense, error)
	ListExpenses(ctx context.Context, userID uuid.UUID, filter models.ExpenseFilter) ([]models.Expense, error)
	UpdateExpense(ctx context.Context, userID, expenseID uuid.UUID, patch models.ExpensePatch) (*models.Expense, error)
	DeleteExpense(ctx context.Context, userID, expenseID uuid.UUID) error
}

type ExpenseService struct {
	store   ExpenseStore
	budgets BudgetStore
	logger  *logging.Logger
}

// NewExpenseService builds the service. budgets may be nil, in which case
// summaries never include allocations.
func NewExpenseService(store ExpenseStore, budgets BudgetStore, logger *logging.Logger) *ExpenseService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &ExpenseService{store: store, budgets: budgets, logger: logger.WithComponent(logging.ComponentExpense)}
}

func (s *ExpenseService) List(ctx context.Context, userID uuid.UUID, filter models.ExpenseFilter) ([]models.Expense, error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(filter.From.Time) {
		return nil, models.NewValidationError("from must not be after to")
	}
	return s.store.ListExpenses(ctx, userID, filter)
}

func (s *ExpenseService) Get(ctx context.Context, userID, expenseID uuid.UUID) (*models.Expense, error) {
	return s.store.GetExpense(ctx, userID, expenseID)
}

// Create stores a new expense. A zero date becomes today.
func (s *ExpenseService) Create(ctx context.Context, e *models.Expense) (*models.Expense, error) {
	e.Description = strings.TrimSpace(e.Description)
	e.Category = strings.TrimSpace(e.Category)
	if e.Description == "" || e.Category == "" {
		return nil, models.ErrMissingFields
	}
	if !e.Amount.IsPositive() {
		return nil, models.ErrInvalidAmount
	}
	if err := validateRecurringDay(e.RecurringDay); err != nil {
		return nil, err
	}
	if e.Date.IsZero() {
		e.Date = models.Today()
	}
	created, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "created expense",
		logging.FieldUserID, created.UserID,
		"expense_id", created.ID,
		"category", created.Category,
	)
	return created, nil
}

func (s *ExpenseService) Update(ctx context.Context, userID, expenseID uuid.UUID, patch models.ExpensePatch) (*models.Expense, error) {
	if patch.IsEmpty() {
		return nil, models.ErrEmptyPatch
	}
	if patch.Amount != nil && !patch.Amount.IsPositive() {
		return nil, models.ErrInvalidAmount
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		return nil, models.ErrMissingFields
	}
	if patch.Category != nil && strings.TrimSpace(*patch.Category) == "" {
		return nil, models.ErrMissingFields
	}
	if err := validateRecurringDay(patch.RecurringDay); err != nil {
		return nil, err
	}
	return s.store.UpdateExpense(ctx, userID, expenseID, patch)
}

func (s *ExpenseService) Delete(ctx context.Context, userID, expenseID uuid.UUID) error {
	return s.store.DeleteExpense(ctx, userID, expenseID)
}

// Summary aggregates the user's expenses. With a month it covers only that
// month and, when the month has a budget, reports the allocations and what is
// left of the expenses allocation.
func (s *ExpenseService) Summary(ctx context.Context, userID uuid.UUID, month *models.MonthRef) (*models.ExpenseSummary, error) {
	var filter models.ExpenseFilter
	if month != nil {
		key := models.BudgetKey{UserID: userID, Month: month.Month, Year: month.Year}
		if err := ValidateKey(key); err != nil {
			return nil, err
		}
		from, to := models.MonthBounds(month.Year, month.Month)
		filter.From, filter.To = &from, &to
	}

	expenses, err := s.store.ListExpenses(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list expenses for summary: %w", err)
	}
	summary := Summarize(expenses)

	if month == nil || s.budgets == nil {
		return summary, nil
	}
	budget, err := s.budgets.GetBudgetByMonth(ctx, models.BudgetKey{UserID: userID, Month: month.Month, Year: month.Year})
	if errors.Is(err, models.ErrNotFound) {
		return summary, nil
	}
	if err != nil {
		return nil, fmt.Errorf("budget for summary: %w", err)
	}
	summary.Allocations = budget.Allocations()
	for _, a := range summary.Allocations {
		if a.Category == models.AllocationExpenses {
			remaining := a.Amount.Sub(summary.Total)
			summary.Remaining = &remaining
		}
	}
	return summary, nil
}

// Summarize computes totals for a list of expenses.
func Summarize(expenses []models.Expense) *models.ExpenseSummary {
	summary := &models.ExpenseSummary{
		Total:      decimal.Zero,
		Average:    decimal.Zero,
		ByCategory: map[string]decimal.Decimal{},
		ByMonth:    map[string]models.MonthTotal{},
	}
	for _, e := range expenses {
		summary.Total = summary.Total.Add(e.Amount)
		summary.Count++
		summary.ByCategory[e.Category] = summary.ByCategory[e.Category].Add(e.Amount)

		key := e.Date.Format("2006-01")
		m := summary.ByMonth[key]
		m.Total = m.Total.Add(e.Amount)
		m.Count++
		summary.ByMonth[key] = m
	}
	if summary.Count > 0 {
		summary.Average = summary.Total.Div(decimal.NewFromInt(int64(summary.Count))).Round(2)
	}
	return summary
}

func validateRecurringDay(day *int) error {
	if day != nil && (*day < 1 || *day > 31) {
		return models.NewValidationError("recurring_day must be between 1 and 31")
	}
	return nil
}
