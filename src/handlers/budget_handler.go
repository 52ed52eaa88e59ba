package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"tally-server/src/logging"
	"tally-server/src/models"
	"tally-server/src/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetManager is the budget behaviour the HTTP layer needs.
type BudgetManager interface {
	Get(ctx context.Context, key models.BudgetKey) (*models.Budget, error)
	GetCurrent(ctx context.Context, userID uuid.UUID, now time.Time) (*models.Budget, error)
	List(ctx context.Context, userID uuid.UUID, year *int) ([]models.Budget, error)
	GetOrCreate(ctx context.Context, key models.BudgetKey) (*models.Budget, bool, error)
	Upsert(ctx context.Context, key models.BudgetKey, patch models.BudgetPatch) (*models.Budget, bool, error)
	Update(ctx context.Context, key models.BudgetKey, patch models.BudgetPatch) (*models.Budget, error)
	CopyToMonths(ctx context.Context, userID uuid.UUID, source models.MonthRef, targets []models.MonthRef) ([]models.Budget, error)
	Delete(ctx context.Context, key models.BudgetKey) error
}

type budgetRequest struct {
	Month                 *int             `json:"month"`
	Year                  *int             `json:"year"`
	MonthlyIncome         *decimal.Decimal `json:"monthly_income"`
	ExpensesPercentage    *decimal.Decimal `json:"expenses_percentage"`
	InvestmentsPercentage *decimal.Decimal `json:"investments_percentage"`
	SavingsPercentage     *decimal.Decimal `json:"savings_percentage"`
	OtherPercentage       *decimal.Decimal `json:"other_percentage"`
	IsRecurring           *bool            `json:"is_recurring"`
}

func (req budgetRequest) patch() models.BudgetPatch {
	return models.BudgetPatch{
		MonthlyIncome:         req.MonthlyIncome,
		ExpensesPercentage:    req.ExpensesPercentage,
		InvestmentsPercentage: req.InvestmentsPercentage,
		SavingsPercentage:     req.SavingsPercentage,
		OtherPercentage:       req.OtherPercentage,
		IsRecurring:           req.IsRecurring,
	}
}

type copyBudgetRequest struct {
	SourceMonth  int               `json:"sourceMonth"`
	SourceYear   int               `json:"sourceYear"`
	TargetMonths []models.MonthRef `json:"targetMonths"`
}

// budgetKey reads month and year from the query. required controls whether
// their absence is an error or means the current month.
func budgetKey(r *http.Request, userID uuid.UUID, required bool) (models.BudgetKey, error) {
	month, year, ok, err := util.ParseMonthYear(r.URL.Query())
	if err != nil {
		return models.BudgetKey{}, err
	}
	if !ok {
		if required {
			return models.BudgetKey{}, models.NewValidationError("Month and year are required")
		}
		month, year = util.CurrentMonth(time.Now())
	}
	return models.BudgetKey{UserID: userID, Month: month, Year: year}, nil
}

// GetBudget returns the budget for ?month=&year=, or the current month's.
func GetBudget(budgets BudgetManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		month, year, explicit, err := util.ParseMonthYear(r.URL.Query())
		if err != nil {
			writeError(w, r, err, "fetch budget", "Budget")
			return
		}
		var budget *models.Budget
		if explicit {
			budget, err = budgets.Get(r.Context(), models.BudgetKey{UserID: userID, Month: month, Year: year})
		} else {
			budget, err = budgets.GetCurrent(r.Context(), userID, time.Now().UTC())
		}
		if err != nil {
			writeError(w, r, err, "fetch budget", "Budget")
			return
		}
		writeJSON(w, http.StatusOK, budget.View())
	}
}

// SaveBudget creates or replaces the budget for a month. POST and PUT share it.
func SaveBudget(budgets BudgetManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		var req budgetRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, "save budget", "Budget")
			return
		}
		patch := req.patch()
		if !patch.Complete() {
			writeError(w, r, models.ErrMissingFields, "save budget", "Budget")
			return
		}
		if patch.IsRecurring == nil {
			recurring := false
			patch.IsRecurring = &recurring
		}

		month, year := util.CurrentMonth(time.Now())
		if req.Month != nil {
			month = *req.Month
		}
		if req.Year != nil {
			year = *req.Year
		}
		key := models.BudgetKey{UserID: userID, Month: month, Year: year}

		budget, created, err := budgets.Upsert(r.Context(), key, patch)
		if err != nil {
			writeError(w, r, err, "save budget", "Budget")
			return
		}
		logging.FromContext(r.Context()).Info("saved budget",
			logging.FieldMonth, key.Month,
			logging.FieldYear, key.Year,
			"created", created,
		)
		writeJSON(w, http.StatusCreated, budget.View())
	}
}

// PatchBudget changes some fields of an existing budget.
func PatchBudget(budgets BudgetManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		key, err := budgetKey(r, userID, true)
		if err != nil {
			writeError(w, r, err, "update budget", "Budget")
			return
		}
		var req budgetRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, "update budget", "Budget")
			return
		}
		budget, err := budgets.Update(r.Context(), key, req.patch())
		if err != nil {
			writeError(w, r, err, "update budget", "Budget")
			return
		}
		writeJSON(w, http.StatusOK, budget.View())
	}
}

func DeleteBudget(budgets BudgetManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		key, err := budgetKey(r, userID, true)
		if err != nil {
			writeError(w, r, err, "delete budget", "Budget")
			return
		}
		if err := budgets.Delete(r.Context(), key); err != nil {
			writeError(w, r, err, "delete budget", "Budget")
			return
		}
		logging.FromContext(r.Context()).Info("deleted budget", logging.FieldMonth, key.Month, logging.FieldYear, key.Year)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Budget deleted successfully"})
	}
}

// ListBudgets returns every budget, or one year's with ?year=.
func ListBudgets(budgets BudgetManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		year, err := util.ParseOptionalYear(r.URL.Query().Get("year"))
		if err != nil {
			writeError(w, r, err, "fetch budgets", "Budgets")
			return
		}
		list, err := budgets.List(r.Context(), userID, year)
		if err != nil {
			writeError(w, r, err, "fetch budgets", "Budgets")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"budgets": models.BudgetViews(list)})
	}
}

func CopyBudget(budgets BudgetManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		var req copyBudgetRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, "copy budget", "Source budget")
			return
		}
		if req.SourceMonth == 0 || req.SourceYear == 0 || req.TargetMonths == nil {
			writeError(w, r, models.NewValidationError("Invalid request body"), "copy budget", "Source budget")
			return
		}
		for _, t := range req.TargetMonths {
			if !util.ValidateMonth(t.Month) {
				writeError(w, r, models.ErrInvalidMonth, "copy budget", "Source budget")
				return
			}
			if !util.ValidateYear(t.Year) {
				writeError(w, r, models.ErrInvalidYear, "copy budget", "Source budget")
				return
			}
		}

		source := models.MonthRef{Month: req.SourceMonth, Year: req.SourceYear}
		results, err := budgets.CopyToMonths(r.Context(), userID, source, req.TargetMonths)
		if err != nil {
			logging.FromContext(r.Context()).Warn("budget copy stopped early",
				"copied", len(results),
				"requested", len(req.TargetMonths),
				logging.FieldError, err,
			)
			writeError(w, r, err, "copy budget", "Source budget")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message": fmt.Sprintf("Successfully copied budget to %d month(s)", len(results)),
			"budgets": models.BudgetViews(results),
		})
	}
}

// ResolveBudget returns the month's budget, creating it from the recurring
// template when it does not exist yet.
func ResolveBudget(budgets BudgetManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		key, err := budgetKey(r, userID, false)
		if err != nil {
			writeError(w, r, err, "resolve budget", "Budget")
			return
		}
		budget, created, err := budgets.GetOrCreate(r.Context(), key)
		if err != nil {
			writeError(w, r, err, "resolve budget", "Budget")
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		writeJSON(w, status, budget.View())
	}
}
