package handlers

import (
	"context"
	"net/http"
	"strings"

	"tally-server/src/models"
	"tally-server/src/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ExpenseManager interface {
	List(ctx context.Context, userID uuid.UUID, filter models.ExpenseFilter) ([]models.Expense, error)
	Get(ctx context.Context, userID, expenseID uuid.UUID) (*models.Expense, error)
	Create(ctx context.Context, e *models.Expense) (*models.Expense, error)
	Update(ctx context.Context, userID, expenseID uuid.UUID, patch models.ExpensePatch) (*models.Expense, error)
	Delete(ctx context.Context, userID, expenseID uuid.UUID) error
	Summary(ctx context.Context, userID uuid.UUID, month *models.MonthRef) (*models.ExpenseSummary, error)
}

type createExpenseRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Date         models.Date     `json:"date"`
	Notes        *string         `json:"notes"`
	ReceiptURL   *string         `json:"receipt_url"`
	IsRecurring  bool            `json:"is_recurring"`
	RecurringDay *int            `json:"recurring_day"`
}

// ListExpenses supports ?from=, ?to= (YYYY-MM-DD) and ?category=.
func ListExpenses(expenses ExpenseManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		q := r.URL.Query()
		from, err := util.ParseOptionalDate(q.Get("from"))
		if err != nil {
			writeError(w, r, err, "fetch expenses", "Expenses")
			return
		}
		to, err := util.ParseOptionalDate(q.Get("to"))
		if err != nil {
			writeError(w, r, err, "fetch expenses", "Expenses")
			return
		}
		filter := models.ExpenseFilter{From: from, To: to, Category: strings.TrimSpace(q.Get("category"))}

		list, err := expenses.List(r.Context(), userID, filter)
		if err != nil {
			writeError(w, r, err, "fetch expenses", "Expenses")
			return
		}
		if list == nil {
			list = []models.Expense{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"expenses": list})
	}
}

func GetExpense(expenses ExpenseManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err, "fetch expense", "Expense")
			return
		}
		expense, err := expenses.Get(r.Context(), userID, id)
		if err != nil {
			writeError(w, r, err, "fetch expense", "Expense")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"expense": expense})
	}
}

func CreateExpense(expenses ExpenseManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		var req createExpenseRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, "create expense", "Expense")
			return
		}
		expense, err := expenses.Create(r.Context(), &models.Expense{
			UserID:       userID,
			Amount:       req.Amount,
			Description:  req.Description,
			Category:     req.Category,
			Date:         req.Date,
			Notes:        req.Notes,
			ReceiptURL:   req.ReceiptURL,
			IsRecurring:  req.IsRecurring,
			RecurringDay: req.RecurringDay,
		})
		if err != nil {
			writeError(w, r, err, "create expense", "Expense")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"expense": expense})
	}
}

func UpdateExpense(expenses ExpenseManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err, "update expense", "Expense")
			return
		}
		var patch models.ExpensePatch
		if err := decodeJSON(w, r, &patch); err != nil {
			writeError(w, r, err, "update expense", "Expense")
			return
		}
		expense, err := expenses.Update(r.Context(), userID, id, patch)
		if err != nil {
			writeError(w, r, err, "update expense", "Expense")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"expense": expense})
	}
}

func DeleteExpense(expenses ExpenseManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err, "delete expense", "Expense")
			return
		}
		if err := expenses.Delete(r.Context(), userID, id); err != nil {
			writeError(w, r, err, "delete expense", "Expense")
			return
		}
		writeJSON(w, http.StatusOK, successBody())
	}
}

// ExpenseSummary aggregates all expenses, or one month's with ?month=&year=.
func ExpenseSummary(expenses ExpenseManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		month, year, scoped, err := util.ParseMonthYear(r.URL.Query())
		if err != nil {
			writeError(w, r, err, "summarize expenses", "Expenses")
			return
		}
		var ref *models.MonthRef
		if scoped {
			ref = &models.MonthRef{Month: month, Year: year}
		}
		summary, err := expenses.Summary(r.Context(), userID, ref)
		if err != nil {
			writeError(w, r, err, "summarize expenses", "Expenses")
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func ListCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"categories": models.DefaultCategories})
	}
}
