package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const CategoryFoodAndDining = "Food & Dining"

type Expense struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Date         Date            `json:"date"`
	Notes        *string         `json:"notes"`
	ReceiptURL   *string         `json:"receipt_url"`
	IsRecurring  bool            `json:"is_recurring"`
	RecurringDay *int            `json:"recurring_day"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type ExpensePatch struct {
	Amount       *decimal.Decimal `json:"amount"`
	Description  *string          `json:"description"`
	Category     *string          `json:"category"`
	Date         *Date            `json:"date"`
	Notes        *string          `json:"notes"`
	ReceiptURL   *string          `json:"receipt_url"`
	IsRecurring  *bool            `json:"is_recurring"`
	RecurringDay *int             `json:"recurring_day"`
}

func (p ExpensePatch) IsEmpty() bool {
	return p.Amount == nil && p.Description == nil && p.Category == nil && p.Date == nil &&
		p.Notes == nil && p.ReceiptURL == nil && p.IsRecurring == nil && p.RecurringDay == nil
}

// ExpenseFilter narrows an expense listing. Zero values mean "no filter".
type ExpenseFilter struct {
	From     *Date
	To       *Date
	Category string
}

type MonthTotal struct {
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type ExpenseSummary struct {
	Total       decimal.Decimal            `json:"total"`
	Count       int                        `json:"count"`
	Average     decimal.Decimal            `json:"average"`
	ByCategory  map[string]decimal.Decimal `json:"by_category"`
	ByMonth     map[string]MonthTotal      `json:"by_month"`
	Allocations []Allocation               `json:"allocations,omitempty"`
	Remaining   *decimal.Decimal           `json:"remaining_expenses_budget,omitempty"`
}

type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

var DefaultCategories = []Category{
	{ID: "1", Name: CategoryFoodAndDining, Icon: "🍔", Color: "#FF6B6B"},
	{ID: "2", Name: "Transportation", Icon: "🚗", Color: "#4ECDC4"},
	{ID: "3", Name: "Shopping", Icon: "🛍️", Color: "#95E1D3"},
	{ID: "4", Name: "Entertainment", Icon: "🎬", Color: "#F38181"},
	{ID: "5", Name: "Bills & Utilities", Icon: "💡", Color: "#AA96DA"},
	{ID: "6", Name: "Healthcare", Icon: "🏥", Color: "#FCBAD3"},
	{ID: "7", Name: "Education", Icon: "📚", Color: "#A8D8EA"},
	{ID: "8", Name: "Other", Icon: "📦", Color: "#C7CEEA"},
}
