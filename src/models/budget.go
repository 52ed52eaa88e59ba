package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Budget struct {
	ID                    uuid.UUID       `json:"id"`
	UserID                uuid.UUID       `json:"user_id"`
	Month                 int             `json:"month"`
	Year                  int             `json:"year"`
	MonthlyIncome         decimal.Decimal `json:"monthly_income"`
	ExpensesPercentage    decimal.Decimal `json:"expenses_percentage"`
	InvestmentsPercentage decimal.Decimal `json:"investments_percentage"`
	SavingsPercentage     decimal.Decimal `json:"savings_percentage"`
	OtherPercentage       decimal.Decimal `json:"other_percentage"`
	IsRecurring           bool            `json:"is_recurring"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// BudgetKey identifies the single budget a user may have for a month.
type BudgetKey struct {
	UserID uuid.UUID
	Month  int
	Year   int
}

func (b *Budget) Key() BudgetKey {
	return BudgetKey{UserID: b.UserID, Month: b.Month, Year: b.Year}
}

// BudgetValues are the user-editable fields of a budget.
type BudgetValues struct {
	MonthlyIncome         decimal.Decimal
	ExpensesPercentage    decimal.Decimal
	InvestmentsPercentage decimal.Decimal
	SavingsPercentage     decimal.Decimal
	OtherPercentage       decimal.Decimal
	IsRecurring           bool
}

func (b *Budget) Values() BudgetValues {
	return BudgetValues{
		MonthlyIncome:         b.MonthlyIncome,
		ExpensesPercentage:    b.ExpensesPercentage,
		InvestmentsPercentage: b.InvestmentsPercentage,
		SavingsPercentage:     b.SavingsPercentage,
		OtherPercentage:       b.OtherPercentage,
		IsRecurring:           b.IsRecurring,
	}
}

// BudgetPatch is a partial update. Nil fields keep their stored value.
type BudgetPatch struct {
	MonthlyIncome         *decimal.Decimal
	ExpensesPercentage    *decimal.Decimal
	InvestmentsPercentage *decimal.Decimal
	SavingsPercentage     *decimal.Decimal
	OtherPercentage       *decimal.Decimal
	IsRecurring           *bool
}

// PatchFromValues builds a patch that overwrites every field.
func PatchFromValues(v BudgetValues) BudgetPatch {
	return BudgetPatch{
		MonthlyIncome:         &v.MonthlyIncome,
		ExpensesPercentage:    &v.ExpensesPercentage,
		InvestmentsPercentage: &v.InvestmentsPercentage,
		SavingsPercentage:     &v.SavingsPercentage,
		OtherPercentage:       &v.OtherPercentage,
		IsRecurring:           &v.IsRecurring,
	}
}

// Apply returns the values that result from applying p on top of v.
func (p BudgetPatch) Apply(v BudgetValues) BudgetValues {
	if p.MonthlyIncome != nil {
		v.MonthlyIncome = *p.MonthlyIncome
	}
	if p.ExpensesPercentage != nil {
		v.ExpensesPercentage = *p.ExpensesPercentage
	}
	if p.InvestmentsPercentage != nil {
		v.InvestmentsPercentage = *p.InvestmentsPercentage
	}
	if p.SavingsPercentage != nil {
		v.SavingsPercentage = *p.SavingsPercentage
	}
	if p.OtherPercentage != nil {
		v.OtherPercentage = *p.OtherPercentage
	}
	if p.IsRecurring != nil {
		v.IsRecurring = *p.IsRecurring
	}
	return v
}

// Rounded returns p with income and percentages rounded to the two decimal
// places the budgets table stores.
func (p BudgetPatch) Rounded() BudgetPatch {
	p.MonthlyIncome = round2(p.MonthlyIncome)
	p.ExpensesPercentage = round2(p.ExpensesPercentage)
	p.InvestmentsPercentage = round2(p.InvestmentsPercentage)
	p.SavingsPercentage = round2(p.SavingsPercentage)
	p.OtherPercentage = round2(p.OtherPercentage)
	return p
}

func round2(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	r := d.Round(2)
	return &r
}

func (p BudgetPatch) TouchesPercentages() bool {
	return p.ExpensesPercentage != nil || p.InvestmentsPercentage != nil ||
		p.SavingsPercentage != nil || p.OtherPercentage != nil
}

// Complete reports whether the patch carries income and all four percentages.
func (p BudgetPatch) Complete() bool {
	return p.MonthlyIncome != nil && p.ExpensesPercentage != nil && p.InvestmentsPercentage != nil &&
		p.SavingsPercentage != nil && p.OtherPercentage != nil
}

func (p BudgetPatch) IsEmpty() bool {
	return !p.TouchesPercentages() && p.MonthlyIncome == nil && p.IsRecurring == nil
}

// Allocation is the money assigned to one budget category. Derived on read, never stored.
type Allocation struct {
	Category   string          `json:"category"`
	Percentage decimal.Decimal `json:"percentage"`
	Amount     decimal.Decimal `json:"amount"`
}

const (
	AllocationExpenses    = "Expenses"
	AllocationInvestments = "Investments"
	AllocationSavings     = "Savings"
	AllocationOther       = "Other"
)

func (b *Budget) Allocations() []Allocation {
	alloc := func(category string, pct decimal.Decimal) Allocation {
		return Allocation{
			Category:   category,
			Percentage: pct,
			Amount:     b.MonthlyIncome.Mul(pct).Div(hundred).Round(2),
		}
	}
	return []Allocation{
		alloc(AllocationExpenses, b.ExpensesPercentage),
		alloc(AllocationInvestments, b.InvestmentsPercentage),
		alloc(AllocationSavings, b.SavingsPercentage),
		alloc(AllocationOther, b.OtherPercentage),
	}
}

// MonthRef is a (month, year) pair used as a copy target.
type MonthRef struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// BudgetView is a budget as the API returns it, with its allocations.
type BudgetView struct {
	*Budget
	Allocations []Allocation `json:"allocations"`
}

func (b *Budget) View() BudgetView {
	return BudgetView{Budget: b, Allocations: b.Allocations()}
}

func BudgetViews(budgets []Budget) []BudgetView {
	views := make([]BudgetView, len(budgets))
	for i := range budgets {
		views[i] = budgets[i].View()
	}
	return views
}
