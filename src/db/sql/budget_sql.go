package db

import (
	"context"
	"fmt"

	"tally-server/src/db"
	"tally-server/src/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const budgetColumns = `id, user_id, month, year, monthly_income, expenses_percentage,
	investments_percentage, savings_percentage, other_percentage, is_recurring, created_at, updated_at`

func scanBudget(row pgx.Row) (*models.Budget, error) {
	var b models.Budget
	err := row.Scan(&b.ID, &b.UserID, &b.Month, &b.Year, &b.MonthlyIncome, &b.ExpensesPercentage,
		&b.InvestmentsPercentage, &b.SavingsPercentage, &b.OtherPercentage, &b.IsRecurring,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func CreateBudget(ctx context.Context, q db.DBTX, budget *models.Budget) (*models.Budget, error) {
	query := `
		INSERT INTO budgets (user_id, month, year, monthly_income, expenses_percentage,
			investments_percentage, savings_percentage, other_percentage, is_recurring)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + budgetColumns
	b, err := scanBudget(q.QueryRow(ctx, query, budget.UserID, budget.Month, budget.Year,
		budget.MonthlyIncome, budget.ExpensesPercentage, budget.InvestmentsPercentage,
		budget.SavingsPercentage, budget.OtherPercentage, budget.IsRecurring))
	if err != nil {
		return nil, mapErr("create budget", err)
	}
	return b, nil
}

func GetBudgetByMonth(ctx context.Context, q db.DBTX, key models.BudgetKey) (*models.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE user_id = $1 AND month = $2 AND year = $3`
	b, err := scanBudget(q.QueryRow(ctx, query, key.UserID, key.Month, key.Year))
	if err != nil {
		return nil, mapErr("get budget", err)
	}
	return b, nil
}

// ListBudgets returns the user's budgets newest month first, optionally limited to one year.
func ListBudgets(ctx context.Context, q db.DBTX, userID uuid.UUID, year *int) ([]models.Budget, error) {
	query := `
		SELECT ` + budgetColumns + `
		FROM budgets
		WHERE user_id = $1 AND ($2::int IS NULL OR year = $2)
		ORDER BY year DESC, month DESC
	`
	rows, err := q.Query(ctx, query, userID, year)
	if err != nil {
		return nil, mapErr("list budgets", err)
	}
	defer rows.Close()

	budgets := []models.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, mapErr("scan budget", err)
		}
		budgets = append(budgets, *b)
	}
	return budgets, rows.Err()
}

// GetRecurringTemplate returns the most recent budget flagged recurring.
func GetRecurringTemplate(ctx context.Context, q db.DBTX, userID uuid.UUID) (*models.Budget, error) {
	query := `
		SELECT ` + budgetColumns + `
		FROM budgets
		WHERE user_id = $1 AND is_recurring
		ORDER BY year DESC, month DESC
		LIMIT 1
	`
	b, err := scanBudget(q.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, mapErr("get recurring template", err)
	}
	return b, nil
}

// UpdateBudget writes the non-nil fields of patch. COALESCE keeps the stored value
// for every field left out.
func UpdateBudget(ctx context.Context, q db.DBTX, key models.BudgetKey, patch models.BudgetPatch) (*models.Budget, error) {
	query := `
		UPDATE budgets
		SET monthly_income = COALESCE($4, monthly_income),
			expenses_percentage = COALESCE($5, expenses_percentage),
			investments_percentage = COALESCE($6, investments_percentage),
			savings_percentage = COALESCE($7, savings_percentage),
			other_percentage = COALESCE($8, other_percentage),
			is_recurring = COALESCE($9, is_recurring),
			updated_at = NOW()
		WHERE user_id = $1 AND month = $2 AND year = $3
		RETURNING ` + budgetColumns
	b, err := scanBudget(q.QueryRow(ctx, query, key.UserID, key.Month, key.Year,
		patch.MonthlyIncome, patch.ExpensesPercentage, patch.InvestmentsPercentage,
		patch.SavingsPercentage, patch.OtherPercentage, patch.IsRecurring))
	if err != nil {
		return nil, mapErr("update budget", err)
	}
	return b, nil
}

func DeleteBudget(ctx context.Context, q db.DBTX, key models.BudgetKey) error {
	query := `DELETE FROM budgets WHERE user_id = $1 AND month = $2 AND year = $3`
	cmd, err := q.Exec(ctx, query, key.UserID, key.Month, key.Year)
	if err != nil {
		return mapErr("delete budget", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("delete budget: %w", models.ErrNotFound)
	}
	return nil
}

// ListUsersWithRecurringTemplate returns every user that has at least one recurring budget.
func ListUsersWithRecurringTemplate(ctx context.Context, q db.DBTX) ([]uuid.UUID, error) {
	rows, err := q.Query(ctx, `SELECT DISTINCT user_id FROM budgets WHERE is_recurring ORDER BY user_id`)
	if err != nil {
		return nil, mapErr("list recurring users", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, mapErr("scan user id", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
