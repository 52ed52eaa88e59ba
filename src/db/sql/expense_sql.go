package db

import (
	"context"
	"fmt"

	"tally-server/src/db"
	"tally-server/src/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const expenseColumns = `id, user_id, amount, description, category, date, notes, receipt_url,
	is_recurring, recurring_day, created_at, updated_at`

func scanExpense(row pgx.Row) (*models.Expense, error) {
	var e models.Expense
	err := row.Scan(&e.ID, &e.UserID, &e.Amount, &e.Description, &e.Category, &e.Date, &e.Notes,
		&e.ReceiptURL, &e.IsRecurring, &e.RecurringDay, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func CreateExpense(ctx context.Context, q db.DBTX, expense *models.Expense) (*models.Expense, error) {
	query := `
		INSERT INTO expenses (user_id, amount, description, category, date, notes, receipt_url,
			is_recurring, recurring_day)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + expenseColumns
	e, err := scanExpense(q.QueryRow(ctx, query, expense.UserID, expense.Amount, expense.Description,
		expense.Category, expense.Date, expense.Notes, expense.ReceiptURL, expense.IsRecurring,
		expense.RecurringDay))
	if err != nil {
		return nil, mapErr("create expense", err)
	}
	return e, nil
}

func GetExpenseByID(ctx context.Context, q db.DBTX, userID, expenseID uuid.UUID) (*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1 AND user_id = $2`
	e, err := scanExpense(q.QueryRow(ctx, query, expenseID, userID))
	if err != nil {
		return nil, mapErr("get expense", err)
	}
	return e, nil
}

func ListExpenses(ctx context.Context, q db.DBTX, userID uuid.UUID, filter models.ExpenseFilter) ([]models.Expense, error) {
	query := `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE user_id = $1
			AND ($2::date IS NULL OR date >= $2)
			AND ($3::date IS NULL OR date <= $3)
			AND ($4 = '' OR category = $4)
		ORDER BY date DESC, created_at DESC
	`
	rows, err := q.Query(ctx, query, userID, filter.From, filter.To, filter.Category)
	if err != nil {
		return nil, mapErr("list expenses", err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, mapErr("scan expense", err)
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}

func UpdateExpense(ctx context.Context, q db.DBTX, userID, expenseID uuid.UUID, patch models.ExpensePatch) (*models.Expense, error) {
	query := `
		UPDATE expenses
		SET amount = COALESCE($3, amount),
			description = COALESCE($4, description),
			category = COALESCE($5, category),
			date = COALESCE($6, date),
			notes = COALESCE($7, notes),
			receipt_url = COALESCE($8, receipt_url),
			is_recurring = COALESCE($9, is_recurring),
			recurring_day = COALESCE($10, recurring_day),
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + expenseColumns
	e, err := scanExpense(q.QueryRow(ctx, query, expenseID, userID, patch.Amount, patch.Description,
		patch.Category, patch.Date, patch.Notes, patch.ReceiptURL, patch.IsRecurring, patch.RecurringDay))
	if err != nil {
		return nil, mapErr("update expense", err)
	}
	return e, nil
}

func DeleteExpense(ctx context.Context, q db.DBTX, userID, expenseID uuid.UUID) error {
	cmd, err := q.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND user_id = $2`, expenseID, userID)
	if err != nil {
		return mapErr("delete expense", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("delete expense: %w", models.ErrNotFound)
	}
	return nil
}
