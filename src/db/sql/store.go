package db

import (
	"context"

	"tally-server/src/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store binds the query functions to a pool so the services can depend on
// small interfaces instead of the pool itself.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) GetBudgetByMonth(ctx context.Context, key models.BudgetKey) (*models.Budget, error) {
	return GetBudgetByMonth(ctx, s.pool, key)
}

func (s *Store) ListBudgets(ctx context.Context, userID uuid.UUID, year *int) ([]models.Budget, error) {
	return ListBudgets(ctx, s.pool, userID, year)
}

func (s *Store) GetRecurringTemplate(ctx context.Context, userID uuid.UUID) (*models.Budget, error) {
	return GetRecurringTemplate(ctx, s.pool, userID)
}

func (s *Store) CreateBudget(ctx context.Context, budget *models.Budget) (*models.Budget, error) {
	return CreateBudget(ctx, s.pool, budget)
}

func (s *Store) UpdateBudget(ctx context.Context, key models.BudgetKey, patch models.BudgetPatch) (*models.Budget, error) {
	return UpdateBudget(ctx, s.pool, key, patch)
}

func (s *Store) DeleteBudget(ctx context.Context, key models.BudgetKey) error {
	return DeleteBudget(ctx, s.pool, key)
}

func (s *Store) ListUsersWithRecurringTemplate(ctx context.Context) ([]uuid.UUID, error) {
	return ListUsersWithRecurringTemplate(ctx, s.pool)
}

func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) (*models.Expense, error) {
	return CreateExpense(ctx, s.pool, expense)
}

func (s *Store) GetExpense(ctx context.Context, userID, expenseID uuid.UUID) (*models.Expense, error) {
	return GetExpenseByID(ctx, s.pool, userID, expenseID)
}

func (s *Store) ListExpenses(ctx context.Context, userID uuid.UUID, filter models.ExpenseFilter) ([]models.Expense, error) {
	return ListExpenses(ctx, s.pool, userID, filter)
}

func (s *Store) UpdateExpense(ctx context.Context, userID, expenseID uuid.UUID, patch models.ExpensePatch) (*models.Expense, error) {
	return UpdateExpense(ctx, s.pool, userID, expenseID, patch)
}

func (s *Store) DeleteExpense(ctx context.Context, userID, expenseID uuid.UUID) error {
	return DeleteExpense(ctx, s.pool, userID, expenseID)
}

func (s *Store) CreateFoodReview(ctx context.Context, userID uuid.UUID, in models.CreateFoodReviewInput, billExpense *models.Expense) (*models.FoodReview, error) {
	return CreateFoodReview(ctx, s.pool, userID, in, billExpense)
}

func (s *Store) GetFoodReview(ctx context.Context, userID, reviewID uuid.UUID) (*models.FoodReview, error) {
	return GetFoodReview(ctx, s.pool, userID, reviewID)
}

func (s *Store) ListFoodReviews(ctx context.Context, userID uuid.UUID) ([]models.FoodReview, error) {
	return ListFoodReviews(ctx, s.pool, userID)
}

func (s *Store) UpdateFoodReview(ctx context.Context, userID, reviewID uuid.UUID, patch models.FoodReviewPatch) (*models.FoodReview, error) {
	return UpdateFoodReview(ctx, s.pool, userID, reviewID, patch)
}

func (s *Store) DeleteFoodReview(ctx context.Context, userID, reviewID uuid.UUID) error {
	return DeleteFoodReview(ctx, s.pool, userID, reviewID)
}

func (s *Store) AddDish(ctx context.Context, userID, reviewID uuid.UUID, in models.CreateDishInput, newExpense func(*models.FoodReview) *models.Expense) (*models.Dish, error) {
	return AddDish(ctx, s.pool, userID, reviewID, in, newExpense)
}

func (s *Store) AddPhotos(ctx context.Context, userID, reviewID uuid.UUID, urls []string) ([]models.Photo, error) {
	return AddPhotos(ctx, s.pool, userID, reviewID, urls)
}

func (s *Store) DeletePhoto(ctx context.Context, userID, photoID uuid.UUID) error {
	return DeletePhoto(ctx, s.pool, userID, photoID)
}

func (s *Store) CreateFoodToTry(ctx context.Context, userID uuid.UUID, in models.FoodToTryInput) (*models.FoodToTry, error) {
	return CreateFoodToTry(ctx, s.pool, userID, in)
}

func (s *Store) GetFoodToTry(ctx context.Context, userID, id uuid.UUID) (*models.FoodToTry, error) {
	return GetFoodToTry(ctx, s.pool, userID, id)
}

func (s *Store) ListFoodToTry(ctx context.Context, userID uuid.UUID, status *models.FoodStatus, cuisines []string) ([]models.FoodToTry, error) {
	return ListFoodToTry(ctx, s.pool, userID, status, cuisines)
}

func (s *Store) UpdateFoodToTry(ctx context.Context, userID, id uuid.UUID, in models.FoodToTryInput) (*models.FoodToTry, error) {
	return UpdateFoodToTry(ctx, s.pool, userID, id, in)
}

func (s *Store) DeleteFoodToTry(ctx context.Context, userID, id uuid.UUID) error {
	return DeleteFoodToTry(ctx, s.pool, userID, id)
}
