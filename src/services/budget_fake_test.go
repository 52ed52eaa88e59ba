package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"tally-server/src/models"

	"github.com/google/uuid"
)

// memBudgetStore is an in-memory BudgetStore keyed like the budgets table.
type memBudgetStore struct {
	mu      sync.Mutex
	budgets map[models.BudgetKey]models.Budget

	// raceOnCreate simulates a concurrent insert landing between the
	// service's read and its create.
	raceOnCreate *models.Budget
	failCreateAt map[models.BudgetKey]error
}

func newMemBudgetStore(seed ...models.Budget) *memBudgetStore {
	s := &memBudgetStore{budgets: map[models.BudgetKey]models.Budget{}}
	for _, b := range seed {
		s.budgets[b.Key()] = b
	}
	return s
}

func (s *memBudgetStore) GetBudgetByMonth(_ context.Context, key models.BudgetKey) (*models.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[key]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &b, nil
}

func (s *memBudgetStore) ListBudgets(_ context.Context, userID uuid.UUID, year *int) ([]models.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Budget
	for _, b := range s.budgets {
		if b.UserID != userID || (year != nil && b.Year != *year) {
			continue
		}
		out = append(out, b)
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *memBudgetStore) GetRecurringTemplate(_ context.Context, userID uuid.UUID) (*models.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Budget
	for _, b := range s.budgets {
		if b.UserID == userID && b.IsRecurring {
			out = append(out, b)
		}
	}
	if len(out) == 0 {
		return nil, models.ErrNotFound
	}
	sortNewestFirst(out)
	return &out[0], nil
}

func (s *memBudgetStore) CreateBudget(_ context.Context, b *models.Budget) (*models.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.raceOnCreate != nil {
		s.budgets[s.raceOnCreate.Key()] = *s.raceOnCreate
		s.raceOnCreate = nil
	}
	if err := s.failCreateAt[b.Key()]; err != nil {
		return nil, err
	}
	if _, ok := s.budgets[b.Key()]; ok {
		return nil, models.ErrConflict
	}
	created := *b
	created.ID = uuid.New()
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	s.budgets[b.Key()] = created
	return &created, nil
}

func (s *memBudgetStore) UpdateBudget(_ context.Context, key models.BudgetKey, patch models.BudgetPatch) (*models.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[key]
	if !ok {
		return nil, models.ErrNotFound
	}
	v := patch.Apply(b.Values())
	b.MonthlyIncome = v.MonthlyIncome
	b.ExpensesPercentage = v.ExpensesPercentage
	b.InvestmentsPercentage = v.InvestmentsPercentage
	b.SavingsPercentage = v.SavingsPercentage
	b.OtherPercentage = v.OtherPercentage
	b.IsRecurring = v.IsRecurring
	b.UpdatedAt = time.Now()
	s.budgets[key] = b
	return &b, nil
}

func (s *memBudgetStore) DeleteBudget(_ context.Context, key models.BudgetKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.budgets[key]; !ok {
		return models.ErrNotFound
	}
	delete(s.budgets, key)
	return nil
}

func (s *memBudgetStore) ListUsersWithRecurringTemplate(_ context.Context) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[uuid.UUID]bool{}
	var out []uuid.UUID
	for _, b := range s.budgets {
		if b.IsRecurring && !seen[b.UserID] {
			seen[b.UserID] = true
			out = append(out, b.UserID)
		}
	}
	return out, nil
}

func (s *memBudgetStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.budgets)
}

func sortNewestFirst(bs []models.Budget) {
	sort.Slice(bs, func(i, j int) bool {
		if bs[i].Year != bs[j].Year {
			return bs[i].Year > bs[j].Year
		}
		return bs[i].Month > bs[j].Month
	})
}
