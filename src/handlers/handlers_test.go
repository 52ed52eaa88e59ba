package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tally-server/src/geocode"
	"tally-server/src/middleware"
	"tally-server/src/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var testUser = uuid.MustParse("6f1c2a9e-3d4b-4c5a-9e8f-0a1b2c3d4e5f")

// serve routes a single request through a chi router so URL params resolve.
func serve(t *testing.T, method, pattern, target, body string, h http.HandlerFunc, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Method(method, pattern, h)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if authed {
		req = req.WithContext(middleware.WithUserID(req.Context(), testUser))
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	decodeBody(t, rr, &body)
	return body["error"]
}

type fakeBudgets struct {
	budgets map[models.BudgetKey]*models.Budget
	err     error

	lastUpsert *models.BudgetPatch
	lastKey    models.BudgetKey
	copied     []models.MonthRef
	created    bool
}

func newFakeBudgets() *fakeBudgets {
	return &fakeBudgets{budgets: make(map[models.BudgetKey]*models.Budget)}
}

func (f *fakeBudgets) Get(_ context.Context, key models.BudgetKey) (*models.Budget, error) {
	f.lastKey = key
	if f.err != nil {
		return nil, f.err
	}
	b, ok := f.budgets[key]
	if !ok {
		return nil, models.ErrNotFound
	}
	return b, nil
}

func (f *fakeBudgets) GetCurrent(ctx context.Context, userID uuid.UUID, now time.Time) (*models.Budget, error) {
	month, year := int(now.Month()), now.Year()
	return f.Get(ctx, models.BudgetKey{UserID: userID, Month: month, Year: year})
}

func (f *fakeBudgets) List(_ context.Context, userID uuid.UUID, year *int) ([]models.Budget, error) {
	var out []models.Budget
	for k, b := range f.budgets {
		if k.UserID == userID && (year == nil || k.Year == *year) {
			out = append(out, *b)
		}
	}
	return out, f.err
}

func (f *fakeBudgets) GetOrCreate(ctx context.Context, key models.BudgetKey) (*models.Budget, bool, error) {
	b, err := f.Get(ctx, key)
	return b, f.created, err
}

func (f *fakeBudgets) Upsert(_ context.Context, key models.BudgetKey, patch models.BudgetPatch) (*models.Budget, bool, error) {
	f.lastKey, f.lastUpsert = key, &patch
	if f.err != nil {
		return nil, false, f.err
	}
	b := &models.Budget{ID: uuid.New(), UserID: key.UserID, Month: key.Month, Year: key.Year}
	b.MonthlyIncome = *patch.MonthlyIncome
	b.ExpensesPercentage = *patch.ExpensesPercentage
	b.InvestmentsPercentage = *patch.InvestmentsPercentage
	b.SavingsPercentage = *patch.SavingsPercentage
	b.OtherPercentage = *patch.OtherPercentage
	b.IsRecurring = *patch.IsRecurring
	f.budgets[key] = b
	return b, true, nil
}

func (f *fakeBudgets) Update(_ context.Context, key models.BudgetKey, patch models.BudgetPatch) (*models.Budget, error) {
	f.lastKey = key
	if f.err != nil {
		return nil, f.err
	}
	b, ok := f.budgets[key]
	if !ok {
		return nil, models.ErrNotFound
	}
	if patch.MonthlyIncome != nil {
		b.MonthlyIncome = *patch.MonthlyIncome
	}
	return b, nil
}

func (f *fakeBudgets) CopyToMonths(_ context.Context, userID uuid.UUID, source models.MonthRef, targets []models.MonthRef) ([]models.Budget, error) {
	f.copied = targets
	if f.err != nil {
		return nil, f.err
	}
	src, ok := f.budgets[models.BudgetKey{UserID: userID, Month: source.Month, Year: source.Year}]
	if !ok {
		return nil, models.ErrNotFound
	}
	var out []models.Budget
	for _, t := range targets {
		b := *src
		b.Month, b.Year, b.IsRecurring = t.Month, t.Year, false
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeBudgets) Delete(_ context.Context, key models.BudgetKey) error {
	f.lastKey = key
	delete(f.budgets, key)
	return f.err
}

func (f *fakeBudgets) seed(month, year int, income string) *models.Budget {
	b := &models.Budget{
		ID:                    uuid.New(),
		UserID:                testUser,
		Month:                 month,
		Year:                  year,
		MonthlyIncome:         decimal.RequireFromString(income),
		ExpensesPercentage:    decimal.NewFromInt(50),
		InvestmentsPercentage: decimal.NewFromInt(20),
		SavingsPercentage:     decimal.NewFromInt(20),
		OtherPercentage:       decimal.NewFromInt(10),
	}
	f.budgets[b.Key()] = b
	return b
}

type fakeGeocoder struct {
	places []models.Place
	err    error
	calls  int
}

func (g *fakeGeocoder) Search(context.Context, string) ([]models.Place, error) {
	g.calls++
	return g.places, g.err
}

func (g *fakeGeocoder) Reverse(context.Context, float64, float64) (*models.Place, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	if len(g.places) == 0 {
		return nil, nil
	}
	return &g.places[0], nil
}

var _ Geocoder = (*geocode.Client)(nil)
