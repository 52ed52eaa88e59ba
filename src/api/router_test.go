package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tally-server/src/handlers"
	"tally-server/src/logging"
	"tally-server/src/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const testSecret = "router-test-secret-with-enough-length-123"

type stubBudgets struct {
	handlers.BudgetManager
	gotKey models.BudgetKey
}

func (s *stubBudgets) Get(_ context.Context, key models.BudgetKey) (*models.Budget, error) {
	s.gotKey = key
	return &models.Budget{
		UserID: key.UserID, Month: key.Month, Year: key.Year,
		MonthlyIncome:      decimal.NewFromInt(1000),
		ExpensesPercentage: decimal.NewFromInt(100),
	}, nil
}

func token(t *testing.T, sub string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   sub,
		Audience:  jwt.ClaimStrings{"authenticated"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func newTestRouter(budgets handlers.BudgetManager, demo bool) http.Handler {
	return NewRouter(Deps{
		Budgets:        budgets,
		Logger:         logging.Discard(),
		JWTSecret:      testSecret,
		JWTAudience:    "authenticated",
		AllowedOrigins: []string{"http://localhost:3000"},
		DemoMode:       demo,
	})
}

func TestHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter(&stubBudgets{}, false).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("health = %d %q", rr.Code, rr.Body.String())
	}
}

func TestProtectedRoutes(t *testing.T) {
	user := uuid.New()
	budgets := &stubBudgets{}
	router := newTestRouter(budgets, false)

	tests := []struct {
		name       string
		auth       string
		wantStatus int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"non uuid subject", "Bearer " + token(t, "someone"), http.StatusUnauthorized},
		{"valid", "Bearer " + token(t, user.String()), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/budget?month=3&year=2024", nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rr.Code, tt.wantStatus, rr.Body.String())
			}
		})
	}
	if budgets.gotKey != (models.BudgetKey{UserID: user, Month: 3, Year: 2024}) {
		t.Errorf("handler saw key %+v", budgets.gotKey)
	}
}

func TestDemoModeBlocksWrites(t *testing.T) {
	router := newTestRouter(&stubBudgets{}, true)
	req := httptest.NewRequest(http.MethodPost, "/api/budget", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer "+token(t, uuid.NewString()))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rr.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter(&stubBudgets{}, false).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestAdminRoutesRequireServiceRole(t *testing.T) {
	router := newTestRouter(&stubBudgets{}, false)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/cache/geocode/clear", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, uuid.NewString()))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rr.Code)
	}
}
