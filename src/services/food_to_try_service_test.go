package services

import (
	"context"
	"errors"
	"testing"

	"tally-server/src/models"

	"github.com/google/uuid"
)

type memFoodToTryStore struct {
	items        []models.FoodToTry
	lastCuisines []string
}

func (s *memFoodToTryStore) CreateFoodToTry(_ context.Context, userID uuid.UUID, in models.FoodToTryInput) (*models.FoodToTry, error) {
	item := models.FoodToTry{ID: uuid.New(), UserID: userID, Name: *in.Name, Cuisine: *in.Cuisine, Status: models.StatusToTry}
	if in.Status != nil {
		item.Status = *in.Status
	}
	s.items = append(s.items, item)
	return &item, nil
}

func (s *memFoodToTryStore) GetFoodToTry(_ context.Context, userID, id uuid.UUID) (*models.FoodToTry, error) {
	for _, it := range s.items {
		if it.ID == id && it.UserID == userID {
			return &it, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *memFoodToTryStore) ListFoodToTry(_ context.Context, userID uuid.UUID, status *models.FoodStatus, cuisines []string) ([]models.FoodToTry, error) {
	s.lastCuisines = cuisines
	var out []models.FoodToTry
	for _, it := range s.items {
		if it.UserID != userID || (status != nil && it.Status != *status) {
			continue
		}
		if len(cuisines) > 0 && !contains(cuisines, it.Cuisine) {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (s *memFoodToTryStore) UpdateFoodToTry(_ context.Context, userID, id uuid.UUID, in models.FoodToTryInput) (*models.FoodToTry, error) {
	for i, it := range s.items {
		if it.ID == id && it.UserID == userID {
			if in.Status != nil {
				it.Status = *in.Status
			}
			s.items[i] = it
			return &it, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *memFoodToTryStore) DeleteFoodToTry(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func strp(s string) *string { return &s }

func TestFoodToTryCreate(t *testing.T) {
	store := &memFoodToTryStore{}
	svc := NewFoodToTryService(store, nil)
	user := uuid.New()

	item, err := svc.Create(context.Background(), user, models.FoodToTryInput{Name: strp("Ramen Bar"), Cuisine: strp("Japanese")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if item.Status != models.StatusToTry {
		t.Fatalf("status = %q, want to_try", item.Status)
	}

	if _, err := svc.Create(context.Background(), user, models.FoodToTryInput{Name: strp("No Cuisine")}); !errors.Is(err, models.ErrMissingFields) {
		t.Fatalf("err = %v, want ErrMissingFields", err)
	}
	bad := models.FoodStatus("eaten")
	if _, err := svc.Create(context.Background(), user, models.FoodToTryInput{Name: strp("X"), Cuisine: strp("Y"), Status: &bad}); !errors.Is(err, models.ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
}

func TestFoodToTryUpdateValidation(t *testing.T) {
	svc := NewFoodToTryService(&memFoodToTryStore{}, nil)
	if _, err := svc.Update(context.Background(), uuid.New(), uuid.New(), models.FoodToTryInput{}); !errors.Is(err, models.ErrEmptyPatch) {
		t.Fatalf("err = %v, want ErrEmptyPatch", err)
	}
	if _, err := svc.Update(context.Background(), uuid.New(), uuid.New(), models.FoodToTryInput{Name: strp(" ")}); !errors.Is(err, models.ErrMissingFields) {
		t.Fatalf("err = %v, want ErrMissingFields", err)
	}
}

func TestRoulette(t *testing.T) {
	user := uuid.New()
	store := &memFoodToTryStore{items: []models.FoodToTry{
		{ID: uuid.New(), UserID: user, Name: "Ramen Bar", Cuisine: "Japanese", Status: models.StatusToTry},
		{ID: uuid.New(), UserID: user, Name: "Sushi Go", Cuisine: "Japanese", Status: models.StatusVisited},
		{ID: uuid.New(), UserID: user, Name: "Taco Stand", Cuisine: "Mexican", Status: models.StatusToTry},
	}}
	svc := NewFoodToTryService(store, nil)
	svc.pick = func(n int) int { return n - 1 }

	got, err := svc.Roulette(context.Background(), user, nil)
	if err != nil {
		t.Fatalf("Roulette: %v", err)
	}
	if got.Name != "Taco Stand" {
		t.Fatalf("picked %q", got.Name)
	}

	got, err = svc.Roulette(context.Background(), user, []string{"Japanese"})
	if err != nil {
		t.Fatalf("Roulette: %v", err)
	}
	if got.Name != "Ramen Bar" {
		t.Fatalf("picked %q, visited places must be skipped", got.Name)
	}

	if _, err := svc.Roulette(context.Background(), user, []string{"Korean"}); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
