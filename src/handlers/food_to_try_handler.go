package handlers

import (
	"context"
	"net/http"
	"strings"

	"tally-server/src/models"

	"github.com/google/uuid"
)

type FoodToTryManager interface {
	List(ctx context.Context, userID uuid.UUID, status *models.FoodStatus) ([]models.FoodToTry, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.FoodToTry, error)
	Create(ctx context.Context, userID uuid.UUID, in models.FoodToTryInput) (*models.FoodToTry, error)
	Update(ctx context.Context, userID, id uuid.UUID, in models.FoodToTryInput) (*models.FoodToTry, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Roulette(ctx context.Context, userID uuid.UUID, cuisines []string) (*models.FoodToTry, error)
}

// ListFoodToTry accepts an optional ?status= filter.
func ListFoodToTry(items FoodToTryManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		var status *models.FoodStatus
		if s := strings.TrimSpace(r.URL.Query().Get("status")); s != "" {
			fs := models.FoodStatus(s)
			if !fs.Valid() {
				writeError(w, r, models.ErrInvalidStatus, "fetch food to try", "Food to try")
				return
			}
			status = &fs
		}
		list, err := items.List(r.Context(), userID, status)
		if err != nil {
			writeError(w, r, err, "fetch food to try", "Food to try")
			return
		}
		if list == nil {
			list = []models.FoodToTry{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func GetFoodToTry(items FoodToTryManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err, "fetch food to try", "Food to try")
			return
		}
		item, err := items.Get(r.Context(), userID, id)
		if err != nil {
			writeError(w, r, err, "fetch food to try", "Food to try")
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func CreateFoodToTry(items FoodToTryManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		var in models.FoodToTryInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, err, "create food to try", "Food to try")
			return
		}
		item, err := items.Create(r.Context(), userID, in)
		if err != nil {
			writeError(w, r, err, "create food to try", "Food to try")
			return
		}
		writeJSON(w, http.StatusCreated, item)
	}
}

func UpdateFoodToTry(items FoodToTryManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err, "update food to try", "Food to try")
			return
		}
		var in models.FoodToTryInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, err, "update food to try", "Food to try")
			return
		}
		item, err := items.Update(r.Context(), userID, id, in)
		if err != nil {
			writeError(w, r, err, "update food to try", "Food to try")
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func DeleteFoodToTry(items FoodToTryManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err, "delete food to try", "Food to try")
			return
		}
		if err := items.Delete(r.Context(), userID, id); err != nil {
			writeError(w, r, err, "delete food to try", "Food to try")
			return
		}
		writeJSON(w, http.StatusOK, successBody())
	}
}

// FoodRoulette picks a random to_try item, optionally limited by repeated
// ?cuisine= parameters.
func FoodRoulette(items FoodToTryManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		var cuisines []string
		for _, c := range r.URL.Query()["cuisine"] {
			if c = strings.TrimSpace(c); c != "" {
				cuisines = append(cuisines, c)
			}
		}
		item, err := items.Roulette(r.Context(), userID, cuisines)
		if err != nil {
			writeError(w, r, err, "spin roulette", "Food to try")
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}
