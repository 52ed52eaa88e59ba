package handlers

import (
	"context"
	"net/http"

	"tally-server/src/models"

	"github.com/google/uuid"
)

type FoodReviewManager interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.FoodReview, error)
	Get(ctx context.Context, userID, reviewID uuid.UUID) (*models.FoodReview, error)
	Create(ctx context.Context, userID uuid.UUID, in models.CreateFoodReviewInput) (*models.FoodReview, error)
	Update(ctx context.Context, userID, reviewID uuid.UUID, patch models.FoodReviewPatch) (*models.FoodReview, error)
	Delete(ctx context.Context, userID, reviewID uuid.UUID) error
	AddDish(ctx context.Context, userID, reviewID uuid.UUID, in models.CreateDishInput) (*models.Dish, error)
	AddPhotos(ctx context.Context, userID, reviewID uuid.UUID, urls []string) ([]models.Photo, error)
	DeletePhoto(ctx context.Context, userID, photoID uuid.UUID) error
}

type addPhotosRequest struct {
	PhotoURLs []string `json:"photo_urls"`
}

func ListFoodReviews(reviews FoodReviewManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		list, err := reviews.List(r.Context(), userID)
		if err != nil {
			writeError(w, r, err, "fetch food reviews", "Food reviews")
			return
		}
		if list == nil {
			list = []models.FoodReview{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func GetFoodReview(reviews FoodReviewManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err, "fetch food review", "Food review")
			return
		}
		review, err := reviews.Get(r.Context(), userID, id)
		if err != nil {
			writeError(w, r, err, "fetch food review", "Food review")
			return
		}
		writeJSON(w, http.StatusOK, review)
	}
}

// CreateFoodReview stores a review with its dishes, ratings and photos, and
// the bill expense when one is requested.
func CreateFoodReview(reviews FoodReviewManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		var in models.CreateFoodReviewInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, err, "create food review", "Food review")
			return
		}
		review, err := reviews.Create(r.Context(), userID, in)
		if err != nil {
			writeError(w, r, err, "create food review", "Food review")
			return
		}
		writeJSON(w, http.StatusCreated, review)
	}
}

func UpdateFoodReview(reviews FoodReviewManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err, "update food review", "Food review")
			return
		}
		var patch models.FoodReviewPatch
		if err := decodeJSON(w, r, &patch); err != nil {
			writeError(w, r, err, "update food review", "Food review")
			return
		}
		review, err := reviews.Update(r.Context(), userID, id, patch)
		if err != nil {
			writeError(w, r, err, "update food review", "Food review")
			return
		}
		writeJSON(w, http.StatusOK, review)
	}
}

func DeleteFoodReview(reviews FoodReviewManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err, "delete food review", "Food review")
			return
		}
		if err := reviews.Delete(r.Context(), userID, id); err != nil {
			writeError(w, r, err, "delete food review", "Food review")
			return
		}
		writeJSON(w, http.StatusOK, successBody())
	}
}

func AddDish(reviews FoodReviewManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err, "add dish", "Food review")
			return
		}
		var in models.CreateDishInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, err, "add dish", "Food review")
			return
		}
		dish, err := reviews.AddDish(r.Context(), userID, id, in)
		if err != nil {
			writeError(w, r, err, "add dish", "Food review")
			return
		}
		writeJSON(w, http.StatusCreated, dish)
	}
}

func AddPhotos(reviews FoodReviewManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err, "add photos", "Food review")
			return
		}
		var req addPhotosRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, "add photos", "Food review")
			return
		}
		photos, err := reviews.AddPhotos(r.Context(), userID, id, req.PhotoURLs)
		if err != nil {
			writeError(w, r, err, "add photos", "Food review")
			return
		}
		writeJSON(w, http.StatusCreated, photos)
	}
}

func DeletePhoto(reviews FoodReviewManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		id, err := pathID(r, "photo_id")
		if err != nil {
			writeError(w, r, err, "delete photo", "Photo")
			return
		}
		if err := reviews.DeletePhoto(r.Context(), userID, id); err != nil {
			writeError(w, r, err, "delete photo", "Photo")
			return
		}
		writeJSON(w, http.StatusOK, successBody())
	}
}
