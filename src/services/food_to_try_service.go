package services

import (
	"context"
	"math/rand/v2"
	"strings"

	"tally-server/src/logging"
	"tally-server/src/models"
	"tally-server/src/util"

	"github.com/google/uuid"
)

type FoodToTryStore interface {
	CreateFoodToTry(ctx context.Context, userID uuid.UUID, in models.FoodToTryInput) (*models.FoodToTry, error)
	GetFoodToTry(ctx context.Context, userID, id uuid.UUID) (*models.FoodToTry, error)
	ListFoodToTry(ctx context.Context, userID uuid.UUID, status *models.FoodStatus, cuisines []string) ([]models.FoodToTry, error)
	UpdateFoodToTry(ctx context.Context, userID, id uuid.UUID, in models.FoodToTryInput) (*models.FoodToTry, error)
	DeleteFoodToTry(ctx context.Context, userID, id uuid.UUID) error
}

type FoodToTryService struct {
	store  FoodToTryStore
	logger *logging.Logger
	pick   func(n int) int
}

func NewFoodToTryService(store FoodToTryStore, logger *logging.Logger) *FoodToTryService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &FoodToTryService{
		store:  store,
		logger: logger.WithComponent(logging.ComponentFoodToTry),
		pick:   rand.IntN,
	}
}

func (s *FoodToTryService) List(ctx context.Context, userID uuid.UUID, status *models.FoodStatus) ([]models.FoodToTry, error) {
	if status != nil && !status.Valid() {
		return nil, models.ErrInvalidStatus
	}
	return s.store.ListFoodToTry(ctx, userID, status, nil)
}

func (s *FoodToTryService) Get(ctx context.Context, userID, id uuid.UUID) (*models.FoodToTry, error) {
	return s.store.GetFoodToTry(ctx, userID, id)
}

func (s *FoodToTryService) Create(ctx context.Context, userID uuid.UUID, in models.FoodToTryInput) (*models.FoodToTry, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" || in.Cuisine == nil || strings.TrimSpace(*in.Cuisine) == "" {
		return nil, models.ErrMissingFields
	}
	if err := validateFoodToTryInput(in); err != nil {
		return nil, err
	}
	item, err := s.store.CreateFoodToTry(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "created food to try", logging.FieldUserID, userID, "item_id", item.ID)
	return item, nil
}

func (s *FoodToTryService) Update(ctx context.Context, userID, id uuid.UUID, in models.FoodToTryInput) (*models.FoodToTry, error) {
	if in.IsEmpty() {
		return nil, models.ErrEmptyPatch
	}
	if (in.Name != nil && strings.TrimSpace(*in.Name) == "") || (in.Cuisine != nil && strings.TrimSpace(*in.Cuisine) == "") {
		return nil, models.ErrMissingFields
	}
	if err := validateFoodToTryInput(in); err != nil {
		return nil, err
	}
	return s.store.UpdateFoodToTry(ctx, userID, id, in)
}

func (s *FoodToTryService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.store.DeleteFoodToTry(ctx, userID, id)
}

// Roulette picks one random place still marked to_try, optionally limited to
// the given cuisines. It returns models.ErrNotFound when nothing qualifies.
func (s *FoodToTryService) Roulette(ctx context.Context, userID uuid.UUID, cuisines []string) (*models.FoodToTry, error) {
	status := models.StatusToTry
	items, err := s.store.ListFoodToTry(ctx, userID, &status, cuisines)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, models.ErrNotFound
	}
	return &items[s.pick(len(items))], nil
}

func validateFoodToTryInput(in models.FoodToTryInput) error {
	if in.Status != nil && !in.Status.Valid() {
		return models.ErrInvalidStatus
	}
	for field, u := range map[string]*string{"tiktok_url": in.TiktokURL, "video_url": in.VideoURL, "image_url": in.ImageURL} {
		if u != nil && *u != "" && !util.ValidateURL(*u) {
			return models.NewValidationError("%s must be an http or https url", field)
		}
	}
	return nil
}
