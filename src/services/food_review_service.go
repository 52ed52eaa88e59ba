package services

import (
	"context"
	"fmt"
	"strings"

	"tally-server/src/logging"
	"tally-server/src/models"
	"tally-server/src/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	gstRate           = decimal.RequireFromString("1.09")
	serviceChargeRate = decimal.RequireFromString("1.10")
	maxRating         = decimal.NewFromInt(5)
	ratingStep        = decimal.RequireFromString("0.5")
)

type FoodReviewStore interface {
	CreateFoodReview(ctx context.Context, userID uuid.UUID, in models.CreateFoodReviewInput, billExpense *models.Expense) (*models.FoodReview, error)
	GetFoodReview(ctx context.Context, userID, reviewID uuid.UUID) (*models.FoodReview, error)
	ListFoodReviews(ctx context.Context, userID uuid.UUID) ([]models.FoodReview, error)
	UpdateFoodReview(ctx context.Context, userID, reviewID uuid.UUID, patch models.FoodReviewPatch) (*models.FoodReview, error)
	DeleteFoodReview(ctx context.Context, userID, reviewID uuid.UUID) error
	AddDish(ctx context.Context, userID, reviewID uuid.UUID, in models.CreateDishInput, newExpense func(*models.FoodReview) *models.Expense) (*models.Dish, error)
	AddPhotos(ctx context.Context, userID, reviewID uuid.UUID, urls []string) ([]models.Photo, error)
	DeletePhoto(ctx context.Context, userID, photoID uuid.UUID) error
}

// ValidateRating accepts 0 to 5 in steps of 0.5.
func ValidateRating(r decimal.Decimal) error {
	if r.IsNegative() || r.GreaterThan(maxRating) || !r.Mod(ratingStep).IsZero() {
		return models.ErrInvalidRating
	}
	return nil
}

// BillTotal is what one person paid: the dishes subtotal with 9% GST, then a
// 10% service charge, then divided between the diners, rounded to cents.
func BillTotal(dishes []models.CreateDishInput, adj models.BillAdjustments) decimal.Decimal {
	total := decimal.Zero
	for _, d := range dishes {
		total = total.Add(d.Price)
	}
	if adj.ApplyGST {
		total = total.Mul(gstRate)
	}
	if adj.ApplyServiceCharge {
		total = total.Mul(serviceChargeRate)
	}
	if adj.SplitBill && adj.NumberOfPeople > 1 {
		total = total.Div(decimal.NewFromInt(int64(adj.NumberOfPeople)))
	}
	return total.Round(2)
}

type FoodReviewService struct {
	store  FoodReviewStore
	logger *logging.Logger
}

func NewFoodReviewService(store FoodReviewStore, logger *logging.Logger) *FoodReviewService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &FoodReviewService{store: store, logger: logger.WithComponent(logging.ComponentFoodReview)}
}

func (s *FoodReviewService) List(ctx context.Context, userID uuid.UUID) ([]models.FoodReview, error) {
	return s.store.ListFoodReviews(ctx, userID)
}

func (s *FoodReviewService) Get(ctx context.Context, userID, reviewID uuid.UUID) (*models.FoodReview, error) {
	return s.store.GetFoodReview(ctx, userID, reviewID)
}

// Create stores the review and its children. When a dish asks for an expense
// and bill adjustments are supplied, one Food & Dining expense for the whole
// bill is created in the same transaction.
func (s *FoodReviewService) Create(ctx context.Context, userID uuid.UUID, in models.CreateFoodReviewInput) (*models.FoodReview, error) {
	if err := validateReviewInput(&in); err != nil {
		return nil, err
	}

	bill := billExpense(userID, in)
	if bill != nil && !bill.Amount.IsPositive() {
		return nil, models.ErrInvalidAmount
	}
	review, err := s.store.CreateFoodReview(ctx, userID, in, bill)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "created food review",
		logging.FieldUserID, userID,
		"review_id", review.ID,
		"dishes", len(review.Dishes),
		"bill_expense", bill != nil,
	)
	return review, nil
}

func billExpense(userID uuid.UUID, in models.CreateFoodReviewInput) *models.Expense {
	if in.BillAdjustments == nil {
		return nil
	}
	wanted := false
	for _, d := range in.Dishes {
		if d.CreateExpense {
			wanted = true
			break
		}
	}
	if !wanted {
		return nil
	}
	adj := *in.BillAdjustments
	notes := "Food review expense"
	if adj.SplitBill {
		notes = fmt.Sprintf("Food review expense (split %d ways)", adj.NumberOfPeople)
	}
	return &models.Expense{
		UserID:      userID,
		Amount:      BillTotal(in.Dishes, adj),
		Description: in.PlaceName,
		Category:    models.CategoryFoodAndDining,
		Date:        in.VisitDate,
		Notes:       &notes,
	}
}

func validateReviewInput(in *models.CreateFoodReviewInput) error {
	in.PlaceName = strings.TrimSpace(in.PlaceName)
	if in.PlaceName == "" {
		return models.ErrMissingFields
	}
	if in.VisitDate.IsZero() {
		in.VisitDate = models.Today()
	}
	if err := ValidateRating(in.OverallRating); err != nil {
		return err
	}
	for _, d := range in.Dishes {
		if err := validateDish(d); err != nil {
			return err
		}
	}
	for _, r := range in.Ratings {
		if strings.TrimSpace(r.Category) == "" {
			return models.ErrMissingFields
		}
		if err := ValidateRating(r.Rating); err != nil {
			return err
		}
	}
	if err := validatePhotoURLs(in.Photos); err != nil {
		return err
	}
	if adj := in.BillAdjustments; adj != nil {
		if adj.SplitBill && adj.NumberOfPeople < 1 {
			return models.ErrInvalidPeople
		}
	}
	return nil
}

func validateDish(d models.CreateDishInput) error {
	if strings.TrimSpace(d.Name) == "" {
		return models.ErrMissingFields
	}
	if d.Price.IsNegative() {
		return models.ErrNegativeValue
	}
	if d.Rating.Valid {
		if err := ValidateRating(d.Rating.Decimal); err != nil {
			return err
		}
	}
	return nil
}

func (s *FoodReviewService) Update(ctx context.Context, userID, reviewID uuid.UUID, patch models.FoodReviewPatch) (*models.FoodReview, error) {
	if patch.IsEmpty() {
		return nil, models.ErrEmptyPatch
	}
	if patch.PlaceName != nil && strings.TrimSpace(*patch.PlaceName) == "" {
		return nil, models.ErrMissingFields
	}
	if patch.OverallRating != nil {
		if err := ValidateRating(*patch.OverallRating); err != nil {
			return nil, err
		}
	}
	return s.store.UpdateFoodReview(ctx, userID, reviewID, patch)
}

func (s *FoodReviewService) Delete(ctx context.Context, userID, reviewID uuid.UUID) error {
	return s.store.DeleteFoodReview(ctx, userID, reviewID)
}

// AddDish appends a dish to a review. With create_expense the dish price is
// booked as its own Food & Dining expense.
func (s *FoodReviewService) AddDish(ctx context.Context, userID, reviewID uuid.UUID, in models.CreateDishInput) (*models.Dish, error) {
	if err := validateDish(in); err != nil {
		return nil, err
	}
	if in.CreateExpense && !in.Price.IsPositive() {
		return nil, models.ErrInvalidAmount
	}
	newExpense := func(review *models.FoodReview) *models.Expense {
		notes := "From food review at " + review.PlaceName
		return &models.Expense{
			UserID:      userID,
			Amount:      in.Price,
			Description: review.PlaceName + " - " + in.Name,
			Category:    models.CategoryFoodAndDining,
			Date:        review.VisitDate,
			Notes:       &notes,
		}
	}
	return s.store.AddDish(ctx, userID, reviewID, in, newExpense)
}

func (s *FoodReviewService) AddPhotos(ctx context.Context, userID, reviewID uuid.UUID, urls []string) ([]models.Photo, error) {
	if len(urls) == 0 {
		return nil, models.ErrMissingFields
	}
	if err := validatePhotoURLs(urls); err != nil {
		return nil, err
	}
	return s.store.AddPhotos(ctx, userID, reviewID, urls)
}

func (s *FoodReviewService) DeletePhoto(ctx context.Context, userID, photoID uuid.UUID) error {
	return s.store.DeletePhoto(ctx, userID, photoID)
}

func validatePhotoURLs(urls []string) error {
	for _, u := range urls {
		if !util.ValidateURL(u) {
			return models.NewValidationError("invalid photo url %q", u)
		}
	}
	return nil
}
