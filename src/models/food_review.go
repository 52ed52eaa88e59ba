package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type FoodReview struct {
	ID            uuid.UUID           `json:"id"`
	UserID        uuid.UUID           `json:"user_id"`
	PlaceName     string              `json:"place_name"`
	PlaceAddress  *string             `json:"place_address"`
	Latitude      decimal.NullDecimal `json:"latitude"`
	Longitude     decimal.NullDecimal `json:"longitude"`
	GooglePlaceID *string             `json:"google_place_id"`
	OverallRating decimal.Decimal     `json:"overall_rating"`
	Notes         *string             `json:"notes"`
	VisitDate     Date                `json:"visit_date"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	Dishes        []Dish              `json:"dishes"`
	Ratings       []Rating            `json:"ratings"`
	Photos        []Photo             `json:"photos"`
}

type Dish struct {
	ID        uuid.UUID           `json:"id"`
	ReviewID  uuid.UUID           `json:"review_id"`
	Name      string              `json:"name"`
	Price     decimal.Decimal     `json:"price"`
	Notes     *string             `json:"notes"`
	Rating    decimal.NullDecimal `json:"rating"`
	ExpenseID uuid.NullUUID       `json:"expense_id"`
	CreatedAt time.Time           `json:"created_at"`
}

type Rating struct {
	ID       uuid.UUID       `json:"id"`
	ReviewID uuid.UUID       `json:"review_id"`
	Category string          `json:"category"`
	Rating   decimal.Decimal `json:"rating"`
}

type Photo struct {
	ID        uuid.UUID `json:"id"`
	ReviewID  uuid.UUID `json:"review_id"`
	URL       string    `json:"url"`
	Caption   *string   `json:"caption"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateDishInput struct {
	Name          string              `json:"name"`
	Price         decimal.Decimal     `json:"price"`
	Notes         *string             `json:"notes"`
	Rating        decimal.NullDecimal `json:"rating"`
	CreateExpense bool                `json:"create_expense"`
}

type CreateRatingInput struct {
	Category string          `json:"category"`
	Rating   decimal.Decimal `json:"rating"`
}

// BillAdjustments describe how the dishes subtotal turns into what the user paid.
type BillAdjustments struct {
	ApplyGST           bool `json:"apply_gst"`
	ApplyServiceCharge bool `json:"apply_service_charge"`
	SplitBill          bool `json:"split_bill"`
	NumberOfPeople     int  `json:"number_of_people"`
}

type CreateFoodReviewInput struct {
	PlaceName       string              `json:"place_name"`
	PlaceAddress    *string             `json:"place_address"`
	Latitude        decimal.NullDecimal `json:"latitude"`
	Longitude       decimal.NullDecimal `json:"longitude"`
	GooglePlaceID   *string             `json:"google_place_id"`
	OverallRating   decimal.Decimal     `json:"overall_rating"`
	Notes           *string             `json:"notes"`
	VisitDate       Date                `json:"visit_date"`
	Dishes          []CreateDishInput   `json:"dishes"`
	Ratings         []CreateRatingInput `json:"ratings"`
	Photos          []string            `json:"photos"`
	BillAdjustments *BillAdjustments    `json:"bill_adjustments"`
}

type FoodReviewPatch struct {
	PlaceName     *string          `json:"place_name"`
	PlaceAddress  *string          `json:"place_address"`
	Latitude      *decimal.Decimal `json:"latitude"`
	Longitude     *decimal.Decimal `json:"longitude"`
	GooglePlaceID *string          `json:"google_place_id"`
	OverallRating *decimal.Decimal `json:"overall_rating"`
	Notes         *string          `json:"notes"`
	VisitDate     *Date            `json:"visit_date"`
}

func (p FoodReviewPatch) IsEmpty() bool {
	return p.PlaceName == nil && p.PlaceAddress == nil && p.Latitude == nil && p.Longitude == nil &&
		p.GooglePlaceID == nil && p.OverallRating == nil && p.Notes == nil && p.VisitDate == nil
}

var DefaultRatingCategories = []string{
	"Food Quality",
	"Service",
	"Ambiance",
	"Value for Money",
	"Cleanliness",
}
