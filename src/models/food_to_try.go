package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type FoodStatus string

const (
	StatusToTry   FoodStatus = "to_try"
	StatusVisited FoodStatus = "visited"
	StatusSkipped FoodStatus = "skipped"
)

func (s FoodStatus) Valid() bool {
	switch s {
	case StatusToTry, StatusVisited, StatusSkipped:
		return true
	}
	return false
}

type FoodToTry struct {
	ID            uuid.UUID           `json:"id"`
	UserID        uuid.UUID           `json:"user_id"`
	Name          string              `json:"name"`
	Description   *string             `json:"description"`
	Cuisine       string              `json:"cuisine"`
	Location      *string             `json:"location"`
	Address       *string             `json:"address"`
	Latitude      decimal.NullDecimal `json:"latitude"`
	Longitude     decimal.NullDecimal `json:"longitude"`
	GooglePlaceID *string             `json:"google_place_id"`
	TiktokURL     *string             `json:"tiktok_url"`
	VideoURL      *string             `json:"video_url"`
	ImageURL      *string             `json:"image_url"`
	Status        FoodStatus          `json:"status"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// FoodToTryInput is used for both create and partial update; on create Name and
// Cuisine are required and a missing Status becomes to_try.
type FoodToTryInput struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Cuisine       *string          `json:"cuisine"`
	Location      *string          `json:"location"`
	Address       *string          `json:"address"`
	Latitude      *decimal.Decimal `json:"latitude"`
	Longitude     *decimal.Decimal `json:"longitude"`
	GooglePlaceID *string          `json:"google_place_id"`
	TiktokURL     *string          `json:"tiktok_url"`
	VideoURL      *string          `json:"video_url"`
	ImageURL      *string          `json:"image_url"`
	Status        *FoodStatus      `json:"status"`
}

func (in FoodToTryInput) IsEmpty() bool {
	return in.Name == nil && in.Description == nil && in.Cuisine == nil && in.Location == nil &&
		in.Address == nil && in.Latitude == nil && in.Longitude == nil && in.GooglePlaceID == nil &&
		in.TiktokURL == nil && in.VideoURL == nil && in.ImageURL == nil && in.Status == nil
}
