package db

import (
	"context"
	"fmt"

	"tally-server/src/db"
	"tally-server/src/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const foodToTryColumns = `id, user_id, name, description, cuisine, location, address, latitude,
	longitude, google_place_id, tiktok_url, video_url, image_url, status, created_at, updated_at`

func scanFoodToTry(row pgx.Row) (*models.FoodToTry, error) {
	var f models.FoodToTry
	err := row.Scan(&f.ID, &f.UserID, &f.Name, &f.Description, &f.Cuisine, &f.Location, &f.Address,
		&f.Latitude, &f.Longitude, &f.GooglePlaceID, &f.TiktokURL, &f.VideoURL, &f.ImageURL, &f.Status,
		&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func CreateFoodToTry(ctx context.Context, q db.DBTX, userID uuid.UUID, in models.FoodToTryInput) (*models.FoodToTry, error) {
	status := models.StatusToTry
	if in.Status != nil {
		status = *in.Status
	}
	query := `
		INSERT INTO food_to_try (user_id, name, description, cuisine, location, address, latitude,
			longitude, google_place_id, tiktok_url, video_url, image_url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + foodToTryColumns
	f, err := scanFoodToTry(q.QueryRow(ctx, query, userID, in.Name, in.Description, in.Cuisine,
		in.Location, in.Address, in.Latitude, in.Longitude, in.GooglePlaceID, in.TiktokURL,
		in.VideoURL, in.ImageURL, status))
	if err != nil {
		return nil, mapErr("create food to try", err)
	}
	return f, nil
}

func GetFoodToTry(ctx context.Context, q db.DBTX, userID, id uuid.UUID) (*models.FoodToTry, error) {
	query := `SELECT ` + foodToTryColumns + ` FROM food_to_try WHERE id = $1 AND user_id = $2`
	f, err := scanFoodToTry(q.QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, mapErr("get food to try", err)
	}
	return f, nil
}

// ListFoodToTry returns the user's wishlist newest first. A nil status or an
// empty cuisine list does not filter.
func ListFoodToTry(ctx context.Context, q db.DBTX, userID uuid.UUID, status *models.FoodStatus, cuisines []string) ([]models.FoodToTry, error) {
	query := `
		SELECT ` + foodToTryColumns + `
		FROM food_to_try
		WHERE user_id = $1
			AND ($2::text IS NULL OR status = $2)
			AND (cardinality($3::text[]) = 0 OR cuisine = ANY($3))
		ORDER BY created_at DESC
	`
	if cuisines == nil {
		cuisines = []string{}
	}
	rows, err := q.Query(ctx, query, userID, status, cuisines)
	if err != nil {
		return nil, mapErr("list food to try", err)
	}
	defer rows.Close()

	items := []models.FoodToTry{}
	for rows.Next() {
		f, err := scanFoodToTry(rows)
		if err != nil {
			return nil, mapErr("scan food to try", err)
		}
		items = append(items, *f)
	}
	return items, rows.Err()
}

func UpdateFoodToTry(ctx context.Context, q db.DBTX, userID, id uuid.UUID, in models.FoodToTryInput) (*models.FoodToTry, error) {
	query := `
		UPDATE food_to_try
		SET name = COALESCE($3, name),
			description = COALESCE($4, description),
			cuisine = COALESCE($5, cuisine),
			location = COALESCE($6, location),
			address = COALESCE($7, address),
			latitude = COALESCE($8, latitude),
			longitude = COALESCE($9, longitude),
			google_place_id = COALESCE($10, google_place_id),
			tiktok_url = COALESCE($11, tiktok_url),
			video_url = COALESCE($12, video_url),
			image_url = COALESCE($13, image_url),
			status = COALESCE($14, status),
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + foodToTryColumns
	f, err := scanFoodToTry(q.QueryRow(ctx, query, id, userID, in.Name, in.Description, in.Cuisine,
		in.Location, in.Address, in.Latitude, in.Longitude, in.GooglePlaceID, in.TiktokURL,
		in.VideoURL, in.ImageURL, in.Status))
	if err != nil {
		return nil, mapErr("update food to try", err)
	}
	return f, nil
}

func DeleteFoodToTry(ctx context.Context, q db.DBTX, userID, id uuid.UUID) error {
	cmd, err := q.Exec(ctx, `DELETE FROM food_to_try WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return mapErr("delete food to try", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("delete food to try: %w", models.ErrNotFound)
	}
	return nil
}
