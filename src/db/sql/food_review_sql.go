package db

import (
	"context"
	"fmt"

	"tally-server/src/db"
	"tally-server/src/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reviewColumns = `id, user_id, place_name, place_address, latitude, longitude, google_place_id,
	overall_rating, notes, visit_date, created_at, updated_at`

const dishColumns = `id, review_id, name, price, notes, rating, expense_id, created_at`

func scanReview(row pgx.Row) (*models.FoodReview, error) {
	var r models.FoodReview
	err := row.Scan(&r.ID, &r.UserID, &r.PlaceName, &r.PlaceAddress, &r.Latitude, &r.Longitude,
		&r.GooglePlaceID, &r.OverallRating, &r.Notes, &r.VisitDate, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.Dishes = []models.Dish{}
	r.Ratings = []models.Rating{}
	r.Photos = []models.Photo{}
	return &r, nil
}

func scanDish(row pgx.Row) (*models.Dish, error) {
	var d models.Dish
	err := row.Scan(&d.ID, &d.ReviewID, &d.Name, &d.Price, &d.Notes, &d.Rating, &d.ExpenseID, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateFoodReview inserts a review with its dishes, ratings and photos in one
// transaction. When billExpense is non-nil it is inserted first and linked to
// the first dish flagged create_expense.
func CreateFoodReview(ctx context.Context, pool *pgxpool.Pool, userID uuid.UUID, in models.CreateFoodReviewInput, billExpense *models.Expense) (*models.FoodReview, error) {
	var created *models.FoodReview
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		var expenseID uuid.NullUUID
		if billExpense != nil {
			e, err := CreateExpense(ctx, tx, billExpense)
			if err != nil {
				return err
			}
			expenseID = uuid.NullUUID{UUID: e.ID, Valid: true}
		}

		query := `
			INSERT INTO food_reviews (user_id, place_name, place_address, latitude, longitude,
				google_place_id, overall_rating, notes, visit_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING ` + reviewColumns
		r, err := scanReview(tx.QueryRow(ctx, query, userID, in.PlaceName, in.PlaceAddress,
			in.Latitude, in.Longitude, in.GooglePlaceID, in.OverallRating, in.Notes, in.VisitDate))
		if err != nil {
			return mapErr("create food review", err)
		}

		linked := false
		for _, d := range in.Dishes {
			var link uuid.NullUUID
			if d.CreateExpense && expenseID.Valid && !linked {
				link = expenseID
				linked = true
			}
			dish, err := insertDish(ctx, tx, r.ID, d, link)
			if err != nil {
				return err
			}
			r.Dishes = append(r.Dishes, *dish)
		}

		for _, rt := range in.Ratings {
			var rating models.Rating
			err := tx.QueryRow(ctx, `
				INSERT INTO review_ratings (review_id, category, rating)
				VALUES ($1, $2, $3)
				RETURNING id, review_id, category, rating
			`, r.ID, rt.Category, rt.Rating).Scan(&rating.ID, &rating.ReviewID, &rating.Category, &rating.Rating)
			if err != nil {
				return mapErr("create review rating", err)
			}
			r.Ratings = append(r.Ratings, rating)
		}

		photos, err := insertPhotos(ctx, tx, r.ID, in.Photos)
		if err != nil {
			return err
		}
		r.Photos = photos

		created = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func insertDish(ctx context.Context, q db.DBTX, reviewID uuid.UUID, in models.CreateDishInput, expenseID uuid.NullUUID) (*models.Dish, error) {
	query := `
		INSERT INTO dishes (review_id, name, price, notes, rating, expense_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + dishColumns
	d, err := scanDish(q.QueryRow(ctx, query, reviewID, in.Name, in.Price, in.Notes, in.Rating, expenseID))
	if err != nil {
		return nil, mapErr("create dish", err)
	}
	return d, nil
}

func insertPhotos(ctx context.Context, q db.DBTX, reviewID uuid.UUID, urls []string) ([]models.Photo, error) {
	photos := []models.Photo{}
	for _, url := range urls {
		var p models.Photo
		err := q.QueryRow(ctx, `
			INSERT INTO review_photos (review_id, url)
			VALUES ($1, $2)
			RETURNING id, review_id, url, caption, created_at
		`, reviewID, url).Scan(&p.ID, &p.ReviewID, &p.URL, &p.Caption, &p.CreatedAt)
		if err != nil {
			return nil, mapErr("create review photo", err)
		}
		photos = append(photos, p)
	}
	return photos, nil
}

func GetFoodReview(ctx context.Context, q db.DBTX, userID, reviewID uuid.UUID) (*models.FoodReview, error) {
	query := `SELECT ` + reviewColumns + ` FROM food_reviews WHERE id = $1 AND user_id = $2`
	r, err := scanReview(q.QueryRow(ctx, query, reviewID, userID))
	if err != nil {
		return nil, mapErr("get food review", err)
	}
	reviews := []models.FoodReview{*r}
	if err := loadReviewChildren(ctx, q, reviews); err != nil {
		return nil, err
	}
	return &reviews[0], nil
}

// ListFoodReviews returns the user's reviews by visit date, newest first, with children.
func ListFoodReviews(ctx context.Context, q db.DBTX, userID uuid.UUID) ([]models.FoodReview, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM food_reviews
		WHERE user_id = $1
		ORDER BY visit_date DESC, created_at DESC
	`
	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, mapErr("list food reviews", err)
	}
	defer rows.Close()

	reviews := []models.FoodReview{}
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, mapErr("scan food review", err)
		}
		reviews = append(reviews, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("list food reviews", err)
	}
	if err := loadReviewChildren(ctx, q, reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// loadReviewChildren fills dishes, ratings and photos with one query per table.
func loadReviewChildren(ctx context.Context, q db.DBTX, reviews []models.FoodReview) error {
	if len(reviews) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(reviews))
	index := make(map[uuid.UUID]int, len(reviews))
	for i, r := range reviews {
		ids[i] = r.ID
		index[r.ID] = i
	}

	rows, err := q.Query(ctx, `SELECT `+dishColumns+` FROM dishes WHERE review_id = ANY($1) ORDER BY created_at`, ids)
	if err != nil {
		return mapErr("load dishes", err)
	}
	for rows.Next() {
		d, err := scanDish(rows)
		if err != nil {
			rows.Close()
			return mapErr("scan dish", err)
		}
		i := index[d.ReviewID]
		reviews[i].Dishes = append(reviews[i].Dishes, *d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return mapErr("load dishes", err)
	}

	rows, err = q.Query(ctx, `SELECT id, review_id, category, rating FROM review_ratings WHERE review_id = ANY($1)`, ids)
	if err != nil {
		return mapErr("load ratings", err)
	}
	for rows.Next() {
		var rt models.Rating
		if err := rows.Scan(&rt.ID, &rt.ReviewID, &rt.Category, &rt.Rating); err != nil {
			rows.Close()
			return mapErr("scan rating", err)
		}
		i := index[rt.ReviewID]
		reviews[i].Ratings = append(reviews[i].Ratings, rt)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return mapErr("load ratings", err)
	}

	rows, err = q.Query(ctx, `SELECT id, review_id, url, caption, created_at FROM review_photos WHERE review_id = ANY($1) ORDER BY created_at`, ids)
	if err != nil {
		return mapErr("load photos", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p models.Photo
		if err := rows.Scan(&p.ID, &p.ReviewID, &p.URL, &p.Caption, &p.CreatedAt); err != nil {
			return mapErr("scan photo", err)
		}
		i := index[p.ReviewID]
		reviews[i].Photos = append(reviews[i].Photos, p)
	}
	return rows.Err()
}

func UpdateFoodReview(ctx context.Context, q db.DBTX, userID, reviewID uuid.UUID, patch models.FoodReviewPatch) (*models.FoodReview, error) {
	query := `
		UPDATE food_reviews
		SET place_name = COALESCE($3, place_name),
			place_address = COALESCE($4, place_address),
			latitude = COALESCE($5, latitude),
			longitude = COALESCE($6, longitude),
			google_place_id = COALESCE($7, google_place_id),
			overall_rating = COALESCE($8, overall_rating),
			notes = COALESCE($9, notes),
			visit_date = COALESCE($10, visit_date),
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + reviewColumns
	r, err := scanReview(q.QueryRow(ctx, query, reviewID, userID, patch.PlaceName, patch.PlaceAddress,
		patch.Latitude, patch.Longitude, patch.GooglePlaceID, patch.OverallRating, patch.Notes, patch.VisitDate))
	if err != nil {
		return nil, mapErr("update food review", err)
	}
	reviews := []models.FoodReview{*r}
	if err := loadReviewChildren(ctx, q, reviews); err != nil {
		return nil, err
	}
	return &reviews[0], nil
}

// DeleteFoodReview removes the review; dishes, ratings and photos cascade.
// Expenses created from the review are kept.
func DeleteFoodReview(ctx context.Context, q db.DBTX, userID, reviewID uuid.UUID) error {
	cmd, err := q.Exec(ctx, `DELETE FROM food_reviews WHERE id = $1 AND user_id = $2`, reviewID, userID)
	if err != nil {
		return mapErr("delete food review", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("delete food review: %w", models.ErrNotFound)
	}
	return nil
}

func reviewOwned(ctx context.Context, q db.DBTX, userID, reviewID uuid.UUID) (*models.FoodReview, error) {
	query := `SELECT ` + reviewColumns + ` FROM food_reviews WHERE id = $1 AND user_id = $2`
	r, err := scanReview(q.QueryRow(ctx, query, reviewID, userID))
	if err != nil {
		return nil, mapErr("get food review", err)
	}
	return r, nil
}

// AddDish appends a dish to an owned review. newExpense, when non-nil, is built
// from the review by the caller and inserted in the same transaction.
func AddDish(ctx context.Context, pool *pgxpool.Pool, userID, reviewID uuid.UUID, in models.CreateDishInput, newExpense func(*models.FoodReview) *models.Expense) (*models.Dish, error) {
	var created *models.Dish
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		review, err := reviewOwned(ctx, tx, userID, reviewID)
		if err != nil {
			return err
		}
		var link uuid.NullUUID
		if in.CreateExpense && newExpense != nil {
			e, err := CreateExpense(ctx, tx, newExpense(review))
			if err != nil {
				return err
			}
			link = uuid.NullUUID{UUID: e.ID, Valid: true}
		}
		created, err = insertDish(ctx, tx, reviewID, in, link)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func AddPhotos(ctx context.Context, q db.DBTX, userID, reviewID uuid.UUID, urls []string) ([]models.Photo, error) {
	if _, err := reviewOwned(ctx, q, userID, reviewID); err != nil {
		return nil, err
	}
	return insertPhotos(ctx, q, reviewID, urls)
}

// DeletePhoto removes a photo that belongs to one of the user's reviews.
func DeletePhoto(ctx context.Context, q db.DBTX, userID, photoID uuid.UUID) error {
	query := `
		DELETE FROM review_photos p
		USING food_reviews r
		WHERE p.id = $1 AND p.review_id = r.id AND r.user_id = $2
	`
	cmd, err := q.Exec(ctx, query, photoID, userID)
	if err != nil {
		return mapErr("delete review photo", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("delete review photo: %w", models.ErrNotFound)
	}
	return nil
}
