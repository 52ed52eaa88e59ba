package db

import (
	"errors"
	"fmt"

	"tally-server/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation   = "23505"
	numericOutOfRange = "22003"
)

// mapErr translates driver errors into the model sentinels handlers understand.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%s: %w", op, models.ErrConflict)
		case numericOutOfRange:
			return fmt.Errorf("%s: %w", op, models.ErrOutOfRange)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
