package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("already exists")
	ErrValidation = errors.New("validation failed")
	ErrNoTemplate = errors.New("no recurring budget template found")
)

// ValidationError carries a message that is safe to return to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

var (
	ErrPercentageSum  = &ValidationError{Message: "percentages must total 100"}
	ErrInvalidMonth   = &ValidationError{Message: "month must be between 1 and 12"}
	ErrInvalidYear    = &ValidationError{Message: "year is out of range"}
	ErrNegativeValue  = &ValidationError{Message: "income and percentages must not be negative"}
	ErrIncomeTooLarge = &ValidationError{Message: "monthly_income must not exceed 9999999999.99"}
	ErrOutOfRange     = &ValidationError{Message: "value is out of range"}
	ErrMissingFields  = &ValidationError{Message: "missing required fields"}
	ErrInvalidRating  = &ValidationError{Message: "ratings must be between 0 and 5 in steps of 0.5"}
	ErrInvalidStatus  = &ValidationError{Message: "status must be one of to_try, visited, skipped"}
	ErrInvalidAmount  = &ValidationError{Message: "amount must be greater than zero"}
	ErrEmptyPatch     = &ValidationError{Message: "no fields to update"}
	ErrInvalidPeople  = &ValidationError{Message: "number_of_people must be at least 1"}
	ErrInvalidDateArg = &ValidationError{Message: "dates must use the YYYY-MM-DD format"}
)
