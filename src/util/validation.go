package util

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"tally-server/src/models"

	"github.com/google/uuid"
)

// ParseMonthYear reads the month and year query parameters. ok is false when
// both are absent; supplying only one of them is an error.
func ParseMonthYear(q url.Values) (month, year int, ok bool, err error) {
	m, y := strings.TrimSpace(q.Get("month")), strings.TrimSpace(q.Get("year"))
	if m == "" && y == "" {
		return 0, 0, false, nil
	}
	if m == "" || y == "" {
		return 0, 0, false, models.NewValidationError("month and year are required")
	}
	if month, err = ParseMonth(m); err != nil {
		return 0, 0, false, err
	}
	if year, err = ParseYear(y); err != nil {
		return 0, 0, false, err
	}
	return month, year, true, nil
}

func ParseMonth(s string) (int, error) {
	month, err := strconv.Atoi(s)
	if err != nil || !ValidateMonth(month) {
		return 0, models.ErrInvalidMonth
	}
	return month, nil
}

func ParseYear(s string) (int, error) {
	year, err := strconv.Atoi(s)
	if err != nil || !ValidateYear(year) {
		return 0, models.ErrInvalidYear
	}
	return year, nil
}

// ParseOptionalYear returns nil when s is empty.
func ParseOptionalYear(s string) (*int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	year, err := ParseYear(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	return &year, nil
}

// ParseOptionalDate returns nil when s is empty.
func ParseOptionalDate(s string) (*models.Date, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := models.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func ParseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, models.NewValidationError("invalid id %q", s)
	}
	return id, nil
}

func ParseCoordinate(s string, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < -limit || v > limit {
		return 0, models.NewValidationError("invalid coordinate %q", s)
	}
	return v, nil
}

func ValidateMonth(month int) bool {
	return month >= 1 && month <= 12
}

func ValidateYear(year int) bool {
	return year >= 1900 && year <= 9999
}

// ValidateURL accepts absolute http and https URLs.
func ValidateURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// CurrentMonth returns the month and year of now in UTC.
func CurrentMonth(now time.Time) (int, int) {
	now = now.UTC()
	return int(now.Month()), now.Year()
}
