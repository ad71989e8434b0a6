package core

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

type (
	// Record is a single sale transaction from the dataset.
	Record struct {
		ID          int64     `json:"id"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Price       float64   `json:"price"`
		Category    string    `json:"category"`
		Image       string    `json:"image,omitempty"`
		Sold        bool      `json:"sold"`
		DateOfSale  time.Time `json:"dateOfSale"`
	}
)

var (
	ErrInvalidMonth  = errors.New("invalid month")
	ErrInvalidPrice  = errors.New("invalid price")
	ErrInvalidDate   = errors.New("invalid date of sale")
	ErrInvalidRecord = errors.New("invalid record")
)

// Validate checks the per-record constraints. Uniqueness of IDs is a
// collection property and is checked by the store.
func (r Record) Validate() error {
	if r.Price < 0 {
		return ErrInvalidPrice
	}
	if r.DateOfSale.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Month returns the sale month (1-12) in the offset the date was recorded with.
func (r Record) Month() int {
	return int(r.DateOfSale.Month())
}

// PriceText is the decimal form of the price used by text search, e.g. "329.85" or "150".
func (r Record) PriceText() string {
	return strconv.FormatFloat(r.Price, 'f', -1, 64)
}

// ValidateMonth reports ErrInvalidMonth unless 1 <= month <= 12.
func ValidateMonth(month int) error {
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// ParseMonth converts a query value to a month number.
// Empty, non-numeric and out-of-range values all yield ErrInvalidMonth.
func ParseMonth(s string) (int, error) {
	m, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, ErrInvalidMonth
	}
	if err := ValidateMonth(m); err != nil {
		return 0, err
	}
	return m, nil
}
