package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Transport     Category = "Transport"
	Accommodation Category = "Accommodation"
	Food          Category = "Food"
	Activities    Category = "Activities"
	Shopping      Category = "Shopping"
	Other         Category = "Other"
)

type (
	// Category is one of the fixed expense categories.
	Category string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Expense is a single dated payment made by one group member on
	// behalf of the whole group.
	Expense struct {
		Date     Date
		PaidBy   string // payer name; may no longer be in the roster
		Category Category
		Amount   Money
		Remarks  string // optional free text
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidCategory = errors.New("invalid category")
	ErrEmptyPayer      = errors.New("empty payer name")
	ErrRemarksTooLong  = errors.New("remarks too long (max 200 characters)")
)

// Categories returns the fixed category set in display order.
func Categories() []Category {
	return []Category{Transport, Accommodation, Food, Activities, Shopping, Other}
}

// ParseCategory matches s against the fixed category set (case-insensitive).
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

func (c Category) Valid() bool {
	switch c {
	case Transport, Accommodation, Food, Activities, Shopping, Other:
		return true
	default:
		return false
	}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Validate rejects negative amounts. Zero is allowed: a record may carry
// no cost and still name a payer.
func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.PaidBy) == "" {
		return ErrEmptyPayer
	}
	if !e.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, e.Category)
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if len(e.Remarks) > 200 {
		return ErrRemarksTooLong
	}
	return nil
}
