package core

import (
	"errors"
	"strings"
	"time"
)

const (
	CategoryMen   Category = "Men"
	CategoryWomen Category = "Women"
)

// Categories lists the valid competition categories in display order.
var Categories = []Category{CategoryMen, CategoryWomen}

type (
	Category string

	// Registration is one row of the registration table. Timestamp is set
	// server-side at append time and is immutable once written. AmountValid
	// is false when the stored amount cell could not be coerced to a number;
	// such records still count as participants but are excluded from sums.
	Registration struct {
		Timestamp   time.Time
		Name        string
		Email       string
		Category    Category
		Amount      Money
		AmountValid bool
	}
)

var (
	ErrInvalidName     = errors.New("name must be 2-50 characters")
	ErrInvalidEmail    = errors.New("email must contain @")
	ErrInvalidCategory = errors.New("invalid category")
	ErrBelowMinimum    = errors.New("amount below minimum donation")
)

// IsValid reports whether the category is one of the enumerated values.
// Matching is exact; no trimming or case folding.
func (c Category) IsValid() bool {
	switch c {
	case CategoryMen, CategoryWomen:
		return true
	default:
		return false
	}
}

func (c Category) String() string { return string(c) }

// Validate enforces the form-level field checks. It is called at the UI
// boundary before a registration enters the pipeline; the pipeline itself
// does not re-validate.
func (r Registration) Validate(minimum Money) error {
	name := strings.TrimSpace(r.Name)
	if len(name) < 2 || len(name) > 50 {
		return ErrInvalidName
	}
	if !strings.Contains(r.Email, "@") {
		return ErrInvalidEmail
	}
	if !r.Category.IsValid() {
		return ErrInvalidCategory
	}
	if r.Amount.Cents < minimum.Cents {
		return ErrBelowMinimum
	}
	return nil
}
