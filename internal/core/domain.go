// Package core holds the domain model: transactions, categories, money
// amounts and the filters applied to them.
package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
	CategoryBoth    CategoryType = "both"
)

const (
	maxDescriptionLen = 255
	maxNameLen        = 255
)

type (
	TransactionType string

	CategoryType string

	// Date is a calendar date with day precision. The time component is
	// always midnight UTC.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID          int64
		UserID      string
		Date        Date
		Type        TransactionType
		Amount      Money
		Description string
		CategoryID  *int64
		Category    *Category
	}

	Category struct {
		ID     int64
		UserID string
		Name   string
		Color  string
		Type   CategoryType
	}
)

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrDescriptionTooLong = errors.New("description too long")
	ErrEmptyName          = errors.New("empty category name")
	ErrInvalidColor       = errors.New("invalid color")
	ErrInvalidCategory    = errors.New("invalid category type")
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (t CategoryType) Valid() bool {
	return t == CategoryIncome || t == CategoryExpense || t == CategoryBoth
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: parsed}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// ISO returns the date in YYYY-MM-DD form, the storage and API format.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// Display returns the date in DD/MM/YYYY form used by exports.
func (d Date) Display() string {
	return d.Format("02/01/2006")
}

// After reports whether d is a later calendar date than other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.ISO() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if len(t.Description) > maxDescriptionLen {
		return ErrDescriptionTooLong
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > maxNameLen {
		return errors.New("category name too long")
	}
	if !validHexColor(c.Color) {
		return ErrInvalidColor
	}
	if !c.Type.Valid() {
		return ErrInvalidCategory
	}
	return nil
}

// validHexColor accepts "#RGB" and "#RRGGBB" forms.
func validHexColor(s string) bool {
	if len(s) != 4 && len(s) != 7 {
		return false
	}
	if s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
