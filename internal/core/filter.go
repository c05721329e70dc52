package core

import "errors"

var (
	ErrDateRangeInverted   = errors.New("start date after end date")
	ErrAmountRangeInverted = errors.New("minimum amount above maximum amount")
)

// Filter is the set of optional predicates narrowing a transaction query.
// Nil fields mean "no constraint"; present fields combine conjunctively.
type Filter struct {
	Type       *TransactionType
	MinAmount  *Money
	MaxAmount  *Money
	CategoryID *int64
	StartDate  *Date
	EndDate    *Date
}

// IsZero reports whether no predicate is set.
func (f Filter) IsZero() bool {
	return f.Type == nil && f.MinAmount == nil && f.MaxAmount == nil &&
		f.CategoryID == nil && f.StartDate == nil && f.EndDate == nil
}

// Validate rejects contradictory ranges.
func (f Filter) Validate() error {
	if f.StartDate != nil && f.EndDate != nil && f.StartDate.After(*f.EndDate) {
		return ErrDateRangeInverted
	}
	if f.MinAmount != nil && f.MaxAmount != nil && f.MinAmount.Cents > f.MaxAmount.Cents {
		return ErrAmountRangeInverted
	}
	return nil
}

// Matches reports whether the transaction satisfies every set predicate.
// The repository applies the same semantics in SQL.
func (f Filter) Matches(t Transaction) bool {
	if f.Type != nil && t.Type != *f.Type {
		return false
	}
	if f.MinAmount != nil && t.Amount.Cents < f.MinAmount.Cents {
		return false
	}
	if f.MaxAmount != nil && t.Amount.Cents > f.MaxAmount.Cents {
		return false
	}
	if f.CategoryID != nil && (t.CategoryID == nil || *t.CategoryID != *f.CategoryID) {
		return false
	}
	if f.StartDate != nil && t.Date.Before(f.StartDate.Time) {
		return false
	}
	if f.EndDate != nil && t.Date.Time.After(f.EndDate.Time) {
		return false
	}
	return true
}
