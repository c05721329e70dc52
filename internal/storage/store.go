package storage

import (
	"context"
	"errors"

	"financas/internal/core"
)

// ErrNotFound is returned when a row does not exist or is owned by a
// different user. Callers cannot distinguish the two cases.
var ErrNotFound = errors.New("not found")

// Store is the persistence port consumed by the HTTP layer and services.
// Every operation is scoped to a user; cross-user access is impossible
// through this interface.
type Store interface {
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	GetTransaction(ctx context.Context, userID string, id int64) (core.Transaction, error)
	// ListTransactions returns the user's transactions matching the filter,
	// ordered by date descending, each with its category resolved.
	ListTransactions(ctx context.Context, userID string, f core.Filter) ([]core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, userID string, id int64) error

	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	GetCategory(ctx context.Context, userID string, id int64) (core.Category, error)
	ListCategories(ctx context.Context, userID string) ([]core.Category, error)
	UpdateCategory(ctx context.Context, c core.Category) (core.Category, error)
	DeleteCategory(ctx context.Context, userID string, id int64) error
}
