// Package services orchestrates domain operations across storage and the
// message broker.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/export"
	"financas/internal/storage"
)

// ErrCategoryNotFound is returned when a referenced category does not exist
// for the requesting user. Foreign categories look the same as missing ones.
var ErrCategoryNotFound = errors.New("category not found")

// TransactionService orchestrates transaction operations across SQLite
// and AMQP. The AMQP client is optional; without it changes are only
// stored locally.
type TransactionService struct {
	store      storage.Store
	amqpClient *amqp.Client
}

func NewTransactionService(store storage.Store, amqpClient *amqp.Client) *TransactionService {
	return &TransactionService{
		store:      store,
		amqpClient: amqpClient,
	}
}

// Create validates and saves a transaction, then publishes a change event.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.checkCategory(ctx, t.UserID, t.CategoryID); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.publishEvent(ctx, amqp.ActionCreated, created.ID, created.UserID)
	return created, nil
}

// Get returns a single transaction owned by the user.
func (s *TransactionService) Get(ctx context.Context, userID string, id int64) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, userID, id)
}

// List returns the user's transactions narrowed by the filter, newest first.
func (s *TransactionService) List(ctx context.Context, userID string, f core.Filter) ([]core.Transaction, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return s.store.ListTransactions(ctx, userID, f)
}

// Update validates and persists changes to an existing transaction, then
// publishes a change event.
func (s *TransactionService) Update(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.checkCategory(ctx, t.UserID, t.CategoryID); err != nil {
		return core.Transaction{}, err
	}

	updated, err := s.store.UpdateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}

	s.publishEvent(ctx, amqp.ActionUpdated, updated.ID, updated.UserID)
	return updated, nil
}

// Delete removes a transaction and publishes a change event.
func (s *TransactionService) Delete(ctx context.Context, userID string, id int64) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}

	s.publishEvent(ctx, amqp.ActionDeleted, id, userID)
	return nil
}

// Summary computes income, expense and balance totals over the filtered set.
func (s *TransactionService) Summary(ctx context.Context, userID string, f core.Filter) (core.Totals, error) {
	ts, err := s.List(ctx, userID, f)
	if err != nil {
		return core.Totals{}, err
	}
	return core.ComputeTotals(ts), nil
}

// ExportExcel renders the filtered set as an .xlsx workbook.
func (s *TransactionService) ExportExcel(ctx context.Context, userID string, f core.Filter) ([]byte, string, error) {
	ts, err := s.List(ctx, userID, f)
	if err != nil {
		return nil, "", err
	}
	data, err := export.Excel(ts)
	if err != nil {
		return nil, "", fmt.Errorf("render excel: %w", err)
	}
	return data, exportFilename("xlsx"), nil
}

// ExportPDF renders the filtered set as a PDF report.
func (s *TransactionService) ExportPDF(ctx context.Context, userID string, f core.Filter) ([]byte, string, error) {
	ts, err := s.List(ctx, userID, f)
	if err != nil {
		return nil, "", err
	}
	data, err := export.PDF(ts, time.Now())
	if err != nil {
		return nil, "", fmt.Errorf("render pdf: %w", err)
	}
	return data, exportFilename("pdf"), nil
}

func exportFilename(ext string) string {
	return fmt.Sprintf("transacoes_%s.%s", time.Now().Format("2006-01-02"), ext)
}

// checkCategory verifies the referenced category belongs to the user.
func (s *TransactionService) checkCategory(ctx context.Context, userID string, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.store.GetCategory(ctx, userID, *categoryID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("check category: %w", err)
	}
	return nil
}

func (s *TransactionService) publishEvent(ctx context.Context, action string, id int64, userID string) {
	if s.amqpClient == nil {
		return
	}
	// Events are advisory. A broker outage must not fail the request.
	if err := s.amqpClient.PublishTransactionEvent(ctx, action, id, userID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"action", action, "id", id, "error", err)
	}
}
