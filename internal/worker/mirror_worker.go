// Package worker mirrors transaction change events into the audit
// spreadsheet.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"financas/internal/amqp"
	"financas/internal/sheets"
	"financas/internal/storage"
)

// MirrorWorker consumes transaction events and appends audit rows to
// the spreadsheet mirror.
type MirrorWorker struct {
	store    storage.Store
	appender sheets.AuditAppender
}

func NewMirrorWorker(store storage.Store, appender sheets.AuditAppender) *MirrorWorker {
	return &MirrorWorker{
		store:    store,
		appender: appender,
	}
}

// HandleEvent processes a single transaction event. Returning an error
// requeues the delivery.
func (w *MirrorWorker) HandleEvent(ctx context.Context, msg *amqp.TransactionEventMessage) error {
	timestamp := msg.Timestamp.UTC().Format(time.RFC3339)

	if msg.Action == amqp.ActionDeleted {
		row := sheets.NewTombstoneRow(timestamp, msg.Action, msg.UserID, msg.ID)
		if err := w.appender.Append(ctx, row); err != nil {
			return fmt.Errorf("append tombstone: %w", err)
		}
		return nil
	}

	t, err := w.store.GetTransaction(ctx, msg.UserID, msg.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// The record was deleted before we processed this event.
			// The delete event will append its own tombstone.
			slog.WarnContext(ctx, "Transaction gone before mirroring, skipping",
				"action", msg.Action, "id", msg.ID)
			return nil
		}
		return fmt.Errorf("load transaction: %w", err)
	}

	row := sheets.NewAuditRow(timestamp, msg.Action, t)
	if err := w.appender.Append(ctx, row); err != nil {
		return fmt.Errorf("append audit row: %w", err)
	}

	slog.InfoContext(ctx, "Mirrored transaction event",
		"action", msg.Action, "id", msg.ID)
	return nil
}
