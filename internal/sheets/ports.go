// Package sheets defines the outbound port for the spreadsheet audit
// mirror and its row format.
package sheets

import (
	"context"

	"financas/internal/core"
)

// AuditRow is one appended line in the audit spreadsheet. The mirror is
// append-only: updates append the new state, deletions append a
// tombstone row with empty detail columns.
type AuditRow struct {
	Timestamp     string
	Action        string
	UserID        string
	TransactionID int64
	Date          string
	Type          string
	Amount        string
	Category      string
	Description   string
}

// NewAuditRow builds a row from a transaction's current state.
func NewAuditRow(timestamp, action string, t core.Transaction) AuditRow {
	row := AuditRow{
		Timestamp:     timestamp,
		Action:        action,
		UserID:        t.UserID,
		TransactionID: t.ID,
		Date:          t.Date.ISO(),
		Type:          string(t.Type),
		Amount:        t.Amount.DecimalString(),
		Description:   t.Description,
	}
	if t.Category != nil {
		row.Category = t.Category.Name
	}
	return row
}

// NewTombstoneRow builds a deletion marker for a transaction that no
// longer exists in storage.
func NewTombstoneRow(timestamp, action, userID string, id int64) AuditRow {
	return AuditRow{
		Timestamp:     timestamp,
		Action:        action,
		UserID:        userID,
		TransactionID: id,
	}
}

// AuditAppender appends audit rows to the mirror.
type AuditAppender interface {
	Append(ctx context.Context, row AuditRow) error
}
