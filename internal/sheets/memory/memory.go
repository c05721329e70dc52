// Package memory provides an in-memory audit appender for tests and
// local development without Google credentials.
package memory

import (
	"context"
	"sync"

	ports "financas/internal/sheets"
)

type Appender struct {
	mu   sync.Mutex
	rows []ports.AuditRow
}

var _ ports.AuditAppender = (*Appender)(nil)

func New() *Appender {
	return &Appender{}
}

func (a *Appender) Append(_ context.Context, row ports.AuditRow) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rows = append(a.rows, row)
	return nil
}

// Rows returns a copy of the appended rows in order.
func (a *Appender) Rows() []ports.AuditRow {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]ports.AuditRow, len(a.rows))
	copy(out, a.rows)
	return out
}
