// Package export renders filtered transaction sets into downloadable
// Excel and PDF documents.
package export

import "financas/internal/core"

// Labels shared by both renderers. All export output is pt-BR.
const (
	LabelIncome  = "Receita"
	LabelExpense = "Despesa"

	noCategoryLabel = "Sem categoria"
	noDescription   = "-"
)

// Row is the display-ready projection of a transaction. Every field is
// already formatted, so the renderers only deal in strings.
type Row struct {
	Date        string
	Type        string
	Amount      string
	Category    string
	Description string
	Income      bool
}

// NewRow projects a transaction into its export form.
func NewRow(t core.Transaction) Row {
	r := Row{
		Date:        t.Date.Display(),
		Amount:      t.Amount.BRL(),
		Category:    noCategoryLabel,
		Description: t.Description,
		Income:      t.Type == core.Income,
	}
	if r.Income {
		r.Type = LabelIncome
	} else {
		r.Type = LabelExpense
	}
	if t.Category != nil {
		r.Category = t.Category.Name
	}
	if r.Description == "" {
		r.Description = noDescription
	}
	return r
}

// Rows projects a transaction slice preserving order.
func Rows(ts []core.Transaction) []Row {
	rows := make([]Row, len(ts))
	for i, t := range ts {
		rows[i] = NewRow(t)
	}
	return rows
}
