package core

// Totals are the aggregates every renderer and the summary endpoint share.
type Totals struct {
	Income  Money
	Expense Money
	Balance Money
}

// ComputeTotals sums income and expense amounts over a transaction set.
// Balance is always income minus expense.
func ComputeTotals(transactions []Transaction) Totals {
	var income, expense int64
	for _, t := range transactions {
		switch t.Type {
		case Income:
			income += t.Amount.Cents
		case Expense:
			expense += t.Amount.Cents
		}
	}
	return Totals{
		Income:  Money{Cents: income},
		Expense: Money{Cents: expense},
		Balance: Money{Cents: income - expense},
	}
}
