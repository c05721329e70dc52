package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"financas/internal/core"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	dir := t.TempDir()
	repo, err := NewSQLiteRepository(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustCreateCategory(t *testing.T, repo *SQLiteRepository, userID, name string, typ core.CategoryType) core.Category {
	t.Helper()
	c, err := repo.CreateCategory(context.Background(), core.Category{
		UserID: userID, Name: name, Color: "#2196F3", Type: typ,
	})
	if err != nil {
		t.Fatalf("create category %q: %v", name, err)
	}
	return c
}

func mustCreateTransaction(t *testing.T, repo *SQLiteRepository, tr core.Transaction) core.Transaction {
	t.Helper()
	created, err := repo.CreateTransaction(context.Background(), tr)
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return created
}

func TestSQLiteRepositoryTransactions(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	salary := mustCreateCategory(t, repo, "alice", "Salary", core.CategoryIncome)
	food := mustCreateCategory(t, repo, "alice", "Food", core.CategoryExpense)
	mustCreateCategory(t, repo, "bob", "Rent", core.CategoryExpense)

	seed := []core.Transaction{
		{UserID: "alice", Date: core.NewDate(2024, 1, 15), Type: core.Income, Amount: core.Money{Cents: 150000}, Description: "Monthly pay", CategoryID: &salary.ID},
		{UserID: "alice", Date: core.NewDate(2024, 2, 1), Type: core.Expense, Amount: core.Money{Cents: 10000}, CategoryID: &food.ID},
		{UserID: "alice", Date: core.NewDate(2024, 2, 20), Type: core.Expense, Amount: core.Money{Cents: 4550}},
		{UserID: "bob", Date: core.NewDate(2024, 2, 10), Type: core.Expense, Amount: core.Money{Cents: 99900}},
	}
	for _, tr := range seed {
		mustCreateTransaction(t, repo, tr)
	}

	t.Run("no filters returns full user-scoped set, date descending", func(t *testing.T) {
		got, err := repo.ListTransactions(ctx, "alice", core.Filter{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("got %d transactions, want 3", len(got))
		}
		for i := 1; i < len(got); i++ {
			if got[i].Date.Time.After(got[i-1].Date.Time) {
				t.Fatalf("not ordered by date descending: %s before %s", got[i-1].Date.ISO(), got[i].Date.ISO())
			}
		}
		for _, tr := range got {
			if tr.UserID != "alice" {
				t.Fatalf("cross-user leakage: got user %q", tr.UserID)
			}
		}
	})

	t.Run("category is joined", func(t *testing.T) {
		got, err := repo.ListTransactions(ctx, "alice", core.Filter{CategoryID: &salary.ID})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("got %d transactions, want 1", len(got))
		}
		if got[0].Category == nil || got[0].Category.Name != "Salary" {
			t.Fatalf("category not resolved: %+v", got[0].Category)
		}
	})

	t.Run("each filter narrows to a subset", func(t *testing.T) {
		all, err := repo.ListTransactions(ctx, "alice", core.Filter{})
		if err != nil {
			t.Fatalf("list all: %v", err)
		}
		ids := map[int64]bool{}
		for _, tr := range all {
			ids[tr.ID] = true
		}

		expense := core.Expense
		min := core.Money{Cents: 5000}
		start := core.NewDate(2024, 2, 1)
		filters := []core.Filter{
			{Type: &expense},
			{MinAmount: &min},
			{CategoryID: &food.ID},
			{StartDate: &start},
			{Type: &expense, StartDate: &start, MinAmount: &min},
		}
		for i, f := range filters {
			got, err := repo.ListTransactions(ctx, "alice", f)
			if err != nil {
				t.Fatalf("filter %d: %v", i, err)
			}
			if len(got) >= len(all)+1 {
				t.Fatalf("filter %d: result larger than unfiltered set", i)
			}
			for _, tr := range got {
				if !ids[tr.ID] {
					t.Fatalf("filter %d: row %d not in unfiltered set", i, tr.ID)
				}
				if !f.Matches(tr) {
					t.Fatalf("filter %d: row %d does not satisfy filter", i, tr.ID)
				}
			}
		}
	})

	t.Run("min equals max matches exact amount only", func(t *testing.T) {
		exact := core.Money{Cents: 10000}
		got, err := repo.ListTransactions(ctx, "alice", core.Filter{MinAmount: &exact, MaxAmount: &exact})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 1 || got[0].Amount.Cents != 10000 {
			t.Fatalf("expected exactly one row of 10000 cents, got %+v", got)
		}
	})

	t.Run("filtering by another user's category yields nothing", func(t *testing.T) {
		// bob filters on alice's category id: scoping by user already
		// excludes her rows, no ownership check needed.
		got, err := repo.ListTransactions(ctx, "bob", core.Filter{CategoryID: &food.ID})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected empty result, got %d rows", len(got))
		}
	})

	t.Run("get scoped by user", func(t *testing.T) {
		mine, err := repo.ListTransactions(ctx, "bob", core.Filter{})
		if err != nil || len(mine) != 1 {
			t.Fatalf("bob list: %v (%d rows)", err, len(mine))
		}
		if _, err := repo.GetTransaction(ctx, "alice", mine[0].ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound for foreign transaction, got %v", err)
		}
	})

	t.Run("update", func(t *testing.T) {
		all, _ := repo.ListTransactions(ctx, "alice", core.Filter{})
		tr := all[0]
		tr.Amount = core.Money{Cents: 7777}
		tr.Description = "updated"
		updated, err := repo.UpdateTransaction(ctx, tr)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.Amount.Cents != 7777 || updated.Description != "updated" {
			t.Fatalf("update not persisted: %+v", updated)
		}

		tr.UserID = "bob"
		if _, err := repo.UpdateTransaction(ctx, tr); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound updating foreign row, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		created := mustCreateTransaction(t, repo, core.Transaction{
			UserID: "alice", Date: core.NewDate(2024, 3, 1), Type: core.Expense, Amount: core.Money{Cents: 500},
		})
		if err := repo.DeleteTransaction(ctx, "bob", created.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound deleting foreign row, got %v", err)
		}
		if err := repo.DeleteTransaction(ctx, "alice", created.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := repo.GetTransaction(ctx, "alice", created.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
	})
}

func TestSQLiteRepositoryCategories(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created := mustCreateCategory(t, repo, "alice", "Transport", core.CategoryExpense)
	mustCreateCategory(t, repo, "bob", "Transport", core.CategoryExpense)

	t.Run("list is user scoped", func(t *testing.T) {
		got, err := repo.ListCategories(ctx, "alice")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 1 || got[0].ID != created.ID {
			t.Fatalf("unexpected categories: %+v", got)
		}
	})

	t.Run("get foreign category fails", func(t *testing.T) {
		if _, err := repo.GetCategory(ctx, "bob", created.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("update and delete", func(t *testing.T) {
		created.Name = "Mobility"
		created.Color = "#FF5722"
		updated, err := repo.UpdateCategory(ctx, created)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.Name != "Mobility" || updated.Color != "#FF5722" {
			t.Fatalf("update not persisted: %+v", updated)
		}

		if err := repo.DeleteCategory(ctx, "alice", created.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := repo.DeleteCategory(ctx, "alice", created.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestDeletingCategoryDetachesTransactions(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	cat := mustCreateCategory(t, repo, "alice", "Food", core.CategoryExpense)
	tr := mustCreateTransaction(t, repo, core.Transaction{
		UserID: "alice", Date: core.NewDate(2024, 2, 1), Type: core.Expense,
		Amount: core.Money{Cents: 1500}, CategoryID: &cat.ID,
	})

	if err := repo.DeleteCategory(ctx, "alice", cat.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}

	got, err := repo.GetTransaction(ctx, "alice", tr.ID)
	if err != nil {
		t.Fatalf("get transaction: %v", err)
	}
	if got.CategoryID != nil || got.Category != nil {
		t.Fatalf("transaction still references deleted category: %+v", got)
	}
}
