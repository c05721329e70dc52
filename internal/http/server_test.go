package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"financas/internal/services"
	"financas/internal/storage"
)

const testSecret = "test-secret-0123456789abcdef"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	svc := services.NewTransactionService(repo, nil)
	return NewServer(":0", repo, svc, NewJWTValidator(testSecret), []string{"*"}, repo)
}

func signToken(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func doRequest(t *testing.T, s *Server, method, path, token string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	if rec := doRequest(t, s, http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz = %d, want 200", rec.Code)
	}
	if rec := doRequest(t, s, http.MethodGet, "/readyz", "", ""); rec.Code != http.StatusOK {
		t.Errorf("readyz = %d, want 200", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	t.Run("missing token", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodGet, "/api/v1/transactions", "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()
		s.Server.Handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		signed, _ := token.SignedString([]byte("wrong-secret"))
		rec := doRequest(t, s, http.MethodGet, "/api/v1/transactions", signed, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		})
		signed, _ := token.SignedString([]byte(testSecret))
		rec := doRequest(t, s, http.MethodGet, "/api/v1/transactions", signed, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func TestTransactionLifecycle(t *testing.T) {
	s := newTestServer(t)
	alice := signToken(t, "alice")
	bob := signToken(t, "bob")

	// Create a category first.
	rec := doRequest(t, s, http.MethodPost, "/api/v1/categories", alice,
		`{"name": "Salary", "color": "#2196F3", "type": "income"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category = %d: %s", rec.Code, rec.Body.String())
	}
	cat := decodeBody[categoryJSON](t, rec)

	rec = doRequest(t, s, http.MethodPost, "/api/v1/transactions", alice,
		`{"date": "2024-01-15", "type": "income", "amount": "1500.00", "description": "Monthly pay", "category_id": `+jsonInt(cat.ID)+`}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction = %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[transactionJSON](t, rec)
	if created.Amount != "1500.00" || created.Date != "2024-01-15" || created.Type != "income" {
		t.Errorf("unexpected transaction: %+v", created)
	}
	if created.Category == nil || created.Category.Name != "Salary" {
		t.Errorf("category not joined in response: %+v", created.Category)
	}

	t.Run("get", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodGet, "/api/v1/transactions/"+jsonInt(created.ID), alice, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("get = %d", rec.Code)
		}
	})

	t.Run("other user cannot see it", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodGet, "/api/v1/transactions/"+jsonInt(created.ID), bob, "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("cross-user get = %d, want 404", rec.Code)
		}
	})

	t.Run("partial update", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPut, "/api/v1/transactions/"+jsonInt(created.ID), alice,
			`{"description": "January salary"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("update = %d: %s", rec.Code, rec.Body.String())
		}
		updated := decodeBody[transactionJSON](t, rec)
		if updated.Description != "January salary" {
			t.Errorf("description = %q", updated.Description)
		}
		if updated.Amount != "1500.00" {
			t.Errorf("amount changed on partial update: %q", updated.Amount)
		}
	})

	t.Run("clear category", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPut, "/api/v1/transactions/"+jsonInt(created.ID), alice,
			`{"category_id": null}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("update = %d: %s", rec.Code, rec.Body.String())
		}
		updated := decodeBody[transactionJSON](t, rec)
		if updated.CategoryID != nil {
			t.Errorf("category_id not cleared: %v", *updated.CategoryID)
		}
	})

	t.Run("delete", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodDelete, "/api/v1/transactions/"+jsonInt(created.ID), alice, "")
		if rec.Code != http.StatusNoContent {
			t.Fatalf("delete = %d", rec.Code)
		}
		rec = doRequest(t, s, http.MethodGet, "/api/v1/transactions/"+jsonInt(created.ID), alice, "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("get after delete = %d, want 404", rec.Code)
		}
	})
}

func TestTransactionValidationErrors(t *testing.T) {
	s := newTestServer(t)
	alice := signToken(t, "alice")

	t.Run("missing required fields", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/v1/transactions", alice, `{}`)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", rec.Code)
		}
		body := decodeBody[map[string]any](t, rec)
		if body["message"] != "validation failed" {
			t.Errorf("message = %v", body["message"])
		}
		errs, _ := body["errors"].(map[string]any)
		for _, field := range []string{"date", "type", "amount"} {
			if _, ok := errs[field]; !ok {
				t.Errorf("missing field error for %s", field)
			}
		}
	})

	t.Run("foreign category yields category_id error", func(t *testing.T) {
		bob := signToken(t, "bob")
		rec := doRequest(t, s, http.MethodPost, "/api/v1/categories", bob,
			`{"name": "Rent", "color": "#FF5722", "type": "expense"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create category = %d", rec.Code)
		}
		cat := decodeBody[categoryJSON](t, rec)

		rec = doRequest(t, s, http.MethodPost, "/api/v1/transactions", alice,
			`{"date": "2024-01-15", "type": "expense", "amount": "10", "category_id": `+jsonInt(cat.ID)+`}`)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "category not found") {
			t.Errorf("body = %s", rec.Body.String())
		}
	})

	t.Run("invalid JSON body", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/v1/transactions", alice, `{not json`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestFilteredListAndSummary(t *testing.T) {
	s := newTestServer(t)
	alice := signToken(t, "alice")

	payloads := []string{
		`{"date": "2024-01-15", "type": "income", "amount": "1500.00", "description": "Monthly pay"}`,
		`{"date": "2024-02-01", "type": "expense", "amount": "100.00"}`,
		`{"date": "2024-02-20", "type": "expense", "amount": "45.50"}`,
	}
	for _, p := range payloads {
		if rec := doRequest(t, s, http.MethodPost, "/api/v1/transactions", alice, p); rec.Code != http.StatusCreated {
			t.Fatalf("seed = %d: %s", rec.Code, rec.Body.String())
		}
	}

	t.Run("list newest first", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodGet, "/api/v1/transactions", alice, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("list = %d", rec.Code)
		}
		list := decodeBody[[]transactionJSON](t, rec)
		if len(list) != 3 {
			t.Fatalf("got %d transactions, want 3", len(list))
		}
		if list[0].Date != "2024-02-20" {
			t.Errorf("first = %s, want newest", list[0].Date)
		}
	})

	t.Run("filter by type and date", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodGet, "/api/v1/transactions?type=expense&start_date=2024-02-10", alice, "")
		list := decodeBody[[]transactionJSON](t, rec)
		if len(list) != 1 || list[0].Amount != "45.50" {
			t.Errorf("unexpected filtered list: %+v", list)
		}
	})

	t.Run("inverted range is 422", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodGet, "/api/v1/transactions?start_date=2024-03-01&end_date=2024-01-01", alice, "")
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", rec.Code)
		}
	})

	t.Run("summary", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodGet, "/api/v1/transactions/summary", alice, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("summary = %d", rec.Code)
		}
		totals := decodeBody[totalsJSON](t, rec)
		if totals.Income != "1500.00" || totals.Expense != "145.50" || totals.Balance != "1354.50" {
			t.Errorf("unexpected totals: %+v", totals)
		}
	})

	t.Run("filtered summary", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodGet, "/api/v1/transactions/summary?type=expense", alice, "")
		totals := decodeBody[totalsJSON](t, rec)
		if totals.Expense != "145.50" || totals.Income != "0.00" {
			t.Errorf("unexpected totals: %+v", totals)
		}
	})
}

func TestExportEndpoints(t *testing.T) {
	s := newTestServer(t)
	alice := signToken(t, "alice")

	rec := doRequest(t, s, http.MethodPost, "/api/v1/transactions", alice,
		`{"date": "2024-01-15", "type": "income", "amount": "1500.00", "description": "Monthly pay"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed = %d", rec.Code)
	}

	t.Run("excel", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodGet, "/api/v1/transactions/export/excel", alice, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); ct != excelContentType {
			t.Errorf("content type = %q", ct)
		}
		cd := rec.Header().Get("Content-Disposition")
		if !strings.Contains(cd, "transacoes_") || !strings.Contains(cd, ".xlsx") {
			t.Errorf("content disposition = %q", cd)
		}
	})

	t.Run("pdf", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodGet, "/api/v1/transactions/export/pdf", alice, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); ct != pdfContentType {
			t.Errorf("content type = %q", ct)
		}
		if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
			t.Error("body is not a PDF document")
		}
	})

	t.Run("export with invalid filter is 422", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodGet, "/api/v1/transactions/export/excel?min_amount=100&max_amount=1", alice, "")
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", rec.Code)
		}
	})
}

func TestCategoryValidation(t *testing.T) {
	s := newTestServer(t)
	alice := signToken(t, "alice")

	t.Run("bad color", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/v1/categories", alice,
			`{"name": "Food", "color": "blue", "type": "expense"}`)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", rec.Code)
		}
	})

	t.Run("bad type", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/v1/categories", alice,
			`{"name": "Food", "color": "#FF5722", "type": "transfer"}`)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", rec.Code)
		}
	})

	t.Run("update keeps other fields", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/v1/categories", alice,
			`{"name": "Food", "color": "#FF5722", "type": "expense"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create = %d", rec.Code)
		}
		cat := decodeBody[categoryJSON](t, rec)

		rec = doRequest(t, s, http.MethodPut, "/api/v1/categories/"+jsonInt(cat.ID), alice,
			`{"name": "Groceries"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("update = %d: %s", rec.Code, rec.Body.String())
		}
		updated := decodeBody[categoryJSON](t, rec)
		if updated.Name != "Groceries" || updated.Color != "#FF5722" {
			t.Errorf("unexpected category: %+v", updated)
		}
	})
}

func jsonInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
