// This file implements parsing of query filters and JSON payloads into
// domain types, collecting per-field validation messages along the way.
package http

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"financas/internal/core"
)

// fieldErrors accumulates validation messages keyed by input field.
type fieldErrors map[string][]string

func (fe fieldErrors) add(field, message string) {
	fe[field] = append(fe[field], message)
}

func (fe fieldErrors) empty() bool { return len(fe) == 0 }

// ParseFilter reads the supported filter parameters from the query
// string. Unknown parameters are ignored; malformed or inconsistent
// values are reported per field.
func ParseFilter(query url.Values) (core.Filter, fieldErrors) {
	var f core.Filter
	errs := fieldErrors{}

	if v := strings.TrimSpace(query.Get("type")); v != "" {
		t := core.TransactionType(v)
		if !t.Valid() {
			errs.add("type", "must be income or expense")
		} else {
			f.Type = &t
		}
	}

	if v := strings.TrimSpace(query.Get("min_amount")); v != "" {
		cents, err := core.ParseDecimalToCents(v)
		if err != nil {
			errs.add("min_amount", "must be a non-negative decimal")
		} else {
			f.MinAmount = &core.Money{Cents: cents}
		}
	}

	if v := strings.TrimSpace(query.Get("max_amount")); v != "" {
		cents, err := core.ParseDecimalToCents(v)
		if err != nil {
			errs.add("max_amount", "must be a non-negative decimal")
		} else {
			f.MaxAmount = &core.Money{Cents: cents}
		}
	}

	if v := strings.TrimSpace(query.Get("category_id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			errs.add("category_id", "must be a positive integer")
		} else {
			f.CategoryID = &id
		}
	}

	if v := strings.TrimSpace(query.Get("start_date")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			errs.add("start_date", "must be a date in YYYY-MM-DD format")
		} else {
			f.StartDate = &d
		}
	}

	if v := strings.TrimSpace(query.Get("end_date")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			errs.add("end_date", "must be a date in YYYY-MM-DD format")
		} else {
			f.EndDate = &d
		}
	}

	if errs.empty() {
		switch err := f.Validate(); err {
		case nil:
		case core.ErrDateRangeInverted:
			errs.add("start_date", "must not be after end_date")
		case core.ErrAmountRangeInverted:
			errs.add("min_amount", "must not exceed max_amount")
		}
	}

	return f, errs
}

// decodeFields decodes a JSON object body into raw per-field messages so
// partial updates can distinguish absent fields from null ones.
func decodeFields(body []byte) (map[string]json.RawMessage, error) {
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func isJSONNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

// applyTransactionFields writes the allow-listed fields onto the
// transaction. Unknown keys are ignored.
func applyTransactionFields(t *core.Transaction, fields map[string]json.RawMessage) fieldErrors {
	errs := fieldErrors{}

	if raw, ok := fields["date"]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			errs.add("date", "must be a string in YYYY-MM-DD format")
		} else if d, err := core.ParseDate(s); err != nil {
			errs.add("date", "must be a date in YYYY-MM-DD format")
		} else {
			t.Date = d
		}
	}

	if raw, ok := fields["type"]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || !core.TransactionType(s).Valid() {
			errs.add("type", "must be income or expense")
		} else {
			t.Type = core.TransactionType(s)
		}
	}

	if raw, ok := fields["amount"]; ok {
		// Accepts both "12.34" and 12.34 forms.
		s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
		cents, err := core.ParseDecimalToCents(s)
		if err != nil || cents == 0 {
			errs.add("amount", "must be a positive decimal")
		} else {
			t.Amount = core.Money{Cents: cents}
		}
	}

	if raw, ok := fields["description"]; ok {
		if isJSONNull(raw) {
			t.Description = ""
		} else {
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				errs.add("description", "must be a string")
			} else {
				t.Description = sanitizeInput(s)
			}
		}
	}

	if raw, ok := fields["category_id"]; ok {
		if isJSONNull(raw) {
			t.CategoryID = nil
		} else {
			var id int64
			if err := json.Unmarshal(raw, &id); err != nil || id <= 0 {
				errs.add("category_id", "must be a positive integer or null")
			} else {
				t.CategoryID = &id
			}
		}
	}

	return errs
}

// requireTransactionFields reports the mandatory creation fields that
// are missing from the payload.
func requireTransactionFields(fields map[string]json.RawMessage, errs fieldErrors) {
	for _, name := range []string{"date", "type", "amount"} {
		if _, ok := fields[name]; !ok {
			errs.add(name, "is required")
		}
	}
}

func applyCategoryFields(c *core.Category, fields map[string]json.RawMessage) fieldErrors {
	errs := fieldErrors{}

	if raw, ok := fields["name"]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || strings.TrimSpace(s) == "" {
			errs.add("name", "must be a non-empty string")
		} else {
			c.Name = sanitizeInput(s)
		}
	}

	if raw, ok := fields["color"]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			errs.add("color", "must be a hex color like #2196F3")
		} else {
			c.Color = strings.TrimSpace(s)
		}
	}

	if raw, ok := fields["type"]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || !core.CategoryType(s).Valid() {
			errs.add("type", "must be income, expense or both")
		} else {
			c.Type = core.CategoryType(s)
		}
	}

	return errs
}

func requireCategoryFields(fields map[string]json.RawMessage, errs fieldErrors) {
	for _, name := range []string{"name", "color", "type"} {
		if _, ok := fields[name]; !ok {
			errs.add(name, "is required")
		}
	}
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
