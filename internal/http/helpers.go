package http

import (
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"spendlog/internal/core"
	"spendlog/internal/storage"
)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"amount": formatAmount,
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func writeFragment(w http.ResponseWriter, status int, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(html))
}

func errorFragment(msg string) string {
	return `<div class="error">` + template.HTMLEscapeString(msg) + `</div>`
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

// parseListFilter reads search and date-range query parameters. Malformed
// dates are ignored rather than rejected; a filter is a refinement, not
// an input form.
func parseListFilter(q url.Values) storage.ListFilter {
	f := storage.ListFilter{
		Search: sanitizeInput(q.Get("q")),
	}
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		if d, err := core.ParseDate(v); err == nil {
			f.From = d
		}
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		if d, err := core.ParseDate(v); err == nil {
			f.To = d
		}
	}
	return f
}

// parseExpenseForm builds a record from submitted form fields. Field-level
// problems come back as a user-facing message; the record still goes through
// Validate before any write.
func parseExpenseForm(form url.Values, owner string) (core.ExpenseRecord, string) {
	amount, err := core.ParseAmount(strings.TrimSpace(form.Get("amount")))
	if err != nil {
		return core.ExpenseRecord{}, "Amount must be a positive number."
	}

	date, err := core.ParseDate(strings.TrimSpace(form.Get("date")))
	if err != nil {
		return core.ExpenseRecord{}, "Date must be in YYYY-MM-DD format."
	}

	rec := core.ExpenseRecord{
		Owner:         owner,
		Category:      core.Category(sanitizeInput(form.Get("category"))),
		Amount:        amount,
		PaymentMethod: core.PaymentMethod(sanitizeInput(form.Get("payment_method"))),
		Date:          date,
		Notes:         sanitizeInput(form.Get("notes")),
	}
	if err := rec.Validate(); err != nil {
		return core.ExpenseRecord{}, "Invalid data: " + err.Error()
	}
	return rec, ""
}

// parseID reads a positive int64 id from a form field.
func parseID(form url.Values) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(form.Get("id")), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// formatAmount renders a decimal with exactly two fraction digits.
func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
