package http

import (
	"encoding/csv"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"spendlog/internal/core"
)

// handleExpenses serves the ledger page (GET) and creates records (POST).
func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	session := s.currentSession(w, r)
	if session == nil {
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.renderExpensesPage(w, r, session.Identity)
	case http.MethodPost:
		s.createExpense(w, r, session.Identity.Email)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderExpensesPage(w http.ResponseWriter, r *http.Request, identity core.Identity) {
	owner := identity.Email
	filter := parseListFilter(r.URL.Query())

	records, err := s.ledger.List(r.Context(), owner, filter)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list expenses",
			"error", err,
			"owner", owner,
			"operation", "list")
		http.Error(w, "could not load expenses", http.StatusInternalServerError)
		return
	}

	summary := core.Summarize(records, time.Now())

	data := struct {
		Owner      string
		Name       string
		Picture    string
		Records    []core.ExpenseRecord
		Summary    core.Summary
		Search     string
		From       string
		To         string
		Categories []core.Category
		Payments   []core.PaymentMethod
	}{
		Owner:      owner,
		Name:       identity.Name,
		Picture:    identity.Picture,
		Records:    records,
		Summary:    summary,
		Search:     filter.Search,
		Categories: core.Categories(),
		Payments:   core.PaymentMethods(),
	}
	if !filter.From.IsZero() {
		data.From = filter.From.ISO()
	}
	if !filter.To.IsZero() {
		data.To = filter.To.ISO()
	}

	s.render(w, r, "expenses.html", data)
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request, owner string) {
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		writeFragment(w, http.StatusBadRequest, errorFragment("Malformed request."))
		return
	}

	rec, msg := parseExpenseForm(r.Form, owner)
	if msg != "" {
		writeFragment(w, http.StatusUnprocessableEntity, errorFragment(msg))
		return
	}

	id, err := s.ledger.Create(r.Context(), rec)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create expense",
			"error", err,
			"owner", owner,
			"category", rec.Category,
			"operation", "create")
		writeFragment(w, http.StatusInternalServerError, errorFragment("Error saving expense."))
		return
	}

	s.invalidateSummaries(owner)

	slog.InfoContext(r.Context(), "Expense created",
		"expense_id", id,
		"owner", owner,
		"category", rec.Category,
		"amount", rec.Amount.String(),
		"operation", "create")

	w.Header().Set("HX-Trigger", `{"expense:created": {}}`)
	writeFragment(w, http.StatusOK,
		`<div class="success">Recorded `+template.HTMLEscapeString(string(rec.Category))+
			` expense of `+template.HTMLEscapeString(formatAmount(rec.Amount))+`</div>`)
}

// handleUpdateExpense replaces the mutable fields of one owned record.
func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	session := s.currentSession(w, r)
	if session == nil {
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeFragment(w, http.StatusBadRequest, errorFragment("Malformed request."))
		return
	}

	owner := session.Identity.Email
	id, ok := parseID(r.Form)
	if !ok {
		writeFragment(w, http.StatusBadRequest, errorFragment("Missing expense id."))
		return
	}

	rec, msg := parseExpenseForm(r.Form, owner)
	if msg != "" {
		writeFragment(w, http.StatusUnprocessableEntity, errorFragment(msg))
		return
	}
	rec.ID = id

	updated, err := s.ledger.Update(r.Context(), rec)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to update expense",
			"error", err,
			"expense_id", id,
			"owner", owner,
			"operation", "update")
		writeFragment(w, http.StatusInternalServerError, errorFragment("Error updating expense."))
		return
	}
	if !updated {
		writeFragment(w, http.StatusNotFound, errorFragment("Expense not found."))
		return
	}

	s.invalidateSummaries(owner)

	slog.InfoContext(r.Context(), "Expense updated",
		"expense_id", id,
		"owner", owner,
		"operation", "update")

	w.Header().Set("HX-Trigger", `{"expense:updated": {}}`)
	writeFragment(w, http.StatusOK, `<div class="success">Expense updated</div>`)
}

// handleDeleteExpense removes one owned record. Deleting a record that is
// already gone reports success.
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	session := s.currentSession(w, r)
	if session == nil {
		return
	}
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		w.Header().Set("Allow", "POST, DELETE")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeFragment(w, http.StatusBadRequest, errorFragment("Malformed request."))
		return
	}

	owner := session.Identity.Email
	id, ok := parseID(r.Form)
	if !ok {
		writeFragment(w, http.StatusBadRequest, errorFragment("Missing expense id."))
		return
	}

	if err := s.ledger.Delete(r.Context(), id, owner); err != nil {
		slog.ErrorContext(r.Context(), "Failed to delete expense",
			"error", err,
			"expense_id", id,
			"owner", owner,
			"operation", "delete")
		writeFragment(w, http.StatusInternalServerError, errorFragment("Error deleting expense."))
		return
	}

	s.invalidateSummaries(owner)

	slog.InfoContext(r.Context(), "Expense deleted",
		"expense_id", id,
		"owner", owner,
		"operation", "delete")

	w.Header().Set("HX-Trigger", `{"expense:deleted": {}}`)
	writeFragment(w, http.StatusOK, `<div class="success">Expense deleted</div>`)
}

// handleExportCSV streams the filtered ledger as a CSV download.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	session := s.currentSession(w, r)
	if session == nil {
		return
	}

	owner := session.Identity.Email
	filter := parseListFilter(r.URL.Query())

	records, err := s.ledger.List(r.Context(), owner, filter)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to export expenses",
			"error", err,
			"owner", owner,
			"operation", "export")
		http.Error(w, "could not export expenses", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=expenses-%s.csv", time.Now().Format("2006-01-02")))

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "date", "category", "amount", "payment_method", "notes"})
	for _, rec := range records {
		_ = cw.Write([]string{
			fmt.Sprintf("%d", rec.ID),
			rec.Date.ISO(),
			string(rec.Category),
			formatAmount(rec.Amount),
			string(rec.PaymentMethod),
			rec.Notes,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		slog.ErrorContext(r.Context(), "CSV write failed", "error", err, "owner", owner)
	}
}
