package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"spendlog/internal/core"
	"spendlog/internal/storage"
)

// reportRange maps the period selector to a date range ending today.
func reportRange(period string, now time.Time) (core.Date, core.Date) {
	today := core.NewDate(now.Year(), int(now.Month()), now.Day())
	switch period {
	case "weekly":
		start := now.AddDate(0, 0, -6)
		return core.NewDate(start.Year(), int(start.Month()), start.Day()), today
	case "yearly":
		return core.NewDate(now.Year(), 1, 1), today
	default: // monthly
		return core.NewDate(now.Year(), int(now.Month()), 1), today
	}
}

// handleReports renders spending summaries for a selectable period. Results
// are cached per owner and period until the next ledger mutation.
func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	session := s.currentSession(w, r)
	if session == nil {
		return
	}

	owner := session.Identity.Email
	q := r.URL.Query()

	period := strings.TrimSpace(q.Get("period"))
	switch period {
	case "weekly", "monthly", "yearly", "custom":
	default:
		period = "monthly"
	}

	now := time.Now()
	var from, to core.Date
	if period == "custom" {
		f := parseListFilter(q)
		from, to = f.From, f.To
		if from.IsZero() || to.IsZero() {
			// Incomplete custom range degrades to the monthly view.
			period = "monthly"
		}
	}
	if period != "custom" {
		from, to = reportRange(period, now)
	}

	key := owner + "|" + period + "|" + from.ISO() + "|" + to.ISO()
	summary, cached := s.summaryCache.Get(key)
	if !cached {
		records, err := s.ledger.List(r.Context(), owner, storage.ListFilter{From: from, To: to})
		if err != nil {
			slog.ErrorContext(r.Context(), "Failed to build report",
				"error", err,
				"owner", owner,
				"period", period,
				"operation", "list")
			http.Error(w, "could not build report", http.StatusInternalServerError)
			return
		}
		summary = core.Summarize(records, now)
		s.summaryCache.Set(key, summary)
	} else {
		slog.DebugContext(r.Context(), "Report cache hit", "owner", owner, "period", period)
	}

	data := struct {
		Owner   string
		Name    string
		Picture string
		Period  string
		From    string
		To      string
		Summary core.Summary
	}{
		Owner:   owner,
		Name:    session.Identity.Name,
		Picture: session.Identity.Picture,
		Period:  period,
		From:    from.ISO(),
		To:      to.ISO(),
		Summary: summary,
	}
	s.render(w, r, "reports.html", data)
}
