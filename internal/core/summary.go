package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// CategoryAmount represents an amount aggregated by a taxonomy name
// (category or payment method).
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}

// DayAmount is a time bucket for trend charts: the spend on one calendar day.
type DayAmount struct {
	Date   Date
	Amount decimal.Decimal
}

// Summary is a read-only aggregation over an already owner-scoped record set.
// It never re-filters by anything other than the fetched slice.
type Summary struct {
	Total       decimal.Decimal
	MonthToDate decimal.Decimal
	AvgDaily    decimal.Decimal
	TopCategory string
	TopPayment  string
	ByCategory  []CategoryAmount
	ByPayment   []CategoryAmount
	DailyTotals []DayAmount
	RecordCount int
}

// Summarize derives dashboard and report figures from the given records.
// now supplies the reference time for the month-to-date figure.
func Summarize(records []ExpenseRecord, now time.Time) Summary {
	s := Summary{
		Total:       decimal.Zero,
		MonthToDate: decimal.Zero,
		AvgDaily:    decimal.Zero,
		RecordCount: len(records),
	}
	if len(records) == 0 {
		return s
	}

	byCategory := make(map[string]decimal.Decimal)
	byPayment := make(map[string]decimal.Decimal)
	byDay := make(map[string]decimal.Decimal)
	minDate, maxDate := records[0].Date.Time, records[0].Date.Time

	for _, r := range records {
		s.Total = s.Total.Add(r.Amount)
		byCategory[string(r.Category)] = byCategory[string(r.Category)].Add(r.Amount)
		byPayment[string(r.PaymentMethod)] = byPayment[string(r.PaymentMethod)].Add(r.Amount)
		byDay[r.Date.ISO()] = byDay[r.Date.ISO()].Add(r.Amount)

		if r.Date.Year() == now.Year() && r.Date.Month() == now.Month() {
			s.MonthToDate = s.MonthToDate.Add(r.Amount)
		}
		if r.Date.Before(minDate) {
			minDate = r.Date.Time
		}
		if r.Date.After(maxDate) {
			maxDate = r.Date.Time
		}
	}

	s.ByCategory = sortedAmounts(byCategory)
	s.ByPayment = sortedAmounts(byPayment)
	if len(s.ByCategory) > 0 {
		s.TopCategory = s.ByCategory[0].Name
	}
	if len(s.ByPayment) > 0 {
		s.TopPayment = s.ByPayment[0].Name
	}

	days := int(maxDate.Sub(minDate).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	s.AvgDaily = s.Total.Div(decimal.NewFromInt(int64(days))).Round(2)

	for iso, amt := range byDay {
		d, err := ParseDate(iso)
		if err != nil {
			continue
		}
		s.DailyTotals = append(s.DailyTotals, DayAmount{Date: d, Amount: amt})
	}
	sort.Slice(s.DailyTotals, func(i, j int) bool {
		return s.DailyTotals[i].Date.Before(s.DailyTotals[j].Date.Time)
	})

	return s
}

// sortedAmounts converts an aggregation map to a slice ordered by amount
// descending, names ascending on ties so the output is deterministic.
func sortedAmounts(m map[string]decimal.Decimal) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(m))
	for name, amt := range m {
		out = append(out, CategoryAmount{Name: name, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Amount.Equal(out[j].Amount) {
			return out[i].Amount.GreaterThan(out[j].Amount)
		}
		return out[i].Name < out[j].Name
	})
	return out
}
