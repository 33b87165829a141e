package normalize

import (
	"time"

	"github.com/shopspring/decimal"

	"supplier-payment-backend/internal/models"
)

// DefaultTolerance absorbs rounding when comparing money totals.
var DefaultTolerance = decimal.New(1, -2)

// SummaryCheck compares the validated raw lines with the aggregated summary.
type SummaryCheck struct {
	RawLines     int             `json:"raw_lines"`
	SummaryRows  int             `json:"summary_rows"`
	RawTotal     decimal.Decimal `json:"raw_total"`
	SummaryTotal decimal.Decimal `json:"summary_total"`
	Difference   decimal.Decimal `json:"difference"`
	Passed       bool            `json:"passed"`
}

// Summary is the per-company aggregation of a raw sheet. Invalid raw lines
// are carried through untouched so they still land in the invalid bucket.
type Summary struct {
	Rows    []models.SalesRecord
	Invalid []models.SalesRecord
	Check   SummaryCheck
}

type groupKey struct {
	company string
	month   time.Month
	year    int
}

// Summarize sums valid raw lines per company and period, keeping the first
// seen display name, comment and reference, in first-seen order.
func Summarize(records []models.SalesRecord, tolerance decimal.Decimal) Summary {
	var out Summary
	index := make(map[groupKey]int)
	rawTotal := decimal.Zero

	for _, r := range records {
		if !r.Valid() {
			out.Invalid = append(out.Invalid, r)
			continue
		}
		out.Check.RawLines++
		rawTotal = rawTotal.Add(r.Amount)

		k := groupKey{company: CompanyKey(r.CompanyName), month: r.Month, year: r.Year}
		if i, ok := index[k]; ok {
			row := &out.Rows[i]
			row.Amount = row.Amount.Add(r.Amount)
			row.AmountText = FormatAmount(row.Amount)
			if row.Comment == "" {
				row.Comment = r.Comment
			}
			if row.Reference == "" {
				row.Reference = r.Reference
			}
			continue
		}

		row := r
		row.Issues = nil
		row.AmountText = FormatAmount(r.Amount)
		index[k] = len(out.Rows)
		out.Rows = append(out.Rows, row)
	}

	summaryTotal := decimal.Zero
	for _, row := range out.Rows {
		summaryTotal = summaryTotal.Add(row.Amount)
	}

	out.Check.SummaryRows = len(out.Rows)
	out.Check.RawTotal = rawTotal
	out.Check.SummaryTotal = summaryTotal
	out.Check.Difference = rawTotal.Sub(summaryTotal).Abs()
	out.Check.Passed = out.Check.Difference.LessThanOrEqual(tolerance)
	return out
}
