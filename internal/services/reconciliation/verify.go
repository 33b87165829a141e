package reconciliation

import (
	"strconv"

	"github.com/shopspring/decimal"

	"supplier-payment-backend/internal/models"
	"supplier-payment-backend/internal/services/normalize"
)

// Metrics is recomputed on every pass and never persisted as a source of truth.
type Metrics struct {
	NonEmptyRows int `json:"non_empty_rows"`
	EmptyRows    int `json:"empty_rows"`

	BankCount      int `json:"bank_count"`
	MobileCount    int `json:"mobile_count"`
	ExceptionCount int `json:"exception_count"`
	InvalidCount   int `json:"invalid_count"`

	BankTotal      decimal.Decimal `json:"bank_total"`
	MobileTotal    decimal.Decimal `json:"mobile_total"`
	ExceptionTotal decimal.Decimal `json:"exception_total"`
	// TotalPayable excludes invalid rows, whose amounts were never validated.
	TotalPayable     decimal.Decimal `json:"total_payable"`
	ValidInputTotal  decimal.Decimal `json:"valid_input_total"`
	TotalsDifference decimal.Decimal `json:"totals_difference"`

	PriorLedgerEntries  int `json:"prior_ledger_entries"`
	NewLedgerEntries    int `json:"new_ledger_entries"`
	MergedLedgerEntries int `json:"merged_ledger_entries"`

	Balanced         bool `json:"balanced"`
	TotalsReconciled bool `json:"totals_reconciled"`
	LedgerConsistent bool `json:"ledger_consistent"`
	Passed           bool `json:"passed"`

	Summary *normalize.SummaryCheck `json:"summary,omitempty"`
}

type VerifyInput struct {
	Buckets         models.Buckets
	NonEmptyRows    int
	EmptyRows       int
	ValidInputTotal decimal.Decimal
	PriorLedger     int
	NewLedger       int
	MergedLedger    int
	Summary         *normalize.SummaryCheck
	Tolerance       decimal.Decimal
}

// Verify recomputes bucket cardinalities and totals and checks conservation:
// every non-empty input row lands in exactly one bucket, and the payable total
// matches the valid input total within tolerance. Mismatches are reported in
// the returned flags, never corrected.
func Verify(in VerifyInput) Metrics {
	b := in.Buckets
	m := Metrics{
		NonEmptyRows:        in.NonEmptyRows,
		EmptyRows:           in.EmptyRows,
		BankCount:           len(b.Bank),
		MobileCount:         len(b.Mobile),
		ExceptionCount:      len(b.Exceptions),
		InvalidCount:        len(b.Invalid),
		BankTotal:           decimal.Zero,
		MobileTotal:         decimal.Zero,
		ExceptionTotal:      decimal.Zero,
		ValidInputTotal:     in.ValidInputTotal,
		PriorLedgerEntries:  in.PriorLedger,
		NewLedgerEntries:    in.NewLedger,
		MergedLedgerEntries: in.MergedLedger,
		Summary:             in.Summary,
	}
	for _, e := range b.Bank {
		m.BankTotal = m.BankTotal.Add(e.Amount)
	}
	for _, e := range b.Mobile {
		m.MobileTotal = m.MobileTotal.Add(e.Amount)
	}
	for _, e := range b.Exceptions {
		m.ExceptionTotal = m.ExceptionTotal.Add(e.Amount)
	}
	m.TotalPayable = m.BankTotal.Add(m.MobileTotal).Add(m.ExceptionTotal)
	m.TotalsDifference = m.TotalPayable.Sub(in.ValidInputTotal).Abs()

	m.Balanced = in.NonEmptyRows == m.BankCount+m.MobileCount+m.ExceptionCount+m.InvalidCount
	m.TotalsReconciled = m.TotalsDifference.LessThanOrEqual(in.Tolerance)
	m.LedgerConsistent = in.NewLedger == m.BankCount+m.MobileCount &&
		in.MergedLedger == in.PriorLedger+in.NewLedger
	m.Passed = m.Balanced && m.TotalsReconciled && m.LedgerConsistent &&
		(in.Summary == nil || in.Summary.Passed)
	return m
}

// Report renders the metrics as labeled lines for the operator.
func (m Metrics) Report() []models.ReportLine {
	count := strconv.Itoa
	money := normalize.FormatAmount
	lines := []models.ReportLine{
		{Label: "Non-empty input rows", Value: count(m.NonEmptyRows)},
		{Label: "Empty rows skipped", Value: count(m.EmptyRows)},
		{Label: "Bank batch rows", Value: count(m.BankCount)},
		{Label: "Bank batch total", Value: money(m.BankTotal)},
		{Label: "Mobile batch rows", Value: count(m.MobileCount)},
		{Label: "Mobile batch total", Value: money(m.MobileTotal)},
		{Label: "Exception rows", Value: count(m.ExceptionCount)},
		{Label: "Exception total", Value: money(m.ExceptionTotal)},
		{Label: "Invalid rows", Value: count(m.InvalidCount)},
		{Label: "Total payable", Value: money(m.TotalPayable)},
		{Label: "Valid input total", Value: money(m.ValidInputTotal)},
		{Label: "Totals difference", Value: money(m.TotalsDifference)},
		{Label: "Prior ledger entries", Value: count(m.PriorLedgerEntries)},
		{Label: "New ledger entries", Value: count(m.NewLedgerEntries)},
		{Label: "Merged ledger entries", Value: count(m.MergedLedgerEntries)},
		{Label: "Row partition check", Value: passFail(m.Balanced)},
		{Label: "Totals check", Value: passFail(m.TotalsReconciled)},
		{Label: "Ledger check", Value: passFail(m.LedgerConsistent)},
	}
	if s := m.Summary; s != nil {
		lines = append(lines,
			models.ReportLine{Label: "Raw lines aggregated", Value: count(s.RawLines)},
			models.ReportLine{Label: "Raw total", Value: money(s.RawTotal)},
			models.ReportLine{Label: "Summary total", Value: money(s.SummaryTotal)},
			models.ReportLine{Label: "Summary check", Value: passFail(s.Passed)},
		)
	}
	return append(lines, models.ReportLine{Label: "Verification", Value: passFail(m.Passed)})
}

func passFail(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}
