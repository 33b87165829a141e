package reconciliation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"supplier-payment-backend/internal/models"
	"supplier-payment-backend/internal/services/normalize"
	"supplier-payment-backend/internal/services/registry"
)

const IssueSupplierNotFound = "supplier not found"

type Options struct {
	Threshold    decimal.Decimal
	Organization string
}

// Reconcile routes one normalized record to exactly one bucket:
//
//  1. invalid record           -> InvalidEntry
//  2. supplier not registered  -> ExceptionEntry
//  3. bank channel, details incomplete   -> ExceptionEntry, else BankBatchEntry
//  4. mobile channel, details incomplete -> ExceptionEntry, else MobileBatchEntry
func Reconcile(rec models.SalesRecord, idx *registry.Index, opts Options) models.Outcome {
	if !rec.Valid() {
		return models.InvalidEntry{
			RowNumber:   rec.RowNumber,
			CompanyName: rec.CompanyName,
			AmountText:  rec.AmountText,
			Comment:     rec.Comment,
			MonthText:   rec.MonthText,
			YearText:    rec.YearText,
			Issue:       normalize.JoinIssues(rec.Issues),
		}
	}

	mode := Classify(rec.Amount, opts.Threshold)
	exception := func(issue string) models.Outcome {
		return models.ExceptionEntry{
			CompanyName: rec.CompanyName,
			Amount:      rec.Amount,
			Mode:        mode,
			Month:       rec.Month,
			Year:        rec.Year,
			Issue:       issue,
		}
	}

	supplier, ok := idx.Lookup(rec.CompanyName)
	if !ok {
		return exception(IssueSupplierNotFound)
	}
	comment := reference(rec, opts.Organization)

	switch mode {
	case models.ModeBank:
		b := supplier.Bank
		if missing := missingFields("ACCOUNT", b.Account, "BRANCH", b.Branch); len(missing) > 0 {
			return exception(fmt.Sprintf("missing bank details: %s", strings.Join(missing, ", ")))
		}
		return models.BankBatchEntry{
			Name:    strings.TrimSpace(supplier.CompanyName),
			Account: strings.TrimSpace(b.Account),
			Branch:  strings.TrimSpace(b.Branch),
			Amount:  rec.Amount,
			Comment: comment,
		}
	default:
		m := supplier.Mobile
		if missing := missingFields("PROVIDER", m.Provider, "NUMBER", m.Number, "HOLDER NAMES", m.HolderNames); len(missing) > 0 {
			return exception(fmt.Sprintf("missing mobile details: %s", strings.Join(missing, ", ")))
		}
		return models.MobileBatchEntry{
			Name:        strings.TrimSpace(supplier.CompanyName),
			Provider:    strings.TrimSpace(m.Provider),
			Number:      strings.TrimSpace(m.Number),
			HolderNames: strings.TrimSpace(m.HolderNames),
			Amount:      rec.Amount,
			Comment:     comment,
		}
	}
}

// LedgerEntryFor mirrors a bank or mobile emission into a ledger entry.
func LedgerEntryFor(rec models.SalesRecord, o models.Outcome) (models.LedgerEntry, bool) {
	e := models.LedgerEntry{
		Month:  rec.Month,
		Year:   rec.Year,
		Period: rec.Period,
		Amount: rec.Amount,
	}
	switch b := o.(type) {
	case models.BankBatchEntry:
		e.CompanyName, e.Mode, e.Reference = b.Name, models.ModeBank, b.Comment
	case models.MobileBatchEntry:
		e.CompanyName, e.Mode, e.Reference = b.Name, models.ModeMobile, b.Comment
	default:
		return models.LedgerEntry{}, false
	}
	return e, true
}

// reference is the record's own comment, or "<organization> <period> Sales".
func reference(rec models.SalesRecord, organization string) string {
	if ref := strings.TrimSpace(rec.Reference); ref != "" {
		return ref
	}
	var parts []string
	for _, p := range []string{organization, rec.Period, "Sales"} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// missingFields takes label/value pairs and returns the labels with blank values.
func missingFields(pairs ...string) []string {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			missing = append(missing, pairs[i])
		}
	}
	return missing
}
