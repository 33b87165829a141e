package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"supplier-payment-backend/internal/models"
	"supplier-payment-backend/internal/tabular"
)

var requiredLedger = []Field{FieldCompany, FieldAmount}

// ParseMode maps the spellings found in old ledgers onto the two channels.
// Unrecognized text is kept upper-cased so history is never rewritten.
func ParseMode(text string) models.Mode {
	s := CanonicalLabel(text)
	switch {
	case s == "A" || s == "CHANNEL A" || strings.Contains(s, "BANK") || s == "EFT":
		return models.ModeBank
	case s == "B" || s == "CHANNEL B" || strings.Contains(s, "MOBILE") || strings.Contains(s, "PESA"):
		return models.ModeMobile
	default:
		return models.Mode(s)
	}
}

// UpgradeLedger reads a ledger table in the canonical or legacy layout.
// A table without a header, including an empty file, and an amount that
// cannot be parsed both halt the read: the ledger is history and is never
// silently altered. A header with no rows is an empty ledger.
func UpgradeLedger(table tabular.Table, opts Options) ([]models.LedgerEntry, error) {
	headerIdx, cols, err := LocateHeader(table, LedgerAliases, requiredLedger, opts.scanRows())
	if err != nil {
		var se *StructuralError
		if errors.As(err, &se) {
			se.Source = "ledger"
		}
		return nil, err
	}

	var entries []models.LedgerEntry
	for i := headerIdx + 1; i < len(table.Lines); i++ {
		line := table.Lines[i]
		if isEmptyLine(line) {
			continue
		}
		v := cols.Values(line)
		amount, err := ParseAmount(v[FieldAmount])
		if err != nil {
			return nil, &StructuralError{
				Source: "ledger",
				Detail: fmt.Sprintf("row %d: invalid AMOUNT %q (%v)", i+1, v[FieldAmount], err),
			}
		}
		month, _ := ParseMonth(v[FieldMonth])
		year, _ := ParseYear(v[FieldYear])
		entry := UpgradeLedgerEntry(models.LedgerEntry{
			ID:          uuid.New(),
			Seq:         len(entries),
			Month:       month,
			Year:        year,
			Period:      v[FieldPeriod],
			CompanyName: v[FieldCompany],
			Amount:      amount,
			Mode:        ParseMode(v[FieldMode]),
			Reference:   v[FieldReference],
		})
		entries = append(entries, entry)
	}
	return entries, nil
}

// UpgradeLedgerEntry recovers a missing month or year from the period or
// reference text and fills the period label.
func UpgradeLedgerEntry(e models.LedgerEntry) models.LedgerEntry {
	for _, text := range []string{e.Period, e.Reference} {
		if models.MonthName(e.Month) != "" && e.Year > 0 {
			break
		}
		m, y, ok := ScanPeriod(text)
		if !ok {
			continue
		}
		if models.MonthName(e.Month) == "" {
			e.Month = m
		}
		if e.Year <= 0 {
			e.Year = y
		}
	}
	if e.Period == "" {
		e.Period = PeriodLabel(e.Month, e.Year)
	}
	if e.Month < time.January || e.Month > time.December {
		e.Month = 0
	}
	return e
}
