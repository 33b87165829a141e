package reconciliation

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"supplier-payment-backend/internal/models"
	"supplier-payment-backend/internal/services/normalize"
	"supplier-payment-backend/internal/services/registry"
	"supplier-payment-backend/internal/tabular"
)

// Input is an immutable snapshot for one pass: nothing here is read from or
// cached across other passes.
type Input struct {
	Sales        tabular.Table
	Registry     []models.SupplierRecord
	Ledger       []models.LedgerEntry
	Threshold    decimal.Decimal
	Organization string
	Tolerance    decimal.Decimal
	Normalize    normalize.Options
}

type Result struct {
	Shape              normalize.Shape      `json:"shape"`
	Buckets            models.Buckets       `json:"buckets"`
	NewLedger          []models.LedgerEntry `json:"new_ledger"`
	MergedLedger       []models.LedgerEntry `json:"merged_ledger"`
	Metrics            Metrics              `json:"metrics"`
	RegistrySize       int                  `json:"registry_size"`
	RegistryDuplicates int                  `json:"registry_duplicates"`
}

// Run executes normalize -> classify -> reconcile -> merge -> verify. The
// only error is a structural one raised before any row is processed.
func Run(in Input) (*Result, error) {
	sheet, err := normalize.Normalize(in.Sales, in.Normalize)
	if err != nil {
		return nil, err
	}
	tolerance := in.Tolerance
	if tolerance.IsZero() {
		tolerance = normalize.DefaultTolerance
	}

	records := sheet.Records
	var summary *normalize.SummaryCheck
	if sheet.Shape == normalize.ShapeRaw {
		s := normalize.Summarize(sheet.Records, tolerance)
		records = append(append([]models.SalesRecord{}, s.Rows...), s.Invalid...)
		summary = &s.Check
	}

	idx := registry.NewIndex(in.Registry)
	opts := Options{Threshold: in.Threshold, Organization: in.Organization}

	prior := make([]models.LedgerEntry, len(in.Ledger))
	for i, e := range in.Ledger {
		prior[i] = normalize.UpgradeLedgerEntry(e)
	}

	res := &Result{
		Shape:              sheet.Shape,
		RegistrySize:       idx.Len(),
		RegistryDuplicates: idx.Duplicates(),
	}
	validTotal := decimal.Zero
	for _, rec := range records {
		if rec.Valid() {
			validTotal = validTotal.Add(rec.Amount)
		}
		outcome := Reconcile(rec, idx, opts)
		res.Buckets.Add(outcome)
		if entry, ok := LedgerEntryFor(rec, outcome); ok {
			entry.ID = uuid.New()
			res.NewLedger = append(res.NewLedger, entry)
		}
	}

	res.MergedLedger = MergeLedger(prior, res.NewLedger)
	res.Metrics = Verify(VerifyInput{
		Buckets:         res.Buckets,
		NonEmptyRows:    expectedRows(sheet, summary),
		EmptyRows:       sheet.EmptyRows,
		ValidInputTotal: validTotal,
		PriorLedger:     len(prior),
		NewLedger:       len(res.NewLedger),
		MergedLedger:    len(res.MergedLedger),
		Summary:         summary,
		Tolerance:       tolerance,
	})
	return res, nil
}

// expectedRows counts the rows the buckets must account for, from the input
// side: every non-empty line of a summary sheet, or for a raw sheet one row
// per aggregated group plus each line that failed validation.
func expectedRows(sheet *normalize.Sheet, summary *normalize.SummaryCheck) int {
	if summary == nil {
		return sheet.NonEmptyRows()
	}
	return summary.SummaryRows + sheet.NonEmptyRows() - summary.RawLines
}
