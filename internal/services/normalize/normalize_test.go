package normalize

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplier-payment-backend/internal/models"
	"supplier-payment-backend/internal/tabular"
)

var strict = Options{RequirePeriod: true}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{in: "1,200.00", want: "1200"},
		{in: " 350.5 ", want: "350.5"},
		{in: "$1,000", want: "1000"},
		{in: "KES 12,500.75", want: "12500.75"},
		{in: "Ksh.400", want: "400"},
		{in: "-75.10", want: "-75.1"},
		{in: "1 234", want: "1234"},
		{in: "", wantErr: ErrMissingAmount},
		{in: "   ", wantErr: ErrMissingAmount},
		{in: "N/A", wantErr: ErrNotANumber},
		{in: "12abc", wantErr: ErrNotANumber},
		{in: "KES", wantErr: ErrNotANumber},
		{in: "1e5", wantErr: ErrNotANumber},
		{in: "ABC123", wantErr: ErrNotANumber},
		{in: "x12", wantErr: ErrNotANumber},
		{in: "usd 20", want: "20"},
		{in: "€15,00.5", want: "1500.5"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1200.00", FormatAmount(decimal.RequireFromString("1200")))
	assert.Equal(t, "0.10", FormatAmount(decimal.RequireFromString("0.1")))
}

func TestParseMonthAndYear(t *testing.T) {
	m, ok := ParseMonth("january")
	require.True(t, ok)
	assert.Equal(t, time.January, m)

	m, ok = ParseMonth("12")
	require.True(t, ok)
	assert.Equal(t, time.December, m)

	_, ok = ParseMonth("Jan")
	assert.False(t, ok)
	_, ok = ParseMonth("13")
	assert.False(t, ok)

	y, ok := ParseYear("2026.0")
	require.True(t, ok)
	assert.Equal(t, 2026, y)
	_, ok = ParseYear("26")
	assert.False(t, ok)
}

func TestScanPeriod(t *testing.T) {
	m, y, ok := ScanPeriod("payment for MARCH 2025 sales")
	require.True(t, ok)
	assert.Equal(t, time.March, m)
	assert.Equal(t, 2025, y)

	_, _, ok = ScanPeriod("Mar 2025")
	assert.False(t, ok)
	_, _, ok = ScanPeriod("March 25")
	assert.False(t, ok)
}

func TestCompanyKey(t *testing.T) {
	want := "ACME TRADERS"
	for _, name := range []string{"Acme  Traders", "ACME TRADERS", " acme traders ", "acme\tTraders"} {
		assert.Equal(t, want, CompanyKey(name), name)
	}
	// Decomposed and composed forms index to the same key.
	assert.Equal(t, CompanyKey("Caf\u00e9"), CompanyKey("cafe\u0301"))
}

func TestAliasPrecedence(t *testing.T) {
	tests := []struct {
		name  string
		cells map[string]string
		want  string
	}{
		{
			name:  "COMPANY NAME wins over COMPANY and NAME",
			cells: map[string]string{"COMPANY NAME": "First", "COMPANY": "Second", "NAME": "Third"},
			want:  "First",
		},
		{
			name:  "COMPANY wins over NAME",
			cells: map[string]string{"company": "Second", "Name": "Third"},
			want:  "Second",
		},
		{
			name:  "NAME used last",
			cells: map[string]string{" name ": "Third"},
			want:  "Third",
		},
		{
			name:  "SUPPLIER as final fallback",
			cells: map[string]string{"Supplier": "Fourth"},
			want:  "Fourth",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SalesAliases.ResolveCells(tt.cells)
			assert.Equal(t, tt.want, got[FieldCompany])
		})
	}

	amounts := []struct {
		cells map[string]string
		want  string
	}{
		{map[string]string{"SUM OF COST": "1", "COST": "2", "AMOUNT": "3", "TOTAL": "4"}, "1"},
		{map[string]string{"COST": "2", "AMOUNT": "3", "TOTAL": "4"}, "2"},
		{map[string]string{"AMOUNT": "3", "TOTAL": "4"}, "3"},
		{map[string]string{"TOTAL": "4"}, "4"},
	}
	for _, tt := range amounts {
		assert.Equal(t, tt.want, SalesAliases.ResolveCells(tt.cells)[FieldAmount])
	}
}

func TestLocateHeaderSkipsTitleRows(t *testing.T) {
	table := tabular.Table{Lines: [][]string{
		{"Monthly sales export"},
		{"Generated", "2026-02-01"},
		{"Item", "Company", "Qty", "Total"},
		{"Flour", "Acme Traders", "3", "90"},
	}}
	idx, cols, err := LocateHeader(table, SalesAliases, requiredSales, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
	assert.Equal(t, 1, cols[FieldCompany])
	assert.Equal(t, 3, cols[FieldAmount])
}

func TestNormalizeMissingColumnsIsStructural(t *testing.T) {
	table := tabular.Table{Name: "Sheet1", Lines: [][]string{
		{"COMPANY NAME", "QTY"},
		{"Acme Traders", "3"},
	}}
	_, err := Normalize(table, strict)
	require.Error(t, err)

	var se *StructuralError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, []string{"SUM of COST"}, se.Missing)
	assert.Contains(t, err.Error(), "Sheet1: required columns not found: SUM of COST")
}

func TestNormalizeSummarySheet(t *testing.T) {
	table := tabular.Table{Lines: [][]string{
		{"COMPANY NAME", "SUM of COST", "COMMENT", "MONTH", "YEAR"},
		{"Acme Traders", "1,200.00", "", "January", "2026"},
		{"", "", "", "", ""},
		{"  ", "N/A", "", "", ""},
		{"Baraka Stores", "350.00", "Paid for February 2026", "", ""},
	}}
	sheet, err := Normalize(table, strict)
	require.NoError(t, err)

	assert.Equal(t, ShapeSummary, sheet.Shape)
	assert.Equal(t, 1, sheet.HeaderLine)
	assert.Equal(t, 1, sheet.EmptyRows)
	require.Equal(t, 3, sheet.NonEmptyRows())

	acme := sheet.Records[0]
	assert.True(t, acme.Valid())
	assert.Equal(t, 2, acme.RowNumber)
	assert.Equal(t, "1200.00", FormatAmount(acme.Amount))
	assert.Equal(t, "January 2026", acme.Period)

	bad := sheet.Records[1]
	assert.Equal(t, 4, bad.RowNumber)
	assert.Equal(t,
		"Missing COMPANY NAME; Invalid SUM of COST (not a number); Missing MONTH; Missing YEAR",
		JoinIssues(bad.Issues))

	baraka := sheet.Records[2]
	assert.True(t, baraka.Valid())
	assert.Equal(t, time.February, baraka.Month)
	assert.Equal(t, 2026, baraka.Year)
	assert.Equal(t, "Paid for February 2026", baraka.Reference)
}

func TestNormalizeWithoutRequiredPeriod(t *testing.T) {
	rec := NormalizeCells(map[string]string{"COMPANY": "Acme", "AMOUNT": "10"}, 2, Options{})
	assert.True(t, rec.Valid())
	assert.Equal(t, time.Month(0), rec.Month)
	assert.Equal(t, "", rec.Period)
}

func TestPeriodRecoveryPrecedence(t *testing.T) {
	tests := []struct {
		name      string
		cells     map[string]string
		wantMonth time.Month
		wantYear  int
		wantIssue string
	}{
		{
			name:      "explicit columns",
			cells:     map[string]string{"MONTH": "May", "YEAR": "2024", "PERIOD": "June 2025"},
			wantMonth: time.May, wantYear: 2024,
		},
		{
			name:      "period column before comment",
			cells:     map[string]string{"PERIOD": "June 2025", "COMMENT": "July 2023"},
			wantMonth: time.June, wantYear: 2025,
		},
		{
			name:      "comment before reference",
			cells:     map[string]string{"COMMENT": "july 2023 top-up", "REFERENCE": "August 2022"},
			wantMonth: time.July, wantYear: 2023,
		},
		{
			name:      "reference last",
			cells:     map[string]string{"REFERENCE": "INV August 2022"},
			wantMonth: time.August, wantYear: 2022,
		},
		{
			name:      "explicit year kept, month recovered",
			cells:     map[string]string{"YEAR": "2021", "COMMENT": "September 2030"},
			wantMonth: time.September, wantYear: 2021,
		},
		{
			name:      "unparseable explicit month is not overwritten",
			cells:     map[string]string{"MONTH": "Sept", "YEAR": "2021", "COMMENT": "September 2021"},
			wantYear:  2021,
			wantIssue: IssueInvalidMonth,
		},
		{
			name:      "nothing recoverable",
			cells:     map[string]string{"COMMENT": "weekly restock"},
			wantIssue: IssueMissingMonth + "; " + IssueMissingYear,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells := map[string]string{"COMPANY NAME": "Acme", "SUM of COST": "10"}
			for k, v := range tt.cells {
				cells[k] = v
			}
			rec := NormalizeCells(cells, 2, strict)
			assert.Equal(t, tt.wantMonth, rec.Month)
			assert.Equal(t, tt.wantYear, rec.Year)
			assert.Equal(t, tt.wantIssue, JoinIssues(rec.Issues))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	canonical := map[string]string{
		"COMPANY NAME": "Acme Traders",
		"SUM of COST":  "1200.00",
		"COMMENT":      "January stock",
		"MONTH":        "January",
		"YEAR":         "2026",
	}
	first := NormalizeCells(canonical, 2, strict)
	second := NormalizeCells(CanonicalCells(first), 2, strict)
	assert.Equal(t, first, second)
	assert.Equal(t, canonical, CanonicalCells(second))
}

func TestDetectShape(t *testing.T) {
	summary := tabular.Table{Lines: [][]string{{}, {"company name", "SUM OF COST", "Comment", "month", "YEAR", ""}}}
	assert.Equal(t, ShapeSummary, DetectShape(summary))

	raw := tabular.Table{Lines: [][]string{{"COMPANY NAME", "SUM of COST", "COMMENT", "MONTH", "YEAR", "QTY"}}}
	assert.Equal(t, ShapeRaw, DetectShape(raw))
}

func TestSummarize(t *testing.T) {
	table := tabular.Table{Lines: [][]string{
		{"Date", "Company", "Item", "Cost", "Comment"},
		{"01/01", "Acme Traders", "Flour", "100.10", "January 2026"},
		{"02/01", "ACME  TRADERS", "Sugar", "200.20", "January 2026"},
		{"03/01", "Baraka Stores", "Salt", "50", "January 2026"},
		{"04/01", "Acme Traders", "Rice", "5", "February 2026"},
		{"05/01", "Ghost", "Oil", "oops", "January 2026"},
	}}
	sheet, err := Normalize(table, strict)
	require.NoError(t, err)
	assert.Equal(t, ShapeRaw, sheet.Shape)

	sum := Summarize(sheet.Records, DefaultTolerance)
	require.Len(t, sum.Rows, 3)
	require.Len(t, sum.Invalid, 1)

	assert.Equal(t, "Acme Traders", sum.Rows[0].CompanyName)
	assert.Equal(t, "300.30", sum.Rows[0].AmountText)
	assert.Equal(t, 2, sum.Rows[0].RowNumber)
	assert.Equal(t, "Baraka Stores", sum.Rows[1].CompanyName)
	assert.Equal(t, time.February, sum.Rows[2].Month)
	assert.Equal(t, 6, sum.Invalid[0].RowNumber)

	assert.Equal(t, 4, sum.Check.RawLines)
	assert.Equal(t, 3, sum.Check.SummaryRows)
	assert.Equal(t, "355.30", FormatAmount(sum.Check.RawTotal))
	assert.True(t, sum.Check.RawTotal.Equal(sum.Check.SummaryTotal))
	assert.True(t, sum.Check.Passed)
}

func TestUpgradeLegacyLedger(t *testing.T) {
	table := tabular.Table{Lines: [][]string{
		{"PERIOD", "COMPANY", "AMOUNT", "PAYMENT MODE", "COMMENT"},
		{"March 2025", "Acme Traders", "1,000.00", "Bank Transfer", ""},
		{"", "Baraka Stores", "120", "M-PESA", "Kibanda April 2025 Sales"},
		{"", "", "", "", ""},
		{"Q2", "Chai Ltd", "80", "cheque", ""},
	}}
	entries, err := UpgradeLedger(table, Options{})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, time.March, entries[0].Month)
	assert.Equal(t, 2025, entries[0].Year)
	assert.Equal(t, models.ModeBank, entries[0].Mode)
	assert.Equal(t, "March 2025", entries[0].Period)

	assert.Equal(t, time.April, entries[1].Month)
	assert.Equal(t, "April 2025", entries[1].Period)
	assert.Equal(t, models.ModeMobile, entries[1].Mode)

	assert.Equal(t, time.Month(0), entries[2].Month)
	assert.Equal(t, "Q2", entries[2].Period)
	assert.Equal(t, models.Mode("CHEQUE"), entries[2].Mode)
	assert.Equal(t, 2, entries[2].Seq)
}

func TestUpgradeLedgerRejectsBadAmount(t *testing.T) {
	table := tabular.Table{Lines: [][]string{
		{"MONTH", "YEAR", "PERIOD", "COMPANY NAME", "AMOUNT", "MODE", "REFERENCE"},
		{"January", "2026", "January 2026", "Acme", "lots", "BANK", ""},
	}}
	_, err := UpgradeLedger(table, Options{})
	var se *StructuralError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "ledger", se.Source)
	assert.Contains(t, se.Detail, "row 2")
}

func TestUpgradeLedgerEmptyTable(t *testing.T) {
	_, err := UpgradeLedger(tabular.Table{}, Options{})
	var se *StructuralError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "ledger", se.Source)

	headerOnly := tabular.Table{Lines: [][]string{{"COMPANY NAME", "AMOUNT"}}}
	entries, err := UpgradeLedger(headerOnly, Options{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}
