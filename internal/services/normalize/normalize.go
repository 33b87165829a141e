// Package normalize turns heterogeneous spreadsheet rows into canonical
// sales and ledger records.
package normalize

import (
	"errors"
	"strings"

	"supplier-payment-backend/internal/models"
	"supplier-payment-backend/internal/tabular"
)

// Shape is the layout of an uploaded sales sheet.
type Shape string

const (
	ShapeSummary Shape = "summary"
	ShapeRaw     Shape = "raw"
)

// Issue texts reported on invalid rows.
const (
	IssueMissingCompany = "Missing COMPANY NAME"
	IssueMissingAmount  = "Missing SUM of COST"
	IssueInvalidAmount  = "Invalid SUM of COST (not a number)"
	IssueMissingMonth   = "Missing MONTH"
	IssueInvalidMonth   = "Invalid MONTH"
	IssueMissingYear    = "Missing YEAR"
	IssueInvalidYear    = "Invalid YEAR"
)

const DefaultHeaderScanRows = 20

type Options struct {
	RequirePeriod  bool
	HeaderScanRows int
}

func (o Options) scanRows() int {
	if o.HeaderScanRows <= 0 {
		return DefaultHeaderScanRows
	}
	return o.HeaderScanRows
}

// Sheet is a normalized sales table. Records holds one entry per non-empty
// data line, valid or not, in source order.
type Sheet struct {
	Shape      Shape
	HeaderLine int
	Records    []models.SalesRecord
	EmptyRows  int
}

// NonEmptyRows is the number of data lines that produced a record.
func (s *Sheet) NonEmptyRows() int {
	return len(s.Records)
}

var requiredSales = []Field{FieldCompany, FieldAmount}

// DetectShape reports ShapeSummary when the first non-empty line is exactly
// the canonical summary header.
func DetectShape(table tabular.Table) Shape {
	for _, line := range table.Lines {
		if isEmptyLine(line) {
			continue
		}
		var labels []string
		for _, cell := range line {
			labels = append(labels, CanonicalLabel(cell))
		}
		for len(labels) > 0 && labels[len(labels)-1] == "" {
			labels = labels[:len(labels)-1]
		}
		if len(labels) != len(SummaryColumns) {
			return ShapeRaw
		}
		for i, want := range SummaryColumns {
			if labels[i] != CanonicalLabel(want) {
				return ShapeRaw
			}
		}
		return ShapeSummary
	}
	return ShapeRaw
}

// LocateHeader scans the first scanRows lines for one that names every
// required field. It returns the 0-based line index.
func LocateHeader(table tabular.Table, aliases AliasTable, required []Field, scanRows int) (int, Columns, error) {
	best := Columns{}
	limit := min(scanRows, len(table.Lines))
	for i := 0; i < limit; i++ {
		cols := aliases.Resolve(table.Lines[i])
		if len(cols.Missing(required)) == 0 {
			return i, cols, nil
		}
		if len(cols) > len(best) {
			best = cols
		}
	}

	source := table.Name
	if source == "" {
		source = "input"
	}
	return 0, nil, &StructuralError{
		Source:  source,
		Missing: best.Missing(required),
	}
}

// Normalize reads a sales table into records. A missing header is the only
// error; row problems are recorded on the records themselves.
func Normalize(table tabular.Table, opts Options) (*Sheet, error) {
	shape := DetectShape(table)
	headerIdx, cols, err := LocateHeader(table, SalesAliases, requiredSales, opts.scanRows())
	if err != nil {
		return nil, err
	}

	sheet := &Sheet{Shape: shape, HeaderLine: headerIdx + 1}
	for i := headerIdx + 1; i < len(table.Lines); i++ {
		line := table.Lines[i]
		if isEmptyLine(line) {
			sheet.EmptyRows++
			continue
		}
		sheet.Records = append(sheet.Records, build(cols.Values(line), i+1, opts))
	}
	return sheet, nil
}

// NormalizeCells normalizes one label→text row. lineNumber is the 1-based
// source line.
func NormalizeCells(cells map[string]string, lineNumber int, opts Options) models.SalesRecord {
	return build(SalesAliases.ResolveCells(cells), lineNumber, opts)
}

// CanonicalCells renders a record back to the canonical summary columns.
func CanonicalCells(r models.SalesRecord) map[string]string {
	amount := r.AmountText
	if r.Valid() {
		amount = FormatAmount(r.Amount)
	}
	return map[string]string{
		"COMPANY NAME": r.CompanyName,
		"SUM of COST":  amount,
		"COMMENT":      r.Comment,
		"MONTH":        models.MonthName(r.Month),
		"YEAR":         models.YearText(r.Year),
	}
}

func build(v map[Field]string, lineNumber int, opts Options) models.SalesRecord {
	rec := models.SalesRecord{
		RowNumber:   lineNumber,
		CompanyName: v[FieldCompany],
		Comment:     v[FieldComment],
		AmountText:  v[FieldAmount],
		MonthText:   v[FieldMonth],
		YearText:    v[FieldYear],
	}

	var issues []string
	if rec.CompanyName == "" {
		issues = append(issues, IssueMissingCompany)
	}

	amount, err := ParseAmount(rec.AmountText)
	switch {
	case errors.Is(err, ErrMissingAmount):
		issues = append(issues, IssueMissingAmount)
	case err != nil:
		issues = append(issues, IssueInvalidAmount)
	default:
		rec.Amount = amount
	}

	month, monthOK := ParseMonth(rec.MonthText)
	year, yearOK := ParseYear(rec.YearText)

	// Recovery only fills fields the row left blank, in precedence order.
	for _, text := range []string{v[FieldPeriod], rec.Comment, v[FieldReference]} {
		if (monthOK || rec.MonthText != "") && (yearOK || rec.YearText != "") {
			break
		}
		m, y, ok := ScanPeriod(text)
		if !ok {
			continue
		}
		if !monthOK && rec.MonthText == "" {
			month, monthOK = m, true
		}
		if !yearOK && rec.YearText == "" {
			year, yearOK = y, true
		}
	}
	if monthOK {
		rec.Month = month
	}
	if yearOK {
		rec.Year = year
	}

	if opts.RequirePeriod {
		if !monthOK {
			issues = append(issues, pick(rec.MonthText == "", IssueMissingMonth, IssueInvalidMonth))
		}
		if !yearOK {
			issues = append(issues, pick(rec.YearText == "", IssueMissingYear, IssueInvalidYear))
		}
	}

	rec.Period = v[FieldPeriod]
	if rec.Period == "" {
		rec.Period = PeriodLabel(rec.Month, rec.Year)
	}
	rec.Reference = v[FieldReference]
	if rec.Reference == "" {
		rec.Reference = rec.Comment
	}

	rec.Issues = issues
	return rec
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}

// JoinIssues renders every violated rule of a record.
func JoinIssues(issues []string) string {
	return strings.Join(issues, "; ")
}
