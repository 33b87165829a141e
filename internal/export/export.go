// Package export renders reconciliation outputs as downloadable batch files.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"supplier-payment-backend/internal/models"
	"supplier-payment-backend/internal/services/normalize"
	"supplier-payment-backend/internal/tabular"
)

type Bucket string

const (
	BucketBank       Bucket = "bank"
	BucketMobile     Bucket = "mobile"
	BucketExceptions Bucket = "exceptions"
	BucketInvalid    Bucket = "invalid"
	BucketLedger     Bucket = "ledger"
	BucketNewLedger  Bucket = "new-ledger"
	BucketMetrics    Bucket = "metrics"
)

// Buckets lists every downloadable output of a pass.
var Buckets = []Bucket{BucketBank, BucketMobile, BucketExceptions, BucketInvalid, BucketLedger, BucketNewLedger, BucketMetrics}

var (
	BankHeader      = []string{"NAME", "ACCOUNT", "BRANCH", "AMOUNT", "COMMENT"}
	MobileHeader    = []string{"NAME", "PROVIDER", "NUMBER", "HOLDER NAMES", "AMOUNT", "COMMENT"}
	LedgerHeader    = []string{"MONTH", "YEAR", "PERIOD", "COMPANY NAME", "AMOUNT", "MODE", "REFERENCE"}
	ExceptionHeader = []string{"COMPANY NAME", "AMOUNT", "MODE", "MONTH", "YEAR", "ISSUE"}
	InvalidHeader   = []string{"ROW_NUMBER", "COMPANY NAME", "SUM of COST", "COMMENT", "MONTH", "YEAR", "ISSUE"}
	MetricsHeader   = []string{"METRIC", "VALUE"}
)

// ParseBucket validates a bucket name from a request path.
func ParseBucket(name string) (Bucket, error) {
	for _, b := range Buckets {
		if string(b) == strings.ToLower(name) {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown bucket %q", name)
}

// Outputs is everything a pass produces for download.
type Outputs struct {
	Buckets      models.Buckets
	NewLedger    []models.LedgerEntry
	MergedLedger []models.LedgerEntry
	Report       []models.ReportLine
}

// Table returns the header and rows of one bucket.
func (o Outputs) Table(b Bucket) ([]string, [][]string, error) {
	switch b {
	case BucketBank:
		return BankHeader, BankRows(o.Buckets.Bank), nil
	case BucketMobile:
		return MobileHeader, MobileRows(o.Buckets.Mobile), nil
	case BucketExceptions:
		return ExceptionHeader, ExceptionRows(o.Buckets.Exceptions), nil
	case BucketInvalid:
		return InvalidHeader, InvalidRows(o.Buckets.Invalid), nil
	case BucketLedger:
		return LedgerHeader, LedgerRows(o.MergedLedger), nil
	case BucketNewLedger:
		return LedgerHeader, LedgerRows(o.NewLedger), nil
	case BucketMetrics:
		return MetricsHeader, ReportRows(o.Report), nil
	default:
		return nil, nil, fmt.Errorf("unknown bucket %q", b)
	}
}

// Write renders one bucket in the given format.
func (o Outputs) Write(w io.Writer, b Bucket, format string) error {
	header, rows, err := o.Table(b)
	if err != nil {
		return err
	}
	return tabular.Write(w, format, SheetName(b), header, rows)
}

// Filename is the suggested download name of a bucket file.
func Filename(prefix string, b Bucket, format string) string {
	if format == "" {
		format = tabular.FormatCSV
	}
	if prefix == "" {
		return fmt.Sprintf("%s.%s", b, format)
	}
	return fmt.Sprintf("%s-%s.%s", prefix, b, format)
}

func SheetName(b Bucket) string {
	return strings.ToUpper(strings.ReplaceAll(string(b), "-", " "))
}

func BankRows(entries []models.BankBatchEntry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, trimmed(e.Name, e.Account, e.Branch, normalize.FormatAmount(e.Amount), e.Comment))
	}
	return rows
}

func MobileRows(entries []models.MobileBatchEntry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, trimmed(e.Name, e.Provider, e.Number, e.HolderNames, normalize.FormatAmount(e.Amount), e.Comment))
	}
	return rows
}

func LedgerRows(entries []models.LedgerEntry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, trimmed(
			models.MonthName(e.Month),
			models.YearText(e.Year),
			e.Period,
			e.CompanyName,
			normalize.FormatAmount(e.Amount),
			string(e.Mode),
			e.Reference,
		))
	}
	return rows
}

func ExceptionRows(entries []models.ExceptionEntry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, trimmed(
			e.CompanyName,
			normalize.FormatAmount(e.Amount),
			string(e.Mode),
			models.MonthName(e.Month),
			models.YearText(e.Year),
			e.Issue,
		))
	}
	return rows
}

// InvalidRows keeps the source cell text: invalid amounts are not numbers.
func InvalidRows(entries []models.InvalidEntry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, trimmed(
			strconv.Itoa(e.RowNumber),
			e.CompanyName,
			e.AmountText,
			e.Comment,
			e.MonthText,
			e.YearText,
			e.Issue,
		))
	}
	return rows
}

func ReportRows(lines []models.ReportLine) [][]string {
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, trimmed(l.Label, l.Value))
	}
	return rows
}

func trimmed(cells ...string) []string {
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}
