package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Mode is the payment channel a record is disbursed through.
type Mode string

const (
	ModeBank   Mode = "BANK"   // channel A
	ModeMobile Mode = "MOBILE" // channel B
)

// SalesRecord is one normalized sales row. A record carrying Issues failed
// validation and is only ever routed to the invalid bucket.
type SalesRecord struct {
	RowNumber   int             `json:"row_number"`
	CompanyName string          `json:"company_name"`
	Amount      decimal.Decimal `json:"amount"`
	Month       time.Month      `json:"month"`
	Year        int             `json:"year"`
	Period      string          `json:"period"`
	Comment     string          `json:"comment"`
	Reference   string          `json:"reference"`

	// Source cell text, kept for invalid-row reporting.
	AmountText string `json:"amount_text"`
	MonthText  string `json:"month_text"`
	YearText   string `json:"year_text"`

	Issues []string `json:"issues,omitempty"`
}

func (r SalesRecord) Valid() bool {
	return len(r.Issues) == 0
}

// Outcome is the result of reconciling one record. Exactly one of the four
// entry types below implements it.
type Outcome interface {
	outcome()
}

type BankBatchEntry struct {
	Name    string          `json:"name"`
	Account string          `json:"account"`
	Branch  string          `json:"branch"`
	Amount  decimal.Decimal `json:"amount"`
	Comment string          `json:"comment"`
}

type MobileBatchEntry struct {
	Name        string          `json:"name"`
	Provider    string          `json:"provider"`
	Number      string          `json:"number"`
	HolderNames string          `json:"holder_names"`
	Amount      decimal.Decimal `json:"amount"`
	Comment     string          `json:"comment"`
}

type ExceptionEntry struct {
	CompanyName string          `json:"company_name"`
	Amount      decimal.Decimal `json:"amount"`
	Mode        Mode            `json:"mode"`
	Month       time.Month      `json:"month"`
	Year        int             `json:"year"`
	Issue       string          `json:"issue"`
}

type InvalidEntry struct {
	RowNumber   int    `json:"row_number"`
	CompanyName string `json:"company_name"`
	AmountText  string `json:"amount_text"`
	Comment     string `json:"comment"`
	MonthText   string `json:"month_text"`
	YearText    string `json:"year_text"`
	Issue       string `json:"issue"`
}

func (BankBatchEntry) outcome()   {}
func (MobileBatchEntry) outcome() {}
func (ExceptionEntry) outcome()   {}
func (InvalidEntry) outcome()     {}

// Buckets holds the four disjoint outputs of a reconciliation pass.
type Buckets struct {
	Bank       []BankBatchEntry   `json:"bank"`
	Mobile     []MobileBatchEntry `json:"mobile"`
	Exceptions []ExceptionEntry   `json:"exceptions"`
	Invalid    []InvalidEntry     `json:"invalid"`
}

// Add routes an outcome into its bucket.
func (b *Buckets) Add(o Outcome) {
	switch e := o.(type) {
	case BankBatchEntry:
		b.Bank = append(b.Bank, e)
	case MobileBatchEntry:
		b.Mobile = append(b.Mobile, e)
	case ExceptionEntry:
		b.Exceptions = append(b.Exceptions, e)
	case InvalidEntry:
		b.Invalid = append(b.Invalid, e)
	}
}

func (b Buckets) Len() int {
	return len(b.Bank) + len(b.Mobile) + len(b.Exceptions) + len(b.Invalid)
}
