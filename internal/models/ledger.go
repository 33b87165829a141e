package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntry is one historical disbursement. Entries are never edited after
// creation; the whole ledger is replaced when an operator commits a pass.
type LedgerEntry struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Seq         int             `gorm:"index" json:"seq"`
	Month       time.Month      `json:"month"`
	Year        int             `gorm:"index" json:"year"`
	Period      string          `json:"period"`
	CompanyName string          `gorm:"index" json:"company_name"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2)" json:"amount"`
	Mode        Mode            `gorm:"index" json:"mode"`
	Reference   string          `json:"reference"`
	CreatedAt   time.Time       `json:"created_at"`
}
