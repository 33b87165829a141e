package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	PassStatusVerified = "verified"
	PassStatusMismatch = "verification_failed"
)

// ReconciliationPass records one pass over an uploaded sales file. Outputs
// holds the full pass result so bucket files can be downloaded later.
type ReconciliationPass struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Filename          string          `json:"filename"`
	Threshold         decimal.Decimal `gorm:"type:numeric(14,2)" json:"threshold"`
	NonEmptyRows      int             `json:"non_empty_rows"`
	EmptyRows         int             `json:"empty_rows"`
	BankCount         int             `json:"bank_count"`
	MobileCount       int             `json:"mobile_count"`
	ExceptionCount    int             `json:"exception_count"`
	InvalidCount      int             `json:"invalid_count"`
	TotalPayable      decimal.Decimal `gorm:"type:numeric(14,2)" json:"total_payable"`
	PriorLedgerCount  int             `json:"prior_ledger_count"`
	PriorLedgerDigest string          `json:"-"`
	Status            string          `gorm:"index" json:"status"`
	Outputs           datatypes.JSON  `json:"-"`
	StartedAt         time.Time       `json:"started_at"`
	CompletedAt       *time.Time      `json:"completed_at"`
	CommittedAt       *time.Time      `json:"committed_at"`
	CreatedAt         time.Time       `json:"created_at"`
}
