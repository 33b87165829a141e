package models

import (
	"time"

	"github.com/google/uuid"
)

// BankDetails is the channel-A payment group of a supplier.
type BankDetails struct {
	Account  string `json:"account"`
	Branch   string `json:"branch"`
	BankName string `json:"bank_name"`
}

// MobileDetails is the channel-B payment group of a supplier.
type MobileDetails struct {
	Provider    string `json:"provider"`
	Number      string `json:"number"`
	HolderNames string `json:"holder_names"`
}

type SupplierRecord struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Key         string        `gorm:"uniqueIndex" json:"key"`
	CompanyName string        `gorm:"index" json:"company_name"`
	Bank        BankDetails   `gorm:"embedded;embeddedPrefix:bank_" json:"bank"`
	Mobile      MobileDetails `gorm:"embedded;embeddedPrefix:mobile_" json:"mobile"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
