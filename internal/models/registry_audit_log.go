package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	AuditActionAdded   = "added"
	AuditActionUpdated = "updated"
)

type RegistryAuditLog struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	SupplierKey string    `gorm:"index"`
	Action      string
	Previous    datatypes.JSON
	Current     datatypes.JSON
	Source      string
	PerformedBy string
	CreatedAt   time.Time
}
