package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"supplier-payment-backend/internal/models"
)

type SupplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

func (r *SupplierRepository) ListSuppliers(ctx context.Context) ([]models.SupplierRecord, error) {
	var suppliers []models.SupplierRecord
	err := r.db.WithContext(ctx).Order("key ASC").Find(&suppliers).Error
	return suppliers, err
}

// SaveSuppliers upserts records by key and appends their audit trail in one
// transaction.
func (r *SupplierRepository) SaveSuppliers(ctx context.Context, records []models.SupplierRecord, audit []models.RegistryAuditLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(records) > 0 {
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"company_name",
					"bank_account",
					"bank_branch",
					"bank_bank_name",
					"mobile_provider",
					"mobile_number",
					"mobile_holder_names",
					"updated_at",
				}),
			}).Create(&records).Error
			if err != nil {
				return err
			}
		}
		if len(audit) > 0 {
			if err := tx.Create(&audit).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
