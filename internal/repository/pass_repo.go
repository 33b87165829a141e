package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"supplier-payment-backend/internal/models"
)

type PassRepository struct {
	db *gorm.DB
}

func NewPassRepository(db *gorm.DB) *PassRepository {
	return &PassRepository{db: db}
}

func (r *PassRepository) CreatePass(ctx context.Context, pass *models.ReconciliationPass) error {
	return r.db.WithContext(ctx).Create(pass).Error
}

func (r *PassRepository) GetPass(ctx context.Context, id uuid.UUID) (*models.ReconciliationPass, error) {
	var pass models.ReconciliationPass
	if err := r.db.WithContext(ctx).First(&pass, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &pass, nil
}

// ListPasses returns the most recent passes without their stored outputs.
func (r *PassRepository) ListPasses(ctx context.Context, limit int) ([]models.ReconciliationPass, error) {
	var passes []models.ReconciliationPass
	err := r.db.WithContext(ctx).
		Omit("outputs").
		Order("created_at DESC").
		Limit(limit).
		Find(&passes).Error
	return passes, err
}

func (r *PassRepository) MarkCommitted(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.ReconciliationPass{}).
		Where("id = ? AND committed_at IS NULL", id).
		Update("committed_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
