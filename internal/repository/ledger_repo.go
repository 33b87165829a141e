package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"supplier-payment-backend/internal/models"
)

const ledgerBatchSize = 500

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// ListLedger returns the ledger in its stored order.
func (r *LedgerRepository) ListLedger(ctx context.Context) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := r.db.WithContext(ctx).Order("seq ASC").Find(&entries).Error
	return entries, err
}

// ReplaceLedger swaps the whole ledger for entries. Seq is taken from the
// slice position.
func (r *LedgerRepository) ReplaceLedger(ctx context.Context, entries []models.LedgerEntry) error {
	rows := make([]models.LedgerEntry, len(entries))
	copy(rows, entries)
	for i := range rows {
		rows[i].Seq = i
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.LedgerEntry{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(&rows, ledgerBatchSize).Error
	})
}

type LedgerStats struct {
	Total       int64           `json:"total"`
	TotalAmount decimal.Decimal `json:"total_amount"`

	BankCount int64           `json:"bank_count"`
	BankSum   decimal.Decimal `json:"bank_sum"`

	MobileCount int64           `json:"mobile_count"`
	MobileSum   decimal.Decimal `json:"mobile_sum"`
}

type statRow struct {
	Mode  string
	Count int64
	Sum   decimal.Decimal
}

// Stats aggregates the ledger per payment mode, optionally for one year.
func (r *LedgerRepository) Stats(ctx context.Context, year int) (LedgerStats, error) {
	stats := LedgerStats{TotalAmount: decimal.Zero, BankSum: decimal.Zero, MobileSum: decimal.Zero}
	var rows []statRow

	q := r.db.WithContext(ctx).Model(&models.LedgerEntry{})
	if year > 0 {
		q = q.Where("year = ?", year)
	}
	err := q.Select("mode, COUNT(*) as count, COALESCE(SUM(amount),0) as sum").
		Group("mode").
		Scan(&rows).Error
	if err != nil {
		return stats, err
	}

	for _, row := range rows {
		stats.Total += row.Count
		stats.TotalAmount = stats.TotalAmount.Add(row.Sum)

		switch models.Mode(row.Mode) {
		case models.ModeBank:
			stats.BankCount = row.Count
			stats.BankSum = row.Sum
		case models.ModeMobile:
			stats.MobileCount = row.Count
			stats.MobileSum = row.Sum
		}
	}
	return stats, nil
}
