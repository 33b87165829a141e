package reconciliation

import (
	"github.com/shopspring/decimal"

	"supplier-payment-backend/internal/models"
)

// DefaultThreshold is the amount from which suppliers are paid by bank.
var DefaultThreshold = decimal.NewFromInt(400)

// Classify picks the payment channel: bank (channel A) when amount >= threshold,
// mobile (channel B) otherwise.
func Classify(amount, threshold decimal.Decimal) models.Mode {
	if amount.GreaterThanOrEqual(threshold) {
		return models.ModeBank
	}
	return models.ModeMobile
}
