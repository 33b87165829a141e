package reconciliation

import (
	"math"
	"sort"
	"time"

	"supplier-payment-backend/internal/models"
)

// MergeLedger appends fresh entries to the prior ledger and stable-sorts the
// result by year then calendar month. Entries without a recognized month sort
// last within their year; entries without a year sort last overall. Inputs
// are not modified; Seq is renumbered on the result.
func MergeLedger(prior, fresh []models.LedgerEntry) []models.LedgerEntry {
	merged := make([]models.LedgerEntry, 0, len(prior)+len(fresh))
	merged = append(merged, prior...)
	merged = append(merged, fresh...)

	sort.SliceStable(merged, func(i, j int) bool {
		yi, yj := yearOrder(merged[i].Year), yearOrder(merged[j].Year)
		if yi != yj {
			return yi < yj
		}
		return monthOrder(merged[i].Month) < monthOrder(merged[j].Month)
	})
	for i := range merged {
		merged[i].Seq = i
	}
	return merged
}

func yearOrder(y int) int {
	if y <= 0 {
		return math.MaxInt
	}
	return y
}

func monthOrder(m time.Month) int {
	if m < time.January || m > time.December {
		return 13
	}
	return int(m)
}
