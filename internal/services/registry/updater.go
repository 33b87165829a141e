package registry

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"supplier-payment-backend/internal/models"
)

// MergeResult lists the registry rows that changed and their audit trail.
// Counts are per supplier key.
type MergeResult struct {
	Changed   []models.SupplierRecord
	Audit     []models.RegistryAuditLog
	Added     int
	Updated   int
	Unchanged int
}

// Merge applies an auxiliary upload to the current registry. New keys are
// added; for known keys every field the upload supplies non-empty replaces
// the stored value. Known suppliers keep their registered display name.
// Within one upload, later rows win.
func Merge(existing, updates []models.SupplierRecord, source, performedBy string) MergeResult {
	current := make(map[string]models.SupplierRecord, len(existing))
	for _, r := range existing {
		current[Key(r.CompanyName)] = r
	}

	staged := make(map[string]models.SupplierRecord)
	var order []string
	for _, u := range updates {
		k := Key(u.CompanyName)
		if k == "" {
			continue
		}
		base, ok := staged[k]
		if !ok {
			base, ok = current[k]
			if !ok {
				base = models.SupplierRecord{ID: uuid.New(), CompanyName: strings.Join(strings.Fields(u.CompanyName), " ")}
			}
			order = append(order, k)
		}
		next := overlay(base, u)
		next.Key = k
		staged[k] = next
	}

	var res MergeResult
	now := time.Now()
	for _, k := range order {
		rec := staged[k]
		prev, existed := current[k]
		if existed && sameDetails(prev, rec) {
			res.Unchanged++
			continue
		}

		rec.UpdatedAt = now
		entry := models.RegistryAuditLog{
			ID:          uuid.New(),
			SupplierKey: k,
			Current:     snapshot(rec),
			Source:      source,
			PerformedBy: performedBy,
			CreatedAt:   now,
		}
		if existed {
			res.Updated++
			entry.Action = models.AuditActionUpdated
			entry.Previous = snapshot(prev)
		} else {
			res.Added++
			entry.Action = models.AuditActionAdded
			rec.CreatedAt = now
		}
		res.Changed = append(res.Changed, rec)
		res.Audit = append(res.Audit, entry)
	}
	return res
}

func overlay(base, u models.SupplierRecord) models.SupplierRecord {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&base.Bank.Account, u.Bank.Account)
	set(&base.Bank.Branch, u.Bank.Branch)
	set(&base.Bank.BankName, u.Bank.BankName)
	set(&base.Mobile.Provider, u.Mobile.Provider)
	set(&base.Mobile.Number, u.Mobile.Number)
	set(&base.Mobile.HolderNames, u.Mobile.HolderNames)
	return base
}

func sameDetails(a, b models.SupplierRecord) bool {
	return a.CompanyName == b.CompanyName && a.Bank == b.Bank && a.Mobile == b.Mobile
}

func snapshot(r models.SupplierRecord) datatypes.JSON {
	b, _ := json.Marshal(r)
	return datatypes.JSON(b)
}
