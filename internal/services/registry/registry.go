// Package registry indexes the supplier payment-details registry and merges
// auxiliary uploads into it.
package registry

import (
	"sort"
	"strings"

	"supplier-payment-backend/internal/models"
	"supplier-payment-backend/internal/services/normalize"
	"supplier-payment-backend/internal/tabular"
)

const (
	fieldAccount  normalize.Field = "ACCOUNT"
	fieldBranch   normalize.Field = "BRANCH"
	fieldBank     normalize.Field = "BANK"
	fieldProvider normalize.Field = "PROVIDER"
	fieldNumber   normalize.Field = "NUMBER"
	fieldHolder   normalize.Field = "HOLDER NAMES"
)

var Aliases = normalize.AliasTable{
	normalize.FieldCompany: {"COMPANY NAME", "COMPANY", "NAME", "SUPPLIER"},
	fieldAccount:           {"ACCOUNT", "ACCOUNT NUMBER", "ACCOUNT NO", "BANK ACCOUNT"},
	fieldBranch:            {"BRANCH", "BRANCH CODE"},
	fieldBank:              {"BANK", "BANK NAME"},
	fieldProvider:          {"PROVIDER", "MOBILE PROVIDER", "NETWORK"},
	fieldNumber:            {"NUMBER", "MOBILE NUMBER", "PHONE", "PHONE NUMBER"},
	fieldHolder:            {"HOLDER NAMES", "HOLDER NAME", "ACCOUNT HOLDER"},
}

// Columns is the header written when the registry is exported.
var Columns = []string{"COMPANY NAME", "ACCOUNT", "BRANCH", "BANK", "PROVIDER", "NUMBER", "HOLDER NAMES"}

// Key is the lookup key of a company name.
func Key(name string) string {
	return normalize.CompanyKey(name)
}

type ParseResult struct {
	Records     []models.SupplierRecord
	SkippedRows int
}

// ParseRows reads a registry table. Rows without a company name are skipped
// and counted.
func ParseRows(table tabular.Table, scanRows int) (ParseResult, error) {
	if scanRows <= 0 {
		scanRows = normalize.DefaultHeaderScanRows
	}
	headerIdx, cols, err := normalize.LocateHeader(table, Aliases, []normalize.Field{normalize.FieldCompany}, scanRows)
	if err != nil {
		return ParseResult{}, err
	}

	var res ParseResult
	for _, line := range table.Lines[headerIdx+1:] {
		v := cols.Values(line)
		name := v[normalize.FieldCompany]
		if name == "" {
			if !isBlank(v) {
				res.SkippedRows++
			}
			continue
		}
		res.Records = append(res.Records, models.SupplierRecord{
			Key:         Key(name),
			CompanyName: strings.Join(strings.Fields(name), " "),
			Bank: models.BankDetails{
				Account:  v[fieldAccount],
				Branch:   v[fieldBranch],
				BankName: v[fieldBank],
			},
			Mobile: models.MobileDetails{
				Provider:    v[fieldProvider],
				Number:      v[fieldNumber],
				HolderNames: v[fieldHolder],
			},
		})
	}
	return res, nil
}

// Row renders a supplier in Columns order.
func Row(s models.SupplierRecord) []string {
	return []string{
		s.CompanyName,
		s.Bank.Account,
		s.Bank.Branch,
		s.Bank.BankName,
		s.Mobile.Provider,
		s.Mobile.Number,
		s.Mobile.HolderNames,
	}
}

func isBlank(v map[normalize.Field]string) bool {
	for _, s := range v {
		if s != "" {
			return false
		}
	}
	return true
}

// Index is a read-only snapshot of the registry for one reconciliation pass.
type Index struct {
	byKey      map[string]models.SupplierRecord
	duplicates int
}

// NewIndex keys records by normalized company name. For a repeated key the
// last record wins.
func NewIndex(records []models.SupplierRecord) *Index {
	idx := &Index{byKey: make(map[string]models.SupplierRecord, len(records))}
	for _, r := range records {
		k := Key(r.CompanyName)
		if k == "" {
			continue
		}
		if _, ok := idx.byKey[k]; ok {
			idx.duplicates++
		}
		r.Key = k
		idx.byKey[k] = r
	}
	return idx
}

// Lookup is an exact match on the normalized key.
func (i *Index) Lookup(companyName string) (models.SupplierRecord, bool) {
	r, ok := i.byKey[Key(companyName)]
	return r, ok
}

func (i *Index) Len() int {
	return len(i.byKey)
}

// Duplicates counts records that replaced an earlier one with the same key.
func (i *Index) Duplicates() int {
	return i.duplicates
}

// Records returns the indexed suppliers sorted by key.
func (i *Index) Records() []models.SupplierRecord {
	out := make([]models.SupplierRecord, 0, len(i.byKey))
	for _, r := range i.byKey {
		out = append(out, r)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Key < out[b].Key })
	return out
}
