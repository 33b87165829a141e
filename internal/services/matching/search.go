// Package matching implements the operator-facing supplier search.
// Reconciliation does not use it: it only matches on the exact registry key.
package matching

import (
	"math"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"supplier-payment-backend/internal/models"
	"supplier-payment-backend/internal/services/registry"
)

const (
	// MinScore drops candidates that share too little with the query.
	MinScore     = 50.0
	DefaultLimit = 10
	prefixBonus  = 10.0
)

type Match struct {
	Supplier models.SupplierRecord `json:"supplier"`
	Score    float64               `json:"score"`
}

// Search ranks suppliers by name similarity to query.
func Search(records []models.SupplierRecord, query string, limit int) []Match {
	q := normalizeName(query)
	if q == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	var matches []Match
	for _, r := range records {
		name := normalizeName(r.CompanyName)
		score := computeNameSimilarity(q, name)
		if strings.HasPrefix(name, q) {
			score = math.Min(score+prefixBonus, 100)
		}
		if score < MinScore {
			continue
		}
		matches = append(matches, Match{Supplier: r, Score: math.Round(score*10) / 10})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Supplier.CompanyName < matches[j].Supplier.CompanyName
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// computeNameSimilarity scores 0-100: for each query token, the best
// levenshtein ratio against any name token, averaged over query tokens.
func computeNameSimilarity(query, name string) float64 {
	qTokens := strings.Fields(query)
	nTokens := strings.Fields(name)
	if len(qTokens) == 0 || len(nTokens) == 0 {
		return 0
	}

	total := 0.0
	for _, qt := range qTokens {
		best := 0.0
		for _, nt := range nTokens {
			dist := levenshtein.ComputeDistance(qt, nt)
			maxLen := math.Max(float64(len([]rune(qt))), float64(len([]rune(nt))))
			sim := 1 - float64(dist)/maxLen
			if sim > best {
				best = sim
			}
		}
		total += best
	}
	return total / float64(len(qTokens)) * 100
}

func normalizeName(s string) string {
	s = registry.Key(s)
	s = strings.NewReplacer(".", "", ",", "", "-", " ", "&", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
