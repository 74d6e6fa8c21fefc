package dedup

import (
	"context"
	"sort"

	"github.com/agnivade/levenshtein"

	"jobfunnel-engine/internal/store"
)

// FuzzyPair is a candidate duplicate reported for human review. Fuzzy
// similarity is advisory only and never merges rows on its own.
type FuzzyPair struct {
	A, B       string
	Similarity float64
}

// Similarity returns a 0..1 ratio from Levenshtein distance over the longer
// normalized key.
func Similarity(a, b string) float64 {
	ka, kb := CompanyKey(a), CompanyKey(b)
	if ka == kb {
		return 1
	}
	longest := len(ka)
	if len(kb) > longest {
		longest = len(kb)
	}
	if longest == 0 {
		return 0
	}
	d := levenshtein.ComputeDistance(ka, kb)
	return 1 - float64(d)/float64(longest)
}

// FuzzyCandidates compares every pair of stored company names and returns
// those at or above the threshold, most similar first.
func FuzzyCandidates(ctx context.Context, db *store.DB, threshold float64) ([]FuzzyPair, error) {
	byID, err := db.AllCompanyNames(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(byID))
	for _, n := range byID {
		names = append(names, n)
	}
	sort.Strings(names)

	var pairs []FuzzyPair
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			s := Similarity(names[i], names[j])
			if s >= threshold && s < 1 {
				pairs = append(pairs, FuzzyPair{A: names[i], B: names[j], Similarity: s})
			}
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Similarity > pairs[j].Similarity })
	return pairs, nil
}
