package funnel

import (
	"strings"

	"jobfunnel-engine/internal/domain"
)

// PriorityFor buckets a posting by geography. Domestic postings (or those
// with no location at all) outrank the rest in the review queue. Short
// signals like "us" match whole tokens only so "austin" never trips on
// "austria"-style substrings.
func PriorityFor(location string, domesticSignals []string) int {
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" {
		return domain.PriorityDomestic
	}

	tokens := map[string]bool{}
	for _, t := range strings.FieldsFunc(loc, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) {
		tokens[t] = true
	}

	for _, sig := range domesticSignals {
		sig = strings.ToLower(strings.TrimSpace(sig))
		if sig == "" {
			continue
		}
		if len(sig) <= 3 {
			if tokens[sig] {
				return domain.PriorityDomestic
			}
			continue
		}
		if strings.Contains(loc, sig) {
			return domain.PriorityDomestic
		}
	}
	return domain.PriorityOther
}
