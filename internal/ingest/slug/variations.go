package slug

import "strings"

// Variations generates mechanical slug candidates from a company name,
// literal form first. "Hims & Hers" yields hims-and-hers, himsandhers, etc.
func Variations(name string) []string {
	lower := strings.ToLower(strings.TrimSpace(name))

	candidates := []string{
		strings.ReplaceAll(lower, " ", "-"),
		strings.ReplaceAll(lower, " ", ""),
		strings.ReplaceAll(strings.ReplaceAll(lower, "&", "and"), " ", "-"),
		strings.ReplaceAll(strings.ReplaceAll(lower, "&", "and"), " ", ""),
		strings.ReplaceAll(strings.ReplaceAll(lower, ".", ""), " ", "-"),
	}

	seen := map[string]bool{}
	var out []string
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
