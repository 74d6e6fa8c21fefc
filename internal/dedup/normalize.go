package dedup

import (
	"regexp"
	"strings"
)

// Legal-entity suffixes stripped from company names, with optional leading
// comma and trailing period: "Stripe, Inc." and "STRIPE INC" both key to
// "stripe".
var companySuffixes = []*regexp.Regexp{
	regexp.MustCompile(`\s*,?\s*inc\.?$`),
	regexp.MustCompile(`\s*,?\s*llc\.?$`),
	regexp.MustCompile(`\s*,?\s*corp\.?$`),
	regexp.MustCompile(`\s*,?\s*corporation$`),
	regexp.MustCompile(`\s*,?\s*ltd\.?$`),
	regexp.MustCompile(`\s*,?\s*limited$`),
	regexp.MustCompile(`\s*,?\s*co\.?$`),
	regexp.MustCompile(`\s*,?\s*company$`),
	regexp.MustCompile(`\s*,?\s*gmbh$`),
}

var (
	nonAlnum   = regexp.MustCompile(`[^a-z0-9\s]`)
	multiSpace = regexp.MustCompile(`\s+`)

	honorifics   = regexp.MustCompile(`\b(dr|mr|ms|mrs|prof)\.?\s*`)
	postNominals = regexp.MustCompile(`,?\s*\b(phd|md|jr|sr|ii|iii|iv)\.?$`)
	middleInit   = regexp.MustCompile(`\s+[a-z]\.\s+`)
)

// CompanyKey computes the normalized identity key for a company name.
func CompanyKey(name string) string {
	k := strings.ToLower(strings.TrimSpace(name))

	for _, re := range companySuffixes {
		k = re.ReplaceAllString(k, "")
	}

	k = nonAlnum.ReplaceAllString(k, "")
	k = multiSpace.ReplaceAllString(k, " ")
	return strings.TrimSpace(k)
}

// ContactKey computes the normalized identity key for a person's name:
// honorifics, post-nominal suffixes and middle initials are noise across
// sources ("Dr. John A. Smith" and "John Smith, PhD" are the same person).
func ContactKey(name string) string {
	k := strings.ToLower(strings.TrimSpace(name))

	k = honorifics.ReplaceAllString(k, "")
	// post-nominals may stack ("Smith, PhD, Jr")
	for {
		next := postNominals.ReplaceAllString(k, "")
		if next == k {
			break
		}
		k = next
	}
	k = middleInit.ReplaceAllString(k, " ")

	k = nonAlnum.ReplaceAllString(k, "")
	k = multiSpace.ReplaceAllString(k, " ")
	return strings.TrimSpace(k)
}
