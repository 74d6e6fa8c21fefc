// Package discovery finds new companies to track, from aggregator feeds and
// the operator's own config. Every lead flows through the dedup resolver
// before touching the database.
package discovery

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"jobfunnel-engine/internal/domain"
)

// CompanyLead is a company surfaced by an aggregator, possibly with its
// board already identified and the postings seen alongside it.
type CompanyLead struct {
	Name     string
	Website  string
	Platform domain.Platform
	BoardURL string
	Slug     string

	// Postings are the individual listings the aggregator carried. For
	// companies on a supported platform the scraper fetches the full board
	// anyway; for everyone else these direct URLs are all we get.
	Postings []JobLead
}

// JobLead is one posting attached to a company lead.
type JobLead struct {
	Title    string
	Location string
	URL      string
}

// Aggregator produces company leads from one external source.
type Aggregator interface {
	Name() string
	Fetch(ctx context.Context) ([]CompanyLead, error)
}

var slugPatterns = map[domain.Platform]*regexp.Regexp{
	domain.PlatformGreenhouse:      regexp.MustCompile(`greenhouse\.io/(?:embed/job_board\?for=)?([^/?#]+)`),
	domain.PlatformLever:           regexp.MustCompile(`lever\.co/([^/?#]+)`),
	domain.PlatformAshby:           regexp.MustCompile(`ashbyhq\.com/([^/?#]+)`),
	domain.PlatformSmartRecruiters: regexp.MustCompile(`smartrecruiters\.com/([^/?#]+)`),
}

var hostHints = []struct {
	fragment string
	platform domain.Platform
}{
	{"greenhouse.io", domain.PlatformGreenhouse},
	{"lever.co", domain.PlatformLever},
	{"ashbyhq.com", domain.PlatformAshby},
	{"smartrecruiters.com", domain.PlatformSmartRecruiters},
}

// DetectPlatform identifies the ATS behind an apply URL and extracts the
// board slug when the URL structure carries one.
func DetectPlatform(applyURL string) (domain.Platform, string) {
	u, err := url.Parse(applyURL)
	if err != nil || u.Host == "" {
		return domain.PlatformUnknown, ""
	}
	host := strings.ToLower(u.Host)

	for _, hint := range hostHints {
		if !strings.Contains(host, hint.fragment) {
			continue
		}
		if m := slugPatterns[hint.platform].FindStringSubmatch(applyURL); m != nil {
			return hint.platform, strings.ToLower(m[1])
		}
		return hint.platform, ""
	}
	return domain.PlatformUnknown, ""
}

// atsDomains are job-board hosts that never identify the employer itself.
var atsDomains = []string{
	"greenhouse.io", "lever.co", "ashbyhq.com", "smartrecruiters.com",
	"myworkdayjobs.com", "icims.com", "jobvite.com", "taleo.net",
	"simplify.jobs",
}

// ExtractWebsite guesses the company website from a job URL, returning ""
// when the URL points at a shared ATS domain.
func ExtractWebsite(jobURL string) string {
	u, err := url.Parse(jobURL)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(strings.TrimPrefix(u.Host, "www."))
	for _, d := range atsDomains {
		if strings.HasSuffix(host, d) {
			return ""
		}
	}
	return "https://" + host
}
