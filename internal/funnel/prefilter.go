package funnel

import (
	"fmt"
	"regexp"
	"strings"
)

// Title phrases that earn a pass to paid evaluation no matter what else the
// title says: "Intern/New Grad Software Engineer" must survive the
// internship pattern because it explicitly targets new grads.
var acceptQualifiers = []string{
	"new grad",
	"new graduate",
	"junior",
	"entry level",
	"entry-level",
	"associate",
}

var (
	seniorityPattern = regexp.MustCompile(`(?i)\b(senior|sr\.|staff|principal|lead|manager|director|vp|vice president|chief|head of|c-level)\b`)

	nonEngineeringPattern = regexp.MustCompile(`(?i)\b(sales|marketing|account executive|customer success|support|recruiter|recruiting|talent|operations|program manager|product manager|analyst|business development|designer|content|copywriter|finance|accounting|legal|hr|people)\b`)

	internshipPattern = regexp.MustCompile(`(?i)\b(intern|internship|co-op|coop|part-time|part time)\b`)

	engineeringKeywords = []string{"engineer", "software", "developer", "programmer", "swe"}
)

// PrefilterResult is the deterministic verdict on one title. A rejected
// title never reaches a model; a forwarded one might still be rejected
// downstream.
type PrefilterResult struct {
	Reject   bool
	Reason   string
	IsIntern bool
}

// Prefilter screens a title with regex alone. Accept qualifiers are checked
// before any reject pattern so an explicitly entry-level title always goes
// forward.
func Prefilter(title string) PrefilterResult {
	lower := strings.ToLower(title)

	res := PrefilterResult{IsIntern: internshipPattern.MatchString(title)}

	for _, q := range acceptQualifiers {
		if strings.Contains(lower, q) {
			return res
		}
	}

	if m := seniorityPattern.FindString(title); m != "" {
		res.Reject = true
		res.Reason = fmt.Sprintf("seniority indicator: %s", m)
		return res
	}

	if m := nonEngineeringPattern.FindString(title); m != "" && !hasEngineeringKeyword(lower) {
		res.Reject = true
		res.Reason = fmt.Sprintf("non-engineering role: %s", m)
		return res
	}

	return res
}

func hasEngineeringKeyword(lowerTitle string) bool {
	for _, k := range engineeringKeywords {
		if strings.Contains(lowerTitle, k) {
			return true
		}
	}
	return false
}
