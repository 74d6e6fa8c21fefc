// Package ai declares the model-backed capabilities the pipeline consumes.
// Implementations live in subpackages; everything else depends only on
// these interfaces so tests can substitute fakes.
package ai

import "context"

// PostingSummary is the compact view of a job sent to the triage model.
// Descriptions are withheld at this stage to keep batch prompts cheap.
type PostingSummary struct {
	JobID    int64
	Title    string
	Location string
	Company  string
}

// Verdict is one triage result. Score is the model's 0..1 relevance
// estimate; Reason is a short free-text justification kept for audit.
type Verdict struct {
	JobID  int64
	Score  float64
	Reason string
}

// BatchClassifier scores many postings in one model call.
type BatchClassifier interface {
	// ClassifyBatch returns one verdict per recognizable input element.
	// Elements the model response omits or garbles are absent from the
	// result; the caller decides their fate.
	ClassifyBatch(ctx context.Context, postings []PostingSummary) ([]Verdict, error)
}

// CandidateProfile describes the person the arbiter evaluates against.
type CandidateProfile struct {
	Summary     string
	Skills      []string
	Constraints []string
}

// Review is the arbiter's full-description judgment on a single posting.
type Review struct {
	Accept bool
	Score  float64
	Reason string
}

// Arbiter performs the expensive per-posting evaluation with the full
// description in context.
type Arbiter interface {
	Evaluate(ctx context.Context, profile CandidateProfile, posting PostingSummary, description string) (Review, error)
}

// SlugSuggester proposes board identifiers for companies whose slug could
// not be derived mechanically. One call covers the whole batch.
type SlugSuggester interface {
	// SuggestSlugs returns candidate slugs keyed by company name, a few
	// per company, most likely first. Companies the model has no idea
	// about may be absent from the map.
	SuggestSlugs(ctx context.Context, platform string, companies []string) (map[string][]string, error)
}
