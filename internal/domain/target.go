package domain

import "time"

// Disposition is the terminal (or pending) state a posting reaches in the
// classification funnel. Transitions are monotonic: Rejected and Accepted are
// terminal for the pipeline, and only an explicit operator reset returns a
// posting to the unevaluated pool.
type Disposition int

const (
	DispositionRejected      Disposition = 0
	DispositionPendingReview Disposition = 1
	DispositionAccepted      Disposition = 2
	DispositionHumanReviewed Disposition = 3
	DispositionApplied       Disposition = 4
)

var dispositionLabels = map[Disposition]string{
	DispositionRejected:      "Rejected",
	DispositionPendingReview: "Pending Review",
	DispositionAccepted:      "Accepted",
	DispositionHumanReviewed: "Reviewed",
	DispositionApplied:       "Applied",
}

func (d Disposition) String() string {
	if s, ok := dispositionLabels[d]; ok {
		return s
	}
	return "Unknown"
}

// NextAllowed reports whether a transition from d to next is permitted
// without a reset.
func (d Disposition) NextAllowed(next Disposition) bool {
	switch d {
	case DispositionPendingReview:
		return next == DispositionAccepted || next == DispositionRejected
	case DispositionAccepted:
		return next == DispositionHumanReviewed || next == DispositionApplied
	case DispositionHumanReviewed:
		return next == DispositionApplied
	}
	return false
}

// Priority tiers for accepted postings. Domestic postings rank ahead of the
// rest for downstream triage.
const (
	PriorityDomestic = 1
	PriorityOther    = 3
)

// TargetJob is the classification outcome for one posting (1:1 by job ID).
type TargetJob struct {
	ID          int64
	JobID       int64
	Score       float64
	Reason      string
	Disposition Disposition
	Priority    int
	IsIntern    bool
	AddedAt     time.Time
}
