package domain

import "time"

// PostingDraft is the canonical posting shape yielded by a source adapter
// before persistence. Title and URL are required; everything else is
// best-effort and may be empty.
type PostingDraft struct {
	Title       string
	URL         string
	Description string
	Location    string
	PostedAt    *time.Time
}

// JobPosting is a persisted posting at one company. The source URL is the
// global identity key; a posting is immutable once evaluated aside from the
// evaluated flag and its classification result.
type JobPosting struct {
	ID           int64
	CompanyID    int64
	URL          string
	Title        string
	Description  string
	Location     string
	PostedAt     *time.Time
	DiscoveredAt time.Time
	Evaluated    bool
}
