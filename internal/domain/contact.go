package domain

import "time"

// Contact is a person associated with a company, unique per
// (company, normalized name key).
type Contact struct {
	ID             int64
	CompanyID      int64
	Name           string
	NormalizedName string
	Title          string
	ProfileURL     string
	// Priority marks decision-makers (founder/CEO/CTO) ahead of other
	// engineering leadership.
	Priority     bool
	Confidence   string
	DiscoveredAt time.Time
}
