package domain

import "time"

// Platform identifies a supported ATS platform.
type Platform string

const (
	PlatformAshby           Platform = "ashby"
	PlatformGreenhouse      Platform = "greenhouse"
	PlatformLever           Platform = "lever"
	PlatformSmartRecruiters Platform = "smartrecruiters"
	PlatformUnknown         Platform = "unknown"
)

// KnownPlatform reports whether p is one of the supported ATS platforms.
func KnownPlatform(p Platform) bool {
	switch p {
	case PlatformAshby, PlatformGreenhouse, PlatformLever, PlatformSmartRecruiters:
		return true
	}
	return false
}

// SlugStatus records the outcome of slug resolution for a company on its platform.
type SlugStatus string

const (
	SlugUnchecked       SlugStatus = ""
	SlugResolved        SlugStatus = "resolved"
	SlugNotPresent      SlugStatus = "not_present"
	SlugUnresolved      SlugStatus = "unresolved"
	SlugTransientFailed SlugStatus = "transient_failed"
)

// Company is a hiring organization. Exactly one row exists per normalized
// name key; later discovery sources merge metadata into the first row and
// never overwrite fields an earlier source already populated.
type Company struct {
	ID              int64
	Name            string
	NormalizedName  string
	ATSPlatform     Platform
	ATSSlug         string
	ATSURL          string
	Website         string
	DiscoverySource string
	SlugStatus      SlugStatus
	Active          bool
	LastScraped     *time.Time
	DiscoveredAt    time.Time
}
