package discovery

import (
	"context"

	"jobfunnel-engine/internal/config"
	"jobfunnel-engine/internal/domain"
)

// ManualAggregator yields the companies the operator listed in config, so
// hand-curated targets go through the same resolution path as scraped ones.
type ManualAggregator struct {
	companies []config.ManualCompany
}

func NewManual(companies []config.ManualCompany) *ManualAggregator {
	return &ManualAggregator{companies: companies}
}

func (m *ManualAggregator) Name() string { return "manual" }

func (m *ManualAggregator) Fetch(_ context.Context) ([]CompanyLead, error) {
	leads := make([]CompanyLead, 0, len(m.companies))
	for _, c := range m.companies {
		platform := domain.Platform(c.Platform)
		if !domain.KnownPlatform(platform) {
			platform = domain.PlatformUnknown
		}
		leads = append(leads, CompanyLead{
			Name:     c.Name,
			Website:  c.Website,
			Platform: platform,
			Slug:     c.Slug,
		})
	}
	return leads, nil
}
