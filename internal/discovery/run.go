package discovery

import (
	"context"

	"go.uber.org/zap"

	"jobfunnel-engine/internal/dedup"
	"jobfunnel-engine/internal/domain"
	"jobfunnel-engine/internal/store"
)

// Summary totals one discovery run.
type Summary struct {
	Leads      int
	Resolved   int
	Failed     int
	BySource   map[string]int
	Supported  int
	DirectJobs int
}

// Runner pushes aggregator leads through entity resolution.
type Runner struct {
	db          *store.DB
	resolver    *dedup.Resolver
	aggregators []Aggregator
	log         *zap.Logger
}

func NewRunner(db *store.DB, resolver *dedup.Resolver, aggregators []Aggregator, log *zap.Logger) *Runner {
	return &Runner{db: db, resolver: resolver, aggregators: aggregators, log: log}
}

// Run fetches every source and resolves each lead into the company table.
// A source that fails is logged and skipped; its siblings still run.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	sum := Summary{BySource: map[string]int{}}

	for _, agg := range r.aggregators {
		leads, err := agg.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return sum, ctx.Err()
			}
			r.log.Warn("aggregator failed", zap.String("source", agg.Name()), zap.Error(err))
			continue
		}
		sum.Leads += len(leads)
		sum.BySource[agg.Name()] = len(leads)

		for _, lead := range leads {
			co := domain.Company{
				Name:            lead.Name,
				Website:         lead.Website,
				ATSPlatform:     lead.Platform,
				ATSSlug:         lead.Slug,
				ATSURL:          lead.BoardURL,
				DiscoverySource: agg.Name(),
				Active:          true,
			}
			if lead.Slug != "" {
				co.SlugStatus = domain.SlugResolved
			}

			companyID, err := r.resolver.ResolveCompany(ctx, co)
			if err != nil {
				if ctx.Err() != nil {
					return sum, ctx.Err()
				}
				r.log.Warn("lead resolution failed", zap.String("company", lead.Name), zap.Error(err))
				sum.Failed++
				continue
			}
			sum.Resolved++

			if domain.KnownPlatform(lead.Platform) {
				// The scraper fetches this board in full; the row-level
				// postings would only duplicate it.
				sum.Supported++
				continue
			}

			// Off-platform boards never get scraped, so the aggregator's
			// direct URLs are the only way these postings enter the pipeline.
			for _, jl := range lead.Postings {
				added, err := r.db.InsertJobIfNew(ctx, companyID, domain.PostingDraft{
					Title:    jl.Title,
					URL:      jl.URL,
					Location: jl.Location,
				})
				if err != nil {
					r.log.Warn("direct posting insert failed",
						zap.String("company", lead.Name), zap.String("url", jl.URL), zap.Error(err))
					continue
				}
				if added {
					sum.DirectJobs++
				}
			}
		}
	}

	r.log.Info("discovery run complete",
		zap.Int("leads", sum.Leads),
		zap.Int("resolved", sum.Resolved),
		zap.Int("failed", sum.Failed),
		zap.Int("supported_ats", sum.Supported),
		zap.Int("direct_postings", sum.DirectJobs),
	)
	return sum, nil
}
