// Package ingest orchestrates slug resolution and posting fetches across
// every enabled platform.
package ingest

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"jobfunnel-engine/internal/ai"
	"jobfunnel-engine/internal/config"
	"jobfunnel-engine/internal/domain"
	"jobfunnel-engine/internal/ingest/ats"
	"jobfunnel-engine/internal/ingest/ats/ashby"
	"jobfunnel-engine/internal/ingest/ats/greenhouse"
	"jobfunnel-engine/internal/ingest/ats/lever"
	"jobfunnel-engine/internal/ingest/ats/smartrecruiters"
	"jobfunnel-engine/internal/ingest/slug"
	"jobfunnel-engine/internal/ingest/util"
	"jobfunnel-engine/internal/store"
)

// Summary totals one scrape run for operator output and logs.
type Summary struct {
	Companies     int
	Scraped       int
	Failed        int
	PostingsSeen  int
	PostingsAdded int
	SlugOutcomes  map[domain.SlugStatus]int
}

type Runner struct {
	db         *store.DB
	cfg        config.Config
	connectors []ats.Connector
	resolver   *slug.Resolver
	log        *zap.Logger
}

// NewRunner assembles connectors for the enabled platforms. The suggester
// may be nil, which disables model-backed slug fallback.
func NewRunner(db *store.DB, cfg config.Config, suggester ai.SlugSuggester, log *zap.Logger) *Runner {
	hc := ats.NewHTTPClient()
	limiter := util.NewHostLimiter(cfg.Scrape.RequestsPerSecond, cfg.Scrape.Burst)

	var connectors []ats.Connector
	if cfg.Sources.Ashby.Enabled {
		connectors = append(connectors, ashby.New(hc, limiter))
	}
	if cfg.Sources.Greenhouse.Enabled {
		connectors = append(connectors, greenhouse.New(hc, limiter))
	}
	if cfg.Sources.Lever.Enabled {
		connectors = append(connectors, lever.New(hc, limiter))
	}
	if cfg.Sources.SmartRecruiters.Enabled {
		connectors = append(connectors, smartrecruiters.New(hc, limiter))
	}

	return &Runner{
		db:         db,
		cfg:        cfg,
		connectors: connectors,
		resolver:   slug.NewResolver(db, suggester, log),
		log:        log,
	}
}

// Run resolves outstanding slugs, then fetches postings for every resolved
// company. One bad board never fails the run; postings are persisted
// incrementally so a crash keeps everything fetched so far.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	sum := Summary{SlugOutcomes: map[domain.SlugStatus]int{}}

	for _, conn := range r.connectors {
		platform := conn.Platform()

		companies, err := r.db.ListCompanies(ctx, platform, domain.SlugUnchecked)
		if err != nil {
			return sum, err
		}

		var pending, ready []domain.Company
		for _, co := range companies {
			switch co.SlugStatus {
			case domain.SlugResolved:
				ready = append(ready, co)
			case domain.SlugUnchecked, domain.SlugTransientFailed:
				pending = append(pending, co)
			}
		}

		if len(pending) > 0 {
			outcomes, err := r.resolver.Resolve(ctx, conn, pending)
			if err != nil {
				return sum, err
			}
			for _, o := range outcomes {
				sum.SlugOutcomes[o.Status]++
				if o.Status == domain.SlugResolved {
					co := findCompany(pending, o.CompanyID)
					co.ATSSlug = o.Slug
					ready = append(ready, co)
				}
			}
		}

		sum.Companies += len(ready)
		if err := r.scrapePlatform(ctx, conn, ready, &sum); err != nil {
			return sum, err
		}
	}

	r.log.Info("scrape run complete",
		zap.Int("companies", sum.Companies),
		zap.Int("scraped", sum.Scraped),
		zap.Int("failed", sum.Failed),
		zap.Int("postings_seen", sum.PostingsSeen),
		zap.Int("postings_added", sum.PostingsAdded),
	)
	return sum, ctx.Err()
}

// scrapePlatform fans companies out to a bounded worker pool.
func (r *Runner) scrapePlatform(ctx context.Context, conn ats.Connector, companies []domain.Company, sum *Summary) error {
	workers := r.cfg.Scrape.Workers
	if workers < 1 {
		workers = 1
	}

	var mu sync.Mutex
	workCh := make(chan domain.Company)

	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for co := range workCh {
				added, seen, err := r.scrapeCompany(gctx, conn, co)

				mu.Lock()
				if err != nil {
					sum.Failed++
				} else {
					sum.Scraped++
				}
				sum.PostingsSeen += seen
				sum.PostingsAdded += added
				mu.Unlock()

				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					r.log.Warn("company scrape failed",
						zap.String("platform", string(conn.Platform())),
						zap.String("company", co.Name),
						zap.String("slug", co.ATSSlug),
						zap.Error(err),
					)
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(workCh)
		for _, co := range companies {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case workCh <- co:
			}
		}
		return nil
	})

	return g.Wait()
}

func (r *Runner) scrapeCompany(ctx context.Context, conn ats.Connector, co domain.Company) (added, seen int, err error) {
	backoff := time.Duration(r.cfg.Scrape.BackoffInitialMS) * time.Millisecond
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	var postings []domain.PostingDraft
	err = util.Retry(ctx, r.cfg.Scrape.MaxAttempts, backoff, func() error {
		var ferr error
		postings, ferr = conn.ListPostings(ctx, co.ATSSlug)
		if ferr != nil && !ats.IsTransient(ferr) {
			return util.Permanent(ferr)
		}
		return ferr
	})
	if err != nil {
		if errors.Is(err, ats.ErrNotFound) {
			// Board disappeared since resolution. Flag it for re-resolution
			// instead of failing forever.
			if serr := r.db.SetSlugStatus(ctx, co.ID, domain.SlugUnresolved); serr != nil {
				return 0, 0, serr
			}
		}
		return 0, 0, err
	}

	for _, p := range postings {
		ok, ierr := r.db.InsertJobIfNew(ctx, co.ID, p)
		if ierr != nil {
			return added, seen, ierr
		}
		seen++
		if ok {
			added++
		}
	}

	if err := r.db.MarkCompanyScraped(ctx, co.ID); err != nil {
		return added, seen, err
	}
	return added, seen, nil
}

func findCompany(list []domain.Company, id int64) domain.Company {
	for _, co := range list {
		if co.ID == id {
			return co
		}
	}
	return domain.Company{ID: id}
}
