package slug

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"jobfunnel-engine/internal/ai"
	"jobfunnel-engine/internal/domain"
	"jobfunnel-engine/internal/ingest/ats"
	"jobfunnel-engine/internal/store"
)

// Resolver finds the board slug for companies on a platform. The strategy
// chain runs cheapest first: any slug already on record, then mechanical
// name variations, then a single batched model call for whatever is left.
type Resolver struct {
	db        *store.DB
	suggester ai.SlugSuggester // nil disables the model fallback
	log       *zap.Logger
}

func NewResolver(db *store.DB, suggester ai.SlugSuggester, log *zap.Logger) *Resolver {
	return &Resolver{db: db, suggester: suggester, log: log}
}

// Outcome records where resolution landed for one company.
type Outcome struct {
	CompanyID int64
	Name      string
	Slug      string
	Status    domain.SlugStatus
}

// Resolve probes the platform for each company and persists the outcome.
// Companies that hit transient platform failures are marked for retry on the
// next run instead of being written off.
func (r *Resolver) Resolve(ctx context.Context, conn ats.Connector, companies []domain.Company) ([]Outcome, error) {
	platform := conn.Platform()
	out := make([]Outcome, 0, len(companies))
	var needSuggestions []domain.Company

	for _, co := range companies {
		candidates := Variations(co.Name)
		if co.ATSSlug != "" {
			candidates = append([]string{co.ATSSlug}, candidates...)
		}

		slug, status, err := r.probe(ctx, conn, candidates)
		if err != nil {
			return out, err
		}

		switch status {
		case domain.SlugResolved:
			if err := r.db.SetSlug(ctx, co.ID, slug, domain.SlugResolved); err != nil {
				return out, err
			}
			if err := r.db.AddCompanyPlatform(ctx, co.ID, platform, slug); err != nil {
				return out, err
			}
			out = append(out, Outcome{CompanyID: co.ID, Name: co.Name, Slug: slug, Status: domain.SlugResolved})
		case domain.SlugTransientFailed:
			if err := r.db.SetSlugStatus(ctx, co.ID, domain.SlugTransientFailed); err != nil {
				return out, err
			}
			out = append(out, Outcome{CompanyID: co.ID, Name: co.Name, Status: domain.SlugTransientFailed})
		default:
			needSuggestions = append(needSuggestions, co)
		}
	}

	if len(needSuggestions) == 0 {
		return out, nil
	}

	suggested, err := r.suggestedOutcomes(ctx, conn, needSuggestions)
	if err != nil {
		return out, err
	}
	return append(out, suggested...), nil
}

// suggestedOutcomes spends one model call on the whole unresolved batch,
// then probes the suggestions like any other candidate.
func (r *Resolver) suggestedOutcomes(ctx context.Context, conn ats.Connector, companies []domain.Company) ([]Outcome, error) {
	platform := conn.Platform()
	suggestions := map[string][]string{}

	if r.suggester != nil {
		names := make([]string, 0, len(companies))
		for _, co := range companies {
			names = append(names, co.Name)
		}

		var err error
		suggestions, err = r.suggester.SuggestSlugs(ctx, string(platform), names)
		if err != nil {
			// Suggestions are best-effort; fall through with none.
			r.log.Warn("slug suggestions failed", zap.String("platform", string(platform)), zap.Error(err))
			suggestions = map[string][]string{}
		}
	}

	out := make([]Outcome, 0, len(companies))
	for _, co := range companies {
		slug, status, err := r.probe(ctx, conn, suggestions[co.Name])
		if err != nil {
			return out, err
		}

		switch status {
		case domain.SlugResolved:
			if err := r.db.SetSlug(ctx, co.ID, slug, domain.SlugResolved); err != nil {
				return out, err
			}
			if err := r.db.AddCompanyPlatform(ctx, co.ID, platform, slug); err != nil {
				return out, err
			}
			out = append(out, Outcome{CompanyID: co.ID, Name: co.Name, Slug: slug, Status: domain.SlugResolved})
		case domain.SlugTransientFailed:
			if err := r.db.SetSlugStatus(ctx, co.ID, domain.SlugTransientFailed); err != nil {
				return out, err
			}
			out = append(out, Outcome{CompanyID: co.ID, Name: co.Name, Status: domain.SlugTransientFailed})
		default:
			// Every candidate 404'd. Without suggestions the company has no
			// board here; with exhausted suggestions it stays unresolved for
			// a human to fill in.
			final := domain.SlugNotPresent
			if len(suggestions[co.Name]) > 0 {
				final = domain.SlugUnresolved
			}
			if err := r.db.SetSlugStatus(ctx, co.ID, final); err != nil {
				return out, err
			}
			out = append(out, Outcome{CompanyID: co.ID, Name: co.Name, Status: final})
		}
	}
	return out, nil
}

// probe checks candidates in order. Returns SlugNotPresent when every
// candidate 404s, SlugTransientFailed the moment a probe fails for reasons
// other than 404.
func (r *Resolver) probe(ctx context.Context, conn ats.Connector, candidates []string) (string, domain.SlugStatus, error) {
	for _, cand := range candidates {
		ok, err := conn.CheckSlug(ctx, cand)
		if err != nil {
			if ctx.Err() != nil {
				return "", "", ctx.Err()
			}
			if ats.IsTransient(err) {
				return "", domain.SlugTransientFailed, nil
			}
			return "", "", fmt.Errorf("probe slug %q: %w", cand, err)
		}
		if ok {
			return cand, domain.SlugResolved, nil
		}
	}
	return "", domain.SlugNotPresent, nil
}
