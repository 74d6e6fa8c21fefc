package dedup

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"jobfunnel-engine/internal/domain"
	"jobfunnel-engine/internal/store"
)

// Resolver funnels every company or contact observed by any source through
// normalized-key lookup before it can reach the database, so the same entity
// seen on two platforms converges on one row.
type Resolver struct {
	db  *store.DB
	log *zap.Logger
}

func NewResolver(db *store.DB, log *zap.Logger) *Resolver {
	return &Resolver{db: db, log: log}
}

// ResolveCompany upserts the company under its normalized key and records the
// platform association. Fields on an existing row are only filled when empty,
// never overwritten.
func (r *Resolver) ResolveCompany(ctx context.Context, c domain.Company) (int64, error) {
	key := CompanyKey(c.Name)
	if key == "" {
		return 0, fmt.Errorf("dedup: company name %q normalizes to empty key", c.Name)
	}
	c.NormalizedName = key

	id, created, err := r.db.UpsertCompany(ctx, c)
	if err != nil {
		return 0, fmt.Errorf("resolve company %q: %w", c.Name, err)
	}
	if created {
		r.log.Debug("new company", zap.String("name", c.Name), zap.String("key", key))
	}

	if domain.KnownPlatform(c.ATSPlatform) {
		if err := r.db.AddCompanyPlatform(ctx, id, c.ATSPlatform, c.ATSSlug); err != nil {
			return 0, fmt.Errorf("record platform for %q: %w", c.Name, err)
		}
	}
	return id, nil
}

// ResolveContact upserts a contact under its normalized key scoped to the
// company.
func (r *Resolver) ResolveContact(ctx context.Context, ct domain.Contact) (bool, error) {
	key := ContactKey(ct.Name)
	if key == "" {
		return false, fmt.Errorf("dedup: contact name %q normalizes to empty key", ct.Name)
	}
	ct.NormalizedName = key

	added, err := r.db.UpsertContact(ctx, ct)
	if err != nil {
		return false, fmt.Errorf("resolve contact %q: %w", ct.Name, err)
	}
	if added {
		r.log.Debug("new contact", zap.String("name", ct.Name), zap.Int64("company_id", ct.CompanyID))
	}
	return added, nil
}
