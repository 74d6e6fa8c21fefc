package slug

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jobfunnel-engine/internal/domain"
	"jobfunnel-engine/internal/ingest/ats"
	"jobfunnel-engine/internal/store"
)

func TestVariations(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{"Stripe", []string{"stripe"}},
		{"Palo Alto Networks", []string{"palo-alto-networks", "paloaltonetworks"}},
		{"Hims & Hers", []string{"hims-&-hers", "hims&hers", "hims-and-hers", "himsandhers"}},
		{"Datadog, Inc.", []string{"datadog,-inc.", "datadog,inc.", "datadog,-inc"}},
		{"  Figma  ", []string{"figma"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Variations(tt.name), "name=%q", tt.name)
	}
}

// fakeConnector answers CheckSlug from a fixed table. Slugs mapped to an
// error return it; slugs mapped true exist; everything else 404s.
type fakeConnector struct {
	platform domain.Platform
	exists   map[string]bool
	fail     map[string]error
	probed   []string
}

func (f *fakeConnector) Platform() domain.Platform { return f.platform }

func (f *fakeConnector) ListPostings(ctx context.Context, slug string) ([]domain.PostingDraft, error) {
	return nil, nil
}

func (f *fakeConnector) CheckSlug(ctx context.Context, slug string) (bool, error) {
	f.probed = append(f.probed, slug)
	if err, ok := f.fail[slug]; ok {
		return false, err
	}
	return f.exists[slug], nil
}

type fakeSuggester struct {
	slugs map[string][]string
	err   error
	calls int
}

func (f *fakeSuggester) SuggestSlugs(ctx context.Context, platform string, companies []string) (map[string][]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.slugs, nil
}

func seedCompanies(t *testing.T, db *store.DB, names ...string) []domain.Company {
	t.Helper()
	ctx := context.Background()
	out := make([]domain.Company, 0, len(names))
	for _, name := range names {
		id, _, err := db.UpsertCompany(ctx, domain.Company{
			Name:           name,
			NormalizedName: name,
			SlugStatus:     domain.SlugUnchecked,
			Active:         true,
		})
		require.NoError(t, err)
		out = append(out, domain.Company{ID: id, Name: name})
	}
	return out
}

func TestResolveByVariation(t *testing.T) {
	db, err := store.OpenMemory()
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	companies := seedCompanies(t, db, "Palo Alto Networks")
	conn := &fakeConnector{
		platform: domain.PlatformGreenhouse,
		exists:   map[string]bool{"paloaltonetworks": true},
	}

	r := NewResolver(db, nil, zap.NewNop())
	outcomes, err := r.Resolve(ctx, conn, companies)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, domain.SlugResolved, outcomes[0].Status)
	assert.Equal(t, "paloaltonetworks", outcomes[0].Slug)

	// The hyphenated form 404'd first, then the joined form hit.
	assert.Equal(t, []string{"palo-alto-networks", "paloaltonetworks"}, conn.probed)

	co, err := db.GetCompanyByKey(ctx, "Palo Alto Networks")
	require.NoError(t, err)
	require.NotNil(t, co)
	assert.Equal(t, "paloaltonetworks", co.ATSSlug)
	assert.Equal(t, domain.SlugResolved, co.SlugStatus)

	platforms, err := db.CompanyPlatforms(ctx, co.ID)
	require.NoError(t, err)
	assert.Equal(t, "paloaltonetworks", platforms[domain.PlatformGreenhouse])
}

func TestResolveExistingSlugProbedFirst(t *testing.T) {
	db, err := store.OpenMemory()
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	companies := seedCompanies(t, db, "Figma")
	companies[0].ATSSlug = "figma-design"
	conn := &fakeConnector{
		platform: domain.PlatformLever,
		exists:   map[string]bool{"figma-design": true, "figma": true},
	}

	r := NewResolver(db, nil, zap.NewNop())
	outcomes, err := r.Resolve(ctx, conn, companies)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "figma-design", outcomes[0].Slug)
	assert.Equal(t, []string{"figma-design"}, conn.probed)
}

func TestResolveOneSuggestionCallPerBatch(t *testing.T) {
	db, err := store.OpenMemory()
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	companies := seedCompanies(t, db, "Alpha Co", "Beta Co", "Gamma Co")
	conn := &fakeConnector{
		platform: domain.PlatformAshby,
		exists:   map[string]bool{"alpha-hq": true},
	}
	sugg := &fakeSuggester{slugs: map[string][]string{
		"Alpha Co": {"alpha-hq"},
		"Beta Co":  {"beta-hq", "beta-inc"},
	}}

	r := NewResolver(db, sugg, zap.NewNop())
	outcomes, err := r.Resolve(ctx, conn, companies)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	assert.Equal(t, 1, sugg.calls, "whole batch shares one model call")

	byName := map[string]Outcome{}
	for _, o := range outcomes {
		byName[o.Name] = o
	}
	assert.Equal(t, domain.SlugResolved, byName["Alpha Co"].Status)
	assert.Equal(t, "alpha-hq", byName["Alpha Co"].Slug)
	assert.Equal(t, domain.SlugUnresolved, byName["Beta Co"].Status, "suggestions exhausted")
	assert.Equal(t, domain.SlugNotPresent, byName["Gamma Co"].Status, "no suggestions at all")
}

func TestResolveSuggesterFailureIsBestEffort(t *testing.T) {
	db, err := store.OpenMemory()
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	companies := seedCompanies(t, db, "Delta Co")
	conn := &fakeConnector{platform: domain.PlatformAshby}
	sugg := &fakeSuggester{err: errors.New("model unavailable")}

	r := NewResolver(db, sugg, zap.NewNop())
	outcomes, err := r.Resolve(ctx, conn, companies)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, domain.SlugNotPresent, outcomes[0].Status)
}

func TestResolveTransientFailureMarkedForRetry(t *testing.T) {
	db, err := store.OpenMemory()
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	companies := seedCompanies(t, db, "Epsilon")
	conn := &fakeConnector{
		platform: domain.PlatformGreenhouse,
		fail:     map[string]error{"epsilon": &ats.TransientError{Err: errors.New("503")}},
	}

	r := NewResolver(db, nil, zap.NewNop())
	outcomes, err := r.Resolve(ctx, conn, companies)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, domain.SlugTransientFailed, outcomes[0].Status)
	assert.Empty(t, outcomes[0].Slug)
}
