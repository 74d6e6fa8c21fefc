package greenhouse

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobfunnel-engine/internal/ingest/ats"
	"jobfunnel-engine/internal/ingest/util"
)

func testConnector(t *testing.T, handler http.HandlerFunc) *Connector {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	prev := apiBase
	apiBase = srv.URL
	t.Cleanup(func() { apiBase = prev })

	return New(srv.Client(), util.NewHostLimiter(1000, 1000))
}

func TestListPostings(t *testing.T) {
	c := testConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/acme/jobs", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("content"))
		_, _ = w.Write([]byte(`{"jobs": [
			{"id": 1, "title": "Software Engineer", "absolute_url": "https://boards.greenhouse.io/acme/jobs/1",
			 "updated_at": "2026-08-01T10:00:00Z", "content": "<p>Build things.</p>",
			 "location": {"name": " New York,  NY, ny "}},
			{"id": 2, "title": "  ", "absolute_url": "https://boards.greenhouse.io/acme/jobs/2"}
		]}`))
	})

	drafts, err := c.ListPostings(context.Background(), "acme")
	require.NoError(t, err)
	require.Len(t, drafts, 1, "blank titles are dropped")

	d := drafts[0]
	assert.Equal(t, "Software Engineer", d.Title)
	assert.Equal(t, "https://boards.greenhouse.io/acme/jobs/1", d.URL)
	assert.Equal(t, "New York, NY", d.Location)
	assert.Equal(t, "Build things.", d.Description)
	require.NotNil(t, d.PostedAt)
	assert.Equal(t, 2026, d.PostedAt.Year())
}

func TestListPostingsSchemaDrift(t *testing.T) {
	c := testConnector(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"openings": []}`))
	})

	_, err := c.ListPostings(context.Background(), "acme")
	var drift *ats.SchemaDriftError
	require.ErrorAs(t, err, &drift)
	assert.Equal(t, []string{"jobs"}, drift.Missing)
}

func TestListPostingsNotFound(t *testing.T) {
	c := testConnector(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := c.ListPostings(context.Background(), "nope")
	assert.ErrorIs(t, err, ats.ErrNotFound)
}

func TestListPostingsServerErrorIsTransient(t *testing.T) {
	c := testConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.ListPostings(context.Background(), "acme")
	require.Error(t, err)
	assert.True(t, ats.IsTransient(err))
}

func TestCheckSlug(t *testing.T) {
	c := testConnector(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/acme/jobs" {
			_, _ = w.Write([]byte(`{"jobs": []}`))
			return
		}
		http.NotFound(w, r)
	})

	ok, err := c.CheckSlug(context.Background(), "acme")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.CheckSlug(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckSlugTransientFailureSurfaces(t *testing.T) {
	c := testConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.CheckSlug(context.Background(), "acme")
	require.Error(t, err)
	assert.True(t, ats.IsTransient(err), "rate limiting must not look like a missing board")
	assert.False(t, errors.Is(err, ats.ErrNotFound))
}
