package lever

import (
	"context"
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
		assert.Equal(t, "/acme", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("mode"))
		_, _ = w.Write([]byte(`[
			{"id": "p1", "text": "Platform Engineer", "hostedUrl": "https://jobs.lever.co/acme/p1",
			 "createdAt": 1754006400000, "categories": {"location": "Remote"},
			 "description": "<p>Ship infra.</p>"},
			{"id": "", "text": "No ID", "hostedUrl": "https://jobs.lever.co/acme/p2"}
		]`))
	})

	drafts, err := c.ListPostings(context.Background(), "acme")
	require.NoError(t, err)
	require.Len(t, drafts, 1, "postings without an id are dropped")
	assert.Equal(t, "Platform Engineer", drafts[0].Title)
	assert.Equal(t, "Remote", drafts[0].Location)
	assert.Equal(t, "Ship infra.", drafts[0].Description)
	require.NotNil(t, drafts[0].PostedAt)
}

// Lever normally returns a bare array; an object at the top level means the
// shape changed or an error envelope came back.
func TestListPostingsObjectResponseIsDrift(t *testing.T) {
	c := testConnector(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok": false, "error": "invalid site"}`))
	})

	_, err := c.ListPostings(context.Background(), "acme")
	var drift *ats.SchemaDriftError
	require.ErrorAs(t, err, &drift)
}

func TestCheckSlugUsesLimitOne(t *testing.T) {
	var gotLimit string
	c := testConnector(t, func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		_, _ = w.Write([]byte(`[]`))
	})

	ok, err := c.CheckSlug(context.Background(), "acme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", gotLimit)
}
