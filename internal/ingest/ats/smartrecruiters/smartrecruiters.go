package smartrecruiters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jobfunnel-engine/internal/domain"
	"jobfunnel-engine/internal/ingest/ats"
	"jobfunnel-engine/internal/ingest/util"
)

type Connector struct {
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(hc *http.Client, limiter *util.HostLimiter) *Connector {
	return &Connector{hc: hc, limiter: limiter}
}

func (c *Connector) Platform() domain.Platform { return domain.PlatformSmartRecruiters }

// Overridable for tests.
var apiBase = "https://api.smartrecruiters.com/v1/companies"

// Response schema (public API) is typically:
// { "content": [...], "totalFound": N, "offset": O, "limit": L }
type postingsResponse struct {
	Content    *[]posting `json:"content"`
	TotalFound int        `json:"totalFound"`
}

type posting struct {
	ID           string    `json:"id"`
	UUID         string    `json:"uuid"`
	Name         string    `json:"name"`
	ReleasedDate time.Time `json:"releasedDate"`
	Ref          string    `json:"ref"`
	Location     struct {
		City    string `json:"city"`
		Region  string `json:"region"`
		Country string `json:"country"`
	} `json:"location"`
}

func (c *Connector) ListPostings(ctx context.Context, slug string) ([]domain.PostingDraft, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, fmt.Errorf("smartrecruiters: empty slug")
	}

	base := fmt.Sprintf("%s/%s/postings", apiBase, url.PathEscape(slug))

	limit := 100
	offset := 0
	var out []domain.PostingDraft

	for {
		u := fmt.Sprintf("%s?limit=%d&offset=%d", base, limit, offset)
		data, err := ats.GetJSON(ctx, c.hc, c.limiter, u)
		if err != nil {
			return out, err
		}

		var pr postingsResponse
		if err := json.Unmarshal(data, &pr); err != nil {
			return out, fmt.Errorf("smartrecruiters decode: %w", err)
		}
		if pr.Content == nil {
			return out, &ats.SchemaDriftError{Platform: domain.PlatformSmartRecruiters, Missing: []string{"content"}}
		}
		if len(*pr.Content) == 0 {
			break
		}

		for _, p := range *pr.Content {
			title := strings.TrimSpace(p.Name)
			id := strings.TrimSpace(firstNonEmpty(p.ID, p.UUID, p.Ref))
			if title == "" || id == "" {
				continue
			}

			loc := util.NormalizeLocation(strings.Join(nonEmpty(p.Location.City, p.Location.Region, p.Location.Country), ", "))

			var postedAt *time.Time
			if !p.ReleasedDate.IsZero() {
				t := p.ReleasedDate
				postedAt = &t
			}

			out = append(out, domain.PostingDraft{
				Title:    title,
				URL:      fmt.Sprintf("https://jobs.smartrecruiters.com/%s/%s", slug, id),
				Location: loc,
				PostedAt: postedAt,
			})
		}

		offset += limit
		if pr.TotalFound > 0 && offset >= pr.TotalFound {
			break
		}
		if offset > 5000 {
			break
		}
	}

	return out, nil
}

func (c *Connector) CheckSlug(ctx context.Context, slug string) (bool, error) {
	u := fmt.Sprintf("%s/%s/postings?limit=1", apiBase, url.PathEscape(slug))
	_, err := ats.GetJSON(ctx, c.hc, c.limiter, u)
	if errors.Is(err, ats.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func nonEmpty(vals ...string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
