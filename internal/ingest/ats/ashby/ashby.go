package ashby

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

func (c *Connector) Platform() domain.Platform { return domain.PlatformAshby }

// Posting-API response. Jobs is a pointer so a 200 without the key is
// detectable as drift rather than an empty board.
type boardResponse struct {
	Jobs *[]posting `json:"jobs"`
}

type posting struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Location        string `json:"location"`
	JobURL          string `json:"jobUrl"`
	PublishedAt     string `json:"publishedAt"`
	IsListed        bool   `json:"isListed"`
	DescriptionHTML string `json:"descriptionHtml"`
}

// Overridable for tests.
var apiBase = "https://api.ashbyhq.com/posting-api/job-board"

func boardURL(slug string) string {
	return fmt.Sprintf("%s/%s?includeCompensation=true", apiBase, url.PathEscape(slug))
}

func (c *Connector) ListPostings(ctx context.Context, slug string) ([]domain.PostingDraft, error) {
	data, err := ats.GetJSON(ctx, c.hc, c.limiter, boardURL(slug))
	if err != nil {
		return nil, err
	}

	var br boardResponse
	if err := json.Unmarshal(data, &br); err != nil {
		return nil, fmt.Errorf("ashby decode: %w", err)
	}
	if br.Jobs == nil {
		return nil, &ats.SchemaDriftError{Platform: domain.PlatformAshby, Missing: []string{"jobs"}}
	}

	out := make([]domain.PostingDraft, 0, len(*br.Jobs))
	for _, p := range *br.Jobs {
		title := strings.TrimSpace(p.Title)
		if title == "" || p.JobURL == "" || !p.IsListed {
			continue
		}

		var postedAt *time.Time
		if ts, err := time.Parse(time.RFC3339, p.PublishedAt); err == nil {
			postedAt = &ts
		}

		out = append(out, domain.PostingDraft{
			Title:       title,
			URL:         p.JobURL,
			Location:    util.NormalizeLocation(p.Location),
			Description: util.HTMLToText(p.DescriptionHTML),
			PostedAt:    postedAt,
		})
	}
	return out, nil
}

func (c *Connector) CheckSlug(ctx context.Context, slug string) (bool, error) {
	_, err := ats.GetJSON(ctx, c.hc, c.limiter, boardURL(slug))
	if errors.Is(err, ats.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
