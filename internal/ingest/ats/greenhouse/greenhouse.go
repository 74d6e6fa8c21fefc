package greenhouse

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

func (c *Connector) Platform() domain.Platform { return domain.PlatformGreenhouse }

type boardResponse struct {
	Jobs *[]posting `json:"jobs"`
}

type posting struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	UpdatedAt   string `json:"updated_at"`
	AbsoluteURL string `json:"absolute_url"`
	Content     string `json:"content"` // html, present with ?content=true
	Location    struct {
		Name string `json:"name"`
	} `json:"location"`
}

// Overridable for tests.
var apiBase = "https://boards-api.greenhouse.io/v1/boards"

func boardURL(slug string) string {
	return fmt.Sprintf("%s/%s/jobs?content=true", apiBase, url.PathEscape(slug))
}

func (c *Connector) ListPostings(ctx context.Context, slug string) ([]domain.PostingDraft, error) {
	data, err := ats.GetJSON(ctx, c.hc, c.limiter, boardURL(slug))
	if err != nil {
		return nil, err
	}

	var br boardResponse
	if err := json.Unmarshal(data, &br); err != nil {
		return nil, fmt.Errorf("greenhouse decode: %w", err)
	}
	if br.Jobs == nil {
		return nil, &ats.SchemaDriftError{Platform: domain.PlatformGreenhouse, Missing: []string{"jobs"}}
	}

	out := make([]domain.PostingDraft, 0, len(*br.Jobs))
	for _, p := range *br.Jobs {
		title := strings.TrimSpace(p.Title)
		if title == "" || p.AbsoluteURL == "" {
			continue
		}

		var postedAt *time.Time
		if ts, err := time.Parse(time.RFC3339, p.UpdatedAt); err == nil {
			postedAt = &ts
		}

		out = append(out, domain.PostingDraft{
			Title:       title,
			URL:         p.AbsoluteURL,
			Location:    util.NormalizeLocation(p.Location.Name),
			Description: util.HTMLToText(p.Content),
			PostedAt:    postedAt,
		})
	}
	return out, nil
}

func (c *Connector) CheckSlug(ctx context.Context, slug string) (bool, error) {
	// The bare jobs list is cheap enough to double as an existence probe.
	u := fmt.Sprintf("%s/%s/jobs", apiBase, url.PathEscape(slug))
	_, err := ats.GetJSON(ctx, c.hc, c.limiter, u)
	if errors.Is(err, ats.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
