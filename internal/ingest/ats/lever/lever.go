package lever

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

func (c *Connector) Platform() domain.Platform { return domain.PlatformLever }

type posting struct {
	ID         string `json:"id"`
	Text       string `json:"text"` // title
	HostedURL  string `json:"hostedUrl"`
	CreatedAt  int64  `json:"createdAt"` // ms epoch
	Categories struct {
		Location string `json:"location"`
	} `json:"categories"`
	Description string `json:"description"` // html
}

// Overridable for tests.
var apiBase = "https://api.lever.co/v0/postings"

func boardURL(slug string) string {
	return fmt.Sprintf("%s/%s?mode=json", apiBase, url.PathEscape(slug))
}

func (c *Connector) ListPostings(ctx context.Context, slug string) ([]domain.PostingDraft, error) {
	data, err := ats.GetJSON(ctx, c.hc, c.limiter, boardURL(slug))
	if err != nil {
		return nil, err
	}

	// The postings endpoint returns a bare array. A JSON object here means
	// the API changed shape (or returned an error envelope).
	var postings []posting
	if err := json.Unmarshal(data, &postings); err != nil {
		if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
			return nil, &ats.SchemaDriftError{Platform: domain.PlatformLever, Missing: []string{"postings array"}}
		}
		return nil, fmt.Errorf("lever decode: %w", err)
	}

	out := make([]domain.PostingDraft, 0, len(postings))
	for _, p := range postings {
		title := strings.TrimSpace(p.Text)
		if p.ID == "" || p.HostedURL == "" || title == "" {
			continue
		}

		var postedAt *time.Time
		if p.CreatedAt > 0 {
			t := time.UnixMilli(p.CreatedAt)
			postedAt = &t
		}

		out = append(out, domain.PostingDraft{
			Title:       title,
			URL:         p.HostedURL,
			Location:    util.NormalizeLocation(p.Categories.Location),
			Description: util.HTMLToText(p.Description),
			PostedAt:    postedAt,
		})
	}
	return out, nil
}

func (c *Connector) CheckSlug(ctx context.Context, slug string) (bool, error) {
	// Lever 404s unknown slugs on the same endpoint; limit=1 keeps the probe
	// cheap.
	u := fmt.Sprintf("%s/%s?mode=json&limit=1", apiBase, url.PathEscape(slug))
	_, err := ats.GetJSON(ctx, c.hc, c.limiter, u)
	if errors.Is(err, ats.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
