package discovery

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"jobfunnel-engine/internal/ingest/util"
)

const DefaultA16ZURL = "https://a16z.com/investment-list/"

// The investment list shares its markup with the site navigation, so plain
// li items that are really menu entries have to be filtered by name.
var a16zSkip = map[string]bool{
	"news": true, "portfolio": true, "team": true, "about": true,
	"jobs": true, "connect": true, "crypto": true, "consumer": true,
	"enterprise": true, "fintech": true, "infrastructure": true,
	"growth": true, "bio": true, "health": true, "speedrun": true,
	"perennial": true, "talent": true, "cultural": true,
	"american dynamism": true, "cookie": true, "privacy": true,
	"terms": true, "ai": true,
}

// A16ZAggregator scrapes the a16z investment list page for portfolio
// company names. The page has no websites or job links; everything past the
// name is left to slug resolution.
type A16ZAggregator struct {
	url string
	hc  *http.Client
	log *zap.Logger
}

func NewA16Z(url string, log *zap.Logger) *A16ZAggregator {
	if url == "" {
		url = DefaultA16ZURL
	}
	return &A16ZAggregator{
		url: url,
		hc:  &http.Client{Timeout: 30 * time.Second},
		log: log,
	}
}

func (a *A16ZAggregator) Name() string { return "a16z" }

func (a *A16ZAggregator) Fetch(ctx context.Context) ([]CompanyLead, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.url, nil)
	if err != nil {
		return nil, err
	}
	// The site serves an empty shell to default Go clients.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")

	res, err := a.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch a16z portfolio: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch a16z portfolio: status %d", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	leads, err := a.parse(string(body))
	if err != nil {
		return nil, err
	}
	a.log.Info("a16z portfolio fetched", zap.Int("companies", len(leads)))
	return leads, nil
}

func (a *A16ZAggregator) parse(body string) ([]CompanyLead, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse a16z portfolio: %w", err)
	}

	seen := map[string]bool{}
	var leads []CompanyLead
	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		// Company entries are bare text; anything with markup inside is
		// navigation.
		if li.Children().Length() > 0 {
			return
		}
		name := util.CleanText(li.Text())
		key := strings.ToLower(name)
		if len(name) < 2 || a16zSkip[key] || seen[key] {
			return
		}
		seen[key] = true
		leads = append(leads, CompanyLead{Name: name})
	})

	return leads, nil
}
