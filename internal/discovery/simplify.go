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

const DefaultSimplifyURL = "https://raw.githubusercontent.com/SimplifyJobs/New-Grad-Positions/dev/README.md"

// SimplifyAggregator parses the SimplifyJobs New-Grad-Positions README. The
// listing table embeds HTML rows, so the markdown parses fine with an HTML
// parser.
type SimplifyAggregator struct {
	url string
	hc  *http.Client
	log *zap.Logger
}

func NewSimplify(url string, log *zap.Logger) *SimplifyAggregator {
	if url == "" {
		url = DefaultSimplifyURL
	}
	return &SimplifyAggregator{
		url: url,
		hc:  &http.Client{Timeout: 30 * time.Second},
		log: log,
	}
}

func (s *SimplifyAggregator) Name() string { return "simplify" }

func (s *SimplifyAggregator) Fetch(ctx context.Context) ([]CompanyLead, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch simplify readme: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch simplify readme: status %d", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	leads, err := s.parse(string(body))
	if err != nil {
		return nil, err
	}
	s.log.Info("simplify readme parsed", zap.Int("companies", len(leads)))
	return leads, nil
}

func (s *SimplifyAggregator) parse(body string) ([]CompanyLead, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse simplify readme: %w", err)
	}

	var leads []CompanyLead
	index := map[string]int{}
	current := ""

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}

		name := util.CleanText(cells.Eq(0).Text())
		// A "↳" cell continues the previous company's rows.
		if name == "↳" {
			name = current
		}
		if name == "" {
			return
		}
		current = name

		// The apply column links both the board and simplify.jobs; we want
		// the direct one.
		var applyURL string
		cells.Eq(3).Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href, _ := a.Attr("href")
			if strings.HasPrefix(href, "http") && !strings.Contains(href, "simplify.jobs") {
				applyURL = href
				return false
			}
			return true
		})
		if applyURL == "" {
			return
		}

		key := strings.ToLower(name)
		i, ok := index[key]
		if !ok {
			platform, slug := DetectPlatform(applyURL)
			lead := CompanyLead{
				Name:     name,
				Website:  ExtractWebsite(applyURL),
				Platform: platform,
				Slug:     slug,
			}
			if slug != "" {
				lead.BoardURL = applyURL
			}
			leads = append(leads, lead)
			i = len(leads) - 1
			index[key] = i
		}

		leads[i].Postings = append(leads[i].Postings, JobLead{
			Title:    util.CleanText(cells.Eq(1).Text()),
			Location: util.NormalizeLocation(cells.Eq(2).Text()),
			URL:      applyURL,
		})
	})

	return leads, nil
}
