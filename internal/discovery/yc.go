package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"jobfunnel-engine/internal/ingest/util"
)

const DefaultYCURL = "https://yc-oss.github.io/api/companies/all.json"

// YCAggregator pulls the yc-oss company dump, a static JSON file rebuilt
// daily from Y Combinator's directory. It carries names and websites only;
// which board a company actually uses is left to slug resolution.
type YCAggregator struct {
	url string
	hc  *http.Client
	log *zap.Logger
}

func NewYC(url string, log *zap.Logger) *YCAggregator {
	if url == "" {
		url = DefaultYCURL
	}
	return &YCAggregator{
		url: url,
		hc:  &http.Client{Timeout: 30 * time.Second},
		log: log,
	}
}

func (y *YCAggregator) Name() string { return "yc" }

func (y *YCAggregator) Fetch(ctx context.Context) ([]CompanyLead, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.url, nil)
	if err != nil {
		return nil, err
	}

	res, err := y.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch yc directory: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch yc directory: status %d", res.StatusCode)
	}

	var raw []struct {
		Name    string `json:"name"`
		Website string `json:"website"`
	}
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode yc directory: %w", err)
	}

	seen := map[string]bool{}
	var leads []CompanyLead
	for _, item := range raw {
		name := util.CleanText(item.Name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		leads = append(leads, CompanyLead{
			Name:    name,
			Website: strings.TrimSpace(item.Website),
		})
	}
	y.log.Info("yc directory fetched", zap.Int("companies", len(leads)))
	return leads, nil
}
