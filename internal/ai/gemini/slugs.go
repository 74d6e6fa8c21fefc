package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"jobfunnel-engine/internal/ai"
)

//go:embed slugs_prompt.md
var slugsPrompt string

// Suggester asks the model for likely board slugs, one call per batch of
// unresolved companies.
type Suggester struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewSuggester(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Suggester {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	return &Suggester{generator: generator, logger: logger, maxLogLen: maxLogLength}
}

var _ ai.SlugSuggester = (*Suggester)(nil)

func (s *Suggester) SuggestSlugs(ctx context.Context, platform string, companies []string) (map[string][]string, error) {
	if len(companies) == 0 {
		return nil, nil
	}

	namesJSON, err := json.MarshalIndent(companies, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal company names: %w", err)
	}

	prompt := strings.ReplaceAll(slugsPrompt, "{{PLATFORM}}", platform)
	prompt = strings.ReplaceAll(prompt, "{{COMPANIES_JSON}}", string(namesJSON))

	s.logger.Debug("slug suggestion request",
		zap.String("platform", platform),
		zap.Int("companies", len(companies)),
		zap.String("prompt_preview", truncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("slug suggestion response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", truncateForLog(raw, s.maxLogLen)),
	)

	cleaned := extractJSON(raw)
	var data map[string][]string
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse slug suggestions: %w", err)
	}

	out := make(map[string][]string, len(data))
	for name, slugs := range data {
		var kept []string
		for _, sl := range slugs {
			sl = strings.ToLower(strings.TrimSpace(sl))
			if sl != "" && !strings.ContainsAny(sl, " /") {
				kept = append(kept, sl)
			}
		}
		if len(kept) > 0 {
			out[name] = kept
		}
	}
	return out, nil
}
