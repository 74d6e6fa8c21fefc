package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"jobfunnel-engine/internal/ai"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed classifier_prompt.md
var classifierPrompt string

const defaultMaxLogLength = 200

// Classifier scores batches of posting titles with a cheap model.
type Classifier struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewClassifier(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Classifier {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	return &Classifier{generator: generator, logger: logger, maxLogLen: maxLogLength}
}

func (c *Classifier) ClassifyBatch(ctx context.Context, postings []ai.PostingSummary) ([]ai.Verdict, error) {
	if len(postings) == 0 {
		return nil, nil
	}

	payload := make([]map[string]any, 0, len(postings))
	for _, p := range postings {
		payload = append(payload, map[string]any{
			"job_id":   p.JobID,
			"title":    p.Title,
			"location": p.Location,
			"company":  p.Company,
		})
	}
	postingsJSON, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal postings payload: %w", err)
	}

	prompt := strings.ReplaceAll(classifierPrompt, "{{POSTINGS_JSON}}", string(postingsJSON))

	c.logger.Debug("triage request",
		zap.Int("postings", len(postings)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", truncateForLog(prompt, c.maxLogLen)),
	)

	raw, err := c.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("triage response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", truncateForLog(raw, c.maxLogLen)),
	)

	return parseVerdicts(raw)
}

// parseVerdicts validates elements individually: a garbled element is
// skipped, not fatal, so one malformed row cannot sink a hundred-job batch.
func parseVerdicts(raw string) ([]ai.Verdict, error) {
	cleaned := extractJSON(raw)

	var items []map[string]any
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		return nil, fmt.Errorf("parse triage response: %w", err)
	}

	out := make([]ai.Verdict, 0, len(items))
	for _, item := range items {
		id, ok := coerceInt(item["job_id"])
		if !ok || id <= 0 {
			continue
		}
		score := coerceFloat(item["score"])
		if math.IsNaN(score) || score < 0 || score > 1 {
			continue
		}
		out = append(out, ai.Verdict{
			JobID:  id,
			Score:  score,
			Reason: coerceString(item["reason"]),
		})
	}
	return out, nil
}
