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

//go:embed arbiter_prompt.md
var arbiterPrompt string

// Arbiter runs the expensive single-posting evaluation with the full
// description and the candidate profile in context.
type Arbiter struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewArbiter(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Arbiter {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	return &Arbiter{generator: generator, logger: logger, maxLogLen: maxLogLength}
}

func (a *Arbiter) Evaluate(ctx context.Context, profile ai.CandidateProfile, posting ai.PostingSummary, description string) (ai.Review, error) {
	profileJSON, err := json.MarshalIndent(map[string]any{
		"summary":     profile.Summary,
		"skills":      profile.Skills,
		"constraints": profile.Constraints,
	}, "", "  ")
	if err != nil {
		return ai.Review{}, fmt.Errorf("marshal profile payload: %w", err)
	}

	postingJSON, err := json.MarshalIndent(map[string]any{
		"title":       posting.Title,
		"location":    posting.Location,
		"company":     posting.Company,
		"description": description,
	}, "", "  ")
	if err != nil {
		return ai.Review{}, fmt.Errorf("marshal posting payload: %w", err)
	}

	prompt := strings.ReplaceAll(arbiterPrompt, "{{PROFILE_JSON}}", string(profileJSON))
	prompt = strings.ReplaceAll(prompt, "{{POSTING_JSON}}", string(postingJSON))

	a.logger.Debug("arbiter request",
		zap.Int64("job_id", posting.JobID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", truncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return ai.Review{}, err
	}

	a.logger.Debug("arbiter response",
		zap.Int64("job_id", posting.JobID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", truncateForLog(raw, a.maxLogLen)),
	)

	return parseReview(raw)
}

func parseReview(raw string) (ai.Review, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return ai.Review{}, fmt.Errorf("parse arbiter response: %w", err)
	}

	score := coerceFloat(data["score"])
	if math.IsNaN(score) {
		score = 0
	}

	return ai.Review{
		Accept: coerceBool(data["accept"]),
		Score:  score,
		Reason: coerceString(data["reason"]),
	}, nil
}
