package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jobfunnel-engine/internal/ai"
)

type stubGenerator struct {
	response string
	err      error
	prompts  []string
}

func (s *stubGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"```\n[1, 2]\n```", `[1, 2]`},
		{"  {\"a\": 1}  ", `{"a": 1}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractJSON(tt.in), "in=%q", tt.in)
	}
}

func TestParseVerdictsSkipsMalformedElements(t *testing.T) {
	raw := "```json\n" + `[
		{"job_id": 1, "score": 0.8, "reason": "strong title match"},
		{"job_id": "2", "score": "0.4", "reason": "weak"},
		{"job_id": 0, "score": 0.5, "reason": "bad id"},
		{"job_id": 3, "score": 1.4, "reason": "out of range"},
		{"job_id": 4, "score": "n/a", "reason": "not a number"}
	]` + "\n```"

	verdicts, err := parseVerdicts(raw)
	require.NoError(t, err)
	require.Len(t, verdicts, 2, "garbled elements are dropped, not fatal")

	assert.Equal(t, int64(1), verdicts[0].JobID)
	assert.Equal(t, 0.8, verdicts[0].Score)
	assert.Equal(t, int64(2), verdicts[1].JobID, "string ids are coerced")
	assert.Equal(t, 0.4, verdicts[1].Score)
}

func TestParseVerdictsRejectsNonArray(t *testing.T) {
	_, err := parseVerdicts(`{"job_id": 1, "score": 0.8}`)
	assert.Error(t, err)
}

func TestClassifierBuildsPromptFromBatch(t *testing.T) {
	gen := &stubGenerator{response: `[{"job_id": 7, "score": 0.9, "reason": "ok"}]`}
	c := NewClassifier(gen, zap.NewNop(), 0)

	verdicts, err := c.ClassifyBatch(context.Background(), []ai.PostingSummary{
		{JobID: 7, Title: "Software Engineer", Location: "NYC", Company: "Acme"},
	})
	require.NoError(t, err)
	require.Len(t, verdicts, 1)
	assert.Equal(t, int64(7), verdicts[0].JobID)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], `"Software Engineer"`)
	assert.NotContains(t, gen.prompts[0], "{{POSTINGS_JSON}}")
}

func TestClassifierEmptyBatchSkipsModel(t *testing.T) {
	gen := &stubGenerator{}
	c := NewClassifier(gen, zap.NewNop(), 0)

	verdicts, err := c.ClassifyBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, verdicts)
	assert.Empty(t, gen.prompts)
}

func TestClassifierGeneratorErrorPropagates(t *testing.T) {
	gen := &stubGenerator{err: errors.New("quota exceeded")}
	c := NewClassifier(gen, zap.NewNop(), 0)

	_, err := c.ClassifyBatch(context.Background(), []ai.PostingSummary{{JobID: 1, Title: "SWE"}})
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestArbiterEvaluate(t *testing.T) {
	gen := &stubGenerator{response: "```json\n" + `{"accept": "yes", "score": "0.85", "reason": "skills line up"}` + "\n```"}
	a := NewArbiter(gen, zap.NewNop(), 0)

	review, err := a.Evaluate(context.Background(),
		ai.CandidateProfile{Summary: "new grad backend", Skills: []string{"Go", "SQL"}},
		ai.PostingSummary{JobID: 9, Title: "Backend Engineer", Company: "Acme"},
		"Build and operate Go services.")
	require.NoError(t, err)
	assert.True(t, review.Accept)
	assert.Equal(t, 0.85, review.Score)
	assert.Equal(t, "skills line up", review.Reason)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Build and operate Go services.")
	assert.Contains(t, gen.prompts[0], "new grad backend")
}

func TestParseReviewDefaultsMissingScore(t *testing.T) {
	review, err := parseReview(`{"accept": false, "reason": "senior role"}`)
	require.NoError(t, err)
	assert.False(t, review.Accept)
	assert.Equal(t, 0.0, review.Score)
}

func TestSuggestSlugsFiltersUnusable(t *testing.T) {
	gen := &stubGenerator{response: `{
		"Acme Corp": ["acme", "Acme Corp", "acme/jobs", "ACMECORP"],
		"Beta": ["has space"]
	}`}
	s := NewSuggester(gen, zap.NewNop(), 0)

	out, err := s.SuggestSlugs(context.Background(), "greenhouse", []string{"Acme Corp", "Beta"})
	require.NoError(t, err)

	assert.Equal(t, []string{"acme", "acmecorp"}, out["Acme Corp"],
		"spaces and path separators are unusable as slugs")
	_, ok := out["Beta"]
	assert.False(t, ok, "companies with no usable slug are omitted")

	require.Len(t, gen.prompts, 1)
	assert.True(t, strings.Contains(gen.prompts[0], "greenhouse"))
}
