package funnel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jobfunnel-engine/internal/ai"
	"jobfunnel-engine/internal/config"
	"jobfunnel-engine/internal/domain"
	"jobfunnel-engine/internal/store"
)

type fakeClassifier struct {
	scores  map[string]float64 // by title; missing titles get no verdict
	calls   int
	batches [][]ai.PostingSummary
	err     error
}

func (f *fakeClassifier) ClassifyBatch(_ context.Context, postings []ai.PostingSummary) ([]ai.Verdict, error) {
	f.calls++
	f.batches = append(f.batches, postings)
	if f.err != nil {
		return nil, f.err
	}
	var out []ai.Verdict
	for _, p := range postings {
		score, ok := f.scores[p.Title]
		if !ok {
			continue
		}
		out = append(out, ai.Verdict{JobID: p.JobID, Score: score, Reason: "triage"})
	}
	return out, nil
}

type fakeArbiter struct {
	accept map[string]bool // by title
	calls  int
}

func (f *fakeArbiter) Evaluate(_ context.Context, _ ai.CandidateProfile, p ai.PostingSummary, _ string) (ai.Review, error) {
	f.calls++
	return ai.Review{Accept: f.accept[p.Title], Score: 0.6, Reason: "arbiter"}, nil
}

// cancellingArbiter pulls the plug on the run from inside the expensive
// stage, the way an interrupted process or a dead upstream would.
type cancellingArbiter struct {
	cancel context.CancelFunc
}

func (c *cancellingArbiter) Evaluate(ctx context.Context, _ ai.CandidateProfile, _ ai.PostingSummary, _ string) (ai.Review, error) {
	c.cancel()
	return ai.Review{}, ctx.Err()
}

func testConfig() config.Config {
	var cfg config.Config
	cfg.Funnel.AcceptThreshold = 0.7
	cfg.Funnel.RejectThreshold = 0.5
	cfg.Funnel.TriageBatchSize = 100
	cfg.Funnel.ReviewWorkers = 2
	return cfg
}

func seedJobs(t *testing.T, db *store.DB, titles ...string) map[string]int64 {
	t.Helper()
	ctx := context.Background()

	companyID, _, err := db.UpsertCompany(ctx, domain.Company{
		Name:           "Acme",
		NormalizedName: "acme",
		ATSPlatform:    domain.PlatformGreenhouse,
		Active:         true,
	})
	require.NoError(t, err)

	ids := make(map[string]int64, len(titles))
	for _, title := range titles {
		added, err := db.InsertJobIfNew(ctx, companyID, domain.PostingDraft{
			Title: title,
			URL:   "https://boards.greenhouse.io/acme/jobs/" + title,
		})
		require.NoError(t, err)
		require.True(t, added)

		j, err := db.GetJobByURL(ctx, "https://boards.greenhouse.io/acme/jobs/"+title)
		require.NoError(t, err)
		require.NotNil(t, j)
		ids[title] = j.ID
	}
	return ids
}

func targetFor(t *testing.T, db *store.DB, disp domain.Disposition, jobID int64) *store.TargetRow {
	t.Helper()
	rows, err := db.ListTargets(context.Background(), disp, 0)
	require.NoError(t, err)
	for i := range rows {
		if rows[i].JobID == jobID {
			return &rows[i]
		}
	}
	return nil
}

func TestRunThresholdBands(t *testing.T) {
	db, err := store.OpenMemory()
	require.NoError(t, err)
	defer db.Close()

	// Titles are chosen to pass the prefilter untouched.
	ids := seedJobs(t, db,
		"Software Engineer A",
		"Software Engineer B",
		"Software Engineer C",
		"Software Engineer D",
		"Software Engineer E",
	)

	classifier := &fakeClassifier{scores: map[string]float64{
		"Software Engineer A": 0.49,
		"Software Engineer B": 0.50,
		"Software Engineer C": 0.60,
		"Software Engineer D": 0.70,
		"Software Engineer E": 0.71,
	}}
	arbiter := &fakeArbiter{accept: map[string]bool{"Software Engineer C": true}}

	f := New(db, classifier, arbiter, testConfig(), zap.NewNop())
	sum, err := f.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, sum.Total)
	assert.Equal(t, 2, sum.TriageRejected) // 0.49 and the 0.50 boundary
	assert.Equal(t, 2, sum.TriageAccepted) // 0.70 boundary and 0.71
	assert.Equal(t, 1, sum.Deferred)       // strictly between
	assert.Equal(t, 1, sum.ArbiterAccepted)
	assert.Equal(t, 1, arbiter.calls)

	assert.NotNil(t, targetFor(t, db, domain.DispositionRejected, ids["Software Engineer A"]))
	assert.NotNil(t, targetFor(t, db, domain.DispositionRejected, ids["Software Engineer B"]))
	assert.NotNil(t, targetFor(t, db, domain.DispositionAccepted, ids["Software Engineer C"]))
	assert.NotNil(t, targetFor(t, db, domain.DispositionAccepted, ids["Software Engineer D"]))
	assert.NotNil(t, targetFor(t, db, domain.DispositionAccepted, ids["Software Engineer E"]))

	// Everything is settled; a second run must not spend another call.
	before := classifier.calls
	sum2, err := f.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sum2.Total)
	assert.Equal(t, before, classifier.calls)
}

func TestRunBatchCostBound(t *testing.T) {
	db, err := store.OpenMemory()
	require.NoError(t, err)
	defer db.Close()

	seedJobs(t, db,
		"Software Engineer 1",
		"Software Engineer 2",
		"Software Engineer 3",
		"Software Engineer 4",
		"Software Engineer 5",
	)

	classifier := &fakeClassifier{scores: map[string]float64{
		"Software Engineer 1": 0.9,
		"Software Engineer 2": 0.9,
		"Software Engineer 3": 0.9,
		"Software Engineer 4": 0.9,
		"Software Engineer 5": 0.9,
	}}

	cfg := testConfig()
	cfg.Funnel.TriageBatchSize = 2

	f := New(db, classifier, nil, cfg, zap.NewNop())
	sum, err := f.Run(context.Background())
	require.NoError(t, err)

	// ceil(5/2) batches, no more.
	assert.Equal(t, 3, classifier.calls)
	assert.Equal(t, 5, sum.TriageAccepted)
	for _, b := range classifier.batches {
		assert.LessOrEqual(t, len(b), 2)
	}
}

func TestRunPrefilterSkipsModel(t *testing.T) {
	db, err := store.OpenMemory()
	require.NoError(t, err)
	defer db.Close()

	ids := seedJobs(t, db,
		"Senior Software Engineer",
		"Account Executive",
		"New Grad Software Engineer",
	)

	classifier := &fakeClassifier{scores: map[string]float64{
		"New Grad Software Engineer": 1.0,
	}}

	f := New(db, classifier, nil, testConfig(), zap.NewNop())
	sum, err := f.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, sum.PrefilterReject)
	assert.Equal(t, 1, sum.TriageAccepted)
	require.Equal(t, 1, classifier.calls)
	require.Len(t, classifier.batches[0], 1)
	assert.Equal(t, "New Grad Software Engineer", classifier.batches[0][0].Title)

	rejected := targetFor(t, db, domain.DispositionRejected, ids["Senior Software Engineer"])
	require.NotNil(t, rejected)
	assert.Contains(t, rejected.Reason, "seniority")
}

func TestRunFailedBatchReleasesClaims(t *testing.T) {
	db, err := store.OpenMemory()
	require.NoError(t, err)
	defer db.Close()

	seedJobs(t, db, "Software Engineer X", "Software Engineer Y")

	classifier := &fakeClassifier{err: errors.New("model unavailable")}

	f := New(db, classifier, nil, testConfig(), zap.NewNop())
	sum, err := f.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.FailedBatches)

	// Released postings are visible to the next run.
	jobs, err := db.ListUnevaluated(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}

func TestRunFullPipelineOneCallPerStage(t *testing.T) {
	db, err := store.OpenMemory()
	require.NoError(t, err)
	defer db.Close()

	ids := seedJobs(t, db,
		"Senior Software Engineer",
		"Software Engineer, New Grad",
		"Software Engineer",
	)

	classifier := &fakeClassifier{scores: map[string]float64{
		"Software Engineer, New Grad": 0.9,
		"Software Engineer":           0.6,
	}}
	arbiter := &fakeArbiter{accept: map[string]bool{"Software Engineer": true}}

	f := New(db, classifier, arbiter, testConfig(), zap.NewNop())
	sum, err := f.Run(context.Background())
	require.NoError(t, err)

	// One posting per stage: regex reject, triage accept, arbiter accept.
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 1, sum.PrefilterReject)
	assert.Equal(t, 1, sum.TriageAccepted)
	assert.Equal(t, 1, sum.Deferred)
	assert.Equal(t, 1, sum.ArbiterAccepted)

	// The senior posting never reaches a model, and the mid-band posting
	// costs exactly one arbiter call on top of the single triage batch.
	assert.Equal(t, 1, classifier.calls)
	require.Len(t, classifier.batches, 1)
	assert.Len(t, classifier.batches[0], 2)
	assert.Equal(t, 1, arbiter.calls)

	rejected := targetFor(t, db, domain.DispositionRejected, ids["Senior Software Engineer"])
	require.NotNil(t, rejected)
	assert.Contains(t, rejected.Reason, "seniority")
	assert.NotNil(t, targetFor(t, db, domain.DispositionAccepted, ids["Software Engineer, New Grad"]))
	assert.NotNil(t, targetFor(t, db, domain.DispositionAccepted, ids["Software Engineer"]))

	// Nothing left behind for a later run.
	left, err := db.ListUnevaluated(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestRunAbortedArbitrationReleasesClaims(t *testing.T) {
	db, err := store.OpenMemory()
	require.NoError(t, err)
	defer db.Close()

	ids := seedJobs(t, db,
		"Software Engineer Settled",
		"Software Engineer Undecided 1",
		"Software Engineer Undecided 2",
	)

	classifier := &fakeClassifier{scores: map[string]float64{
		"Software Engineer Settled":     0.9,
		"Software Engineer Undecided 1": 0.6,
		"Software Engineer Undecided 2": 0.6,
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := New(db, classifier, &cancellingArbiter{cancel: cancel}, testConfig(), zap.NewNop())
	_, err = f.Run(ctx)
	require.Error(t, err)

	// The triage verdict written before the abort stays settled.
	assert.NotNil(t, targetFor(t, db, domain.DispositionAccepted, ids["Software Engineer Settled"]))

	// The undecided postings must come back on the queue instead of sitting
	// claimed with no disposition, which only a full reset would recover.
	left, err := db.ListUnevaluated(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, left, 2)
	got := map[int64]bool{}
	for _, j := range left {
		got[j.ID] = true
	}
	assert.True(t, got[ids["Software Engineer Undecided 1"]])
	assert.True(t, got[ids["Software Engineer Undecided 2"]])
}

func TestRunMissingVerdictGoesToHuman(t *testing.T) {
	db, err := store.OpenMemory()
	require.NoError(t, err)
	defer db.Close()

	ids := seedJobs(t, db, "Software Engineer P", "Software Engineer Q")

	// The model only answers for P.
	classifier := &fakeClassifier{scores: map[string]float64{
		"Software Engineer P": 0.9,
	}}

	f := New(db, classifier, nil, testConfig(), zap.NewNop())
	sum, err := f.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, sum.TriageAccepted)
	assert.Equal(t, 1, sum.PendingReview)
	assert.NotNil(t, targetFor(t, db, domain.DispositionPendingReview, ids["Software Engineer Q"]))
}
