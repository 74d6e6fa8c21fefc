// Package funnel runs the three-stage classification pipeline: a free regex
// prefilter, a cheap batched triage model, and an expensive per-posting
// arbiter for the cases triage could not settle.
package funnel

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"jobfunnel-engine/internal/ai"
	"jobfunnel-engine/internal/config"
	"jobfunnel-engine/internal/domain"
	"jobfunnel-engine/internal/store"
)

// RunSummary totals one funnel run.
type RunSummary struct {
	Total           int
	PrefilterReject int
	Triaged         int
	TriageAccepted  int
	TriageRejected  int
	Deferred        int
	ArbiterAccepted int
	ArbiterRejected int
	PendingReview   int
	FailedBatches   int
	AlreadyClaimed  int
}

type Funnel struct {
	db         *store.DB
	classifier ai.BatchClassifier
	arbiter    ai.Arbiter
	cfg        config.Config
	log        *zap.Logger
}

func New(db *store.DB, classifier ai.BatchClassifier, arbiter ai.Arbiter, cfg config.Config, log *zap.Logger) *Funnel {
	return &Funnel{db: db, classifier: classifier, arbiter: arbiter, cfg: cfg, log: log}
}

// Run processes every unevaluated posting. Postings are claimed just before
// each paid batch so a concurrent run never double-spends a model call, and
// results are written incrementally batch by batch.
func (f *Funnel) Run(ctx context.Context) (sum RunSummary, err error) {
	// Everything claimed during this run. If the run aborts partway, claims
	// that never got a target row are released so the next run picks them up
	// instead of them sitting invisible until a reset.
	var claimed []int64
	defer func() {
		if err == nil || len(claimed) == 0 {
			return
		}
		rctx := context.WithoutCancel(ctx)
		if rerr := f.db.ReleaseJobs(rctx, claimed); rerr != nil {
			f.log.Warn("release claims after aborted run", zap.Error(rerr))
		}
	}()

	jobs, err := f.db.ListUnevaluated(ctx, 0)
	if err != nil {
		return sum, err
	}
	sum.Total = len(jobs)
	if len(jobs) == 0 {
		f.log.Info("no unevaluated postings")
		return sum, nil
	}

	// Stage 0: free.
	var forward []store.UnevaluatedJob
	intern := map[int64]bool{}
	for _, j := range jobs {
		pre := Prefilter(j.Title)
		intern[j.ID] = pre.IsIntern
		if !pre.Reject {
			forward = append(forward, j)
			continue
		}
		got, err := f.db.ClaimJobs(ctx, []int64{j.ID})
		if err != nil {
			return sum, err
		}
		if len(got) == 0 {
			sum.AlreadyClaimed++
			continue
		}
		claimed = append(claimed, j.ID)
		if _, err := f.db.InsertTargetJob(ctx, domain.TargetJob{
			JobID:       j.ID,
			Score:       0,
			Reason:      "regex: " + pre.Reason,
			Disposition: domain.DispositionRejected,
			Priority:    PriorityFor(j.Location, f.cfg.Funnel.DomesticSignals),
			IsIntern:    pre.IsIntern,
		}); err != nil {
			return sum, err
		}
		sum.PrefilterReject++
	}

	f.log.Info("prefilter complete",
		zap.Int("total", sum.Total),
		zap.Int("rejected", sum.PrefilterReject),
		zap.Int("forwarded", len(forward)),
	)

	// Stage 1: cheap, batched.
	batchSize := f.cfg.Funnel.TriageBatchSize
	if batchSize < 1 {
		batchSize = 100
	}

	var deferred []store.UnevaluatedJob
	for start := 0; start < len(forward); start += batchSize {
		end := start + batchSize
		if end > len(forward) {
			end = len(forward)
		}
		batchDeferred, batchClaimed, err := f.triageBatch(ctx, forward[start:end], intern, &sum)
		claimed = append(claimed, batchClaimed...)
		if err != nil {
			return sum, err
		}
		deferred = append(deferred, batchDeferred...)
	}

	// Stage 2: expensive, bounded.
	sum.Deferred = len(deferred)
	if err := f.arbitrate(ctx, deferred, intern, &sum); err != nil {
		return sum, err
	}

	f.log.Info("funnel run complete",
		zap.Int("total", sum.Total),
		zap.Int("prefilter_rejected", sum.PrefilterReject),
		zap.Int("triaged", sum.Triaged),
		zap.Int("triage_accepted", sum.TriageAccepted),
		zap.Int("triage_rejected", sum.TriageRejected),
		zap.Int("deferred", sum.Deferred),
		zap.Int("arbiter_accepted", sum.ArbiterAccepted),
		zap.Int("arbiter_rejected", sum.ArbiterRejected),
		zap.Int("pending_review", sum.PendingReview),
		zap.Int("failed_batches", sum.FailedBatches),
	)
	return sum, nil
}

// triageBatch claims the batch, spends one model call on it, and persists
// every verdict. On model failure the whole claim is released so the next
// run picks the batch up again. The ids it managed to claim are returned
// either way so the caller can clean up after an abort.
func (f *Funnel) triageBatch(ctx context.Context, batch []store.UnevaluatedJob, intern map[int64]bool, sum *RunSummary) ([]store.UnevaluatedJob, []int64, error) {
	ids := make([]int64, 0, len(batch))
	for _, j := range batch {
		ids = append(ids, j.ID)
	}

	claimedIDs, err := f.db.ClaimJobs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	claimedSet := map[int64]bool{}
	for _, id := range claimedIDs {
		claimedSet[id] = true
	}
	sum.AlreadyClaimed += len(batch) - len(claimedIDs)

	var claimed []store.UnevaluatedJob
	summaries := make([]ai.PostingSummary, 0, len(claimedIDs))
	for _, j := range batch {
		if !claimedSet[j.ID] {
			continue
		}
		claimed = append(claimed, j)
		summaries = append(summaries, ai.PostingSummary{
			JobID:    j.ID,
			Title:    j.Title,
			Location: j.Location,
			Company:  j.CompanyName,
		})
	}
	if len(claimed) == 0 {
		return nil, nil, nil
	}

	verdicts, err := f.classifier.ClassifyBatch(ctx, summaries)
	if err != nil {
		sum.FailedBatches++
		f.log.Warn("triage batch failed, releasing claims",
			zap.Int("batch_size", len(claimed)), zap.Error(err))
		if rerr := f.db.ReleaseJobs(ctx, claimedIDs); rerr != nil {
			return nil, claimedIDs, fmt.Errorf("release after failed batch: %w", rerr)
		}
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		return nil, nil, nil
	}

	byID := map[int64]ai.Verdict{}
	for _, v := range verdicts {
		if claimedSet[v.JobID] {
			byID[v.JobID] = v
		}
	}

	var deferred []store.UnevaluatedJob
	for _, j := range claimed {
		v, ok := byID[j.ID]
		if !ok {
			// The model dropped or garbled this element. A human decides.
			if _, err := f.db.InsertTargetJob(ctx, domain.TargetJob{
				JobID:       j.ID,
				Reason:      "triage verdict missing or malformed",
				Disposition: domain.DispositionPendingReview,
				Priority:    PriorityFor(j.Location, f.cfg.Funnel.DomesticSignals),
				IsIntern:    intern[j.ID],
			}); err != nil {
				return deferred, claimedIDs, err
			}
			sum.PendingReview++
			continue
		}

		sum.Triaged++
		switch {
		case v.Score >= f.cfg.Funnel.AcceptThreshold:
			if err := f.persistVerdict(ctx, j, v.Score, v.Reason, domain.DispositionAccepted, intern[j.ID]); err != nil {
				return deferred, claimedIDs, err
			}
			sum.TriageAccepted++
		case v.Score <= f.cfg.Funnel.RejectThreshold:
			if err := f.persistVerdict(ctx, j, v.Score, v.Reason, domain.DispositionRejected, intern[j.ID]); err != nil {
				return deferred, claimedIDs, err
			}
			sum.TriageRejected++
		default:
			deferred = append(deferred, j)
		}
	}
	return deferred, claimedIDs, nil
}

// arbitrate runs the expensive stage over postings triage left undecided.
func (f *Funnel) arbitrate(ctx context.Context, deferred []store.UnevaluatedJob, intern map[int64]bool, sum *RunSummary) error {
	if len(deferred) == 0 || f.arbiter == nil {
		for _, j := range deferred {
			// No arbiter configured: undecided postings go to a human.
			if _, err := f.db.InsertTargetJob(ctx, domain.TargetJob{
				JobID:       j.ID,
				Reason:      "triage undecided, arbiter disabled",
				Disposition: domain.DispositionPendingReview,
				Priority:    PriorityFor(j.Location, f.cfg.Funnel.DomesticSignals),
				IsIntern:    intern[j.ID],
			}); err != nil {
				return err
			}
			sum.PendingReview++
		}
		return nil
	}

	profile := ai.CandidateProfile{
		Summary:     f.cfg.Profile.Summary,
		Skills:      f.cfg.Profile.Skills,
		Constraints: f.cfg.Profile.Constraints,
	}

	workers := f.cfg.Funnel.ReviewWorkers
	if workers < 1 {
		workers = 1
	}

	var mu sync.Mutex
	workCh := make(chan store.UnevaluatedJob)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for j := range workCh {
				desc, err := f.db.JobDescription(gctx, j.ID)
				if err != nil {
					return err
				}

				review, err := f.arbiter.Evaluate(gctx, profile, ai.PostingSummary{
					JobID:    j.ID,
					Title:    j.Title,
					Location: j.Location,
					Company:  j.CompanyName,
				}, desc)
				if err != nil {
					// Leave the posting claimed-but-undecided for a human
					// rather than burning retries on a flaky model.
					f.log.Warn("arbiter failed", zap.Int64("job_id", j.ID), zap.Error(err))
					if _, ierr := f.db.InsertTargetJob(gctx, domain.TargetJob{
						JobID:       j.ID,
						Reason:      "arbiter call failed",
						Disposition: domain.DispositionPendingReview,
						Priority:    PriorityFor(j.Location, f.cfg.Funnel.DomesticSignals),
						IsIntern:    intern[j.ID],
					}); ierr != nil {
						return ierr
					}
					mu.Lock()
					sum.PendingReview++
					mu.Unlock()
					continue
				}

				disp := domain.DispositionRejected
				if review.Accept {
					disp = domain.DispositionAccepted
				}
				if err := f.persistVerdict(gctx, j, review.Score, review.Reason, disp, intern[j.ID]); err != nil {
					return err
				}

				mu.Lock()
				if review.Accept {
					sum.ArbiterAccepted++
				} else {
					sum.ArbiterRejected++
				}
				mu.Unlock()
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(workCh)
		for _, j := range deferred {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case workCh <- j:
			}
		}
		return nil
	})

	return g.Wait()
}

func (f *Funnel) persistVerdict(ctx context.Context, j store.UnevaluatedJob, score float64, reason string, disp domain.Disposition, isIntern bool) error {
	_, err := f.db.InsertTargetJob(ctx, domain.TargetJob{
		JobID:       j.ID,
		Score:       score,
		Reason:      reason,
		Disposition: disp,
		Priority:    PriorityFor(j.Location, f.cfg.Funnel.DomesticSignals),
		IsIntern:    isIntern,
	})
	return err
}
