package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobfunnel-engine/internal/domain"
)

// InsertJobIfNew persists a posting draft, keyed on URL. Re-inserting a seen
// URL is a no-op (success via idempotence), which is what makes re-running
// the adapter against an unchanged upstream produce zero new rows.
func (d *DB) InsertJobIfNew(ctx context.Context, companyID int64, p domain.PostingDraft) (added bool, err error) {
	if strings.TrimSpace(p.URL) == "" {
		return false, errors.New("missing url")
	}
	if strings.TrimSpace(p.Title) == "" {
		return false, errors.New("missing title")
	}

	var posted any
	if p.PostedAt != nil && !p.PostedAt.IsZero() {
		posted = p.PostedAt.UTC().Format(time.RFC3339)
	}

	_, err = d.Pool.ExecContext(ctx, `
INSERT OR IGNORE INTO jobs(company_id, job_url, job_title, job_description, location, posted_date, discovered_date)
VALUES(?,?,?,?,?,?,?);`,
		companyID,
		strings.TrimSpace(p.URL),
		strings.TrimSpace(p.Title),
		p.Description,
		strings.TrimSpace(p.Location),
		posted,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("insert job: %w", err)
	}

	var changes int
	if e := d.Pool.QueryRowContext(ctx, `SELECT changes();`).Scan(&changes); e == nil {
		return changes > 0, nil
	}
	return true, nil
}

// ListUnevaluated returns postings that have not been through the funnel yet,
// joined with their company name for classification context. limit <= 0
// means no limit.
func (d *DB) ListUnevaluated(ctx context.Context, limit int) ([]UnevaluatedJob, error) {
	q := `
SELECT j.id, j.job_title, j.location, c.name
FROM jobs j
JOIN companies c ON c.id = j.company_id
WHERE j.evaluated = 0
ORDER BY j.id`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.Pool.QueryContext(ctx, q+";", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UnevaluatedJob
	for rows.Next() {
		var j UnevaluatedJob
		if err := rows.Scan(&j.ID, &j.Title, &j.Location, &j.CompanyName); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// UnevaluatedJob is the slice of a posting the funnel needs.
type UnevaluatedJob struct {
	ID          int64
	Title       string
	Location    string
	CompanyName string
}

// ClaimJobs atomically flips evaluated 0 -> 1 for the given postings and
// returns the ids actually claimed. A posting another run already claimed is
// skipped, which is what prevents double-spending paid classification calls.
func (d *DB) ClaimJobs(ctx context.Context, ids []int64) ([]int64, error) {
	claimed := make([]int64, 0, len(ids))
	for _, id := range ids {
		res, err := d.Pool.ExecContext(ctx,
			`UPDATE jobs SET evaluated = 1 WHERE id = ? AND evaluated = 0;`, id)
		if err != nil {
			return claimed, fmt.Errorf("claim job %d: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			claimed = append(claimed, id)
		}
	}
	return claimed, nil
}

// ReleaseJobs returns claimed-but-unclassified postings to the unevaluated
// pool, used when a classification batch fails mid-flight. Postings that
// already have a result keep their evaluated flag.
func (d *DB) ReleaseJobs(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		_, err := d.Pool.ExecContext(ctx, `
UPDATE jobs SET evaluated = 0
WHERE id = ? AND NOT EXISTS (SELECT 1 FROM target_jobs t WHERE t.job_id = jobs.id);`, id)
		if err != nil {
			return fmt.Errorf("release job %d: %w", id, err)
		}
	}
	return nil
}

// ResetEvaluated returns postings to the unevaluated pool for a full re-run
// under new thresholds. Machine dispositions are cleared; human decisions
// (reviewed, applied) are preserved and their postings stay evaluated.
// companyID <= 0 resets the whole corpus.
func (d *DB) ResetEvaluated(ctx context.Context, companyID int64) (int64, error) {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	scope := ""
	var args []any
	if companyID > 0 {
		scope = ` AND company_id = ?`
		args = append(args, companyID)
	}

	if _, err := tx.ExecContext(ctx, `
DELETE FROM target_jobs
WHERE status IN (?,?,?)
  AND job_id IN (SELECT id FROM jobs WHERE 1=1`+scope+`);`,
		append([]any{int(domain.DispositionRejected), int(domain.DispositionPendingReview), int(domain.DispositionAccepted)}, args...)...,
	); err != nil {
		return 0, fmt.Errorf("clear machine dispositions: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
UPDATE jobs SET evaluated = 0
WHERE NOT EXISTS (SELECT 1 FROM target_jobs t WHERE t.job_id = jobs.id)`+scope+`;`, args...)
	if err != nil {
		return 0, fmt.Errorf("reset evaluated: %w", err)
	}
	n, _ := res.RowsAffected()

	return n, tx.Commit()
}

func (d *DB) GetJobByURL(ctx context.Context, url string) (*domain.JobPosting, error) {
	row := d.Pool.QueryRowContext(ctx, `
SELECT id, company_id, job_url, job_title, job_description, location, posted_date, discovered_date, evaluated
FROM jobs WHERE job_url = ? LIMIT 1;`, url)

	var j domain.JobPosting
	var posted sql.NullString
	var discovered string
	var evaluated int
	err := row.Scan(&j.ID, &j.CompanyID, &j.URL, &j.Title, &j.Description, &j.Location, &posted, &discovered, &evaluated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if posted.Valid {
		if t, e := time.Parse(time.RFC3339, posted.String); e == nil {
			j.PostedAt = &t
		}
	}
	if t, e := time.Parse(time.RFC3339, discovered); e == nil {
		j.DiscoveredAt = t
	}
	j.Evaluated = evaluated != 0
	return &j, nil
}

// JobDescription fetches one posting's description on demand. Descriptions
// stay out of the triage listing query, so the expensive review stage pulls
// them individually.
func (d *DB) JobDescription(ctx context.Context, jobID int64) (string, error) {
	var desc string
	err := d.Pool.QueryRowContext(ctx,
		`SELECT job_description FROM jobs WHERE id = ?;`, jobID).Scan(&desc)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("job %d not found", jobID)
	}
	return desc, err
}
