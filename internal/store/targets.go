package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jobfunnel-engine/internal/domain"
)

// InsertTargetJob records a classification outcome. The unique index on
// job_id holds the 1:1 invariant; a second insert for the same posting is
// ignored rather than surfaced as an error.
func (d *DB) InsertTargetJob(ctx context.Context, t domain.TargetJob) (added bool, err error) {
	if t.Priority == 0 {
		t.Priority = domain.PriorityDomestic
	}

	_, err = d.Pool.ExecContext(ctx, `
INSERT OR IGNORE INTO target_jobs(job_id, relevance_score, match_reason, status, priority, is_intern, added_date)
VALUES(?,?,?,?,?,?,?);`,
		t.JobID, t.Score, t.Reason, int(t.Disposition), t.Priority, boolToInt(t.IsIntern),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("insert target job: %w", err)
	}

	var changes int
	if e := d.Pool.QueryRowContext(ctx, `SELECT changes();`).Scan(&changes); e == nil {
		return changes > 0, nil
	}
	return true, nil
}

// ErrBackwardTransition is returned when a disposition change would move
// against the state machine without a reset.
var ErrBackwardTransition = errors.New("disposition transition not allowed")

// UpdateDisposition moves a target job forward in the state machine,
// optionally overriding score and reason (arbiter results do; human review
// keeps them when reason is empty).
func (d *DB) UpdateDisposition(ctx context.Context, jobID int64, next domain.Disposition, score *float64, reason string) error {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var current int
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM target_jobs WHERE job_id = ?;`, jobID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("job %d has no classification result", jobID)
	}
	if err != nil {
		return err
	}

	if !domain.Disposition(current).NextAllowed(next) {
		return fmt.Errorf("%w: %s -> %s", ErrBackwardTransition,
			domain.Disposition(current), next)
	}

	q := `UPDATE target_jobs SET status = ?`
	args := []any{int(next)}
	if score != nil {
		q += `, relevance_score = ?`
		args = append(args, *score)
	}
	if reason != "" {
		q += `, match_reason = ?`
		args = append(args, reason)
	}
	q += ` WHERE job_id = ?;`
	args = append(args, jobID)

	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("update disposition: %w", err)
	}
	return tx.Commit()
}

// TargetRow is a target job joined with its posting and company for display.
type TargetRow struct {
	TargetID    int64
	JobID       int64
	CompanyName string
	Title       string
	Location    string
	URL         string
	Score       float64
	Reason      string
	Disposition domain.Disposition
	Priority    int
	IsIntern    bool
}

// ListTargets returns target jobs in a given disposition, highest priority
// first then by score. Most-recent ordering within a company is a property
// of this read path, not of the writes.
func (d *DB) ListTargets(ctx context.Context, disposition domain.Disposition, limit int) ([]TargetRow, error) {
	q := `
SELECT t.id, t.job_id, c.name, j.job_title, j.location, j.job_url, t.relevance_score, t.match_reason, t.status, t.priority, t.is_intern
FROM target_jobs t
JOIN jobs j ON j.id = t.job_id
JOIN companies c ON c.id = j.company_id
WHERE t.status = ?
ORDER BY t.priority ASC, t.relevance_score DESC, j.discovered_date DESC`
	args := []any{int(disposition)}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.Pool.QueryContext(ctx, q+";", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TargetRow
	for rows.Next() {
		var r TargetRow
		var status, isIntern int
		if err := rows.Scan(&r.TargetID, &r.JobID, &r.CompanyName, &r.Title, &r.Location, &r.URL,
			&r.Score, &r.Reason, &status, &r.Priority, &isIntern); err != nil {
			return nil, err
		}
		r.Disposition = domain.Disposition(status)
		r.IsIntern = isIntern != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// DispositionCounts reports how many postings sit in each state, for the run
// summary and the targets command.
func (d *DB) DispositionCounts(ctx context.Context) (map[domain.Disposition]int, error) {
	rows, err := d.Pool.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM target_jobs GROUP BY status;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[domain.Disposition]int)
	for rows.Next() {
		var status, n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[domain.Disposition(status)] = n
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
