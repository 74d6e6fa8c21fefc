package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jobfunnel-engine/internal/domain"
)

// UpsertCompany inserts a company or merges metadata into the existing row
// with the same normalized name. The first-discovered name stays canonical;
// previously-empty fields are filled in, populated fields never overwritten.
// The unique index on normalized_name makes the race between concurrent
// workers collapse to a merge.
func (d *DB) UpsertCompany(ctx context.Context, c domain.Company) (id int64, created bool, err error) {
	if c.NormalizedName == "" {
		return 0, false, errors.New("missing normalized name")
	}
	platform := c.ATSPlatform
	if platform == "" {
		platform = domain.PlatformUnknown
	}
	if c.DiscoverySource == "" {
		c.DiscoverySource = "manual"
	}

	existing, err := d.GetCompanyByKey(ctx, c.NormalizedName)
	if err != nil {
		return 0, false, fmt.Errorf("lookup company: %w", err)
	}

	// ON CONFLICT keeps this race-safe even when two workers discover the
	// same company at once; the existence check above only decides what we
	// report back to the caller.
	_, err = d.Pool.ExecContext(ctx, `
INSERT INTO companies(name, normalized_name, ats_platform, ats_slug, ats_url, website, discovery_source, slug_status, is_active, discovered_date)
VALUES(?,?,?,?,?,?,?,?,1,?)
ON CONFLICT(normalized_name) DO UPDATE SET
  ats_platform = CASE WHEN companies.ats_platform = 'unknown' THEN excluded.ats_platform ELSE companies.ats_platform END,
  ats_slug     = CASE WHEN companies.ats_slug = ''            THEN excluded.ats_slug     ELSE companies.ats_slug END,
  ats_url      = CASE WHEN companies.ats_url = ''             THEN excluded.ats_url      ELSE companies.ats_url END,
  website      = CASE WHEN companies.website = ''             THEN excluded.website      ELSE companies.website END;`,
		c.Name, c.NormalizedName, string(platform), c.ATSSlug, c.ATSURL, c.Website,
		c.DiscoverySource, string(c.SlugStatus), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, false, fmt.Errorf("upsert company: %w", err)
	}

	var rowID int64
	err = d.Pool.QueryRowContext(ctx,
		`SELECT id FROM companies WHERE normalized_name = ?;`, c.NormalizedName,
	).Scan(&rowID)
	if err != nil {
		return 0, false, fmt.Errorf("lookup company after upsert: %w", err)
	}
	return rowID, existing == nil, nil
}

func (d *DB) GetCompanyByKey(ctx context.Context, normalizedName string) (*domain.Company, error) {
	row := d.Pool.QueryRowContext(ctx, `
SELECT id, name, normalized_name, ats_platform, ats_slug, ats_url, website, discovery_source, slug_status, is_active, last_scraped, discovered_date
FROM companies WHERE normalized_name = ? LIMIT 1;`, normalizedName)

	c, err := scanCompany(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

// ListCompanies returns active companies on the given platform, ready for a
// scrape run. Pass an empty slugStatus to get every active company regardless
// of resolution state.
func (d *DB) ListCompanies(ctx context.Context, platform domain.Platform, slugStatus domain.SlugStatus) ([]domain.Company, error) {
	q := `
SELECT id, name, normalized_name, ats_platform, ats_slug, ats_url, website, discovery_source, slug_status, is_active, last_scraped, discovered_date
FROM companies
WHERE is_active = 1 AND ats_platform = ?`
	args := []any{string(platform)}
	if slugStatus != domain.SlugUnchecked {
		q += ` AND slug_status = ?`
		args = append(args, string(slugStatus))
	}
	q += ` ORDER BY name;`

	rows, err := d.Pool.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// AddCompanyPlatform records that a company is reachable on an additional
// ATS platform. Idempotent per (company, platform).
func (d *DB) AddCompanyPlatform(ctx context.Context, companyID int64, platform domain.Platform, slug string) error {
	_, err := d.Pool.ExecContext(ctx, `
INSERT OR IGNORE INTO company_platforms(company_id, platform, slug)
VALUES(?,?,?);`, companyID, string(platform), slug)
	return err
}

func (d *DB) CompanyPlatforms(ctx context.Context, companyID int64) (map[domain.Platform]string, error) {
	rows, err := d.Pool.QueryContext(ctx,
		`SELECT platform, slug FROM company_platforms WHERE company_id = ?;`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[domain.Platform]string)
	for rows.Next() {
		var p, s string
		if err := rows.Scan(&p, &s); err != nil {
			return nil, err
		}
		out[domain.Platform(p)] = s
	}
	return out, rows.Err()
}

func (d *DB) SetSlug(ctx context.Context, companyID int64, slug string, status domain.SlugStatus) error {
	_, err := d.Pool.ExecContext(ctx,
		`UPDATE companies SET ats_slug = ?, slug_status = ? WHERE id = ?;`,
		slug, string(status), companyID)
	return err
}

func (d *DB) SetSlugStatus(ctx context.Context, companyID int64, status domain.SlugStatus) error {
	_, err := d.Pool.ExecContext(ctx,
		`UPDATE companies SET slug_status = ? WHERE id = ?;`, string(status), companyID)
	return err
}

func (d *DB) MarkCompanyScraped(ctx context.Context, companyID int64) error {
	_, err := d.Pool.ExecContext(ctx,
		`UPDATE companies SET last_scraped = ? WHERE id = ?;`,
		time.Now().UTC().Format(time.RFC3339), companyID)
	return err
}

// DeactivateCompany soft-deletes. Rows are never hard-deleted.
func (d *DB) DeactivateCompany(ctx context.Context, companyID int64) error {
	_, err := d.Pool.ExecContext(ctx,
		`UPDATE companies SET is_active = 0 WHERE id = ?;`, companyID)
	return err
}

// AllCompanyNames returns id and canonical name for every stored company,
// for the advisory fuzzy-duplicate report.
func (d *DB) AllCompanyNames(ctx context.Context) (map[int64]string, error) {
	rows, err := d.Pool.QueryContext(ctx, `SELECT id, name FROM companies;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]string)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[id] = name
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompany(r rowScanner) (*domain.Company, error) {
	var c domain.Company
	var platform, slugStatus string
	var active int
	var lastScraped sql.NullString
	var discovered string

	if err := r.Scan(&c.ID, &c.Name, &c.NormalizedName, &platform, &c.ATSSlug, &c.ATSURL,
		&c.Website, &c.DiscoverySource, &slugStatus, &active, &lastScraped, &discovered); err != nil {
		return nil, err
	}

	c.ATSPlatform = domain.Platform(platform)
	c.SlugStatus = domain.SlugStatus(slugStatus)
	c.Active = active != 0
	if lastScraped.Valid {
		if t, err := time.Parse(time.RFC3339, lastScraped.String); err == nil {
			c.LastScraped = &t
		}
	}
	if t, err := time.Parse(time.RFC3339, discovered); err == nil {
		c.DiscoveredAt = t
	}
	return &c, nil
}
