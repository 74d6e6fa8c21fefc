package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobfunnel-engine/internal/domain"
)

// UpsertContact inserts a contact unless one with the same normalized name
// already exists at the company. The first-found row wins; duplicates from
// later sources are dropped silently.
func (d *DB) UpsertContact(ctx context.Context, c domain.Contact) (added bool, err error) {
	if c.NormalizedName == "" {
		return false, errors.New("missing normalized name")
	}

	_, err = d.Pool.ExecContext(ctx, `
INSERT OR IGNORE INTO contacts(company_id, name, normalized_name, title, profile_url, is_priority, confidence, discovered_date)
VALUES(?,?,?,?,?,?,?,?);`,
		c.CompanyID, c.Name, c.NormalizedName, c.Title, c.ProfileURL,
		boolToInt(c.Priority), c.Confidence,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("insert contact: %w", err)
	}

	var changes int
	if e := d.Pool.QueryRowContext(ctx, `SELECT changes();`).Scan(&changes); e == nil {
		return changes > 0, nil
	}
	return true, nil
}

func (d *DB) ListContacts(ctx context.Context, companyID int64) ([]domain.Contact, error) {
	rows, err := d.Pool.QueryContext(ctx, `
SELECT id, company_id, name, normalized_name, title, profile_url, is_priority, confidence, discovered_date
FROM contacts
WHERE company_id = ?
ORDER BY is_priority DESC, name;`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Contact
	for rows.Next() {
		var c domain.Contact
		var prio int
		var discovered string
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.NormalizedName, &c.Title,
			&c.ProfileURL, &prio, &c.Confidence, &discovered); err != nil {
			return nil, err
		}
		c.Priority = prio != 0
		if t, e := time.Parse(time.RFC3339, discovered); e == nil {
			c.DiscoveredAt = t
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
