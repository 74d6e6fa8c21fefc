package store

import "database/sql"

// Migrate applies the schema. Identity is pushed into UNIQUE constraints so
// that concurrent workers never need application-level locks: companies are
// unique per normalized name, jobs per URL, classification results per job,
// contacts per (company, normalized name).
func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= 1 {
		return tx.Commit()
	}

	// ---- Schema v1: tables ----

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS companies (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  normalized_name TEXT NOT NULL,
  ats_platform TEXT NOT NULL DEFAULT 'unknown',
  ats_slug TEXT NOT NULL DEFAULT '',
  ats_url TEXT NOT NULL DEFAULT '',
  website TEXT NOT NULL DEFAULT '',
  discovery_source TEXT NOT NULL DEFAULT 'manual',
  slug_status TEXT NOT NULL DEFAULT '',
  is_active INTEGER NOT NULL DEFAULT 1,
  last_scraped TEXT,
  discovered_date TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS company_platforms (
  company_id INTEGER NOT NULL REFERENCES companies(id),
  platform TEXT NOT NULL,
  slug TEXT NOT NULL DEFAULT '',
  UNIQUE(company_id, platform)
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS jobs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  company_id INTEGER NOT NULL REFERENCES companies(id),
  job_url TEXT NOT NULL,
  job_title TEXT NOT NULL,
  job_description TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  posted_date TEXT,
  discovered_date TEXT NOT NULL,
  evaluated INTEGER NOT NULL DEFAULT 0
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS target_jobs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  job_id INTEGER NOT NULL REFERENCES jobs(id),
  relevance_score REAL NOT NULL DEFAULT 0,
  match_reason TEXT NOT NULL DEFAULT '',
  status INTEGER NOT NULL DEFAULT 1,
  priority INTEGER NOT NULL DEFAULT 1,
  is_intern INTEGER NOT NULL DEFAULT 0,
  added_date TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS contacts (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  company_id INTEGER NOT NULL REFERENCES companies(id),
  name TEXT NOT NULL,
  normalized_name TEXT NOT NULL,
  title TEXT NOT NULL DEFAULT '',
  profile_url TEXT NOT NULL DEFAULT '',
  is_priority INTEGER NOT NULL DEFAULT 0,
  confidence TEXT NOT NULL DEFAULT '',
  discovered_date TEXT NOT NULL
);
`); err != nil {
		return err
	}

	// ---- Schema v1: indexes ----

	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_companies_normalized ON companies(normalized_name);`,
		`CREATE INDEX IF NOT EXISTS idx_companies_platform ON companies(ats_platform);`,
		`CREATE INDEX IF NOT EXISTS idx_companies_source ON companies(discovery_source);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_url ON jobs(job_url);`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_company ON jobs(company_id);`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_evaluated ON jobs(evaluated);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_targets_job ON target_jobs(job_id);`,
		`CREATE INDEX IF NOT EXISTS idx_targets_status ON target_jobs(status);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_contacts_company_name ON contacts(company_id, normalized_name);`,
		`CREATE INDEX IF NOT EXISTS idx_contacts_priority ON contacts(is_priority);`,
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}

	return tx.Commit()
}
