package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
//
// Amounts are stored as decimal strings, never floats: the ledger must
// reproduce the same running balances on every recalculation. Dates are
// ISO-8601 text so (date, seq) ordering works lexicographically.
const schema = `
CREATE TABLE IF NOT EXISTS parties (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    credit_limit TEXT NOT NULL DEFAULT '0',
    balance TEXT NOT NULL DEFAULT '0',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS entries (
    id TEXT PRIMARY KEY,
    party_id TEXT NOT NULL DEFAULT '',
    date TEXT NOT NULL,
    kind TEXT NOT NULL,
    amount TEXT NOT NULL,
    has_gst INTEGER NOT NULL DEFAULT 0,
    ref_no TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    mode TEXT NOT NULL DEFAULT '',
    sale_no INTEGER NOT NULL DEFAULT 0,
    running_balance TEXT NOT NULL DEFAULT '0',
    is_permanent INTEGER NOT NULL DEFAULT 0,
    seq INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entries_party_date ON entries(party_id, date, seq);
CREATE INDEX IF NOT EXISTS idx_entries_ref_no ON entries(party_id, ref_no);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
