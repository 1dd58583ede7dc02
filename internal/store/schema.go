package store

import (
	"database/sql"
	"fmt"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS embeddings (
	id TEXT PRIMARY KEY,
	vector BLOB NOT NULL,
	text TEXT NOT NULL,
	path TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS file_meta (
	path TEXT PRIMARY KEY,
	hash TEXT NOT NULL
);
`

// initSchema creates the tables and indexes, and backfills the path column
// on databases created before it existed. Safe to run on every open.
func initSchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	hasPath, err := columnExists(db, "embeddings", "path")
	if err != nil {
		return err
	}
	if !hasPath {
		if _, err := db.Exec("ALTER TABLE embeddings ADD COLUMN path TEXT NOT NULL DEFAULT ''"); err != nil {
			return fmt.Errorf("backfill path column: %w", err)
		}
	}

	// The path index is created after the backfill so it exists on both
	// fresh and migrated databases.
	if _, err := db.Exec("CREATE INDEX IF NOT EXISTS idx_embeddings_path ON embeddings(path)"); err != nil {
		return fmt.Errorf("create path index: %w", err)
	}
	return nil
}

func columnExists(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("table_info %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name, typ string
			notNull   int
			dflt      sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
