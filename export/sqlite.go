package export

import (
	"context"
	"database/sql"
)

const sqliteCreateTableTmpl = `CREATE TABLE IF NOT EXISTS xspec (
		"ID"          INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
		"Identifier"  TEXT NOT NULL,
		"Source"      TEXT NOT NULL,
		"FreqLow"     REAL,
		"FreqHigh"    REAL,
		"Flux"        REAL,
		"FluxErr"     REAL,
		"WhiteNoise"  REAL,
		"Created"     INTEGER
	);`

// SQLite stores records in a database opened with the "sqlite3" driver of
// github.com/mattn/go-sqlite3.
type SQLite struct {
	DB *sql.DB
}

func (s *SQLite) Write(ctx context.Context, records <-chan Record) error {
	_, err := writeSQL(ctx, s.DB, sqliteCreateTableTmpl, records)
	return err
}
