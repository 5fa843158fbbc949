package export

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/golang/glog"
)

const (
	sqlRecordCountInfo = 1000

	sqlInsertRecordTmpl = `INSERT INTO xspec (
		Identifier,
		Source,
		FreqLow,
		FreqHigh,
		Flux,
		FluxErr,
		WhiteNoise,
		Created
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?);`
)

// writeSQL stores records in db, creating the xspec table with createTmpl
// first. Failed inserts are logged and skipped.
func writeSQL(ctx context.Context, db *sql.DB, createTmpl string, records <-chan Record) (map[string]int, error) {
	if _, err := db.ExecContext(ctx, createTmpl); err != nil {
		return nil, fmt.Errorf("unable to create table: %s", err)
	}

	statement, err := db.PrepareContext(ctx, sqlInsertRecordTmpl)
	if err != nil {
		return nil, fmt.Errorf("unable to prepare insert: %s", err)
	}
	defer statement.Close()

	counts := map[string]int{
		"error":   0,
		"success": 0,
		"total":   0,
	}
	for r := range records {
		counts["total"] += 1
		if _, err := statement.ExecContext(ctx, r.Identifier, r.Source, r.FreqLow, r.FreqHigh, r.Flux, r.FluxErr, r.WhiteNoise, r.Created.UnixMilli()); err != nil {
			counts["error"] += 1
			glog.Warningf("error storing record: %s\n", err)
			continue
		}
		counts["success"] += 1
		if counts["total"]%sqlRecordCountInfo == 0 {
			glog.Infof("Record export counts: %+v\n", counts)
		}
	}
	glog.V(1).Infof("Record export counts: %+v\n", counts)

	return counts, nil
}
