package plot

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/hb9tf/xtiming/xspec"
)

// getRowsTmpl selects the archived flux table of one run. Identifier is
// matched with LIKE so callers can pass a pattern.
const getRowsTmpl = `SELECT
		FreqLow,
		FreqHigh,
		Flux,
		FluxErr
	FROM
		xspec
	WHERE
		Identifier LIKE ?
		AND FreqLow >= ?
		AND FreqHigh <= ?
	ORDER BY
		FreqLow ASC;`

// LoadRows reads the rows archived under identifier whose bins lie within
// [lowFreq, highFreq].
func LoadRows(ctx context.Context, db *sql.DB, identifier string, lowFreq, highFreq float64) ([]xspec.Row, error) {
	statement, err := db.PrepareContext(ctx, getRowsTmpl)
	if err != nil {
		return nil, err
	}
	defer statement.Close()

	if math.IsInf(highFreq, 1) {
		highFreq = math.MaxFloat64
	}
	res, err := statement.QueryContext(ctx, identifier, lowFreq, highFreq)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	var rows []xspec.Row
	for res.Next() {
		r := xspec.Row{}
		if err := res.Scan(&r.FreqLow, &r.FreqHigh, &r.Flux, &r.FluxErr); err != nil {
			return nil, fmt.Errorf("unable to get row from DB: %s", err)
		}
		rows = append(rows, r)
	}
	return rows, res.Err()
}
