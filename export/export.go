package export

import (
	"context"
	"time"

	"github.com/hb9tf/xtiming/xspec"
)

type Exporter interface {
	Write(context.Context, <-chan Record) error
}

// Record is one exported flux bin tagged with the run it belongs to.
type Record struct {
	// Metadata
	Identifier string    `json:"identifier"`
	Source     string    `json:"source"`
	Created    time.Time `json:"created"`

	// Flux Data
	xspec.Row
	WhiteNoise float64 `json:"whiteNoise"`
}

// Records tags every row of res with the run identifier and source name.
func Records(identifier, source string, res *xspec.Result, created time.Time) []Record {
	records := make([]Record, len(res.Rows))
	for i, row := range res.Rows {
		records[i] = Record{
			Identifier: identifier,
			Source:     source,
			Created:    created,
			Row:        row,
			WhiteNoise: res.WhiteNoise,
		}
	}
	return records
}

// Stream feeds records into a channel that is closed once all of them were
// consumed.
func Stream(records []Record) <-chan Record {
	ch := make(chan Record)
	go func() {
		defer close(ch)
		for _, r := range records {
			ch <- r
		}
	}()
	return ch
}
