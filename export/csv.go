package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
)

type CSV struct {
	// Out defaults to os.Stdout.
	Out io.Writer
}

func (c *CSV) Write(ctx context.Context, records <-chan Record) error {
	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	w := csv.NewWriter(out)
	if err := w.Write([]string{
		"Source",
		"Identifier",
		"FreqLow",
		"FreqHigh",
		"Flux",
		"FluxErr",
		"WhiteNoise",
		"CreatedUnixMilli",
	}); err != nil {
		return err
	}

	for r := range records {
		if err := w.Write([]string{
			r.Source,
			r.Identifier,
			fmt.Sprintf("%g", r.FreqLow),
			fmt.Sprintf("%g", r.FreqHigh),
			fmt.Sprintf("%g", r.Flux),
			fmt.Sprintf("%g", r.FluxErr),
			fmt.Sprintf("%g", r.WhiteNoise),
			fmt.Sprintf("%d", r.Created.UnixMilli()),
		}); err != nil {
			glog.Warningf("error while writing CSV line: %s\n", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("error flushing CSV: %s", err)
	}
	return nil
}
