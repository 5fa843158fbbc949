package xspec

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/hb9tf/xtiming/psd"
)

// valueFmt matches numpy.savetxt defaults, the layout flx2xsp was fed with.
const valueFmt = "%.18e"

// Row is one bin of a flux table as read by flx2xsp.
type Row struct {
	FreqLow  float64 `json:"freqLow"`
	FreqHigh float64 `json:"freqHigh"`
	Flux     float64 `json:"flux"`
	FluxErr  float64 `json:"fluxErr"`
}

// Rescale subtracts whiteNoise from every bin of spec and integrates the
// power over the bin width. Rows keep the bin order of spec.
func Rescale(spec *psd.PowerSpectrum, whiteNoise float64) []Row {
	half := spec.DF / 2
	rows := make([]Row, len(spec.Freq))
	for i, f := range spec.Freq {
		rows[i] = Row{
			FreqLow:  f - half,
			FreqHigh: f + half,
			Flux:     (spec.Power[i] - whiteNoise) * spec.DF,
			FluxErr:  spec.PowerErr[i] * spec.DF,
		}
	}
	return rows
}

// WriteTable writes rows as four space separated columns without header.
func WriteTable(w io.Writer, rows []Row) error {
	bw := bufio.NewWriter(w)
	for _, r := range rows {
		line := strings.Join([]string{
			formatValue(r.FreqLow),
			formatValue(r.FreqHigh),
			formatValue(r.Flux),
			formatValue(r.FluxErr),
		}, " ")
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// formatValue spells non-finite values the way numpy does.
func formatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return fmt.Sprintf(valueFmt, v)
}

// WriteTableFile writes rows to path, replacing any existing file.
func WriteTableFile(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteTable(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadTable parses a flux table written by WriteTable.
func ReadTable(r io.Reader) ([]Row, error) {
	var rows []Row
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 4 {
			return nil, fmt.Errorf("line %d has %d columns, want 4", line, len(fields))
		}
		var v [4]float64
		for i, field := range fields {
			f, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %s", line, err)
			}
			v[i] = f
		}
		rows = append(rows, Row{FreqLow: v[0], FreqHigh: v[1], Flux: v[2], FluxErr: v[3]})
	}
	return rows, scanner.Err()
}

// ReadTableFile parses the flux table at path.
func ReadTableFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTable(f)
}
