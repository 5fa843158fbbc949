package psd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/astrogo/fitsio"
	"github.com/golang/glog"

	"github.com/hb9tf/xtiming/fitstable"
)

const (
	freqCol     = "FREQ"
	powerCol    = "POWER"
	powerErrCol = "POWER_ERR"

	spectrumHDU = 1
)

// Load reads a spectrum from path. The format is picked by extension:
// .fits/.fit/.fts for FITS tables, .json for JSON and text otherwise.
func Load(path string) (*PowerSpectrum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var s *PowerSpectrum
	switch strings.ToLower(filepath.Ext(path)) {
	case ".fits", ".fit", ".fts":
		s, err = ReadFITS(f)
	case ".json":
		s, err = ReadJSON(f)
	default:
		s, err = ReadText(f)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load spectrum %q: %w", path, err)
	}
	glog.V(2).Infof("loaded spectrum %q: %d bins, df=%v, m=%d, norm=%q", path, s.Len(), s.DF, s.M, s.Norm)
	return s, nil
}

// ReadFITS reads a spectrum from the first extension of a FITS file. The
// table needs FREQ, POWER and POWER_ERR columns. The DF, M and NORM header
// keys are optional.
func ReadFITS(r io.Reader) (*PowerSpectrum, error) {
	f, err := fitsio.Open(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tbl, err := fitstable.Table(f, spectrumHDU)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, err)
	}

	s := &PowerSpectrum{}
	for _, c := range []struct {
		name string
		dst  *[]float64
	}{
		{freqCol, &s.Freq},
		{powerCol, &s.Power},
		{powerErrCol, &s.PowerErr},
	} {
		values, err := fitstable.Column(tbl, c.name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalid, err)
		}
		*c.dst = values
	}

	hdr := tbl.Header()
	if df, ok := fitstable.Float(hdr, "DF"); ok {
		s.DF = df
	} else if s.DF, err = inferDF(s.Freq); err != nil {
		return nil, err
	}
	if m, ok := fitstable.Float(hdr, "M"); ok {
		s.M = int(m)
	}
	if norm, ok := fitstable.String(hdr, "NORM"); ok {
		s.Norm = norm
	}

	return s, s.Validate()
}

// ReadJSON decodes a spectrum from JSON. A missing df is inferred from the
// first two bins.
func ReadJSON(r io.Reader) (*PowerSpectrum, error) {
	s := &PowerSpectrum{}
	if err := json.NewDecoder(r).Decode(s); err != nil {
		return nil, err
	}
	if s.DF == 0 {
		df, err := inferDF(s.Freq)
		if err != nil {
			return nil, err
		}
		s.DF = df
	}
	return s, s.Validate()
}

// ReadText parses whitespace separated "freq power power_err" rows. Lines
// starting with # are comments; "# df = 0.5", "# m = 64" and "# norm = leahy"
// comments set the spectrum metadata.
func ReadText(r io.Reader) (*PowerSpectrum, error) {
	s := &PowerSpectrum{}
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, "#") {
			if err := s.parseComment(strings.TrimPrefix(text, "#")); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			continue
		}

		fields := strings.Fields(text)
		if len(fields) != 3 {
			return nil, fmt.Errorf("%w: line %d has %d columns, want 3", ErrInvalid, line, len(fields))
		}
		var row [3]float64
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %s", ErrInvalid, line, err)
			}
			row[i] = v
		}
		s.Freq = append(s.Freq, row[0])
		s.Power = append(s.Power, row[1])
		s.PowerErr = append(s.PowerErr, row[2])
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if s.DF == 0 {
		df, err := inferDF(s.Freq)
		if err != nil {
			return nil, err
		}
		s.DF = df
	}
	return s, s.Validate()
}

func (s *PowerSpectrum) parseComment(comment string) error {
	key, value, ok := strings.Cut(comment, "=")
	if !ok {
		return nil
	}
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)

	switch key {
	case "df":
		df, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: df: %s", ErrInvalid, err)
		}
		s.DF = df
	case "m":
		m, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: m: %s", ErrInvalid, err)
		}
		s.M = m
	case "norm":
		s.Norm = value
	}
	return nil
}
