package lightcurve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/astrogo/fitsio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hb9tf/xtiming/fitstable"
	"github.com/hb9tf/xtiming/gti"
)

func writeLightCurve(t *testing.T, times []float64, stored gti.List) string {
	t.Helper()

	timeRows := make([][]float64, len(times))
	for i, ts := range times {
		timeRows[i] = []float64{ts, 1}
	}
	gtiRows := make([][]float64, len(stored))
	for i, iv := range stored {
		gtiRows[i] = []float64{iv.Start, iv.Stop}
	}

	return writeFITS(t,
		fitstable.Spec{
			Name:    "RATE",
			Columns: []string{"TIME", "RATE"},
			Rows:    timeRows,
			Cards:   []fitsio.Card{{Name: "TELESCOP", Value: "HXMT"}},
		},
		fitstable.Spec{
			Name:    "GTI",
			Columns: []string{"START", "STOP"},
			Rows:    gtiRows,
		},
	)
}

func writeFITS(t *testing.T, specs ...fitstable.Spec) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lc.fits")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, fitstable.Write(f, specs...))
	require.NoError(t, f.Close())
	return path
}

func TestRead(t *testing.T) {
	times := []float64{0, 1, 2, 100, 101}
	stored := gti.List{{Start: 0, Stop: 2}, {Start: 100, Stop: 101}}
	path := writeLightCurve(t, times, stored)

	lc, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, times, lc.Time)
	assert.Equal(t, stored, lc.GTI)
	assert.Equal(t, "HXMT", lc.Meta["TELESCOP"])
}

func TestExtractGTIPrefersFewerIntervals(t *testing.T) {
	// Four gaps in the timestamps give five derived intervals.
	times := []float64{0, 1, 100, 101, 200, 201, 300, 301, 400, 401}

	t.Run("stored table is coarser", func(t *testing.T) {
		stored := gti.List{{Start: 0, Stop: 101}, {Start: 200, Stop: 301}, {Start: 400, Stop: 401}}
		got, err := ExtractGTI(writeLightCurve(t, times, stored))
		require.NoError(t, err)
		assert.Equal(t, stored, got)
	})

	t.Run("derived set is coarser", func(t *testing.T) {
		stored := gti.List{{Start: 0, Stop: 0.5}, {Start: 0.5, Stop: 1}, {Start: 100, Stop: 101}, {Start: 200, Stop: 201}, {Start: 300, Stop: 301}, {Start: 350, Stop: 351}, {Start: 400, Stop: 401}}
		got, err := ExtractGTI(writeLightCurve(t, times, stored))
		require.NoError(t, err)
		assert.Equal(t, gti.List{{Start: 0, Stop: 1}, {Start: 100, Stop: 101}, {Start: 200, Stop: 201}, {Start: 300, Stop: 301}, {Start: 400, Stop: 401}}, got)
	})
}

func TestReadFormatErrors(t *testing.T) {
	tests := []struct {
		desc  string
		specs []fitstable.Spec
	}{
		{
			desc: "missing GTI extension",
			specs: []fitstable.Spec{
				{Name: "RATE", Columns: []string{"TIME"}, Rows: [][]float64{{1}}},
			},
		},
		{
			desc: "missing TIME column",
			specs: []fitstable.Spec{
				{Name: "RATE", Columns: []string{"RATE"}, Rows: [][]float64{{1}}},
				{Name: "GTI", Columns: []string{"START", "STOP"}, Rows: [][]float64{{0, 1}}},
			},
		},
		{
			desc: "missing STOP column",
			specs: []fitstable.Spec{
				{Name: "RATE", Columns: []string{"TIME"}, Rows: [][]float64{{1}}},
				{Name: "GTI", Columns: []string{"START"}, Rows: [][]float64{{0}}},
			},
		},
		{
			desc: "empty TIME column",
			specs: []fitstable.Spec{
				{Name: "RATE", Columns: []string{"TIME"}},
				{Name: "GTI", Columns: []string{"START", "STOP"}, Rows: [][]float64{{0, 1}}},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := Read(writeFITS(t, tc.specs...))
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestReadNotFITS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lc.txt")
	require.NoError(t, os.WriteFile(path, []byte("TIME RATE\n1 2\n"), 0o644))

	_, err := Read(path)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.fits"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
