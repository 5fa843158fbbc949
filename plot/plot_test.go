package plot

import (
	"context"
	"database/sql"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hb9tf/xtiming/export"
	"github.com/hb9tf/xtiming/xspec"

	// Blind import support for sqlite3 used by sqlite.go.
	_ "github.com/mattn/go-sqlite3"
)

var testRows = []xspec.Row{
	{FreqLow: 0.5, FreqHigh: 1.5, Flux: 10, FluxErr: 1},
	{FreqLow: 1.5, FreqHigh: 2.5, Flux: 100, FluxErr: 10},
	{FreqLow: 2.5, FreqHigh: 3.5, Flux: -5, FluxErr: 1},
}

func TestRender(t *testing.T) {
	img, err := Render(testRows, &Options{Width: 100, Height: 50})
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())

	x := newLogAxis(0.5, 2.5, 100)
	y := newLogAxis(10, 110, 50)
	assert.Equal(t, fluxColor, img.At(x.pixel(0.6), 49-y.pixel(10)))
	assert.Equal(t, fluxColor, img.At(x.pixel(2.4), 49-y.pixel(100)))
	assert.Equal(t, backgroundColor, img.At(x.pixel(2.4), 49-y.pixel(10)))
}

func TestRenderDefaults(t *testing.T) {
	img, err := Render(testRows, nil)
	require.NoError(t, err)
	assert.Equal(t, defaultWidth, img.Bounds().Dx())
	assert.Equal(t, defaultHeight, img.Bounds().Dy())
}

func TestRenderGrid(t *testing.T) {
	img, err := Render(testRows, &Options{Width: 300, Height: 200, AddGrid: true})
	require.NoError(t, err)
	assert.Equal(t, 300+gridMarginLeft, img.Bounds().Dx())
	assert.Equal(t, 200+gridMarginTop, img.Bounds().Dy())
}

func TestRenderNothingToPlot(t *testing.T) {
	_, err := Render([]xspec.Row{{FreqLow: 1, FreqHigh: 2, Flux: 0}, {FreqLow: 2, FreqHigh: 3, Flux: -1}}, nil)
	assert.ErrorIs(t, err, ErrNothingToPlot)

	_, err = Render(nil, nil)
	assert.ErrorIs(t, err, ErrNothingToPlot)
}

func TestRenderSingleBin(t *testing.T) {
	img, err := Render([]xspec.Row{{FreqLow: 1, FreqHigh: 1, Flux: 5}}, &Options{Width: 10, Height: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, img.Bounds().Dx())
}

func TestLogAxis(t *testing.T) {
	a := newLogAxis(1, 1000, 4)
	assert.Equal(t, 0, a.pixel(1))
	assert.Equal(t, 1, a.pixel(10))
	assert.Equal(t, 3, a.pixel(1000))
	assert.InDelta(t, 100, a.value(2), 1e-9)
}

func TestReadableFreq(t *testing.T) {
	tests := []struct {
		freq float64
		want string
	}{
		{0.004, "4.00 mHz"},
		{1, "1.00 Hz"},
		{250, "250.00 Hz"},
		{1500, "1.50 kHz"},
		{0, "0.00 Hz"},
		{1e-9, "1e-09 Hz"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ReadableFreq(tc.freq))
	}
}

func TestLoadRows(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "xtiming.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	res := &xspec.Result{Rows: testRows, WhiteNoise: 2}
	require.NoError(t, (&export.SQLite{DB: db}).Write(ctx, export.Stream(export.Records("run-1", "a", res, time.Now()))))
	require.NoError(t, (&export.SQLite{DB: db}).Write(ctx, export.Stream(export.Records("run-2", "b", res, time.Now()))))

	rows, err := LoadRows(ctx, db, "run-1", 0, math.Inf(1))
	require.NoError(t, err)
	assert.Equal(t, testRows, rows)

	rows, err = LoadRows(ctx, db, "run-%", 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []xspec.Row{testRows[1], testRows[1]}, rows)
}
