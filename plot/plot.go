// Package plot renders flux tables as log-log images.
package plot

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/golang/glog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/hb9tf/xtiming/xspec"
)

// ErrNothingToPlot is returned when no bin has a positive flux.
var ErrNothingToPlot = errors.New("no bin with positive flux to plot")

var (
	backgroundColor = color.RGBA{255, 255, 255, 255} // white
	fluxColor       = color.RGBA{0, 0, 255, 255}     // blue
	errorColor      = color.RGBA{160, 160, 255, 255} // light blue
	gridColor       = color.RGBA{0, 0, 0, 255}       // black

	expSuffixLookup = map[int]string{
		-2: "uHz", // 10^-6
		-1: "mHz", // 10^-3
		0:  "Hz",  // 10^0
		1:  "kHz", // 10^3
	}
)

const (
	defaultWidth   = 640
	defaultHeight  = 480
	gridMarginTop  = 20 // pixels
	gridMarginLeft = 80 // pixels
	gridTickLen    = 10 // pixel
	gridMinStepX   = 100
	gridMinStepY   = 40
)

type Options struct {
	Width  int
	Height int

	AddGrid bool
}

// logAxis maps values onto pixels on a log10 scale.
type logAxis struct {
	min, max float64 // log10
	pixels   int
}

func newLogAxis(lo, hi float64, pixels int) logAxis {
	a := logAxis{min: math.Log10(lo), max: math.Log10(hi), pixels: pixels}
	if a.max-a.min == 0 {
		a.min -= 0.5
		a.max += 0.5
	}
	return a
}

func (a logAxis) pixel(v float64) int {
	return int(math.Round((math.Log10(v) - a.min) / (a.max - a.min) * float64(a.pixels-1)))
}

func (a logAxis) value(pixel int) float64 {
	return math.Pow(10, a.min+float64(pixel)/float64(a.pixels-1)*(a.max-a.min))
}

func plottable(r xspec.Row) bool {
	return r.Flux > 0 && r.FreqLow > 0 && r.FreqHigh >= r.FreqLow
}

// Render draws one horizontal segment per bin at its flux, with a vertical
// error bar. Bins with a non-positive flux cannot be shown on a log axis and
// are skipped.
func Render(rows []xspec.Row, opts *Options) (image.Image, error) {
	if opts == nil {
		opts = &Options{}
	}
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}

	freqLow, freqHigh := math.Inf(1), 0.0
	fluxLow, fluxHigh := math.Inf(1), 0.0
	var bins []xspec.Row
	for _, r := range rows {
		if !plottable(r) {
			continue
		}
		bins = append(bins, r)
		freqLow = math.Min(freqLow, r.FreqLow)
		freqHigh = math.Max(freqHigh, r.FreqHigh)
		fluxLow = math.Min(fluxLow, r.Flux)
		fluxHigh = math.Max(fluxHigh, r.Flux+r.FluxErr)
	}
	if len(bins) == 0 {
		return nil, ErrNothingToPlot
	}
	if skipped := len(rows) - len(bins); skipped > 0 {
		glog.V(1).Infof("skipping %d of %d bins without positive flux", skipped, len(rows))
	}

	x := newLogAxis(freqLow, freqHigh, width)
	y := newLogAxis(fluxLow, fluxHigh, height)
	row := func(flux float64) int { return height - 1 - y.pixel(flux) }

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{backgroundColor}, image.Point{}, draw.Src)
	for _, b := range bins {
		col := (x.pixel(b.FreqLow) + x.pixel(b.FreqHigh)) / 2
		top := row(b.Flux + b.FluxErr)
		bottom := height - 1
		if lo := b.Flux - b.FluxErr; lo > 0 {
			bottom = row(math.Max(lo, fluxLow))
		}
		for p := top; p <= bottom; p++ {
			canvas.SetRGBA(col, p, errorColor)
		}
		py := row(b.Flux)
		for p := x.pixel(b.FreqLow); p <= x.pixel(b.FreqHigh); p++ {
			canvas.SetRGBA(p, py, fluxColor)
		}
	}

	if opts.AddGrid {
		return drawGrid(canvas, x, y), nil
	}
	return canvas, nil
}

// ReadableFreq formats a frequency with an SI prefix.
func ReadableFreq(freq float64) string {
	exp := 0
	for f := freq; f >= 1000; f = f / 1000.0 {
		exp += 1
	}
	for f := freq; f > 0 && f < 1; f = f * 1000.0 {
		exp -= 1
	}
	suffix, ok := expSuffixLookup[exp]
	if !ok {
		return fmt.Sprintf("%g Hz", freq)
	}
	return fmt.Sprintf("%.2f %s", freq/math.Pow(1000, float64(exp)), suffix)
}

func drawTick(canvas *image.RGBA, start image.Point, length int, horizontal bool) {
	for i := 0; i <= length; i++ {
		if horizontal {
			canvas.SetRGBA(start.X+i, start.Y, gridColor)
		} else {
			canvas.SetRGBA(start.X, start.Y+i, gridColor)
		}
	}
}

func findGridStepSize(step int, horizontal bool) int {
	gridMinStep := gridMinStepY
	if horizontal {
		gridMinStep = gridMinStepX
	}
	for step > gridMinStep {
		n := step / 2
		if n < gridMinStep {
			return step
		}
		step = n
	}
	return step
}

func label(canvas *image.RGBA, x, y int, s string) {
	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(gridColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// drawGrid enlarges source by the grid margins and labels frequency ticks on
// top and flux ticks on the left.
func drawGrid(source *image.RGBA, x, y logAxis) *image.RGBA {
	b := source.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx()+gridMarginLeft, b.Dy()+gridMarginTop))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{backgroundColor}, image.Point{}, draw.Src)
	r := canvas.Bounds()
	r.Min.X += gridMarginLeft
	r.Min.Y += gridMarginTop
	draw.Draw(canvas, r, source, b.Min, draw.Src)

	// Frequency ticks.
	for i := 0; i < b.Dx(); i += findGridStepSize(b.Dx(), true) {
		drawTick(canvas, image.Point{gridMarginLeft + i, gridMarginTop - gridTickLen}, gridTickLen, false)
		label(canvas, gridMarginLeft+i+5, gridMarginTop-2, ReadableFreq(x.value(i)))
	}

	// Flux ticks.
	for i := 0; i < b.Dy(); i += findGridStepSize(b.Dy(), false) {
		drawTick(canvas, image.Point{gridMarginLeft - gridTickLen, gridMarginTop + i}, gridTickLen, true)
		label(canvas, 5, gridMarginTop+i+5, fmt.Sprintf("%.2e", y.value(b.Dy()-1-i)))
	}

	return canvas
}
