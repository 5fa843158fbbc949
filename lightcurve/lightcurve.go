// Package lightcurve reads X-ray light curves stored as FITS files.
//
// A light curve carries the sample timestamps in the TIME column of its first
// extension and the good time intervals in the START/STOP columns of its
// second extension.
package lightcurve

import (
	"errors"
	"fmt"
	"os"

	"github.com/astrogo/fitsio"
	"github.com/golang/glog"

	"github.com/hb9tf/xtiming/fitstable"
	"github.com/hb9tf/xtiming/gti"
)

const (
	rateHDU = 1
	gtiHDU  = 2

	timeCol  = "TIME"
	startCol = "START"
	stopCol  = "STOP"
)

// ErrFormat is returned when a file does not have the layout of a light curve.
var ErrFormat = errors.New("not a light curve")

// metaKeys are header keys copied from the rate extension for logging.
var metaKeys = []string{"TELESCOP", "INSTRUME", "OBJECT", "TIMEZERO", "TIMEUNIT"}

type LightCurve struct {
	// Time holds the sample timestamps in ascending order.
	Time []float64
	// GTI is the interval table stored in the file.
	GTI gti.List
	// Meta holds a few descriptive header values when present.
	Meta map[string]string
}

// Read loads the timestamps and the stored interval table of a light curve.
func Read(path string) (*LightCurve, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	f, err := fitsio.Open(r)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to open %q as FITS: %s", ErrFormat, path, err)
	}
	defer f.Close()

	if n := len(f.HDUs()); n <= gtiHDU {
		return nil, fmt.Errorf("%w: %q has %d HDUs, need at least %d", ErrFormat, path, n, gtiHDU+1)
	}

	rates, err := fitstable.Table(f, rateHDU)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFormat, err)
	}
	times, err := fitstable.Column(rates, timeCol)
	if err != nil {
		return nil, fmt.Errorf("%w: HDU %d: %s", ErrFormat, rateHDU, err)
	}
	if len(times) == 0 {
		return nil, fmt.Errorf("%w: %s column of HDU %d is empty", ErrFormat, timeCol, rateHDU)
	}

	gtis, err := fitstable.Table(f, gtiHDU)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFormat, err)
	}
	starts, err := fitstable.Column(gtis, startCol)
	if err != nil {
		return nil, fmt.Errorf("%w: HDU %d: %s", ErrFormat, gtiHDU, err)
	}
	stops, err := fitstable.Column(gtis, stopCol)
	if err != nil {
		return nil, fmt.Errorf("%w: HDU %d: %s", ErrFormat, gtiHDU, err)
	}

	stored := make(gti.List, len(starts))
	for i := range starts {
		stored[i] = gti.Interval{Start: starts[i], Stop: stops[i]}
	}

	lc := &LightCurve{
		Time: times,
		GTI:  stored,
		Meta: map[string]string{},
	}
	for _, key := range metaKeys {
		if card := rates.Header().Get(key); card != nil {
			lc.Meta[key] = fmt.Sprint(card.Value)
		}
	}
	glog.V(2).Infof("read light curve %q: %d samples, %d stored GTIs, meta %v", path, len(lc.Time), len(lc.GTI), lc.Meta)

	return lc, nil
}

// Derived returns the intervals implied by gaps in the timestamps.
func (lc *LightCurve) Derived(threshold float64) gti.List {
	return gti.FromTimes(lc.Time, threshold)
}

// BestGTI reconciles the stored interval table with the derived one.
func (lc *LightCurve) BestGTI(threshold float64) gti.List {
	derived := lc.Derived(threshold)
	if err := lc.GTI.Validate(); err != nil {
		glog.Warningf("stored GTI table looks odd: %s\n", err)
	}
	if len(derived) < len(lc.GTI) {
		glog.V(1).Infof("using derived GTIs (%d intervals, %d stored)", len(derived), len(lc.GTI))
	} else {
		glog.V(1).Infof("keeping stored GTI table (%d intervals, %d derived)", len(lc.GTI), len(derived))
	}
	return gti.Select(lc.GTI, derived)
}

// ExtractGTI reads the light curve at path and returns its best available
// good time intervals.
func ExtractGTI(path string) (gti.List, error) {
	lc, err := Read(path)
	if err != nil {
		return nil, err
	}
	return lc.BestGTI(gti.GapThreshold), nil
}
