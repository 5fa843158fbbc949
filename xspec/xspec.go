// Package xspec turns averaged power density spectra into the flux tables
// consumed by the HEASoft flx2xsp tool, and optionally runs flx2xsp to
// produce the .pha/.rsp pair XSPEC fits.
package xspec

import (
	"context"
	"fmt"

	"github.com/golang/glog"

	"github.com/hb9tf/xtiming/psd"
)

// Options controls a single export.
type Options struct {
	// Freq is the cutoff above which the spectrum is considered pure white
	// noise. It takes precedence over Noise.
	Freq *float64
	// Noise is the white noise level to subtract.
	Noise *float64
	// Convert runs the converter after writing the flux table.
	Convert bool
	// Converter configures the flx2xsp run. Nil uses the defaults.
	Converter *Converter
}

// Result describes what an export produced.
type Result struct {
	OK         bool
	WhiteNoise float64
	Rows       []Row

	TextFile string
	PHAFile  string
	RSPFile  string
}

// Export writes spec as <outname>.txt with the white noise removed and the
// power integrated over each bin. With opts.Convert set it then runs flx2xsp
// to create <outname>.pha and <outname>.rsp. The text file is left in place
// when the conversion fails.
func Export(ctx context.Context, spec *psd.PowerSpectrum, outname string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = &Options{}
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	wn, err := WhiteNoise(spec, opts.Freq, opts.Noise)
	if err != nil {
		return nil, err
	}

	res := &Result{
		WhiteNoise: wn,
		Rows:       Rescale(spec, wn),
		TextFile:   outname + ".txt",
	}
	if err := WriteTableFile(res.TextFile, res.Rows); err != nil {
		return res, fmt.Errorf("unable to write flux table: %w", err)
	}
	glog.Infof("wrote %d bins to %q (white noise %v)", len(res.Rows), res.TextFile, wn)

	if opts.Convert {
		pha, rsp := outname+".pha", outname+".rsp"
		if err := opts.Converter.Run(ctx, res.TextFile, pha, rsp); err != nil {
			return res, err
		}
		res.PHAFile, res.RSPFile = pha, rsp
	}

	res.OK = true
	return res, nil
}
