// Package psd holds averaged power density spectra as produced by timing
// analysis packages and loads them from FITS, text or JSON files.
package psd

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalid is returned for spectra whose arrays cannot describe a binned
// power spectrum.
var ErrInvalid = errors.New("invalid power spectrum")

// PowerSpectrum is an averaged power density spectrum with uniform bins.
type PowerSpectrum struct {
	// Freq holds the bin centers.
	Freq []float64 `json:"freq"`
	// Power holds the power density per bin.
	Power []float64 `json:"power"`
	// PowerErr holds the power uncertainty per bin.
	PowerErr []float64 `json:"power_err"`
	// DF is the bin width, shared by all bins.
	DF float64 `json:"df"`

	// M is the number of averaged segments, 0 if unknown.
	M int `json:"m,omitempty"`
	// Norm is the normalization name, e.g. "leahy" or "frac".
	Norm string `json:"norm,omitempty"`
}

// Len returns the number of bins.
func (s *PowerSpectrum) Len() int {
	return len(s.Freq)
}

// Validate checks that the spectrum has at least one bin, consistent array
// lengths and a positive finite bin width.
func (s *PowerSpectrum) Validate() error {
	if s == nil || len(s.Freq) == 0 {
		return fmt.Errorf("%w: no frequency bins", ErrInvalid)
	}
	if len(s.Power) != len(s.Freq) || len(s.PowerErr) != len(s.Freq) {
		return fmt.Errorf("%w: %d frequencies, %d powers, %d power errors", ErrInvalid, len(s.Freq), len(s.Power), len(s.PowerErr))
	}
	if !(s.DF > 0) || math.IsInf(s.DF, 0) {
		return fmt.Errorf("%w: bin width %v", ErrInvalid, s.DF)
	}
	return nil
}

// inferDF derives the bin width from the first two bin centers.
func inferDF(freq []float64) (float64, error) {
	if len(freq) < 2 {
		return 0, fmt.Errorf("%w: bin width is not given and cannot be inferred from %d bins", ErrInvalid, len(freq))
	}
	return freq[1] - freq[0], nil
}
