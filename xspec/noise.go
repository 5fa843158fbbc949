package xspec

import (
	"errors"
	"fmt"

	"github.com/golang/glog"

	"github.com/hb9tf/xtiming/psd"
)

// ErrNoNoiseBins is returned when no bin lies above the white noise cutoff.
var ErrNoNoiseBins = errors.New("no frequency bins above the white noise cutoff")

// WhiteNoise resolves the white noise level to subtract from spec.
//
//	freq  noise  level
//	nil   nil    0
//	nil   set    *noise
//	set   nil    mean power above *freq
//	set   set    mean power above *freq, noise is ignored
func WhiteNoise(spec *psd.PowerSpectrum, freq, noise *float64) (float64, error) {
	if freq == nil {
		if noise == nil {
			glog.Info("no white noise is considered")
			return 0, nil
		}
		return *noise, nil
	}

	if noise != nil {
		glog.Warningf("both a white noise cutoff (%v) and a white noise level (%v) are set, using the cutoff\n", *freq, *noise)
	}
	return MeanPowerAbove(spec, *freq)
}

// MeanPowerAbove averages the power of all bins strictly above freq.
func MeanPowerAbove(spec *psd.PowerSpectrum, freq float64) (float64, error) {
	var sum float64
	var n int
	for i, f := range spec.Freq {
		if f > freq {
			sum += spec.Power[i]
			n++
		}
	}
	if n == 0 {
		return 0, fmt.Errorf("%w (%v)", ErrNoNoiseBins, freq)
	}
	glog.V(1).Infof("white noise estimated from %d bins above %v", n, freq)
	return sum / float64(n), nil
}
