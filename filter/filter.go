package filter

import "github.com/hb9tf/xtiming/export"

type Filterer interface {
	ShouldIgnore(*export.Record) bool
}

// Filter forwards every record none of the filters ignores and closes output
// once input is drained.
func Filter(input <-chan export.Record, output chan<- export.Record, filters []Filterer) error {
	defer close(output)
	for r := range input {
		skip := false
		for _, f := range filters {
			if f.ShouldIgnore(&r) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		output <- r
	}
	return nil
}

// FilterFreq drops records whose bin lies entirely outside [FreqLow, FreqHigh].
type FilterFreq struct {
	FreqHigh float64
	FreqLow  float64
}

func (f *FilterFreq) ShouldIgnore(r *export.Record) bool {
	// Check if low freq of the bin is higher than what we want to include.
	if r.FreqLow > f.FreqHigh {
		return true
	}
	// Check if high freq of the bin is lower than what we want to include.
	if r.FreqHigh < f.FreqLow {
		return true
	}
	return false
}
