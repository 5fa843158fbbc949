package gti

import (
	"fmt"
)

// GapThreshold is the largest step between two consecutive timestamps that
// still belongs to the same interval, in the time unit of the light curve.
const GapThreshold = 50.0

// Interval is a single good time interval.
type Interval struct {
	Start float64 `json:"start"`
	Stop  float64 `json:"stop"`
}

// Duration returns the length of the interval.
func (i Interval) Duration() float64 {
	return i.Stop - i.Start
}

// List is an ordered set of intervals.
type List []Interval

// Exposure sums the duration of all intervals.
func (l List) Exposure() float64 {
	var total float64
	for _, i := range l {
		total += i.Duration()
	}
	return total
}

// Validate checks that every interval is well formed, that the intervals are
// ordered by start time and that they do not overlap.
func (l List) Validate() error {
	for idx, i := range l {
		if i.Start > i.Stop {
			return fmt.Errorf("interval %d starts after it stops (%v > %v)", idx, i.Start, i.Stop)
		}
		if idx == 0 {
			continue
		}
		prev := l[idx-1]
		if i.Start < prev.Start {
			return fmt.Errorf("interval %d starts before interval %d (%v < %v)", idx, idx-1, i.Start, prev.Start)
		}
		if i.Start < prev.Stop {
			return fmt.Errorf("interval %d overlaps interval %d (%v < %v)", idx, idx-1, i.Start, prev.Stop)
		}
	}
	return nil
}

// Pairs returns the list as a two column array.
func (l List) Pairs() [][2]float64 {
	pairs := make([][2]float64, len(l))
	for idx, i := range l {
		pairs[idx] = [2]float64{i.Start, i.Stop}
	}
	return pairs
}

// FromTimes derives intervals from gaps in an ascending timestamp sequence.
// A gap is any step strictly larger than threshold. The first interval starts
// at the first timestamp and the last interval stops at the last one, so the
// result always holds one interval more than there are gaps.
func FromTimes(times []float64, threshold float64) List {
	if len(times) == 0 {
		return nil
	}

	bounds := []float64{times[0]}
	for k := 0; k < len(times)-1; k++ {
		if times[k+1]-times[k] > threshold {
			bounds = append(bounds, times[k], times[k+1])
		}
	}
	bounds = append(bounds, times[len(times)-1])

	intervals := make(List, 0, len(bounds)/2)
	for k := 0; k+1 < len(bounds); k += 2 {
		intervals = append(intervals, Interval{Start: bounds[k], Stop: bounds[k+1]})
	}
	return intervals
}

// Select reconciles the interval table stored in a light curve with the one
// derived from its timestamps. The derived set wins only if it has strictly
// fewer intervals.
func Select(stored, derived List) List {
	if len(derived) < len(stored) {
		return derived
	}
	return stored
}
