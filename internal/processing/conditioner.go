package processing

import (
	"time"

	"github.com/roman-kulish/cml-rainfall/internal/cml"
)

// Condition turns raw levels into a total-path-loss series (trsl = tx - rx).
// Levels outside the configured ranges become gaps; interior gaps are filled
// by linear interpolation over the timestamps. Leading and trailing gaps stay
// missing.
func Condition(samples []cml.Sample, p Params) []*float64 {
	trsl := make([]*float64, len(samples))
	times := make([]time.Time, len(samples))

	for i, s := range samples {
		times[i] = s.Timestamp

		txValid := s.Tx > p.TxMin && s.Tx < p.TxMax
		rxValid := s.Rx > p.RxMin
		if txValid && rxValid {
			trsl[i] = ptr(s.Tx - s.Rx)
		}
	}

	interpolateGaps(times, trsl)
	return trsl
}

// interpolateGaps fills nil values lying between two defined values in place.
// Equal timestamps on both sides of a gap are weighted evenly.
func interpolateGaps(times []time.Time, values []*float64) {
	prev := -1
	for i, v := range values {
		if v == nil {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			t0, t1 := times[prev], times[i]
			v0, v1 := *values[prev], *v
			span := t1.Sub(t0).Seconds()

			for j := prev + 1; j < i; j++ {
				var frac float64
				if span > 0 {
					frac = times[j].Sub(t0).Seconds() / span
				} else {
					frac = float64(j-prev) / float64(i-prev)
				}
				values[j] = ptr(v0 + (v1-v0)*frac)
			}
		}
		prev = i
	}
}

func ptr(v float64) *float64 {
	return &v
}
