package processing

import "math"

// WetFlag is the tri-state wet/dry classification of a sample.
type WetFlag int8

const (
	WetUnknown WetFlag = iota // Rolling window incomplete or containing gaps
	Dry
	Wet
)

// String implements fmt.Stringer.
func (f WetFlag) String() string {
	switch f {
	case Dry:
		return "dry"
	case Wet:
		return "wet"
	default:
		return "unknown"
	}
}

// RollingStd returns the population standard deviation of values over a
// centred window of the given width. For an even width the window of sample i
// spans [i-width/2, i+width/2-1]. The result is missing where the window runs
// past either end of the series or holds a missing value.
func RollingStd(values []*float64, width int) []*float64 {
	out := make([]*float64, len(values))
	if width < 1 {
		return out
	}

	half := width / 2
	for i := range values {
		start := i - half
		end := start + width
		if start < 0 || end > len(values) {
			continue
		}
		if sd, ok := stddev(values[start:end]); ok {
			out[i] = ptr(sd)
		}
	}

	return out
}

// ClassifyWetDry flags each sample of the trsl series as wet when its rolling
// standard deviation exceeds the threshold. It also returns the fraction of
// all samples flagged wet.
func ClassifyWetDry(trsl []*float64, width int, threshold float64) ([]WetFlag, float64) {
	flags := make([]WetFlag, len(trsl))
	if len(trsl) == 0 {
		return flags, 0
	}

	var wet int
	for i, sd := range RollingStd(trsl, width) {
		switch {
		case sd == nil:
			flags[i] = WetUnknown
		case *sd > threshold:
			flags[i] = Wet
			wet++
		default:
			flags[i] = Dry
		}
	}

	return flags, float64(wet) / float64(len(trsl))
}

func stddev(window []*float64) (float64, bool) {
	var sum float64
	for _, v := range window {
		if v == nil {
			return 0, false
		}
		sum += *v
	}
	mean := sum / float64(len(window))

	var sq float64
	for _, v := range window {
		d := *v - mean
		sq += d * d
	}

	return math.Sqrt(sq / float64(len(window))), true
}
