package processing

type baselineState int8

const (
	baselineInit baselineState = iota
	baselineDry
	baselineWet
)

// BaselineEstimator tracks the dry-weather level of the trsl series. While dry,
// the baseline follows trsl, so a dry sample never carries excess attenuation,
// and the most recent dry samples are kept in a trailing window. When rain
// begins the window mean is frozen and held until the link dries again.
type BaselineEstimator struct {
	size   int
	window []float64 // Ring buffer of recent dry trsl values
	next   int
	filled bool
	state  baselineState
	frozen *float64
}

// NewBaselineEstimator returns an estimator averaging the given number of dry
// samples.
func NewBaselineEstimator(size int) *BaselineEstimator {
	if size < 1 {
		size = 1
	}

	return &BaselineEstimator{
		size:   size,
		window: make([]float64, 0, size),
	}
}

// Next consumes one sample and returns its baseline, or nil when undefined.
// A wet run starting before the window has filled has no baseline. Samples of
// unknown wetness leave the estimator state untouched.
func (e *BaselineEstimator) Next(trsl *float64, flag WetFlag) *float64 {
	switch flag {
	case Dry:
		if trsl == nil {
			return nil
		}
		e.push(*trsl)
		e.state = baselineDry
		e.frozen = nil
		return ptr(*trsl)

	case Wet:
		if e.state != baselineWet {
			e.frozen = e.mean()
			e.state = baselineWet
		}
		if e.frozen == nil {
			return nil
		}
		return ptr(*e.frozen)

	default:
		return nil
	}
}

func (e *BaselineEstimator) push(v float64) {
	if len(e.window) < e.size {
		e.window = append(e.window, v)
		e.filled = len(e.window) == e.size
		return
	}
	e.window[e.next] = v
	e.next = (e.next + 1) % e.size
}

func (e *BaselineEstimator) mean() *float64 {
	if !e.filled {
		return nil
	}

	var sum float64
	for _, v := range e.window {
		sum += v
	}
	return ptr(sum / float64(e.size))
}

// EstimateBaseline runs a fresh estimator over the series.
func EstimateBaseline(trsl []*float64, flags []WetFlag, size int) []*float64 {
	e := NewBaselineEstimator(size)
	out := make([]*float64, len(trsl))
	for i := range trsl {
		out[i] = e.Next(trsl[i], flags[i])
	}
	return out
}
