package processing

import "math"

// WetAntennaCorrector estimates wet antenna attenuation following Schleiss et
// al. (2013): during rain it rises exponentially towards WAAMax with time
// constant Tau and never exceeds the observed excess attenuation; it drops to
// zero as soon as the link is dry.
type WetAntennaCorrector struct {
	waaMax float64
	deltaT float64
	tau    float64
	prev   float64
}

// NewWetAntennaCorrector returns a corrector in its dry state.
func NewWetAntennaCorrector(waaMax, deltaT, tau float64) *WetAntennaCorrector {
	return &WetAntennaCorrector{
		waaMax: waaMax,
		deltaT: deltaT,
		tau:    tau,
	}
}

// Next consumes the excess attenuation (trsl - baseline) of one sample and
// returns its wet antenna attenuation, or nil when undefined. Undefined
// samples keep the integrator state.
func (c *WetAntennaCorrector) Next(excess *float64, flag WetFlag) *float64 {
	switch flag {
	case Dry:
		c.prev = 0
		return ptr(0)

	case Wet:
		if excess == nil {
			return nil
		}
		grown := c.prev + (c.waaMax-c.prev)*3*c.deltaT/c.tau
		waa := math.Min(*excess, math.Min(c.waaMax, grown))
		c.prev = waa
		return ptr(waa)

	default:
		return nil
	}
}

// CorrectWetAntenna runs a fresh corrector over the series.
func CorrectWetAntenna(trsl, baseline []*float64, flags []WetFlag, p Params) []*float64 {
	c := NewWetAntennaCorrector(p.WAAMax, p.DeltaT, p.Tau)
	out := make([]*float64, len(trsl))
	for i := range trsl {
		out[i] = c.Next(sub(trsl[i], baseline[i]), flags[i])
	}
	return out
}

// sub returns a - b, or nil if either is missing.
func sub(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	return ptr(*a - *b)
}
