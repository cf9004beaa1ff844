package app

import "math"

const (
	// Lower limit of the colour scale span, mm/h
	minRainSpan = 1.0
)

// RainBounds is the rain rate range mapped onto the colour scale.
type RainBounds struct {
	Min float64 // mm/h
	Max float64 // mm/h
}

// NewRainBounds returns bounds from zero to the manual maximum when given,
// or to the observed maximum otherwise. The span never drops below 1 mm/h.
func NewRainBounds(observedMax float64, manualMax *float64) RainBounds {
	upper := observedMax
	if manualMax != nil {
		upper = *manualMax
	}
	if math.IsNaN(upper) || upper < minRainSpan {
		upper = minRainSpan
	}

	return RainBounds{
		Min: 0,
		Max: upper,
	}
}

// Span returns Max - Min.
func (b RainBounds) Span() float64 {
	return b.Max - b.Min
}
