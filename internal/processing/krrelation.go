package processing

import (
	"errors"
	"fmt"
	"math"

	"github.com/roman-kulish/cml-rainfall/internal/cml"
)

// Frequency range covered by the ITU-R P.838-3 regression, GHz.
const (
	MinFrequencyGHz = 1.0
	MaxFrequencyGHz = 1000.0
)

// ErrFrequencyRange is returned when a k-R relation is requested outside the
// frequency range of the regression.
var ErrFrequencyRange = errors.New("frequency out of range")

type gaussTerm struct{ a, b, c float64 }

type regression struct {
	terms []gaussTerm
	m, c  float64
}

// eval returns Σ a·exp(-((x-b)/c)²) + m·x + c for x = log10(f).
func (r regression) eval(x float64) float64 {
	sum := r.m*x + r.c
	for _, t := range r.terms {
		d := (x - t.b) / t.c
		sum += t.a * math.Exp(-d*d)
	}
	return sum
}

// ITU-R P.838-3 coefficients; k regressions yield log10(k).
var (
	kH = regression{
		terms: []gaussTerm{
			{-5.33980, -0.10008, 1.13098},
			{-0.35351, 1.26970, 0.45400},
			{-0.23789, 0.86036, 0.15354},
			{-0.94158, 0.64552, 0.16817},
		},
		m: -0.18961, c: 0.71147,
	}
	kV = regression{
		terms: []gaussTerm{
			{-3.80595, 0.56934, 0.81061},
			{-3.44965, -0.22911, 0.51059},
			{-0.39902, 0.73042, 0.11899},
			{0.50167, 1.07319, 0.27195},
		},
		m: -0.16398, c: 0.63297,
	}
	alphaH = regression{
		terms: []gaussTerm{
			{-0.14318, 1.82442, -0.55187},
			{0.29591, 0.77564, 0.19822},
			{0.32177, 0.63773, 0.13164},
			{-5.37610, -0.96230, 1.47828},
			{16.1721, -3.29980, 3.43990},
		},
		m: 0.67849, c: -1.95537,
	}
	alphaV = regression{
		terms: []gaussTerm{
			{-0.07771, 2.33840, -0.76284},
			{0.56727, 0.95545, 0.54039},
			{-0.20238, 1.14520, 0.26809},
			{-48.2991, 0.791669, 0.116226},
			{48.5833, 0.791459, 0.116479},
		},
		m: -0.053739, c: 0.83433,
	}
)

// ITUCoefficients returns the specific attenuation coefficients k and α of
// γ = k·R^α at the given frequency in GHz.
func ITUCoefficients(freqGHz float64, pol cml.Polarization) (k, alpha float64, err error) {
	if math.IsNaN(freqGHz) || freqGHz < MinFrequencyGHz || freqGHz > MaxFrequencyGHz {
		return 0, 0, fmt.Errorf("%w: %v GHz", ErrFrequencyRange, freqGHz)
	}

	x := math.Log10(freqGHz)
	switch pol {
	case cml.Horizontal:
		return math.Pow(10, kH.eval(x)), alphaH.eval(x), nil
	default:
		return math.Pow(10, kV.eval(x)), alphaV.eval(x), nil
	}
}

// KRRelation converts specific attenuation k (dB/km) to rain rate R (mm/h)
// as R = A·k^B.
type KRRelation struct {
	A float64
	B float64
}

// NewKRRelation inverts the ITU-R P.838-3 power law at the given frequency in
// Hz.
func NewKRRelation(freqHz float64, pol cml.Polarization) (KRRelation, error) {
	k, alpha, err := ITUCoefficients(freqHz/1e9, pol)
	if err != nil {
		return KRRelation{}, err
	}

	return KRRelation{
		A: math.Pow(k, -1/alpha),
		B: 1 / alpha,
	}, nil
}

// RainRate returns the rain rate for specific attenuation k. Values below
// minK yield zero.
func (r KRRelation) RainRate(k, minK float64) float64 {
	if k < minK || k <= 0 {
		return 0
	}
	return r.A * math.Pow(k, r.B)
}
