package processing

import (
	"errors"
	"fmt"
)

const (
	DefaultTxMin           = -50.0
	DefaultTxMax           = 100.0
	DefaultRxMin           = -85.0
	DefaultWetWindow       = 60
	DefaultWetThreshold    = 0.8
	DefaultBaselineSamples = 5
	DefaultWAAMax          = 2.2
	DefaultDeltaT          = 1.0
	DefaultTau             = 15.0
	DefaultMinAttenuation  = 0.1 // dB/km
)

// Params holds the tunables of the rainfall retrieval pipeline.
type Params struct {
	// Valid level ranges; readings outside become gaps
	TxMin float64 `yaml:"txMin"` // Exclusive lower bound of the transmit level
	TxMax float64 `yaml:"txMax"` // Exclusive upper bound of the transmit level
	RxMin float64 `yaml:"rxMin"` // Exclusive lower bound of the receive level

	// Wet/dry classification
	WetWindow    int     `yaml:"wetWindow"`    // Rolling window width in samples
	WetThreshold float64 `yaml:"wetThreshold"` // Rolling std above which a sample is wet

	// Baseline
	BaselineSamples int `yaml:"baselineSamples"` // Dry samples averaged into the baseline

	// Wet antenna attenuation
	WAAMax float64 `yaml:"waaMax"` // Maximum wet antenna attenuation
	DeltaT float64 `yaml:"deltaT"` // Time step in native sample units
	Tau    float64 `yaml:"tau"`    // Response time constant in native sample units

	// Rain rate
	MinAttenuation float64 `yaml:"minAttenuation"` // Specific attenuation below which rain is zero
}

// DefaultParams returns the parameters of the reference retrieval.
func DefaultParams() Params {
	return Params{
		TxMin:           DefaultTxMin,
		TxMax:           DefaultTxMax,
		RxMin:           DefaultRxMin,
		WetWindow:       DefaultWetWindow,
		WetThreshold:    DefaultWetThreshold,
		BaselineSamples: DefaultBaselineSamples,
		WAAMax:          DefaultWAAMax,
		DeltaT:          DefaultDeltaT,
		Tau:             DefaultTau,
		MinAttenuation:  DefaultMinAttenuation,
	}
}

// Validate checks the parameters for consistency.
func (p *Params) Validate() error {
	var errs []error

	if p.TxMin >= p.TxMax {
		errs = append(errs, fmt.Errorf("txMin (%v) must be lower than txMax (%v)", p.TxMin, p.TxMax))
	}
	if p.WetWindow < 2 {
		errs = append(errs, fmt.Errorf("wetWindow must be at least 2, %d given", p.WetWindow))
	}
	if p.WetThreshold < 0 {
		errs = append(errs, fmt.Errorf("wetThreshold must not be negative, %v given", p.WetThreshold))
	}
	if p.BaselineSamples < 1 {
		errs = append(errs, fmt.Errorf("baselineSamples must be at least 1, %d given", p.BaselineSamples))
	}
	if p.WAAMax < 0 {
		errs = append(errs, fmt.Errorf("waaMax must not be negative, %v given", p.WAAMax))
	}
	if p.DeltaT <= 0 {
		errs = append(errs, fmt.Errorf("deltaT must be positive, %v given", p.DeltaT))
	}
	if p.Tau <= 0 {
		errs = append(errs, fmt.Errorf("tau must be positive, %v given", p.Tau))
	}
	if p.MinAttenuation < 0 {
		errs = append(errs, fmt.Errorf("minAttenuation must not be negative, %v given", p.MinAttenuation))
	}

	return errors.Join(errs...)
}
