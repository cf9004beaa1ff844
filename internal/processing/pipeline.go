package processing

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/roman-kulish/cml-rainfall/internal/cml"
)

// ErrNoRain is returned when a link yields no defined rain rate at all, for
// example because its series is shorter than the wet/dry window.
var ErrNoRain = errors.New("no defined rain rate")

// Result holds every derived quantity of a link, aligned with its samples.
// Missing values are nil.
type Result struct {
	Link    cml.Link
	Samples []cml.Sample

	TRSL           []*float64 // Total received signal loss, dB
	Wet            []WetFlag  // Wet/dry classification
	WetFraction    float64    // Fraction of samples classified wet
	Baseline       []*float64 // Dry-weather trsl, dB
	WAA            []*float64 // Wet antenna attenuation, dB
	AttenuationRaw []*float64 // trsl - baseline - waa, dB
	Attenuation    []*float64 // AttenuationRaw clamped at zero, dB
	RainRx         []*float64 // Rain rate at the receive frequency, mm/h
	RainTx         []*float64 // Rain rate at the transmit frequency, mm/h
	RelationRx     KRRelation
	RelationTx     KRRelation
}

// Len returns the number of samples.
func (r *Result) Len() int {
	return len(r.Samples)
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger of the processor.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// Processor runs the retrieval chain over one link series at a time. It holds
// no per-link state and is safe for concurrent use.
type Processor struct {
	params Params
	logger *slog.Logger
}

// NewProcessor validates the parameters and returns a Processor.
func NewProcessor(params Params, options ...Option) (*Processor, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid processing parameters: %w", err)
	}

	p := &Processor{
		params: params,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, option := range options {
		option(p)
	}

	return p, nil
}

// Params returns the processing parameters.
func (p *Processor) Params() Params {
	return p.params
}

// Process conditions, classifies and corrects the series, then converts the
// path attenuation to rain rate at both sublink frequencies.
func (p *Processor) Process(series cml.Series) (*Result, error) {
	link := series.Link
	if link.Length <= 0 {
		return nil, fmt.Errorf("link %d: invalid path length %v", link.ID, link.Length)
	}

	relRx, err := NewKRRelation(link.FrequencyRx, link.Polarization)
	if err != nil {
		return nil, fmt.Errorf("link %d: rx sublink: %w", link.ID, err)
	}
	relTx, err := NewKRRelation(link.FrequencyTx, link.Polarization)
	if err != nil {
		return nil, fmt.Errorf("link %d: tx sublink: %w", link.ID, err)
	}

	res := &Result{
		Link:       link,
		Samples:    series.Samples,
		RelationRx: relRx,
		RelationTx: relTx,
	}

	res.TRSL = Condition(series.Samples, p.params)
	res.Wet, res.WetFraction = ClassifyWetDry(res.TRSL, p.params.WetWindow, p.params.WetThreshold)
	res.Baseline = EstimateBaseline(res.TRSL, res.Wet, p.params.BaselineSamples)
	res.WAA = CorrectWetAntenna(res.TRSL, res.Baseline, res.Wet, p.params)

	n := len(series.Samples)
	res.AttenuationRaw = make([]*float64, n)
	res.Attenuation = make([]*float64, n)
	res.RainRx = make([]*float64, n)
	res.RainTx = make([]*float64, n)

	var defined int
	for i := 0; i < n; i++ {
		raw := sub(sub(res.TRSL[i], res.Baseline[i]), res.WAA[i])
		if raw == nil {
			continue
		}
		a := math.Max(*raw, 0)
		k := a / link.Length

		res.AttenuationRaw[i] = raw
		res.Attenuation[i] = ptr(a)
		res.RainRx[i] = ptr(relRx.RainRate(k, p.params.MinAttenuation))
		res.RainTx[i] = ptr(relTx.RainRate(k, p.params.MinAttenuation))
		defined++
	}

	p.logger.Debug("processed link",
		slog.Int64("link", link.ID),
		slog.Int("samples", n),
		slog.Int("defined", defined),
		slog.Float64("wetFraction", res.WetFraction))

	if defined == 0 {
		return nil, fmt.Errorf("link %d: %w", link.ID, ErrNoRain)
	}

	return res, nil
}
