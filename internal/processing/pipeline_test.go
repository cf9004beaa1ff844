package processing

import (
	"errors"
	"testing"
	"time"

	"github.com/roman-kulish/cml-rainfall/internal/cml"
)

func testLink() cml.Link {
	l := cml.Link{
		ID:           1,
		A:            cml.Coordinate{Lon: 0, Lat: 0},
		B:            cml.Coordinate{Lon: 0, Lat: 0.01},
		FrequencyRx:  18e9,
		FrequencyTx:  18e9,
		Polarization: cml.Vertical,
	}
	l.Length = cml.Haversine(l.A, l.B)
	return l
}

// stepSeries returns three hours of one-minute samples with a 5 dB/km
// attenuation step over minutes [90, 120).
func stepSeries() cml.Series {
	link := testLink()
	step := 5 * link.Length

	rx := make([]float64, 180)
	for i := range rx {
		rx[i] = -45
		if i >= 90 && i < 120 {
			rx[i] -= step
		}
	}
	return seriesOf(link, rx)
}

func seriesOf(link cml.Link, rx []float64) cml.Series {
	samples := make([]cml.Sample, len(rx))
	for i := range samples {
		ts := epoch.Add(time.Duration(i) * time.Minute)
		samples[i] = cml.Sample{
			LinkID:    link.ID,
			Timestamp: ts,
			Date:      ts.Format(cml.TimestampLayout),
			Tx:        10,
			Rx:        rx[i],
		}
	}
	return cml.Series{Link: link, Samples: samples}
}

func TestProcessor_Process(t *testing.T) {
	p, err := NewProcessor(DefaultParams())
	if err != nil {
		t.Fatalf("Failed to create processor: %v", err)
	}

	res, err := p.Process(stepSeries())
	if err != nil {
		t.Fatalf("Failed to process series: %v", err)
	}

	if res.Len() != 180 {
		t.Fatalf("Expected 180 samples, got %d", res.Len())
	}

	for i := 0; i < res.Len(); i++ {
		rx, tx := res.RainRx[i], res.RainTx[i]

		switch {
		case i < 30 || i > 150:
			if rx != nil || tx != nil {
				t.Errorf("Sample %d: expected missing rain rate", i)
			}
		case i >= 90 && i < 120:
			if rx == nil || *rx <= 0 || tx == nil || *tx <= 0 {
				t.Errorf("Sample %d: expected positive rain rate, got %v %v", i, rx, tx)
			}
		default:
			if rx == nil || *rx != 0 {
				t.Errorf("Sample %d: expected zero rain rate, got %v", i, rx)
			}
		}
	}

	if res.Wet[61] != Dry || res.Wet[62] != Wet || res.Wet[148] != Wet || res.Wet[149] != Dry {
		t.Errorf("Unexpected wet period boundaries: %s %s %s %s", res.Wet[61], res.Wet[62], res.Wet[148], res.Wet[149])
	}
	if res.WetFraction <= 0 || res.WetFraction >= 1 {
		t.Errorf("Expected a partial wet fraction, got %v", res.WetFraction)
	}

	if b := res.Baseline[100]; b == nil || *b != 55 {
		t.Errorf("Expected baseline frozen at 55 during rain, got %v", b)
	}
	if w := res.WAA[90]; w == nil || *w <= 0 || *w > DefaultWAAMax {
		t.Errorf("Expected wet antenna attenuation within (0, %v], got %v", DefaultWAAMax, w)
	}
	for i := 0; i < res.Len(); i++ {
		if a := res.Attenuation[i]; a != nil && *a < 0 {
			t.Errorf("Sample %d: negative attenuation %v", i, *a)
		}
	}
}

func TestProcessor_Process_DryNoise(t *testing.T) {
	p, err := NewProcessor(DefaultParams())
	if err != nil {
		t.Fatalf("Failed to create processor: %v", err)
	}

	rx := make([]float64, 180)
	for i := range rx {
		rx[i] = -45
	}
	rx[100] = -45.6
	rx[140] = -44.7

	res, err := p.Process(seriesOf(testLink(), rx))
	if err != nil {
		t.Fatalf("Failed to process series: %v", err)
	}

	for i := 0; i < res.Len(); i++ {
		if res.Wet[i] == Wet {
			t.Fatalf("Sample %d: expected no wet samples", i)
		}
		if r := res.RainRx[i]; r != nil && *r != 0 {
			t.Errorf("Sample %d: expected zero rain rate during dry weather, got %v", i, *r)
		}
		if a := res.AttenuationRaw[i]; a != nil && *a != 0 {
			t.Errorf("Sample %d: expected no attenuation during dry weather, got %v", i, *a)
		}
	}
	if r := res.RainRx[100]; r == nil {
		t.Error("Expected a defined rain rate at the noisy sample")
	}
}

func TestProcessor_Process_Deterministic(t *testing.T) {
	p, err := NewProcessor(DefaultParams())
	if err != nil {
		t.Fatalf("Failed to create processor: %v", err)
	}

	first, err := p.Process(stepSeries())
	if err != nil {
		t.Fatalf("Failed to process series: %v", err)
	}
	second, err := p.Process(stepSeries())
	if err != nil {
		t.Fatalf("Failed to process series: %v", err)
	}

	equalSeries(t, "rx", first.RainRx, second.RainRx)
	equalSeries(t, "tx", first.RainTx, second.RainTx)
}

func TestProcessor_Process_Errors(t *testing.T) {
	p, err := NewProcessor(DefaultParams())
	if err != nil {
		t.Fatalf("Failed to create processor: %v", err)
	}

	short := stepSeries()
	short.Samples = short.Samples[:30]
	if _, err := p.Process(short); !errors.Is(err, ErrNoRain) {
		t.Errorf("Expected ErrNoRain for a series shorter than the window, got %v", err)
	}

	bad := stepSeries()
	bad.Link.FrequencyTx = 0.1e9
	if _, err := p.Process(bad); !errors.Is(err, ErrFrequencyRange) {
		t.Errorf("Expected ErrFrequencyRange, got %v", err)
	}

	flat := stepSeries()
	flat.Link.Length = 0
	if _, err := p.Process(flat); err == nil {
		t.Error("Expected error for zero path length")
	}

	if _, err := NewProcessor(Params{}); err == nil {
		t.Error("Expected error for zero params")
	}
}
