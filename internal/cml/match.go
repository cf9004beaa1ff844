package cml

import (
	"io"
	"log/slog"
)

// Series is a link joined with its time-ordered samples.
type Series struct {
	Link    Link
	Samples []Sample
}

// MatchReport summarises the join of links and signal partitions.
type MatchReport struct {
	Matched    int
	Unmatched  []int64 // Links without a signal partition
	ZeroLength []int64 // Links whose endpoints coincide
}

// MatchOption configures Match.
type MatchOption func(*matcher)

// WithLogger sets the logger used to report excluded links.
func WithLogger(logger *slog.Logger) MatchOption {
	return func(m *matcher) {
		m.logger = logger
	}
}

type matcher struct {
	logger *slog.Logger
}

// Match joins every registry link with its signal partition. Links without a
// partition or with a zero path length are excluded and reported; neither is
// an error. The result follows registry order.
func Match(links *LinkTable, signals *SignalStore, options ...MatchOption) ([]Series, MatchReport) {
	m := matcher{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, option := range options {
		option(&m)
	}

	var report MatchReport
	series := make([]Series, 0, links.Len())

	for _, link := range links.Links {
		samples, ok := signals.Partition(link.ID)
		if !ok {
			m.logger.Warn("could not find signals for link", slog.Int64("link", link.ID))
			report.Unmatched = append(report.Unmatched, link.ID)
			continue
		}
		if link.Length == 0 {
			m.logger.Warn("link has zero path length", slog.Int64("link", link.ID))
			report.ZeroLength = append(report.ZeroLength, link.ID)
			continue
		}

		series = append(series, Series{Link: link, Samples: samples})
		report.Matched++
	}

	return series, report
}
