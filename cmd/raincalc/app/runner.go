package app

import (
	"context"
	"log/slog"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/roman-kulish/cml-rainfall/internal/cml"
	"github.com/roman-kulish/cml-rainfall/internal/output"
	"github.com/roman-kulish/cml-rainfall/internal/processing"
)

// Summary describes the outcome of a processing run.
type Summary struct {
	Written int      // Links written to disk
	Skipped int      // Links dropped by the processor
	Samples int      // Samples across written links
	Files   []string // Written files in link order
}

type linkOutcome struct {
	path    string
	samples int
	err     error
}

// processLinks runs the processor over every series with at most workers
// series in flight and writes each result. A series the processor rejects is
// logged and skipped; a write failure aborts the run.
func processLinks(ctx context.Context, series []cml.Series, processor *processing.Processor, writer *output.Writer, workers int, logger *slog.Logger) (Summary, error) {
	outcomes := make([]linkOutcome, len(series))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, s := range series {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := processor.Process(s)
			if err != nil {
				outcomes[i].err = err
				return nil
			}

			path, err := writer.Write(res)
			if err != nil {
				return err
			}

			outcomes[i] = linkOutcome{path: path, samples: res.Len()}

			logger.Debug("link written",
				slog.Int64("link", s.Link.ID),
				slog.String("path", path),
				slog.String("length", humanize.FormatFloat("#,###.###", s.Link.Length)+"km"),
				slog.String("frequencyRx", humanize.SIWithDigits(s.Link.FrequencyRx, 2, "Hz")),
				slog.String("frequencyTx", humanize.SIWithDigits(s.Link.FrequencyTx, 2, "Hz")),
				slog.Float64("wetFraction", res.WetFraction))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	var summary Summary
	for i, o := range outcomes {
		if o.err != nil {
			logger.Warn("link skipped",
				slog.Int64("link", series[i].Link.ID),
				slog.String("reason", o.err.Error()))
			summary.Skipped++
			continue
		}

		summary.Written++
		summary.Samples += o.samples
		summary.Files = append(summary.Files, o.path)
	}

	return summary, nil
}
