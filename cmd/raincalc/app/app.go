package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/roman-kulish/cml-rainfall/internal/cml"
	"github.com/roman-kulish/cml-rainfall/internal/output"
	"github.com/roman-kulish/cml-rainfall/internal/processing"
	"github.com/roman-kulish/cml-rainfall/internal/storage"
	"github.com/roman-kulish/cml-rainfall/internal/table"
)

// Tables read from SQLite sources.
const (
	LinksTable   = "links"
	SignalsTable = "signals"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	logger = logger.With(slog.String("run", uuid.NewString()))
	started := time.Now()

	if stat, err := os.Stat(config.OutputDir); err != nil {
		return fmt.Errorf("output directory '%s' does not exist: %w", config.OutputDir, err)
	} else if !stat.IsDir() {
		return fmt.Errorf("invalid output directory '%s'", config.OutputDir)
	}

	links, err := loadLinks(ctx, config, logger)
	if err != nil {
		return err
	}

	signals, err := loadSignals(ctx, config, logger)
	if err != nil {
		return err
	}

	series, report := cml.Match(links, signals, cml.WithLogger(logger))
	logger.Info("matched links to signals",
		slog.Group("stats",
			slog.String("matched", humanize.Comma(int64(report.Matched))),
			slog.String("unmatched", humanize.Comma(int64(len(report.Unmatched)))),
			slog.String("zeroLength", humanize.Comma(int64(len(report.ZeroLength)))),
		))

	processor, err := processing.NewProcessor(config.Params, processing.WithLogger(logger))
	if err != nil {
		return err
	}
	writer := output.NewWriter(config.OutputDir, config.Prefix, config.Mode())

	logger.Info("processing links",
		slog.Int("links", len(series)),
		slog.Int("workers", config.Workers),
		slog.String("mode", config.Mode().String()))

	summary, err := processLinks(ctx, series, processor, writer, config.Workers, logger)
	if err != nil {
		return fmt.Errorf("processing links: %w", err)
	}

	logger.Info("finished",
		slog.Group("stats",
			slog.String("written", humanize.Comma(int64(summary.Written))),
			slog.String("skipped", humanize.Comma(int64(summary.Skipped))),
			slog.String("samples", humanize.Comma(int64(summary.Samples))),
			slog.Duration("elapsed", time.Since(started).Round(time.Millisecond)),
		))

	return nil
}

func loadLinks(ctx context.Context, config *Config, logger *slog.Logger) (*cml.LinkTable, error) {
	t, err := openTable(ctx, config.LinksPath, LinksTable)
	if err != nil {
		return nil, fmt.Errorf("reading links: %w", err)
	}

	links, report, err := cml.LoadLinks(t, config.LinkColumns)
	if err != nil {
		return nil, fmt.Errorf("loading links: %w", err)
	}

	logRejections(logger, t.Source, report.Rejections)
	logger.Info("loaded links",
		slog.String("source", t.Source),
		slog.Group("stats",
			slog.String("total", humanize.Comma(int64(report.Total))),
			slog.String("valid", humanize.Comma(int64(report.Valid))),
			slog.String("invalid", humanize.Comma(int64(report.Invalid))),
		))

	return links, nil
}

func loadSignals(ctx context.Context, config *Config, logger *slog.Logger) (*cml.SignalStore, error) {
	t, err := openTable(ctx, config.SignalsPath, SignalsTable)
	if err != nil {
		return nil, fmt.Errorf("reading signals: %w", err)
	}

	signals, report, err := cml.LoadSignals(t, config.SignalColumns)
	if err != nil {
		return nil, fmt.Errorf("loading signals: %w", err)
	}

	logRejections(logger, t.Source, report.Rejections)
	for _, id := range report.Rescaled {
		logger.Debug("receive levels rescaled by 1/10", slog.Int64("link", id))
	}
	logger.Info("loaded signals",
		slog.String("source", t.Source),
		slog.Group("stats",
			slog.String("total", humanize.Comma(int64(report.Total))),
			slog.String("valid", humanize.Comma(int64(report.Valid))),
			slog.String("invalid", humanize.Comma(int64(report.Invalid))),
			slog.String("adjusted", humanize.Comma(int64(report.Adjusted))),
			slog.Int("partitions", signals.Len()),
		))

	return signals, nil
}

// openTable reads a CSV file or, for SQLite databases, the named table.
func openTable(ctx context.Context, path, name string) (*table.Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("file '%s' does not exist: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return readStoreTable(ctx, storage.NewSqliteStore(path), name)

	default:
		return table.ReadCSVFile(path)
	}
}

type tableStore interface {
	ReadTable(ctx context.Context, name string) (*table.Table, error)
	Close() error
}

// readStoreTable reads the named table and closes the store, reporting a
// close failure when the read itself succeeded.
func readStoreTable(ctx context.Context, store tableStore, name string) (t *table.Table, err error) {
	defer func() {
		if cErr := store.Close(); cErr != nil && err == nil {
			t, err = nil, fmt.Errorf("closing store: %w", cErr)
		}
	}()

	return store.ReadTable(ctx, name)
}

func logRejections(logger *slog.Logger, source string, rejections []cml.Rejection) {
	for _, r := range rejections {
		logger.Debug("row rejected",
			slog.String("source", source),
			slog.Int("row", r.Row),
			slog.String("reason", r.Reason))
	}
}
