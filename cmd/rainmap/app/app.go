package app

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if stat, err := os.Stat(config.InputDir); err != nil {
		return fmt.Errorf("input directory '%s' does not exist: %w", config.InputDir, err)
	} else if !stat.IsDir() {
		return fmt.Errorf("invalid input directory '%s'", config.InputDir)
	}

	logger.Info("reading link files",
		slog.String("dir", config.InputDir),
		slog.String("prefix", config.Prefix))

	data, err := LoadRainData(config.InputDir, config.Prefix)
	if err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return err
	}

	renderer := NewRainRenderer(RenderConfig{
		Location:    config.TimeZone,
		ColorTheme:  config.Theme,
		MaxRain:     config.MaxRain,
		CellWidth:   config.CellWidth,
		Annotations: !config.NoAnnotations,
	})
	bounds := renderer.Bounds(data)

	logger.Info("finished reading link files",
		slog.Group("stats",
			slog.String("links", humanize.Comma(int64(data.Width()))),
			slog.String("timestamps", humanize.Comma(int64(data.Height()))),
			slog.String("samples", humanize.Comma(int64(data.Samples))),
			slog.String("start", data.TimestampStart.In(config.TimeZone).Format(time.DateTime)),
			slog.String("end", data.TimestampEnd.In(config.TimeZone).Format(time.DateTime)),
			slog.String("maxRain", fmt.Sprintf("%0.2fmm/h", data.MaxRain)),
		))

	if config.Verbose {
		for _, id := range data.Links {
			logger.Info("link", slog.Int64("id", id))
		}
	}

	img, err := renderer.Render(data)
	if err != nil {
		return fmt.Errorf("rendering rain map: %w", err)
	}

	logger.Info("writing rain map",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("theme", string(config.Theme)),
			slog.String("scale", fmt.Sprintf("%0.1f-%0.1fmm/h", bounds.Min, bounds.Max)),
			slog.Int("width", img.Bounds().Dx()),
			slog.Int("height", img.Bounds().Dy()),
		))

	return writePNG(config.OutputFile, img)
}

func writePNG(path string, img image.Image) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err = png.Encode(out, img); err != nil {
		return fmt.Errorf("encoding image: %w", err)
	}
	return nil
}
