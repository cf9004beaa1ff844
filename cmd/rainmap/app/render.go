package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

const (
	dpi            = 72.0
	fontSize       = 12.0
	tickMarkLength = 5
	minLabelGap    = 4 // Pixels between link labels

	defaultCellWidth    = 8
	defaultCellHeight   = 1
	defaultTopBorder    = 30
	defaultLeftBorder   = 70
	defaultBottomBorder = 30
	defaultRightBorder  = 20

	defaultTimeFormat     = "15:04"
	defaultDatetimeFormat = time.DateTime
)

// BorderConfig defines the sizes of white space around the map.
type BorderConfig struct {
	Top    int // Space for link labels
	Left   int // Space for time scale
	Bottom int // Space for information bar
	Right  int // Right padding
}

// RenderConfig holds the rain map rendering options.
type RenderConfig struct {
	TimeFormat     string         // Format string for time labels
	DatetimeFormat string         // Format string for the info bar
	Location       *time.Location // Timezone for time display

	FontSize     float64
	ColorTheme   ColorTheme
	ColorMapSize int
	MaxRain      *float64 // Manual upper bound of the colour scale, mm/h
	CellWidth    int      // Pixels per link
	CellHeight   int      // Pixels per timestamp
	Annotations  bool

	BorderConfig BorderConfig
}

// RainRenderer draws a rain data grid as an image.
type RainRenderer struct {
	config RenderConfig
}

// NewRainRenderer creates a renderer, filling in defaults for zero values.
func NewRainRenderer(config RenderConfig) *RainRenderer {
	if config.TimeFormat == "" {
		config.TimeFormat = defaultTimeFormat
	}
	if config.DatetimeFormat == "" {
		config.DatetimeFormat = defaultDatetimeFormat
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.FontSize == 0 {
		config.FontSize = fontSize
	}
	if config.CellWidth <= 0 {
		config.CellWidth = defaultCellWidth
	}
	if config.CellHeight <= 0 {
		config.CellHeight = defaultCellHeight
	}
	if !config.Annotations {
		config.BorderConfig = BorderConfig{}
	} else {
		if config.BorderConfig.Top == 0 {
			config.BorderConfig.Top = defaultTopBorder
		}
		if config.BorderConfig.Left == 0 {
			config.BorderConfig.Left = defaultLeftBorder
		}
		if config.BorderConfig.Bottom == 0 {
			config.BorderConfig.Bottom = defaultBottomBorder
		}
		if config.BorderConfig.Right == 0 {
			config.BorderConfig.Right = defaultRightBorder
		}
	}

	return &RainRenderer{config: config}
}

// Bounds returns the colour scale bounds used for the data.
func (r *RainRenderer) Bounds(data *RainData) RainBounds {
	return NewRainBounds(data.MaxRain, r.config.MaxRain)
}

// Render creates an image of the rain data.
func (r *RainRenderer) Render(data *RainData) (*image.RGBA, error) {
	b := r.config.BorderConfig
	width := data.Width() * r.config.CellWidth
	height := data.Height() * r.config.CellHeight

	img := image.NewRGBA(image.Rect(0, 0, width+b.Left+b.Right, height+b.Top+b.Bottom))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	area := image.Rect(b.Left, b.Top, b.Left+width, b.Top+height)
	bounds := r.Bounds(data)
	mapper := NewColorMapperWithSize(r.config.ColorTheme, bounds, r.config.ColorMapSize)

	if r.config.Annotations {
		ann, err := newAnnotator(r.config)
		if err != nil {
			return nil, fmt.Errorf("creating annotator: %w", err)
		}
		defer ann.Close()

		if err = ann.annotate(img, data, bounds); err != nil {
			return nil, fmt.Errorf("drawing annotations: %w", err)
		}
	}

	r.renderCells(img, area, data, mapper)
	return img, nil
}

func (r *RainRenderer) renderCells(img *image.RGBA, area image.Rectangle, data *RainData, mapper *ColorMapper) {
	for y, row := range data.Cells {
		for x, rain := range row {
			cell := image.Rect(
				area.Min.X+x*r.config.CellWidth,
				area.Min.Y+y*r.config.CellHeight,
				area.Min.X+(x+1)*r.config.CellWidth,
				area.Min.Y+(y+1)*r.config.CellHeight,
			)
			draw.Draw(img, cell, image.NewUniform(mapper.GetColor(rain)), image.Point{}, draw.Src)
		}
	}
}

type annotator struct {
	context  *freetype.Context
	config   RenderConfig
	fontFace font.Face
}

func newAnnotator(config RenderConfig) (*annotator, error) {
	parsedFont, err := freetype.ParseFont(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(config.FontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &annotator{
		context: ctx,
		config:  config,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    config.FontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}, nil
}

func (a *annotator) Close() error {
	if a.fontFace != nil {
		return a.fontFace.Close()
	}
	return nil
}

func (a *annotator) annotate(img *image.RGBA, data *RainData, bounds RainBounds) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	ops := []struct {
		msg string
		fn  func(*image.RGBA, *RainData, RainBounds) error
	}{
		{"drawing link labels", a.drawLinkLabels},
		{"drawing time scale", a.drawTimeScale},
		{"drawing info bar", a.drawInfoBar},
	}
	for _, op := range ops {
		if err := op.fn(img, data, bounds); err != nil {
			return fmt.Errorf("%s: %w", op.msg, err)
		}
	}

	return nil
}

func (a *annotator) drawLinkLabels(img *image.RGBA, data *RainData, _ RainBounds) error {
	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := a.config.BorderConfig.Top - tickMarkLength - fontHeight/2

	nextFree := 0
	for i, id := range data.Links {
		x := a.config.BorderConfig.Left + i*a.config.CellWidth + a.config.CellWidth/2

		for y := a.config.BorderConfig.Top - tickMarkLength; y < a.config.BorderConfig.Top; y++ {
			img.Set(x, y, color.Black)
		}

		label := strconv.FormatInt(id, 10)
		width := font.MeasureString(a.fontFace, label).Round()
		left := x - width/2
		if left < nextFree {
			continue
		}

		if _, err := a.context.DrawString(label, freetype.Pt(left, textY)); err != nil {
			return fmt.Errorf("drawing link label: %w", err)
		}
		nextFree = left + width + minLabelGap
	}

	return nil
}

func (a *annotator) drawTimeScale(img *image.RGBA, data *RainData, _ RainBounds) error {
	if data.Height() == 0 {
		return nil
	}

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	step := calculateNiceTimeStep(data.TimestampEnd.Sub(data.TimestampStart))

	next := data.TimestampStart.Truncate(step)
	if next.Before(data.TimestampStart) {
		next = next.Add(step)
	}

	lastY := -fontHeight
	for row, ts := range data.Times {
		if ts.Before(next) {
			continue
		}
		for !ts.Before(next) {
			next = next.Add(step)
		}

		imgY := a.config.BorderConfig.Top + row*a.config.CellHeight
		for x := a.config.BorderConfig.Left - tickMarkLength; x < a.config.BorderConfig.Left; x++ {
			img.Set(x, imgY, color.Black)
		}

		if imgY-lastY < fontHeight {
			continue
		}

		label := ts.In(a.config.Location).Format(a.config.TimeFormat)
		textY := imgY + fontHeight/2 - metrics.Descent.Round()
		if _, err := a.context.DrawString(label, freetype.Pt(5, textY)); err != nil {
			return fmt.Errorf("drawing time label: %w", err)
		}
		lastY = imgY
	}

	return nil
}

func (a *annotator) drawInfoBar(img *image.RGBA, data *RainData, bounds RainBounds) error {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Links: %s", humanize.Comma(int64(data.Width()))))
	sb.WriteString(fmt.Sprintf("; Samples: %s", humanize.Comma(int64(data.Samples))))
	sb.WriteString(fmt.Sprintf("; Time: %s - %s",
		data.TimestampStart.In(a.config.Location).Format(a.config.DatetimeFormat),
		data.TimestampEnd.In(a.config.Location).Format(a.config.DatetimeFormat)))
	sb.WriteString(fmt.Sprintf("; Scale: %s - %s mm/h",
		humanize.FormatFloat("#,###.#", bounds.Min),
		humanize.FormatFloat("#,###.#", bounds.Max)))

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := img.Bounds().Max.Y - (a.config.BorderConfig.Bottom-fontHeight)/2 - metrics.Descent.Round()

	if _, err := a.context.DrawString(sb.String(), freetype.Pt(a.config.BorderConfig.Left, textY)); err != nil {
		return fmt.Errorf("drawing info text: %w", err)
	}

	return nil
}

func calculateNiceTimeStep(duration time.Duration) time.Duration {
	roughStep := duration.Seconds() / 8 // Aim for about 8 time labels

	niceIntervals := []float64{
		60,    // 1 minute
		300,   // 5 minutes
		600,   // 10 minutes
		900,   // 15 minutes
		1800,  // 30 minutes
		3600,  // 1 hour
		7200,  // 2 hours
		14400, // 4 hours
		43200, // 12 hours
		86400, // 1 day
	}

	for _, interval := range niceIntervals {
		if roughStep <= interval {
			return time.Duration(interval) * time.Second
		}
	}

	return 7 * 24 * time.Hour
}
