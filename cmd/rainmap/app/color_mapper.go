package app

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorTheme represents a predefined color scheme for rain rate visualization:
// - ClassicTheme: Blue to red
// - GrayscaleTheme: Monochrome
// - JungleTheme: Dark green to yellow
// - ThermalTheme: Black to red to yellow to white
// - MarineTheme: Deep blue to cyan to white
type ColorTheme string

const (
	ClassicTheme   ColorTheme = "classic"
	GrayscaleTheme ColorTheme = "grayscale"
	JungleTheme    ColorTheme = "jungle"
	ThermalTheme   ColorTheme = "thermal"
	MarineTheme    ColorTheme = "marine"

	DefaultColorMapSize = 256 // Default number of colors in the map
)

// NoDataColor marks cells without a rain rate.
var NoDataColor color.Color = color.RGBA{R: 0xd0, G: 0xd0, B: 0xd0, A: 0xff}

var themes = map[ColorTheme]func(float64) color.Color{
	ClassicTheme: func(v float64) color.Color {
		return colorful.Hsv(240-(v*240), 0.9+(v*0.1), 0.3+math.Pow(v, 0.7)*0.7)
	},
	GrayscaleTheme: func(v float64) color.Color {
		return colorful.Hsv(0, 0, 1-math.Pow(v, 0.7))
	},
	JungleTheme: func(v float64) color.Color {
		return colorful.Hsv(120-(v*60), 1, 0.3+math.Pow(v, 0.6)*0.7)
	},
	ThermalTheme: func(v float64) color.Color {
		black := colorful.Color{}
		red := colorful.Color{R: 1}
		yellow := colorful.Color{R: 1, G: 1}
		white := colorful.Color{R: 1, G: 1, B: 1}
		switch {
		case v < 1.0/3:
			return black.BlendRgb(red, v*3).Clamped()
		case v < 2.0/3:
			return red.BlendRgb(yellow, (v-1.0/3)*3).Clamped()
		default:
			return yellow.BlendRgb(white, (v-2.0/3)*3).Clamped()
		}
	},
	MarineTheme: func(v float64) color.Color {
		return colorful.Hsv(240-(v*60), 1-(v*0.8), 0.3+math.Pow(v, 0.6)*0.7)
	},
}

// ParseColorTheme returns the theme of the given name.
func ParseColorTheme(name string) (ColorTheme, error) {
	theme := ColorTheme(name)
	if _, ok := themes[theme]; !ok {
		return "", fmt.Errorf("invalid color theme: %s", name)
	}
	return theme, nil
}

// ColorMapper maps rain rates to pre-computed theme colors.
type ColorMapper struct {
	colorMap     []color.Color
	theme        ColorTheme
	size         int
	boundsMin    float64
	ratePerIndex float64 // Rain rate range per index step
}

// NewColorMapper creates a color mapper with the default size.
func NewColorMapper(theme ColorTheme, bounds RainBounds) *ColorMapper {
	return NewColorMapperWithSize(theme, bounds, DefaultColorMapSize)
}

// NewColorMapperWithSize creates a color mapper with the given number of
// pre-computed colors. Unknown themes fall back to ClassicTheme.
func NewColorMapperWithSize(theme ColorTheme, bounds RainBounds, size int) *ColorMapper {
	if size < 2 {
		size = DefaultColorMapSize
	}
	fn, ok := themes[theme]
	if !ok {
		theme, fn = ClassicTheme, themes[ClassicTheme]
	}

	cm := &ColorMapper{
		colorMap:     make([]color.Color, size),
		theme:        theme,
		size:         size,
		boundsMin:    bounds.Min,
		ratePerIndex: bounds.Span() / float64(size-1),
	}
	for i := 0; i < size; i++ {
		cm.colorMap[i] = fn(float64(i) / float64(size-1))
	}

	return cm
}

// GetColor returns the color of the given rain rate.
func (cm *ColorMapper) GetColor(rain *float64) color.Color {
	if rain == nil {
		return NoDataColor
	}

	index := 0
	if cm.ratePerIndex > 0 {
		index = int((*rain - cm.boundsMin) / cm.ratePerIndex)
	}

	if index < 0 {
		return cm.colorMap[0]
	}
	if index >= cm.size {
		return cm.colorMap[cm.size-1]
	}
	return cm.colorMap[index]
}

// ThemeName returns the color theme name.
func (cm *ColorMapper) ThemeName() ColorTheme {
	return cm.theme
}

// Size returns the color map size.
func (cm *ColorMapper) Size() int {
	return cm.size
}
