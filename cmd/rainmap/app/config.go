package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/roman-kulish/cml-rainfall/internal/output"
)

type Config struct {
	InputDir      string
	Prefix        string
	OutputFile    string
	Theme         ColorTheme
	MaxRain       *float64
	CellWidth     int
	TimeZone      *time.Location
	Verbose       bool
	NoAnnotations bool
}

func NewConfig() *Config {
	return &Config{
		InputDir:  ".",
		Prefix:    output.DefaultPrefix,
		Theme:     ClassicTheme,
		CellWidth: defaultCellWidth,
		TimeZone:  time.UTC,
	}
}

func NewConfigFromCLI() (*Config, error) {
	c, err := ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		flag.Usage()
		return nil, err
	}
	return c, nil
}

func ParseConfig(fs *flag.FlagSet, args []string) (*Config, error) {
	c := NewConfig()

	var theme, tz string
	var maxRain float64
	fs.StringVar(&c.InputDir, "i", c.InputDir, "Directory holding the condensed link files")
	fs.StringVar(&c.Prefix, "p", c.Prefix, "Link file name prefix")
	fs.StringVar(&c.OutputFile, "o", "", "Path to the output file, without extension")
	fs.StringVar(&theme, "theme", string(c.Theme), "Color theme. [classic, grayscale, jungle, thermal, marine]")
	fs.Float64Var(&maxRain, "max-rain", 0, "Define a manual maximum rain rate in mm/h (format nn.n)")
	fs.IntVar(&c.CellWidth, "cell-width", c.CellWidth, "Width of a link column in pixels")
	fs.StringVar(&tz, "tz", "UTC", "Time zone of the time scale")
	fs.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	fs.BoolVar(&c.NoAnnotations, "no-annotations", false, "Disable annotations such as time scale and link labels")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "max-rain" {
			c.MaxRain = &maxRain
		}
	})

	var err error
	if c.OutputFile == "" {
		err = errors.New("output file is required")
	} else if c.CellWidth < 1 {
		err = fmt.Errorf("cell width must be at least 1, %d given", c.CellWidth)
	} else if c.MaxRain != nil && *c.MaxRain <= 0 {
		err = fmt.Errorf("max rain must be positive, %v given", *c.MaxRain)
	}
	if err != nil {
		return nil, err
	}

	if c.Theme, err = ParseColorTheme(strings.ToLower(theme)); err != nil {
		return nil, err
	}
	if c.TimeZone, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid time zone: %w", err)
	}

	c.OutputFile = fmt.Sprintf("%s.png", c.OutputFile)
	return c, nil
}
