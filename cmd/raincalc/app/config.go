package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/cml-rainfall/internal/cml"
	"github.com/roman-kulish/cml-rainfall/internal/output"
	"github.com/roman-kulish/cml-rainfall/internal/processing"
)

const (
	EnvLogLevel = "RAINCALC_LOG_LEVEL"
	EnvWorkers  = "RAINCALC_WORKERS"
	EnvPrefix   = "RAINCALC_PREFIX"
)

// Config holds the run configuration of raincalc.
type Config struct {
	LinksPath   string
	SignalsPath string
	OutputDir   string
	Prefix      string
	Detailed    bool
	ConfigPath  string
	Workers     int
	LogLevel    slog.Level

	Params        processing.Params
	LinkColumns   cml.LinkColumns
	SignalColumns cml.SignalColumns
}

// FileConfig is the layout of the optional YAML parameter file.
type FileConfig struct {
	Processing processing.Params `yaml:"processing"`
	Links      cml.LinkColumns   `yaml:"links"`
	Signals    cml.SignalColumns `yaml:"signals"`
}

// NewConfig returns a configuration with default values.
func NewConfig() *Config {
	return &Config{
		OutputDir:     ".",
		Prefix:        output.DefaultPrefix,
		Workers:       runtime.NumCPU(),
		LogLevel:      slog.LevelInfo,
		Params:        processing.DefaultParams(),
		LinkColumns:   cml.DefaultLinkColumns(),
		SignalColumns: cml.DefaultSignalColumns(),
	}
}

// Mode returns the selected output mode.
func (c *Config) Mode() output.Mode {
	if c.Detailed {
		return output.Detailed
	}
	return output.Condensed
}

// NewConfigFromCLI builds the configuration from an optional .env file, the
// environment and the command line, in increasing order of precedence.
func NewConfigFromCLI() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	c, err := ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		flag.Usage()
		return nil, err
	}
	return c, nil
}

// loadDotEnv loads variables from an optional dotenv file. A missing file is
// not an error; a malformed one is.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ParseConfig parses args with the given flag set. Environment variables
// provide the flag defaults.
func ParseConfig(fs *flag.FlagSet, args []string) (*Config, error) {
	c := NewConfig()
	if err := c.loadEnv(); err != nil {
		return nil, err
	}

	fs.StringVar(&c.LinksPath, "l", "", "Path to the links table (CSV or SQLite)")
	fs.StringVar(&c.LinksPath, "links", "", "Path to the links table (CSV or SQLite)")
	fs.StringVar(&c.SignalsPath, "s", "", "Path to the signals table (CSV or SQLite)")
	fs.StringVar(&c.SignalsPath, "signals", "", "Path to the signals table (CSV or SQLite)")
	fs.StringVar(&c.Prefix, "p", c.Prefix, "Output file name prefix")
	fs.StringVar(&c.Prefix, "prefix", c.Prefix, "Output file name prefix")
	fs.BoolVar(&c.Detailed, "d", false, "Write every derived field per sample")
	fs.BoolVar(&c.Detailed, "detailed", false, "Write every derived field per sample")
	fs.StringVar(&c.OutputDir, "o", c.OutputDir, "Output directory")
	fs.StringVar(&c.ConfigPath, "c", "", "Path to the YAML parameter file")
	fs.IntVar(&c.Workers, "workers", c.Workers, "Number of links processed concurrently")
	fs.TextVar(&c.LogLevel, "log-level", c.LogLevel, "Log level [debug, info, warn, error]")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	var err error
	if c.LinksPath == "" {
		err = errors.New("links path is required")
	} else if c.SignalsPath == "" {
		err = errors.New("signals path is required")
	} else if c.Workers < 1 {
		err = fmt.Errorf("workers must be at least 1, %d given", c.Workers)
	}
	if err != nil {
		return nil, err
	}

	if c.ConfigPath != "" {
		if err = c.LoadFile(c.ConfigPath); err != nil {
			return nil, fmt.Errorf("loading parameter file: %w", err)
		}
	}

	return c, nil
}

// LoadFile overlays the YAML parameter file on the configuration. Keys absent
// from the file keep their current values.
func (c *Config) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fc := FileConfig{
		Processing: c.Params,
		Links:      c.LinkColumns,
		Signals:    c.SignalColumns,
	}

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err = dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	if err = fc.Processing.Validate(); err != nil {
		return err
	}

	c.Params = fc.Processing
	c.LinkColumns = fc.Links
	c.SignalColumns = fc.Signals
	return nil
}

func (c *Config) loadEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		if err := c.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("invalid %s: %w", EnvLogLevel, err)
		}
	}

	if v := strings.TrimSpace(os.Getenv(EnvWorkers)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvWorkers, err)
		}
		c.Workers = n
	}

	if v := strings.TrimSpace(os.Getenv(EnvPrefix)); v != "" {
		c.Prefix = v
	}

	return nil
}
