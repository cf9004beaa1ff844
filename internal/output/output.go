package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/roman-kulish/cml-rainfall/internal/processing"
)

// DefaultPrefix is the default output file name prefix.
const DefaultPrefix = "wet"

// Mode selects the layout of the per-link output files.
type Mode int

const (
	Condensed Mode = iota // One row per timestamp with the median rain rate
	Detailed              // One row per sample with every derived field
)

func (m Mode) String() string {
	if m == Detailed {
		return "detailed"
	}
	return "condensed"
}

var (
	condensedHeader = []string{"latitude", "longitude", "time", "rain"}
	detailedHeader  = []string{
		"id", "latitude", "longitude", "length", "frequency_rx", "frequency_tx", "polarization",
		"time", "tx", "rx", "code", "trsl", "wet", "baseline", "waa",
		"attenuation_raw", "attenuation", "rain_rx", "rain_tx",
	}
)

// Writer writes one file per link result into a directory.
type Writer struct {
	dir    string
	prefix string
	mode   Mode
}

// NewWriter returns a Writer creating files named <prefix><id>.csv in dir.
func NewWriter(dir, prefix string, mode Mode) *Writer {
	return &Writer{
		dir:    dir,
		prefix: prefix,
		mode:   mode,
	}
}

// Path returns the output file path of the given link.
func (w *Writer) Path(id int64) string {
	return filepath.Join(w.dir, FileName(w.prefix, id))
}

// Write writes the result to its file, replacing any previous content, and
// returns the file path.
func (w *Writer) Write(res *processing.Result) (path string, err error) {
	path = w.Path(res.Link.ID)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing output file: %w", closeErr)
		}
	}()

	switch w.mode {
	case Detailed:
		err = WriteDetailed(f, res)
	default:
		err = WriteCondensed(f, res)
	}
	if err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}

	return path, nil
}

// FileName returns the output file name of the given link.
func FileName(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10) + ".csv"
}

// WriteCondensed writes one row per distinct timestamp: the link midpoint,
// the raw timestamp and the median rain rate across the timestamp's samples
// and both sublinks. Missing rates are ignored; the field is left empty when
// none is defined.
func WriteCondensed(w io.Writer, res *processing.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(condensedHeader); err != nil {
		return err
	}

	mid := res.Link.Midpoint()
	lat, lon := formatFloat(mid.Lat), formatFloat(mid.Lon)

	rates := make([]float64, 0, 4)
	for start := 0; start < res.Len(); {
		end := start + 1
		for end < res.Len() && res.Samples[end].Timestamp.Equal(res.Samples[start].Timestamp) {
			end++
		}

		rates = rates[:0]
		for i := start; i < end; i++ {
			rates = appendDefined(rates, res.RainRx[i], res.RainTx[i])
		}

		rain := ""
		if len(rates) > 0 {
			rain = formatFloat(Median(rates))
		}

		if err := cw.Write([]string{lat, lon, res.Samples[start].Date, rain}); err != nil {
			return err
		}
		start = end
	}

	cw.Flush()
	return cw.Error()
}

// WriteDetailed writes every sample with all of its derived fields.
func WriteDetailed(w io.Writer, res *processing.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(detailedHeader); err != nil {
		return err
	}

	link := res.Link
	mid := link.Midpoint()
	static := []string{
		strconv.FormatInt(link.ID, 10),
		formatFloat(mid.Lat),
		formatFloat(mid.Lon),
		formatFloat(link.Length),
		formatFloat(link.FrequencyRx),
		formatFloat(link.FrequencyTx),
		link.Polarization.String(),
	}

	record := make([]string, 0, len(detailedHeader))
	for i, s := range res.Samples {
		record = append(record[:0], static...)
		record = append(record,
			s.Date,
			formatFloat(s.Tx),
			formatFloat(s.Rx),
			strconv.Itoa(s.Code),
			formatOptional(res.TRSL[i]),
			formatWet(res.Wet[i]),
			formatOptional(res.Baseline[i]),
			formatOptional(res.WAA[i]),
			formatOptional(res.AttenuationRaw[i]),
			formatOptional(res.Attenuation[i]),
			formatOptional(res.RainRx[i]),
			formatOptional(res.RainTx[i]),
		)
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Median returns the median of values, averaging the two middle values of an
// even-sized input. The input is not modified.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func appendDefined(dst []float64, values ...*float64) []float64 {
	for _, v := range values {
		if v != nil {
			dst = append(dst, *v)
		}
	}
	return dst
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatWet(f processing.WetFlag) string {
	switch f {
	case processing.Wet:
		return "1"
	case processing.Dry:
		return "0"
	default:
		return ""
	}
}
