package cml

import (
	"fmt"
	"math"
	"strings"
)

// EarthRadius is the mean Earth radius in kilometers used for path lengths.
const EarthRadius = 6371.0

const (
	Horizontal Polarization = "H"
	Vertical   Polarization = "V"
)

// Polarization of a microwave link
type Polarization string

func (p Polarization) String() string {
	return string(p)
}

// ParsePolarization accepts "h", "v", "horizontal" and "vertical" in any case.
// An empty value defaults to vertical.
func ParsePolarization(s string) (Polarization, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return Vertical, nil
	case "h", "horizontal":
		return Horizontal, nil
	case "v", "vertical":
		return Vertical, nil
	default:
		return "", fmt.Errorf("invalid polarization: %q", s)
	}
}

// Coordinate is a WGS84 position in degrees.
type Coordinate struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Link holds the static metadata of a commercial microwave link.
type Link struct {
	ID           int64        `json:"id"`
	A            Coordinate   `json:"a"`            // Site A position
	B            Coordinate   `json:"b"`            // Site B position
	FrequencyRx  float64      `json:"frequencyRx"`  // Receive sublink frequency in Hz
	FrequencyTx  float64      `json:"frequencyTx"`  // Transmit sublink frequency in Hz
	Polarization Polarization `json:"polarization"` // Antenna polarization
	Length       float64      `json:"length"`       // Path length in km, derived from A and B
}

// Midpoint returns the arithmetic midpoint of the link's endpoints.
func (l *Link) Midpoint() Coordinate {
	return Coordinate{
		Lon: (l.A.Lon + l.B.Lon) / 2,
		Lat: (l.A.Lat + l.B.Lat) / 2,
	}
}

// Haversine returns the great-circle distance in kilometers between two points.
func Haversine(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * EarthRadius * math.Asin(math.Min(1, math.Sqrt(h)))
}
