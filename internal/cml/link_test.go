package cml

import (
	"math"
	"testing"
)

func TestHaversine(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     Coordinate
		expected float64
	}{
		{"same point", Coordinate{Lon: 11.1, Lat: 47.5}, Coordinate{Lon: 11.1, Lat: 47.5}, 0},
		{"0.01 degree north", Coordinate{}, Coordinate{Lon: 0, Lat: 0.01}, 1.111949},
		{"1 degree east on equator", Coordinate{}, Coordinate{Lon: 1, Lat: 0}, 111.194927},
		{"Paris to London", Coordinate{Lon: 2.3522, Lat: 48.8566}, Coordinate{Lon: -0.1278, Lat: 51.5074}, 343.56},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Haversine(tc.a, tc.b)
			if math.Abs(got-tc.expected) > 0.01 {
				t.Errorf("Expected %.6f km, got %.6f km", tc.expected, got)
			}

			if back := Haversine(tc.b, tc.a); back != got {
				t.Errorf("Expected symmetric distance, got %v and %v", got, back)
			}
		})
	}
}

func TestParsePolarization(t *testing.T) {
	testCases := []struct {
		input    string
		expected Polarization
		wantErr  bool
	}{
		{"", Vertical, false},
		{"v", Vertical, false},
		{"Vertical", Vertical, false},
		{"H", Horizontal, false},
		{" horizontal ", Horizontal, false},
		{"circular", "", true},
	}

	for _, tc := range testCases {
		got, err := ParsePolarization(tc.input)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParsePolarization(%q): unexpected error state: %v", tc.input, err)
			continue
		}
		if got != tc.expected {
			t.Errorf("ParsePolarization(%q): expected %q, got %q", tc.input, tc.expected, got)
		}
	}
}

func TestLink_Midpoint(t *testing.T) {
	l := Link{A: Coordinate{Lon: 10, Lat: 40}, B: Coordinate{Lon: 12, Lat: 41}}
	mid := l.Midpoint()
	if mid.Lon != 11 || mid.Lat != 40.5 {
		t.Errorf("Expected midpoint (11, 40.5), got (%v, %v)", mid.Lon, mid.Lat)
	}
}
