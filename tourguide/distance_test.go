package tourguide_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/tourguide/tourguide"
)

func TestDistance_KnownPairs(t *testing.T) {
	tests := []struct {
		name     string
		a, b     tourguide.Coordinate
		expected float64
		delta    float64
	}{
		{
			name:     "same point",
			a:        tourguide.NewCoordinate(33.817595, -117.922008),
			b:        tourguide.NewCoordinate(33.817595, -117.922008),
			expected: 0,
			delta:    1e-9,
		},
		{
			name:     "origin to origin",
			a:        tourguide.NewCoordinate(0, 0),
			b:        tourguide.NewCoordinate(0, 0),
			expected: 0,
			delta:    1e-9,
		},
		{
			name:     "one degree of longitude on the equator is 60 nautical miles",
			a:        tourguide.NewCoordinate(0, 0),
			b:        tourguide.NewCoordinate(0, 1),
			expected: 60 * tourguide.StatuteMilesPerNauticalMile,
			delta:    1e-6,
		},
		{
			name:     "san francisco to los angeles (~347 mi)",
			a:        tourguide.NewCoordinate(37.7749, -122.4194),
			b:        tourguide.NewCoordinate(34.0522, -118.2437),
			expected: 347,
			delta:    3,
		},
		{
			name:     "antipodal points",
			a:        tourguide.NewCoordinate(0, 0),
			b:        tourguide.NewCoordinate(0, 180),
			expected: 180 * 60 * tourguide.StatuteMilesPerNauticalMile,
			delta:    1e-6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tourguide.Distance(tt.a, tt.b), tt.delta)
		})
	}
}

func TestDistance_IsSymmetric(t *testing.T) {
	points := []tourguide.Coordinate{
		tourguide.NewCoordinate(0, 0),
		tourguide.NewCoordinate(43.582767, -110.821999),
		tourguide.NewCoordinate(-33.8688, 151.2093),
		tourguide.NewCoordinate(89.9, 179.9),
		tourguide.NewCoordinate(-89.9, -179.9),
	}

	for _, a := range points {
		assert.Zero(t, tourguide.Distance(a, a), "distance(a, a) must be zero")
		for _, b := range points {
			assert.InDelta(t, tourguide.Distance(a, b), tourguide.Distance(b, a), 1e-9)
		}
	}
}
