package tourguide

import "math"

// StatuteMilesPerNauticalMile converts nautical miles to statute miles.
const StatuteMilesPerNauticalMile = 1.15077945

// Distance returns the great-circle distance between a and b in statute miles,
// using the spherical law of cosines. The cosine is clamped to [-1, 1] so
// rounding near identical points never yields NaN.
func Distance(a, b Coordinate) float64 {
	if a == b {
		return 0
	}

	lat1 := toRadians(a.Latitude)
	lon1 := toRadians(a.Longitude)
	lat2 := toRadians(b.Latitude)
	lon2 := toRadians(b.Longitude)

	cos := math.Sin(lat1)*math.Sin(lat2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Cos(lon1-lon2)
	angle := math.Acos(math.Max(-1, math.Min(1, cos)))

	nauticalMiles := 60 * toDegrees(angle)
	return StatuteMilesPerNauticalMile * nauticalMiles
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }
func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }
