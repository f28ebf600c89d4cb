package geofence

import (
	"math"
	"time"
)

const earthRadiusMeters = 6371000

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Rule is the maximum permitted distance from the office for a weekday.
// Exactly one of the three shapes applies: the day is closed for attendance
// actions, the distance is bounded, or any distance is permitted.
type Rule struct {
	Closed    bool
	Unbounded bool
	Meters    float64
}

// Decision is the outcome of a geofence check.
type Decision struct {
	Allowed  bool
	Distance float64
	// MaxAllowed is nil when the day has no distance bound (Friday) or when
	// the day is closed entirely (Sunday).
	MaxAllowed *float64
}

// Distance returns the haversine great-circle distance between two points
// in meters.
func Distance(a, b Point) float64 {
	dLat := (b.Latitude - a.Latitude) * (math.Pi / 180.0)
	dLon := (b.Longitude - a.Longitude) * (math.Pi / 180.0)

	latARad := a.Latitude * (math.Pi / 180.0)
	latBRad := b.Latitude * (math.Pi / 180.0)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(latARad)*math.Cos(latBRad)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// MaxDistance returns the distance rule for a weekday.
// Sunday is closed, Friday is unbounded, Saturday allows on-site presence
// only, the rest of the week allows the commuter radius.
func MaxDistance(day time.Weekday) Rule {
	switch day {
	case time.Sunday:
		return Rule{Closed: true}
	case time.Friday:
		return Rule{Unbounded: true}
	case time.Saturday:
		return Rule{Meters: 100}
	default:
		return Rule{Meters: 15000}
	}
}

// Validate checks a reported location against the office location under the
// weekday policy. A distance exactly equal to the bound is allowed. Pure:
// the same inputs always produce the same decision.
func Validate(loc, office Point, day time.Weekday) Decision {
	distance := Distance(loc, office)
	rule := MaxDistance(day)

	switch {
	case rule.Closed:
		return Decision{Allowed: false, Distance: distance}
	case rule.Unbounded:
		return Decision{Allowed: true, Distance: distance}
	default:
		max := rule.Meters
		return Decision{
			Allowed:    distance <= max,
			Distance:   distance,
			MaxAllowed: &max,
		}
	}
}
