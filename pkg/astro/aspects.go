package astro

import "math"

// AspectType describes an angular relationship between two bodies.
type AspectType struct {
	Name       string
	Angle      float64
	Multiplier float64 // Fraction of the base orb allowed
	Major      bool
}

// AspectTypes lists the supported aspects, major aspects first.
var AspectTypes = []AspectType{
	{Name: "Conjunction", Angle: 0, Multiplier: 1.0, Major: true},
	{Name: "Opposition", Angle: 180, Multiplier: 1.0, Major: true},
	{Name: "Trine", Angle: 120, Multiplier: 1.0, Major: true},
	{Name: "Square", Angle: 90, Multiplier: 1.0, Major: true},
	{Name: "Sextile", Angle: 60, Multiplier: 1.0, Major: true},
	{Name: "Quincunx", Angle: 150, Multiplier: 0.7},
	{Name: "SemiSextile", Angle: 30, Multiplier: 0.6},
	{Name: "SemiSquare", Angle: 45, Multiplier: 0.6},
	{Name: "Sesquiquadrate", Angle: 135, Multiplier: 0.6},
}

// planetOrbs are the base orbs per body in degrees.
var planetOrbs = map[string]float64{
	"Sun":       17,
	"Moon":      12,
	"Mercury":   7,
	"Venus":     7,
	"Mars":      7,
	"Jupiter":   9,
	"Saturn":    9,
	"Uranus":    5,
	"Neptune":   5,
	"Pluto":     5,
	"NorthNode": 6,
	"SouthNode": 6,
}

const (
	defaultPlanetOrb = 6.0
	angleOrb         = 10.0
)

func baseOrb(body string) float64 {
	if IsAngle(body) {
		return angleOrb
	}
	if o, ok := planetOrbs[body]; ok {
		return o
	}
	return defaultPlanetOrb
}

// Orb returns the allowed orb for an aspect between two bodies: the smaller
// of the two base orbs scaled by the aspect multiplier.
func Orb(body1, body2 string, aspect AspectType) float64 {
	return math.Min(baseOrb(body1), baseOrb(body2)) * aspect.Multiplier
}

// Separation returns the shortest angular distance between two longitudes, in [0, 180].
func Separation(lon1, lon2 float64) float64 {
	d := math.Abs(NormalizeLongitude(lon1) - NormalizeLongitude(lon2))
	if d > 180 {
		d = 360 - d
	}
	return d
}

// FindAspect returns the tightest aspect within orb between two bodies.
// When majorOnly is set, minor aspects are ignored.
func FindAspect(body1 string, lon1 float64, body2 string, lon2 float64, majorOnly bool) (AspectType, float64, bool) {
	sep := Separation(lon1, lon2)

	var (
		best    AspectType
		bestOrb = math.Inf(1)
		found   bool
	)
	for _, a := range AspectTypes {
		if majorOnly && !a.Major {
			continue
		}
		diff := math.Abs(sep - a.Angle)
		if diff <= Orb(body1, body2, a) && diff < bestOrb {
			best, bestOrb, found = a, diff, true
		}
	}
	return best, bestOrb, found
}
