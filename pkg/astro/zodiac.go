package astro

import (
	"fmt"
	"math"
)

// Signs lists the zodiac signs in order, starting at 0° Aries.
var Signs = [12]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

var signIndex = func() map[string]int {
	m := make(map[string]int, len(Signs))
	for i, s := range Signs {
		m[s] = i
	}
	return m
}()

// NormalizeLongitude maps any longitude into [0, 360).
func NormalizeLongitude(lon float64) float64 {
	lon = math.Mod(lon, 360)
	if lon < 0 {
		lon += 360
	}
	return lon
}

// SignFromLongitude returns the sign occupied by an ecliptic longitude.
func SignFromLongitude(lon float64) string {
	return Signs[int(NormalizeLongitude(lon)/30)%12]
}

// DegreeInSign returns the position within the sign, in [0, 30).
func DegreeInSign(lon float64) float64 {
	return math.Mod(NormalizeLongitude(lon), 30)
}

// SignIndex returns the 0-based index of a sign name.
func SignIndex(name string) (int, bool) {
	i, ok := signIndex[name]
	return i, ok
}

// IsSign reports whether name is a zodiac sign.
func IsSign(name string) bool {
	_, ok := signIndex[name]
	return ok
}

// OppositeSign returns the sign 180° away.
func OppositeSign(name string) (string, bool) {
	i, ok := signIndex[name]
	if !ok {
		return "", false
	}
	return Signs[(i+6)%12], true
}

// HouseFromLongitude returns the house (1..12) containing lon, given the 12
// house cusps in order. A house whose cusp range crosses 0° Aries wraps.
func HouseFromLongitude(lon float64, cusps []float64) (int, error) {
	if len(cusps) != 12 {
		return 0, fmt.Errorf("need 12 house cusps, got %d", len(cusps))
	}
	lon = NormalizeLongitude(lon)
	for i := 0; i < 12; i++ {
		current := NormalizeLongitude(cusps[i])
		next := NormalizeLongitude(cusps[(i+1)%12])
		if current < next {
			if lon >= current && lon < next {
				return i + 1, nil
			}
		} else if lon >= current || lon < next {
			return i + 1, nil
		}
	}
	return 1, nil
}
