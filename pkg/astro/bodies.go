package astro

// Planets lists the classical and modern planets in conventional order.
var Planets = []string{
	"Sun", "Moon", "Mercury", "Venus", "Mars",
	"Jupiter", "Saturn", "Uranus", "Neptune", "Pluto",
}

// Angles are the chart points derived from house cusps.
var Angles = []string{"Asc", "MC", "Dsc", "IC"}

// nonRetrograde holds bodies that never appear retrograde.
var nonRetrograde = map[string]bool{
	"Sun":       true,
	"Moon":      true,
	"Asc":       true,
	"MC":        true,
	"IC":        true,
	"Dsc":       true,
	"NorthNode": true,
	"SouthNode": true,
}

var planetSet = func() map[string]bool {
	m := make(map[string]bool, len(Planets))
	for _, p := range Planets {
		m[p] = true
	}
	return m
}()

// IsPlanet reports whether name is one of Planets.
func IsPlanet(name string) bool { return planetSet[name] }

// IsAngle reports whether name is one of Angles.
func IsAngle(name string) bool {
	for _, a := range Angles {
		if a == name {
			return true
		}
	}
	return false
}

// CanRetrograde reports whether a body can be retrograde. Unknown bodies are
// assumed able to.
func CanRetrograde(body string) bool { return !nonRetrograde[body] }

// KnownBodies returns planets, angles and nodes; used for name suggestions.
func KnownBodies() []string {
	out := make([]string, 0, len(Planets)+len(Angles)+2)
	out = append(out, Planets...)
	out = append(out, Angles...)
	return append(out, "NorthNode", "SouthNode")
}
