// Package astro holds the astrological reference tables used to build chart
// data and to validate formulas: zodiac signs, houses from cusps, essential
// dignities (modern and traditional rulers) and aspect orbs.
//
// Dignity tables are YAML documents; the built-in table is embedded and a
// custom one can be loaded with LoadTableFile:
//
//	table, err := astro.LoadTableFile("dignities.yaml", astro.ModeTraditional)
//	table.Dignity("Mars", "Capricorn") // Exaltation
package astro
