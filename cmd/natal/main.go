// Natal evaluates astrological formulas against chart data.
//
// Formulas are boolean expressions over planets, houses and aspects:
//
//	Sun.Sign == Capricorn AND NOT Mars.Retrograde
//	Moon.House IN [4, 8, 12]
//	"Leo" IN planets.Sign
//
// Usage:
//
//	# Check one formula against a chart (exit 0 true, 1 false, 2 formula error)
//	natal check "Sun.Sign == Capricorn" --chart alice.yaml
//
//	# Show tokens or the syntax tree
//	natal tokens "Moon.House >= 10"
//	natal parse "Sun.Sign == Leo OR Moon.Sign == Leo" --format json
//
//	# Report astrologically impossible formulas
//	natal validate "Sun.Retrograde AND Sun.Dignity == Fall"
//
//	# Evaluate every preset against several charts
//	natal batch --presets presets/ --charts alice.yaml,bob.yaml --journal
//
//	# Reload presets on change, re-evaluate on a schedule, serve /metrics
//	natal watch --config natal.yaml
//
//	# Inspect and prune recorded results
//	natal journal query --formula sun-cap --limit 20
package main

import "os"

func main() {
	os.Exit(Execute())
}
