// Package preset loads named formulas from YAML files.
//
// A preset file lists formulas under a presets key:
//
//	presets:
//	  - name: sun-in-capricorn
//	    description: Sun placed in Capricorn
//	    formula: Sun.Sign == Capricorn
//	    tags: [sun, earth]
//
// A path may name one file or a directory, which is searched recursively for
// .yaml and .yml files. Every formula is compiled at load time, and preset
// names must be unique across all files.
//
// The Manager keeps a Registry current. With Watch it reloads when files
// change, debouncing bursts of events; a reload that fails keeps the
// previous presets.
package preset
