package astro

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Dignity is the essential dignity of a planet in a sign.
type Dignity string

const (
	DignityRulership  Dignity = "Rulership"
	DignityExaltation Dignity = "Exaltation"
	DignityDetriment  Dignity = "Detriment"
	DignityFall       Dignity = "Fall"
	DignityNeutral    Dignity = "Neutral"
)

// Dignities lists every dignity value a chart can carry.
var Dignities = []Dignity{DignityRulership, DignityExaltation, DignityDetriment, DignityFall, DignityNeutral}

// ParseDignity accepts dignity names including the aliases Ruler (Rulership)
// and Peregrine (Neutral).
func ParseDignity(s string) (Dignity, bool) {
	switch s {
	case "Rulership", "Ruler", "Domicile":
		return DignityRulership, true
	case "Exaltation":
		return DignityExaltation, true
	case "Detriment":
		return DignityDetriment, true
	case "Fall":
		return DignityFall, true
	case "Neutral", "Peregrine":
		return DignityNeutral, true
	}
	return "", false
}

// Mode selects the set of sign rulers.
type Mode string

const (
	ModeModern      Mode = "modern"
	ModeTraditional Mode = "traditional"
)

//go:embed dignities.yaml
var defaultDignities []byte

// stringList decodes either a scalar or a sequence of strings.
type stringList []string

func (l *stringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*l = stringList{node.Value}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		*l = items
		return nil
	default:
		return fmt.Errorf("line %d: expected a sign or a list of signs", node.Line)
	}
}

type exaltationEntry struct {
	Sign   string  `yaml:"sign"`
	Degree float64 `yaml:"degree"`
}

type modeConfig struct {
	Rulers map[string]stringList `yaml:"rulers"`
}

type dignityFile struct {
	Modern      *modeConfig                `yaml:"modern"`
	Traditional *modeConfig                `yaml:"traditional"`
	Exaltations map[string]exaltationEntry `yaml:"exaltations"`
	Detriments  map[string]stringList      `yaml:"detriments"`
	Falls       map[string]string          `yaml:"falls"`
}

type planetSign struct {
	planet, sign string
}

// Table answers dignity questions for one rulership mode. It is immutable
// after construction.
type Table struct {
	mode        Mode
	rulers      map[string][]string // sign -> planets
	rules       map[planetSign]bool
	exaltations map[string]exaltationEntry
	detriments  map[planetSign]bool
	detrimentOf map[string][]string
	falls       map[string]string
}

// DefaultTable returns the built-in table for mode.
func DefaultTable(mode Mode) (*Table, error) {
	return LoadTable(bytes.NewReader(defaultDignities), mode)
}

// LoadTableFile reads a dignity table from a YAML file.
func LoadTableFile(path string, mode Mode) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dignities file: %w", err)
	}
	defer f.Close()
	t, err := LoadTable(f, mode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// LoadTable decodes a dignity table. A mode missing from the document falls
// back to the modern rulers.
func LoadTable(r io.Reader, mode Mode) (*Table, error) {
	var doc dignityFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse dignities: %w", err)
	}

	mc := doc.Modern
	if mode == ModeTraditional && doc.Traditional != nil {
		mc = doc.Traditional
	}
	if mc == nil || len(mc.Rulers) == 0 {
		return nil, fmt.Errorf("dignities define no rulers for mode %q", mode)
	}

	t := &Table{
		mode:        mode,
		rulers:      make(map[string][]string),
		rules:       make(map[planetSign]bool),
		exaltations: doc.Exaltations,
		detriments:  make(map[planetSign]bool),
		detrimentOf: make(map[string][]string),
		falls:       doc.Falls,
	}
	if t.exaltations == nil {
		t.exaltations = map[string]exaltationEntry{}
	}
	if t.falls == nil {
		t.falls = map[string]string{}
	}

	for sign, planets := range mc.Rulers {
		if !IsSign(sign) {
			return nil, fmt.Errorf("unknown sign %q in rulers", sign)
		}
		t.rulers[sign] = append([]string(nil), planets...)
		for _, p := range planets {
			t.rules[planetSign{p, sign}] = true
		}
	}
	for planet, e := range t.exaltations {
		if !IsSign(e.Sign) {
			return nil, fmt.Errorf("unknown exaltation sign %q for %s", e.Sign, planet)
		}
	}
	for planet, signs := range doc.Detriments {
		for _, s := range signs {
			if !IsSign(s) {
				return nil, fmt.Errorf("unknown detriment sign %q for %s", s, planet)
			}
			t.detriments[planetSign{planet, s}] = true
		}
		t.detrimentOf[planet] = append([]string(nil), signs...)
	}
	for planet, s := range t.falls {
		if !IsSign(s) {
			return nil, fmt.Errorf("unknown fall sign %q for %s", s, planet)
		}
	}

	return t, nil
}

// Mode returns the rulership mode of the table.
func (t *Table) Mode() Mode { return t.mode }

// Rulers returns the planets ruling sign.
func (t *Table) Rulers(sign string) []string {
	return append([]string(nil), t.rulers[sign]...)
}

// RuledSigns returns the signs ruled by planet, in zodiac order.
func (t *Table) RuledSigns(planet string) []string {
	var out []string
	for _, s := range Signs {
		if t.rules[planetSign{planet, s}] {
			out = append(out, s)
		}
	}
	return out
}

// ExaltationSign returns the sign of exaltation of planet.
func (t *Table) ExaltationSign(planet string) (string, bool) {
	e, ok := t.exaltations[planet]
	return e.Sign, ok
}

// ExaltationDegree returns the exact degree of exaltation of planet.
func (t *Table) ExaltationDegree(planet string) (float64, bool) {
	e, ok := t.exaltations[planet]
	return e.Degree, ok
}

// DetrimentSigns returns the signs of detriment of planet.
func (t *Table) DetrimentSigns(planet string) []string {
	return append([]string(nil), t.detrimentOf[planet]...)
}

// FallSign returns the sign of fall of planet.
func (t *Table) FallSign(planet string) (string, bool) {
	s, ok := t.falls[planet]
	return s, ok
}

// Has reports whether planet holds dignity d in sign.
func (t *Table) Has(planet, sign string, d Dignity) bool {
	return t.Dignity(planet, sign) == d
}

// Dignity returns the dignity of planet in sign. Rulership wins over
// exaltation, then detriment, then fall.
func (t *Table) Dignity(planet, sign string) Dignity {
	if t.rules[planetSign{planet, sign}] {
		return DignityRulership
	}
	if e, ok := t.exaltations[planet]; ok && e.Sign == sign {
		return DignityExaltation
	}
	if t.detriments[planetSign{planet, sign}] {
		return DignityDetriment
	}
	if s, ok := t.falls[planet]; ok && s == sign {
		return DignityFall
	}
	return DignityNeutral
}

// SignsWith returns every sign where planet holds dignity d, sorted by zodiac order.
func (t *Table) SignsWith(planet string, d Dignity) []string {
	var out []string
	for _, s := range Signs {
		if t.Dignity(planet, s) == d {
			out = append(out, s)
		}
	}
	return out
}

// Planets returns every planet mentioned by the table, sorted.
func (t *Table) Planets() []string {
	seen := map[string]bool{}
	for ps := range t.rules {
		seen[ps.planet] = true
	}
	for p := range t.exaltations {
		seen[p] = true
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
