package chart

import (
	"fmt"
	"math"

	"orrery-hq/natal/pkg/astro"
)

// Body is the computed position of one celestial body.
type Body struct {
	Name       string
	Longitude  float64 // Ecliptic longitude in degrees
	Speed      float64 // Degrees per day; negative means retrograde
	Retrograde *bool   // Overrides the speed-based retrograde flag when set
}

// Positions is raw chart output from an ephemeris: body longitudes and the
// 12 house cusps.
type Positions struct {
	Bodies []Body
	Cusps  []float64
}

// ConvertOptions control FromPositions.
type ConvertOptions struct {
	Dignities    *astro.Table // Defaults to the modern built-in table
	MinorAspects bool         // Include minor aspects such as the quincunx
}

// FromPositions derives evaluator-ready chart data from raw positions.
//
// Each planet gets Sign, Degree, Longitude, Speed, Retrograde, Dignity and,
// when cusps are present, House. Bodies that are not planets (nodes, Chiron)
// become points. Cusps produce houses 1..12 with Sign, Degree and Cusp, and
// the angles Asc, IC, Dsc and MC. Aspects are computed between every pair of
// bodies in the order given.
func FromPositions(name string, p Positions, opts ConvertOptions) (*Data, error) {
	table := opts.Dignities
	if table == nil {
		var err error
		if table, err = astro.DefaultTable(astro.ModeModern); err != nil {
			return nil, err
		}
	}
	if len(p.Cusps) != 0 && len(p.Cusps) != 12 {
		return nil, fmt.Errorf("need 12 house cusps, got %d", len(p.Cusps))
	}

	d := New(name)
	hasHouses := len(p.Cusps) == 12

	for _, b := range p.Bodies {
		if b.Name == "" {
			return nil, fmt.Errorf("body without a name")
		}
		sign := astro.SignFromLongitude(b.Longitude)
		attrs := Attributes{
			"Sign":       sign,
			"Degree":     round2(astro.DegreeInSign(b.Longitude)),
			"Longitude":  round2(astro.NormalizeLongitude(b.Longitude)),
			"Speed":      b.Speed,
			"Retrograde": retrograde(b),
		}
		if hasHouses {
			h, err := astro.HouseFromLongitude(b.Longitude, p.Cusps)
			if err != nil {
				return nil, err
			}
			attrs["House"] = h
		}

		if astro.IsPlanet(b.Name) {
			attrs["Dignity"] = string(table.Dignity(b.Name, sign))
			d.AddPlanet(b.Name, attrs)
		} else {
			d.AddPoint(b.Name, attrs)
		}
	}

	if hasHouses {
		for i, cusp := range p.Cusps {
			d.AddHouse(i+1, Attributes{
				"Sign":   astro.SignFromLongitude(cusp),
				"Degree": round2(astro.DegreeInSign(cusp)),
				"Cusp":   round2(astro.NormalizeLongitude(cusp)),
			})
		}
		for _, angle := range []struct {
			name  string
			house int
		}{{"Asc", 1}, {"IC", 4}, {"Dsc", 7}, {"MC", 10}} {
			cusp := p.Cusps[angle.house-1]
			d.AddPoint(angle.name, Attributes{
				"Sign":       astro.SignFromLongitude(cusp),
				"Degree":     round2(astro.DegreeInSign(cusp)),
				"Longitude":  round2(astro.NormalizeLongitude(cusp)),
				"House":      angle.house,
				"Retrograde": false,
			})
		}
	}

	for i := 0; i < len(p.Bodies); i++ {
		for j := i + 1; j < len(p.Bodies); j++ {
			a, b := p.Bodies[i], p.Bodies[j]
			aspect, orb, ok := astro.FindAspect(a.Name, a.Longitude, b.Name, b.Longitude, !opts.MinorAspects)
			if !ok {
				continue
			}
			d.AddAspect(Attributes{
				"Planet1": a.Name,
				"Planet2": b.Name,
				"Type":    aspect.Name,
				"Angle":   aspect.Angle,
				"Orb":     round2(orb),
				"Major":   aspect.Major,
			})
		}
	}

	return d, nil
}

func retrograde(b Body) bool {
	if !astro.CanRetrograde(b.Name) {
		return false
	}
	if b.Retrograde != nil {
		return *b.Retrograde
	}
	return b.Speed < 0
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
