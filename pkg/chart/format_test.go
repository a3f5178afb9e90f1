package chart

import (
	"strings"
	"testing"
)

func TestFormatResult(t *testing.T) {
	d := New("alice").
		AddPlanet("Sun", Attributes{"Sign": "Capricorn", "House": 10, "Dignity": "Neutral"}).
		AddPlanet("Mars", Attributes{"Sign": "Aries", "Retrograde": true}).
		AddPlanet("Moon", Attributes{"Sign": "Cancer"}).
		AddPoint("Asc", Attributes{"Sign": "Libra"})

	t.Run("plain", func(t *testing.T) {
		out := FormatResult("Sun.Sign == Capricorn", true, d, false)
		for _, want := range []string{
			strings.Repeat("=", 60) + "\nDSL Formula Check\n",
			"\nFormula: Sun.Sign == Capricorn\n",
			"\nResult: ✅ True\n",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
		if strings.Contains(out, "Chart Context") {
			t.Error("non-verbose output contains chart context")
		}
	})

	t.Run("false result", func(t *testing.T) {
		out := FormatResult("Moon.Sign == Leo", false, d, false)
		if !strings.Contains(out, "Result: ❌ False") {
			t.Errorf("output = %s", out)
		}
	})

	t.Run("verbose", func(t *testing.T) {
		out := FormatResult("Mars.Retrograde AND Sun.House == 10 AND Asc.Sign == Libra", true, d, true)
		if !strings.Contains(out, "Chart Context:") {
			t.Fatalf("verbose output missing context:\n%s", out)
		}
		for _, want := range []string{
			"Sun:\n  Sign: Capricorn\n  House: 10\n  Dignity: Neutral\n  Retrograde: False\n",
			"Mars:\n  Sign: Aries\n  House: N/A\n  Dignity: N/A\n  Retrograde: True\n",
			"Asc:\n  Sign: Libra\n",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("verbose output missing %q:\n%s", want, out)
			}
		}
		if strings.Contains(out, "Moon:") {
			t.Error("Moon listed although the formula does not mention it")
		}
		if strings.Index(out, "Sun:") > strings.Index(out, "Mars:") {
			t.Error("bodies not listed in chart order")
		}
	})
}
