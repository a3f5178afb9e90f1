package chart

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCategory_Order(t *testing.T) {
	var c Category
	c.Set("Sun", Attributes{"Sign": "Leo"})
	c.Set("Moon", Attributes{"Sign": "Cancer"})
	c.Set("Mars", nil)
	c.Set("Sun", Attributes{"Sign": "Aries"})

	if got := strings.Join(c.Names(), ","); got != "Sun,Moon,Mars" {
		t.Errorf("Names() = %s, want Sun,Moon,Mars", got)
	}
	if attrs, _ := c.Get("Sun"); attrs["Sign"] != "Aries" {
		t.Errorf("Get(Sun) = %v, want replaced attributes", attrs)
	}
	if attrs, ok := c.Get("Mars"); !ok || attrs == nil {
		t.Errorf("Get(Mars) = %v, %v; want empty attributes", attrs, ok)
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}

func TestData_Lookup(t *testing.T) {
	d := New("test").
		AddPlanet("Sun", Attributes{"Sign": "Capricorn"}).
		AddPoint("Asc", Attributes{"Sign": "Taurus"}).
		AddHouse(1, Attributes{"Sign": "Taurus"}).
		AddAspect(Attributes{"Type": "Trine"})

	if _, ok := d.Entity("Sun"); !ok {
		t.Error("Entity(Sun) not found")
	}
	if _, ok := d.Entity("Asc"); !ok {
		t.Error("Entity(Asc) should resolve through points")
	}
	if _, ok := d.Entity("1"); ok {
		t.Error("houses must not be part of the entity namespace")
	}
	if _, ok := d.House(1); !ok {
		t.Error("House(1) not found")
	}

	for _, cat := range []string{CategoryPlanets, CategoryHouses, CategoryAspects} {
		members, ok := d.Members(cat)
		if !ok || len(members) != 1 {
			t.Errorf("Members(%s) = %v, %v", cat, members, ok)
		}
	}
	if _, ok := d.Members("signs"); ok {
		t.Error("Members(signs) should fail")
	}
	if got := strings.Join(d.EntityNames(), ","); got != "Sun,Asc" {
		t.Errorf("EntityNames() = %s", got)
	}
}

func TestDecode_Attributes(t *testing.T) {
	doc := `
name: sample
planets:
  Sun: {Sign: Capricorn, House: 9, Retrograde: false, Degree: 17.5}
  Moon: {Sign: Cancer, House: 3}
  Mercury: {Sign: Sagittarius, House: 8, Retrograde: true}
houses:
  1: {Sign: Taurus, Cusp: 45.6}
  2: {Sign: Gemini, Cusp: 70.1}
aspects:
  - {Planet1: Sun, Planet2: Moon, Type: Opposition, Orb: 1.2}
`
	d, err := Decode(strings.NewReader(doc), ConvertOptions{})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if d.Name != "sample" {
		t.Errorf("Name = %q, want sample", d.Name)
	}
	if got := strings.Join(d.Planets.Names(), ","); got != "Sun,Moon,Mercury" {
		t.Errorf("planet order = %s", got)
	}
	sun, _ := d.Entity("Sun")
	if sun["House"] != 9 || sun["Retrograde"] != false || sun["Degree"] != 17.5 {
		t.Errorf("Sun attributes = %v", sun)
	}
	if h, _ := d.House(2); h["Sign"] != "Gemini" {
		t.Errorf("house 2 = %v", h)
	}
	if len(d.Aspects) != 1 || d.Aspects[0]["Type"] != "Opposition" {
		t.Errorf("aspects = %v", d.Aspects)
	}
}

func TestDecode_JSON(t *testing.T) {
	doc := `{"planets": {"Mars": {"Sign": "Aries", "Retrograde": false}}, "houses": [{"Sign": "Leo"}]}`
	d, err := Decode(strings.NewReader(doc), ConvertOptions{})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if mars, _ := d.Entity("Mars"); mars["Sign"] != "Aries" {
		t.Errorf("Mars = %v", mars)
	}
	if h, ok := d.House(1); !ok || h["Sign"] != "Leo" {
		t.Errorf("house 1 = %v, %v", h, ok)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		contains string
	}{
		{"empty", "", "empty chart document"},
		{"not mapping", "- a\n- b\n", "chart must be a mapping"},
		{"unknown section", "signs: {}\n", "unknown chart section"},
		{"bad house key", "houses:\n  first: {Sign: Leo}\n", "not a positive number"},
		{"scalar planet", "planets:\n  Sun: Leo\n", "expected a mapping of attributes"},
		{"null attribute", "planets:\n  Sun: {Sign: ~}\n", "has no value"},
		{"nested attribute", "planets:\n  Sun: {Sign: {a: b}}\n", "must be a scalar or a list"},
		{"mixed forms", "planets: {}\npositions: {cusps: []}\n", "cannot be combined"},
		{"missing longitude", "positions:\n  bodies:\n    Sun: {speed: 1}\n", "has no longitude"},
		{"bad cusp count", "positions:\n  bodies:\n    Sun: {longitude: 1}\n  cusps: [1, 2]\n", "need 12 house cusps"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc), ConvertOptions{})
			if err == nil {
				t.Fatal("Decode() expected error")
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error = %q, want to contain %q", err, tt.contains)
			}
		})
	}
}

func TestFromPositions(t *testing.T) {
	cusps := make([]float64, 12)
	for i := range cusps {
		cusps[i] = float64(45 + 30*i)
	}
	p := Positions{
		Bodies: []Body{
			{Name: "Sun", Longitude: 287.5, Speed: 1.02},
			{Name: "Moon", Longitude: 107.5, Speed: 13.1},
			{Name: "Mars", Longitude: 10, Speed: -0.3},
			{Name: "NorthNode", Longitude: 200, Speed: -0.05},
		},
		Cusps: cusps,
	}

	d, err := FromPositions("converted", p, ConvertOptions{})
	if err != nil {
		t.Fatalf("FromPositions() error = %v", err)
	}

	sun, _ := d.Entity("Sun")
	if sun["Sign"] != "Capricorn" || sun["Degree"] != 17.5 || sun["Dignity"] != "Neutral" {
		t.Errorf("Sun = %v", sun)
	}
	if sun["House"] != 9 {
		t.Errorf("Sun house = %v, want 9", sun["House"])
	}

	mars, _ := d.Entity("Mars")
	if mars["Retrograde"] != true || mars["Dignity"] != "Rulership" {
		t.Errorf("Mars = %v", mars)
	}

	node, ok := d.Entity("NorthNode")
	if !ok {
		t.Fatal("NorthNode should be a point")
	}
	if node["Retrograde"] != false {
		t.Errorf("NorthNode retrograde = %v, want false", node["Retrograde"])
	}
	if _, ok := d.Planets.Get("NorthNode"); ok {
		t.Error("NorthNode must not be listed among planets")
	}

	if d.Houses.Len() != 12 {
		t.Errorf("houses = %d, want 12", d.Houses.Len())
	}
	if asc, ok := d.Entity("Asc"); !ok || asc["Sign"] != "Taurus" {
		t.Errorf("Asc = %v, %v", asc, ok)
	}
	if mc, _ := d.Entity("MC"); mc["Sign"] != "Aquarius" {
		t.Errorf("MC = %v", mc)
	}

	var opposition bool
	for _, a := range d.Aspects {
		if a["Planet1"] == "Sun" && a["Planet2"] == "Moon" && a["Type"] == "Opposition" {
			opposition = true
		}
	}
	if !opposition {
		t.Errorf("expected Sun/Moon opposition in %v", d.Aspects)
	}
}

func TestFromPositions_NoCusps(t *testing.T) {
	d, err := FromPositions("", Positions{Bodies: []Body{{Name: "Venus", Longitude: 45}}}, ConvertOptions{})
	if err != nil {
		t.Fatalf("FromPositions() error = %v", err)
	}
	venus, _ := d.Entity("Venus")
	if _, ok := venus["House"]; ok {
		t.Error("House must be absent without cusps")
	}
	if venus["Dignity"] != "Rulership" {
		t.Errorf("Venus in Taurus dignity = %v", venus["Dignity"])
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "natal-1990.yaml")
	doc := "positions:\n  bodies:\n    Sun: {longitude: 15}\n    Jupiter: {longitude: 105, retrograde: true}\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := Load(path, ConvertOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if d.Name != "natal-1990" {
		t.Errorf("Name = %q, want natal-1990", d.Name)
	}
	jup, _ := d.Entity("Jupiter")
	if jup["Retrograde"] != true || jup["Dignity"] != "Exaltation" {
		t.Errorf("Jupiter = %v", jup)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml"), ConvertOptions{}); err == nil {
		t.Error("Load() of missing file expected error")
	}
}

func TestData_NilReceiver(t *testing.T) {
	var d *Data

	if _, ok := d.Entity("Sun"); ok {
		t.Error("Entity() found Sun in a nil chart")
	}
	if _, ok := d.House(1); ok {
		t.Error("House() found house 1 in a nil chart")
	}
	for _, category := range []string{CategoryPlanets, CategoryHouses, CategoryAspects} {
		members, ok := d.Members(category)
		if !ok || len(members) != 0 {
			t.Errorf("Members(%q) = %v, %v; want empty, true", category, members, ok)
		}
	}
	if _, ok := d.Members("moons"); ok {
		t.Error("Members(\"moons\") ok on a nil chart")
	}
	if names := d.EntityNames(); len(names) != 0 {
		t.Errorf("EntityNames() = %v, want none", names)
	}
	if names := d.PropertyNames(); len(names) != 0 {
		t.Errorf("PropertyNames() = %v, want none", names)
	}
}
