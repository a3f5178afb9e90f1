package chart

import (
	"sort"
	"strconv"
)

// Attributes are the properties of one chart entry. Values are strings,
// booleans, numbers or lists of those.
type Attributes = map[string]any

// Category names accepted by Members.
const (
	CategoryPlanets = "planets"
	CategoryHouses  = "houses"
	CategoryAspects = "aspects"
)

// Entry is a named member of a category.
type Entry struct {
	Name       string
	Attributes Attributes
}

// Category is an insertion-ordered set of named entries. The zero value is
// an empty category ready to use.
type Category struct {
	entries []Entry
	index   map[string]int
}

// Set adds or replaces an entry. A replaced entry keeps its position.
func (c *Category) Set(name string, attrs Attributes) {
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if attrs == nil {
		attrs = Attributes{}
	}
	if i, ok := c.index[name]; ok {
		c.entries[i].Attributes = attrs
		return
	}
	c.index[name] = len(c.entries)
	c.entries = append(c.entries, Entry{Name: name, Attributes: attrs})
}

// Get returns the attributes of a named entry.
func (c *Category) Get(name string) (Attributes, bool) {
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return c.entries[i].Attributes, true
}

// Names returns entry names in insertion order.
func (c *Category) Names() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Name
	}
	return out
}

// Entries returns the entries in insertion order.
func (c *Category) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Len returns the number of entries.
func (c *Category) Len() int { return len(c.entries) }

func (c *Category) attributes() []map[string]any {
	out := make([]map[string]any, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Attributes
	}
	return out
}

// Data is the read-only snapshot of one chart that formulas are evaluated
// against. Build it once, then share it; nothing in this module mutates a
// Data after construction.
type Data struct {
	Name    string
	Planets Category
	Houses  Category // Keyed by house number, "1" to "12"
	Points  Category // Angles and other points, addressable like planets
	Aspects []Attributes
}

// New creates an empty chart.
func New(name string) *Data {
	return &Data{Name: name}
}

// AddPlanet adds or replaces a planet.
func (d *Data) AddPlanet(name string, attrs Attributes) *Data {
	d.Planets.Set(name, attrs)
	return d
}

// AddHouse adds or replaces a house.
func (d *Data) AddHouse(number int, attrs Attributes) *Data {
	d.Houses.Set(strconv.Itoa(number), attrs)
	return d
}

// AddPoint adds or replaces a point such as Asc or MC.
func (d *Data) AddPoint(name string, attrs Attributes) *Data {
	d.Points.Set(name, attrs)
	return d
}

// AddAspect appends an aspect.
func (d *Data) AddAspect(attrs Attributes) *Data {
	d.Aspects = append(d.Aspects, attrs)
	return d
}

// House returns the attributes of house number n.
func (d *Data) House(n int) (Attributes, bool) {
	if d == nil {
		return nil, false
	}
	return d.Houses.Get(strconv.Itoa(n))
}

// Entity looks name up among the planets, then among the points. A nil
// chart behaves like an empty one.
func (d *Data) Entity(name string) (map[string]any, bool) {
	if d == nil {
		return nil, false
	}
	if attrs, ok := d.Planets.Get(name); ok {
		return attrs, true
	}
	return d.Points.Get(name)
}

// Members returns the entries of a category in order.
func (d *Data) Members(category string) ([]map[string]any, bool) {
	if d == nil {
		switch category {
		case CategoryPlanets, CategoryHouses, CategoryAspects:
			return nil, true
		}
		return nil, false
	}
	switch category {
	case CategoryPlanets:
		return d.Planets.attributes(), true
	case CategoryHouses:
		return d.Houses.attributes(), true
	case CategoryAspects:
		out := make([]map[string]any, len(d.Aspects))
		copy(out, d.Aspects)
		return out, true
	}
	return nil, false
}

// EntityNames returns planet and point names, planets first.
func (d *Data) EntityNames() []string {
	if d == nil {
		return nil
	}
	return append(d.Planets.Names(), d.Points.Names()...)
}

// PropertyNames returns the sorted union of attribute names across planets and points.
func (d *Data) PropertyNames() []string {
	if d == nil {
		return nil
	}
	seen := map[string]bool{}
	for _, c := range []*Category{&d.Planets, &d.Points} {
		for _, e := range c.entries {
			for k := range e.Attributes {
				seen[k] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
