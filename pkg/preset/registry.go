package preset

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Registry holds the current preset set. Replace swaps the whole set at
// once, so readers never see a partial reload.
type Registry struct {
	mu       sync.RWMutex
	presets  []*Preset
	byName   map[string]*Preset
	version  string
	loadTime time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Preset)}
}

// Replace installs presets as the complete set.
func (r *Registry) Replace(presets []*Preset) error {
	byName := make(map[string]*Preset, len(presets))
	for _, p := range presets {
		if p == nil || p.Name == "" {
			return &LoadError{Message: "preset without a name"}
		}
		if first, ok := byName[p.Name]; ok {
			return &DuplicateError{Name: p.Name, First: first.Source, Second: p.Source}
		}
		byName[p.Name] = p
	}

	list := make([]*Preset, len(presets))
	copy(list, presets)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.presets = list
	r.byName = byName
	r.version = fingerprint(list)
	r.loadTime = time.Now()
	return nil
}

// Get returns a preset by name.
func (r *Registry) Get(name string) (*Preset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byName[name]
	return p, ok
}

// All returns the presets in load order.
func (r *Registry) All() []*Preset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Preset, len(r.presets))
	copy(out, r.presets)
	return out
}

// WithTag returns the presets carrying tag, in load order.
func (r *Registry) WithTag(tag string) []*Preset {
	var out []*Preset
	for _, p := range r.All() {
		if p.HasTag(tag) {
			out = append(out, p)
		}
	}
	return out
}

// Len returns the number of presets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.presets)
}

// Version is a hash of the preset names and formulas. It changes only when
// the set changes.
func (r *Registry) Version() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// LoadTime returns when the set was last replaced.
func (r *Registry) LoadTime() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadTime
}

func fingerprint(presets []*Preset) string {
	if len(presets) == 0 {
		return ""
	}
	h := sha256.New()
	for _, p := range presets {
		h.Write([]byte(p.Name))
		h.Write([]byte{0})
		h.Write([]byte(p.Formula))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
