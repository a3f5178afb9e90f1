package preset

import (
	"fmt"
	"strings"

	"orrery-hq/natal/pkg/formula"
)

// Preset is a named formula.
type Preset struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Formula     string   `yaml:"formula" json:"formula"`
	Tags        []string `yaml:"tags,omitempty" json:"tags,omitempty"`

	// Source is the file the preset was read from.
	Source string `yaml:"-" json:"source,omitempty"`

	// Compiled is set by the loader.
	Compiled *formula.Formula `yaml:"-" json:"-"`
}

// HasTag reports whether the preset carries tag, ignoring case.
func (p *Preset) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// file is the document layout of a preset file.
type file struct {
	Presets []*Preset `yaml:"presets"`
}

// LoadError reports a preset file that could not be read or compiled.
type LoadError struct {
	FilePath string
	Preset   string // Empty for file-level problems
	Message  string
	Cause    error
}

func (e *LoadError) Error() string {
	var sb strings.Builder
	sb.WriteString("preset load error")
	if e.FilePath != "" {
		fmt.Fprintf(&sb, " in %s", e.FilePath)
	}
	if e.Preset != "" {
		fmt.Fprintf(&sb, " (preset %q)", e.Preset)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&sb, ": %v", e.Cause)
	}
	return sb.String()
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// DuplicateError reports a preset name defined twice.
type DuplicateError struct {
	Name   string
	First  string
	Second string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate preset %q defined in %s and %s", e.Name, e.First, e.Second)
}
