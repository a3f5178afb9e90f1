package preset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"orrery-hq/natal/pkg/formula"
)

// LoaderConfig controls how preset files are discovered.
type LoaderConfig struct {
	// MaxFileSize bounds a single preset file in bytes.
	MaxFileSize int64

	// Extensions are the file extensions read from directories.
	Extensions []string

	// SkipHidden ignores dot files and dot directories.
	SkipHidden bool
}

// DefaultLoaderConfig returns the default loader configuration.
func DefaultLoaderConfig() *LoaderConfig {
	return &LoaderConfig{
		MaxFileSize: 1024 * 1024,
		Extensions:  []string{".yaml", ".yml"},
		SkipHidden:  true,
	}
}

// Loader reads and compiles preset files.
type Loader struct {
	config  *LoaderConfig
	options []formula.Option
}

// NewLoader creates a loader. Compile options apply to every preset formula.
func NewLoader(cfg *LoaderConfig, opts ...formula.Option) *Loader {
	if cfg == nil {
		cfg = DefaultLoaderConfig()
	}
	return &Loader{config: cfg, options: opts}
}

// Load reads a preset file or every preset file under a directory. Names
// must be unique across all files. Every problem found is reported, joined
// into one error; no presets are returned unless all of them load.
func (l *Loader) Load(path string) ([]*Preset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{FilePath: path, Message: "failed to access path", Cause: err}
	}

	files := []string{path}
	if info.IsDir() {
		if files, err = l.collect(path); err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, &LoadError{FilePath: path, Message: "no preset files found in directory"}
		}
	}

	var presets []*Preset
	var errs []error
	seen := make(map[string]string)

	for _, f := range files {
		loaded, err := l.LoadFile(f)
		if err != nil {
			errs = append(errs, err)
		}
		for _, p := range loaded {
			if first, ok := seen[p.Name]; ok {
				errs = append(errs, &DuplicateError{Name: p.Name, First: first, Second: p.Source})
				continue
			}
			seen[p.Name] = p.Source
			presets = append(presets, p)
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return presets, nil
}

// LoadFile reads and compiles one preset file. Presets that compile are
// returned alongside the error describing those that did not.
func (l *Loader) LoadFile(path string) ([]*Preset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{FilePath: path, Message: "failed to access file", Cause: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &LoadError{FilePath: path, Message: "not a regular file"}
	}
	if info.Size() > l.config.MaxFileSize {
		return nil, &LoadError{
			FilePath: path,
			Message:  fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", info.Size(), l.config.MaxFileSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{FilePath: path, Message: "failed to read file", Cause: err}
	}
	if !utf8.Valid(data) {
		return nil, &LoadError{FilePath: path, Message: "file contains invalid UTF-8 encoding"}
	}

	return l.Parse(path, data)
}

// Parse compiles presets from document data. source names the document in
// errors and in Preset.Source.
func (l *Loader) Parse(source string, data []byte) ([]*Preset, error) {
	var doc file
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{FilePath: source, Message: "YAML parsing failed", Cause: err}
	}

	var presets []*Preset
	var errs []error
	seen := make(map[string]bool)

	for i, p := range doc.Presets {
		if p == nil {
			errs = append(errs, &LoadError{FilePath: source, Message: fmt.Sprintf("preset %d is empty", i+1)})
			continue
		}
		p.Name = strings.TrimSpace(p.Name)
		p.Source = source
		switch {
		case p.Name == "":
			errs = append(errs, &LoadError{FilePath: source, Message: fmt.Sprintf("preset %d has no name", i+1)})
			continue
		case seen[p.Name]:
			errs = append(errs, &DuplicateError{Name: p.Name, First: source, Second: source})
			continue
		case strings.TrimSpace(p.Formula) == "":
			errs = append(errs, &LoadError{FilePath: source, Preset: p.Name, Message: "formula is empty"})
			continue
		}
		seen[p.Name] = true

		compiled, err := formula.Compile(p.Formula, l.options...)
		if err != nil {
			errs = append(errs, &LoadError{FilePath: source, Preset: p.Name, Message: "formula does not compile", Cause: err})
			continue
		}
		p.Compiled = compiled
		presets = append(presets, p)
	}

	return presets, errors.Join(errs...)
}

// collect returns the preset files under dir in lexical order.
func (l *Loader) collect(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if l.config.SkipHidden && strings.HasPrefix(d.Name(), ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if l.hasExtension(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, &LoadError{FilePath: dir, Message: "failed to walk directory", Cause: err}
	}
	slices.Sort(files)
	return files, nil
}

func (l *Loader) hasExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range l.config.Extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
