package preset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"orrery-hq/natal/pkg/chart"
	"orrery-hq/natal/pkg/config"
	formulaErrors "orrery-hq/natal/pkg/formula/errors"
	"orrery-hq/natal/pkg/telemetry/logging"
	"orrery-hq/natal/pkg/telemetry/metrics"
)

const basicPresets = `
presets:
  - name: sun-cap
    description: Sun in Capricorn
    formula: Sun.Sign == Capricorn
    tags: [sun, earth]
  - name: mars-rx
    formula: Mars.Retrograde
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoader_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	writeFile(t, path, basicPresets)

	presets, err := NewLoader(nil).Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(presets) != 2 {
		t.Fatalf("Load() returned %d presets, want 2", len(presets))
	}

	p := presets[0]
	if p.Name != "sun-cap" || p.Description != "Sun in Capricorn" || p.Source != path {
		t.Errorf("preset = %+v", p)
	}
	if !p.HasTag("EARTH") || p.HasTag("fire") {
		t.Errorf("HasTag() wrong for tags %v", p.Tags)
	}
	if p.Compiled == nil {
		t.Fatal("preset not compiled")
	}

	c := chart.New("alice").AddPlanet("Sun", chart.Attributes{"Sign": "Capricorn"})
	ok, err := p.Compiled.Check(context.Background(), c)
	if err != nil || !ok {
		t.Errorf("compiled preset Check() = %v, %v; want true", ok, err)
	}
}

func TestLoader_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.yaml"), basicPresets)
	writeFile(t, filepath.Join(dir, "a", "moon.yml"), "presets:\n  - name: moon-cancer\n    formula: Moon.Sign == Cancer\n")
	writeFile(t, filepath.Join(dir, ".hidden", "x.yaml"), "presets: [{name: hidden, formula: 'True'}]\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "not a preset")

	presets, err := NewLoader(nil).Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	var names []string
	for _, p := range presets {
		names = append(names, p.Name)
	}
	if got := strings.Join(names, ","); got != "moon-cancer,sun-cap,mars-rx" {
		t.Errorf("loaded %s, want moon-cancer,sun-cap,mars-rx", got)
	}
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "empty directory",
			files:   map[string]string{"readme.md": "x"},
			wantErr: "no preset files found",
		},
		{
			name:    "bad yaml",
			files:   map[string]string{"p.yaml": "presets: [name: x"},
			wantErr: "YAML parsing failed",
		},
		{
			name:    "missing name",
			files:   map[string]string{"p.yaml": "presets:\n  - formula: 'True'\n"},
			wantErr: "preset 1 has no name",
		},
		{
			name:    "empty formula",
			files:   map[string]string{"p.yaml": "presets:\n  - name: x\n"},
			wantErr: "formula is empty",
		},
		{
			name:    "compile error",
			files:   map[string]string{"p.yaml": "presets:\n  - name: broken\n    formula: Sun.Sign ==\n"},
			wantErr: `preset "broken"`,
		},
		{
			name:    "duplicate in file",
			files:   map[string]string{"p.yaml": "presets:\n  - {name: x, formula: 'True'}\n  - {name: x, formula: 'False'}\n"},
			wantErr: `duplicate preset "x"`,
		},
		{
			name: "duplicate across files",
			files: map[string]string{
				"a.yaml": "presets:\n  - {name: x, formula: 'True'}\n",
				"b.yaml": "presets:\n  - {name: x, formula: 'False'}\n",
			},
			wantErr: `duplicate preset "x"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.files {
				writeFile(t, filepath.Join(dir, name), content)
			}
			presets, err := NewLoader(nil).Load(dir)
			if err == nil {
				t.Fatalf("Load() = %d presets, want error", len(presets))
			}
			if presets != nil {
				t.Errorf("Load() returned presets alongside error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoader_CompileErrorKeepsDiagnostic(t *testing.T) {
	_, err := NewLoader(nil).Parse("inline", []byte("presets:\n  - name: broken\n    formula: Sun.Sign = Leo\n"))

	var lerr *LoadError
	if !errors.As(err, &lerr) || lerr.Preset != "broken" {
		t.Fatalf("error = %v, want *LoadError for preset broken", err)
	}
	if kind := formulaErrors.KindOf(err); kind != formulaErrors.ErrorTypeLex {
		t.Errorf("KindOf() = %q, want lex", kind)
	}
}

func TestLoader_MissingPath(t *testing.T) {
	_, err := NewLoader(nil).Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want os.ErrNotExist", err)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if r.Version() != "" || r.Len() != 0 {
		t.Fatal("new registry not empty")
	}

	presets, err := NewLoader(nil).Parse("inline", []byte(basicPresets))
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Replace(presets); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	v1 := r.Version()
	if v1 == "" {
		t.Error("Version() empty after Replace")
	}
	if _, ok := r.Get("mars-rx"); !ok {
		t.Error("Get(mars-rx) not found")
	}
	if got := r.WithTag("sun"); len(got) != 1 || got[0].Name != "sun-cap" {
		t.Errorf("WithTag(sun) = %v", got)
	}

	if err := r.Replace(presets); err != nil {
		t.Fatal(err)
	}
	if r.Version() != v1 {
		t.Error("Version() changed for identical presets")
	}

	if err := r.Replace(presets[:1]); err != nil {
		t.Fatal(err)
	}
	if r.Version() == v1 || r.Len() != 1 {
		t.Errorf("Replace did not swap the set: len=%d", r.Len())
	}

	dup := []*Preset{{Name: "a", Source: "x"}, {Name: "a", Source: "y"}}
	var derr *DuplicateError
	if err := r.Replace(dup); !errors.As(err, &derr) {
		t.Errorf("Replace(duplicates) error = %v, want *DuplicateError", err)
	}
	if r.Len() != 1 {
		t.Error("failed Replace modified the registry")
	}
}

func TestManager_ReloadKeepsLastGood(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	writeFile(t, path, basicPresets)

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true, Namespace: "test"}, reg)

	m, err := NewManager(config.PresetsConfig{Path: path}, nil, collector, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	events := make(chan Event, 4)
	m.Subscribe(events)

	if err := m.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if e := <-events; e.Err != nil || e.Count != 2 {
		t.Errorf("event = %+v", e)
	}

	writeFile(t, path, "presets:\n  - name: broken\n    formula: (Sun\n")
	if err := m.Load(); err == nil {
		t.Fatal("Load() of broken file succeeded")
	}
	if m.Registry().Len() != 2 {
		t.Errorf("registry len = %d after failed reload, want 2", m.Registry().Len())
	}
	if m.LastLoadError() == nil {
		t.Error("LastLoadError() = nil after failed reload")
	}
	if e := <-events; e.Err == nil || e.Count != 2 {
		t.Errorf("failure event = %+v", e)
	}

	if n := testutil.CollectAndCount(reg, "test_preset_reloads_total"); n != 2 {
		t.Errorf("reload series = %d, want 2", n)
	}
}

func TestNewManager_EmptyPath(t *testing.T) {
	if _, err := NewManager(config.PresetsConfig{}, nil, nil, nil); err == nil {
		t.Error("NewManager() accepted an empty path")
	}
}

func TestManager_Watch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "presets.yaml")
	writeFile(t, path, basicPresets)

	m, err := NewManager(config.PresetsConfig{Path: dir, Debounce: 20 * time.Millisecond}, nil, nil, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}
	events := make(chan Event, 8)
	m.Subscribe(events)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Watch(ctx) }()

	// give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)
	writeFile(t, filepath.Join(dir, "more.yaml"), "presets:\n  - {name: extra, formula: 'True'}\n")

	select {
	case e := <-events:
		if e.Err != nil || e.Count != 3 {
			t.Errorf("reload event = %+v, want 3 presets", e)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after file change")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch() error = %v", err)
	}
}

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var calls atomic.Int32
	var last atomic.Int32

	for i := 1; i <= 5; i++ {
		n := int32(i)
		d.Trigger(func() {
			calls.Add(1)
			last.Store(n)
		})
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)

	if calls.Load() != 1 {
		t.Errorf("callback ran %d times, want 1", calls.Load())
	}
	if last.Load() != 5 {
		t.Errorf("callback from trigger %d ran, want the last one", last.Load())
	}

	d.Stop()
	d.Trigger(func() { calls.Add(1) })
	time.Sleep(80 * time.Millisecond)
	if calls.Load() != 1 {
		t.Error("callback ran after Stop()")
	}
}
