package preset

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"orrery-hq/natal/pkg/config"
	"orrery-hq/natal/pkg/telemetry/metrics"
)

// Event describes one reload attempt.
type Event struct {
	Version string
	Count   int
	Err     error
	Time    time.Time
}

// Manager loads presets into a Registry and keeps them current. A failed
// reload leaves the previous set in place.
type Manager struct {
	config   config.PresetsConfig
	loader   *Loader
	registry *Registry
	metrics  *metrics.Collector
	logger   *slog.Logger

	mu            sync.Mutex
	lastLoadError error
	subscribers   []chan<- Event
}

// NewManager creates a manager for the configured preset path. collector may be nil.
func NewManager(cfg config.PresetsConfig, loader *Loader, collector *metrics.Collector, logger *slog.Logger) (*Manager, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("preset path cannot be empty")
	}
	if loader == nil {
		loader = NewLoader(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		config:   cfg,
		loader:   loader,
		registry: NewRegistry(),
		metrics:  collector,
		logger:   logger.With("component", "preset.manager"),
	}, nil
}

// Registry returns the registry the manager fills.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Load reads presets and replaces the registry contents.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	presets, err := m.loader.Load(m.config.Path)
	if err == nil {
		err = m.registry.Replace(presets)
	}

	m.lastLoadError = err
	m.metrics.RecordPresetReload(err == nil, m.registry.Len())

	event := Event{Version: m.registry.Version(), Count: m.registry.Len(), Err: err, Time: time.Now()}
	m.notify(event)

	if err != nil {
		m.logger.Error("failed to load presets",
			"path", m.config.Path,
			"error", err,
			"kept", m.registry.Len(),
		)
		return err
	}

	m.logger.Info("presets loaded",
		"path", m.config.Path,
		"count", len(presets),
		"version", event.Version,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// LastLoadError returns the error from the most recent load, if any.
func (m *Manager) LastLoadError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastLoadError
}

// Subscribe registers ch to receive reload events. Sends never block; a
// full channel misses the event.
func (m *Manager) Subscribe(ch chan<- Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, ch)
}

func (m *Manager) notify(e Event) {
	for _, ch := range m.subscribers {
		select {
		case ch <- e:
		default:
		}
	}
}

// Watch reloads presets on file changes until ctx is cancelled.
func (m *Manager) Watch(ctx context.Context) error {
	cfg := DefaultWatcherConfig()
	cfg.Path = m.config.Path
	if m.config.Debounce > 0 {
		cfg.Debounce = m.config.Debounce
	}

	w, err := NewWatcher(cfg, m.logger)
	if err != nil {
		return err
	}
	defer w.Stop()

	return w.Watch(ctx, m.Load)
}
