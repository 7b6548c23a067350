package menu

import (
	"io"
	"log/slog"
	"sync"
)

// ExportMenu holds the enabled state of the export menu item. UI
// commands flip it synchronously; the optional observer runs after each
// actual transition, outside the lock.
type ExportMenu struct {
	logger *slog.Logger

	mu      sync.Mutex
	enabled bool
	notify  func(enabled bool)
}

func NewExportMenu(logger *slog.Logger) *ExportMenu {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &ExportMenu{logger: logger}
}

// OnChange registers the observer for state transitions. Repeated sets
// to the same value do not fire it.
func (m *ExportMenu) OnChange(fn func(enabled bool)) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.notify = fn
	m.mu.Unlock()
}

func (m *ExportMenu) SetExportEnabled(enabled bool) {
	if m == nil {
		return
	}
	m.mu.Lock()
	changed := m.enabled != enabled
	m.enabled = enabled
	notify := m.notify
	m.mu.Unlock()

	if !changed {
		return
	}
	m.logger.Info("export menu toggled", "enabled", enabled)
	if notify != nil {
		notify(enabled)
	}
}

func (m *ExportMenu) Enabled() bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}
