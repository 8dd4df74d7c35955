// Package settings owns the single Settings instance.
//
// Readers get a copy of the current value without locking. Writers are
// serialized; an update is validated and persisted before it becomes
// visible, so readers observe either the old or the new settings.
package settings

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/starford/reconnect/internal/apperr"
	"github.com/starford/reconnect/internal/checksum"
	"github.com/starford/reconnect/internal/models"
	"github.com/starford/reconnect/internal/store"
)

// Manager holds the current settings and persists updates.
type Manager struct {
	store store.SettingsStore

	mu  sync.Mutex
	cur atomic.Pointer[models.Settings]
}

// NewManager loads the stored settings, or saves defaults when none exist.
func NewManager(ctx context.Context, st store.SettingsStore, defaults models.Settings) (*Manager, error) {
	m := &Manager{store: st}

	s, err := st.LoadSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("settings: load: %w", err)
	}
	if s == nil {
		d := defaults.Clone()
		d.DefaultFrequencies = models.PositiveOnly(d.DefaultFrequencies)
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("settings: invalid defaults: %w", err)
		}
		if err := st.SaveSettings(ctx, d); err != nil {
			return nil, fmt.Errorf("settings: save defaults: %w", err)
		}
		s = &d
	}
	m.cur.Store(s)
	return m, nil
}

// Get returns a copy of the current settings.
func (m *Manager) Get() models.Settings {
	return m.cur.Load().Clone()
}

// Version returns the checksum of the current settings, usable as an ETag.
func (m *Manager) Version() string {
	return Version(*m.cur.Load())
}

// Version returns the checksum of s.
func Version(s models.Settings) string {
	return checksum.Of(s.Clone())
}

// Update merges patch over the current settings, validates the result, and
// replaces the settings as a whole. A non-empty ifMatch must equal the
// current Version or the update fails with a Conflict error.
func (m *Manager) Update(ctx context.Context, patch models.SettingsPatch, ifMatch string) (models.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := *m.cur.Load()
	if ifMatch != "" && ifMatch != Version(cur) {
		return models.Settings{}, apperr.Conflict("settings changed since they were read")
	}

	next := patch.ApplyTo(cur)
	if err := next.Validate(); err != nil {
		return models.Settings{}, apperr.Validation(err)
	}
	if err := m.store.SaveSettings(ctx, next); err != nil {
		return models.Settings{}, err
	}
	m.cur.Store(&next)
	return next.Clone(), nil
}
