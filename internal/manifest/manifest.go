// Package manifest implements the per-run registry of exported build
// settings, keyed by canonical unit identifier. An entry in the manifest is
// the proof that a unit has been built this run; registration is write-once
// and entries are never removed, which is what gives the engine its
// at-most-once-build guarantee.
package manifest

import (
	"errors"
	"fmt"

	"github.com/vk/quickbuildgo/internal/settings"
)

var (
	// ErrUnregisteredUnit is returned when settings are requested for a unit
	// identifier that was never built. Hitting it is always an engine defect.
	ErrUnregisteredUnit = errors.New("unit not registered in build manifest")

	// ErrDuplicateRegistration is returned when a unit attempts to register
	// exported settings a second time.
	ErrDuplicateRegistration = errors.New("unit already registered in build manifest")
)

// Manifest maps unit identifiers to their exported build settings.
type Manifest struct {
	entries map[string]*settings.Settings
	order   []string
}

// New creates an empty manifest. One manifest lives for one orchestration run.
func New() *Manifest {
	return &Manifest{
		entries: make(map[string]*settings.Settings),
	}
}

// Has reports whether the given unit identifier has been registered.
func (m *Manifest) Has(id string) bool {
	_, ok := m.entries[id]
	return ok
}

// Get returns the exported settings registered for id. The returned value is
// shared and must not be modified; merge it into a fresh context instead.
func (m *Manifest) Get(id string) (*settings.Settings, error) {
	s, ok := m.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnregisteredUnit, id)
	}
	return s, nil
}

// Set registers the exported settings for id. Registration is write-once: a
// second Set for the same identifier fails with ErrDuplicateRegistration.
// The manifest stores its own copy, so later mutation of s has no effect.
func (m *Manifest) Set(id string, s *settings.Settings) error {
	if _, ok := m.entries[id]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateRegistration, id)
	}
	if s == nil {
		s = settings.New()
	}
	m.entries[id] = s.Clone()
	m.order = append(m.order, id)
	return nil
}

// Len returns the number of registered units.
func (m *Manifest) Len() int {
	return len(m.entries)
}

// IDs returns the registered unit identifiers in registration order.
func (m *Manifest) IDs() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}
