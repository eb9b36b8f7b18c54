// Package settings implements the ordered build-settings multimap that flows
// from dependency units into their dependents. Setting names keep insertion
// order and values are deduplicated on append, so that ordering-sensitive
// consumers downstream (library link order in particular) see dependencies
// in the order they were declared.
package settings

// Well-known setting names understood by the default toolchain builder.
// Descriptors may carry arbitrary additional names; the engine merges them
// all the same way.
const (
	IncludePath = "include_path"
	Libraries   = "libraries"
	LibraryPath = "library_path"
	CFlags      = "cflags"
	LDFlags     = "ldflags"
)

// Settings is an ordered multimap from setting name to a list of values.
type Settings struct {
	names  []string
	values map[string][]string
}

// New creates and returns an initialized, empty Settings map.
func New() *Settings {
	return &Settings{
		values: make(map[string][]string),
	}
}

// Append adds the given values under name, skipping any value already
// present for that name. A name seen for the first time is recorded after
// all previously seen names.
func (s *Settings) Append(name string, values ...string) {
	existing, known := s.values[name]
	if !known {
		s.names = append(s.names, name)
	}
	for _, v := range values {
		if contains(existing, v) {
			continue
		}
		existing = append(existing, v)
	}
	s.values[name] = existing
}

// Merge append-unique-merges every setting from other into s, in other's
// name order. s is modified in place; other is left untouched.
func (s *Settings) Merge(other *Settings) {
	if other == nil {
		return
	}
	for _, name := range other.names {
		s.Append(name, other.values[name]...)
	}
}

// Values returns a copy of the value list for name, or nil if the name has
// never been appended.
func (s *Settings) Values(name string) []string {
	vals, ok := s.values[name]
	if !ok {
		return nil
	}
	out := make([]string, len(vals))
	copy(out, vals)
	return out
}

// Names returns a copy of the setting names in insertion order.
func (s *Settings) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of distinct setting names.
func (s *Settings) Len() int {
	return len(s.names)
}

// Clone returns a deep copy of s. Mutating the clone never affects the
// original.
func (s *Settings) Clone() *Settings {
	out := New()
	out.Merge(s)
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
