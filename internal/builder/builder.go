// Package builder defines the contract between the orchestration engine and
// the external build service that actually compiles, links and archives.
// The engine hands over a fully merged build context and treats any failure
// as fatal; retries, if any, are the builder's own business.
package builder

import (
	"context"

	"github.com/vk/quickbuildgo/internal/settings"
)

// Kind identifies what sort of artifact a unit build produces.
type Kind string

const (
	Program       Kind = "program"
	StaticLibrary Kind = "static_library"
	SharedLibrary Kind = "shared_library"
)

// Valid reports whether k is one of the known unit kinds.
func (k Kind) Valid() bool {
	switch k {
	case Program, StaticLibrary, SharedLibrary:
		return true
	}
	return false
}

// Request describes one unit build.
type Request struct {
	// Kind selects the build procedure.
	Kind Kind
	// Name is the artifact base name (without lib prefix or extension).
	Name string
	// UnitDir is the absolute directory of the unit being built.
	UnitDir string
	// OutDir is the absolute intermediate output directory for this unit
	// and variant. The builder creates it if necessary and places the
	// artifact inside it.
	OutDir string
	// Sources are the absolute paths of the unit's source files.
	Sources []string
	// Settings is the merged build context: the caller's base settings plus
	// everything exported by the unit's dependencies.
	Settings *settings.Settings
}

// Artifact is the handle returned for a successfully built unit.
type Artifact struct {
	// Path is the absolute path of the produced binary or library.
	Path string
}

// Builder compiles and links a single unit. Implementations are synchronous
// and blocking; the call returns only once the artifact exists or the build
// has failed.
type Builder interface {
	Build(ctx context.Context, req Request) (Artifact, error)
}
