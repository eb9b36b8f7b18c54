package engine

import (
	"errors"

	"github.com/vk/quickbuildgo/internal/builder"
	"github.com/vk/quickbuildgo/internal/export"
	"github.com/vk/quickbuildgo/internal/manifest"
	"github.com/vk/quickbuildgo/internal/resolve"
	"github.com/vk/quickbuildgo/internal/settings"
	"github.com/vk/quickbuildgo/internal/variant"
)

// ErrCyclicDependency is returned when a unit transitively depends on
// itself. The error message names the dependency chain that closed the
// cycle.
var ErrCyclicDependency = errors.New("cyclic unit dependency")

// sourceExtensions are the file suffixes collected from a unit's src
// directory as compilation inputs.
var sourceExtensions = []string{".c", ".cpp", ".cc"}

// Project owns all per-run orchestration state: the resolved project root,
// the selected variant, the ambient base settings, the build manifest, and
// the external builder. It is constructed once per run and passed by
// reference; nothing here is safe for concurrent use, and nothing needs to
// be, since scheduling is depth-first and single-threaded.
type Project struct {
	root      string
	variant   variant.Variant
	base      *settings.Settings
	resolver  *resolve.Resolver
	manifest  *manifest.Manifest
	builder   builder.Builder
	installer *export.Installer

	// building is the stack of unit identifiers currently being built.
	// Re-entering an identifier on this stack means the dependency graph
	// has a cycle.
	building []string
}

// New creates a Project for one orchestration run. root must be the
// absolute project root directory; base holds the ambient settings every
// unit's build context starts from.
func New(root string, v variant.Variant, base *settings.Settings, b builder.Builder) *Project {
	if base == nil {
		base = settings.New()
	}
	return &Project{
		root:      root,
		variant:   v,
		base:      base,
		resolver:  resolve.New(root),
		manifest:  manifest.New(),
		builder:   b,
		installer: export.NewInstaller(root, v),
	}
}

// Root returns the absolute project root directory.
func (p *Project) Root() string {
	return p.root
}

// Variant returns the variant selected for this run.
func (p *Project) Variant() variant.Variant {
	return p.variant
}

// Manifest returns the run's build manifest. Primarily for inspection and
// testing; the manifest itself enforces write-once registration.
func (p *Project) Manifest() *manifest.Manifest {
	return p.manifest
}

// Resolver returns the run's unit reference resolver.
func (p *Project) Resolver() *resolve.Resolver {
	return p.resolver
}

// Installer returns the run's artifact installer, bound to the variant's
// export tree.
func (p *Project) Installer() *export.Installer {
	return p.installer
}
