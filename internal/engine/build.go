package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/vk/quickbuildgo/internal/builder"
	"github.com/vk/quickbuildgo/internal/ctxlog"
	"github.com/vk/quickbuildgo/internal/descriptor"
	"github.com/vk/quickbuildgo/internal/fsutil"
	"github.com/vk/quickbuildgo/internal/settings"
)

// BuildUnits ensures every referenced unit has been built this run. For
// each reference, in order: resolve it to a canonical identifier, skip it
// if the manifest already has an entry, otherwise run the unit's full build
// procedure (which recurses into its own dependencies first). After a
// trigger the manifest is guaranteed to hold an entry for the identifier,
// so a later reference to the same unit is a no-op.
func (p *Project) BuildUnits(ctx context.Context, currentDir string, refs []string) error {
	for _, ref := range refs {
		id, err := p.resolver.UnitName(currentDir, ref)
		if err != nil {
			return err
		}
		if p.manifest.Has(id) {
			ctxlog.FromContext(ctx).Debug("Unit already built, skipping.", "unit", id)
			continue
		}
		if err := p.buildUnit(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// buildUnit runs the full build procedure for one unit identifier: load its
// descriptor, assemble the build context (base settings + dependency
// exports + local header paths), collect sources, invoke the external
// builder, register exported settings for library kinds, and perform the
// descriptor's exports. On return the manifest always holds an entry for
// id, explicit or implicit.
func (p *Project) buildUnit(ctx context.Context, id string) error {
	logger := ctxlog.FromContext(ctx)

	if slices.Contains(p.building, id) {
		chain := append(slices.Clone(p.building), id)
		return fmt.Errorf("%w: %s", ErrCyclicDependency, strings.Join(chain, " -> "))
	}
	p.building = append(p.building, id)
	defer func() { p.building = p.building[:len(p.building)-1] }()

	unitDir := p.resolver.UnitDir(id)
	unit, err := descriptor.LoadUnit(unitDir)
	if err != nil {
		return err
	}
	logger.Info("Building unit.", "unit", id, "kind", unit.Kind, "variant", p.variant)

	bld := p.base.Clone()
	if err := p.mergeDeps(ctx, bld, unitDir, unit.Deps); err != nil {
		return fmt.Errorf("unit %s: %w", id, err)
	}

	// Local headers: the unit's own inc (when present) and src directories.
	if fsutil.IsDir(filepath.Join(unitDir, "inc")) {
		bld.Append(settings.IncludePath, filepath.Join(unitDir, "inc"))
	}
	bld.Append(settings.IncludePath, filepath.Join(unitDir, "src"))

	sources, err := fsutil.SourceFiles(filepath.Join(unitDir, "src"), sourceExtensions)
	if err != nil {
		return fmt.Errorf("unit %s: collecting sources: %w", id, err)
	}

	outDir := filepath.Join(p.root, "build", p.variant.String(), filepath.FromSlash(id))

	// Libraries register what dependents need before anyone consumes the
	// build result: the public header directory, the library name for the
	// link line, and where the artifact will live.
	if unit.Kind != builder.Program {
		exported := settings.New()
		exported.Append(settings.IncludePath, filepath.Join(unitDir, "inc"))
		exported.Append(settings.Libraries, unit.Name)
		exported.Append(settings.LibraryPath, outDir)
		if err := p.manifest.Set(id, exported); err != nil {
			return err
		}
	}

	artifact, err := p.builder.Build(ctx, builder.Request{
		Kind:     unit.Kind,
		Name:     unit.Name,
		UnitDir:  unitDir,
		OutDir:   outDir,
		Sources:  sources,
		Settings: bld,
	})
	if err != nil {
		return fmt.Errorf("unit %s: %w", id, err)
	}

	if err := p.exportUnit(ctx, unit, artifact); err != nil {
		return fmt.Errorf("unit %s: %w", id, err)
	}

	// Units that registered nothing get an implicit empty entry, so the
	// manifest always answers for every triggered identifier.
	if !p.manifest.Has(id) {
		if err := p.manifest.Set(id, settings.New()); err != nil {
			return err
		}
	}

	logger.Info("Unit built.", "unit", id, "artifact", artifact.Path)
	return nil
}

// mergeDeps resolves each reference in order, builds it first if the
// manifest has no entry yet, and append-unique-merges its exported settings
// into bld. Reference order matters: earlier dependencies land earlier in
// every merged value list, so they win ordering-sensitive resolution such
// as the link line.
func (p *Project) mergeDeps(ctx context.Context, bld *settings.Settings, unitDir string, refs []string) error {
	for _, ref := range refs {
		id, err := p.resolver.UnitName(unitDir, ref)
		if err != nil {
			return err
		}
		if !p.manifest.Has(id) {
			if err := p.buildUnit(ctx, id); err != nil {
				return err
			}
		}
		exported, err := p.manifest.Get(id)
		if err != nil {
			return err
		}
		bld.Merge(exported)
	}
	return nil
}

// exportUnit performs the copies requested by the unit descriptor's export
// block.
func (p *Project) exportUnit(ctx context.Context, unit *descriptor.Unit, artifact builder.Artifact) error {
	logger := ctxlog.FromContext(ctx)

	if unit.Export.Binary {
		copied, err := p.installer.Binary(artifact.Path)
		if err != nil {
			return fmt.Errorf("exporting binary: %w", err)
		}
		logger.Debug("Exported binary.", "files", copied)
	}
	if unit.Export.Library {
		copied, err := p.installer.Library(artifact.Path)
		if err != nil {
			return fmt.Errorf("exporting library: %w", err)
		}
		logger.Debug("Exported library.", "files", copied)
	}
	if unit.Export.ExportHeaders {
		incDir := filepath.Join(unit.Dir, "inc")
		if fsutil.IsDir(incDir) {
			copied, err := p.installer.Headers(unit.Export.Headers, incDir)
			if err != nil {
				return fmt.Errorf("exporting headers: %w", err)
			}
			logger.Debug("Exported headers.", "files", copied)
		}
	}
	return nil
}
