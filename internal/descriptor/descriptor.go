// Package descriptor parses and validates the HCL descriptor files that
// mark units and the project root, and turns them into the model the
// engine works with.
package descriptor

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/quickbuildgo/internal/builder"
	"github.com/vk/quickbuildgo/internal/resolve"
	"github.com/vk/quickbuildgo/internal/schema"
	"github.com/vk/quickbuildgo/internal/settings"
	"github.com/vk/quickbuildgo/internal/variant"
)

// Settings scopes accepted in a project descriptor.
const ScopeCommon = "common"

// Export describes which artifacts of a unit are copied to the export tree.
type Export struct {
	Binary  bool
	Library bool
	// Headers is the include-prefix under export/<variant>/include. Only
	// meaningful when ExportHeaders is true; an empty prefix is valid.
	Headers       string
	ExportHeaders bool
}

// Unit is the decoded form of a unit descriptor.
type Unit struct {
	Kind   builder.Kind
	Name   string
	Deps   []string
	Export Export
	// Dir is the absolute unit directory the descriptor was loaded from.
	Dir string
}

// Project is the decoded form of a project descriptor.
type Project struct {
	Name string
	// Settings holds one settings map per scope label.
	Settings map[string]*settings.Settings
	// Dir is the absolute project root directory.
	Dir string
}

// LoadUnit parses the unit descriptor in dir. The unit name defaults to the
// directory basename when the descriptor does not set one.
func LoadUnit(dir string) (*Unit, error) {
	path := filepath.Join(dir, resolve.UnitFile)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse unit descriptor %s: %w", path, diags)
	}

	var root schema.UnitFile
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode unit descriptor %s: %w", path, diags)
	}
	if root.Unit == nil {
		return nil, fmt.Errorf("unit descriptor %s has no unit block", path)
	}

	kind := builder.Kind(root.Unit.Kind)
	if !kind.Valid() {
		return nil, fmt.Errorf("unit descriptor %s: unknown unit kind %q (want %s, %s or %s)",
			path, root.Unit.Kind, builder.Program, builder.StaticLibrary, builder.SharedLibrary)
	}

	name := root.Unit.Name
	if name == "" {
		name = filepath.Base(dir)
	}

	unit := &Unit{
		Kind: kind,
		Name: name,
		Deps: root.Unit.Deps,
		Dir:  dir,
	}
	if exp := root.Unit.Export; exp != nil {
		unit.Export.Binary = exp.Binary
		unit.Export.Library = exp.Library
		if exp.Headers != nil {
			unit.Export.ExportHeaders = true
			unit.Export.Headers = *exp.Headers
		}
	}
	return unit, nil
}

// LoadProject parses the project descriptor at the given root directory.
func LoadProject(root string) (*Project, error) {
	path := filepath.Join(root, resolve.ProjectFile)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse project descriptor %s: %w", path, diags)
	}

	var fileRoot schema.ProjectFile
	if diags := gohcl.DecodeBody(file.Body, nil, &fileRoot); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode project descriptor %s: %w", path, diags)
	}
	if fileRoot.Project == nil {
		return nil, fmt.Errorf("project descriptor %s has no project block", path)
	}

	name := fileRoot.Project.Name
	if name == "" {
		name = filepath.Base(root)
	}

	project := &Project{
		Name:     name,
		Settings: make(map[string]*settings.Settings),
		Dir:      root,
	}
	for _, block := range fileRoot.Project.Settings {
		if err := validScope(block.Scope); err != nil {
			return nil, fmt.Errorf("project descriptor %s: %w", path, err)
		}
		if _, dup := project.Settings[block.Scope]; dup {
			return nil, fmt.Errorf("project descriptor %s: duplicate settings block %q", path, block.Scope)
		}
		decoded, err := decodeSettingsBody(block.Body)
		if err != nil {
			return nil, fmt.Errorf("project descriptor %s: settings %q: %w", path, block.Scope, err)
		}
		project.Settings[block.Scope] = decoded
	}
	return project, nil
}

// BaseSettings composes the ambient build settings for one run: the common
// scope first, then the selected variant's scope. A project with no
// settings blocks at all gets the built-in defaults instead.
func (p *Project) BaseSettings(v variant.Variant) *settings.Settings {
	if len(p.Settings) == 0 {
		return DefaultSettings(v)
	}
	base := settings.New()
	base.Merge(p.Settings[ScopeCommon])
	base.Merge(p.Settings[string(v)])
	return base
}

// DefaultSettings returns the built-in compiler/linker configuration for a
// variant, used when the project descriptor declares no settings of its own.
func DefaultSettings(v variant.Variant) *settings.Settings {
	s := settings.New()
	s.Append(settings.CFlags, "-Wall", "-Wextra", "-Wpedantic", "-Werror")
	if v == variant.Release {
		s.Append(settings.CFlags, "-O3", "-fvisibility=hidden")
		s.Append(settings.LDFlags, "-Wl,--strip-all")
	} else {
		s.Append(settings.CFlags, "-O0", "-g")
	}
	return s
}

func validScope(scope string) error {
	switch scope {
	case ScopeCommon, string(variant.Debug), string(variant.Release):
		return nil
	}
	return fmt.Errorf("unknown settings scope %q (want %s, %s or %s)",
		scope, ScopeCommon, variant.Debug, variant.Release)
}

// decodeSettingsBody turns the open attribute table of a settings block
// into a Settings map. Every attribute value must be a list of strings.
// Attributes are applied in source order so that flag ordering in the
// descriptor is preserved in the build context.
func decodeSettingsBody(body hcl.Body) (*settings.Settings, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}

	ordered := make([]*hcl.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		ordered = append(ordered, attr)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Range.Start.Byte < ordered[j].Range.Start.Byte
	})

	out := settings.New()
	for _, attr := range ordered {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		values, err := stringList(val)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", attr.Name, err)
		}
		out.Append(attr.Name, values...)
	}
	return out, nil
}

// stringList converts a cty list or tuple into a Go string slice.
func stringList(val cty.Value) ([]string, error) {
	if !val.CanIterateElements() {
		return nil, fmt.Errorf("value must be a list of strings, got %s", val.Type().FriendlyName())
	}
	var out []string
	for it := val.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		str, err := convert.Convert(elem, cty.String)
		if err != nil {
			return nil, fmt.Errorf("value must be a list of strings: %w", err)
		}
		if str.IsNull() {
			return nil, fmt.Errorf("value must be a list of strings, got a null element")
		}
		out = append(out, str.AsString())
	}
	return out, nil
}
