// Package schema declares the HCL block structures for the two descriptor
// files: the unit descriptor (unit.hcl) that marks a directory as a
// buildable unit, and the project descriptor (project.hcl) that marks the
// project root. Decoding into a usable model happens in the descriptor
// package; this package is purely the wire shape.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// --- Unit descriptor ---

// ExportBlock represents the optional `export` block of a unit descriptor.
// It declares which finished artifacts are copied into the variant's
// export tree after a successful build.
type ExportBlock struct {
	Binary  bool    `hcl:"binary,optional"`
	Library bool    `hcl:"library,optional"`
	Headers *string `hcl:"headers,optional"`
}

// UnitBlock represents the single `unit` block of a unit descriptor. The
// block label carries the unit kind (program, static_library or
// shared_library).
type UnitBlock struct {
	Kind   string       `hcl:"kind,label"`
	Name   string       `hcl:"name,optional"`
	Deps   []string     `hcl:"deps,optional"`
	Export *ExportBlock `hcl:"export,block"`
}

// UnitFile represents the top-level structure of a unit.hcl file.
type UnitFile struct {
	Unit *UnitBlock `hcl:"unit,block"`
}

// --- Project descriptor ---

// SettingsBlock represents a `settings` block of the project descriptor.
// The label scopes the block to "common" or one of the variants; the body
// is an open attribute table where every attribute is a setting name whose
// value is a list of strings.
type SettingsBlock struct {
	Scope string   `hcl:"scope,label"`
	Body  hcl.Body `hcl:",remain"`
}

// ProjectBlock represents the single `project` block of the project
// descriptor.
type ProjectBlock struct {
	Name     string           `hcl:"name,optional"`
	Settings []*SettingsBlock `hcl:"settings,block"`
}

// ProjectFile represents the top-level structure of a project.hcl file.
type ProjectFile struct {
	Project *ProjectBlock `hcl:"project,block"`
}
