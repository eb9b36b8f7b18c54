// Package engine is the dependency resolution and build orchestration core.
// It resolves unit references to canonical identifiers, builds every unit at
// most once per run, recursively triggers not-yet-built dependencies, and
// merges dependency-exported settings into each dependent's build context
// before handing the unit to the external builder.
//
// Scheduling is single-threaded and depth-first: a unit's build runs to
// completion, dependencies included, before control returns to its caller.
// That is what lets the manifest enforce its write-once invariant without
// any locking.
package engine
