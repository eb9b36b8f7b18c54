// Package variant defines the build configuration selector. A variant is
// chosen once per orchestration run and determines output-directory naming
// and the default compiler/linker flags.
package variant

// Variant selects the build configuration for a whole run.
type Variant string

const (
	Debug   Variant = "debug"
	Release Variant = "release"
)

// FromRelease maps the single external release flag to a Variant. The
// default is Debug.
func FromRelease(release bool) Variant {
	if release {
		return Release
	}
	return Debug
}

// String returns the variant name as used in output paths.
func (v Variant) String() string {
	return string(v)
}
