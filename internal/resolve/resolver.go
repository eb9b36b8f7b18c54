// Package resolve locates the project root and resolves short unit
// references to canonical, root-relative unit identifiers.
//
// A directory is a unit when it contains a unit descriptor file, and a
// directory is the project root when it contains a project descriptor file.
// References are resolved by walking upward from the referencing unit's
// directory toward the project root; the first level at which the reference
// names a unit wins. Internally every unit is identified by its normalized
// path relative to the project root, so two units referenced by different
// shortened forms never collide.
package resolve

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vk/quickbuildgo/internal/fsutil"
)

const (
	// ProjectFile marks a directory as the project root.
	ProjectFile = "project.hcl"
	// UnitFile marks a directory as a buildable unit.
	UnitFile = "unit.hcl"
)

var (
	// ErrProjectRootNotFound is returned when no project descriptor is found
	// walking up from the start directory.
	ErrProjectRootNotFound = errors.New("project root not found")

	// ErrUnitNotFound is returned when a dependency reference cannot be
	// resolved to any unit directory.
	ErrUnitNotFound = errors.New("unit not found")
)

// resolutionCacheSize bounds the reference-resolution memo. Diamond graphs
// re-resolve the same (dir, reference) pairs repeatedly and every probe is
// a stat walk, so the cache pays for itself quickly.
const resolutionCacheSize = 256

// FindProjectRoot walks upward from startDir until a directory containing
// the project descriptor is found and returns its absolute path. Reaching
// the filesystem root first fails with ErrProjectRootNotFound.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		if fsutil.IsFile(filepath.Join(dir, ProjectFile)) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: no %s in any directory above %s", ErrProjectRootNotFound, ProjectFile, startDir)
		}
		dir = parent
	}
}

type cacheKey struct {
	dir string
	ref string
}

// Resolver resolves unit references against a fixed project root.
type Resolver struct {
	root  string
	cache *lru.Cache[cacheKey, string]
}

// New creates a resolver for the project rooted at root, which must be an
// absolute path.
func New(root string) *Resolver {
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[cacheKey, string](resolutionCacheSize)
	return &Resolver{root: root, cache: cache}
}

// Root returns the absolute project root directory.
func (r *Resolver) Root() string {
	return r.root
}

// UnitDir returns the absolute directory of the unit with the given
// identifier.
func (r *Resolver) UnitDir(id string) string {
	return filepath.Join(r.root, filepath.FromSlash(id))
}

// UnitName resolves a unit reference to its canonical identifier: the
// slash-normalized path of the unit directory relative to the project root.
//
// The search starts at currentDir and walks upward; at each level, a match
// is a directory <level>/<ref> containing a unit descriptor. The project
// root itself is the last level tested. An empty ref is a self-reference
// and defaults to the basename of currentDir.
func (r *Resolver) UnitName(currentDir, ref string) (string, error) {
	dir, err := filepath.Abs(currentDir)
	if err != nil {
		return "", err
	}
	if ref == "" {
		ref = filepath.Base(dir)
	}

	key := cacheKey{dir: dir, ref: ref}
	if id, ok := r.cache.Get(key); ok {
		return id, nil
	}

	relRef := filepath.FromSlash(strings.ReplaceAll(ref, "\\", "/"))
	search := dir
	for {
		unitDir := filepath.Join(search, relRef)
		if fsutil.IsFile(filepath.Join(unitDir, UnitFile)) {
			rel, err := filepath.Rel(r.root, unitDir)
			if err != nil {
				return "", err
			}
			id := filepath.ToSlash(rel)
			// A reference must never name a directory outside the project.
			if id != ".." && !strings.HasPrefix(id, "../") {
				r.cache.Add(key, id)
				return id, nil
			}
		}
		if search == r.root {
			return "", fmt.Errorf("%w: %q (searched upward from %s)", ErrUnitNotFound, ref, currentDir)
		}
		parent := filepath.Dir(search)
		if parent == search {
			// currentDir was outside the project root entirely.
			return "", fmt.Errorf("%w: %q (searched upward from %s)", ErrUnitNotFound, ref, currentDir)
		}
		search = parent
	}
}
