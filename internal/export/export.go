// Package export copies finished build artifacts into the variant's public
// output tree under <root>/export/<variant>. Sources may be single files or
// whole directories; directory contents are filtered with shell-style glob
// patterns and copied preserving their relative structure.
package export

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/vk/quickbuildgo/internal/fsutil"
	"github.com/vk/quickbuildgo/internal/variant"
)

// ErrExportCountMismatch is returned when Install is given more than one
// target but the target and source counts differ.
var ErrExportCountMismatch = errors.New("export target/source count mismatch")

// defaultExcludes are applied to every install, on top of any caller
// supplied patterns: hidden files, editor backups and compiled objects
// never belong in an export tree.
var defaultExcludes = []string{".*", "*~", "*.o", "*.os", "*.obj"}

// Installer copies artifacts into one variant's export tree.
type Installer struct {
	exportDir string
}

// NewInstaller creates an installer bound to <root>/export/<variant>.
func NewInstaller(root string, v variant.Variant) *Installer {
	return &Installer{exportDir: filepath.Join(root, "export", v.String())}
}

// Dir returns the export tree root this installer writes into.
func (i *Installer) Dir() string {
	return i.exportDir
}

type options struct {
	excludes  []string
	includes  []string
	recursive bool
}

// Option customizes a single Install call.
type Option func(*options)

// WithExcludes adds glob patterns; matching file or directory names are
// skipped. The default excludes stay in force regardless.
func WithExcludes(patterns ...string) Option {
	return func(o *options) { o.excludes = append(o.excludes, patterns...) }
}

// WithIncludes restricts copying to files matching at least one of the
// given glob patterns. Without include patterns every file passes.
func WithIncludes(patterns ...string) Option {
	return func(o *options) { o.includes = append(o.includes, patterns...) }
}

// WithoutRecursion stops directory sources from being descended into:
// only files directly inside the source directory are considered.
func WithoutRecursion() Option {
	return func(o *options) { o.recursive = false }
}

// Binary copies the given files into the bin directory of the export tree.
func (i *Installer) Binary(sources ...string) ([]string, error) {
	return i.Install([]string{filepath.Join(i.exportDir, "bin")}, sources, WithoutRecursion())
}

// Library copies the given files into the lib directory of the export tree.
func (i *Installer) Library(sources ...string) ([]string, error) {
	return i.Install([]string{filepath.Join(i.exportDir, "lib")}, sources, WithoutRecursion())
}

// Headers recursively copies the given files or directories into the
// include directory of the export tree, under the optional prefix.
func (i *Installer) Headers(prefix string, sources ...string) ([]string, error) {
	return i.Install([]string{filepath.Join(i.exportDir, "include", prefix)}, sources)
}

// Install copies each source to its target. A single target is broadcast
// across all sources; otherwise the counts must match exactly. File sources
// are copied under their basename; directory sources are walked and their
// contents copied preserving relative structure. It returns the destination
// paths of every copied file.
func (i *Installer) Install(targets, sources []string, opts ...Option) ([]string, error) {
	o := options{recursive: true}
	for _, opt := range opts {
		opt(&o)
	}
	excludes := append(append([]string(nil), o.excludes...), defaultExcludes...)

	if len(targets) != len(sources) {
		if len(targets) != 1 {
			return nil, fmt.Errorf("%w: %d targets for %d sources", ErrExportCountMismatch, len(targets), len(sources))
		}
		broadcast := make([]string, len(sources))
		for idx := range broadcast {
			broadcast[idx] = targets[0]
		}
		targets = broadcast
	}

	var copied []string
	for idx := range sources {
		pairs, err := collect(targets[idx], sources[idx], excludes, o.includes, o.recursive)
		if err != nil {
			return nil, err
		}
		for _, p := range pairs {
			if err := copyFile(p.dst, p.src); err != nil {
				return nil, err
			}
			copied = append(copied, p.dst)
		}
	}
	return copied, nil
}

// matches reports whether name matches any of the shell-style patterns.
// Matching is on the bare name, never on the full path.
func matches(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

type copyPair struct {
	dst string
	src string
}

// collect resolves one (target, source) pair into concrete file copies.
func collect(target, source string, excludes, includes []string, recursive bool) ([]copyPair, error) {
	source = filepath.Clean(source)
	target = filepath.Clean(target)

	if !fsutil.IsDir(source) {
		if !fsutil.Exists(source) {
			return nil, fmt.Errorf("export source %s does not exist", source)
		}
		return []copyPair{{dst: filepath.Join(target, filepath.Base(source)), src: source}}, nil
	}

	var pairs []copyPair
	err := filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == source {
			return nil
		}
		if d.IsDir() {
			if !recursive || matches(d.Name(), excludes) {
				return fs.SkipDir
			}
			return nil
		}
		if matches(d.Name(), excludes) {
			return nil
		}
		if len(includes) > 0 && !matches(d.Name(), includes) {
			return nil
		}
		rel, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}
		pairs = append(pairs, copyPair{dst: filepath.Join(target, rel), src: path})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

// copyFile copies src to dst, creating parent directories and preserving
// the source file mode.
func copyFile(dst, src string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
