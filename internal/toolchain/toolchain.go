// Package toolchain is the default builder.Builder implementation: it
// drives the host C/C++ toolchain with os/exec. Each source file is
// compiled to an object file in the unit's intermediate output directory,
// then the objects are linked or archived according to the unit kind.
package toolchain

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/vk/quickbuildgo/internal/builder"
	"github.com/vk/quickbuildgo/internal/ctxlog"
	"github.com/vk/quickbuildgo/internal/settings"
)

// Toolchain invokes the host compiler, C++ compiler and archiver. Command
// names come from the conventional CC, CXX and AR environment variables,
// falling back to cc, c++ and ar.
type Toolchain struct {
	CC  string
	CXX string
	AR  string
}

// New creates a toolchain from the current environment.
func New() *Toolchain {
	return &Toolchain{
		CC:  envOr("CC", "cc"),
		CXX: envOr("CXX", "c++"),
		AR:  envOr("AR", "ar"),
	}
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

// Build compiles and links one unit and returns the artifact path.
func (t *Toolchain) Build(ctx context.Context, req builder.Request) (builder.Artifact, error) {
	if err := os.MkdirAll(req.OutDir, 0o755); err != nil {
		return builder.Artifact{}, err
	}

	pic := req.Kind == builder.SharedLibrary
	objects, cxx, err := t.compile(ctx, req, pic)
	if err != nil {
		return builder.Artifact{}, err
	}

	linker := t.CC
	if cxx {
		linker = t.CXX
	}

	switch req.Kind {
	case builder.Program:
		out := filepath.Join(req.OutDir, req.Name)
		args := append(append([]string{"-o", out}, objects...), linkArgs(req.Settings)...)
		if err := t.run(ctx, linker, args); err != nil {
			return builder.Artifact{}, err
		}
		return builder.Artifact{Path: out}, nil

	case builder.StaticLibrary:
		out := filepath.Join(req.OutDir, "lib"+req.Name+".a")
		args := append([]string{"rcs", out}, objects...)
		if err := t.run(ctx, t.AR, args); err != nil {
			return builder.Artifact{}, err
		}
		return builder.Artifact{Path: out}, nil

	case builder.SharedLibrary:
		out := filepath.Join(req.OutDir, "lib"+req.Name+".so")
		args := append(append([]string{"-shared", "-o", out}, objects...), linkArgs(req.Settings)...)
		if err := t.run(ctx, linker, args); err != nil {
			return builder.Artifact{}, err
		}
		return builder.Artifact{Path: out}, nil
	}

	return builder.Artifact{}, fmt.Errorf("unknown unit kind %q", req.Kind)
}

// compile builds one object file per source. It reports whether any source
// needed the C++ compiler, which then also drives the link step.
func (t *Toolchain) compile(ctx context.Context, req builder.Request, pic bool) (objects []string, cxx bool, err error) {
	flags := compileArgs(req.Settings, pic)
	for _, src := range req.Sources {
		compiler := t.CC
		if isCXX(src) {
			compiler = t.CXX
			cxx = true
		}
		obj := filepath.Join(req.OutDir, objectName(src))
		args := append(append([]string{"-c"}, flags...), "-o", obj, src)
		if err := t.run(ctx, compiler, args); err != nil {
			return nil, false, err
		}
		objects = append(objects, obj)
	}
	return objects, cxx, nil
}

// run executes one toolchain command, logging it and folding its output
// into the error on failure.
func (t *Toolchain) run(ctx context.Context, command string, args []string) error {
	ctxlog.FromContext(ctx).Debug("Running toolchain command.", "command", command, "args", strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, command, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w\n%s", command, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func isCXX(src string) bool {
	ext := filepath.Ext(src)
	return ext == ".cpp" || ext == ".cc"
}

func objectName(src string) string {
	base := filepath.Base(src)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".o"
}

// compileArgs renders the compile flags for a build context: cflags
// verbatim, then -I for every include path, plus -fPIC when building for a
// shared library.
func compileArgs(s *settings.Settings, pic bool) []string {
	var args []string
	args = append(args, s.Values(settings.CFlags)...)
	if pic {
		args = append(args, "-fPIC")
	}
	for _, dir := range s.Values(settings.IncludePath) {
		args = append(args, "-I"+dir)
	}
	return args
}

// linkArgs renders the link flags: -L for every library search path, -l
// for every library in declared order, then ldflags verbatim.
func linkArgs(s *settings.Settings) []string {
	var args []string
	for _, dir := range s.Values(settings.LibraryPath) {
		args = append(args, "-L"+dir)
	}
	for _, lib := range s.Values(settings.Libraries) {
		args = append(args, "-l"+lib)
	}
	args = append(args, s.Values(settings.LDFlags)...)
	return args
}
