package testutil

import (
	"context"
	"os"
	"path/filepath"

	"github.com/vk/quickbuildgo/internal/builder"
)

// FakeBuilder is a builder.Builder that records every request and writes a
// placeholder artifact file instead of invoking a real toolchain.
type FakeBuilder struct {
	Requests []builder.Request
	// Err, when set, is returned by every Build call.
	Err error
}

// Build implements builder.Builder.
func (f *FakeBuilder) Build(_ context.Context, req builder.Request) (builder.Artifact, error) {
	f.Requests = append(f.Requests, req)
	if f.Err != nil {
		return builder.Artifact{}, f.Err
	}

	var name string
	switch req.Kind {
	case builder.StaticLibrary:
		name = "lib" + req.Name + ".a"
	case builder.SharedLibrary:
		name = "lib" + req.Name + ".so"
	default:
		name = req.Name
	}

	path := filepath.Join(req.OutDir, name)
	if err := os.MkdirAll(req.OutDir, 0o755); err != nil {
		return builder.Artifact{}, err
	}
	if err := os.WriteFile(path, []byte("artifact\n"), 0o755); err != nil {
		return builder.Artifact{}, err
	}
	return builder.Artifact{Path: path}, nil
}

// BuiltNames returns the artifact names of all recorded requests, in order.
func (f *FakeBuilder) BuiltNames() []string {
	names := make([]string, len(f.Requests))
	for i, req := range f.Requests {
		names[i] = req.Name
	}
	return names
}
