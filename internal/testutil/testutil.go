// Package testutil provides shared helpers for building on-disk project
// fixtures and a fake builder implementation for engine-level tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteFile writes content to path, creating parent directories as needed.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// WriteProjectRoot creates a minimal project descriptor in dir and returns dir.
func WriteProjectRoot(t *testing.T, dir string) string {
	t.Helper()
	WriteFile(t, filepath.Join(dir, "project.hcl"), "project {\n}\n")
	return dir
}

// WriteUnit creates a unit directory under root with the given descriptor
// body and a single placeholder source file, and returns the unit directory.
func WriteUnit(t *testing.T, root, relDir, descriptorHCL string) string {
	t.Helper()
	dir := filepath.Join(root, filepath.FromSlash(relDir))
	WriteFile(t, filepath.Join(dir, "unit.hcl"), descriptorHCL)
	WriteFile(t, filepath.Join(dir, "src", "main.c"), "int main(void) { return 0; }\n")
	return dir
}
