package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestSourceFiles(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "zeta.c"))
	write(t, filepath.Join(dir, "alpha.cpp"))
	write(t, filepath.Join(dir, "notes.txt"))
	write(t, filepath.Join(dir, "nested", "deep.c"))

	files, err := SourceFiles(dir, []string{".c", ".cpp", ".cc"})
	require.NoError(t, err)
	// Sorted, non-recursive, extension-filtered.
	assert.Equal(t, []string{
		filepath.Join(dir, "alpha.cpp"),
		filepath.Join(dir, "zeta.c"),
	}, files)
}

func TestSourceFilesMissingDir(t *testing.T) {
	files, err := SourceFiles(filepath.Join(t.TempDir(), "nope"), []string{".c"})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestProbes(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	write(t, file)

	assert.True(t, Exists(dir))
	assert.True(t, IsDir(dir))
	assert.False(t, IsFile(dir))
	assert.True(t, IsFile(file))
	assert.False(t, IsDir(file))
	assert.False(t, Exists(filepath.Join(dir, "missing")))
}
