package toolchain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vk/quickbuildgo/internal/settings"
)

func buildContext() *settings.Settings {
	s := settings.New()
	s.Append(settings.CFlags, "-Wall", "-O0")
	s.Append(settings.IncludePath, "/p/Lib/inc", "/p/App/src")
	s.Append(settings.Libraries, "Lib")
	s.Append(settings.LibraryPath, "/p/build/debug/Lib")
	s.Append(settings.LDFlags, "-Wl,--strip-all")
	return s
}

func TestCompileArgs(t *testing.T) {
	args := compileArgs(buildContext(), false)
	assert.Equal(t, []string{"-Wall", "-O0", "-I/p/Lib/inc", "-I/p/App/src"}, args)
}

func TestCompileArgsPIC(t *testing.T) {
	args := compileArgs(buildContext(), true)
	assert.Contains(t, args, "-fPIC")
	// Position independence comes before the include paths, after cflags.
	assert.Equal(t, []string{"-Wall", "-O0", "-fPIC", "-I/p/Lib/inc", "-I/p/App/src"}, args)
}

func TestLinkArgs(t *testing.T) {
	args := linkArgs(buildContext())
	assert.Equal(t, []string{"-L/p/build/debug/Lib", "-lLib", "-Wl,--strip-all"}, args)
}

func TestObjectName(t *testing.T) {
	assert.Equal(t, "main.o", objectName("/p/App/src/main.c"))
	assert.Equal(t, "widget.o", objectName("/p/App/src/widget.cpp"))
	assert.Equal(t, "util.o", objectName("util.cc"))
}

func TestIsCXX(t *testing.T) {
	assert.False(t, isCXX("main.c"))
	assert.True(t, isCXX("main.cpp"))
	assert.True(t, isCXX("main.cc"))
}

func TestNewReadsEnvironmentOverrides(t *testing.T) {
	t.Setenv("CC", "clang")
	t.Setenv("CXX", "clang++")
	t.Setenv("AR", "llvm-ar")
	tc := New()
	assert.Equal(t, "clang", tc.CC)
	assert.Equal(t, "clang++", tc.CXX)
	assert.Equal(t, "llvm-ar", tc.AR)
}
