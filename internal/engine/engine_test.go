package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/quickbuildgo/internal/builder"
	"github.com/vk/quickbuildgo/internal/settings"
	"github.com/vk/quickbuildgo/internal/testutil"
	"github.com/vk/quickbuildgo/internal/variant"
)

func newTestProject(t *testing.T, root string, fake *testutil.FakeBuilder) *Project {
	t.Helper()
	base := settings.New()
	base.Append(settings.CFlags, "-Wall")
	return New(root, variant.Debug, base, fake)
}

func TestBuildProgramWithStaticLibrary(t *testing.T) {
	root := testutil.WriteProjectRoot(t, t.TempDir())
	libDir := testutil.WriteUnit(t, root, "Lib", "unit \"static_library\" {\n}\n")
	testutil.WriteFile(t, filepath.Join(libDir, "inc", "lib.h"), "#pragma once\n")
	testutil.WriteUnit(t, root, "App", `
unit "program" {
  deps = ["Lib"]
}
`)

	fake := &testutil.FakeBuilder{}
	p := newTestProject(t, root, fake)
	require.NoError(t, p.BuildUnits(context.Background(), root, []string{"App"}))

	// The dependency builds first.
	require.Equal(t, []string{"Lib", "App"}, fake.BuiltNames())

	libReq := fake.Requests[0]
	assert.Equal(t, builder.StaticLibrary, libReq.Kind)
	assert.Equal(t, filepath.Join(root, "build", "debug", "Lib"), libReq.OutDir)
	assert.Equal(t, []string{filepath.Join(libDir, "src", "main.c")}, libReq.Sources)

	// The program's context carries the library's exports after the base
	// settings, then its own local header paths.
	appReq := fake.Requests[1]
	appDir := filepath.Join(root, "App")
	assert.Equal(t, []string{"-Wall"}, appReq.Settings.Values(settings.CFlags))
	assert.Equal(t, []string{
		filepath.Join(libDir, "inc"),
		filepath.Join(appDir, "src"),
	}, appReq.Settings.Values(settings.IncludePath))
	assert.Equal(t, []string{"Lib"}, appReq.Settings.Values(settings.Libraries))
	assert.Equal(t, []string{filepath.Join(root, "build", "debug", "Lib")}, appReq.Settings.Values(settings.LibraryPath))

	// One manifest entry each: the library's exports and the program's
	// implicit empty entry.
	m := p.Manifest()
	assert.Equal(t, []string{"Lib", "App"}, m.IDs())
	libExports, err := m.Get("Lib")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(libDir, "inc")}, libExports.Values(settings.IncludePath))
	appEntry, err := m.Get("App")
	require.NoError(t, err)
	assert.Zero(t, appEntry.Len())
}

func TestDiamondDependencyBuildsSharedUnitOnce(t *testing.T) {
	root := testutil.WriteProjectRoot(t, t.TempDir())
	testutil.WriteUnit(t, root, "D", "unit \"static_library\" {\n}\n")
	testutil.WriteUnit(t, root, "B", "unit \"static_library\" {\n  deps = [\"D\"]\n}\n")
	testutil.WriteUnit(t, root, "C", "unit \"static_library\" {\n  deps = [\"D\"]\n}\n")
	testutil.WriteUnit(t, root, "A", "unit \"program\" {\n  deps = [\"B\", \"C\"]\n}\n")

	fake := &testutil.FakeBuilder{}
	p := newTestProject(t, root, fake)
	require.NoError(t, p.BuildUnits(context.Background(), root, []string{"A"}))

	// Depth-first: D once, via B; C finds it already built.
	assert.Equal(t, []string{"D", "B", "C", "A"}, fake.BuiltNames())

	// Both B's and C's contexts carry D's exports.
	for _, idx := range []int{1, 2} {
		req := fake.Requests[idx]
		assert.Contains(t, req.Settings.Values(settings.Libraries), "D", "unit %s", req.Name)
	}
}

func TestMergeOrderFollowsDependencyList(t *testing.T) {
	root := testutil.WriteProjectRoot(t, t.TempDir())
	bDir := testutil.WriteUnit(t, root, "B", "unit \"static_library\" {\n}\n")
	cDir := testutil.WriteUnit(t, root, "C", "unit \"static_library\" {\n}\n")
	testutil.WriteUnit(t, root, "A", "unit \"program\" {\n  deps = [\"B\", \"C\"]\n}\n")

	fake := &testutil.FakeBuilder{}
	p := newTestProject(t, root, fake)
	require.NoError(t, p.BuildUnits(context.Background(), root, []string{"A"}))

	appReq := fake.Requests[len(fake.Requests)-1]
	require.Equal(t, "A", appReq.Name)
	incs := appReq.Settings.Values(settings.IncludePath)
	require.GreaterOrEqual(t, len(incs), 2)
	assert.Equal(t, filepath.Join(bDir, "inc"), incs[0])
	assert.Equal(t, filepath.Join(cDir, "inc"), incs[1])
	assert.Equal(t, []string{"B", "C"}, appReq.Settings.Values(settings.Libraries))
}

func TestRepeatedBuildRequestIsANoOp(t *testing.T) {
	root := testutil.WriteProjectRoot(t, t.TempDir())
	testutil.WriteUnit(t, root, "Lib", "unit \"static_library\" {\n}\n")

	fake := &testutil.FakeBuilder{}
	p := newTestProject(t, root, fake)
	require.NoError(t, p.BuildUnits(context.Background(), root, []string{"Lib", "Lib"}))
	require.NoError(t, p.BuildUnits(context.Background(), root, []string{"Lib"}))

	assert.Len(t, fake.Requests, 1)
}

func TestCyclicDependencyIsDetected(t *testing.T) {
	root := testutil.WriteProjectRoot(t, t.TempDir())
	testutil.WriteUnit(t, root, "A", "unit \"static_library\" {\n  deps = [\"B\"]\n}\n")
	testutil.WriteUnit(t, root, "B", "unit \"static_library\" {\n  deps = [\"A\"]\n}\n")

	fake := &testutil.FakeBuilder{}
	p := newTestProject(t, root, fake)
	err := p.BuildUnits(context.Background(), root, []string{"A"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCyclicDependency)
	assert.Contains(t, err.Error(), "A -> B -> A")
}

func TestUnresolvableDependencyFailsTheBuild(t *testing.T) {
	root := testutil.WriteProjectRoot(t, t.TempDir())
	testutil.WriteUnit(t, root, "App", "unit \"program\" {\n  deps = [\"Ghost\"]\n}\n")

	fake := &testutil.FakeBuilder{}
	p := newTestProject(t, root, fake)
	err := p.BuildUnits(context.Background(), root, []string{"App"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Ghost")
	assert.Empty(t, fake.Requests)
}

func TestBuilderFailureAborts(t *testing.T) {
	root := testutil.WriteProjectRoot(t, t.TempDir())
	testutil.WriteUnit(t, root, "Lib", "unit \"static_library\" {\n}\n")
	testutil.WriteUnit(t, root, "App", "unit \"program\" {\n  deps = [\"Lib\"]\n}\n")

	boom := errors.New("link failed")
	fake := &testutil.FakeBuilder{Err: boom}
	p := newTestProject(t, root, fake)
	err := p.BuildUnits(context.Background(), root, []string{"App"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	// The failing dependency stops everything; the program never builds.
	assert.Equal(t, []string{"Lib"}, fake.BuiltNames())
}

func TestExportsLandInTheVariantTree(t *testing.T) {
	root := testutil.WriteProjectRoot(t, t.TempDir())
	libDir := testutil.WriteUnit(t, root, "SharedLib", `
unit "shared_library" {
  export {
    library = true
    headers = "demo"
  }
}
`)
	testutil.WriteFile(t, filepath.Join(libDir, "inc", "api.h"), "#pragma once\n")
	testutil.WriteUnit(t, root, "App", `
unit "program" {
  name = "frontend"
  deps = ["SharedLib"]

  export {
    binary = true
  }
}
`)

	fake := &testutil.FakeBuilder{}
	p := newTestProject(t, root, fake)
	require.NoError(t, p.BuildUnits(context.Background(), root, []string{"App"}))

	exportDir := filepath.Join(root, "export", "debug")
	assert.FileExists(t, filepath.Join(exportDir, "lib", "libSharedLib.so"))
	assert.FileExists(t, filepath.Join(exportDir, "include", "demo", "api.h"))
	assert.FileExists(t, filepath.Join(exportDir, "bin", "frontend"))
}

func TestNestedUnitIdentifiers(t *testing.T) {
	root := testutil.WriteProjectRoot(t, t.TempDir())
	testutil.WriteUnit(t, root, "Common/Util", "unit \"static_library\" {\n}\n")
	appDir := testutil.WriteUnit(t, root, "Apps/Frontend", "unit \"program\" {\n  deps = [\"../../Common/Util\"]\n}\n")

	fake := &testutil.FakeBuilder{}
	p := newTestProject(t, root, fake)
	require.NoError(t, p.BuildUnits(context.Background(), appDir, []string{""}))

	assert.Equal(t, []string{"Common/Util", "Apps/Frontend"}, p.Manifest().IDs())
	assert.Equal(t, filepath.Join(root, "build", "debug", "Common", "Util"), fake.Requests[0].OutDir)
}
