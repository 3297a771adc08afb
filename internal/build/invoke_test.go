package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zynbuild/zyn/internal/console"
	"github.com/zynbuild/zyn/internal/runner"
	"github.com/zynbuild/zyn/internal/runner/runnertest"
)

func TestInvokeCMakeCreatesBuildDir(t *testing.T) {
	src := t.TempDir()
	buildDir := filepath.Join(t.TempDir(), "out", "fmt")

	rec := runnertest.New()
	inv := NewInvoker(rec, console.Discard().Logger("build"))
	require.NoError(t, inv.Invoke(context.Background(), CMake, src, buildDir, nil))

	info, err := os.Stat(buildDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, []string{
		"cmake -S " + src + " -B " + buildDir + " -DCMAKE_INSTALL_PREFIX=" + buildDir,
		"cmake --build " + buildDir + " --target install",
	}, rec.Lines())
}

func TestInvokeStopsAtFailedStep(t *testing.T) {
	src := t.TempDir()
	rec := runnertest.New().Fail("make", 2)
	inv := NewInvoker(rec, nil)

	err := inv.Invoke(context.Background(), Autotools, src, filepath.Join(src, "out"), nil)

	var buildErr *Error
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, Autotools, buildErr.Kind)
	assert.Equal(t, "build", buildErr.Step)

	var execErr *runner.ExecError
	assert.ErrorAs(t, err, &execErr)

	assert.Equal(t, 1, rec.Count("./configure"))
	assert.Zero(t, rec.Count("make install"))
}

func TestInvokeAutotoolsRunsInTree(t *testing.T) {
	src := t.TempDir()
	rec := runnertest.New()
	inv := NewInvoker(rec, nil)

	require.NoError(t, inv.Invoke(context.Background(), Autotools, src, filepath.Join(t.TempDir(), "b"), nil))
	calls := rec.Calls()
	require.Len(t, calls, 3)
	for _, c := range calls {
		assert.Equal(t, src, c.Dir)
	}
}

func TestBuildDetectsBackend(t *testing.T) {
	src := t.TempDir()
	touch(t, src, "CMakeLists.txt", "build.ninja")
	buildDir := filepath.Join(t.TempDir(), "fmt")

	rec := runnertest.New()
	inv := NewInvoker(rec, nil)
	kind, err := inv.Build(context.Background(), src, buildDir, []string{"-DX=1"})
	require.NoError(t, err)
	assert.Equal(t, Ninja, kind)
	assert.Equal(t, 1, rec.Count("-G Ninja -DX=1"))
	assert.Equal(t, 1, rec.Count("ninja -C "+buildDir))
}

func TestBuildNotBuildable(t *testing.T) {
	src := t.TempDir()
	touch(t, src, "only.h")

	rec := runnertest.New()
	kind, err := NewInvoker(rec, nil).Build(context.Background(), src, t.TempDir(), nil)
	assert.Equal(t, None, kind)
	assert.ErrorIs(t, err, ErrNotBuildable)
	assert.Empty(t, rec.Calls())
}
