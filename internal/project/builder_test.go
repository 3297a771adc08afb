package project

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zynbuild/zyn/internal/cache"
	"github.com/zynbuild/zyn/internal/config"
	"github.com/zynbuild/zyn/internal/console"
	"github.com/zynbuild/zyn/internal/layout"
	"github.com/zynbuild/zyn/internal/runner"
	"github.com/zynbuild/zyn/internal/runner/runnertest"
)

type builderFixture struct {
	b   *Builder
	rec *runnertest.Recorder
	con *console.Console
	out *bytes.Buffer
}

func newBuilder(t *testing.T) *builderFixture {
	t.Helper()
	m := newManifest(t)
	l := layout.New(filepath.Join(m.Root, ".zyn"))

	rec := runnertest.New()
	rec.OnFunc("g++", func(cmd runner.Command) (string, error) {
		return "", os.WriteFile(m.ArtifactPath(), []byte("binary"), 0755)
	})

	out := &bytes.Buffer{}
	con, err := console.New(out, console.Options{Level: "debug"})
	require.NoError(t, err)
	t.Cleanup(con.Close)

	b, err := New(m, l, rec, con.Logger("project"))
	require.NoError(t, err)
	return &builderFixture{b: b, rec: rec, con: con, out: out}
}

func TestIncludeDirs(t *testing.T) {
	f := newBuilder(t)
	l := f.b.Layout
	local := t.TempDir()
	f.b.Manifest.Dependencies["mylib"] = config.Dependency{Path: local}

	for _, d := range []string{
		filepath.Join(local, "include"),
		filepath.Join(l.DepDir("fmt"), "include"),
		filepath.Join(l.DepBuildDir("zlib"), "include"),
	} {
		require.NoError(t, os.MkdirAll(d, 0755))
	}

	dirs, err := f.b.IncludeDirs()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(local, "include"),
		filepath.Join(l.DepDir("fmt"), "include"),
		filepath.Join(l.DepBuildDir("zlib"), "include"),
	}, dirs)
}

func TestBuildCompilesOnceThenSkips(t *testing.T) {
	f := newBuilder(t)
	ctx := context.Background()

	res, err := f.b.Build(ctx, BuildOptions{})
	require.NoError(t, err)
	assert.True(t, res.Compiled)
	assert.Equal(t, cache.ArtifactMissing, res.Reason)
	assert.FileExists(t, res.Artifact)

	res, err = f.b.Build(ctx, BuildOptions{})
	require.NoError(t, err)
	assert.False(t, res.Compiled)
	assert.Equal(t, cache.UpToDate, res.Reason)
	assert.Equal(t, 1, f.rec.Count("g++"))

	res, err = f.b.Build(ctx, BuildOptions{Force: true})
	require.NoError(t, err)
	assert.True(t, res.Compiled)
	assert.Equal(t, cache.Forced, res.Reason)
	assert.Equal(t, 2, f.rec.Count("g++"))
}

func TestBuildAppliesProfile(t *testing.T) {
	f := newBuilder(t)

	res, err := f.b.Build(context.Background(), BuildOptions{Profile: "debug"})
	require.NoError(t, err)
	args := res.Command.Args
	assert.Equal(t, []string{"-g", "-O0"}, args[len(args)-2:])
}

func TestBuildUnknownProfileWarns(t *testing.T) {
	f := newBuilder(t)

	res, err := f.b.Build(context.Background(), BuildOptions{Profile: "nope"})
	require.NoError(t, err)
	assert.Equal(t, "-lm", res.Command.Args[len(res.Command.Args)-1])

	f.con.Close()
	assert.Contains(t, f.out.String(), "profile not found")
}

func TestBuildFailureLeavesCacheUntouched(t *testing.T) {
	f := newBuilder(t)
	f.rec.Fail("g++", 1)

	_, err := f.b.Build(context.Background(), BuildOptions{})
	var execErr *runner.ExecError
	require.ErrorAs(t, err, &execErr)

	_, ok, err := f.b.Cache.Stored()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRun(t *testing.T) {
	f := newBuilder(t)
	ctx := context.Background()

	err := f.b.Run(ctx, nil, nil, os.Stdout, os.Stderr)
	require.Error(t, err, "nothing built yet")

	_, err = f.b.Build(ctx, BuildOptions{})
	require.NoError(t, err)
	require.NoError(t, f.b.Run(ctx, []string{"--flag"}, nil, os.Stdout, os.Stderr))

	calls := f.rec.Calls()
	last := calls[len(calls)-1]
	assert.Equal(t, f.b.Manifest.ArtifactPath(), last.Name)
	assert.Equal(t, []string{"--flag"}, last.Args)
}
