package zyn

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zynbuild/zyn/internal/hashing"
	"github.com/zynbuild/zyn/internal/runner"
	"github.com/zynbuild/zyn/internal/runner/runnertest"
)

const (
	shaA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	shaB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

const manifest = `
[project]
name = "app"
compiler = "g++"

[dependencies]
foo = { git = "https://example.com/foo.git", tag = "v1.0.0" }
`

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
}

// newClient returns a Client over a fresh project whose git and compiler
// invocations are scripted by the returned Recorder.
func newClient(t *testing.T) (*Client, *runnertest.Recorder, string) {
	t.Helper()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"zyn.toml":     manifest,
		"src/main.cpp": "int main() { return 0; }\n",
	})

	c, err := New(Options{ProjectRoot: root, Jobs: 2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	rec := runnertest.New()
	rec.OnFunc("git clone https://example.com/foo.git", func(cmd runner.Command) (string, error) {
		writeFiles(t, cmd.Args[len(cmd.Args)-1], map[string]string{
			".git/HEAD":     "ref: refs/heads/main\n",
			"include/foo.h": "int foo();\n",
		})
		return "", nil
	})
	rec.On("rev-list -n 1 refs/tags/v1.0.0", shaA+"\n")
	rec.On("rev-parse HEAD", shaA+"\n")
	rec.OnFunc("ls-files -z", func(cmd runner.Command) (string, error) {
		files, err := hashing.Files(cmd.Args[1], func(string) bool { return true })
		return strings.Join(files, "\x00"), err
	})
	rec.OnFunc("g++", func(cmd runner.Command) (string, error) {
		return "", os.WriteFile(filepath.Join(root, "build", "app"), []byte("bin"), 0755)
	})
	c.runner = rec
	return c, rec, root
}

func TestNewFindsManifest(t *testing.T) {
	c, _, root := newClient(t)

	m, err := c.Manifest()
	require.NoError(t, err)
	assert.Equal(t, "app", m.Project.Name)
	assert.Equal(t, filepath.Join(root, ".zyn"), c.layout.Root)
}

func TestNewWithoutManifest(t *testing.T) {
	_, err := New(Options{ProjectRoot: t.TempDir()})
	assert.Error(t, err)
}

func TestNewRejectsBadLogLevel(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"zyn.toml": manifest})

	_, err := New(Options{ProjectRoot: root, LogLevel: "loud"})
	assert.Error(t, err)
}

func TestInstallThenVerify(t *testing.T) {
	c, _, root := newClient(t)
	ctx := context.Background()

	res, err := c.Install(ctx)
	require.NoError(t, err)
	dep, ok := res.Get("foo")
	require.True(t, ok)
	assert.Equal(t, Built, dep.State)
	assert.FileExists(t, filepath.Join(root, ".zyn", "lock", "foo.lock"))

	report, err := c.Verify(ctx)
	require.NoError(t, err)
	assert.True(t, report.OK())

	statuses, err := c.Status()
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].Installed)
}

func TestBuildRefusesOnLockMismatch(t *testing.T) {
	c, rec, root := newClient(t)
	ctx := context.Background()

	_, err := c.Install(ctx)
	require.NoError(t, err)

	// The upstream tag moved.
	rec.On("rev-list -n 1 refs/tags/v1.0.0", shaB+"\n")
	rec.On("rev-parse HEAD", shaB+"\n")

	_, err = c.Build(ctx, BuildOptions{})
	require.Error(t, err)
	var mismatch *MismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "foo", mismatch.Name)
	assert.Contains(t, err.Error(), "refusing to build")
	assert.Zero(t, rec.Count("g++"))
	assert.NoFileExists(t, filepath.Join(root, "build", "app"))
}

func TestBuildAndNeedsRebuild(t *testing.T) {
	c, rec, root := newClient(t)
	ctx := context.Background()

	stale, err := c.NeedsRebuild()
	require.NoError(t, err)
	assert.True(t, stale)

	res, err := c.Build(ctx, BuildOptions{})
	require.NoError(t, err)
	assert.True(t, res.Compiled)
	assert.Equal(t, filepath.Join(root, "build", "app"), res.Artifact)
	assert.Contains(t, res.Command.Args, "-I"+filepath.Join(root, ".zyn", "deps", "foo", "include"))

	stale, err = c.NeedsRebuild()
	require.NoError(t, err)
	assert.False(t, stale)

	res, err = c.Build(ctx, BuildOptions{})
	require.NoError(t, err)
	assert.False(t, res.Compiled)
	assert.Equal(t, 1, rec.Count("g++"))
}

func TestUpdateUnknownName(t *testing.T) {
	c, _, _ := newClient(t)

	_, err := c.Update(context.Background(), "nope")
	assert.Error(t, err)
}

func TestAddGitInstallsOnlyTheNewDependency(t *testing.T) {
	c, rec, root := newClient(t)
	rec.OnFunc("git clone https://example.com/bar.git", func(cmd runner.Command) (string, error) {
		writeFiles(t, cmd.Args[len(cmd.Args)-1], map[string]string{"Makefile": "all:\n"})
		return "", nil
	})
	rec.On("rev-list -n 1 refs/tags/v2", shaB+"\n")

	name, res, err := c.AddGit(context.Background(), "https://example.com/bar.git@v2")
	require.NoError(t, err)
	assert.Equal(t, "bar", name)
	assert.Len(t, res.Dependencies, 1)
	assert.Zero(t, rec.Count("git clone https://example.com/foo.git"))
	assert.Equal(t, 1, rec.Count("make"))
	assert.FileExists(t, filepath.Join(root, ".zyn", "lock", "bar.lock"))

	m, err := c.Manifest()
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/bar.git", m.Dependencies["bar"].Git)
	assert.Equal(t, "v2", m.Dependencies["bar"].Tag)
	assert.Zero(t, rec.Count("describe"), "an explicit v-tag is kept as given")

	_, _, err = c.AddGit(context.Background(), "https://example.com/bar.git")
	assert.ErrorContains(t, err, "already exists")
}

func TestAddPath(t *testing.T) {
	c, _, root := newClient(t)
	lib := filepath.Join(root, "vendor", "mylib")
	require.NoError(t, os.MkdirAll(lib, 0755))

	name, err := c.AddPath(lib)
	require.NoError(t, err)
	assert.Equal(t, "mylib", name)

	m, err := c.Manifest()
	require.NoError(t, err)
	assert.Equal(t, "vendor/mylib", m.Dependencies["mylib"].Path)
	assert.Equal(t, []string{lib}, m.LocalPaths())

	_, err = c.AddPath(filepath.Join(root, "zyn.toml"))
	assert.ErrorContains(t, err, "not a directory")
}

func TestCleanKeepsLocks(t *testing.T) {
	c, _, root := newClient(t)
	ctx := context.Background()
	_, err := c.Build(ctx, BuildOptions{})
	require.NoError(t, err)

	removed, err := c.Clean(ctx, true)
	require.NoError(t, err)
	assert.Contains(t, removed, filepath.Join(root, "build"))
	assert.Contains(t, removed, filepath.Join(root, ".zyn", "deps"))
	assert.FileExists(t, filepath.Join(root, ".zyn", "lock", "foo.lock"))
	assert.NoDirExists(t, filepath.Join(root, "build"))
}

func TestAddGitPinsLatestTag(t *testing.T) {
	c, rec, root := newClient(t)
	rec.OnFunc("git clone https://example.com/baz.git", func(cmd runner.Command) (string, error) {
		writeFiles(t, cmd.Args[len(cmd.Args)-1], map[string]string{"include/baz.h": "int baz();\n"})
		return "", nil
	})
	rec.On("describe --tags --abbrev=0", "v1.4.0\n")
	rec.On("rev-list -n 1 refs/tags/v1.4.0", shaB+"\n")

	name, res, err := c.AddGit(context.Background(), "https://example.com/baz.git")
	require.NoError(t, err)
	assert.Equal(t, "baz", name)
	dep, ok := res.Get("baz")
	require.True(t, ok)
	assert.Equal(t, shaB, dep.Revision)
	assert.Zero(t, rec.Count("ls-remote origin HEAD"), "a tagged release is locked, not the remote HEAD")
	assert.Equal(t, 1, rec.Count("clone --bare --quiet https://example.com/baz.git"))

	m, err := c.Manifest()
	require.NoError(t, err)
	assert.Equal(t, "v1.4.0", m.Dependencies["baz"].Tag)

	entries, err := os.ReadDir(filepath.Join(root, ".zyn", "tmp"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAddGitPrefixesBareVersion(t *testing.T) {
	c, rec, _ := newClient(t)
	rec.OnFunc("git clone https://example.com/qux.git", func(cmd runner.Command) (string, error) {
		writeFiles(t, cmd.Args[len(cmd.Args)-1], map[string]string{"qux.h": "int qux();\n"})
		return "", nil
	})
	rec.On("--verify --quiet refs/tags/v1.2", shaB+"\n")
	rec.On("rev-list -n 1 refs/tags/v1.2", shaB+"\n")

	_, _, err := c.AddGit(context.Background(), "https://example.com/qux.git@1.2")
	require.NoError(t, err)

	m, err := c.Manifest()
	require.NoError(t, err)
	assert.Equal(t, "v1.2", m.Dependencies["qux"].Tag)
}

func TestAddGitUntaggedRepository(t *testing.T) {
	c, rec, _ := newClient(t)
	rec.OnFunc("git clone https://example.com/raw.git", func(cmd runner.Command) (string, error) {
		writeFiles(t, cmd.Args[len(cmd.Args)-1], map[string]string{"raw.h": "int raw();\n"})
		return "", nil
	})
	rec.Fail("describe --tags", 128)
	rec.On("ls-remote origin HEAD", shaB+"\tHEAD\n")

	_, res, err := c.AddGit(context.Background(), "https://example.com/raw.git")
	require.NoError(t, err)
	dep, _ := res.Get("raw")
	assert.Equal(t, shaB, dep.Revision)

	m, err := c.Manifest()
	require.NoError(t, err)
	assert.Empty(t, m.Dependencies["raw"].Tag)
}
