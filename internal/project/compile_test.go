package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zynbuild/zyn/internal/config"
)

func newManifest(t *testing.T) *config.Manifest {
	t.Helper()
	root := t.TempDir()
	m := &config.Manifest{
		Project:  config.Project{Name: "app", Standard: "c++20", Compiler: "g++"},
		Link:     config.Link{Libraries: []string{"pthread", "m"}, LibDirs: []string{"lib"}},
		Profiles: map[string][]string{"debug": {"-g", "-O0"}},
		Root:     root,
	}
	m.ApplyDefaults()
	for _, f := range []string{"src/main.cpp", "src/util/b.cpp", "src/a.cpp", "src/legacy.c", "include/app.h"} {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte("// "+f+"\n"), 0644))
	}
	return m
}

func TestCompileCommand(t *testing.T) {
	m := newManifest(t)
	src := m.SourcesDir()

	cmd, err := CompileCommand(m, []string{"/deps/fmt/include"}, []string{"-g"})
	require.NoError(t, err)

	assert.Equal(t, "g++", cmd.Name)
	assert.Equal(t, m.Root, cmd.Dir)
	assert.Equal(t, []string{
		"-std=c++20",
		filepath.Join(src, "a.cpp"),
		filepath.Join(src, "main.cpp"),
		filepath.Join(src, "util", "b.cpp"),
		"-o", m.ArtifactPath(),
		"-I" + m.IncludeDir(),
		"-I/deps/fmt/include",
		"-L" + filepath.Join(m.Root, "lib"),
		"-lpthread",
		"-lm",
		"-g",
	}, cmd.Args)
}

func TestCompileCommandNoSources(t *testing.T) {
	m := newManifest(t)
	m.Project.Language = "cc"

	_, err := CompileCommand(m, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .cc sources")
}
