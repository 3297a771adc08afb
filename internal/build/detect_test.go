package build

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0644))
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  Kind
	}{
		{"ninja", []string{"build.ninja"}, Ninja},
		{"cmake", []string{"CMakeLists.txt"}, CMake},
		{"cmake lowercase", []string{"cmakelists.txt"}, CMake},
		{"autotools", []string{"configure", "Makefile.in"}, Autotools},
		{"make", []string{"Makefile"}, Make},
		{"make lowercase", []string{"makefile"}, Make},
		{"gnu make", []string{"GNUmakefile"}, Make},
		{"ninja beats cmake", []string{"CMakeLists.txt", "build.ninja"}, Ninja},
		{"cmake beats configure", []string{"configure", "CMakeLists.txt", "Makefile"}, CMake},
		{"configure beats make", []string{"Makefile", "configure"}, Autotools},
		{"header only", []string{"lib.h", "README.md"}, None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			touch(t, dir, tt.files...)

			got, err := Detect(dir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectIgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "configure"), 0755))

	got, err := Detect(dir)
	require.NoError(t, err)
	assert.Equal(t, None, got)
}

func TestDetectMissingDir(t *testing.T) {
	_, err := Detect(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "ninja", Ninja.String())
	assert.Equal(t, "autotools", Autotools.String())
	assert.Equal(t, "none", None.String())
}
