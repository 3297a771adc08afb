package build

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanGolden(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		src  string
		dir  string
		args []string
	}{
		{"plan_ninja", Ninja, "/deps/fmt", "/build/fmt", []string{"-DFMT_TEST=OFF"}},
		{"plan_cmake", CMake, "/deps/fmt", "/build/fmt", []string{"-DNAME=a b"}},
		{"plan_autotools", Autotools, "/deps/zlib", "/build/zlib", []string{"-Dignored"}},
		{"plan_make", Make, "/deps/zlib", "/build/zlib", nil},
	}

	g := goldie.New(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps, err := Plan(tt.kind, tt.src, tt.dir, tt.args)
			require.NoError(t, err)
			g.Assert(t, tt.name, []byte(Render(steps)))
		})
	}
}

func TestPlanNone(t *testing.T) {
	_, err := Plan(None, "/src", "/build", nil)
	assert.ErrorIs(t, err, ErrNotBuildable)
}
