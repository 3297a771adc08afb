package build

import (
	"fmt"
	"strings"

	"github.com/zynbuild/zyn/internal/runner"
)

// Step is one command of a backend's fixed sequence.
type Step struct {
	Name    string
	Command runner.Command
}

// Plan returns the ordered commands that build the tree at src. CMake-based
// backends write into buildDir and receive args at configure time; the
// others build inside src.
func Plan(kind Kind, src, buildDir string, args []string) ([]Step, error) {
	switch kind {
	case Ninja:
		configure := append([]string{"-S", src, "-B", buildDir, "-G", "Ninja"}, args...)
		return []Step{
			{Name: "configure", Command: runner.Command{Name: "cmake", Args: configure}},
			{Name: "build", Command: runner.Command{Name: "ninja", Args: []string{"-C", buildDir}}},
		}, nil
	case CMake:
		configure := append([]string{"-S", src, "-B", buildDir, "-DCMAKE_INSTALL_PREFIX=" + buildDir}, args...)
		return []Step{
			{Name: "configure", Command: runner.Command{Name: "cmake", Args: configure}},
			{Name: "install", Command: runner.Command{Name: "cmake", Args: []string{"--build", buildDir, "--target", "install"}}},
		}, nil
	case Autotools:
		return []Step{
			{Name: "configure", Command: runner.Command{Name: "./configure", Dir: src}},
			{Name: "build", Command: runner.Command{Name: "make", Dir: src}},
			{Name: "install", Command: runner.Command{Name: "make", Args: []string{"install"}, Dir: src}},
		}, nil
	case Make:
		return []Step{
			{Name: "build", Command: runner.Command{Name: "make", Dir: src}},
		}, nil
	}
	return nil, ErrNotBuildable
}

// Render formats a plan one step per line, for dry runs and diagnostics.
func Render(steps []Step) string {
	var b strings.Builder
	for _, s := range steps {
		fmt.Fprintf(&b, "%-9s %s", s.Name, s.Command)
		if s.Command.Dir != "" {
			fmt.Fprintf(&b, "  (in %s)", s.Command.Dir)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
