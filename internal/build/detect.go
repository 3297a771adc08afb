// Package build detects which native build system a dependency tree uses and
// drives it.
package build

import (
	"fmt"
	"os"
	"strings"
)

// Kind identifies a build backend.
type Kind int

const (
	None Kind = iota
	Ninja
	CMake
	Autotools
	Make
)

func (k Kind) String() string {
	switch k {
	case Ninja:
		return "ninja"
	case CMake:
		return "cmake"
	case Autotools:
		return "autotools"
	case Make:
		return "make"
	}
	return "none"
}

// markers lists the file names that identify each backend, highest priority
// first. Names are compared case-insensitively.
var markers = []struct {
	kind  Kind
	names []string
}{
	{Ninja, []string{"build.ninja"}},
	{CMake, []string{"cmakelists.txt"}},
	{Autotools, []string{"configure"}},
	{Make, []string{"makefile", "gnumakefile"}},
}

// Detect inspects the top level of dir and returns the backend it uses.
// A tree with no recognized marker yields None and no error.
func Detect(dir string) (Kind, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return None, fmt.Errorf("detecting build system in %s: %w", dir, err)
	}

	present := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		present[strings.ToLower(e.Name())] = true
	}

	for _, m := range markers {
		for _, n := range m.names {
			if present[n] {
				return m.kind, nil
			}
		}
	}
	return None, nil
}
