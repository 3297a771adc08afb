package project

import (
	"fmt"
	"path/filepath"

	"github.com/zynbuild/zyn/internal/config"
	"github.com/zynbuild/zyn/internal/hashing"
	"github.com/zynbuild/zyn/internal/runner"
)

// CompileCommand assembles the compiler invocation for m:
//
//	<compiler> -std=<standard> <sources...> -o <artifact> -I<include>
//	    -I<dependency includes...> -L<lib dirs...> -l<libraries...> <flags...>
//
// Sources are the files under the sources directory with the project's
// language extension, in sorted order.
func CompileCommand(m *config.Manifest, depIncludes, flags []string) (runner.Command, error) {
	srcDir := m.SourcesDir()
	files, err := hashing.Files(srcDir, hashing.HasExt(m.Project.Language))
	if err != nil {
		return runner.Command{}, err
	}
	if len(files) == 0 {
		return runner.Command{}, fmt.Errorf("no .%s sources in %s", m.Project.Language, srcDir)
	}

	args := []string{"-std=" + m.Project.Standard}
	for _, f := range files {
		args = append(args, filepath.Join(srcDir, filepath.FromSlash(f)))
	}
	args = append(args, "-o", m.ArtifactPath(), "-I"+m.IncludeDir())
	for _, dir := range depIncludes {
		args = append(args, "-I"+dir)
	}
	for _, dir := range m.Link.LibDirs {
		args = append(args, "-L"+m.Resolve(dir))
	}
	for _, lib := range m.Link.Libraries {
		args = append(args, "-l"+lib)
	}
	args = append(args, flags...)

	return runner.Command{Name: m.Project.Compiler, Args: args, Dir: m.Root}, nil
}
