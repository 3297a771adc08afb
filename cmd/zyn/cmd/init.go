package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zynbuild/zyn/internal/config"
)

var initForce bool

// initTemplate is the default zyn.toml scaffold. %s is the project name.
const initTemplate = `# zyn project manifest
[project]
name = %q
version = "0.1.0"
language = "cpp"
standard = "c++17"
# compiler = "g++"

[directories]
sources = "src"
include = "include"
build = "build"

[dependencies]
# fmt = { git = "https://github.com/fmtlib/fmt.git", tag = "10.2.1" }
# mylib = { path = "../mylib" }
# zlib = { git = "https://github.com/madler/zlib.git", cmake_args = "-DZLIB_BUILD_EXAMPLES=OFF" }

[link]
libraries = []

[profiles]
debug = ["-g", "-O0"]
release = ["-O2", "-DNDEBUG"]
`

const mainTemplate = `#include <iostream>

int main() {
    std::cout << "Hello from %s\n";
    return 0;
}
`

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Create a starter zyn.toml and source layout",
	Long: `Creates zyn.toml in the current directory (or at --manifest) together with
src/main.cpp and an empty include directory. The project is named after the
directory unless a name is given.

Use --force to overwrite an existing manifest.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath := manifestPath
		if outPath == "" {
			outPath = config.ManifestNames[0]
		}
		outPath, err := filepath.Abs(outPath)
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}
		root := filepath.Dir(outPath)

		name := filepath.Base(root)
		if len(args) == 1 {
			name = args[0]
		}

		if !initForce {
			if _, err := os.Stat(outPath); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", outPath)
			}
		}

		if err := os.WriteFile(outPath, fmt.Appendf(nil, initTemplate, name), 0644); err != nil {
			return fmt.Errorf("writing manifest: %w", err)
		}
		if err := os.MkdirAll(filepath.Join(root, config.DefaultInclude), 0755); err != nil {
			return err
		}
		mainPath := filepath.Join(root, config.DefaultSources, "main.cpp")
		if _, err := os.Stat(mainPath); os.IsNotExist(err) {
			if err := os.MkdirAll(filepath.Dir(mainPath), 0755); err != nil {
				return err
			}
			if err := os.WriteFile(mainPath, fmt.Appendf(nil, mainTemplate, name), 0644); err != nil {
				return fmt.Errorf("writing %s: %w", mainPath, err)
			}
		}

		info("Created %s", outPath)
		info("")
		info("Next steps:")
		info("  1. Add dependencies with 'zyn add <url>'")
		info("  2. Run 'zyn build' to install them and compile")
		info("  3. Run 'zyn run' to start the program")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing manifest")
	rootCmd.AddCommand(initCmd)
}
