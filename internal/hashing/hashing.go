// Package hashing computes deterministic content digests over C/C++ source
// trees.
//
// A tree's digest is the SHA-256 of the concatenated bytes of its tracked
// files, taken in lexical order of their slash-separated relative paths, so
// the result never depends on directory traversal order.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

var sourceExts = map[string]bool{
	".c": true, ".cc": true, ".cpp": true, ".cxx": true, ".c++": true,
}

var headerExts = map[string]bool{
	".h": true, ".hh": true, ".hpp": true, ".hxx": true, ".h++": true, ".inl": true,
}

// Build-manifest marker files, lowercased.
var manifestNames = map[string]bool{
	"cmakelists.txt": true,
	"build.ninja":    true,
	"configure":      true,
	"configure.ac":   true,
	"makefile.am":    true,
	"makefile":       true,
	"gnumakefile":    true,
}

var skipDirs = map[string]bool{".git": true, ".hg": true, ".svn": true}

// IsSource reports whether name has a C/C++ source extension.
func IsSource(name string) bool {
	return sourceExts[strings.ToLower(filepath.Ext(name))]
}

// IsHeader reports whether name has a C/C++ header extension.
func IsHeader(name string) bool {
	return headerExts[strings.ToLower(filepath.Ext(name))]
}

// IsManifest reports whether name is a build-manifest marker file.
func IsManifest(name string) bool {
	return manifestNames[strings.ToLower(filepath.Base(name))]
}

// IsTracked reports whether name contributes to a dependency's content hash.
func IsTracked(name string) bool {
	return IsSource(name) || IsHeader(name) || IsManifest(name)
}

// HasExt returns a matcher for a single extension, with or without the dot.
func HasExt(ext string) func(string) bool {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return func(name string) bool {
		return strings.ToLower(filepath.Ext(name)) == ext
	}
}

// Files returns the slash-separated paths, relative to dir, of the regular
// files under dir whose base name satisfies match. VCS metadata directories
// are skipped and symlinks are not followed. The result is sorted.
func Files(dir string, match func(name string) bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if skipDirs[d.Name()] && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !match(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// Directory returns the content hash of the tracked files under dir.
func Directory(dir string) (string, error) {
	files, err := Files(dir, IsTracked)
	if err != nil {
		return "", err
	}
	return Sum(dir, files)
}

// Sum returns the content hash of the listed files, given as paths relative
// to dir. Only names satisfying IsTracked contribute, in sorted order, so a
// version-control listing and a directory walk of the same tree agree.
func Sum(dir string, files []string) (string, error) {
	var tracked []string
	for _, rel := range files {
		rel = filepath.ToSlash(rel)
		if IsTracked(path.Base(rel)) {
			tracked = append(tracked, rel)
		}
	}
	sort.Strings(tracked)

	h := sha256.New()
	for _, rel := range tracked {
		if err := copyFile(h, filepath.Join(dir, filepath.FromSlash(rel))); err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// File returns the hex SHA-256 of a single file's contents.
func File(path string) (string, error) {
	h := sha256.New()
	if err := copyFile(h, path); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Bytes returns the hex SHA-256 of data.
func Bytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func copyFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("hashing %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("hashing %s: %w", path, err)
	}
	return nil
}
