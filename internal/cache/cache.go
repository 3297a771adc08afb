// Package cache decides whether the primary project needs recompiling by
// fingerprinting its own sources and headers.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/zynbuild/zyn/internal/config"
	"github.com/zynbuild/zyn/internal/hashing"
)

// FingerprintFile is the name of the persisted fingerprint inside the cache
// directory.
const FingerprintFile = "source_hashes.txt"

const memoSize = 4096

// Reason explains a rebuild decision.
type Reason string

const (
	UpToDate         Reason = "up to date"
	ArtifactMissing  Reason = "build artifact is missing"
	NoFingerprint    Reason = "no stored fingerprint"
	SourcesChanged   Reason = "sources changed"
	LocalDepsChanged Reason = "local dependency changed"
	Forced           Reason = "forced"
)

// Decision is the outcome of Check.
type Decision struct {
	Rebuild bool
	Reason  Reason
	Detail  string // the changed local dependency file, when relevant
}

type fileKey struct {
	path    string
	size    int64
	modTime int64
}

// Cache persists the SourceFingerprint of one project. Per-file digests are
// memoized by path, size and modification time so a check followed by an
// update hashes each file once.
type Cache struct {
	dir     string
	digests *lru.Cache[fileKey, string]
}

// New returns a Cache storing its fingerprint under dir.
func New(dir string) (*Cache, error) {
	digests, err := lru.New[fileKey, string](memoSize)
	if err != nil {
		return nil, fmt.Errorf("creating digest cache: %w", err)
	}
	return &Cache{dir: dir, digests: digests}, nil
}

// Path returns the fingerprint file path.
func (c *Cache) Path() string {
	return filepath.Join(c.dir, FingerprintFile)
}

// Fingerprint digests every source file under the project's sources
// directory with the project's language extension, plus every header under
// its include directory. Files are visited in sorted path order.
func (c *Cache) Fingerprint(m *config.Manifest) (string, error) {
	h := sha256.New()

	sections := []struct {
		label string
		dir   string
		match func(string) bool
	}{
		{"src", m.SourcesDir(), hashing.HasExt(m.Project.Language)},
		{"include", m.IncludeDir(), hashing.IsHeader},
	}

	for _, s := range sections {
		files, err := filesIfExists(s.dir, s.match)
		if err != nil {
			return "", err
		}
		for _, rel := range files {
			digest, err := c.digest(filepath.Join(s.dir, filepath.FromSlash(rel)))
			if err != nil {
				return "", err
			}
			fmt.Fprintf(h, "%s/%s %s\n", s.label, rel, digest)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Stored returns the persisted fingerprint, if any.
func (c *Cache) Stored() (string, bool, error) {
	data, err := os.ReadFile(c.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading fingerprint: %w", err)
	}
	fp := strings.TrimSpace(string(data))
	return fp, fp != "", nil
}

// Check decides whether m's artifact must be rebuilt.
func (c *Cache) Check(m *config.Manifest) (Decision, error) {
	artifact, err := os.Stat(m.ArtifactPath())
	if errors.Is(err, fs.ErrNotExist) {
		return Decision{Rebuild: true, Reason: ArtifactMissing}, nil
	}
	if err != nil {
		return Decision{}, fmt.Errorf("checking build artifact: %w", err)
	}

	stored, ok, err := c.Stored()
	if err != nil {
		return Decision{}, err
	}
	if !ok {
		return Decision{Rebuild: true, Reason: NoFingerprint}, nil
	}

	current, err := c.Fingerprint(m)
	if err != nil {
		return Decision{}, err
	}
	if current != stored {
		return Decision{Rebuild: true, Reason: SourcesChanged}, nil
	}

	for _, dir := range m.LocalPaths() {
		newer, err := newerThan(dir, artifact.ModTime().UnixNano())
		if err != nil {
			return Decision{}, err
		}
		if newer != "" {
			return Decision{Rebuild: true, Reason: LocalDepsChanged, Detail: newer}, nil
		}
	}

	return Decision{Reason: UpToDate}, nil
}

// NeedsRebuild reports whether m's artifact must be rebuilt.
func (c *Cache) NeedsRebuild(m *config.Manifest) (bool, error) {
	d, err := c.Check(m)
	return d.Rebuild, err
}

// Update persists m's current fingerprint. Call it only after a successful
// build.
func (c *Cache) Update(m *config.Manifest) error {
	fp, err := c.Fingerprint(m)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory %s: %w", c.dir, err)
	}

	tmp, err := os.CreateTemp(c.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp fingerprint: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.WriteString(fp + "\n"); err != nil {
		return fmt.Errorf("writing temp fingerprint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp fingerprint: %w", err)
	}
	if err := os.Rename(tmpPath, c.Path()); err != nil {
		return fmt.Errorf("renaming temp fingerprint: %w", err)
	}

	success = true
	return nil
}

// Invalidate removes the stored fingerprint so the next check rebuilds.
func (c *Cache) Invalidate() error {
	err := os.Remove(c.Path())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing fingerprint: %w", err)
	}
	return nil
}

func (c *Cache) digest(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	key := fileKey{path: path, size: info.Size(), modTime: info.ModTime().UnixNano()}
	if d, ok := c.digests.Get(key); ok {
		return d, nil
	}
	d, err := hashing.File(path)
	if err != nil {
		return "", err
	}
	c.digests.Add(key, d)
	return d, nil
}

func filesIfExists(dir string, match func(string) bool) ([]string, error) {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return hashing.Files(dir, match)
}

// newerThan returns the first tracked file under dir modified after t.
func newerThan(dir string, t int64) (string, error) {
	files, err := filesIfExists(dir, hashing.IsTracked)
	if err != nil {
		return "", err
	}
	for _, rel := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		info, err := os.Stat(p)
		if err != nil {
			return "", fmt.Errorf("checking %s: %w", p, err)
		}
		if info.ModTime().UnixNano() > t {
			return p, nil
		}
	}
	return "", nil
}
