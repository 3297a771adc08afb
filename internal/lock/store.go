// Package lock persists one {revision, content hash} record per dependency
// and verifies checked-out trees against it.
package lock

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const recordExt = ".lock"

// Store keeps lock records as independent files in one directory.
type Store struct {
	dir string
}

// NewStore returns a Store over dir. The directory is created on first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory holding the records.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the record path for name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+recordExt)
}

// Exists reports whether a record is present for name, well-formed or not.
func (s *Store) Exists(name string) (bool, error) {
	_, err := os.Stat(s.Path(name))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("checking lock record for %s: %w", name, err)
	}
}

// Read loads and strictly parses the record for name. A missing record
// yields an error wrapping fs.ErrNotExist.
func (s *Store) Read(name string) (Entry, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return Entry{}, fmt.Errorf("reading lock record for %s: %w", name, err)
	}
	e, err := Parse(data)
	if err != nil {
		return Entry{}, fmt.Errorf("lock record for %s: %w", name, err)
	}
	return e, nil
}

// Write persists {revision, hash} for name, replacing any prior record.
// The write is atomic: a temp file in the same directory is renamed over
// the record.
func (s *Store) Write(name, revision, hash string) error {
	if revision == "" || hash == "" {
		return fmt.Errorf("lock record for %s: revision and hash are required", name)
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating lock directory %s: %w", s.dir, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-"+name+"-*")
	if err != nil {
		return fmt.Errorf("creating temp lock record: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(Entry{Revision: revision, Hash: hash}.Format()); err != nil {
		return fmt.Errorf("writing temp lock record: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp lock record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp lock record: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path(name)); err != nil {
		return fmt.Errorf("renaming temp lock record to %s: %w", s.Path(name), err)
	}

	success = true
	return nil
}

// Remove deletes the record for name. Removing a missing record is not an error.
func (s *Store) Remove(name string) error {
	err := os.Remove(s.Path(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing lock record for %s: %w", name, err)
	}
	return nil
}

// Names lists the dependencies that have a record, sorted.
func (s *Store) Names() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing lock records: %w", err)
	}
	var names []string
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || strings.HasPrefix(n, ".") || !strings.HasSuffix(n, recordExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(n, recordExt))
	}
	sort.Strings(names)
	return names, nil
}

// VerifyStrict compares the stored record for name against the expected
// revision and hash. Every failure mode yields a non-OK Verification; none
// of them is tolerated partially.
func (s *Store) VerifyStrict(name, expectedRevision, expectedHash string) Verification {
	v := Verification{
		Name:     name,
		Expected: Entry{Revision: expectedRevision, Hash: expectedHash},
	}

	data, err := os.ReadFile(s.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		v.Outcome = Missing
		v.Detail = "no lock record"
		return v
	}
	if err != nil {
		v.Outcome = Malformed
		v.Detail = fmt.Sprintf("cannot read lock record: %v", err)
		return v
	}

	found, err := Parse(data)
	if err != nil {
		v.Outcome = Malformed
		v.Detail = err.Error()
		return v
	}
	v.Found = found

	switch {
	case found.Revision != expectedRevision:
		v.Outcome = RevisionMismatch
	case found.Hash != expectedHash:
		v.Outcome = HashMismatch
	default:
		v.Outcome = Match
	}
	return v
}
