package lock

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRead(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "lock"))

	require.NoError(t, s.Write("fmt", "a1b2", "cafe"))

	data, err := os.ReadFile(s.Path("fmt"))
	require.NoError(t, err)
	assert.Equal(t, "rev=a1b2\nsha256=cafe\n", string(data))

	e, err := s.Read("fmt")
	require.NoError(t, err)
	assert.Equal(t, Entry{Revision: "a1b2", Hash: "cafe"}, e)
}

func TestWriteReplaces(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Write("fmt", "old", "1111"))
	require.NoError(t, s.Write("fmt", "new", "2222"))

	e, err := s.Read("fmt")
	require.NoError(t, err)
	assert.Equal(t, "new", e.Revision)
	assert.Equal(t, "2222", e.Hash)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWriteRequiresFields(t *testing.T) {
	s := NewStore(t.TempDir())
	assert.Error(t, s.Write("fmt", "", "cafe"))
	assert.Error(t, s.Write("fmt", "a1", ""))
}

func TestReadMissing(t *testing.T) {
	s := NewStore(t.TempDir())
	_, err := s.Read("nope")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestExistsAndRemove(t *testing.T) {
	s := NewStore(t.TempDir())

	ok, err := s.Exists("zlib")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Write("zlib", "r", "h"))
	ok, err = s.Exists("zlib")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Remove("zlib"))
	require.NoError(t, s.Remove("zlib"))
	ok, err = s.Exists("zlib")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNames(t *testing.T) {
	s := NewStore(t.TempDir())

	names, err := s.Names()
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, s.Write("zlib", "r", "h"))
	require.NoError(t, s.Write("fmt", "r", "h"))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("x"), 0644))

	names, err = s.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"fmt", "zlib"}, names)
}

func TestNamesMissingDir(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "absent"))
	names, err := s.Names()
	require.NoError(t, err)
	assert.Nil(t, names)
}
