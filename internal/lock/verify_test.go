package lock

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyStrictMatch(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Write("fmt", "rev1", "hash1"))

	v := s.VerifyStrict("fmt", "rev1", "hash1")
	assert.True(t, v.OK())
	assert.Equal(t, Match, v.Outcome)
	assert.NoError(t, v.Err())
}

func TestVerifyStrictHashMismatch(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Write("fmt", "rev1", "hash1"))

	v := s.VerifyStrict("fmt", "rev1", "hash2")
	assert.False(t, v.OK())
	assert.Equal(t, HashMismatch, v.Outcome)

	var mismatch *MismatchError
	require.ErrorAs(t, v.Err(), &mismatch)
	assert.Equal(t, "fmt", mismatch.Name)
	assert.Equal(t, "hash2", mismatch.Expected)
	assert.Equal(t, "hash1", mismatch.Found)
	assert.Contains(t, mismatch.Error(), "hash mismatch")
}

func TestVerifyStrictRevisionMismatch(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Write("fmt", "rev1", "hash1"))

	v := s.VerifyStrict("fmt", "rev2", "hash1")
	assert.Equal(t, RevisionMismatch, v.Outcome)
	assert.Equal(t, "rev2", v.ExpectedValue())
	assert.Equal(t, "rev1", v.FoundValue())
}

func TestVerifyStrictMissing(t *testing.T) {
	s := NewStore(t.TempDir())
	v := s.VerifyStrict("fmt", "rev1", "hash1")
	assert.Equal(t, Missing, v.Outcome)
	assert.Error(t, v.Err())
}

func TestVerifyStrictMalformed(t *testing.T) {
	tests := map[string]string{
		"one line":    "rev=rev1\n",
		"three lines": "rev=rev1\nsha256=hash1\nextra\n",
		"no prefix":   "rev1\nhash1\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			s := NewStore(t.TempDir())
			require.NoError(t, os.WriteFile(s.Path("fmt"), []byte(content), 0644))

			v := s.VerifyStrict("fmt", "rev1", "hash1")
			assert.Equal(t, Malformed, v.Outcome)
			assert.False(t, v.OK())
			assert.NotEmpty(t, v.Detail)
		})
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "match", Match.String())
	assert.Equal(t, "hash mismatch", HashMismatch.String())
	assert.Equal(t, "outcome(42)", Outcome(42).String())
}
