package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zynbuild/zyn/internal/lock"
	"github.com/zynbuild/zyn/pkg/zyn"
)

func TestWithExitCode(t *testing.T) {
	assert.NoError(t, withExitCode(nil))

	plain := errors.New("boom")
	assert.Same(t, plain, withExitCode(plain))

	mismatch := &zyn.MismatchError{Name: "foo", Outcome: lock.HashMismatch, Expected: "a", Found: "b"}
	err := withExitCode(fmt.Errorf("refusing to build: %w", mismatch))

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, ExitMismatch, exitErr.Code)
	assert.Contains(t, err.Error(), "lock mismatch for foo")
	assert.ErrorIs(t, err, mismatch)
}

func TestExitErrorMessage(t *testing.T) {
	assert.Equal(t, "exit status 3", (&ExitError{Code: 3}).Error())
}

func TestShort(t *testing.T) {
	assert.Equal(t, "abc", short("abc"))
	assert.Equal(t, "0123456789ab", short("0123456789abcdef"))
}

func TestPaintWithoutColor(t *testing.T) {
	old := settings
	settings.NoColor = true
	t.Cleanup(func() { settings = old })

	assert.Equal(t, "ok", paint(successStyle, "ok"))
}
