package host

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	require.NoError(t, os.WriteFile(a, []byte("ab"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("c"), 0o600))

	first, err := Fingerprint(a, b)
	require.NoError(t, err)
	again, err := Fingerprint(a, b)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	// same concatenated bytes, different split
	require.NoError(t, os.WriteFile(a, []byte("a"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("bc"), 0o600))
	shifted, err := Fingerprint(a, b)
	require.NoError(t, err)
	assert.NotEqual(t, first, shifted)

	require.NoError(t, os.Remove(b))
	missing, err := Fingerprint(a, b)
	require.NoError(t, err)
	assert.NotEqual(t, shifted, missing)
}
