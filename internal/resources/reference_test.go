package resources

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureReferenceDocWritesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resources", "grains_basics.pdf")

	wrote, err := EnsureReferenceDoc(path)
	require.NoError(t, err)
	assert.True(t, wrote)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	require.NoError(t, os.WriteFile(path, []byte("edited"), 0o644))
	wrote, err = EnsureReferenceDoc(path)
	require.NoError(t, err)
	assert.False(t, wrote)

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "edited", string(data))
}
