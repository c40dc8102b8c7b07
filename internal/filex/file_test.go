package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir_CreatesNestedDirectories(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "a", "b", "c")

	got, err := EnsureDir(target)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))

	info, err := os.Stat(got)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestEnsureDir_ExistingDirectoryIsFine(t *testing.T) {
	base := t.TempDir()

	first, err := EnsureDir(base)
	require.NoError(t, err)

	second, err := EnsureDir(base)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
