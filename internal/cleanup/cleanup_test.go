package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, age time.Duration) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	mtime := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestRemoveStalePartials(t *testing.T) {
	root := t.TempDir()

	stale := filepath.Join(root, "england", "png", "Liverpool.png.part")
	fresh := filepath.Join(root, "england", "svg", "Arsenal.svg.part")
	final := filepath.Join(root, "england", "png", "Arsenal.png")

	writeFile(t, stale, 2*time.Hour)
	writeFile(t, fresh, time.Minute)
	writeFile(t, final, 48*time.Hour)

	n, err := RemoveStalePartials(context.Background(), root, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.NoFileExists(t, stale)
	assert.FileExists(t, fresh)
	assert.FileExists(t, final, "completed files are never touched")
}

func TestRemoveStalePartials_MissingRoot(t *testing.T) {
	n, err := RemoveStalePartials(context.Background(), filepath.Join(t.TempDir(), "absent"), time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)
}
