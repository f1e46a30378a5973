package appdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocateOverride(t *testing.T) {
	dir := t.TempDir()
	jar := filepath.Join(dir, "forge.iw.jar")
	require.NoError(t, os.WriteFile(jar, []byte("jar"), 0o644))

	got, err := Locate(dir, "forge.iw.jar")
	require.NoError(t, err)
	assert.Equal(t, jar, got)
}

func TestLocateOverrideMissing(t *testing.T) {
	_, err := Locate(t.TempDir(), "forge.iw.jar")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocateSearchesXDGDataDirs(t *testing.T) {
	home := t.TempDir()
	system := t.TempDir()
	// Registered first so it runs after the env vars are restored.
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_DATA_HOME", home)
	t.Setenv("XDG_DATA_DIRS", system)
	xdg.Reload()

	_, err := Locate("", "forge.iw.jar")
	assert.ErrorIs(t, err, ErrNotFound)

	jar := filepath.Join(system, DirName, "forge.iw.jar")
	require.NoError(t, os.MkdirAll(filepath.Dir(jar), 0o755))
	require.NoError(t, os.WriteFile(jar, []byte("jar"), 0o644))

	got, err := Locate("", "forge.iw.jar")
	require.NoError(t, err)
	assert.Equal(t, jar, got)
	assert.Equal(t, filepath.Join(home, DirName), Home())
}
