package extract

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kb-labs/forgeinst/internal/gamedir"
)

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func newDir(t *testing.T) gamedir.Dir {
	return gamedir.Dir{Root: t.TempDir(), TempDir: ".tmp"}
}

func TestWorkDirStripsExtension(t *testing.T) {
	d := gamedir.Dir{Root: "/game", TempDir: ".tmp"}
	assert.Equal(t, filepath.Join("/game", ".tmp", "forge-1.12.2-installer"), WorkDir("/dl/forge-1.12.2-installer.jar", d))
}

func TestExtractUnpacksEntries(t *testing.T) {
	d := newDir(t)
	archive := filepath.Join(t.TempDir(), "forge-installer.jar")
	writeZip(t, archive, map[string]string{
		"install_profile.json": `{"a":1}`,
		"maven/net/x/x-1.jar":  "jar",
		"META-INF/":            "",
		"data/client.lzma":     "lzma",
	})

	e := New(zerolog.Nop())
	require.NoError(t, e.Extract(archive, d))

	work := WorkDir(archive, d)
	data, err := os.ReadFile(filepath.Join(work, "install_profile.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))
	assert.FileExists(t, filepath.Join(work, "maven", "net", "x", "x-1.jar"))
	assert.DirExists(t, filepath.Join(work, "META-INF"))
}

func TestExtractIsIdempotentOnExistingDir(t *testing.T) {
	d := newDir(t)
	archive := filepath.Join(t.TempDir(), "i.jar")
	writeZip(t, archive, map[string]string{"version.json": "{}"})
	require.NoError(t, os.MkdirAll(WorkDir(archive, d), 0o755))

	e := New(zerolog.Nop())
	require.NoError(t, e.Extract(archive, d))
	require.NoError(t, e.Extract(archive, d))
}

func TestExtractMissingArchive(t *testing.T) {
	e := New(zerolog.Nop())
	err := e.Extract(filepath.Join(t.TempDir(), "nope.jar"), newDir(t))

	var xe *ExtractionError
	require.True(t, errors.As(err, &xe))
	assert.Equal(t, "open", xe.Op)
}

func TestExtractCorruptArchive(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "bad.jar")
	require.NoError(t, os.WriteFile(archive, []byte("not a zip"), 0o644))

	var xe *ExtractionError
	assert.ErrorAs(t, New(zerolog.Nop()).Extract(archive, newDir(t)), &xe)
}

func TestExtractRejectsEscapingEntries(t *testing.T) {
	d := newDir(t)
	archive := filepath.Join(t.TempDir(), "evil.jar")
	writeZip(t, archive, map[string]string{"../../escape.txt": "x"})

	var xe *ExtractionError
	require.ErrorAs(t, New(zerolog.Nop()).Extract(archive, d), &xe)
	assert.NoFileExists(t, filepath.Join(d.Root, "escape.txt"))
}

func TestExtractRejectsOversizedEntries(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "big.jar")
	writeZip(t, archive, map[string]string{"big.bin": "0123456789"})

	e := New(zerolog.Nop())
	e.MaxEntryBytes = 4
	var xe *ExtractionError
	assert.ErrorAs(t, e.Extract(archive, newDir(t)), &xe)
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	arr := filepath.Join(dir, "arr.json")
	null := filepath.Join(dir, "null.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"id":"x"}`), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte(`{"id":`), 0o644))
	require.NoError(t, os.WriteFile(arr, []byte(`[1,2]`), 0o644))
	require.NoError(t, os.WriteFile(null, []byte(`null`), 0o644))

	e := New(zerolog.Nop())
	def := map[string]any{"default": true}

	assert.Equal(t, "x", e.LoadJSON(good, def)["id"])
	assert.Equal(t, def, e.LoadJSON(bad, def))
	assert.Equal(t, def, e.LoadJSON(arr, def))
	assert.Equal(t, def, e.LoadJSON(null, def))
	assert.Equal(t, def, e.LoadJSON(filepath.Join(dir, "missing.json"), def))
	assert.Equal(t, def, e.LoadJSON(dir, def), "a directory is unreadable as a file")
}

func TestCleanupRemovesWorkDir(t *testing.T) {
	d := newDir(t)
	archive := filepath.Join(t.TempDir(), "i.jar")
	writeZip(t, archive, map[string]string{"a/b.txt": "x"})

	e := New(zerolog.Nop())
	require.NoError(t, e.Extract(archive, d))
	e.Cleanup(archive, d)
	assert.NoDirExists(t, WorkDir(archive, d))

	// A second cleanup of a missing dir is a no-op.
	e.Cleanup(archive, d)
}
