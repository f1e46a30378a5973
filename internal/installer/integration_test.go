package installer

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kb-labs/forgeinst/internal/config"
	"github.com/kb-labs/forgeinst/internal/logger"
	"github.com/kb-labs/forgeinst/internal/runner"
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

const legacyProfile = `{
  "install": {"minecraft": "1.12.2"},
  "versionInfo": {
    "id": "1.12.2-forge-14.23.5.2859",
    "libraries": [
      {"name": "net.minecraftforge:forge:1.12.2-14.23.5.2859", "clientreq": true, "checksums": ["aa"]},
      {"name": "org.ow2.asm:asm-all:5.2", "clientreq": true},
      {"name": "lzma:lzma:0.0.1", "serverreq": true, "checksums": ["bb"]}
    ]
  }
}`

// clobberingRunner behaves like the real installer: it rewrites the state file.
type clobberingRunner struct {
	stateFile string
	err       error
}

func (r *clobberingRunner) Run(context.Context, runner.Invocation) error {
	if err := os.WriteFile(r.stateFile, []byte(`{"profiles":{"forge":{}}}`), 0o644); err != nil {
		return err
	}
	return r.err
}

func TestInstallLegacyArchiveEndToEnd(t *testing.T) {
	root := t.TempDir()
	game := filepath.Join(root, "game")
	require.NoError(t, os.MkdirAll(game, 0o755))
	state := filepath.Join(game, "launcher_profiles.json")
	require.NoError(t, os.WriteFile(state, []byte(`{"profiles":{"mine":{}}}`), 0o644))

	archive := filepath.Join(root, "forge-1.12.2-installer.jar")
	writeZip(t, archive, map[string]string{"install_profile.json": legacyProfile})

	for _, failing := range []bool{false, true} {
		ins := New(config.Defaults(), logger.NewDiscard())
		ins.WrapperJar = filepath.Join(root, "forge.iw.jar")
		acq := &fakeAcquirer{rec: &recorder{}}
		ins.Libraries = acq
		cr := &clobberingRunner{stateFile: state}
		if failing {
			cr.err = &runner.ExitError{Code: 1}
		}
		ins.Runner = cr

		res, err := ins.Run(context.Background(), Request{Java: "java", Archive: archive, Dir: game})
		if failing {
			require.Error(t, err)
		} else {
			require.NoError(t, err)
			assert.False(t, res.Modern)
			assert.Equal(t, "1.12.2", res.Manifest.GameVersion)
			assert.Contains(t, res.JavaAdvice, "Java 8")
		}

		require.Len(t, acq.got, 1)
		assert.Equal(t, "net.minecraftforge:forge:1.12.2-14.23.5.2859", acq.got[0].Name)

		got, err := os.ReadFile(state)
		require.NoError(t, err)
		assert.JSONEq(t, `{"profiles":{"mine":{}}}`, string(got))

		_, err = os.Stat(filepath.Join(game, ".forgeinst-temp", "forge-1.12.2-installer"))
		assert.True(t, os.IsNotExist(err), "work dir must be removed")
		_, err = os.Stat(filepath.Join(game, "launcher_profiles.json.forgeinst-backup"))
		assert.True(t, os.IsNotExist(err), "backup must be consumed")
	}
}
