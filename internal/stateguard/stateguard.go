// Package stateguard protects the launcher state file of an installation
// directory across an installer run. The external installer rewrites that
// file with content of its own; Backup copies the original aside and Restore
// puts it back. Both are best effort: failures are logged, never returned.
package stateguard

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/kb-labs/forgeinst/internal/config"
	"github.com/kb-labs/forgeinst/internal/gamedir"
)

// Guard backs up and restores the state file.
type Guard struct {
	Fs       afero.Fs
	Settings config.Settings
	Log      zerolog.Logger
}

// New returns a Guard over the OS filesystem.
func New(s config.Settings, log zerolog.Logger) *Guard {
	return &Guard{Fs: afero.NewOsFs(), Settings: s, Log: log}
}

// Backup copies the state file to the backup name. A missing state file is
// not an error.
func (g *Guard) Backup(dir gamedir.Dir) {
	src := dir.Resolve(g.Settings.StateFile)
	dst := dir.Resolve(g.Settings.StateBackupFile)

	exists, err := afero.Exists(g.Fs, src)
	if err != nil {
		g.Log.Warn().Err(err).Str("path", src).Msg("cannot stat state file, skipping backup")
		return
	}
	if !exists {
		g.Log.Debug().Str("path", src).Msg("no state file to back up")
		return
	}
	if err := g.copyFile(src, dst); err != nil {
		g.Log.Warn().Err(err).Str("path", src).Msg("state file backup failed")
		return
	}
	g.Log.Debug().Str("backup", dst).Msg("state file backed up")
}

// Restore copies the backup over the state file and removes the backup. A
// missing backup is not an error and leaves the state file as it is.
func (g *Guard) Restore(dir gamedir.Dir) {
	src := dir.Resolve(g.Settings.StateBackupFile)
	dst := dir.Resolve(g.Settings.StateFile)

	var merr *multierror.Error
	exists, err := afero.Exists(g.Fs, src)
	switch {
	case err != nil:
		merr = multierror.Append(merr, fmt.Errorf("stat backup: %w", err))
	case exists:
		if err := g.copyFile(src, dst); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("restore: %w", err))
			break
		}
		if err := g.Fs.Remove(src); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("remove backup: %w", err))
		}
	}

	if err := merr.ErrorOrNil(); err != nil {
		g.Log.Warn().Err(err).Str("dir", dir.Root).Msg("state file restore incomplete")
		return
	}
	g.Log.Debug().Str("dir", dir.Root).Msg("state file restored")
}

// Protect runs fn between Backup and Restore. Restore runs however fn exits,
// including by panic.
func (g *Guard) Protect(dir gamedir.Dir, fn func() error) error {
	g.Backup(dir)
	defer g.Restore(dir)
	return fn()
}

// copyFile writes src to a sibling temp file and renames it over dst, so a
// failed copy never leaves dst truncated.
func (g *Guard) copyFile(src, dst string) (err error) {
	in, err := g.Fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := dst + ".tmp"
	out, err := g.Fs.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = g.Fs.Remove(tmp)
		}
	}()

	_, copyErr := io.Copy(out, in)
	closeErr := out.Close()
	if copyErr != nil {
		return copyErr
	}
	if closeErr != nil {
		return closeErr
	}
	return g.Fs.Rename(tmp, dst)
}
