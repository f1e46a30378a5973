// Package extract unpacks an installer archive into a per-archive temp
// directory and loads the two candidate profile files from it. JSON loading
// here never fails: a missing or broken file yields the caller's default,
// because legacy and modern archives each carry only one of the two files.
package extract

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kb-labs/forgeinst/internal/gamedir"
)

// DefaultMaxEntryBytes bounds a single unpacked archive entry.
const DefaultMaxEntryBytes int64 = 256 << 20

// ExtractionError reports an archive that could not be opened or a temp
// directory that could not be created or written.
type ExtractionError struct {
	Archive string
	Op      string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %s: %v", e.Archive, e.Op, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Extractor unpacks archives and reads profile files.
type Extractor struct {
	Log           zerolog.Logger
	MaxEntryBytes int64
}

// New returns an Extractor logging to log.
func New(log zerolog.Logger) *Extractor {
	return &Extractor{Log: log, MaxEntryBytes: DefaultMaxEntryBytes}
}

// WorkDir is the temp directory used for archivePath: the archive's base
// name without its extension, inside the installation's temp area.
func WorkDir(archivePath string, dir gamedir.Dir) string {
	base := filepath.Base(archivePath)
	return dir.TempPath(strings.TrimSuffix(base, filepath.Ext(base)))
}

// Extract unpacks archivePath into WorkDir. An existing work dir is reused.
func (e *Extractor) Extract(archivePath string, dir gamedir.Dir) error {
	target := WorkDir(archivePath, dir)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return &ExtractionError{Archive: archivePath, Op: "create work dir", Err: err}
	}

	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return &ExtractionError{Archive: archivePath, Op: "open", Err: err}
	}
	defer r.Close()

	for _, f := range r.File {
		if err := e.extractFile(f, target); err != nil {
			return &ExtractionError{Archive: archivePath, Op: "unpack " + f.Name, Err: err}
		}
	}
	e.Log.Debug().Str("archive", archivePath).Str("dir", target).Int("entries", len(r.File)).Msg("archive extracted")
	return nil
}

func (e *Extractor) extractFile(f *zip.File, target string) error {
	dest := filepath.Join(target, filepath.FromSlash(f.Name))
	rel, err := filepath.Rel(target, dest)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("entry escapes work dir")
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(dest, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	limit := e.MaxEntryBytes
	if limit <= 0 {
		limit = DefaultMaxEntryBytes
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	n, copyErr := io.Copy(out, io.LimitReader(src, limit+1))
	closeErr := out.Close()
	if copyErr != nil {
		return copyErr
	}
	if n > limit {
		return fmt.Errorf("entry larger than %d bytes", limit)
	}
	return closeErr
}

// LoadJSON reads a JSON object from path. It returns def when the file is
// missing, unreadable, malformed or not an object.
func (e *Extractor) LoadJSON(path string, def map[string]any) map[string]any {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			e.Log.Warn().Err(err).Str("path", path).Msg("profile unreadable, using default")
		} else {
			e.Log.Debug().Str("path", path).Msg("profile absent, using default")
		}
		return def
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		e.Log.Warn().Err(err).Str("path", path).Msg("profile malformed, using default")
		return def
	}
	return obj
}

// Cleanup removes the work dir of archivePath. Failures are logged only.
func (e *Extractor) Cleanup(archivePath string, dir gamedir.Dir) {
	target := WorkDir(archivePath, dir)
	if err := os.RemoveAll(target); err != nil {
		e.Log.Warn().Err(err).Str("dir", target).Msg("failed to remove work dir")
	}
}
