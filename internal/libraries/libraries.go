// Package libraries makes sure every library a manifest names is present in
// the installation's libraries directory, downloading what is missing.
package libraries

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/kb-labs/forgeinst/internal/config"
	"github.com/kb-labs/forgeinst/internal/gamedir"
	"github.com/kb-labs/forgeinst/internal/manifest"
)

// ErrChecksum is returned when a downloaded file does not match its SHA-1.
var ErrChecksum = errors.New("checksum mismatch")

// Ensurer downloads missing or damaged libraries.
type Ensurer struct {
	Fs       afero.Fs
	Client   *http.Client
	Settings config.Settings
	Log      zerolog.Logger
	// Backoff builds the retry policy for one download.
	Backoff func(ctx context.Context) backoff.BackOff
	// OnLibrary is called after each library is checked or fetched.
	OnLibrary func(lib manifest.Library, fetched bool)
}

// New returns an Ensurer over the OS filesystem and the default HTTP client.
func New(s config.Settings, log zerolog.Logger) *Ensurer {
	return &Ensurer{
		Fs:       afero.NewOsFs(),
		Client:   http.DefaultClient,
		Settings: s,
		Log:      log,
	}
}

// Ensure checks every library and fetches the ones that are missing or fail
// verification. It keeps going after a failure and returns all of them.
func (e *Ensurer) Ensure(ctx context.Context, libs []manifest.Library, dir gamedir.Dir) error {
	var merr *multierror.Error
	fetched := 0
	for _, lib := range libs {
		if err := ctx.Err(); err != nil {
			merr = multierror.Append(merr, err)
			break
		}
		ok, err := e.ensureOne(ctx, lib, dir)
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", lib.Name, err))
			continue
		}
		if ok {
			fetched++
		}
		if e.OnLibrary != nil {
			e.OnLibrary(lib, ok)
		}
	}
	e.Log.Info().Int("libraries", len(libs)).Int("fetched", fetched).Msg("libraries checked")
	return merr.ErrorOrNil()
}

func (e *Ensurer) ensureOne(ctx context.Context, lib manifest.Library, dir gamedir.Dir) (bool, error) {
	if lib.Path == "" {
		e.Log.Debug().Str("library", lib.Name).Msg("no path, skipping")
		return false, nil
	}
	target := dir.Library(e.Settings.LibrariesDir, lib.Path)
	if !dir.Contains(target) {
		return false, fmt.Errorf("path %q escapes the installation directory", lib.Path)
	}

	present, err := e.verify(target, lib)
	if err != nil {
		return false, err
	}
	if present {
		return false, nil
	}
	if lib.URL == "" {
		e.Log.Warn().Str("library", lib.Name).Msg("missing and no download URL, skipping")
		return false, nil
	}

	if err := e.download(ctx, lib, target); err != nil {
		return false, err
	}
	return true, nil
}

// verify reports whether target exists and matches lib's checksum, if any.
func (e *Ensurer) verify(target string, lib manifest.Library) (bool, error) {
	f, err := e.Fs.Open(target)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer f.Close()

	if lib.SHA1 == "" {
		return true, nil
	}
	sum, err := sha1Of(f)
	if err != nil {
		return false, err
	}
	if !strings.EqualFold(sum, lib.SHA1) {
		e.Log.Debug().Str("library", lib.Name).Msg("checksum differs, refetching")
		return false, nil
	}
	return true, nil
}

func (e *Ensurer) download(ctx context.Context, lib manifest.Library, target string) error {
	if err := e.Fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	attempt := 0
	op := func() error {
		attempt++
		err := e.fetch(ctx, lib, target)
		var status *statusError
		if errors.As(err, &status) && status.code >= 400 && status.code < 500 {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		e.Log.Warn().Err(err).Str("library", lib.Name).Int("attempt", attempt).Dur("retry_in", wait).Msg("download failed")
	}
	return backoff.RetryNotify(op, e.policy(ctx), notify)
}

func (e *Ensurer) policy(ctx context.Context) backoff.BackOff {
	if e.Backoff != nil {
		return e.Backoff(ctx)
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	retries := e.Settings.DownloadRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

type statusError struct {
	url  string
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.url, e.code, http.StatusText(e.code))
}

func (e *Ensurer) fetch(ctx context.Context, lib manifest.Library, target string) (err error) {
	if e.Settings.DownloadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Settings.DownloadTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lib.URL, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	client := e.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &statusError{url: lib.URL, code: resp.StatusCode}
	}

	part := target + ".part"
	out, err := e.Fs.OpenFile(part, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return backoff.Permanent(err)
	}
	defer func() {
		if err != nil {
			_ = e.Fs.Remove(part)
		}
	}()

	h := sha1.New()
	_, copyErr := io.Copy(io.MultiWriter(out, h), resp.Body)
	closeErr := out.Close()
	if copyErr != nil {
		return copyErr
	}
	if closeErr != nil {
		return closeErr
	}

	if lib.SHA1 != "" {
		if sum := hex.EncodeToString(h.Sum(nil)); !strings.EqualFold(sum, lib.SHA1) {
			return fmt.Errorf("%w: got %s, want %s", ErrChecksum, sum, lib.SHA1)
		}
	}
	if err := e.Fs.Rename(part, target); err != nil {
		return backoff.Permanent(err)
	}
	e.Log.Debug().Str("library", lib.Name).Str("path", target).Msg("downloaded")
	return nil
}

func sha1Of(r io.Reader) (string, error) {
	h := sha1.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
