// Package installer runs one mod-loader install attempt end to end: it
// protects the launcher state file, reconciles the installer archive's
// manifests, makes sure the listed libraries are on disk, runs the external
// installer and finally restores the state file, whatever happened before.
package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kb-labs/forgeinst/internal/appdata"
	"github.com/kb-labs/forgeinst/internal/config"
	"github.com/kb-labs/forgeinst/internal/gamedir"
	"github.com/kb-labs/forgeinst/internal/java"
	"github.com/kb-labs/forgeinst/internal/libraries"
	"github.com/kb-labs/forgeinst/internal/logger"
	"github.com/kb-labs/forgeinst/internal/manifest"
	"github.com/kb-labs/forgeinst/internal/reconcile"
	"github.com/kb-labs/forgeinst/internal/runner"
	"github.com/kb-labs/forgeinst/internal/stateguard"
)

// Step names used in StepError.
const (
	StepPrepare   = "prepare"
	StepReconcile = "reconcile"
	StepLibraries = "libraries"
	StepInstaller = "installer"
)

const totalSteps = 5

// StepError reports which step of an attempt failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// StateGuard protects the launcher state file around an attempt.
type StateGuard interface {
	Backup(dir gamedir.Dir)
	Restore(dir gamedir.Dir)
}

// Resolver turns an installer archive into a reconciled manifest.
type Resolver interface {
	Resolve(archivePath string, dir gamedir.Dir) (reconcile.Outcome, error)
}

// Acquirer makes the given libraries present in an installation directory.
type Acquirer interface {
	Ensure(ctx context.Context, libs []manifest.Library, dir gamedir.Dir) error
}

// ProcessRunner runs the external installer.
type ProcessRunner interface {
	Run(ctx context.Context, inv runner.Invocation) error
}

// Request is one install attempt.
type Request struct {
	Java    string // java executable
	Archive string // installer jar
	Dir     string // installation directory
}

// Result is returned after a successful attempt.
type Result struct {
	Dir        string
	Manifest   manifest.Manifest
	Modern     bool
	JavaAdvice string
	RecordPath string
	Duration   time.Duration
}

// Installer orchestrates install attempts.
type Installer struct {
	Settings   config.Settings
	Guard      StateGuard
	Reconciler Resolver
	Libraries  Acquirer
	Runner     ProcessRunner
	// WrapperJar is the headless wrapper path. Empty means look it up in the
	// app data directories.
	WrapperJar string
	Log        *logger.Logger
	OnStep     func(step, total int, label string) // called at each named stage
	OnLine     func(line string)                   // called for each installer output line
}

// New wires an Installer with the default collaborators.
func New(s config.Settings, log *logger.Logger) *Installer {
	if log == nil {
		log = logger.NewDiscard()
	}
	ins := &Installer{Settings: s, Log: log}
	ins.Guard = stateguard.New(s, log.Component("stateguard"))
	ins.Reconciler = reconcile.New(s, log.Component("reconcile"))
	ins.Libraries = libraries.New(s, log.Component("libraries"))

	r := runner.New(s.ClasspathFlag, s.InstallerTimeout, log.Component("runner"))
	r.OnLine = func(line string) {
		if ins.OnLine != nil {
			ins.OnLine(line)
		}
	}
	ins.Runner = r
	return ins
}

// Install runs req and reports whether it succeeded. The failure cause is
// logged.
func (ins *Installer) Install(ctx context.Context, req Request) bool {
	if _, err := ins.Run(ctx, req); err != nil {
		ins.zlog().Error().Err(err).Str("dir", req.Dir).Msg("install failed")
		return false
	}
	return true
}

// Run performs one install attempt. The state file is restored before Run
// returns on every path, including a panic in a collaborator, which is
// reported as a StepError.
func (ins *Installer) Run(ctx context.Context, req Request) (res *Result, err error) {
	start := time.Now()

	dir, archive, wrapper, err := ins.prepare(req)
	if err != nil {
		return nil, &StepError{Step: StepPrepare, Err: err}
	}

	step := StepPrepare
	ins.step(1, "Backing up launcher state")
	ins.Guard.Backup(dir)
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, &StepError{Step: step, Err: fmt.Errorf("panic: %v", r)}
		}
		ins.step(totalSteps, "Restoring launcher state")
		ins.Guard.Restore(dir)
	}()

	step = StepReconcile
	ins.step(2, "Reading installer profiles")
	outcome, err := ins.Reconciler.Resolve(archive, dir)
	if err != nil {
		return nil, &StepError{Step: step, Err: err}
	}
	advice := java.Advice(outcome.Manifest.GameVersion)
	ins.zlog().Info().
		Bool("modern", outcome.Modern).
		Int("libraries", len(outcome.Manifest.Libraries)).
		Str("game_version", outcome.Manifest.GameVersion).
		Msg("manifest reconciled")

	step = StepLibraries
	ins.step(3, fmt.Sprintf("Checking %d libraries", len(outcome.Manifest.Libraries)))
	if err := ins.Libraries.Ensure(ctx, outcome.Manifest.Libraries, dir); err != nil {
		return nil, &StepError{Step: step, Err: err}
	}

	step = StepInstaller
	ins.step(4, "Running installer")
	inv := runner.Invocation{
		Java:      req.Java,
		Classpath: []string{wrapper, archive},
		MainClass: ins.Settings.WrapperMainClass,
		Args:      []string{dir.Root},
		Dir:       dir.Root,
	}
	if err := ins.Runner.Run(ctx, inv); err != nil {
		if advice != "" {
			ins.zlog().Warn().Msg(advice)
		}
		return nil, &StepError{Step: step, Err: err}
	}

	res = &Result{
		Dir:        dir.Root,
		Manifest:   outcome.Manifest,
		Modern:     outcome.Modern,
		JavaAdvice: advice,
		Duration:   time.Since(start),
	}
	rec := config.NewRecord(dir.Root, archive, req.Java, outcome.Modern, outcome.Manifest)
	if err := config.WriteRecord(dir.Root, rec); err != nil {
		ins.zlog().Warn().Err(err).Msg("install record not written")
	} else {
		res.RecordPath = config.RecordPath(dir.Root)
	}
	return res, nil
}

// prepare validates req and resolves every path the attempt needs. It
// touches nothing in the installation directory.
func (ins *Installer) prepare(req Request) (gamedir.Dir, string, string, error) {
	if strings.TrimSpace(req.Java) == "" {
		return gamedir.Dir{}, "", "", errors.New("java executable is required")
	}
	if strings.TrimSpace(req.Archive) == "" {
		return gamedir.Dir{}, "", "", errors.New("installer archive is required")
	}
	archive, err := filepath.Abs(req.Archive)
	if err != nil {
		return gamedir.Dir{}, "", "", err
	}
	info, err := os.Stat(archive)
	if err != nil {
		return gamedir.Dir{}, "", "", fmt.Errorf("installer archive: %w", err)
	}
	if info.IsDir() {
		return gamedir.Dir{}, "", "", fmt.Errorf("installer archive %s is a directory", archive)
	}

	dir, err := gamedir.New(req.Dir, ins.Settings.TempDir)
	if err != nil {
		return gamedir.Dir{}, "", "", err
	}

	wrapper := ins.WrapperJar
	if wrapper == "" {
		wrapper, err = appdata.Locate(ins.Settings.DataDir, ins.Settings.WrapperJar)
		if err != nil {
			return gamedir.Dir{}, "", "", fmt.Errorf("installer wrapper: %w", err)
		}
	}
	return dir, archive, wrapper, nil
}

func (ins *Installer) step(n int, label string) {
	ins.zlog().Info().Msgf("[%d/%d] %s", n, totalSteps, label)
	if ins.OnStep != nil {
		ins.OnStep(n, totalSteps, label)
	}
}

func (ins *Installer) zlog() *zerolog.Logger {
	if ins.Log == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return ins.Log.Z()
}
