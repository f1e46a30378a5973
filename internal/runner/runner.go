// Package runner launches the external installer under a Java runtime and
// reports its outcome exactly once.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Invocation describes one installer launch.
type Invocation struct {
	Java      string
	Classpath []string
	MainClass string
	Args      []string
	// Dir is the working directory of the process. Empty means inherit.
	Dir string
}

// Argv returns the arguments passed to the Java executable.
func (inv Invocation) Argv(classpathFlag string) []string {
	if classpathFlag == "" {
		classpathFlag = "-cp"
	}
	argv := []string{classpathFlag, strings.Join(inv.Classpath, string(os.PathListSeparator)), inv.MainClass}
	return append(argv, inv.Args...)
}

// ExitError reports an installer that ran and exited with a non-zero code.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("installer exited with code %d", e.Code)
}

// LaunchError reports an installer that could not be started or whose
// completion could not be observed.
type LaunchError struct {
	Java string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Java, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// Process is a started installer process.
type Process interface {
	// Wait blocks until the process exits and returns its exit code. A
	// non-nil error means the exit status could not be determined.
	Wait() (int, error)
	// Kill forcibly terminates the process.
	Kill() error
}

// Spawner starts processes. onLine receives every non-empty output line.
type Spawner interface {
	Spawn(name string, args []string, dir string, onLine func(string)) (Process, error)
}

// Runner runs installer invocations.
type Runner struct {
	Spawner       Spawner
	ClasspathFlag string
	// Timeout bounds a single run. Zero means no bound.
	Timeout time.Duration
	OnLine  func(string)
	Log     zerolog.Logger
}

// New returns a Runner backed by os/exec.
func New(classpathFlag string, timeout time.Duration, log zerolog.Logger) *Runner {
	return &Runner{
		Spawner:       ExecSpawner{},
		ClasspathFlag: classpathFlag,
		Timeout:       timeout,
		Log:           log,
	}
}

type waitResult struct {
	code int
	err  error
}

// Run starts inv and blocks until it finishes. A zero exit code yields nil,
// any other code an *ExitError. Failure to start, an unobservable exit, a
// cancelled ctx or an expired Timeout yield a *LaunchError; in the last three
// cases the process is killed first.
func (r *Runner) Run(ctx context.Context, inv Invocation) error {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	argv := inv.Argv(r.ClasspathFlag)
	r.Log.Info().Str("java", inv.Java).Strs("args", argv).Msg("starting installer")

	proc, err := r.Spawner.Spawn(inv.Java, argv, inv.Dir, r.line)
	if err != nil {
		return &LaunchError{Java: inv.Java, Err: err}
	}

	done := make(chan waitResult, 1)
	go func() {
		code, err := proc.Wait()
		done <- waitResult{code: code, err: err}
	}()

	select {
	case res := <-done:
		return r.outcome(inv, proc, res)
	case <-ctx.Done():
		r.kill(proc)
		res := <-done
		if res.err == nil && res.code == 0 {
			// Exited cleanly before the kill landed.
			return r.outcome(inv, proc, res)
		}
		r.Log.Warn().Err(ctx.Err()).Int("code", res.code).Msg("installer interrupted")
		return &LaunchError{Java: inv.Java, Err: ctx.Err()}
	}
}

func (r *Runner) outcome(inv Invocation, proc Process, res waitResult) error {
	switch {
	case res.err != nil:
		r.kill(proc)
		return &LaunchError{Java: inv.Java, Err: res.err}
	case res.code != 0:
		r.Log.Warn().Int("code", res.code).Msg("installer failed")
		return &ExitError{Code: res.code}
	}
	r.Log.Info().Msg("installer finished")
	return nil
}

func (r *Runner) kill(proc Process) {
	if err := proc.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		r.Log.Debug().Err(err).Msg("kill installer")
	}
}

func (r *Runner) line(s string) {
	r.Log.Debug().Str("stream", "installer").Msg(s)
	if r.OnLine != nil {
		r.OnLine(s)
	}
}
