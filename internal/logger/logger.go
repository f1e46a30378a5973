// Package logger provides a dual-output zerolog logger that writes
// human-readable lines to stderr and JSON lines to a timestamped log file
// inside the installation directory.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

const logsRelDir = ".forgeinst/logs"

// Logger writes to both stderr and a log file simultaneously.
type Logger struct {
	z    zerolog.Logger
	file *os.File
}

// Options tunes New.
type Options struct {
	// Console receives human-readable output. Defaults to os.Stderr.
	Console io.Writer
	// ConsoleLevel filters console output; the file always gets debug and up.
	ConsoleLevel zerolog.Level
}

// New creates a logger that writes to stderr and to
// <dir>/.forgeinst/logs/install-<ts>.log.
func New(dir string) (*Logger, error) {
	return NewWithOptions(dir, Options{Console: os.Stderr, ConsoleLevel: zerolog.InfoLevel})
}

// NewWithOptions is New with an explicit console writer and level.
func NewWithOptions(dir string, opts Options) (*Logger, error) {
	logsDir := filepath.Join(dir, filepath.FromSlash(logsRelDir))
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create logs dir: %w", err)
	}

	ts := time.Now().Format("20060102-150405")
	logPath := filepath.Join(logsDir, fmt.Sprintf("install-%s.log", ts))

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	out := opts.Console
	if out == nil {
		out = os.Stderr
	}
	console := &levelFilter{
		w:   zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen},
		min: opts.ConsoleLevel,
	}
	multi := zerolog.MultiLevelWriter(console, f)

	return &Logger{
		z:    zerolog.New(multi).Level(zerolog.DebugLevel).With().Timestamp().Logger(),
		file: f,
	}, nil
}

// NewDiscard returns a logger that throws everything away.
func NewDiscard() *Logger {
	return &Logger{z: zerolog.Nop()}
}

// NewWriter returns a logger emitting JSON lines to w. No file is created.
func NewWriter(w io.Writer) *Logger {
	return &Logger{z: zerolog.New(w).Level(zerolog.DebugLevel).With().Timestamp().Logger()}
}

// LogPath returns the path of the current log file, or empty string if discarded.
func (l *Logger) LogPath() string {
	if l.file == nil {
		return ""
	}
	return l.file.Name()
}

// Z returns the underlying zerolog logger for structured events.
func (l *Logger) Z() *zerolog.Logger {
	return &l.z
}

// Component returns a child logger tagged with component=name.
func (l *Logger) Component(name string) zerolog.Logger {
	return l.z.With().Str("component", name).Logger()
}

// Write implements io.Writer so raw process output can be teed into the log.
func (l *Logger) Write(p []byte) (n int, err error) {
	return l.z.Write(p)
}

// Printf writes a formatted info line to the log.
func (l *Logger) Printf(format string, args ...any) {
	l.z.Info().Msgf(format, args...)
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// LatestLogPath returns the path to the most recent install log in <dir>.
// Returns "" if no logs exist.
func LatestLogPath(dir string) string {
	logsDir := filepath.Join(dir, filepath.FromSlash(logsRelDir))
	entries, err := os.ReadDir(logsDir)
	if err != nil || len(entries) == 0 {
		return ""
	}
	// ReadDir returns sorted by name; install-<ts> logs sort chronologically.
	latest := ""
	for _, e := range entries {
		if !e.IsDir() {
			latest = filepath.Join(logsDir, e.Name())
		}
	}
	return latest
}

// levelFilter drops events below min before they reach w.
type levelFilter struct {
	w   io.Writer
	min zerolog.Level
}

func (f *levelFilter) Write(p []byte) (int, error) {
	return f.w.Write(p)
}

func (f *levelFilter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < f.min {
		return len(p), nil
	}
	return f.w.Write(p)
}
