package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewCreatesLogFile verifies that New creates a log file inside
// <dir>/.forgeinst/logs/.
func TestNewCreatesLogFile(t *testing.T) {
	dir := t.TempDir()

	l, err := NewWithOptions(dir, Options{Console: &bytes.Buffer{}})
	require.NoError(t, err)
	defer l.Close()

	logPath := l.LogPath()
	require.NotEmpty(t, logPath)
	assert.Equal(t, filepath.Join(dir, ".forgeinst", "logs"), filepath.Dir(logPath))
	assert.True(t, strings.HasPrefix(filepath.Base(logPath), "install-"))

	_, err = os.Stat(logPath)
	assert.NoError(t, err)
}

// TestPrintfWritesToFileAndConsole verifies that Printf output reaches both sinks.
func TestPrintfWritesToFileAndConsole(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer

	l, err := NewWithOptions(dir, Options{Console: &console, ConsoleLevel: zerolog.InfoLevel})
	require.NoError(t, err)

	l.Printf("hello %s", "world")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(l.LogPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello world")
	assert.Contains(t, console.String(), "hello world")
}

// TestConsoleLevelFiltersDebug verifies that debug events skip the console but
// still land in the file.
func TestConsoleLevelFiltersDebug(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer

	l, err := NewWithOptions(dir, Options{Console: &console, ConsoleLevel: zerolog.InfoLevel})
	require.NoError(t, err)

	l.Z().Debug().Msg("quiet detail")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(l.LogPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "quiet detail")
	assert.NotContains(t, console.String(), "quiet detail")
}

func TestComponentField(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf)

	c := l.Component("runner")
	c.Info().Msg("started")

	assert.Contains(t, buf.String(), `"component":"runner"`)
	assert.Contains(t, buf.String(), "started")
}

// TestNewDiscardLogPathEmpty verifies that NewDiscard returns "" for LogPath.
func TestNewDiscardLogPathEmpty(t *testing.T) {
	l := NewDiscard()
	assert.Equal(t, "", l.LogPath())
	l.Printf("this should not panic")
	assert.NoError(t, l.Close())
}

// TestLatestLogPathEmpty verifies that LatestLogPath returns "" when no logs exist.
func TestLatestLogPathEmpty(t *testing.T) {
	assert.Equal(t, "", LatestLogPath(t.TempDir()))
}

// TestLatestLogPathReturnsMostRecent verifies that LatestLogPath returns the
// lexicographically last file (most recent timestamp).
func TestLatestLogPathReturnsMostRecent(t *testing.T) {
	dir := t.TempDir()
	logsDir := filepath.Join(dir, ".forgeinst", "logs")
	require.NoError(t, os.MkdirAll(logsDir, 0o755))

	for _, name := range []string{"install-20260101-000000.log", "install-20260102-000000.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(logsDir, name), []byte(name), 0o644))
	}

	assert.Equal(t, "install-20260102-000000.log", filepath.Base(LatestLogPath(dir)))
}
