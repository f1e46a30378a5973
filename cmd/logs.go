package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kb-labs/forgeinst/internal/logger"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show install logs",
	Long: `Show the most recent installation log of --dir in readable form.
Use --follow to stream new lines while an install is running.`,
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().BoolP("follow", "f", false, "follow log output (like tail -f)")
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
	dir := resolveDir(cmd)
	logPath := logger.LatestLogPath(dir)
	if logPath == "" {
		return fmt.Errorf("no install logs found in %s", dir)
	}

	f, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	out := cmd.OutOrStdout()
	t := &logTail{
		r:      bufio.NewReader(f),
		pretty: zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: out != os.Stdout},
		raw:    out,
	}

	if err := t.flush(); err != nil {
		return err
	}
	if follow, _ := cmd.Flags().GetBool("follow"); !follow {
		return t.flushPartial()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(300 * time.Millisecond):
		}
		if err := t.flush(); err != nil {
			return err
		}
	}
}

// logTail renders a JSON-lines log file as console output. A line still
// being written is held back until its newline arrives.
type logTail struct {
	r       *bufio.Reader
	pretty  io.Writer
	raw     io.Writer
	partial []byte
}

func (t *logTail) flush() error {
	for {
		chunk, err := t.r.ReadBytes('\n')
		t.partial = append(t.partial, chunk...)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		line := t.partial
		t.partial = nil
		if err := t.render(line); err != nil {
			return err
		}
	}
}

func (t *logTail) flushPartial() error {
	if len(t.partial) == 0 {
		return nil
	}
	line := t.partial
	t.partial = nil
	return t.render(line)
}

// render prints one event through the console writer, or verbatim when the
// line is not a JSON event.
func (t *logTail) render(line []byte) error {
	if _, err := t.pretty.Write(line); err == nil {
		return nil
	}
	_, err := t.raw.Write(line)
	return err
}
