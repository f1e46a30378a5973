package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kb-labs/forgeinst/internal/installer"
	"github.com/kb-labs/forgeinst/internal/logger"
	"github.com/kb-labs/forgeinst/internal/runner"
	"github.com/kb-labs/forgeinst/internal/wizard"
)

var installCmd = &cobra.Command{
	Use:   "install [installer.jar]",
	Short: "Run a Forge installer (default command)",
	RunE:  runInstall,
	Args:  cobra.MaximumNArgs(1),
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, installCmd} {
		c.Flags().BoolP("yes", "y", false, "skip wizard and install with defaults")
		c.Flags().String("java", "", "java executable (default $JAVA_HOME/bin/java or java on PATH)")
		c.Flags().String("wrapper", "", "headless installer wrapper jar (default: looked up in the data dirs)")
	}
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	opts := wizard.Options{}
	opts.Yes, _ = cmd.Flags().GetBool("yes")
	opts.Java, _ = cmd.Flags().GetString("java")
	opts.Dir, _ = cmd.Flags().GetString("dir")
	if len(args) > 0 {
		opts.Archive = args[0]
	}
	if opts.Yes && opts.Archive == "" {
		return fmt.Errorf("an installer archive is required with --yes")
	}

	// Show wizard or use defaults.
	req, err := wizard.Run(opts)
	if err != nil {
		return err // includes "cancelled"
	}

	if err := os.MkdirAll(req.Dir, 0o755); err != nil {
		return fmt.Errorf("create game dir: %w", err)
	}

	// Set up logger (writes to stderr + log file).
	level := zerolog.WarnLevel
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		level = zerolog.DebugLevel
	}
	log, err := logger.NewWithOptions(req.Dir, logger.Options{Console: os.Stderr, ConsoleLevel: level})
	if err != nil {
		return err
	}
	defer log.Close()

	fmt.Println()

	sp := newSpinner()
	ins := installer.New(settings, log)
	ins.WrapperJar, _ = cmd.Flags().GetString("wrapper")
	ins.OnStep = func(step, total int, label string) {
		sp.setLabel(fmt.Sprintf("[%d/%d] %s", step, total, label))
	}
	ins.OnLine = func(line string) {
		sp.setDetail(line)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sp.start()
	result, err := ins.Run(ctx, *req)
	sp.stop(err)

	if err != nil {
		printFailure(err, log.LogPath())
		return fmt.Errorf("installation failed: %w", err)
	}

	printSuccess(result, log.LogPath())
	return nil
}

// ── spinner ───────────────────────────────────────────────────────────────────

// spinner renders a rotating indicator with a label and a detail line
// that updates in-place while the install is running.
type spinner struct {
	mu     sync.Mutex
	label  string
	detail string
	done   chan struct{}
}

func newSpinner() *spinner { return &spinner{done: make(chan struct{})} }

func (s *spinner) setLabel(l string) {
	s.mu.Lock()
	s.label = l
	s.mu.Unlock()
}

func (s *spinner) setDetail(d string) {
	s.mu.Lock()
	// Truncate long installer lines so they fit on one terminal line.
	if len(d) > 72 {
		d = d[:69] + "..."
	}
	s.detail = d
	s.mu.Unlock()
}

// start launches the render loop in a goroutine.
func (s *spinner) start() {
	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	go func() {
		i := 0
		for {
			select {
			case <-s.done:
				return
			case <-time.After(80 * time.Millisecond):
				s.mu.Lock()
				label := s.label
				detail := s.detail
				s.mu.Unlock()

				frame := frames[i%len(frames)]
				i++

				// \r returns to column 0; \033[K clears to end of line.
				fmt.Printf("\r\033[K  %s %s\n\r\033[K    %s",
					frame,
					label,
					dim.Render(detail),
				)
				// Move cursor up one line so next tick overwrites both lines.
				fmt.Print("\033[1A")
			}
		}
	}()
}

// stop halts the spinner and prints a final status line.
func (s *spinner) stop(err error) {
	close(s.done)
	time.Sleep(90 * time.Millisecond) // let last frame finish

	s.mu.Lock()
	label := s.label
	s.mu.Unlock()

	// Clear both lines used by the spinner.
	fmt.Print("\r\033[K\033[1B\r\033[K\033[1A")

	if err == nil {
		ok := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
		fmt.Printf("  %s %s\n", ok.Render("✓"), label)
	} else {
		bad := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
		fmt.Printf("  %s %s\n", bad.Render("✗"), label)
	}
}

// ── banners ───────────────────────────────────────────────────────────────────

func printSuccess(r *installer.Result, logPath string) {
	ok := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	val := lipgloss.NewStyle().Foreground(lipgloss.Color("14"))

	format := "legacy"
	if r.Modern {
		format = "modern"
	}

	fmt.Println()
	fmt.Println(ok.Render("✓ Installation complete") + dim.Render(fmt.Sprintf("  (%s)", r.Duration.Round(time.Second))))
	fmt.Println()
	fmt.Printf("  Directory:  %s\n", val.Render(r.Dir))
	if r.Manifest.ID != "" {
		fmt.Printf("  Version:    %s\n", val.Render(r.Manifest.ID))
	}
	fmt.Printf("  Profile:    %s, %d libraries\n", format, len(r.Manifest.Libraries))
	if r.RecordPath != "" {
		fmt.Printf("  Record:     %s\n", val.Render(r.RecordPath))
	}
	if logPath != "" {
		fmt.Printf("  Log:        %s\n", dim.Render(logPath))
	}
	fmt.Println()
}

func printFailure(err error, logPath string) {
	bad := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	fmt.Println()
	var stepErr *installer.StepError
	if errors.As(err, &stepErr) {
		fmt.Println(bad.Render("✗ Installation failed at step: " + stepErr.Step))
	} else {
		fmt.Println(bad.Render("✗ Installation failed"))
	}

	var exitErr *runner.ExitError
	if errors.As(err, &exitErr) {
		fmt.Printf("  %s\n", dim.Render("The installer exited with an error. Check that the Java version suits this Minecraft version."))
	}
	if logPath != "" {
		fmt.Printf("  %s %s\n", dim.Render("Details:"), logPath)
	}
	fmt.Println()
}
