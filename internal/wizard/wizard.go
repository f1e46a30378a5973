// Package wizard implements the interactive Bubble Tea TUI for forgeinst.
// The wizard asks for the Java executable, the installer archive and the
// installation directory, then shows a confirmation screen.
// When Options.Yes is true the TUI is skipped entirely and Run returns a
// Request built from the defaults.
package wizard

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kb-labs/forgeinst/internal/installer"
)

// Options controls wizard behaviour.
type Options struct {
	// Java pre-fills the Java executable input.
	Java string
	// Archive pre-fills the installer archive input.
	Archive string
	// Dir pre-fills the installation directory input.
	Dir string
	// Yes skips the TUI and returns defaults immediately.
	Yes bool
}

// Run shows the interactive wizard and returns the install request.
// If opts.Yes is true, returns defaults without launching TUI.
func Run(opts Options) (*installer.Request, error) {
	if opts.Yes {
		return defaultRequest(opts), nil
	}

	model := newModel(opts)
	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	result := final.(wizardModel)
	if result.cancelled {
		return nil, fmt.Errorf("installation cancelled")
	}
	return result.toRequest(), nil
}

// ── styles ────────────────────────────────────────────────────────────────────

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("8"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	focusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle    = dimStyle
)

// ── model stages ─────────────────────────────────────────────────────────────

type stage int

const (
	stageInputs  stage = iota // entering java / archive / dir
	stageConfirm              // confirm / cancel
)

const (
	inputJava = iota
	inputArchive
	inputDir
	inputCount
)

var inputLabels = [inputCount]struct{ title, hint string }{
	{"Java executable", "Java 8 for 1.12.2 and older, 17 or 21 for recent versions"},
	{"Installer archive", "The forge-<version>-installer.jar you downloaded"},
	{"Installation directory", "The game directory holding launcher_profiles.json"},
}

type wizardModel struct {
	errMsg      string
	inputs      [inputCount]textinput.Model
	stage       stage
	activeInput int
	cancelled   bool
	confirmed   bool
}

func newModel(opts Options) wizardModel {
	d := defaultRequest(opts)
	values := [inputCount]string{d.Java, d.Archive, d.Dir}
	placeholders := [inputCount]string{"java", "~/Downloads/forge-installer.jar", "~/.minecraft"}

	var m wizardModel
	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.SetValue(values[i])
		ti.Width = 60
		m.inputs[i] = ti
	}
	m.inputs[inputJava].Focus()
	m.stage = stageInputs
	return m
}

// ── tea.Model interface ───────────────────────────────────────────────────────

func (m wizardModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(key)
	}
	// forward to active input
	var cmd tea.Cmd
	if m.stage == stageInputs {
		m.inputs[m.activeInput], cmd = m.inputs[m.activeInput].Update(msg)
	}
	return m, cmd
}

func (m wizardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.stage {
	case stageInputs:
		return m.handleInputsKey(msg)
	case stageConfirm:
		return m.handleConfirmKey(msg)
	}
	return m, nil
}

func (m wizardModel) handleInputsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.cancelled = true
		return m, tea.Quit
	case "tab", "down":
		m.focus((m.activeInput + 1) % inputCount)
		return m, textinput.Blink
	case "shift+tab", "up":
		m.focus((m.activeInput + inputCount - 1) % inputCount)
		return m, textinput.Blink
	case "enter":
		if err := m.validate(); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.stage = stageConfirm
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.activeInput], cmd = m.inputs[m.activeInput].Update(msg)
	return m, cmd
}

func (m wizardModel) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc", "n", "N":
		m.cancelled = true
		return m, tea.Quit
	case "b", "backspace":
		m.stage = stageInputs
		return m, textinput.Blink
	case "enter", "y", "Y":
		m.confirmed = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *wizardModel) focus(i int) {
	m.inputs[m.activeInput].Blur()
	m.activeInput = i
	m.inputs[i].Focus()
}

func (m wizardModel) validate() error {
	for i, in := range m.inputs {
		if strings.TrimSpace(in.Value()) == "" {
			return fmt.Errorf("%s is required", strings.ToLower(inputLabels[i].title))
		}
	}
	archive := expandHome(m.inputs[inputArchive].Value())
	info, err := os.Stat(archive)
	if err != nil {
		return fmt.Errorf("installer archive not found: %s", archive)
	}
	if info.IsDir() {
		return fmt.Errorf("installer archive is a directory: %s", archive)
	}
	return nil
}

// ── View ──────────────────────────────────────────────────────────────────────

func (m wizardModel) View() string {
	switch m.stage {
	case stageInputs:
		return m.viewInputs()
	case stageConfirm:
		return m.viewConfirm()
	}
	return ""
}

func (m wizardModel) viewInputs() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("  forgeinst") + "  mod loader installer\n\n")

	for i, in := range m.inputs {
		b.WriteString("  " + sectionStyle.Render(inputLabels[i].title) + "\n")
		b.WriteString("  " + in.View() + "\n")
		b.WriteString(dimStyle.Render("  "+inputLabels[i].hint) + "\n\n")
	}

	if m.errMsg != "" {
		b.WriteString("  " + errorStyle.Render("✖ "+m.errMsg) + "\n\n")
	}

	b.WriteString(helpStyle.Render("  tab switch · enter next · esc quit"))
	return b.String()
}

func (m wizardModel) viewConfirm() string {
	req := m.toRequest()
	var b strings.Builder
	b.WriteString(titleStyle.Render("  forgeinst") + "  ready to install\n\n")
	b.WriteString(fmt.Sprintf("  Java:       %s\n", focusStyle.Render(req.Java)))
	b.WriteString(fmt.Sprintf("  Installer:  %s\n", focusStyle.Render(req.Archive)))
	b.WriteString(fmt.Sprintf("  Directory:  %s\n\n", focusStyle.Render(req.Dir)))
	b.WriteString(dimStyle.Render("  launcher_profiles.json is backed up and restored around the run") + "\n\n")
	b.WriteString(helpStyle.Render("  Press enter to install · b to go back · n to cancel"))
	return b.String()
}

// ── helpers ───────────────────────────────────────────────────────────────────

func (m wizardModel) toRequest() *installer.Request {
	return &installer.Request{
		Java:    expandHome(strings.TrimSpace(m.inputs[inputJava].Value())),
		Archive: expandHome(strings.TrimSpace(m.inputs[inputArchive].Value())),
		Dir:     expandHome(strings.TrimSpace(m.inputs[inputDir].Value())),
	}
}

func defaultRequest(opts Options) *installer.Request {
	javaPath := opts.Java
	if javaPath == "" {
		javaPath = DefaultJava()
	}
	dir := opts.Dir
	if dir == "" {
		dir = DefaultGameDir()
	}
	return &installer.Request{
		Java:    expandHome(javaPath),
		Archive: expandHome(opts.Archive),
		Dir:     expandHome(dir),
	}
}

// DefaultJava returns $JAVA_HOME/bin/java when it exists, then java from
// PATH, then plain "java".
func DefaultJava() string {
	exe := "java"
	if runtime.GOOS == "windows" {
		exe = "java.exe"
	}
	if home := os.Getenv("JAVA_HOME"); home != "" {
		candidate := filepath.Join(home, "bin", exe)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	if path, err := exec.LookPath(exe); err == nil {
		return path
	}
	return "java"
}

// DefaultGameDir returns the platform's default game directory.
func DefaultGameDir() string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, ".minecraft")
		}
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "minecraft")
	}
	return filepath.Join(home, ".minecraft")
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
