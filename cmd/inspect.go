package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kb-labs/forgeinst/internal/config"
	"github.com/kb-labs/forgeinst/internal/gamedir"
	"github.com/kb-labs/forgeinst/internal/installer"
	"github.com/kb-labs/forgeinst/internal/java"
	"github.com/kb-labs/forgeinst/internal/reconcile"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <installer.jar>",
	Short: "Show the library manifest an installer would use",
	Long: `Extracts the installer's profiles and prints the reconciled library
manifest without running anything. With --diff the manifest is compared
against the one recorded by the last install in --dir.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().Bool("json", false, "print the manifest as JSON")
	inspectCmd.Flags().Bool("diff", false, "compare against the last install in --dir")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	scratch, err := os.MkdirTemp("", "forgeinst-inspect-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(scratch)
	dir, err := gamedir.New(scratch, settings.TempDir)
	if err != nil {
		return err
	}

	zl := zerolog.Nop()
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		zl = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	outcome, err := reconcile.New(settings, zl).Resolve(args[0], dir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	}

	if wantDiff, _ := cmd.Flags().GetBool("diff"); wantDiff {
		rec, err := config.ReadRecord(resolveDir(cmd))
		if err != nil {
			return err
		}
		printDiff(out, installer.Diff(rec.Manifest, outcome.Manifest))
		return nil
	}

	printOutcome(out, outcome)
	return nil
}

func printOutcome(w io.Writer, o reconcile.Outcome) {
	label := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("8"))
	val := lipgloss.NewStyle().Foreground(lipgloss.Color("14"))

	format := "legacy (install_profile.json only)"
	if o.Modern {
		format = "modern (install_profile.json + version.json)"
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s %s\n", label.Render("Version:  "), val.Render(o.Manifest.ID))
	fmt.Fprintf(w, "  %s %s\n", label.Render("Minecraft:"), o.Manifest.GameVersion)
	fmt.Fprintf(w, "  %s %s\n", label.Render("Format:   "), format)
	if advice := java.Advice(o.Manifest.GameVersion); advice != "" {
		fmt.Fprintf(w, "  %s %s\n", label.Render("Java:     "), advice)
	}
	fmt.Fprintf(w, "\n  %s\n", label.Render(fmt.Sprintf("Libraries (%d):", len(o.Manifest.Libraries))))
	for _, l := range o.Manifest.Libraries {
		fmt.Fprintf(w, "    %s\n", l.Name)
		if l.URL != "" {
			fmt.Fprintf(w, "      %s\n", dimStr(l.URL))
		}
	}
	fmt.Fprintln(w)
}

func printDiff(w io.Writer, d *installer.ManifestDiff) {
	if !d.HasChanges() {
		fmt.Fprintln(w, lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("✓ Same libraries as the installed version"))
		return
	}

	add := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	upd := lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	rem := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	fmt.Fprintln(w)
	for _, p := range d.Added {
		fmt.Fprintf(w, "  %s  %s\n", add.Render("+"), p)
	}
	for _, p := range d.Updated {
		fmt.Fprintf(w, "  %s  %s\n", upd.Render("↑"), dimStr(p))
	}
	for _, p := range d.Removed {
		fmt.Fprintf(w, "  %s  %s\n", rem.Render("-"), p)
	}
	fmt.Fprintln(w)
}
