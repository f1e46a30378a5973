package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kb-labs/forgeinst/internal/config"
	"github.com/kb-labs/forgeinst/internal/java"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last install in a game directory",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	rec, err := config.ReadRecord(resolveDir(cmd))
	if err != nil {
		return err
	}

	label := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("8"))
	val := lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	ok := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	format := "legacy"
	if rec.Modern {
		format = "modern"
	}

	fmt.Println()
	fmt.Printf("  %s %s\n\n", label.Render("Directory:"), val.Render(rec.Dir))
	fmt.Printf("  %s %s\n", label.Render("Version:  "), rec.Manifest.ID)
	fmt.Printf("  %s %s\n", label.Render("Minecraft:"), rec.Manifest.GameVersion)
	fmt.Printf("  %s %s\n", label.Render("Installer:"), rec.Archive)
	fmt.Printf("  %s %s\n", label.Render("Java:     "), rec.Java)
	fmt.Printf("  %s %s\n", label.Render("Format:   "), format)
	fmt.Printf("  %s %s\n\n", label.Render("Installed:"), rec.InstalledAt.Local().Format("2006-01-02 15:04"))

	if advice := java.Advice(rec.Manifest.GameVersion); advice != "" {
		fmt.Printf("  %s\n\n", dimStr(advice))
	}

	fmt.Printf("  %s\n", label.Render(fmt.Sprintf("Libraries (%d):", len(rec.Manifest.Libraries))))
	for _, l := range rec.Manifest.Libraries {
		fmt.Printf("    %s %s\n", ok.Render("●"), l.Name)
	}

	fmt.Println()
	return nil
}

func dimStr(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(s)
}
