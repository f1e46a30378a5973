// Package cmd implements the forgeinst CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kb-labs/forgeinst/internal/config"
	"github.com/kb-labs/forgeinst/internal/wizard"
)

// SetVersionInfo is called from main.go with values injected at build time via -ldflags.
// It must be called before Execute().
func SetVersionInfo(version, commit, date string) {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"forgeinst %s (commit %s, built %s)\n", version, commit, date,
	))
	rootCmd.Version = version
}

var rootCmd = &cobra.Command{
	Use:   "forgeinst [installer.jar]",
	Short: "Forge mod loader installer",
	Long: `forgeinst runs a Forge installer headlessly against a game directory.
It reconciles the installer's library manifest, fetches missing libraries,
runs the installer and keeps launcher_profiles.json untouched.

Examples:
  forgeinst forge-1.20.1-installer.jar          interactive wizard
  forgeinst forge.jar --dir ~/.minecraft --yes  install without prompts
  forgeinst inspect forge.jar                   show the reconciled manifest
  forgeinst status                              show the last install
  forgeinst logs                                show install log`,
	RunE:          runInstall,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("dir", "", "game installation directory")
	rootCmd.PersistentFlags().String("settings", "", "settings file (default $XDG_CONFIG_HOME/forgeinst/config.toml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "show debug output")
}

func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	path, _ := cmd.Flags().GetString("settings")
	s, err := config.Load(path)
	if err != nil {
		return config.Settings{}, fmt.Errorf("settings: %w", err)
	}
	return s, nil
}

// resolveDir returns the game dir from --dir, the install record in cwd, or
// the platform default.
func resolveDir(cmd *cobra.Command) string {
	if d, _ := cmd.Flags().GetString("dir"); d != "" {
		return d
	}
	cwd, _ := os.Getwd()
	if rec, err := config.ReadRecord(cwd); err == nil {
		return rec.Dir
	}
	return wizard.DefaultGameDir()
}
