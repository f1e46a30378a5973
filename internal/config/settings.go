// Package config holds the static settings every component is built from and
// the install record written into an installation directory after a
// successful run.
//
// Settings are layered with koanf: built-in defaults, then an optional TOML
// file (by default $XDG_CONFIG_HOME/forgeinst/config.toml), then FORGEINST_*
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	appName   = "forgeinst"
	envPrefix = "FORGEINST_"
)

// Settings carries every fixed name and tunable used by an install attempt.
type Settings struct {
	// WrapperJar is the headless installer wrapper shipped in the app data dir.
	WrapperJar string `koanf:"wrapper_jar"`
	// WrapperMainClass is the wrapper's entry point.
	WrapperMainClass string `koanf:"wrapper_main_class"`
	ClasspathFlag    string `koanf:"classpath_flag"`

	StateFile       string `koanf:"state_file"`
	StateBackupFile string `koanf:"state_backup_file"`

	InstallProfile string `koanf:"install_profile"`
	VersionProfile string `koanf:"version_profile"`

	// TempDir is the temp storage area, relative to the installation dir.
	TempDir      string `koanf:"temp_dir"`
	LibrariesDir string `koanf:"libraries_dir"`

	LegacyLibraryBase string `koanf:"legacy_library_base"`

	// InstallerTimeout bounds the installer process. Zero waits forever.
	InstallerTimeout time.Duration `koanf:"installer_timeout"`

	DownloadRetries int           `koanf:"download_retries"`
	DownloadTimeout time.Duration `koanf:"download_timeout"`

	// DataDir overrides where the wrapper jar is looked up. Empty means the
	// XDG data directories.
	DataDir string `koanf:"data_dir"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		WrapperJar:        "forge.iw.jar",
		WrapperMainClass:  "rarityeg.alicorn.ForgeInstallerWrapper",
		ClasspathFlag:     "-cp",
		StateFile:         "launcher_profiles.json",
		StateBackupFile:   "launcher_profiles.json.forgeinst-backup",
		InstallProfile:    "install_profile.json",
		VersionProfile:    "version.json",
		TempDir:           ".forgeinst-temp",
		LibrariesDir:      "libraries",
		LegacyLibraryBase: "https://libraries.minecraft.net/",
		DownloadRetries:   3,
		DownloadTimeout:   2 * time.Minute,
	}
}

func defaultsMap() map[string]any {
	d := Defaults()
	return map[string]any{
		"wrapper_jar":         d.WrapperJar,
		"wrapper_main_class":  d.WrapperMainClass,
		"classpath_flag":      d.ClasspathFlag,
		"state_file":          d.StateFile,
		"state_backup_file":   d.StateBackupFile,
		"install_profile":     d.InstallProfile,
		"version_profile":     d.VersionProfile,
		"temp_dir":            d.TempDir,
		"libraries_dir":       d.LibrariesDir,
		"legacy_library_base": d.LegacyLibraryBase,
		"installer_timeout":   d.InstallerTimeout.String(),
		"download_retries":    d.DownloadRetries,
		"download_timeout":    d.DownloadTimeout.String(),
		"data_dir":            d.DataDir,
	}
}

// DefaultSettingsPath returns $XDG_CONFIG_HOME/forgeinst/config.toml.
func DefaultSettingsPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.toml")
}

// Load layers defaults, the TOML file at path (skipped when it does not
// exist; an empty path means DefaultSettingsPath) and FORGEINST_* variables.
func Load(path string) (Settings, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaultsMap(), "."), nil); err != nil {
		return Settings{}, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = DefaultSettingsPath()
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return Settings{}, fmt.Errorf("failed to load settings from %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to load env vars: %w", err)
	}

	var s Settings
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &s,
			WeaklyTypedInput: true,
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		},
	}
	if err := k.UnmarshalWithConf("", &s, unmarshalConf); err != nil {
		return Settings{}, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate rejects settings that would make file names collide or escape
// the installation directory.
func (s Settings) Validate() error {
	names := map[string]string{
		"wrapper_jar":       s.WrapperJar,
		"state_file":        s.StateFile,
		"state_backup_file": s.StateBackupFile,
		"install_profile":   s.InstallProfile,
		"version_profile":   s.VersionProfile,
	}
	for key, v := range names {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("setting %s is required", key)
		}
		if filepath.Base(v) != v {
			return fmt.Errorf("setting %s must be a bare file name, got %q", key, v)
		}
	}
	if s.StateFile == s.StateBackupFile {
		return fmt.Errorf("state_file and state_backup_file must differ")
	}
	if s.InstallProfile == s.VersionProfile {
		return fmt.Errorf("install_profile and version_profile must differ")
	}
	if strings.TrimSpace(s.WrapperMainClass) == "" {
		return fmt.Errorf("setting wrapper_main_class is required")
	}
	if strings.TrimSpace(s.TempDir) == "" || strings.TrimSpace(s.LibrariesDir) == "" {
		return fmt.Errorf("temp_dir and libraries_dir are required")
	}
	if s.InstallerTimeout < 0 || s.DownloadTimeout < 0 || s.DownloadRetries < 0 {
		return fmt.Errorf("timeouts and retries must not be negative")
	}
	return nil
}
