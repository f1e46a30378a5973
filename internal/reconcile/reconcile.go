// Package reconcile turns the profiles found inside an installer archive
// into one deduplicated manifest.
//
// Legacy archives carry only install_profile.json, whose versionInfo.libraries
// list is filtered to client-required, checksummed entries and adapted into
// the modern record shape. Modern archives carry both install_profile.json and
// version.json; their library lists are merged with manifest.MergeUnique.
package reconcile

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/kb-labs/forgeinst/internal/config"
	"github.com/kb-labs/forgeinst/internal/extract"
	"github.com/kb-labs/forgeinst/internal/gamedir"
	"github.com/kb-labs/forgeinst/internal/manifest"
)

// Outcome is the reconciled manifest and which archive format produced it.
type Outcome struct {
	Manifest manifest.Manifest `json:"manifest"`
	Modern   bool              `json:"modern"`
}

// Extraction is the part of extract.Extractor the reconciler drives.
type Extraction interface {
	Extract(archivePath string, dir gamedir.Dir) error
	LoadJSON(path string, def map[string]any) map[string]any
	Cleanup(archivePath string, dir gamedir.Dir)
}

// AdaptFunc converts one raw legacy library record into the modern record shape.
type AdaptFunc func(raw any) (map[string]any, error)

// Reconciler resolves installer archives into Outcomes.
type Reconciler struct {
	Settings config.Settings
	Extract  Extraction
	Adapt    AdaptFunc
	Log      zerolog.Logger
}

// New wires a Reconciler with the default extractor and legacy adaptor.
func New(s config.Settings, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		Settings: s,
		Extract:  extract.New(log),
		Adapt: func(raw any) (map[string]any, error) {
			return manifest.AdaptLegacyLibrary(raw, s.LegacyLibraryBase)
		},
		Log: log,
	}
}

// Resolve extracts archivePath, reads both profiles and reconciles them. The
// work dir is removed before Resolve returns, on every path.
func (r *Reconciler) Resolve(archivePath string, dir gamedir.Dir) (Outcome, error) {
	defer r.Extract.Cleanup(archivePath, dir)

	if err := r.Extract.Extract(archivePath, dir); err != nil {
		return Outcome{}, err
	}

	work := extract.WorkDir(archivePath, dir)
	install := r.Extract.LoadJSON(filepath.Join(work, r.Settings.InstallProfile), map[string]any{})
	version := r.Extract.LoadJSON(filepath.Join(work, r.Settings.VersionProfile), map[string]any{})

	return r.Reconcile(install, version), nil
}

// Reconcile picks the legacy path when version has no keys and the modern
// path otherwise.
func (r *Reconciler) Reconcile(install, version map[string]any) Outcome {
	if len(version) == 0 {
		m := r.legacy(install)
		r.Log.Info().Int("libraries", len(m.Libraries)).Msg("legacy installer profile")
		return Outcome{Manifest: m}
	}
	vm := manifest.FromProfile(version)
	m := manifest.FromProfile(install).Merge(vm)
	// Profile identity belongs to version.json; install_profile.json only
	// fills what it leaves empty.
	if vm.ID != "" {
		m.ID = vm.ID
	}
	if vm.MainClass != "" {
		m.MainClass = vm.MainClass
	}
	if vm.InheritsFrom != "" {
		m.InheritsFrom = vm.InheritsFrom
	}
	r.Log.Info().Int("libraries", len(m.Libraries)).Str("id", m.ID).Msg("modern installer profile")
	return Outcome{Manifest: m, Modern: true}
}

func (r *Reconciler) legacy(install map[string]any) (m manifest.Manifest) {
	defer func() {
		if p := recover(); p != nil {
			r.Log.Error().Str("panic", fmt.Sprint(p)).Msg("legacy profile unreadable, using empty manifest")
			m = manifest.Manifest{Libraries: []manifest.Library{}}
		}
	}()

	var libs []manifest.Library
	for i, raw := range manifest.LookupSlice(install, "versionInfo", "libraries") {
		if !manifest.IsLegacyClientLibrary(raw) {
			continue
		}
		rec, err := r.Adapt(raw)
		if err != nil {
			r.Log.Warn().Err(err).Int("index", i).Msg("skipping legacy library")
			continue
		}
		lib, ok := manifest.LibraryFromRecord(rec)
		if !ok {
			r.Log.Warn().Int("index", i).Msg("skipping legacy library without path")
			continue
		}
		libs = append(libs, lib)
	}

	return manifest.Manifest{
		ID:           manifest.LookupString(install, "", "versionInfo", "id"),
		MainClass:    manifest.LookupString(install, "", "versionInfo", "mainClass"),
		InheritsFrom: manifest.LookupString(install, "", "versionInfo", "inheritsFrom"),
		GameVersion:  manifest.LookupString(install, "", "install", "minecraft"),
		Libraries:    manifest.MergeUnique(nil, libs),
	}
}
