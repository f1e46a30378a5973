package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kb-labs/forgeinst/internal/manifest"
)

const (
	recordVersion = 1
	recordDir     = ".forgeinst"
	recordFile    = "install.json"
)

// Record is the persistent state written to <dir>/.forgeinst/install.json
// after a successful install. Version enables future migrations.
type Record struct {
	InstalledAt time.Time         `json:"installedAt"`
	Dir         string            `json:"dir"`
	Archive     string            `json:"archive"`
	Java        string            `json:"java"`
	Modern      bool              `json:"modern"`
	Manifest    manifest.Manifest `json:"manifest"`
	Version     int               `json:"version"`
}

// RecordPath returns the path of the install record for an installation dir.
func RecordPath(dir string) string {
	return filepath.Join(dir, recordDir, recordFile)
}

// WriteRecord persists rec to <dir>/.forgeinst/install.json.
func WriteRecord(dir string, rec *Record) error {
	d := filepath.Join(dir, recordDir)
	if err := os.MkdirAll(d, 0o755); err != nil {
		return fmt.Errorf("create record dir: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	if err := os.WriteFile(filepath.Join(d, recordFile), data, 0o600); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// ReadRecord loads the install record of an installation dir.
func ReadRecord(dir string) (*Record, error) {
	path := RecordPath(dir)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no install record at %s, has an installer run here?", path)
		}
		return nil, fmt.Errorf("read record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse record: %w", err)
	}
	return &rec, nil
}

// NewRecord creates a fresh Record ready to be written.
func NewRecord(dir, archive, java string, modern bool, m manifest.Manifest) *Record {
	abs, _ := filepath.Abs(dir)
	absArchive, _ := filepath.Abs(archive)
	return &Record{
		Version:     recordVersion,
		Dir:         abs,
		Archive:     absArchive,
		Java:        java,
		Modern:      modern,
		InstalledAt: time.Now().UTC(),
		Manifest:    m,
	}
}
