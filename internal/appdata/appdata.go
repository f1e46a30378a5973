// Package appdata locates files shipped alongside the application, such as
// the headless installer wrapper jar.
package appdata

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// DirName is the application's directory under each XDG data dir.
const DirName = "forgeinst"

// ErrNotFound is returned when a data file exists in none of the searched
// locations.
var ErrNotFound = errors.New("data file not found")

// Home returns the per-user data directory, $XDG_DATA_HOME/forgeinst.
func Home() string {
	return filepath.Join(xdg.DataHome, DirName)
}

// Locate returns the path of name. A non-empty override directory is the
// only place searched; otherwise the XDG data home and data dirs are
// searched in order.
func Locate(override, name string) (string, error) {
	if override != "" {
		path := filepath.Join(override, name)
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrNotFound, path, err)
		}
		return path, nil
	}

	path, err := xdg.SearchDataFile(filepath.Join(DirName, name))
	if err != nil {
		return "", fmt.Errorf("%w: %s (install it under %s)", ErrNotFound, name, Home())
	}
	return path, nil
}
