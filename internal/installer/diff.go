package installer

import (
	"sort"

	"github.com/kb-labs/forgeinst/internal/manifest"
)

// ManifestDiff describes how a freshly reconciled manifest differs from the
// one recorded by the last successful install.
type ManifestDiff struct {
	Updated []string // libraries whose coordinate version changed, "key old -> new"
	Added   []string // libraries only in the new manifest
	Removed []string // libraries only in the installed manifest
}

// HasChanges returns true if there is anything different.
func (d *ManifestDiff) HasChanges() bool {
	return len(d.Updated)+len(d.Added)+len(d.Removed) > 0
}

// Diff compares installed against current by library key.
func Diff(installed, current manifest.Manifest) *ManifestDiff {
	old := libSet(installed)
	cur := libSet(current)

	diff := &ManifestDiff{}
	for key, lib := range cur {
		prev, ok := old[key]
		switch {
		case !ok:
			diff.Added = append(diff.Added, lib.Name)
		case prev.Name != lib.Name:
			diff.Updated = append(diff.Updated, prev.Name+" -> "+lib.Name)
		}
	}
	for key, lib := range old {
		if _, ok := cur[key]; !ok {
			diff.Removed = append(diff.Removed, lib.Name)
		}
	}
	sort.Strings(diff.Added)
	sort.Strings(diff.Updated)
	sort.Strings(diff.Removed)
	return diff
}

func libSet(m manifest.Manifest) map[string]manifest.Library {
	s := make(map[string]manifest.Library, len(m.Libraries))
	for _, l := range m.Libraries {
		s[l.Key()] = l
	}
	return s
}
