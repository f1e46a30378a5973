// Package manifest holds the dependency model shared by the reconciler, the
// library acquisition step and the CLI: a Library is one resolvable jar, a
// Manifest is the deduplicated list of them plus the profile fields the
// installer run needs.
package manifest

import (
	"path"
	"strings"
)

// Library is one resolvable dependency.
type Library struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
	Path string `json:"path"`
	SHA1 string `json:"sha1,omitempty"`
	Size int64  `json:"size,omitempty"`
}

// Key identifies a library for deduplication. Two libraries naming the same
// group, artifact and classifier share a key even when their versions differ.
func (l Library) Key() string {
	if c, err := ParseCoordinate(l.Name); err == nil {
		return c.Key()
	}
	if l.Path != "" {
		return "path:" + path.Clean(strings.ReplaceAll(l.Path, "\\", "/"))
	}
	return "name:" + l.Name
}

// Manifest is the internal form of an installer profile. Libraries never
// contains two entries with the same Key.
type Manifest struct {
	ID           string    `json:"id,omitempty"`
	MainClass    string    `json:"mainClass,omitempty"`
	InheritsFrom string    `json:"inheritsFrom,omitempty"`
	GameVersion  string    `json:"gameVersion,omitempty"`
	Libraries    []Library `json:"libraries"`
}

// Merge returns a copy of m whose libraries are m's followed by the ones from
// other that m does not already name. Empty profile fields of m are filled
// from other.
func (m Manifest) Merge(other Manifest) Manifest {
	out := m
	out.Libraries = MergeUnique(m.Libraries, other.Libraries)
	if out.ID == "" {
		out.ID = other.ID
	}
	if out.MainClass == "" {
		out.MainClass = other.MainClass
	}
	if out.InheritsFrom == "" {
		out.InheritsFrom = other.InheritsFrom
	}
	if out.GameVersion == "" {
		out.GameVersion = other.GameVersion
	}
	return out
}

// LibraryPaths returns the relative path of every library, in order.
func (m *Manifest) LibraryPaths() []string {
	paths := make([]string, len(m.Libraries))
	for i, l := range m.Libraries {
		paths[i] = l.Path
	}
	return paths
}

// MergeUnique returns base followed by every element of addition whose key is
// not already present. Order is preserved on both sides and no key repeats
// among the appended elements.
func MergeUnique(base, addition []Library) []Library {
	out := make([]Library, 0, len(base)+len(addition))
	seen := make(map[string]struct{}, len(base)+len(addition))
	for _, l := range base {
		out = append(out, l)
		seen[l.Key()] = struct{}{}
	}
	for _, l := range addition {
		k := l.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, l)
	}
	return out
}
