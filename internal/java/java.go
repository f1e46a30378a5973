// Package java recommends a Java runtime for a game version. Installers for
// 1.12.2 and older only run on Java 8; newer ones need 11 or later.
package java

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-version"
)

type rule struct {
	constraint string
	major      int
}

var rules = []rule{
	{"<= 1.12.2", 8},
	{">= 1.20.5", 21},
	{">= 1.17, < 1.20.5", 17},
}

const fallbackMajor = 11

// Recommend returns the Java major version to run the installer for
// gameVersion with. ok is false when gameVersion cannot be parsed.
func Recommend(gameVersion string) (major int, ok bool) {
	v, err := parse(gameVersion)
	if err != nil {
		return 0, false
	}
	for _, r := range rules {
		c, err := version.NewConstraint(r.constraint)
		if err != nil {
			continue
		}
		if c.Check(v) {
			return r.major, true
		}
	}
	return fallbackMajor, true
}

// Advice returns a one-line hint for the user, or "" when gameVersion is
// unknown.
func Advice(gameVersion string) string {
	major, ok := Recommend(gameVersion)
	if !ok {
		return ""
	}
	return fmt.Sprintf("Minecraft %s installers run best on Java %d", strings.TrimSpace(gameVersion), major)
}

// parse accepts plain game versions and "<game>-<loader>" strings.
func parse(s string) (*version.Version, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '-'); i > 0 {
		s = s[:i]
	}
	if s == "" {
		return nil, fmt.Errorf("empty version")
	}
	v, err := version.NewVersion(s)
	if err != nil {
		return nil, err
	}
	// Snapshot ids such as 23w13a parse as 23 with a prerelease tag.
	if v.Prerelease() != "" {
		return nil, fmt.Errorf("not a release version: %s", s)
	}
	return v, nil
}
