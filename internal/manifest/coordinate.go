package manifest

import (
	"fmt"
	"strings"
)

// Coordinate is a parsed maven name: group:artifact:version[:classifier][@ext].
type Coordinate struct {
	Group      string
	Artifact   string
	Version    string
	Classifier string
	Ext        string
}

// ParseCoordinate splits a maven name. Ext defaults to "jar".
func ParseCoordinate(name string) (Coordinate, error) {
	name = strings.TrimSpace(name)
	ext := "jar"
	if i := strings.LastIndex(name, "@"); i >= 0 {
		ext = name[i+1:]
		name = name[:i]
	}
	parts := strings.Split(name, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return Coordinate{}, fmt.Errorf("invalid maven coordinate %q", name)
	}
	for _, p := range parts {
		if p == "" {
			return Coordinate{}, fmt.Errorf("invalid maven coordinate %q", name)
		}
	}
	if ext == "" {
		return Coordinate{}, fmt.Errorf("invalid maven coordinate %q: empty extension", name)
	}
	c := Coordinate{Group: parts[0], Artifact: parts[1], Version: parts[2], Ext: ext}
	if len(parts) == 4 {
		c.Classifier = parts[3]
	}
	return c, nil
}

// Key is the version-less identity of the coordinate.
func (c Coordinate) Key() string {
	if c.Classifier != "" {
		return c.Group + ":" + c.Artifact + ":" + c.Classifier
	}
	return c.Group + ":" + c.Artifact
}

// Path is the repository layout path, always slash separated.
func (c Coordinate) Path() string {
	file := c.Artifact + "-" + c.Version
	if c.Classifier != "" {
		file += "-" + c.Classifier
	}
	file += "." + c.Ext
	return strings.ReplaceAll(c.Group, ".", "/") + "/" + c.Artifact + "/" + c.Version + "/" + file
}

func joinURL(base, rel string) string {
	if base == "" {
		return ""
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + strings.TrimPrefix(rel, "/")
}
