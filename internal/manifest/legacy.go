package manifest

import "fmt"

// DefaultLegacyBase serves legacy libraries that carry no url of their own.
const DefaultLegacyBase = "https://libraries.minecraft.net/"

// AdaptLegacyLibrary converts one legacy install-profile library record
// ({name, url, checksums, clientreq}) into the record shape that
// LibraryFromRecord reads: {name, downloads: {artifact: {path, url, sha1}}}.
// base is used when the record has no url.
func AdaptLegacyLibrary(raw any, base string) (map[string]any, error) {
	name := LookupString(raw, "", "name")
	if name == "" {
		return nil, fmt.Errorf("legacy library has no name")
	}
	c, err := ParseCoordinate(name)
	if err != nil {
		return nil, err
	}
	repo := LookupString(raw, "", "url")
	if repo == "" {
		repo = base
	}
	if repo == "" {
		repo = DefaultLegacyBase
	}
	p := c.Path()
	artifact := map[string]any{
		"path": p,
		"url":  joinURL(repo, p),
	}
	if sums := LookupSlice(raw, "checksums"); len(sums) > 0 {
		if s, ok := sums[0].(string); ok {
			artifact["sha1"] = s
		}
	}
	return map[string]any{
		"name":      name,
		"downloads": map[string]any{"artifact": artifact},
	}, nil
}

// IsLegacyClientLibrary reports whether a legacy record is needed on the
// client and carries checksum metadata.
func IsLegacyClientLibrary(raw any) bool {
	return LookupBool(raw, false, "clientreq") && Present(raw, "checksums")
}
