package manifest

// LibraryFromRecord normalizes one library record in the modern shape. When
// downloads.artifact is absent the path is derived from the maven name and
// the url from the record's repository url. It reports false for records with
// neither a usable path nor name.
func LibraryFromRecord(rec any) (Library, bool) {
	if _, ok := rec.(map[string]any); !ok {
		return Library{}, false
	}
	lib := Library{
		Name: LookupString(rec, "", "name"),
		Path: LookupString(rec, "", "downloads", "artifact", "path"),
		URL:  LookupString(rec, "", "downloads", "artifact", "url"),
		SHA1: LookupString(rec, "", "downloads", "artifact", "sha1"),
		Size: LookupInt64(rec, 0, "downloads", "artifact", "size"),
	}
	if lib.Path == "" && lib.Name != "" {
		c, err := ParseCoordinate(lib.Name)
		if err != nil {
			return Library{}, false
		}
		lib.Path = c.Path()
		if lib.URL == "" {
			lib.URL = joinURL(LookupString(rec, "", "url"), lib.Path)
		}
	}
	if lib.Path == "" {
		return Library{}, false
	}
	return lib, true
}

// FromProfile builds a Manifest from a parsed modern profile object
// (install_profile.json or version.json). Unusable library entries are
// skipped.
func FromProfile(obj map[string]any) Manifest {
	var libs []Library
	for _, rec := range LookupSlice(obj, "libraries") {
		if lib, ok := LibraryFromRecord(rec); ok {
			libs = append(libs, lib)
		}
	}
	m := Manifest{
		ID:           LookupString(obj, "", "id"),
		MainClass:    LookupString(obj, "", "mainClass"),
		InheritsFrom: LookupString(obj, "", "inheritsFrom"),
		GameVersion:  LookupString(obj, "", "minecraft"),
		Libraries:    MergeUnique(nil, libs),
	}
	if m.GameVersion == "" {
		m.GameVersion = m.InheritsFrom
	}
	return m
}
