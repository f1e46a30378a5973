package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lib(name string) Library {
	c, _ := ParseCoordinate(name)
	return Library{Name: name, Path: c.Path()}
}

func names(libs []Library) []string {
	out := make([]string, len(libs))
	for i, l := range libs {
		out[i] = l.Name
	}
	return out
}

// ── MergeUnique ──────────────────────────────────────────────────────────────

func TestMergeUniqueCoordinateWinsOverVersion(t *testing.T) {
	a := []Library{lib("org:x:1.0")}
	b := []Library{lib("org:x:2.0"), lib("org:y:1.0")}

	got := MergeUnique(a, b)

	assert.Equal(t, []string{"org:x:1.0", "org:y:1.0"}, names(got))
}

func TestMergeUniquePreservesOrder(t *testing.T) {
	a := []Library{lib("g:c:1"), lib("g:a:1"), lib("g:b:1")}
	b := []Library{lib("g:e:1"), lib("g:a:9"), lib("g:d:1")}

	got := MergeUnique(a, b)

	assert.Equal(t, []string{"g:c:1", "g:a:1", "g:b:1", "g:e:1", "g:d:1"}, names(got))
}

func TestMergeUniqueDropsRepeatsWithinAddition(t *testing.T) {
	got := MergeUnique(nil, []Library{lib("g:a:1"), lib("g:a:2"), lib("g:b:1")})
	assert.Equal(t, []string{"g:a:1", "g:b:1"}, names(got))
}

func TestMergeUniqueDoesNotAliasInputs(t *testing.T) {
	a := make([]Library, 1, 8)
	a[0] = lib("g:a:1")
	got := MergeUnique(a, []Library{lib("g:b:1")})
	got[0].Name = "changed"
	assert.Equal(t, "g:a:1", a[0].Name)
}

func TestMergeUniqueEmpty(t *testing.T) {
	assert.Empty(t, MergeUnique(nil, nil))
	assert.Equal(t, []string{"g:a:1"}, names(MergeUnique([]Library{lib("g:a:1")}, nil)))
}

func TestMergeUniqueClassifierIsPartOfIdentity(t *testing.T) {
	got := MergeUnique([]Library{lib("g:a:1")}, []Library{lib("g:a:1:natives-linux")})
	assert.Len(t, got, 2)
}

// ── Key ──────────────────────────────────────────────────────────────────────

func TestKeyFallsBackToPath(t *testing.T) {
	a := Library{Name: "not a coordinate", Path: "a/b/c.jar"}
	b := Library{Name: "also not", Path: "a\\b\\c.jar"}
	assert.Equal(t, a.Key(), b.Key())
}

func TestKeyFallsBackToName(t *testing.T) {
	assert.Equal(t, "name:weird", Library{Name: "weird"}.Key())
}

// ── Manifest.Merge ───────────────────────────────────────────────────────────

func TestManifestMergeFillsMissingFields(t *testing.T) {
	base := Manifest{GameVersion: "1.16.5", Libraries: []Library{lib("g:a:1")}}
	other := Manifest{ID: "1.16.5-forge-36.2.39", MainClass: "cpw.mods.Main", GameVersion: "ignored",
		Libraries: []Library{lib("g:a:2"), lib("g:b:1")}}

	got := base.Merge(other)

	assert.Equal(t, "1.16.5-forge-36.2.39", got.ID)
	assert.Equal(t, "cpw.mods.Main", got.MainClass)
	assert.Equal(t, "1.16.5", got.GameVersion)
	assert.Equal(t, []string{"g:a:1", "g:b:1"}, names(got.Libraries))
	require.Len(t, base.Libraries, 1, "receiver must not be mutated")
}

func TestLibraryPaths(t *testing.T) {
	m := Manifest{Libraries: []Library{lib("g.h:a:1")}}
	assert.Equal(t, []string{"g/h/a/1/a-1.jar"}, m.LibraryPaths())
}
