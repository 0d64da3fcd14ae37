package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Jeffail/gabs"
)

// FixturePath returns the path of name under the testdata directory of the
// package being tested. Absolute paths are returned unchanged.
func FixturePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join("testdata", name)
}

// Fixture reads a fixture file.
func Fixture(t testing.TB, name string) []byte {
	t.Helper()

	data, err := os.ReadFile(FixturePath(name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return data
}

// FixtureJSON decodes a JSON fixture into dest.
func FixtureJSON(t testing.TB, name string, dest any) {
	t.Helper()

	if err := json.Unmarshal(Fixture(t, name), dest); err != nil {
		t.Fatalf("decode fixture %s: %v", name, err)
	}
}

// FixtureEdit derives a variant of a JSON fixture, such as a preload
// response missing a field. Keys of set are dotted paths; paths in remove
// are deleted after set is applied.
func FixtureEdit(t testing.TB, name string, set map[string]any, remove ...string) []byte {
	t.Helper()

	doc, err := gabs.ParseJSON(Fixture(t, name))
	if err != nil {
		t.Fatalf("parse fixture %s: %v", name, err)
	}
	for path, value := range set {
		if _, err := doc.SetP(value, path); err != nil {
			t.Fatalf("fixture %s: set %s: %v", name, path, err)
		}
	}
	for _, path := range remove {
		if err := doc.DeleteP(path); err != nil {
			t.Fatalf("fixture %s: delete %s: %v", name, path, err)
		}
	}
	return doc.Bytes()
}
