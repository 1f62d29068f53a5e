package lockfile

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/jacktools/transbuilder/flatpath"
	"github.com/jacktools/transbuilder/jsonvalue"
)

func str(s string) jsonvalue.Value { return jsonvalue.StringValue(s) }

func TestHashDeterministic(t *testing.T) {
	h1 := Hash("hello world")
	h2 := Hash("hello world")
	if h1 != h2 {
		t.Errorf("Hash not deterministic: %s != %s", h1, h2)
	}
	h3 := Hash("different")
	if h1 == h3 {
		t.Errorf("Hash collision: %s == %s", h1, h3)
	}
}

func TestLoadNonExistent(t *testing.T) {
	lf, err := Load(afero.NewMemMapFs(), "/tr")
	if err != nil {
		t.Fatalf("Load returned error for non-existent file: %v", err)
	}
	if lf.Version != Version {
		t.Errorf("Version = %d, want %d", lf.Version, Version)
	}
	if len(lf.Checksums) != 0 {
		t.Errorf("Checksums not empty: %v", lf.Checksums)
	}
	if lf.Path() != filepath.Join("/tr", LockFileName) {
		t.Errorf("Path() = %q", lf.Path())
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/tr/"+LockFileName, []byte("checksums: [oops"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(fsys, "/tr"); err == nil {
		t.Fatal("Load accepted invalid YAML")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	fsys := afero.NewOsFs()

	lf, err := Load(fsys, dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	lf.Update("fr.json", "a.b", str("Hello"))
	lf.Update("fr.json", "c", str("World"))
	lf.Update("de.json", "a.b", str("Hello"))

	if err := lf.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	lf2, err := Load(fsys, dir)
	if err != nil {
		t.Fatalf("Load after save: %v", err)
	}

	targets, keys := lf2.Stats()
	if targets != 2 {
		t.Errorf("targets = %d, want 2", targets)
	}
	if keys != 3 {
		t.Errorf("keys = %d, want 3", keys)
	}
	if lf2.IsChanged("fr.json", "c", str("World")) {
		t.Error("reloaded entry should not be changed")
	}
}

func TestIsChanged(t *testing.T) {
	lf := &LockFile{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
	}

	// New entry is always changed
	if !lf.IsChanged("fr.json", "greeting", str("Hello")) {
		t.Error("new entry should be changed")
	}

	// After update, same content is not changed
	lf.Update("fr.json", "greeting", str("Hello"))
	if lf.IsChanged("fr.json", "greeting", str("Hello")) {
		t.Error("unchanged entry should not be changed")
	}

	// Modified content is changed
	if !lf.IsChanged("fr.json", "greeting", str("Hello!")) {
		t.Error("modified entry should be changed")
	}

	// Different target is changed
	if !lf.IsChanged("de.json", "greeting", str("Hello")) {
		t.Error("different target should be changed")
	}
}

func TestEntryContentIncludesKey(t *testing.T) {
	a := Hash(EntryContent("a", str("same")))
	b := Hash(EntryContent("b", str("same")))
	if a == b {
		t.Error("different keys with the same value should hash differently")
	}
}

func TestOutdated(t *testing.T) {
	lf := &LockFile{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
	}
	if got := lf.Outdated("fr.json", flatpath.NewMap()); got != nil {
		t.Fatalf("Outdated on empty lock = %v, want nil", got)
	}

	lf.Update("fr.json", "a", str("One"))
	lf.Update("fr.json", "b", str("Two"))
	lf.Update("fr.json", "c", str("Three"))

	source := flatpath.NewMap()
	source.Set("c", str("Three, revised"))
	source.Set("a", str("One, revised"))
	source.Set("b", str("Two"))
	source.Set("d", str("Never translated"))

	got := lf.Outdated("fr.json", source)
	want := []string{"c", "a"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("Outdated() = %v, want %v", got, want)
	}
}

func TestClean(t *testing.T) {
	lf := &LockFile{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
	}

	lf.Update("fr.json", "a", str("A"))
	lf.Update("fr.json", "b", str("B"))
	lf.Update("fr.json", "c", str("C"))

	lf.Clean("fr.json", []string{"a", "c"})

	if len(lf.Checksums["fr.json"]) != 2 {
		t.Errorf("after Clean: %d keys, want 2", len(lf.Checksums["fr.json"]))
	}
	if _, ok := lf.Checksums["fr.json"]["b"]; ok {
		t.Error("b should have been cleaned")
	}

	// Cleaning an unknown target is a no-op.
	lf.Clean("de.json", nil)
}

func TestTargetKey(t *testing.T) {
	if got := TargetKey(filepath.Join("i18n", "fr.json")); got != "fr.json" {
		t.Errorf("TargetKey() = %q, want %q", got, "fr.json")
	}
}

func TestSummary(t *testing.T) {
	lf := &LockFile{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
	}

	if s := lf.Summary(); s != "no keys tracked" {
		t.Errorf("empty summary = %q, want %q", s, "no keys tracked")
	}

	lf.Update("fr.json", "a", str("A"))
	lf.Update("fr.json", "b", str("B"))
	lf.Update("de.json", "a", str("A"))

	want := "2 targets, 3 keys tracked (de.json: 1, fr.json: 2)"
	if s := lf.Summary(); s != want {
		t.Errorf("Summary() = %q, want %q", s, want)
	}
}

func TestSaveWithoutPath(t *testing.T) {
	lf := &LockFile{Version: Version}
	if err := lf.Save(); err == nil {
		t.Error("Save without path should fail")
	}
}
