package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/afero"

	"github.com/jacktools/transbuilder/flatpath"
	"github.com/jacktools/transbuilder/jsonvalue"
	"github.com/jacktools/transbuilder/langmeta"
	"github.com/jacktools/transbuilder/lockfile"
	"github.com/jacktools/transbuilder/session"
	"github.com/jacktools/transbuilder/store"
	"github.com/jacktools/transbuilder/wizard"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func writeFiles(t *testing.T, fsys afero.Fs, files map[string]string) {
	t.Helper()
	for path, content := range files {
		if err := afero.WriteFile(fsys, path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		name    string
		percent int
		width   int
		want    string
	}{
		{
			name:    "clamps below zero",
			percent: -10,
			width:   4,
			want:    "░░░░   0%",
		},
		{
			name:    "mid range",
			percent: 50,
			width:   4,
			want:    "██░░  50%",
		},
		{
			name:    "clamps above hundred",
			percent: 120,
			width:   4,
			want:    "████ 100%",
		},
	}

	for _, tc := range tests {
		if got := progressBar(tc.percent, tc.width); got != tc.want {
			t.Fatalf("%s: progressBar() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestLangColumnWidth(t *testing.T) {
	if got := langColumnWidth(nil); got != 4 {
		t.Fatalf("langColumnWidth(nil) = %d, want 4", got)
	}
	if got := langColumnWidth([]string{"fr", "pt-br", "de"}); got != 5 {
		t.Fatalf("langColumnWidth() = %d, want 5", got)
	}
}

func TestLangCell(t *testing.T) {
	if got := langCell("fr", 4); got != "🇫🇷 fr  " {
		t.Fatalf("langCell(fr) = %q", got)
	}
	if got := langCell("zz", 2); got != langmeta.UnknownFlag+" zz" {
		t.Fatalf("langCell(zz) = %q", got)
	}
}

func TestRunStatus(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, map[string]string{
		"/tr/en.json": `{"a":{"b":"Hello"},"c":"World","d":"Again"}`,
		"/tr/fr.json": `{"a":{"b":"Bonjour"},"c":"","old":"x"}`,
		"/tr/de.json": `{"a":{"b":"Hallo"},"c":"Welt","d":"Wieder"}`,
		"/tr/es.json": `{"a":`,
	})

	lf, err := lockfile.Load(fsys, "/tr")
	if err != nil {
		t.Fatal(err)
	}
	lf.Update("fr.json", "a.b", jsonvalue.StringValue("Hi"))
	if err := lf.Save(); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := runStatus(&out, fsys, "/tr", "EN"); err != nil {
		t.Fatalf("runStatus: %v", err)
	}
	got := out.String()

	for _, want := range []string{
		"Total keys: 3",
		"invalid",
		"fr: 1 missing, 1 empty, 1 obsolete, 1 outdated",
		"outdated: a.b",
		"████████████████████ 100%",
		"transbuilder.lock: 1 targets, 1 keys tracked (fr.json: 1)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "de: ") {
		t.Errorf("complete language listed as a gap:\n%s", got)
	}

	// Column positions after the language cell match for valid and
	// invalid files.
	rows := map[string]string{}
	for _, line := range strings.Split(got, "\n") {
		for _, code := range []string{"es", "fr"} {
			if rest, ok := strings.CutPrefix(line, langCell(code, 4)+" "); ok {
				rows[code] = rest
			}
		}
	}
	if len(rows["es"]) < 14 || rows["es"][13:14] != "-" {
		t.Errorf("invalid row misaligned: %q", rows["es"])
	}
	if len(rows["fr"]) < 14 || rows["fr"][13:14] != "2" {
		t.Errorf("fr row = %q, want untranslated count 2 at column 13", rows["fr"])
	}
}

func TestRunStatusNoSource(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, map[string]string{"/tr/fr.json": `{}`})

	err := runStatus(io.Discard, fsys, "/tr", "en")
	if err == nil || !strings.Contains(err.Error(), "en.json") {
		t.Fatalf("runStatus error = %v, want missing en.json", err)
	}
}

func TestRunLanguages(t *testing.T) {
	var out bytes.Buffer
	runLanguages(&out)
	if !strings.Contains(out.String(), "French") || !strings.Contains(out.String(), "Deutsch") {
		t.Fatalf("languages output incomplete:\n%s", out.String())
	}
}

func TestTargetSaverBacksUpOnce(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, map[string]string{"/tr/fr.json": `{"a":`})
	st := store.New(fsys)

	source := flatpath.NewMap()
	source.Set("a", jsonvalue.StringValue("Hello"))
	tgt := wizard.Target{Path: "/tr/fr.json", Status: store.TargetMalformed, Flat: flatpath.NewMap()}

	s, err := newTargetSaver(st, tgt, source, false)
	if err != nil {
		t.Fatal(err)
	}
	if s.lock != nil {
		t.Fatal("lock loaded without tracking")
	}

	tgt.Flat.Set("a", jsonvalue.StringValue("Bonjour"))
	for i := range 2 {
		if err := s.Save(tgt.Flat); err != nil {
			t.Fatalf("Save #%d: %v", i+1, err)
		}
	}

	bak, err := afero.ReadFile(fsys, "/tr/fr.json.bak")
	if err != nil {
		t.Fatalf("reading backup: %v", err)
	}
	if string(bak) != `{"a":` {
		t.Fatalf("backup = %q, want the malformed original", bak)
	}
	data, _ := afero.ReadFile(fsys, "/tr/fr.json")
	if !strings.Contains(string(data), `"a": "Bonjour"`) {
		t.Fatalf("target = %q", data)
	}
}

func TestTargetSaverTracksChanges(t *testing.T) {
	fsys := afero.NewMemMapFs()
	st := store.New(fsys)

	source := flatpath.NewMap()
	source.Set("a", jsonvalue.StringValue("Hello"))
	tgt := wizard.Target{Path: "/tr/fr.json", Status: store.TargetNew, Flat: flatpath.NewMap()}

	s, err := newTargetSaver(st, tgt, source, true)
	if err != nil {
		t.Fatal(err)
	}
	s.lock.Update("fr.json", "gone", jsonvalue.StringValue("x"))
	s.record("a", jsonvalue.StringValue("Hello"))
	tgt.Flat.Set("a", jsonvalue.StringValue("Bonjour"))
	if err := s.Save(tgt.Flat); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if ok, _ := afero.Exists(fsys, "/tr/fr.json.bak"); ok {
		t.Fatal("backup written for a new target")
	}

	lf, err := lockfile.Load(fsys, "/tr")
	if err != nil {
		t.Fatal(err)
	}
	if lf.IsChanged("fr.json", "a", jsonvalue.StringValue("Hello")) {
		t.Fatal("recorded answer not in lock file")
	}
	if _, ok := lf.Checksums["fr.json"]["gone"]; ok {
		t.Fatal("key missing from source was not cleaned")
	}
}

func TestUserCancelled(t *testing.T) {
	ctx := context.Background()
	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	tests := []struct {
		ctx  context.Context
		err  error
		want bool
	}{
		{ctx, io.EOF, true},
		{ctx, fmt.Errorf("prompt: %w", session.ErrAborted), true},
		{cancelled, errors.New("read interrupted"), true},
		{ctx, errors.New("disk full"), false},
	}
	for _, tc := range tests {
		if got := userCancelled(tc.ctx, tc.err); got != tc.want {
			t.Errorf("userCancelled(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestRootCommandFlags(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"target", "autosave-interval", "yes", "track", "history-file"} {
		if root.Flags().Lookup(name) == nil {
			t.Errorf("missing flag --%s", name)
		}
	}
	for _, name := range []string{"config", "no-color", "verbose", "ui-lang"} {
		if root.PersistentFlags().Lookup(name) == nil {
			t.Errorf("missing persistent flag --%s", name)
		}
	}

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	if got := strings.Join(names, ","); got != "languages,status,version" {
		t.Errorf("subcommands = %s", got)
	}
}
