package wizard

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/jacktools/transbuilder/config"
	"github.com/jacktools/transbuilder/flatpath"
	"github.com/jacktools/transbuilder/jsonvalue"
	"github.com/jacktools/transbuilder/langmeta"
	"github.com/jacktools/transbuilder/session"
	"github.com/jacktools/transbuilder/store"
)

type uiMessage struct {
	sev  session.Severity
	text string
}

type fakeUI struct {
	answers  []string
	asked    []string
	printed  []string
	messages []uiMessage
}

func (f *fakeUI) Ask(prompt string) (string, error) {
	f.asked = append(f.asked, prompt)
	if len(f.answers) == 0 {
		return "", io.EOF
	}
	a := f.answers[0]
	f.answers = f.answers[1:]
	return strings.TrimSpace(a), nil
}

func (f *fakeUI) Confirm(question string) (bool, error) {
	a, err := f.Ask(question)
	if err != nil {
		return false, err
	}
	return a == "y" || a == "yes", nil
}

func (f *fakeUI) Print(text string) { f.printed = append(f.printed, text) }

func (f *fakeUI) Message(sev session.Severity, text string) {
	f.messages = append(f.messages, uiMessage{sev, text})
}

func (f *fakeUI) errors() []string {
	var out []string
	for _, m := range f.messages {
		if m.sev == session.SeverityError {
			out = append(out, m.text)
		}
	}
	return out
}

func newFixture(t *testing.T) (afero.Fs, *store.Store) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	files := map[string]string{
		"/tr/en.json":  `{"a":{"b":"Hello"},"c":"World"}`,
		"/tr/fr.json":  `{"a":{"b":"Bonjour"}}`,
		"/tr/bad.json": `{"a":`,
		"/empty/x.txt": `nothing`,
	}
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0644))
	}
	return fsys, store.New(fsys)
}

func TestSelectSource_File(t *testing.T) {
	_, st := newFixture(t)
	ui := &fakeUI{answers: []string{"/tr/en.json"}}

	src, err := New(ui, st, nil).SelectSource()
	require.NoError(t, err)
	require.Equal(t, "en", src.File.Code)
	require.Equal(t, "/tr", src.Dir())
	require.Equal(t, []string{"a.b", "c"}, src.Flat.Keys())
}

func TestSelectSource_DirectoryAndInvalidNumber(t *testing.T) {
	_, st := newFixture(t)
	// Files sorted by code: bad, en, fr.
	ui := &fakeUI{answers: []string{"/tr", "9", "/tr", "2"}}

	src, err := New(ui, st, nil).SelectSource()
	require.NoError(t, err)
	require.Equal(t, "en", src.File.Code)

	require.Equal(t, []string{"Invalid file number."}, ui.errors())
	require.Contains(t, ui.printed, "  2. 🇬🇧 English (en.json)")
	require.Contains(t, ui.printed, "  1. 🏳️ Unknown (bad.json)")
}

func TestSelectSource_RetriesOnBadInput(t *testing.T) {
	_, st := newFixture(t)
	ui := &fakeUI{answers: []string{"/nope.json", "/tr/bad.json", "/empty", "/tr/fr.json"}}

	src, err := New(ui, st, nil).SelectSource()
	require.NoError(t, err)
	require.Equal(t, "fr", src.File.Code)
	require.Equal(t, []string{
		"Invalid path or JSON format. Please try again.",
		"Invalid path or JSON format. Please try again.",
		"No JSON translation files found in directory.",
	}, ui.errors())
}

func TestSelectSource_EOFStops(t *testing.T) {
	_, st := newFixture(t)
	ui := &fakeUI{answers: []string{"/tr"}}

	_, err := New(ui, st, nil).SelectSource()
	require.ErrorIs(t, err, io.EOF)
}

func TestPickFile(t *testing.T) {
	files := []config.LanguageFile{{Code: "en"}, {Code: "fr"}}

	f, err := PickFile(files, " 2 ")
	require.NoError(t, err)
	require.Equal(t, "fr", f.Code)

	for _, bad := range []string{"0", "3", "-1", "two", ""} {
		_, err := PickFile(files, bad)
		require.ErrorIs(t, err, ErrInvalidSelection, "choice %q", bad)
	}
}

func TestResolveLanguage(t *testing.T) {
	t.Run("exact code", func(t *testing.T) {
		m, _, err := ResolveLanguage("FR", "en")
		require.NoError(t, err)
		require.Equal(t, "fr", m.Code)
		require.Equal(t, "French", m.Name)
	})

	t.Run("regional code is lower-cased", func(t *testing.T) {
		m, _, err := ResolveLanguage("pt-BR", "en")
		require.NoError(t, err)
		require.Equal(t, "pt-br", m.Code)
	})

	t.Run("unique name match", func(t *testing.T) {
		m, _, err := ResolveLanguage("germ", "en")
		require.NoError(t, err)
		require.Equal(t, "de", m.Code)
	})

	t.Run("source code excluded", func(t *testing.T) {
		m, _, err := ResolveLanguage("english", "en")
		require.NoError(t, err)
		require.Equal(t, "en-us", m.Code)
	})

	t.Run("ambiguous", func(t *testing.T) {
		_, candidates, err := ResolveLanguage("ch", "en")
		require.ErrorIs(t, err, ErrAmbiguousLanguage)
		require.GreaterOrEqual(t, len(candidates), 2)
	})

	t.Run("not found", func(t *testing.T) {
		_, _, err := ResolveLanguage("klingon", "en")
		require.ErrorIs(t, err, ErrInvalidSelection)
	})
}

func TestSelectLanguage_RetriesUntilResolved(t *testing.T) {
	_, st := newFixture(t)
	ui := &fakeUI{answers: []string{"klingon", "ch", "spani"}}

	m, err := New(ui, st, nil).SelectLanguage("en")
	require.NoError(t, err)
	require.Equal(t, "es", m.Code)

	require.Len(t, ui.errors(), 1)
	last := ui.messages[len(ui.messages)-1]
	require.Equal(t, session.SeveritySuccess, last.sev)
	require.Contains(t, last.text, "es (Spanish)")
}

func TestTargetLanguage(t *testing.T) {
	m, err := TargetLanguage("ZZ", "en")
	require.NoError(t, err)
	require.Equal(t, "zz", m.Code)
	require.Equal(t, langmeta.UnknownName, m.Name)

	m, err = TargetLanguage("pt_BR", "en")
	require.NoError(t, err)
	require.Equal(t, "pt_br", m.Code)

	rejected := []string{
		"EN",
		" ",
		"../../tmp/evil",
		"..",
		"sub/fr",
		`sub\fr`,
		"fr.json",
		"/etc/passwd",
	}
	for _, code := range rejected {
		_, err := TargetLanguage(code, "en")
		require.True(t, errors.Is(err, ErrInvalidSelection), "code %q", code)
	}
}

func TestOpenTarget(t *testing.T) {
	fsys, st := newFixture(t)
	require.NoError(t, afero.WriteFile(fsys, "/tr/de.json", []byte("nope"), 0644))
	w := New(&fakeUI{}, st, nil)

	fr := w.OpenTarget("/tr", langmeta.Resolve("fr"))
	require.Equal(t, store.TargetLoaded, fr.Status)
	require.Equal(t, "/tr/fr.json", fr.Path)

	es := w.OpenTarget("/tr", langmeta.Meta{Code: "es", Name: "Spanish"})
	require.Equal(t, store.TargetNew, es.Status)
	require.Equal(t, 0, es.Flat.Len())

	de := w.OpenTarget("/tr", langmeta.Meta{Code: "de", Name: "German"})
	require.Equal(t, store.TargetMalformed, de.Status)
}

func TestConfirmStart(t *testing.T) {
	source := flatpath.NewMap()
	source.Set("a", jsonvalue.StringValue("Hello"))
	target := flatpath.NewMap()

	t.Run("nothing pending", func(t *testing.T) {
		ui := &fakeUI{}
		ok, err := New(ui, nil, nil).ConfirmStart(source, target, 0, false)
		require.NoError(t, err)
		require.False(t, ok)
		require.Empty(t, ui.asked)
	})

	t.Run("assume yes", func(t *testing.T) {
		ui := &fakeUI{}
		ok, err := New(ui, nil, nil).ConfirmStart(source, target, 1, true)
		require.NoError(t, err)
		require.True(t, ok)
		require.Empty(t, ui.asked)
	})

	t.Run("declined", func(t *testing.T) {
		ui := &fakeUI{answers: []string{"n"}}
		ok, err := New(ui, nil, nil).ConfirmStart(source, target, 1, false)
		require.NoError(t, err)
		require.False(t, ok)
		require.Equal(t, session.SeverityWarning, ui.messages[len(ui.messages)-1].sev)
	})

	t.Run("accepted", func(t *testing.T) {
		ui := &fakeUI{answers: []string{"yes"}}
		ok, err := New(ui, nil, nil).ConfirmStart(source, target, 1, false)
		require.NoError(t, err)
		require.True(t, ok)
	})
}

func TestOverview(t *testing.T) {
	source := flatpath.NewMap()
	source.Set("a", jsonvalue.StringValue(strings.Repeat("x", 1500)))
	source.Set("b", jsonvalue.StringValue("y"))
	target := flatpath.NewMap()

	got := Overview(source, target, 2)
	want := "Translation Overview:\n" +
		"📝 Source: 2 keys, 1,501 chars (avg: 751)\n" +
		"🎯 Target: 0 keys, 0 chars (avg: 0)\n" +
		"⏳ Remaining: 2 keys to translate"
	require.Equal(t, want, got)
}

func TestSummary(t *testing.T) {
	res := session.Result{Completed: 2, Total: 3}
	got := Summary(res, "/tr/fr.json", langmeta.Meta{Name: "French", Flag: "🇫🇷"})
	require.Contains(t, got, "Translated: 2/3 entries (67%)")
	require.Contains(t, got, "Saved to: fr.json")
	require.Contains(t, got, "Language: 🇫🇷 French")
}

func TestShowAvailable(t *testing.T) {
	_, st := newFixture(t)
	ui := &fakeUI{}
	w := New(ui, st, nil)

	src, err := w.OpenSource("/tr/en.json")
	require.NoError(t, err)
	w.ShowAvailable(src)

	require.Contains(t, ui.printed, "   🏳️ bad (Unknown)  •  🇬🇧 en (English)  •  🇫🇷 fr (French)")
	last := ui.messages[len(ui.messages)-1]
	require.Equal(t, session.SeveritySuccess, last.sev)
	require.Equal(t, "Selected source: 🇬🇧 English (en)", last.text)
}
