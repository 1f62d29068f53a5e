// Package wizard implements the setup steps that precede a translation
// session: choosing the source file, choosing the target language, and
// confirming the work ahead.
package wizard

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/jacktools/transbuilder/config"
	"github.com/jacktools/transbuilder/flatpath"
	"github.com/jacktools/transbuilder/i18n"
	"github.com/jacktools/transbuilder/langmeta"
	"github.com/jacktools/transbuilder/session"
	"github.com/jacktools/transbuilder/store"
)

var (
	// ErrInvalidSelection is returned for an out-of-range file number or
	// an unknown language.
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrAmbiguousLanguage is returned when a name matches several languages.
	ErrAmbiguousLanguage = errors.New("ambiguous language")
)

// UI is the part of the terminal the wizard talks to.
type UI interface {
	Ask(prompt string) (string, error)
	Confirm(question string) (bool, error)
	Print(text string)
	Message(sev session.Severity, text string)
}

// Source is the chosen source file and its flattened content.
type Source struct {
	File config.LanguageFile
	Flat *flatpath.Map
}

// Dir returns the directory holding the source, where targets live too.
func (s Source) Dir() string {
	return filepath.Dir(s.File.Path)
}

// Target is the target file for the chosen language.
type Target struct {
	Path   string
	Lang   langmeta.Meta
	Flat   *flatpath.Map
	Status store.TargetStatus
}

// Wizard runs the setup steps.
type Wizard struct {
	ui    UI
	store *store.Store
	log   *zap.SugaredLogger
}

// New creates a wizard. A nil logger disables debug output.
func New(ui UI, st *store.Store, log *zap.SugaredLogger) *Wizard {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Wizard{ui: ui, store: st, log: log}
}

func (w *Wizard) fs() afero.Fs {
	return w.store.Fs()
}

// OpenSource loads the source file at path without prompting.
func (w *Wizard) OpenSource(path string) (Source, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Source{}, fmt.Errorf("resolving %s: %w", path, err)
	}
	flat, err := w.store.Load(abs)
	if err != nil {
		return Source{}, err
	}
	w.log.Debugw("source loaded", "path", abs, "keys", flat.Len())
	return Source{File: config.NewLanguageFile(abs), Flat: flat}, nil
}

// SelectSource asks for a source file until a valid one is given. A
// directory lists its translation files and asks for a number.
func (w *Wizard) SelectSource() (Source, error) {
	for {
		input, err := w.ui.Ask("\n📄 " + i18n.T("Enter path to source file (or directory to scan): "))
		if err != nil {
			return Source{}, err
		}

		path, err := filepath.Abs(input)
		if err != nil {
			w.ui.Message(session.SeverityError, i18n.T("Invalid path or JSON format. Please try again."))
			continue
		}

		if isDir, _ := afero.IsDir(w.fs(), path); isDir {
			files, err := config.FindLanguageFiles(w.fs(), path)
			if err != nil || len(files) == 0 {
				w.ui.Message(session.SeverityError, i18n.T("No JSON translation files found in directory."))
				continue
			}
			w.listFiles(files)

			choice, err := w.ui.Ask("\n" + i18n.T("Enter file number: "))
			if err != nil {
				return Source{}, err
			}
			f, err := PickFile(files, choice)
			if err != nil {
				w.log.Debugw("file number rejected", "choice", choice, "err", err)
				w.ui.Message(session.SeverityError, i18n.T("Invalid file number."))
				continue
			}
			path = f.Path
		}

		src, err := w.OpenSource(path)
		if err != nil {
			w.log.Debugw("source rejected", "path", path, "err", err)
			w.ui.Message(session.SeverityError, i18n.T("Invalid path or JSON format. Please try again."))
			continue
		}
		return src, nil
	}
}

func (w *Wizard) listFiles(files []config.LanguageFile) {
	w.ui.Message(session.SeveritySuccess, fmt.Sprintf(i18n.N("Found %d translation file:", "Found %d translation files:", len(files)), len(files)))
	for i, f := range files {
		w.ui.Print(fmt.Sprintf("  %d. %s (%s.json)", i+1, f.Lang.Label(), f.Code))
	}
}

// PickFile returns the file for a 1-based number entered by the user.
func PickFile(files []config.LanguageFile, choice string) (config.LanguageFile, error) {
	n, err := strconv.Atoi(strings.TrimSpace(choice))
	if err != nil || n < 1 || n > len(files) {
		return config.LanguageFile{}, fmt.Errorf("%w: file number %q", ErrInvalidSelection, choice)
	}
	return files[n-1], nil
}

// ShowAvailable lists the translation files next to the source.
func (w *Wizard) ShowAvailable(src Source) {
	files, err := config.FindLanguageFiles(w.fs(), src.Dir())
	if err != nil || len(files) == 0 {
		w.ui.Message(session.SeverityInfo, i18n.T("No existing translation files found in directory"))
		return
	}

	w.ui.Print("\n📁 " + i18n.T("Available translation files:"))
	w.ui.Print("   " + strings.Join(lo.Map(files, func(f config.LanguageFile, _ int) string {
		return fmt.Sprintf("%s %s (%s)", f.Lang.Flag, f.Code, f.Lang.Name)
	}), "  •  "))
	w.ui.Print("\n💡 " + i18n.T("Enter any ISO language code (en, fr, de, es, etc.)"))
	w.ui.Message(session.SeveritySuccess, fmt.Sprintf(i18n.T("Selected source: %s"), src.File.Label()))
}

// ResolveLanguage maps user input to a registry language: an exact code
// other than exclude, or else the single language whose English name
// contains the input. Several name matches yield ErrAmbiguousLanguage
// together with the candidates.
func ResolveLanguage(input, exclude string) (langmeta.Meta, []langmeta.Meta, error) {
	q := strings.ToLower(strings.TrimSpace(input))
	exclude = strings.ToLower(exclude)

	if m, ok := langmeta.Lookup(q); ok && strings.ToLower(m.Code) != exclude {
		m.Code = q
		return m, nil, nil
	}

	matches := lo.Filter(langmeta.Match(q, ""), func(m langmeta.Meta, _ int) bool {
		return strings.ToLower(m.Code) != exclude
	})
	switch len(matches) {
	case 1:
		m := matches[0]
		m.Code = strings.ToLower(m.Code)
		return m, nil, nil
	case 0:
		return langmeta.Meta{}, nil, fmt.Errorf("%w: language %q", ErrInvalidSelection, q)
	default:
		return langmeta.Meta{}, matches, fmt.Errorf("%w: %q", ErrAmbiguousLanguage, q)
	}
}

// codePattern limits target codes to names that stay inside the source
// directory when used as <code>.json.
var codePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// TargetLanguage accepts any code given on the command line, labelling
// unknown ones with the placeholder. It must differ from the source code
// and consist of letters, digits, '-' and '_' only.
func TargetLanguage(code, exclude string) (langmeta.Meta, error) {
	c := strings.ToLower(strings.TrimSpace(code))
	if !codePattern.MatchString(c) || c == strings.ToLower(exclude) {
		return langmeta.Meta{}, fmt.Errorf("%w: target language %q", ErrInvalidSelection, code)
	}
	m := langmeta.Resolve(c)
	m.Code = c
	return m, nil
}

// SelectLanguage asks for the target language until one resolves.
func (w *Wizard) SelectLanguage(exclude string) (langmeta.Meta, error) {
	for {
		input, err := w.ui.Ask("\n🎯 " + i18n.T("Enter target language code (e.g., en, fr, de): "))
		if err != nil {
			return langmeta.Meta{}, err
		}

		m, candidates, err := ResolveLanguage(input, exclude)
		switch {
		case err == nil:
			if !strings.EqualFold(m.Code, strings.TrimSpace(input)) {
				w.ui.Message(session.SeveritySuccess, fmt.Sprintf(i18n.T("Matched: %s %s (%s)"), m.Flag, m.Code, m.Name))
			}
			return m, nil
		case errors.Is(err, ErrAmbiguousLanguage):
			w.ui.Message(session.SeverityWarning, i18n.T("Multiple matches found:"))
			for _, c := range candidates {
				w.ui.Print(fmt.Sprintf("   %s %s - %s", c.Flag, c.Code, c.Name))
			}
			w.ui.Message(session.SeverityWarning, i18n.T("Please be more specific with the language code."))
		default:
			w.ui.Message(session.SeverityError, fmt.Sprintf(i18n.T("Language %q not found. Please use ISO language codes (e.g., en, fr, de, es)."), strings.TrimSpace(input)))
		}
	}
}

// OpenTarget loads or initializes the target file for lang next to the
// source and reports which case applied.
func (w *Wizard) OpenTarget(dir string, lang langmeta.Meta) Target {
	path := store.TargetPath(dir, lang.Code)
	flat, status := w.store.LoadOrInit(path)
	w.log.Debugw("target opened", "path", path, "status", status, "keys", flat.Len())

	switch status {
	case store.TargetLoaded:
		w.ui.Message(session.SeveritySuccess, fmt.Sprintf(i18n.T("Loaded existing %s translations"), lang.Name))
	case store.TargetMalformed:
		w.ui.Message(session.SeverityWarning, fmt.Sprintf(i18n.T("%s could not be read as JSON; starting empty. The old file will be kept as %s.bak."), filepath.Base(path), filepath.Base(path)))
	default:
		w.ui.Message(session.SeverityInfo, fmt.Sprintf(i18n.T("Creating new %s translation file"), lang.Name))
	}
	return Target{Path: path, Lang: lang, Flat: flat, Status: status}
}

// Overview returns the pre-session statistics panel.
func Overview(source, target *flatpath.Map, pending int) string {
	s := store.Measure(source)
	t := store.Measure(target)

	var b strings.Builder
	b.WriteString(i18n.T("Translation Overview:"))
	b.WriteString("\n📝 ")
	fmt.Fprintf(&b, i18n.T("Source: %s keys, %s chars (avg: %d)"), humanize.Comma(int64(s.Keys)), humanize.Comma(int64(s.Chars)), s.AvgLength)
	b.WriteString("\n🎯 ")
	fmt.Fprintf(&b, i18n.T("Target: %s keys, %s chars (avg: %d)"), humanize.Comma(int64(t.Keys)), humanize.Comma(int64(t.Chars)), t.AvgLength)
	b.WriteString("\n⏳ ")
	fmt.Fprintf(&b, i18n.N("Remaining: %d key to translate", "Remaining: %d keys to translate", pending), pending)
	return b.String()
}

// ConfirmStart shows the overview and asks whether to begin. It returns
// false without asking when nothing is pending; assumeYes skips the
// question.
func (w *Wizard) ConfirmStart(source, target *flatpath.Map, pending int, assumeYes bool) (bool, error) {
	w.ui.Message(session.SeverityNotice, Overview(source, target, pending))

	if pending == 0 {
		w.ui.Message(session.SeveritySuccess, "🎉 "+i18n.T("All translations complete! Nothing to do."))
		return false, nil
	}
	if assumeYes {
		return true, nil
	}

	ok, err := w.ui.Confirm("\n🚀 " + i18n.T("Ready to start translating?"))
	if err != nil {
		return false, err
	}
	if !ok {
		w.ui.Message(session.SeverityWarning, i18n.T("Translation cancelled by user."))
	}
	return ok, nil
}

// Summary returns the end-of-session panel.
func Summary(res session.Result, targetPath string, lang langmeta.Meta) string {
	var b strings.Builder
	b.WriteString("🎉 " + i18n.T("Translation Session Complete!") + " 🎉\n\n")
	fmt.Fprintf(&b, i18n.T("Translated: %d/%d entries (%d%%)"), res.Completed, res.Total, store.Percent(res.Completed, res.Total))
	b.WriteByte('\n')
	fmt.Fprintf(&b, i18n.T("Saved to: %s"), filepath.Base(targetPath))
	b.WriteByte('\n')
	fmt.Fprintf(&b, i18n.T("Language: %s"), lang.Label())
	return b.String()
}
