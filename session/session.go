// Package session drives an interactive translation session: it walks the
// pending keys one at a time through a Terminal, interprets the control
// commands, and persists the target mapping through a Saver.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/jacktools/transbuilder/flatpath"
	"github.com/jacktools/transbuilder/i18n"
	"github.com/jacktools/transbuilder/jsonvalue"
	"github.com/jacktools/transbuilder/store"
)

// Control commands recognized at the answer prompt.
const (
	CmdQuit  = ":q"
	CmdSave  = ":s"
	CmdStats = ":stats"
)

// DefaultAutosaveInterval is the number of accepted answers after which
// the target is persisted automatically.
const DefaultAutosaveInterval = 10

// ErrAborted is returned by a Terminal when the user interrupts input
// (Ctrl-C at the prompt). The session treats it like :q.
var ErrAborted = errors.New("input aborted")

// State is the controller state.
type State int

const (
	AwaitingKey State = iota
	Saving
	ShowingStats
	Quit
	Done
)

func (s State) String() string {
	switch s {
	case AwaitingKey:
		return "awaiting-key"
	case Saving:
		return "saving"
	case ShowingStats:
		return "showing-stats"
	case Quit:
		return "quit"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Severity classifies messages sent to the terminal.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarning
	SeverityError
	// SeverityNotice is a multi-line panel, e.g. the :stats summary.
	SeverityNotice
)

// PromptKind tells the terminal what kind of line is requested.
type PromptKind int

const (
	// PromptAnswer asks for the translation of Prompt.Key.
	PromptAnswer PromptKind = iota
	// PromptContinue waits for Enter after a message.
	PromptContinue
)

// Prompt describes a line request.
type Prompt struct {
	Kind       PromptKind
	Key        string
	SourceText string
	SourceLang string
	TargetLang string
	// Index is the 1-based position of Key among the pending keys.
	Index int
	Total int
}

// Terminal renders the session and returns raw input lines.
type Terminal interface {
	ReadLine(p Prompt) (string, error)
	Progress(current, total int)
	Message(sev Severity, text string)
}

// Saver persists the target mapping.
type Saver interface {
	Save(target *flatpath.Map) error
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(target *flatpath.Map) error

func (f SaverFunc) Save(target *flatpath.Map) error { return f(target) }

// Result summarizes a finished session.
type Result struct {
	// Completed counts keys advanced past, answered or skipped.
	Completed  int
	Translated int
	Skipped    int
	Saves      int
	// Total is the number of pending keys at session start.
	Total int
	// Quit is true when the user left before the last key.
	Quit bool
}

// Option configures a Session.
type Option func(*Session)

// WithAutosaveInterval sets the autosave threshold. Values below 1 are ignored.
func WithAutosaveInterval(n int) Option {
	return func(s *Session) {
		if n >= 1 {
			s.interval = n
		}
	}
}

// WithLogger sets the debug logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithLanguages sets the language labels shown in prompts.
func WithLanguages(source, target string) Option {
	return func(s *Session) {
		s.sourceLang, s.targetLang = source, target
	}
}

// WithAnswerHook registers fn to be called for every accepted answer with
// the key and its source value.
func WithAnswerHook(fn func(key string, source jsonvalue.Value)) Option {
	return func(s *Session) {
		s.onAnswer = fn
	}
}

// SaveError reports a failed save. It ends the session.
type SaveError struct {
	Err error
}

func (e *SaveError) Error() string { return "saving translations: " + e.Err.Error() }

func (e *SaveError) Unwrap() error { return e.Err }

// Session is one pass over the pending keys of a target mapping.
type Session struct {
	source  *flatpath.Map
	target  *flatpath.Map
	pending []string
	cursor  int
	unsaved int
	state   State
	res     Result

	term     Terminal
	saver    Saver
	interval int
	log      *zap.SugaredLogger

	sourceLang string
	targetLang string
	onAnswer   func(key string, source jsonvalue.Value)
}

// New creates a session. The pending keys are computed once here and do
// not change while target is mutated.
func New(source, target *flatpath.Map, term Terminal, saver Saver, opts ...Option) *Session {
	s := &Session{
		source:   source,
		target:   target,
		pending:  store.PendingKeys(source, target),
		term:     term,
		saver:    saver,
		interval: DefaultAutosaveInterval,
		log:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.res.Total = len(s.pending)
	if len(s.pending) == 0 {
		s.state = Done
	}
	return s
}

// Pending returns a copy of the pending keys.
func (s *Session) Pending() []string {
	return append([]string(nil), s.pending...)
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// Cursor returns the index of the current key in Pending.
func (s *Session) Cursor() int { return s.cursor }

// Unsaved returns the number of accepted answers not yet persisted.
func (s *Session) Unsaved() int { return s.unsaved }

// Result returns the statistics collected so far.
func (s *Session) Result() Result { return s.res }

func (s *Session) setState(next State) {
	if next != s.state {
		s.log.Debugw("state change", "from", s.state, "to", next, "cursor", s.cursor)
	}
	s.state = next
}

// Step interprets one input line for the current key. It returns the
// resulting state. A failed save ends the session in Quit with the save
// error; other errors come from the terminal during a pause.
func (s *Session) Step(answer string) (State, error) {
	if s.state != AwaitingKey {
		return s.state, nil
	}
	key := s.pending[s.cursor]

	switch answer = strings.TrimSpace(answer); answer {
	case CmdQuit:
		s.quit()
		s.term.Message(SeverityWarning, i18n.T("Translation interrupted by user."))

	case CmdSave:
		s.setState(Saving)
		if err := s.save(); err != nil {
			s.setState(Quit)
			return s.state, err
		}
		s.term.Message(SeveritySuccess, i18n.T("Translations saved!"))
		err := s.pause()
		s.setState(AwaitingKey)
		return s.state, err

	case CmdStats:
		s.setState(ShowingStats)
		s.term.Message(SeverityNotice, s.statsText())
		err := s.pause()
		s.setState(AwaitingKey)
		return s.state, err

	case "":
		s.res.Skipped++
		s.advance()

	default:
		s.target.Set(key, jsonvalue.StringValue(answer))
		s.unsaved++
		s.res.Translated++
		if s.onAnswer != nil {
			src, _ := s.source.Get(key)
			s.onAnswer(key, src)
		}
		var err error
		if s.unsaved >= s.interval {
			if err = s.save(); err == nil {
				s.term.Message(SeveritySuccess, i18n.T("Auto-saved progress"))
			}
		}
		s.advance()
		if err != nil {
			s.setState(Quit)
			return s.state, err
		}
	}
	return s.state, nil
}

// Run reads answers until every pending key is handled or the user quits.
// A cancelled ctx or end of input counts as quitting. A failed save stops
// the loop with an error. Unsaved answers are persisted once on the way
// out.
func (s *Session) Run(ctx context.Context) (Result, error) {
	var runErr error
	for s.state == AwaitingKey {
		if ctx.Err() != nil {
			s.quit()
			break
		}
		key := s.pending[s.cursor]
		s.term.Progress(s.cursor+1, len(s.pending))

		line, err := s.term.ReadLine(s.prompt(key))
		if err == nil {
			_, err = s.Step(line)
		}
		if err != nil {
			var saveErr *SaveError
			switch {
			case errors.As(err, &saveErr):
				runErr = err
			case ctx.Err() != nil || errors.Is(err, io.EOF) || errors.Is(err, ErrAborted):
				s.log.Debugw("input closed", "key", key, "err", err)
				s.quit()
			default:
				runErr = fmt.Errorf("reading answer for %s: %w", key, err)
			}
			break
		}
	}

	if s.unsaved > 0 {
		if err := s.save(); err != nil {
			runErr = multierr.Append(runErr, fmt.Errorf("final save: %w", err))
		}
	}
	return s.res, runErr
}

func (s *Session) prompt(key string) Prompt {
	src, _ := s.source.Get(key)
	return Prompt{
		Kind:       PromptAnswer,
		Key:        key,
		SourceText: src.Text(),
		SourceLang: s.sourceLang,
		TargetLang: s.targetLang,
		Index:      s.cursor + 1,
		Total:      len(s.pending),
	}
}

func (s *Session) advance() {
	s.cursor++
	s.res.Completed++
	if s.cursor >= len(s.pending) {
		s.setState(Done)
	}
}

func (s *Session) quit() {
	s.res.Quit = true
	s.setState(Quit)
}

func (s *Session) pause() error {
	_, err := s.term.ReadLine(Prompt{Kind: PromptContinue, Index: s.cursor + 1, Total: len(s.pending)})
	return err
}

// save persists the target. On failure the unsaved counter is kept for
// the final save in Run.
func (s *Session) save() error {
	if err := s.saver.Save(s.target); err != nil {
		s.log.Debugw("save failed", "unsaved", s.unsaved, "err", err)
		s.term.Message(SeverityError, fmt.Sprintf(i18n.T("Saving failed: %v"), err))
		return &SaveError{Err: err}
	}
	s.log.Debugw("saved", "unsaved", s.unsaved)
	s.unsaved = 0
	s.res.Saves++
	return nil
}

func (s *Session) statsText() string {
	total := s.source.Len()
	done := store.Translated(s.source, s.target)
	var b strings.Builder
	b.WriteString(i18n.T("Translation Progress:"))
	b.WriteByte('\n')
	fmt.Fprintf(&b, i18n.T("Completed: %d/%d (%d%%)"), done, total, store.Percent(done, total))
	b.WriteByte('\n')
	fmt.Fprintf(&b, i18n.T("Current session: %d unsaved changes"), s.unsaved)
	b.WriteByte('\n')
	fmt.Fprintf(&b, i18n.T("Remaining in session: %d"), len(s.pending)-s.cursor)
	return b.String()
}
