// Package terminal renders translation sessions on an interactive
// terminal: readline input with history, colored messages, boxes and a
// progress bar.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/jacktools/transbuilder/i18n"
	"github.com/jacktools/transbuilder/session"
)

// LineReader reads edited lines. *readline.Instance satisfies it.
type LineReader interface {
	SetPrompt(p string)
	Readline() (string, error)
	Close() error
}

var (
	infoColor    = color.New(color.FgBlue)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	keyColor     = color.New(color.FgCyan)
	brightColor  = color.New(color.Bold)
	dimColor     = color.New(color.Faint)
)

// Options configure New.
type Options struct {
	// HistoryFile stores entered lines across runs. Empty disables history.
	HistoryFile string
	Stdin       io.ReadCloser
	Stdout      io.Writer
}

// Console is an interactive terminal. It implements session.Terminal.
type Console struct {
	rl    LineReader
	out   io.Writer
	width int
	// clear wipes the screen before each key; only on a real terminal.
	clear bool
}

// New opens a console on stdin/stdout. Cancelling ctx unblocks a pending
// read, which then fails with io.EOF.
func New(ctx context.Context, opts Options) (*Console, error) {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	cs := readline.NewCancelableStdin(opts.Stdin)
	go func() {
		<-ctx.Done()
		cs.Close() // nolint:errcheck
	}()

	if opts.HistoryFile != "" {
		if err := os.MkdirAll(filepath.Dir(opts.HistoryFile), 0755); err != nil {
			opts.HistoryFile = ""
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Stdin:             cs,
		Stdout:            opts.Stdout,
		HistoryFile:       opts.HistoryFile,
		Prompt:            "> ",
		EOFPrompt:         session.CmdQuit,
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening terminal: %w", err)
	}

	c := NewWithReader(rl, opts.Stdout)
	c.width = Width(RuleWidth)
	c.clear = isatty.IsTerminal(os.Stdout.Fd())
	return c, nil
}

// NewWithReader builds a console over an existing line reader.
func NewWithReader(rl LineReader, out io.Writer) *Console {
	return &Console{rl: rl, out: out, width: RuleWidth}
}

// Close releases the line reader.
func (c *Console) Close() error {
	return c.rl.Close()
}

// Ask prints prompt and returns the trimmed answer. Ctrl-C on an empty
// line yields session.ErrAborted; on a partial line it starts over.
func (c *Console) Ask(prompt string) (string, error) {
	c.rl.SetPrompt(prompt)
	for {
		line, err := c.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				return "", session.ErrAborted
			}
			continue
		}
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}
}

// Confirm asks a yes/no question. Only "y" and "yes" count as yes.
func (c *Console) Confirm(question string) (bool, error) {
	answer, err := c.Ask(question + " (y/n): ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Print writes a line as is.
func (c *Console) Print(text string) {
	fmt.Fprintln(c.out, text)
}

// Box writes text framed in col.
func (c *Console) Box(text string, col *color.Color) {
	fmt.Fprintln(c.out, col.Sprint(Box(text, BoxMinWidth)))
}

// Header clears the screen on a terminal and prints the banner.
func (c *Console) Header() {
	if c.clear {
		fmt.Fprint(c.out, "\033[H\033[2J")
	}
	c.Box("🌐 TRANSBUILDER ✨\n"+i18n.T("Interactive JSON translation tool"), keyColor)
}

// Message implements session.Terminal.
func (c *Console) Message(sev session.Severity, text string) {
	switch sev {
	case session.SeveritySuccess:
		successColor.Fprintln(c.out, "✅ "+text)
	case session.SeverityWarning:
		warnColor.Fprintln(c.out, "⚠️  "+text)
	case session.SeverityError:
		errorColor.Fprintln(c.out, "❌ "+text)
	case session.SeverityNotice:
		c.Box(text, infoColor)
	default:
		infoColor.Fprintln(c.out, "ℹ️  "+text)
	}
}

// Progress implements session.Terminal. It starts a fresh screen for the
// key at position current.
func (c *Console) Progress(current, total int) {
	c.Header()
	fmt.Fprintln(c.out, strings.Repeat("═", min(c.width, RuleWidth)))
	fmt.Fprintln(c.out, successColor.Sprint(ProgressBar(current, total, min(c.width, RuleWidth))))
}

// ReadLine implements session.Terminal.
func (c *Console) ReadLine(p session.Prompt) (string, error) {
	if p.Kind == session.PromptContinue {
		return c.Ask(dimColor.Sprint(i18n.T("Press Enter to continue...")) + " ")
	}

	hint := strings.Repeat("─", 60)
	fmt.Fprintf(c.out, "🗝️  %s %s\n", i18n.T("Full Key:"), keyColor.Sprint(p.Key))
	fmt.Fprintf(c.out, "%s: %s\n", successColor.Sprint(p.SourceLang), brightColor.Sprint(p.SourceText))
	fmt.Fprintf(c.out, "%s:\n", warnColor.Sprint(p.TargetLang))
	dimColor.Fprintln(c.out, hint)
	dimColor.Fprintln(c.out, "💡 "+i18n.T("Commands: Enter=skip | :q=quit | :s=save | :stats=progress"))
	dimColor.Fprintln(c.out, hint)

	return c.Ask(keyColor.Sprint("➤") + " ")
}
