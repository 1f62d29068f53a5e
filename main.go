// transbuilder: interactive builder for JSON translation files.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jacktools/transbuilder/config"
	"github.com/jacktools/transbuilder/i18n"
	"github.com/jacktools/transbuilder/langmeta"
	"github.com/jacktools/transbuilder/lockfile"
	"github.com/jacktools/transbuilder/session"
	"github.com/jacktools/transbuilder/store"
	"github.com/jacktools/transbuilder/terminal"
	"github.com/jacktools/transbuilder/wizard"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	colorRed    = color.New(color.FgRed)
	colorGreen  = color.New(color.FgGreen)
	colorYellow = color.New(color.FgYellow, color.Bold)
	colorBlue   = color.New(color.FgBlue)
)

// Set the global default, overridden by --no-color and NO_COLOR.
func init() {
	color.NoColor = !isatty.IsTerminal(os.Stdout.Fd()) &&
		!isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue.Sprint("[INFO]")+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen.Sprint("[OK]")+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow.Sprint("[WARN]")+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed.Sprint("[ERROR]")+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global state
// ---------------------------------------------------------------------------

var (
	cfgFile  string
	settings = &config.Settings{AutosaveInterval: session.DefaultAutosaveInterval}
	logger   = zap.NewNop().Sugar()
)

// setup loads settings for cmd and applies the ambient ones.
func setup(cmd *cobra.Command) error {
	s, err := config.Load(viper.New(), cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	settings = s

	if s.NoColor {
		color.NoColor = true
	}
	i18n.Init(s.UILang)

	if s.Verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		logger = l.Sugar()
	}
	logger.Debugw("ui language", "lang", i18n.Language())
	if s.ConfigFile != "" {
		logger.Debugw("using config file", "path", s.ConfigFile)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Root command (interactive translation)
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	var target string

	root := &cobra.Command{
		Use:   "transbuilder [SOURCE]",
		Short: "Interactive builder for JSON translation files",
		Long: `transbuilder walks you through the keys of a source-language JSON file
that are missing or empty in a target-language file, one at a time, and
writes your answers back with the original nesting.

Pass the source file as an argument (or pick it interactively, also from a
directory listing) and the target language with --target.

Commands at the answer prompt:
  Enter     skip the key
  :s        save now
  :stats    show progress
  :q        save and quit

Progress is saved automatically every --autosave-interval answers.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd.Context(), args, target)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Settings file (default ./.transbuilder.yaml, then ~/.transbuilder.yaml)")
	pf.Bool("no-color", false, "Disable colored output")
	pf.BoolP("verbose", "v", false, "Log debug information")
	pf.String("ui-lang", "", "Language of transbuilder's own messages (default from LANGUAGE/LC_ALL/LANG)")

	f := root.Flags()
	f.StringVarP(&target, "target", "t", "", "Target language code (e.g. fr, de, pt-br)")
	f.Int("autosave-interval", session.DefaultAutosaveInterval, "Save automatically after this many answers")
	f.BoolP("yes", "y", false, "Start translating without confirmation")
	f.Bool("track", false, "Record source checksums in "+lockfile.LockFileName+" to detect outdated translations")
	f.String("history-file", "", "Input history file (default $XDG_DATA_HOME/transbuilder/history)")

	root.AddCommand(
		newStatusCmd(),
		newLanguagesCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// userCancelled reports whether err means the user left a prompt.
func userCancelled(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, io.EOF) || errors.Is(err, session.ErrAborted)
}

func runTranslate(ctx context.Context, args []string, target string) error {
	st := store.New(nil)

	con, err := terminal.New(ctx, terminal.Options{HistoryFile: settings.HistoryFile})
	if err != nil {
		return err
	}
	defer con.Close() // nolint:errcheck

	wiz := wizard.New(con, st, logger)
	con.Header()
	con.Print(i18n.T("Welcome to transbuilder, the interactive JSON translation tool!"))

	// Step 1: source file
	var src wizard.Source
	if len(args) == 1 {
		if src, err = wiz.OpenSource(args[0]); err != nil {
			return fmt.Errorf("loading source: %w", err)
		}
	} else if src, err = wiz.SelectSource(); err != nil {
		if userCancelled(ctx, err) {
			logWarning("%s", i18n.T("Cancelled."))
			return nil
		}
		return err
	}

	// Step 2: available languages, target language
	wiz.ShowAvailable(src)
	var lang langmeta.Meta
	if target != "" {
		if lang, err = wizard.TargetLanguage(target, src.File.Code); err != nil {
			return err
		}
	} else if lang, err = wiz.SelectLanguage(src.File.Code); err != nil {
		if userCancelled(ctx, err) {
			logWarning("%s", i18n.T("Cancelled."))
			return nil
		}
		return err
	}

	// Step 3: target file and the work ahead
	tgt := wiz.OpenTarget(src.Dir(), lang)
	pending := store.PendingKeys(src.Flat, tgt.Flat)
	ok, err := wiz.ConfirmStart(src.Flat, tgt.Flat, len(pending), settings.Yes)
	if err != nil {
		if userCancelled(ctx, err) {
			logWarning("%s", i18n.T("Cancelled."))
			return nil
		}
		return err
	}
	if !ok {
		return nil
	}

	// Step 4: the session
	saver, err := newTargetSaver(st, tgt, src.Flat, settings.TrackChanges)
	if err != nil {
		return err
	}
	opts := []session.Option{
		session.WithAutosaveInterval(settings.AutosaveInterval),
		session.WithLogger(logger),
		session.WithLanguages(src.File.Lang.Label(), lang.Label()),
	}
	if saver.lock != nil {
		opts = append(opts, session.WithAnswerHook(saver.record))
	}

	res, err := session.New(src.Flat, tgt.Flat, con, saver, opts...).Run(ctx)
	if err != nil {
		return fmt.Errorf("translation session: %w", err)
	}
	logger.Debugw("session finished", "result", res)

	con.Box(wizard.Summary(res, tgt.Path, lang), colorGreen)
	con.Print("\n✨ " + i18n.T("Thank you for using transbuilder!") + " ✨")
	return nil
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("transbuilder version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}

	return cmd
}
