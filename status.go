package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/jacktools/transbuilder/compare"
	"github.com/jacktools/transbuilder/config"
	"github.com/jacktools/transbuilder/i18n"
	"github.com/jacktools/transbuilder/langmeta"
	"github.com/jacktools/transbuilder/lockfile"
	"github.com/jacktools/transbuilder/store"
)

// ---------------------------------------------------------------------------
// status (read-only: translation stats per language file)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	var sourceCode string

	cmd := &cobra.Command{
		Use:   "status [DIR]",
		Short: "Show translation statistics for a directory of language files",
		Long: `Compare every language file in DIR (default: current directory) with the
source language file and show translated, untranslated and obsolete keys.

If a ` + lockfile.LockFileName + ` is present, translations whose source text changed
since they were entered are listed as outdated. Does not modify any files.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runStatus(os.Stderr, afero.NewOsFs(), dir, sourceCode)
		},
	}

	cmd.Flags().StringVarP(&sourceCode, "source", "s", "en", "Source language code")

	return cmd
}

// statusRow lays out one language row: cell, translated, untranslated,
// obsolete, bar.
const statusRow = "%s %-12v %-10v %-10v %s\n"

func runStatus(w io.Writer, fsys afero.Fs, dir, sourceCode string) error {
	files, err := config.FindLanguageFiles(fsys, dir)
	if err != nil {
		return err
	}
	sourceCode = strings.ToLower(sourceCode)
	srcFile, ok := lo.Find(files, func(f config.LanguageFile) bool { return f.Code == sourceCode })
	if !ok {
		return fmt.Errorf("no %s.json in %s", sourceCode, dir)
	}

	st := store.New(fsys)
	source, err := st.Load(srcFile.Path)
	if err != nil {
		return fmt.Errorf("loading source: %w", err)
	}

	lock, err := lockfile.Load(fsys, dir)
	if err != nil {
		logWarning("%v", err)
		lock = nil
	}

	targets := lo.Filter(files, func(f config.LanguageFile, _ int) bool { return f.Code != sourceCode })
	if len(targets) == 0 {
		logInfo("%s", i18n.T("No translation files besides the source."))
		return nil
	}

	codes := lo.Map(targets, func(f config.LanguageFile, _ int) string { return f.Code })
	width := langColumnWidth(codes)

	fmt.Fprintf(w, "%s\n", colorBlue.Sprint(i18n.T("Translation Statistics")))
	fmt.Fprintln(w, strings.Repeat("─", 60))
	fmt.Fprintf(w, "  %s: %s (%d keys)\n\n", i18n.T("Source"), srcFile.Label(), source.Len())
	fmt.Fprintf(w, "   %-*s %-12s %-10s %-10s %s\n", width, "Lang", "Translated", "Untrans.", "Obsolete", "Progress")
	fmt.Fprintln(w, strings.Repeat("─", 60))

	type langIssue struct {
		code     string
		report   compare.Report
		outdated []string
	}
	var issues []langIssue

	for _, f := range targets {
		target, err := st.Load(f.Path)
		if err != nil {
			fmt.Fprintf(w, statusRow, langCell(f.Code, width), "invalid", "-", "-", "-")
			continue
		}

		r := compare.Compare(source, target)
		fmt.Fprintf(w, statusRow, langCell(f.Code, width), len(r.Translated), len(r.Pending), len(r.Obsolete), progressBar(r.Percent(), 20))

		var outdated []string
		if lock != nil {
			outdated = lock.Outdated(lockfile.TargetKey(f.Path), source)
		}
		if !r.Complete() || len(r.Obsolete) > 0 || len(outdated) > 0 {
			issues = append(issues, langIssue{f.Code, r, outdated})
		}
	}

	fmt.Fprintln(w, strings.Repeat("─", 60))
	fmt.Fprintf(w, "Total keys: %d\n", source.Len())
	if lock != nil {
		if targets, _ := lock.Stats(); targets > 0 {
			fmt.Fprintf(w, "%s: %s\n", filepath.Base(lock.Path()), lock.Summary())
		}
	}

	if len(issues) == 0 {
		fmt.Fprintln(w)
		logSuccess("%s", i18n.T("All translations complete."))
		return nil
	}

	fmt.Fprintln(w)
	logInfo("%s", i18n.T("Translation gaps:"))
	for _, issue := range issues {
		parts := []string{}
		if n := len(issue.report.Missing); n > 0 {
			parts = append(parts, fmt.Sprintf("%d missing", n))
		}
		if n := len(issue.report.Blank); n > 0 {
			parts = append(parts, fmt.Sprintf("%d empty", n))
		}
		if n := len(issue.report.Obsolete); n > 0 {
			parts = append(parts, fmt.Sprintf("%d obsolete", n))
		}
		if n := len(issue.outdated); n > 0 {
			parts = append(parts, fmt.Sprintf("%d outdated", n))
		}
		fmt.Fprintf(w, "  %s: %s\n", issue.code, strings.Join(parts, ", "))
		for _, key := range issue.outdated {
			fmt.Fprintf(w, "    %s %s\n", colorYellow.Sprint("outdated:"), key)
		}
	}
	fmt.Fprintln(w)

	return nil
}

// progressBar renders a colored bar for percent (clamped to 0..100)
// followed by the percentage.
func progressBar(percent, width int) string {
	percent = max(0, min(percent, 100))
	filled := percent * width / 100

	c := colorRed
	switch {
	case percent >= 100:
		c = colorGreen
	case percent >= 50:
		c = colorYellow
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return c.Sprint(bar) + fmt.Sprintf(" %3d%%", percent)
}

// langColumnWidth returns the width of the language code column.
func langColumnWidth(codes []string) int {
	width := len("Lang")
	for _, c := range codes {
		width = max(width, len(c))
	}
	return width
}

// langCell renders "flag code" padded to width.
func langCell(code string, width int) string {
	return fmt.Sprintf("%s %-*s", langmeta.Resolve(code).Flag, width, code)
}

// ---------------------------------------------------------------------------
// languages (list the language registry)
// ---------------------------------------------------------------------------

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List known language codes",
		Long: `List the language codes transbuilder knows names and flags for.
Any other code can still be used as a target; it is shown as "Unknown".`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			runLanguages(os.Stdout)
		},
	}
}

func runLanguages(w io.Writer) {
	all := langmeta.All()
	codes := lo.Map(all, func(m langmeta.Meta, _ int) string { return m.Code })
	width := langColumnWidth(codes)

	bold := color.New(color.Bold)
	fmt.Fprintf(w, "   %-*s %-22s %-20s %s\n", width, "Code", "Name", "Native", "Family")
	for _, m := range all {
		fmt.Fprintf(w, "%s %-22s %-20s %s\n", langCell(m.Code, width), bold.Sprint(m.Name), m.Native, m.Family)
	}
}
