package terminal

import (
	"os"
	"regexp"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// BoxMinWidth is the minimum inner width of a box.
const BoxMinWidth = 64

// RuleWidth is the width of the horizontal rule above each key.
const RuleWidth = 80

const barTemplate pb.ProgressBarTemplate = `{{bar . "[" "█" "█" "░" "]"}} {{percent . "%.0f%%"}} ({{counters .}})`

var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// VisibleWidth returns the number of terminal cells s occupies, ignoring
// ANSI color sequences and counting wide runes (CJK, emoji) as two.
func VisibleWidth(s string) int {
	return runewidth.StringWidth(ansiRE.ReplaceAllString(s, ""))
}

// Box frames text with box-drawing characters. Lines are padded by two
// spaces on each side; the box is at least minWidth cells wide inside.
func Box(text string, minWidth int) string {
	lines := strings.Split(strings.Trim(text, "\n"), "\n")

	widest := 0
	for _, l := range lines {
		if w := VisibleWidth(l); w > widest {
			widest = w
		}
	}
	inner := max(widest+4, minWidth)

	var b strings.Builder
	b.WriteString("┌" + strings.Repeat("─", inner) + "┐\n")
	for _, l := range lines {
		pad := inner - VisibleWidth(l) - 4
		b.WriteString("│  " + l + strings.Repeat(" ", max(pad, 0)) + "  │\n")
	}
	b.WriteString("└" + strings.Repeat("─", inner) + "┘")
	return b.String()
}

// ProgressBar renders "[████░░░░] 50% (1 / 2)" in width cells.
func ProgressBar(current, total, width int) string {
	if total < 1 {
		return ""
	}
	bar := barTemplate.New(total)
	bar.SetWidth(width)
	bar.SetCurrent(int64(current))
	return bar.String()
}

// Width returns the width of the terminal on stdout, or fallback when
// stdout is not a terminal.
func Width(fallback int) int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}
