package terminal

import (
	"strings"
	"testing"
)

func TestVisibleWidth(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{in: "abc", want: 3},
		{in: "\x1b[32mabc\x1b[0m", want: 3},
		{in: "日本語", want: 6},
		{in: "", want: 0},
	}

	for _, tc := range cases {
		if got := VisibleWidth(tc.in); got != tc.want {
			t.Fatalf("VisibleWidth(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestBox(t *testing.T) {
	got := Box("ab\nc", 6)
	want := strings.Join([]string{
		"┌──────┐",
		"│  ab  │",
		"│  c   │",
		"└──────┘",
	}, "\n")
	if got != want {
		t.Fatalf("Box() =\n%s\nwant\n%s", got, want)
	}
}

func TestBoxUsesMinWidthAndTrimsBlankEdges(t *testing.T) {
	got := Box("\nhi\n", 10)
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("Box() has %d lines, want 3:\n%s", len(lines), got)
	}
	for _, l := range lines {
		if w := VisibleWidth(l); w != 12 {
			t.Fatalf("line %q width = %d, want 12", l, w)
		}
	}
}

func TestProgressBar(t *testing.T) {
	got := ProgressBar(1, 4, 40)
	if !strings.Contains(got, "25%") || !strings.Contains(got, "(1 / 4)") {
		t.Fatalf("ProgressBar(1, 4) = %q", got)
	}
	if !strings.HasPrefix(got, "[") {
		t.Fatalf("ProgressBar(1, 4) = %q, want leading bracket", got)
	}
	if ProgressBar(0, 0, 40) != "" {
		t.Fatal("ProgressBar with zero total should be empty")
	}
}
