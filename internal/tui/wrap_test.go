package tui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"fits", "drink warm water", 20, []string{"drink warm water"}},
		{"breaks at spaces", "drink warm water", 10, []string{"drink warm", "water"}},
		{"keeps newlines", "one\ntwo", 10, []string{"one", "two"}},
		{"splits long words", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"empty", "", 10, []string{""}},
		{"no width", "a b", 0, []string{"a b"}},
		{"wide runes", "中文中文 ok", 4, []string{"中文", "中文", "ok"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapText(tt.text, tt.width)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Fatalf("wrapText(%q, %d) = %q want %q", tt.text, tt.width, got, tt.want)
			}
			if tt.width <= 0 {
				return
			}
			for _, line := range got {
				if w := runewidth.StringWidth(line); w > tt.width {
					t.Fatalf("line %q is %d cells wide, limit %d", line, w, tt.width)
				}
			}
		})
	}
}

func TestFitLines(t *testing.T) {
	out := fitLines("a\nb\nc", 3, 2)
	if out != "a  \nb  " {
		t.Fatalf("unexpected fitLines output %q", out)
	}
	out = fitLines("a", 2, 3)
	if out != "a \n  \n  " {
		t.Fatalf("unexpected padding %q", out)
	}
}

func TestTruncateLine(t *testing.T) {
	if got := truncateLine("abcdefgh", 6); got != "abc..." {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := truncateLine("abc", 6); got != "abc" {
		t.Fatalf("short line changed: %q", got)
	}
}
