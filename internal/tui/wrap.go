package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

type word struct {
	s     string
	width int
}

func splitWords(text string) []word {
	fields := strings.Fields(text)
	words := make([]word, 0, len(fields))
	for _, f := range fields {
		words = append(words, word{s: f, width: runewidth.StringWidth(f)})
	}
	return words
}

// wrapText breaks text into lines no wider than width display cells. Words
// wider than a line are split across lines. Existing newlines are kept.
func wrapText(text string, width int) []string {
	if width <= 0 {
		return strings.Split(text, "\n")
	}
	var out []string
	for _, paragraph := range strings.Split(text, "\n") {
		out = append(out, wrapParagraph(splitWords(paragraph), width)...)
	}
	return out
}

func wrapParagraph(words []word, width int) []string {
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	var line strings.Builder
	lineWidth := 0
	flush := func() {
		lines = append(lines, line.String())
		line.Reset()
		lineWidth = 0
	}
	for _, w := range words {
		for w.width > width {
			if lineWidth > 0 {
				flush()
			}
			head := runewidth.Truncate(w.s, width, "")
			if head == "" {
				head = string([]rune(w.s)[:1])
			}
			lines = append(lines, head)
			w.s = strings.TrimPrefix(w.s, head)
			w.width = runewidth.StringWidth(w.s)
		}
		if w.width == 0 {
			continue
		}
		sep := 0
		if lineWidth > 0 {
			sep = 1
		}
		if lineWidth+sep+w.width > width {
			flush()
			sep = 0
		}
		if sep == 1 {
			line.WriteByte(' ')
		}
		line.WriteString(w.s)
		lineWidth += sep + w.width
	}
	if lineWidth > 0 {
		flush()
	}
	return lines
}

func wrapJoin(text string, width int) string {
	return strings.Join(wrapText(text, width), "\n")
}

func padLine(line string, width int) string {
	if w := lipgloss.Width(line); w < width {
		return line + strings.Repeat(" ", width-w)
	}
	return line
}

// fitLines pads or cuts s to exactly height lines of width cells.
func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
