package surface

import (
	"math"
	"strings"

	"golang.org/x/text/width"
)

// Measurer reports the advance width of a string in the current font.
type Measurer interface {
	MeasureText(s string) float64
}

// defaultSpaceRate replaces a full-width space when either width measures 0.
const defaultSpaceRate = 4

// LayoutText prepares s for drawing: runs of full-width spaces become runs
// of ordinary spaces of about the same width, and the text is split into
// lines at line breaks and wherever the next character would overflow
// maxWidth. A non-positive maxWidth disables wrapping.
func LayoutText(s string, maxWidth float64, m Measurer) []string {
	if strings.IndexFunc(s, isIdeographicSpace) >= 0 {
		s = expandIdeographicSpaces(s, spaceRate(m))
	}
	return foldLines(s, maxWidth, m)
}

func isIdeographicSpace(r rune) bool {
	if r == '\u3000' {
		return true
	}
	p := width.LookupRune(r)
	return p.Kind() == width.EastAsianFullwidth && p.Narrow() == ' '
}

func spaceRate(m Measurer) float64 {
	space := m.MeasureText(" ")
	wide := m.MeasureText("\u3000")
	if space == 0 || wide == 0 {
		return defaultSpaceRate
	}
	return wide / space
}

func expandIdeographicSpaces(s string, rate float64) string {
	var b strings.Builder
	b.Grow(len(s))
	run := 0
	flush := func() {
		if run > 0 {
			b.WriteString(strings.Repeat(" ", int(math.Round(float64(run)*rate))))
			run = 0
		}
	}
	for _, r := range s {
		if isIdeographicSpace(r) {
			run++
			continue
		}
		flush()
		b.WriteRune(r)
	}
	flush()
	return b.String()
}

func isBreak(r rune) bool { return r == '\n' || r == '\r' }

func foldLines(s string, maxWidth float64, m Measurer) []string {
	runes := []rune(s)
	var lines []string
	var line []rune
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if isBreak(r) {
			lines = append(lines, string(line))
			line = line[:0]
			if r == '\r' && i+1 < len(runes) && runes[i+1] == '\n' {
				i++
			}
			continue
		}
		line = append(line, r)
		if maxWidth <= 0 || i+1 >= len(runes) || isBreak(runes[i+1]) {
			continue
		}
		if m.MeasureText(string(line)+string(runes[i+1])) > maxWidth {
			lines = append(lines, string(line))
			line = line[:0]
		}
	}
	if len(line) > 0 {
		lines = append(lines, string(line))
	}
	return lines
}
