package render

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/dgnsrekt/fieldspeech/pkg/speech"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/unicode/norm"
)

// Characters that render as nothing.
const (
	zeroWidthSpace    = '\u200b'
	byteOrderMark     = '\ufeff'
	objectReplacement = '\ufffc'
)

const (
	indentToneBaseHz   = 220
	indentToneStepHz   = 20
	indentToneDuration = 40
)

// IsBlank reports whether text is empty, white space or invisible.
func (r *Renderer) IsBlank(text string) bool {
	for _, c := range text {
		if unicode.IsSpace(c) || unicode.IsControl(c) {
			continue
		}
		switch c {
		case zeroWidthSpace, byteOrderMark, objectReplacement:
			continue
		}
		return false
	}
	return true
}

// SplitIndentation splits the leading white space, other than line
// endings, from text.
func (r *Renderer) SplitIndentation(text string) (string, string) {
	rest := strings.TrimLeftFunc(text, isIndentation)
	return text[:len(text)-len(rest)], rest
}

func isIndentation(c rune) bool {
	switch c {
	case '\r', '\n', '\f', '\v':
		return false
	}
	return unicode.IsSpace(c)
}

// Normalize returns the NFC form of text.
func (r *Renderer) Normalize(text string) string {
	return norm.NFC.String(text)
}

// IndentationSpeech describes indentation as runs of spaces and tabs,
// a tone whose pitch rises with the indentation width, or both.
func (r *Renderer) IndentationSpeech(indentation string, cfg speech.FormatConfig) speech.Sequence {
	var seq speech.Sequence
	switch cfg.ReportLineIndentation {
	case speech.IndentationSpeech, speech.IndentationSpeechAndTones:
		seq = append(seq, speech.TextToken(describeIndentation(indentation)))
	}
	switch cfg.ReportLineIndentation {
	case speech.IndentationTones, speech.IndentationSpeechAndTones:
		seq = append(seq, speech.CommandToken("beep", Beep{
			Hz:         indentToneBaseHz + indentToneStepHz*IndentationWidth(indentation),
			DurationMs: indentToneDuration,
		}))
	}
	return seq
}

// Beep is the payload of an indentation tone command.
type Beep struct {
	Hz         int
	DurationMs int
}

// IndentationWidth returns the width of indentation in columns, counting
// a tab as four columns.
func IndentationWidth(indentation string) int {
	width := 0
	for _, c := range indentation {
		if c == '\t' {
			width += 4
			continue
		}
		width += max(runewidth.RuneWidth(c), 1)
	}
	return width
}

func describeIndentation(indentation string) string {
	if indentation == "" {
		return "no indent"
	}

	var parts []string
	runes := []rune(indentation)
	for i := 0; i < len(runes); {
		j := i
		for j < len(runes) && runes[j] == runes[i] {
			j++
		}
		parts = append(parts, countRun(runes[i], j-i))
		i = j
	}
	return strings.Join(parts, " ")
}

func countRun(c rune, n int) string {
	switch c {
	case '\t':
		return strconv.Itoa(n) + " " + plural(strconv.Itoa(n), "tab")
	case ' ':
		return strconv.Itoa(n) + " " + plural(strconv.Itoa(n), "space")
	}
	w := n * max(runewidth.RuneWidth(c), 1)
	return strconv.Itoa(w) + " " + plural(strconv.Itoa(w), "space")
}
