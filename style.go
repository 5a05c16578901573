package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/fieldspeech/pkg/speech"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

var (
	keyword   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Render
	paragraph = lipgloss.NewStyle().Width(78).Padding(0, 0, 0, 2).Render
)

// outputStyles styles printed sequences. Without a terminal every style is
// plain.
type outputStyles struct {
	header  lipgloss.Style
	label   lipgloss.Style
	text    lipgloss.Style
	control lipgloss.Style
	sep     lipgloss.Style
	stats   lipgloss.Style
}

func newOutputStyles(terminal bool) outputStyles {
	if !terminal {
		plain := lipgloss.NewStyle()
		return outputStyles{plain, plain, plain, plain, plain, plain}
	}
	return outputStyles{
		header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EE6FF8")),
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		text:    lipgloss.NewStyle(),
		control: lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")),
		sep:     lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		stats:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// sequence renders seq after label, wrapped at width with continuation
// lines indented under the first token.
func (s outputStyles) sequence(label string, seq speech.Sequence, width int) string {
	prefix := len(label) + 1

	wrapped := seq.String()
	if width > prefix+10 {
		wrapped = wordwrap.String(wrapped, width-prefix)
	}

	lines := strings.Split(wrapped, "\n")
	for i, line := range lines {
		lines[i] = s.styleLine(line)
	}
	body := strings.Join(lines, "\n")
	if len(lines) > 1 {
		first, rest, _ := strings.Cut(body, "\n")
		body = first + "\n" + strings.TrimRight(indent.String(rest, uint(prefix)), "\n") //nolint:gosec
	}
	return s.label.Render(label) + " " + body
}

// styleLine colours control tokens and separators in an already wrapped
// line.
func (s outputStyles) styleLine(line string) string {
	fields := strings.Split(line, " | ")
	for i, f := range fields {
		if strings.HasPrefix(f, "[") && strings.HasSuffix(f, "]") {
			fields[i] = s.control.Render(f)
		} else {
			fields[i] = s.text.Render(f)
		}
	}
	return strings.Join(fields, s.sep.Render(" | "))
}
