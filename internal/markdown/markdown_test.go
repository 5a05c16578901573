package markdown

import (
	"strings"
	"testing"

	"github.com/dgnsrekt/fieldspeech/internal/render"
	"github.com/dgnsrekt/fieldspeech/pkg/speech"
)

func mustParse(t *testing.T, source string) *Document {
	t.Helper()
	doc, err := Parse("test.md", []byte(source))
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	return doc
}

// describe renders events compactly: +role, -, "text", {format}.
func describe(events []speech.Event) string {
	parts := make([]string, 0, len(events))
	for _, ev := range events {
		switch ev.Kind {
		case speech.EventEnterField:
			parts = append(parts, "+"+string(ev.Field.Role))
		case speech.EventExitField:
			parts = append(parts, "-")
		case speech.EventText:
			parts = append(parts, `"`+strings.ReplaceAll(ev.Text, "\n", `\n`)+`"`)
		case speech.EventFormatChange:
			parts = append(parts, "{format}")
		}
	}
	return strings.Join(parts, " ")
}

func TestDocumentText(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected string
	}{
		{"paragraph", "Hello world.", "Hello world.\n"},
		{"soft break", "one\ntwo", "one\ntwo\n"},
		{"heading and paragraph", "# Title\n\nBody", "Title\nBody\n"},
		{"list", "- a\n- b\n", "a\nb\n"},
		{"code block", "```go\nx := 1\n  y\n```\n", "x := 1\n  y\n"},
		{"separator", "a\n\n---\n\nb", "a\n\nb\n"},
		{"table", "| a | b |\n|---|---|\n| 1 | 2 |\n", "a b\n1 2\n"},
		{"autolink", "<https://example.com>", "https://example.com\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustParse(t, tt.source).Text(); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestPositions(t *testing.T) {
	doc := mustParse(t, "# Title\n\nHello big world\n\n- a\n- b\n")

	tests := []struct {
		unit     speech.Unit
		expected []string
	}{
		{speech.UnitLine, []string{"Title\n", "Hello big world\n", "a\n", "b\n"}},
		{speech.UnitParagraph, []string{"Title\n", "Hello big world\n", "a\n", "b\n"}},
		{speech.UnitWord, []string{"Title\n", "Hello ", "big ", "world\n", "a\n", "b\n"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.unit), func(t *testing.T) {
			positions := doc.Positions(tt.unit)
			var got []string
			for _, p := range positions {
				got = append(got, p.Text())
			}
			if strings.Join(got, "|") != strings.Join(tt.expected, "|") {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}

	t.Run("characters", func(t *testing.T) {
		if got := len(doc.Positions(speech.UnitCharacter)); got != len([]rune(doc.Text())) {
			t.Errorf("Expected one position per character, got %d", got)
		}
	})

	t.Run("whole document", func(t *testing.T) {
		positions := doc.Positions(speech.UnitNone)
		if len(positions) != 1 || positions[0].Text() != doc.Text() {
			t.Errorf("Expected a single position over the document, got %d", len(positions))
		}
	})
}

func TestPositionEvents(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		unit     speech.Unit
		index    int
		expected string
	}{
		{
			name:     "first list item",
			source:   "- one\n- two\n",
			unit:     speech.UnitLine,
			index:    0,
			expected: `+document +list +listitem "one" "\n" - - -`,
		},
		{
			name:     "second list item",
			source:   "- one\n- two\n",
			unit:     speech.UnitLine,
			index:    1,
			expected: `+document +list +listitem "two" "\n" - - -`,
		},
		{
			name:     "emphasis inside a line",
			source:   "a *b* c",
			unit:     speech.UnitLine,
			index:    0,
			expected: `+document +paragraph "a " {format} "b" {format} " c" "\n" - -`,
		},
		{
			name:     "word inside emphasis",
			source:   "a *bc* d",
			unit:     speech.UnitWord,
			index:    1,
			expected: `+document +paragraph {format} "bc" {format} " " - -`,
		},
		{
			name:     "link in the middle",
			source:   "see [here](https://x.org) now",
			unit:     speech.UnitLine,
			index:    0,
			expected: `+document +paragraph "see " +link "here" - " now" "\n" - -`,
		},
		{
			name:     "image has no text",
			source:   "![logo](l.png) text",
			unit:     speech.UnitLine,
			index:    0,
			expected: `+document +paragraph +graphic - " text" "\n" - -`,
		},
		{
			name:     "table cell",
			source:   "| a | b |\n|---|---|\n| 1 | 2 |\n",
			unit:     speech.UnitCell,
			index:    3,
			expected: `+document +table +row +cell "2" - - - -`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, tt.source)
			positions := doc.Positions(tt.unit)
			if tt.index >= len(positions) {
				t.Fatalf("Expected at least %d positions, got %d", tt.index+1, len(positions))
			}
			events, err := positions[tt.index].Events(speech.DefaultFormatConfig())
			if err != nil {
				t.Fatalf("Events failed: %v", err)
			}
			if got := describe(events); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestFieldAttributes(t *testing.T) {
	doc := mustParse(t, "1. a\n2. b\n3. c\n\n## Sub {lang=fr}\n\n`$x^2$` and `code`\n")

	fields := map[speech.Role]*speech.Field{}
	var formats []*speech.Field
	for _, it := range doc.items {
		switch it.kind {
		case speech.EventEnterField:
			fields[it.field.Role] = it.field
		case speech.EventFormatChange:
			formats = append(formats, it.field)
		}
	}

	if list := fields[speech.RoleList]; list.Attr(render.AttrItems) != "3" || list.Attr(render.AttrOrdered) != "true" {
		t.Errorf("Unexpected list attributes %v", list.Attrs)
	}
	if h := fields[speech.RoleHeading]; h.Attr(render.AttrLevel) != "2" {
		t.Errorf("Unexpected heading attributes %v", h.Attrs)
	}
	if m := fields[speech.RoleMath]; m == nil || m.Attr(render.AttrTeX) != "x^2" {
		t.Errorf("Expected a math field, got %v", m)
	}
	if len(formats) == 0 || formats[0].Language != "fr" {
		t.Errorf("Expected the heading language first, got %v", formats)
	}
	sawCode := false
	for _, f := range formats {
		if f.Attr(render.AttrInlineCode) == "true" {
			sawCode = true
		}
	}
	if !sawCode {
		t.Error("Expected an inline code format change")
	}
}

func TestUniqueIDs(t *testing.T) {
	source := []byte("- a\n- b\n")
	first, _ := Parse("doc", source)
	second, _ := Parse("doc", source)
	other, _ := Parse("other", source)

	ids := func(d *Document) []string {
		var out []string
		for _, it := range d.items {
			if it.kind == speech.EventEnterField {
				out = append(out, it.field.UniqueID)
			}
		}
		return out
	}

	a, b, c := ids(first), ids(second), ids(other)
	if strings.Join(a, ",") != strings.Join(b, ",") {
		t.Error("Expected IDs to be stable across parses")
	}
	if a[0] == c[0] {
		t.Error("Expected IDs to depend on the document")
	}
	seen := map[string]bool{}
	for _, id := range a {
		if seen[id] {
			t.Errorf("Duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestMoves(t *testing.T) {
	doc := mustParse(t, "x")
	if _, known := doc.LastMoveWasFocus(); known {
		t.Error("Expected no recorded move")
	}
	doc.RecordMove(true)
	if focus, known := doc.LastMoveWasFocus(); !known || !focus {
		t.Error("Expected a recorded focus move")
	}
	doc.SetPassThrough(true)
	if !doc.PassThrough() {
		t.Error("Expected pass-through mode")
	}
}

func TestStartOfNodeMarker(t *testing.T) {
	doc := mustParse(t, "para")
	events, err := doc.Positions(speech.UnitLine)[0].Events(speech.DefaultFormatConfig())
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}
	if events[1].Field.Attr(speech.AttrStartOfNode) != "1" {
		t.Error("Expected the paragraph to be marked as starting at the range")
	}
	if doc.items[1].field.Attr(speech.AttrStartOfNode) != "" {
		t.Error("Expected the document's own field to stay unmarked")
	}
}
