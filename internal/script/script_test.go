package script

import (
	"strings"
	"testing"

	"github.com/dgnsrekt/fieldspeech/pkg/speech"
)

func describe(t *testing.T, q *Query) string {
	t.Helper()
	events, err := q.Events(speech.DefaultFormatConfig())
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}
	parts := make([]string, 0, len(events))
	for _, ev := range events {
		switch ev.Kind {
		case speech.EventEnterField:
			parts = append(parts, "+"+string(ev.Field.Role))
		case speech.EventExitField:
			parts = append(parts, "-")
		case speech.EventText:
			parts = append(parts, `"`+ev.Text+`"`)
		case speech.EventFormatChange:
			parts = append(parts, "{format}")
		}
	}
	return strings.Join(parts, " ")
}

func TestParseEvents(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected string
	}{
		{
			name:     "nested bodies",
			source:   `query { enter list id=l1 { enter listitem { "hello" } } }`,
			expected: `+list +listitem "hello" - -`,
		},
		{
			name:     "explicit exits",
			source:   `query { "" enter table enter cell exit exit "" }`,
			expected: `"" +table +cell - - ""`,
		},
		{
			name: "format and comments",
			source: `# leading comment
query unit=word {
    format bold=true   # inline
    "a\tb"
}`,
			expected: "{format} \"a\tb\"",
		},
		{
			name:     "empty query",
			source:   `query reason=focus {}`,
			expected: ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse("test", tt.source, Options{})
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if len(s.Queries) != 1 {
				t.Fatalf("Expected 1 query, got %d", len(s.Queries))
			}
			if got := describe(t, s.Queries[0]); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestQuerySettings(t *testing.T) {
	s, err := Parse("test", `
query { "x" }
query reason=sayall unit=paragraph initial=true noblanks=true nocache=true prefix="say" { "y" }
`, Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	first, second := s.Queries[0], s.Queries[1]
	if first.Reason != speech.ReasonCaret || first.Unit != speech.UnitLine {
		t.Errorf("Expected caret/line defaults, got %s/%s", first.Reason, first.Unit)
	}
	if second.Reason != speech.ReasonSayAll || second.Unit != speech.UnitParagraph {
		t.Errorf("Unexpected reason/unit %s/%s", second.Reason, second.Unit)
	}
	if !second.OnlyInitialFields || !second.SuppressBlanks || !second.NoCache || second.Prefix != "say" {
		t.Errorf("Unexpected flags %+v", second)
	}
	if second.Line != 3 {
		t.Errorf("Expected line 3, got %d", second.Line)
	}
}

func TestFieldSettings(t *testing.T) {
	s, err := Parse("test", `query {
    enter link id=a1 lang=fr block=true states=clickable,visited presentation=layout url=https://x.org/a { "go" }
    format lang=de italic=true
}`, Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	events, _ := s.Queries[0].Events(speech.DefaultFormatConfig())

	f := events[0].Field
	if f.UniqueID != "a1" || f.Language != "fr" || !f.IsBlock {
		t.Errorf("Unexpected field %+v", f)
	}
	if !f.States.Has(speech.StateClickable) || !f.States.Has(speech.StateVisited) {
		t.Errorf("Expected clickable and visited, got %v", f.States)
	}
	if f.Presentation != speech.PresentationLayout {
		t.Errorf("Expected layout presentation, got %q", f.Presentation)
	}
	if f.Attr("url") != "https://x.org/a" {
		t.Errorf("Expected url attribute, got %v", f.Attrs)
	}

	format := events[3].Field
	if format.Kind != speech.FieldFormat || format.Language != "de" || format.Attr("italic") != "true" {
		t.Errorf("Unexpected format field %+v", format)
	}
}

func TestEventsAreCopies(t *testing.T) {
	s, err := Parse("test", `query { enter list items=2 { "a" } }`, Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	q := s.Queries[0]
	first, _ := q.Events(speech.DefaultFormatConfig())
	first[0].Field.Attrs["items"] = "9"
	second, _ := q.Events(speech.DefaultFormatConfig())
	if second[0].Field.Attr("items") != "2" {
		t.Error("Expected Events to return independent fields")
	}
}

func TestDocuments(t *testing.T) {
	s, err := Parse("script.fs", `
query { "default" }
document id=a.md move=focus
query { "a" }
document id=b.md passthrough=true move=caret
query { "b" }
`, Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	tests := []struct {
		id          string
		passThrough bool
		wasFocus    bool
		known       bool
	}{
		{"script.fs", false, false, false},
		{"a.md", false, true, true},
		{"b.md", true, false, true},
	}

	for i, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			doc := s.Queries[i].Document()
			if doc.ID() != tt.id {
				t.Errorf("Expected id %s, got %s", tt.id, doc.ID())
			}
			if doc.PassThrough() != tt.passThrough {
				t.Errorf("Expected pass-through %v", tt.passThrough)
			}
			wasFocus, known := doc.LastMoveWasFocus()
			if wasFocus != tt.wasFocus || known != tt.known {
				t.Errorf("Expected move (%v, %v), got (%v, %v)", tt.wasFocus, tt.known, wasFocus, known)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		opts    Options
		message string
	}{
		{"syntax", `query { "unterminated }`, Options{}, "failed to parse script"},
		{"unknown query setting", `query unt=line {}`, Options{}, `did you mean "unit"?`},
		{"unknown unit", `query unit=sentence {}`, Options{}, `unknown unit "sentence"`},
		{"bad boolean", `query initial=maybe {}`, Options{}, "expected a boolean"},
		{"unknown document setting", `document passthru=true`, Options{}, `did you mean "passthrough"?`},
		{"strict role", `query { enter listitm { "x" } }`, Options{Strict: true}, `did you mean "listitem"?`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("test", tt.source, tt.opts)
			if err == nil {
				t.Fatal("Expected an error")
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("Expected error containing %q, got %q", tt.message, err.Error())
			}
		})
	}
}

func TestUnknownRoleAllowedByDefault(t *testing.T) {
	s, err := Parse("test", `query { enter widget { "x" } }`, Options{})
	if err != nil {
		t.Fatalf("Expected unknown roles to be accepted, got %v", err)
	}
	events, _ := s.Queries[0].Events(speech.DefaultFormatConfig())
	if events[0].Field.Role != "widget" {
		t.Errorf("Expected role widget, got %s", events[0].Field.Role)
	}
}
