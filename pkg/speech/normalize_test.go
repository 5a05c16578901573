package speech

import (
	"errors"
	"testing"
)

func TestNormalizeRuns(t *testing.T) {
	doc := structural(RoleDocument, "d")
	para := structural(RoleParagraph, "p")

	tests := []struct {
		name     string
		events   []Event
		leading  int
		interior int
		trailing int
		depth    int
	}{
		{
			name:     "empty stream",
			events:   nil,
			leading:  0,
			interior: 0,
			trailing: 0,
		},
		{
			name:     "text only",
			events:   []Event{TextEvent("a"), TextEvent("b")},
			interior: 2,
		},
		{
			name: "leading and trailing runs",
			events: []Event{
				EnterEvent(doc), FormatEvent(formatField(map[string]string{"bold": "on"})), EnterEvent(para),
				TextEvent("a"),
				ExitEvent(), ExitEvent(),
			},
			leading:  3,
			interior: 1,
			trailing: 2,
			depth:    2,
		},
		{
			name:     "only enters and exits",
			events:   []Event{EnterEvent(doc), ExitEvent()},
			leading:  1,
			trailing: 1,
			depth:    1,
		},
		{
			name: "nested content stays interior",
			events: []Event{
				EnterEvent(doc), TextEvent("a"), EnterEvent(para), TextEvent("b"), ExitEvent(), TextEvent("c"), ExitEvent(),
			},
			leading:  1,
			interior: 5,
			trailing: 1,
			depth:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := normalize(tt.events)
			if err != nil {
				t.Fatalf("normalize failed: %v", err)
			}
			if len(r.leading) != tt.leading {
				t.Errorf("Expected %d leading events, got %d", tt.leading, len(r.leading))
			}
			if len(r.interior) != tt.interior {
				t.Errorf("Expected %d interior events, got %d", tt.interior, len(r.interior))
			}
			if r.trailing != tt.trailing {
				t.Errorf("Expected %d trailing events, got %d", tt.trailing, r.trailing)
			}
			if len(r.stack) != tt.depth {
				t.Errorf("Expected stack depth %d, got %d", tt.depth, len(r.stack))
			}
		})
	}
}

func TestNormalizeStripsNodeBounds(t *testing.T) {
	field := structural(RoleParagraph, "p")
	field.Attrs = map[string]string{AttrStartOfNode: "1", AttrEndOfNode: "1", "level": "2"}

	r, err := normalize([]Event{EnterEvent(field), TextEvent("a")})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}

	got := r.stack[0]
	if _, ok := got.Attrs[AttrStartOfNode]; ok {
		t.Error("Expected start-of-node marker to be stripped")
	}
	if _, ok := got.Attrs[AttrEndOfNode]; ok {
		t.Error("Expected end-of-node marker to be stripped")
	}
	if got.Attr("level") != "2" {
		t.Errorf("Expected level attribute to survive, got %q", got.Attr("level"))
	}
	if _, ok := field.Attrs[AttrStartOfNode]; !ok {
		t.Error("Expected caller's field to be left alone")
	}
}

func TestNormalizeMergesFormat(t *testing.T) {
	events := []Event{
		FormatEvent(&Field{Kind: FieldFormat, Language: "de", Attrs: map[string]string{"bold": "on", "italic": "on"}}),
		FormatEvent(&Field{Kind: FieldFormat, Attrs: map[string]string{"bold": "off"}}),
		TextEvent("x"),
	}

	r, err := normalize(events)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if r.format.Attr("bold") != "off" {
		t.Errorf("Expected later attribute to win, got %q", r.format.Attr("bold"))
	}
	if r.format.Attr("italic") != "on" {
		t.Errorf("Expected italic to be kept, got %q", r.format.Attr("italic"))
	}
	if r.format.Language != "de" {
		t.Errorf("Expected language de, got %q", r.format.Language)
	}
	if len(r.stack) != 0 {
		t.Errorf("Expected format fields to stay off the stack, got depth %d", len(r.stack))
	}
}

func TestNormalizeInvalid(t *testing.T) {
	tests := []struct {
		name     string
		events   []Event
		expected error
	}{
		{"unknown kind", []Event{{Kind: EventKind(42)}}, ErrUnknownEvent},
		{"enter without field", []Event{{Kind: EventEnterField}}, ErrNilField},
		{"format without field", []Event{TextEvent("a"), {Kind: EventFormatChange}}, ErrNilField},
		{"enter with format field", []Event{EnterEvent(formatField(nil))}, ErrUnknownEvent},
		{"format with structural field", []Event{FormatEvent(structural(RoleLink, ""))}, ErrUnknownEvent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := normalize(tt.events)
			if !errors.Is(err, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, err)
			}
			if !IsInvariantViolation(err) {
				t.Errorf("Expected an invariant violation, got %v", err)
			}
		})
	}
}
