package speech

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"testing"
)

// fakeRenderer speaks "enter <role>" and "exit <role>" for relative and
// changed frames, and nothing for frames still in the stack. Fields with
// the "closing" attribute say "close <role>" when they are still open at
// the end of a query. Fields with the "silent" attribute say nothing else.
type fakeRenderer struct{}

func (fakeRenderer) FieldSpeech(field *Field, _ []*Field, mode FieldMode, _ FormatConfig, _ bool, _ Reason) Sequence {
	if mode == ModeEndInStack && field.Attr("closing") != "" {
		return Sequence{TextToken("close " + string(field.Role))}
	}
	if field.Attr("silent") != "" {
		return nil
	}
	switch mode {
	case ModeStartAddedToStack, ModeStartRelative:
		return Sequence{TextToken("enter " + string(field.Role))}
	case ModeEndRelative, ModeEndRemovedFromStack:
		return Sequence{TextToken("exit " + string(field.Role))}
	default:
		return nil
	}
}

func (fakeRenderer) FormatSpeech(field *Field, attrs map[string]string, _ FormatConfig, _ Reason, _ Unit, _ bool, _ bool) Sequence {
	keys := make([]string, 0, len(field.Attrs))
	for k := range field.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var seq Sequence
	for _, k := range keys {
		v := field.Attrs[k]
		if attrs[k] == v {
			continue
		}
		seq = append(seq, TextToken(k+" "+v))
		attrs[k] = v
	}
	return seq
}

func (fakeRenderer) IndentationSpeech(indentation string, _ FormatConfig) Sequence {
	if indentation == "" {
		return Sequence{TextToken("no indent")}
	}
	return Sequence{TextToken("indent " + strconv.Itoa(len(indentation)))}
}

type fakeText struct{}

func (fakeText) IsBlank(text string) bool     { return strings.TrimSpace(text) == "" }
func (fakeText) Normalize(text string) string { return text }

func (fakeText) SplitIndentation(text string) (string, string) {
	rest := strings.TrimLeft(text, " \t")
	return text[:len(text)-len(rest)], rest
}

type fakeRich struct{}

func (fakeRich) AppendRichContent(seq *Sequence, _ Position, field *Field) {
	*seq = append(*seq, TextToken(string(field.Role)+" content"))
}

type fakeSpelling struct{}

func (fakeSpelling) Spell(_ Unit, _ bool, events []Event, _ Reason, prefix Sequence, _ string) Sequence {
	out := append(Sequence(nil), prefix...)
	for _, ev := range events {
		if ev.Kind == EventText {
			out = append(out, TextToken("spell "+ev.Text))
		}
	}
	return out
}

type fakeDocument struct {
	id          string
	passThrough bool
	wasFocus    bool
	known       bool
}

func (d *fakeDocument) ID() string                     { return d.id }
func (d *fakeDocument) PassThrough() bool              { return d.passThrough }
func (d *fakeDocument) LastMoveWasFocus() (bool, bool) { return d.wasFocus, d.known }

// readingDoc is a document whose last move was a caret move.
func readingDoc() *fakeDocument {
	return &fakeDocument{id: "doc", known: true}
}

type fakePosition struct {
	doc    Document
	events []Event
	err    error
}

func (p *fakePosition) Document() Document { return p.doc }

func (p *fakePosition) Events(FormatConfig) ([]Event, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.events, nil
}

var errPositionGone = errors.New("position gone")

func newTestSpeaker(t testing.TB, opts ...Option) *Speaker {
	collab := Collaborators{
		Fields:      fakeRenderer{},
		RichContent: fakeRich{},
		Text:        fakeText{},
		Spelling:    fakeSpelling{},
	}
	cfg := DefaultFormatConfig()
	cfg.AutoLanguageSwitching = false
	s, err := NewSpeaker(collab, append([]Option{WithFormatConfig(cfg)}, opts...)...)
	if err != nil {
		t.Fatalf("Failed to create speaker: %v", err)
	}
	return s
}

func structural(role Role, id string) *Field {
	return &Field{Kind: FieldStructural, Role: role, UniqueID: id}
}

func silent(role Role, id string) *Field {
	f := structural(role, id)
	f.Attrs = map[string]string{"silent": "1"}
	return f
}

func closing(field *Field) *Field {
	if field.Attrs == nil {
		field.Attrs = map[string]string{}
	}
	field.Attrs["closing"] = "1"
	return field
}

func formatField(attrs map[string]string) *Field {
	return &Field{Kind: FieldFormat, Attrs: attrs}
}
