package script

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/fieldspeech/pkg/speech"
)

// Options controls how scripts are compiled.
type Options struct {
	// Strict rejects roles the bundled renderer does not know.
	Strict bool
}

// Script is a compiled script.
type Script struct {
	Name    string
	Queries []*Query
}

// Query is one compiled query. It is the speech.Position for its events.
type Query struct {
	Line              int
	Doc               *Document
	Reason            speech.Reason
	Unit              speech.Unit
	OnlyInitialFields bool
	SuppressBlanks    bool
	Prefix            string
	NoCache           bool

	events []speech.Event
}

var _ speech.Position = (*Query)(nil)

// Document returns the document the query runs against.
func (q *Query) Document() speech.Document { return q.Doc }

// Events returns a copy of the query's events.
func (q *Query) Events(speech.FormatConfig) ([]speech.Event, error) {
	out := make([]speech.Event, len(q.events))
	for i, ev := range q.events {
		ev.Field = ev.Field.Clone()
		out[i] = ev
	}
	return out, nil
}

// Document is a document declared by a script.
type Document struct {
	id          string
	passThrough bool
	moved       bool
	wasFocus    bool
}

var _ speech.Document = (*Document)(nil)

func (d *Document) ID() string                     { return d.id }
func (d *Document) PassThrough() bool              { return d.passThrough }
func (d *Document) LastMoveWasFocus() (bool, bool) { return d.wasFocus, d.moved }

// Load reads and compiles the script at path.
func Load(path string, opts Options) (*Script, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Parse(path, string(source), opts)
}

// Parse parses and compiles source. name is used in error positions and as
// the default document ID.
func Parse(name, source string, opts Options) (*Script, error) {
	file, err := scriptParser.ParseString(name, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}

	c := &compiler{opts: opts, doc: &Document{id: name}}
	s := &Script{Name: name}
	for _, st := range file.Statements {
		switch {
		case st.Document != nil:
			doc, err := c.document(st.Document)
			if err != nil {
				return nil, err
			}
			c.doc = doc
		case st.Query != nil:
			q, err := c.query(st.Query)
			if err != nil {
				return nil, err
			}
			s.Queries = append(s.Queries, q)
		}
	}

	log.Debug("script compiled", "script", name, "queries", len(s.Queries))
	return s, nil
}

type compiler struct {
	opts Options
	doc  *Document
}

func (c *compiler) document(d *DocumentDecl) (*Document, error) {
	doc := &Document{id: c.doc.id}
	for _, s := range d.Settings {
		switch s.Key {
		case "id":
			doc.id = s.Value
		case "passthrough":
			v, err := parseBool(s)
			if err != nil {
				return nil, err
			}
			doc.passThrough = v
		case "move":
			switch s.Value {
			case "focus":
				doc.moved, doc.wasFocus = true, true
			case "caret":
				doc.moved, doc.wasFocus = true, false
			case "none":
				doc.moved, doc.wasFocus = false, false
			default:
				return nil, errorf(s.Pos, "unknown move %q%s", s.Value, suggest(s.Value, []string{"focus", "caret", "none"}))
			}
		default:
			return nil, errorf(s.Pos, "unknown document setting %q%s", s.Key, suggest(s.Key, documentKeys))
		}
	}
	return doc, nil
}

var (
	documentKeys = []string{"id", "passthrough", "move"}
	queryKeys    = []string{"reason", "unit", "initial", "noblanks", "prefix", "nocache"}
)

func (c *compiler) query(d *QueryDecl) (*Query, error) {
	q := &Query{
		Line:   d.Pos.Line,
		Doc:    c.doc,
		Reason: speech.ReasonCaret,
		Unit:   speech.UnitLine,
	}
	for _, s := range d.Settings {
		var err error
		switch s.Key {
		case "reason":
			q.Reason = speech.Reason(s.Value)
		case "unit":
			q.Unit, err = parseUnit(s)
		case "initial":
			q.OnlyInitialFields, err = parseBool(s)
		case "noblanks":
			q.SuppressBlanks, err = parseBool(s)
		case "nocache":
			q.NoCache, err = parseBool(s)
		case "prefix":
			q.Prefix = s.Value
		default:
			err = errorf(s.Pos, "unknown query setting %q%s", s.Key, suggest(s.Key, queryKeys))
		}
		if err != nil {
			return nil, err
		}
	}

	events, err := c.nodes(d.Events, nil)
	if err != nil {
		return nil, err
	}
	q.events = events
	return q, nil
}

func (c *compiler) nodes(nodes []*Node, out []speech.Event) ([]speech.Event, error) {
	for _, n := range nodes {
		switch {
		case n.Text != nil:
			out = append(out, speech.TextEvent(*n.Text))
		case n.Exit:
			out = append(out, speech.ExitEvent())
		case n.Format != nil:
			out = append(out, speech.FormatEvent(formatField(n.Format.Settings)))
		case n.Enter != nil:
			f, err := c.field(n.Pos, n.Enter)
			if err != nil {
				return nil, err
			}
			out = append(out, speech.EnterEvent(f))
			if n.Enter.HasBody {
				if out, err = c.nodes(n.Enter.Body, out); err != nil {
					return nil, err
				}
				out = append(out, speech.ExitEvent())
			}
		}
	}
	return out, nil
}

func (c *compiler) field(pos lexer.Position, e *EnterDecl) (*speech.Field, error) {
	role := speech.Role(e.Role)
	if !knownRole(role) {
		msg := fmt.Sprintf("unknown role %q%s", e.Role, suggest(e.Role, roleNames()))
		if c.opts.Strict {
			return nil, errorf(pos, "%s", msg)
		}
		log.Warn(msg, "position", pos.String())
	}

	f := &speech.Field{Kind: speech.FieldStructural, Role: role}
	for _, s := range e.Settings {
		switch s.Key {
		case "id":
			f.UniqueID = s.Value
		case "lang":
			f.Language = s.Value
		case "block":
			v, err := parseBool(s)
			if err != nil {
				return nil, err
			}
			f.IsBlock = v
		case "states":
			f.States = speech.NewStateSet()
			for _, st := range strings.Split(s.Value, ",") {
				if st = strings.TrimSpace(st); st != "" {
					f.States[speech.FieldState(st)] = struct{}{}
				}
			}
		case "presentation":
			f.Presentation = speech.PresentationCategory(s.Value)
		default:
			if f.Attrs == nil {
				f.Attrs = map[string]string{}
			}
			f.Attrs[s.Key] = s.Value
		}
	}
	return f, nil
}

func formatField(settings []*Setting) *speech.Field {
	f := &speech.Field{Kind: speech.FieldFormat, Attrs: map[string]string{}}
	for _, s := range settings {
		if s.Key == "lang" {
			f.Language = s.Value
			continue
		}
		f.Attrs[s.Key] = s.Value
	}
	return f
}

var units = []speech.Unit{
	speech.UnitCharacter,
	speech.UnitWord,
	speech.UnitLine,
	speech.UnitParagraph,
	speech.UnitCell,
}

func parseUnit(s *Setting) (speech.Unit, error) {
	if s.Value == "none" {
		return speech.UnitNone, nil
	}
	names := make([]string, 0, len(units)+1)
	for _, u := range units {
		if string(u) == s.Value {
			return u, nil
		}
		names = append(names, string(u))
	}
	names = append(names, "none")
	return "", errorf(s.Pos, "unknown unit %q%s", s.Value, suggest(s.Value, names))
}

func parseBool(s *Setting) (bool, error) {
	v, err := strconv.ParseBool(s.Value)
	if err != nil {
		return false, errorf(s.Pos, "%s: expected a boolean, got %q", s.Key, s.Value)
	}
	return v, nil
}

func errorf(pos lexer.Position, format string, args ...any) error {
	return fmt.Errorf("%s: %s", pos, fmt.Sprintf(format, args...))
}
