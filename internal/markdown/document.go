package markdown

import (
	"fmt"
	"os"
	"sync"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/fieldspeech/pkg/speech"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Document is a parsed markdown document.
type Document struct {
	id    string
	items []item
	text  []rune
	spans map[speech.Unit][]span

	mu          sync.Mutex
	passThrough bool
	moved       bool
	wasFocus    bool
}

var _ speech.Document = (*Document)(nil)

func newParser() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.Table, extension.Strikethrough),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithAttribute(),
		),
	)
}

// Parse parses source into a document identified by id.
func Parse(id string, source []byte) (*Document, error) {
	root := newParser().Parser().Parse(text.NewReader(source))

	b := newTreeBuilder(id, source)
	if err := ast.Walk(root, b.visit); err != nil {
		return nil, fmt.Errorf("failed to walk markdown AST: %w", err)
	}

	log.Debug("markdown document parsed",
		"document", id,
		"items", len(b.items),
		"chars", len(b.text))

	return &Document{
		id:    id,
		items: b.items,
		text:  b.text,
		spans: b.spans,
	}, nil
}

// Load reads and parses the file at path. The path is the document ID.
func Load(path string) (*Document, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return Parse(path, source)
}

// ID returns the document ID.
func (d *Document) ID() string {
	return d.id
}

// Text returns the document's plain text.
func (d *Document) Text() string {
	return string(d.text)
}

// PassThrough reports whether the document is in pass-through mode.
func (d *Document) PassThrough() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.passThrough
}

// SetPassThrough switches pass-through mode.
func (d *Document) SetPassThrough(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.passThrough = on
}

// RecordMove records how the reading position last moved.
func (d *Document) RecordMove(focus bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.moved = true
	d.wasFocus = focus
}

// LastMoveWasFocus reports whether the last recorded move was a focus
// jump. known is false until a move is recorded.
func (d *Document) LastMoveWasFocus() (bool, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.wasFocus, d.moved
}

// Range returns the position covering characters [start, end).
func (d *Document) Range(start, end int) *Position {
	start = max(0, min(start, len(d.text)))
	end = max(start, min(end, len(d.text)))
	return &Position{doc: d, start: start, end: end}
}

// Positions splits the document into positions of the given unit. Any
// other unit yields a single position covering the whole document.
func (d *Document) Positions(unit speech.Unit) []*Position {
	var spans []span
	switch unit {
	case speech.UnitLine:
		spans = d.lines()
	case speech.UnitParagraph, speech.UnitCell:
		spans = d.spans[unit]
	case speech.UnitWord:
		spans = d.words()
	case speech.UnitCharacter:
		for i := range d.text {
			spans = append(spans, span{i, i + 1})
		}
	default:
		if len(d.text) > 0 {
			spans = []span{{0, len(d.text)}}
		}
	}

	positions := make([]*Position, 0, len(spans))
	for _, s := range spans {
		p := d.Range(s.start, s.end)
		p.unit = unit
		positions = append(positions, p)
	}
	return positions
}

func (d *Document) lines() []span {
	var spans []span
	start := 0
	for i, c := range d.text {
		if c == '\n' {
			spans = append(spans, span{start, i + 1})
			start = i + 1
		}
	}
	if start < len(d.text) {
		spans = append(spans, span{start, len(d.text)})
	}
	return spans
}

// words splits each line into runs of non-space characters with their
// trailing spaces. A line holding only white space is one word.
func (d *Document) words() []span {
	var spans []span
	for _, line := range d.lines() {
		start := line.start
		for i := line.start; i < line.end; i++ {
			if i > start && !unicode.IsSpace(d.text[i]) && unicode.IsSpace(d.text[i-1]) {
				spans = append(spans, span{start, i})
				start = i
			}
		}
		spans = append(spans, span{start, line.end})
	}
	return spans
}
