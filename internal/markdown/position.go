package markdown

import "github.com/dgnsrekt/fieldspeech/pkg/speech"

// Position is a range of characters in a Document.
type Position struct {
	doc        *Document
	start, end int
	unit       speech.Unit
}

var _ speech.Position = (*Position)(nil)

// Document returns the owning document.
func (p *Position) Document() speech.Document {
	return p.doc
}

// Start returns the offset of the first character.
func (p *Position) Start() int { return p.start }

// End returns the offset after the last character.
func (p *Position) End() int { return p.end }

// Unit returns the unit the position was created for.
func (p *Position) Unit() speech.Unit { return p.unit }

// Text returns the characters covered by the position.
func (p *Position) Text() string {
	return string(p.doc.text[p.start:p.end])
}

// Events returns the field stream for the range: the fields open at its
// start, the fields and text inside it up to the last character, and exits
// for everything left open. Fields starting exactly at the range are marked
// with the start-of-node attribute.
func (p *Position) Events(speech.FormatConfig) ([]speech.Event, error) {
	var (
		stack   []*speech.Field
		starts  []int
		format  *speech.Field
		out     []speech.Event
		pending []speech.Event
		depth   int
		started bool
	)

scan:
	for _, it := range p.doc.items {
		switch it.kind {
		case speech.EventText:
			s, e := max(it.off, p.start), min(it.off+it.n, p.end)
			if s >= e {
				if started && it.off >= p.end {
					break scan
				}
				continue
			}
			if !started {
				out, depth = p.open(stack, starts, format)
				started = true
			}
			for _, ev := range pending {
				depth += depthChange(ev)
			}
			out = append(out, pending...)
			pending = pending[:0]
			out = append(out, speech.TextEvent(string(p.doc.text[s:e])))

		case speech.EventEnterField:
			if !started && it.off >= p.start && it.off < p.end {
				out, depth = p.open(stack, starts, format)
				started = true
			}
			if started {
				pending = append(pending, speech.EnterEvent(p.markStart(it.field, it.off)))
				continue
			}
			stack = append(stack, it.field)
			starts = append(starts, it.off)

		case speech.EventExitField:
			if started {
				pending = append(pending, speech.ExitEvent())
				continue
			}
			stack = stack[:len(stack)-1]
			starts = starts[:len(starts)-1]

		case speech.EventFormatChange:
			if started {
				pending = append(pending, speech.FormatEvent(it.field))
				continue
			}
			format = it.field
		}
	}

	if !started {
		return nil, nil
	}
	for _, ev := range pending {
		if ev.Kind != speech.EventExitField {
			break
		}
		out = append(out, ev)
		depth--
	}
	for ; depth > 0; depth-- {
		out = append(out, speech.ExitEvent())
	}
	return out, nil
}

// open returns the enter events for the fields open at the start of the
// range, followed by the format in effect.
func (p *Position) open(stack []*speech.Field, starts []int, format *speech.Field) ([]speech.Event, int) {
	out := make([]speech.Event, 0, len(stack)+1)
	for i, f := range stack {
		out = append(out, speech.EnterEvent(p.markStart(f, starts[i])))
	}
	if format != nil && (len(format.Attrs) > 0 || format.Language != "") {
		out = append(out, speech.FormatEvent(format))
	}
	return out, len(stack)
}

func (p *Position) markStart(f *speech.Field, start int) *speech.Field {
	if start != p.start {
		return f
	}
	c := f.Clone()
	if c.Attrs == nil {
		c.Attrs = map[string]string{}
	}
	c.Attrs[speech.AttrStartOfNode] = "1"
	return c
}

func depthChange(ev speech.Event) int {
	switch ev.Kind {
	case speech.EventEnterField:
		return 1
	case speech.EventExitField:
		return -1
	}
	return 0
}
