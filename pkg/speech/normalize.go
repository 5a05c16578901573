package speech

import "fmt"

// runs is a field stream split around the context shared with the
// neighbouring positions.
type runs struct {
	// leading holds the initial enter and format events.
	leading []Event

	// interior holds the events between the leading and trailing runs.
	interior []Event

	// trailing counts the closing exit events.
	trailing int

	// stack is built from the structural fields of the leading run.
	stack []*Field

	// format merges the format fields of the leading run.
	format *Field
}

// normalize strips node-bound metadata from every field and splits the
// stream into its leading, interior and trailing runs.
func normalize(events []Event) (*runs, error) {
	cleaned := make([]Event, len(events))
	for i, ev := range events {
		if ev.Kind < EventText || ev.Kind > EventFormatChange {
			return nil, invalidStream(ErrUnknownEvent, i, ev)
		}
		if ev.Field != nil {
			ev.Field = stripNodeBounds(ev.Field)
		}
		if (ev.Kind == EventEnterField || ev.Kind == EventFormatChange) && ev.Field == nil {
			return nil, invalidStream(ErrNilField, i, ev)
		}
		if ev.Kind == EventEnterField && ev.Field.Kind != FieldStructural ||
			ev.Kind == EventFormatChange && ev.Field.Kind != FieldFormat {
			return nil, invalidStream(ErrUnknownEvent, i, ev)
		}
		cleaned[i] = ev
	}

	lead := 0
	for lead < len(cleaned) {
		k := cleaned[lead].Kind
		if k != EventEnterField && k != EventFormatChange {
			break
		}
		lead++
	}
	trail := 0
	for trail < len(cleaned)-lead && cleaned[len(cleaned)-1-trail].Kind == EventExitField {
		trail++
	}

	r := &runs{
		leading:  cleaned[:lead],
		interior: cleaned[lead : len(cleaned)-trail],
		trailing: trail,
		format:   &Field{Kind: FieldFormat, Attrs: map[string]string{}},
	}
	for i, ev := range r.leading {
		switch ev.Field.Kind {
		case FieldStructural:
			r.stack = append(r.stack, ev.Field)
		case FieldFormat:
			mergeFormat(r.format, ev.Field)
		default:
			return nil, invalidStream(fmt.Errorf("%w: field kind %d", ErrUnknownEvent, ev.Field.Kind), i, ev)
		}
	}
	return r, nil
}

// stripNodeBounds returns a copy of f without positional metadata.
func stripNodeBounds(f *Field) *Field {
	c := f.Clone()
	delete(c.Attrs, AttrStartOfNode)
	delete(c.Attrs, AttrEndOfNode)
	return c
}

// mergeFormat copies the attributes of src over dst. Later values win.
func mergeFormat(dst, src *Field) {
	for k, v := range src.Attrs {
		dst.Attrs[k] = v
	}
	if src.Language != "" {
		dst.Language = src.Language
	}
}

func invalidStream(cause error, index int, ev Event) *Error {
	return NewError(CodeInvalidStream, "malformed field stream", cause).
		WithContext("index", index).
		WithContext("kind", ev.Kind.String())
}
