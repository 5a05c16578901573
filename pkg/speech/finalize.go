package speech

import (
	"strings"

	"github.com/charmbracelet/log"
)

// lineEndChars are the characters a line holding nothing else is made of.
const lineEndChars = "\r\n"

// finalizer assembles the final sequence from the builder's output and
// stages the cache update.
type finalizer struct {
	q        *query
	b        *builder
	prev     *Snapshot
	interior []Event
	cache    *State

	// indentation is the staged indentation snapshot, nil when the
	// indentation was not computed.
	indentation *string
}

// finish appends the indentation change, the relative sequence and the
// closing announcements for common frames to out, and reports whether the
// result is still blank.
func (f *finalizer) finish(out Sequence, blank bool) (Sequence, bool) {
	q, b := f.q, f.b

	if q.reportIndentation && f.cache != nil &&
		(!q.cfg.IgnoreBlankLinesForIndentation || !onlyLineEnds(f.interior)) &&
		b.indentation != f.prev.Indentation {
		speech := q.collab.Fields.IndentationSpeech(b.indentation, q.cfg)
		out = insertBeforeLanguage(out, speech, q.cfg.AutoLanguageSwitching)
		indentation := b.indentation
		f.indentation = &indentation
	}

	if !b.blank() {
		out = append(out, b.out...)
		blank = false
	}

	if q.cfg.AutoLanguageSwitching && b.lastLang != "" {
		out = append(out, LanguageToken(""))
		b.lastLang = ""
	}

	if !q.extraDetail {
		for i := min(len(b.stack), b.common) - 1; i >= 0; i-- {
			seq := q.fieldSpeech(b.stack[i], b.stack[:i], ModeEndInStack)
			if len(seq) > 0 {
				out = append(out, seq...)
				blank = false
			}
		}
	}
	return out, blank
}

// commit stores the new context in the cache in a single step.
func (f *finalizer) commit() {
	if f.cache == nil {
		return
	}
	f.cache.commit(f.b.stack, f.q.attrs, f.indentation)
	log.Debug("speech cache committed",
		"document", f.cache.Owner(),
		"depth", len(f.b.stack),
		"attrs", len(f.q.attrs))
}

// onlyLineEnds reports whether every text event holds nothing but line
// ending characters.
func onlyLineEnds(events []Event) bool {
	for _, ev := range events {
		if ev.Kind == EventText && strings.Trim(ev.Text, lineEndChars) != "" {
			return false
		}
	}
	return true
}
