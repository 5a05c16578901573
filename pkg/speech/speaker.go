package speech

import (
	"maps"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

// Ordering selects how entry announcements are ordered against content.
type Ordering int

const (
	// OrderingContentFirst defers entry announcements until content is
	// found, for queries the policy and document allow it for.
	OrderingContentFirst Ordering = iota

	// OrderingImmediate always announces fields as soon as they are entered.
	OrderingImmediate
)

// Query holds the per-call parameters of SpeakPosition.
type Query struct {
	// Cache is the document's speech state. Nil disables caching.
	Cache *State

	// Format overrides the speaker's formatting configuration.
	Format *FormatConfig

	Unit   Unit
	Reason Reason

	// Prefix is spoken after leaving old ancestors and before anything else.
	Prefix *Token

	OnlyInitialFields bool
	SuppressBlanks    bool
}

// Speaker converts positions into speech sequences.
type Speaker struct {
	collab   Collaborators
	policy   Policy
	format   FormatConfig
	ordering Ordering
}

// Option configures a Speaker.
type Option func(*Speaker)

// WithPolicy sets the reason and role policy.
func WithPolicy(p Policy) Option {
	return func(s *Speaker) { s.policy = p }
}

// WithFormatConfig sets the default formatting configuration.
func WithFormatConfig(cfg FormatConfig) Option {
	return func(s *Speaker) { s.format = cfg }
}

// WithOrdering selects the announcement ordering.
func WithOrdering(o Ordering) Option {
	return func(s *Speaker) { s.ordering = o }
}

// NewSpeaker creates a speaker. Field and text collaborators are required.
func NewSpeaker(collab Collaborators, opts ...Option) (*Speaker, error) {
	if collab.Fields == nil || collab.Text == nil {
		return nil, NewError(CodeMisconfigured, "field renderer and text classifier are required", ErrMissingRenderer)
	}
	s := &Speaker{
		collab:   collab,
		policy:   DefaultPolicy(),
		format:   DefaultFormatConfig(),
		ordering: OrderingContentFirst,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Policy returns the speaker's policy.
func (s *Speaker) Policy() Policy {
	return s.policy
}

// ContentFirstApplies reports whether entry announcements are deferred for
// a query at pos with reason: the ordering allows it, the reason is listed
// in Policy.ContentFirst, the document is not in pass-through mode, and its
// last caret move is known to be a genuine read-position change.
func (s *Speaker) ContentFirstApplies(pos Position, reason Reason) bool {
	if s.ordering != OrderingContentFirst || !s.policy.isContentFirst(reason) {
		return false
	}
	doc := pos.Document()
	if doc == nil || doc.PassThrough() {
		return false
	}
	wasFocus, known := doc.LastMoveWasFocus()
	return known && !wasFocus
}

// query carries everything one SpeakPosition call works with.
type query struct {
	collab Collaborators
	policy Policy
	pos    Position

	cfg         FormatConfig
	unit        Unit
	reason      Reason
	extraDetail bool

	reportIndentation bool

	// attrs is a private copy of the cached format attributes.
	attrs map[string]string
}

func (q *query) fieldSpeech(field *Field, ancestors []*Field, mode FieldMode) Sequence {
	return q.collab.Fields.FieldSpeech(field, ancestors, mode, q.cfg, q.extraDetail, q.reason)
}

// SpeakPosition returns the speech for pos. A nil sequence with a nil error
// means there is nothing to say. On error the cache is left untouched.
func (s *Speaker) SpeakPosition(pos Position, q Query) (Sequence, error) {
	if pos == nil {
		return nil, ErrNilPosition
	}
	docID := ""
	if doc := pos.Document(); doc != nil {
		docID = doc.ID()
	}
	m := StartQuery(docID, q.Reason, q.Unit)
	seq, committed, err := s.speak(pos, q)
	m.EndQuery(len(seq), committed, err)
	if err != nil {
		log.Debug("speech query failed", "document", docID, "reason", q.Reason, "error", err)
	}
	return seq, err
}

func (s *Speaker) speak(pos Position, in Query) (Sequence, bool, error) {
	q := &query{
		collab: s.collab,
		policy: s.policy,
		pos:    pos,
		cfg:    s.format,
		unit:   in.Unit,
		reason: in.Reason,
	}
	if in.Format != nil {
		q.cfg = *in.Format
	}
	q.extraDetail = in.Unit == UnitCharacter || in.Unit == UnitWord
	if q.extraDetail {
		q.cfg.ExtraDetail = true
	}
	q.reportIndentation = in.Unit == UnitLine && q.cfg.ReportLineIndentation != IndentationOff
	if s.policy.skipsSpelling(in.Unit, in.Reason) {
		q.cfg.ReportSpellingErrors = false
	}

	prev := &Snapshot{FormatAttrs: map[string]string{}}
	if in.Cache != nil {
		prev = in.Cache.Snapshot()
	}
	q.attrs = maps.Clone(prev.FormatAttrs)
	if q.attrs == nil {
		q.attrs = map[string]string{}
	}

	events, err := pos.Events(q.cfg)
	if err != nil {
		return nil, false, NewError(CodePositionFailure, "could not read field stream", err)
	}
	r, err := normalize(events)
	if err != nil {
		return nil, false, err
	}

	common := commonPrefix(prev.Stack, r.stack)
	out := q.exitedAncestors(prev.Stack, common)
	blank := true

	if in.Prefix != nil {
		out = append(out, *in.Prefix)
	}

	ann := NewAnnouncer(s.ContentFirstApplies(pos, in.Reason), s.policy, s.collab.RichContent, pos)
	if !q.extraDetail {
		for i := 0; i < common; i++ {
			seq := q.fieldSpeech(r.stack[i], r.stack[:i], ModeStartInStack)
			if ann.Create(r.stack[i], seq) != nil {
				blank = false
			}
		}
	}
	for i := common; i < len(r.stack); i++ {
		field := r.stack[i]
		var seq Sequence
		if ann.EnterClickable(field, q.cfg.ReportClickable) {
			seq = append(seq, TextToken(s.policy.ClickableText))
		}
		seq = append(seq, q.fieldSpeech(field, r.stack[:i], ModeStartAddedToStack)...)
		if ann.Create(field, seq) != nil {
			blank = false
		}
	}

	// fields are spoken before the format when nothing is deferred
	if !ann.Deferred() {
		for _, unit := range ann.FlushAll() {
			out = append(out, unit...)
		}
	}

	out = append(out, s.collab.Fields.FormatSpeech(r.format, q.attrs, q.cfg, q.reason, q.unit, q.extraDetail, true)...)
	language := ""
	if q.cfg.AutoLanguageSwitching {
		language = r.format.Language
		out = append(out, LanguageToken(language))
	}

	if in.OnlyInitialFields || (q.extraDetail && singleVisibleCharacter(r.interior, s.collab.Text)) {
		seq := s.spell(q, in, r, ann, out, language)
		if in.Cache != nil {
			in.Cache.commit(r.stack, q.attrs, nil)
		}
		if s.policy.isCacheOnly(in.Reason) || len(seq) == 0 {
			return nil, in.Cache != nil, nil
		}
		return seq, in.Cache != nil, nil
	}

	b := newBuilder(q, ann, r.stack, language)
	if err := b.run(r.interior); err != nil {
		return nil, false, err
	}

	f := &finalizer{q: q, b: b, prev: prev, interior: r.interior, cache: in.Cache}
	out, blank = f.finish(out, blank)
	if !in.SuppressBlanks && !s.policy.isContinuous(in.Reason) && blank {
		out = append(out, TextToken(s.policy.BlankText))
	}
	f.commit()

	if s.policy.isCacheOnly(in.Reason) || len(out) == 0 {
		return nil, in.Cache != nil, nil
	}
	return out, in.Cache != nil, nil
}

// spell delegates a single character query, or an initial fields query, to
// the spelling renderer. Leading entry announcements are spoken first, in
// the default language.
func (s *Speaker) spell(q *query, in Query, r *runs, ann *Announcer, out Sequence, language string) Sequence {
	if s.policy.isCacheOnly(in.Reason) {
		return nil
	}
	var lead Sequence
	for _, unit := range ann.FlushAll() {
		lead = append(lead, unit...)
	}
	prefix := insertBeforeLanguage(out, lead, q.cfg.AutoLanguageSwitching)
	if s.collab.Spelling == nil {
		for _, ev := range r.interior {
			if ev.Kind == EventText && !in.OnlyInitialFields {
				prefix = append(prefix, TextToken(ev.Text))
			}
		}
		return prefix
	}
	return s.collab.Spelling.Spell(in.Unit, in.OnlyInitialFields, r.interior, in.Reason, prefix, language)
}

// singleVisibleCharacter reports whether the interior is one visible
// character followed by nothing but exits.
func singleVisibleCharacter(interior []Event, text TextClassifier) bool {
	if len(interior) == 0 || interior[0].Kind != EventText {
		return false
	}
	first := interior[0].Text
	if !isSpace(first) {
		first = strings.TrimSpace(first)
	}
	if utf8.RuneCountInString(first) != 1 && utf8.RuneCountInString(text.Normalize(first)) != 1 {
		return false
	}
	for _, ev := range interior[1:] {
		if ev.Kind != EventExitField {
			return false
		}
	}
	return true
}

// isSpace reports whether s is non-empty and entirely white space.
func isSpace(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// insertBeforeLanguage appends extra to seq, keeping a trailing non-default
// language change last so extra is spoken in the default language.
func insertBeforeLanguage(seq, extra Sequence, switching bool) Sequence {
	if len(extra) == 0 {
		return seq
	}
	n := len(seq)
	if switching && n > 0 && seq[n-1].Kind == TokenLanguage && seq[n-1].Lang != "" {
		lang := seq[n-1]
		out := append(append(Sequence(nil), seq[:n-1]...), extra...)
		return append(out, lang)
	}
	return append(seq, extra...)
}
