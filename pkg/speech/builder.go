package speech

// builder walks the interior run of a query and produces the relative
// sequence: text chunks, deferred entry announcements, exit and format
// announcements, and language changes.
type builder struct {
	q   *query
	ann *Announcer

	// stack is the live structural stack, seeded with the leading run.
	stack []*Field

	// common is the number of frames of stack still shared with the
	// cached stack.
	common int

	out Sequence

	// chunk is the index in out of the running text chunk, or -1.
	chunk int

	lastLang string

	indentation string
	indentDone  bool
}

func newBuilder(q *query, ann *Announcer, stack []*Field, lang string) *builder {
	return &builder{
		q:        q,
		ann:      ann,
		stack:    append([]*Field(nil), stack...),
		common:   len(stack),
		chunk:    -1,
		lastLang: lang,
	}
}

// run processes the interior events in order and flushes whatever entries
// are still pending at the end.
func (b *builder) run(events []Event) error {
	if !b.ann.Deferred() {
		b.emitUnits(b.ann.FlushAll())
	}
	b.ann.ResetClickable()
	for i, ev := range events {
		switch ev.Kind {
		case EventText:
			b.text(ev.Text)
		case EventEnterField:
			b.enter(ev.Field)
		case EventExitField:
			if err := b.exit(); err != nil {
				return err.WithContext("index", i)
			}
		case EventFormatChange:
			b.format(ev.Field)
		default:
			return invalidStream(ErrUnknownEvent, i, ev)
		}
	}
	b.emitUnits(b.ann.FlushAll())
	return nil
}

func (b *builder) text(text string) {
	b.ann.ResetClickable()
	if b.q.reportIndentation && !b.indentDone {
		var indentation string
		indentation, text = b.q.collab.Text.SplitIndentation(text)
		b.indentation += indentation
		if text != "" {
			b.indentDone = true
		}
	}
	if text == "" {
		return
	}
	if !b.q.collab.Text.IsBlank(text) {
		b.emitUnits(b.ann.FlushAll())
	}
	if b.chunk >= 0 {
		b.out[b.chunk].Text += text
		return
	}
	b.out = append(b.out, TextToken(text))
	b.chunk = len(b.out) - 1
}

func (b *builder) enter(field *Field) {
	b.chunk = -1
	var seq Sequence
	if b.ann.EnterClickable(field, b.q.cfg.ReportClickable) {
		seq = append(seq, TextToken(b.q.policy.ClickableText))
	}
	seq = append(seq, b.q.fieldSpeech(field, b.stack, ModeStartRelative)...)
	b.stack = append(b.stack, field)
	if b.ann.Create(field, seq) != nil && !b.ann.Deferred() {
		b.emitUnits(b.ann.FlushAll())
	}
}

func (b *builder) exit() *Error {
	b.ann.ResetClickable()
	b.chunk = -1
	if len(b.stack) == 0 {
		return NewError(CodeStackUnderflow, "exit without open field", ErrStackUnderflow)
	}
	top := b.stack[len(b.stack)-1]
	seq := b.q.fieldSpeech(top, b.stack[:len(b.stack)-1], ModeEndRelative)
	seq = b.ann.ResolveOnExit(top, seq)
	b.stack = b.stack[:len(b.stack)-1]
	if b.common > len(b.stack) {
		b.common = len(b.stack)
	}
	b.announce(seq, b.lastLang)
	return nil
}

func (b *builder) format(field *Field) {
	q := b.q
	seq := q.collab.Fields.FormatSpeech(field, q.attrs, q.cfg, q.reason, q.unit, q.extraDetail, false)
	if len(seq) > 0 {
		b.chunk = -1
	}
	lang := b.lastLang
	if q.cfg.AutoLanguageSwitching {
		lang = field.Language
		if lang != b.lastLang {
			b.chunk = -1
		}
	}
	if len(seq) > 0 {
		b.announce(seq, lang)
		return
	}
	if lang != b.lastLang {
		b.out = append(b.out, LanguageToken(lang))
		b.lastLang = lang
	}
}

// announce appends a field or format announcement. Announcements are
// spoken in the default language; restore is the language active after.
func (b *builder) announce(seq Sequence, restore string) {
	if len(seq) == 0 {
		return
	}
	b.out = append(b.out, b.frame(seq, restore)...)
}

// emitUnits places flushed entry announcements ahead of the running text
// chunk, so the chunk is never split and the announcement precedes the
// content that triggered it.
func (b *builder) emitUnits(units []Sequence) {
	if len(units) == 0 {
		return
	}
	var seq Sequence
	for _, unit := range units {
		seq = append(seq, b.frame(unit, b.lastLang)...)
	}
	if b.chunk < 0 {
		b.out = append(b.out, seq...)
		return
	}
	out := make(Sequence, 0, len(b.out)+len(seq))
	out = append(out, b.out[:b.chunk]...)
	out = append(out, seq...)
	out = append(out, b.out[b.chunk:]...)
	b.out = out
	b.chunk += len(seq)
}

func (b *builder) frame(seq Sequence, restore string) Sequence {
	if !b.q.cfg.AutoLanguageSwitching {
		return seq
	}
	var framed Sequence
	if b.lastLang != "" {
		framed = append(framed, LanguageToken(""))
		b.lastLang = ""
	}
	framed = append(framed, seq...)
	if restore != "" {
		framed = append(framed, LanguageToken(restore))
		b.lastLang = restore
	}
	return framed
}

// blank reports whether the relative sequence holds no speakable text.
func (b *builder) blank() bool {
	for _, t := range b.out {
		if t.Kind == TokenText && !b.q.collab.Text.IsBlank(t.Text) {
			return false
		}
	}
	return true
}
