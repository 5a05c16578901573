package speech

// Document is the read-only view of the document that owns a position.
type Document interface {
	// ID identifies the document; caches are keyed by it.
	ID() string

	// PassThrough reports whether the document is in focus/pass-through
	// mode, in which case reading order policies do not apply.
	PassThrough() bool

	// LastMoveWasFocus reports whether the latest caret movement was a
	// focus jump. known is false when the document never recorded one.
	LastMoveWasFocus() (wasFocus bool, known bool)
}

// Position is a cursor or range inside a document.
type Position interface {
	Document() Document

	// Events returns the annotated field stream covering the position.
	// The returned slice and its fields belong to the caller.
	Events(cfg FormatConfig) ([]Event, error)
}

// FieldRenderer produces the words for field and format announcements.
// An empty result is valid and contributes nothing.
type FieldRenderer interface {
	// FieldSpeech renders entering or leaving field, given its open
	// ancestors (outermost first).
	FieldSpeech(field *Field, ancestors []*Field, mode FieldMode, cfg FormatConfig, extraDetail bool, reason Reason) Sequence

	// FormatSpeech renders the attribute changes between field and attrs,
	// then records the new values in attrs.
	FormatSpeech(field *Field, attrs map[string]string, cfg FormatConfig, reason Reason, unit Unit, extraDetail bool, initial bool) Sequence

	// IndentationSpeech renders an indentation string.
	IndentationSpeech(indentation string, cfg FormatConfig) Sequence
}

// RichContentRenderer appends the rendering of embedded rich content such
// as mathematics.
type RichContentRenderer interface {
	AppendRichContent(seq *Sequence, pos Position, field *Field)
}

// TextClassifier answers text questions the speaker cannot decide alone.
type TextClassifier interface {
	// IsBlank reports whether text holds nothing worth speaking.
	IsBlank(text string) bool

	// SplitIndentation splits leading indentation from text.
	SplitIndentation(text string) (indentation, rest string)

	// Normalize returns the comparison form of text.
	Normalize(text string) string
}

// SpellingRenderer handles queries reduced to a single visible character
// and queries for initial fields only.
type SpellingRenderer interface {
	Spell(unit Unit, onlyInitialFields bool, events []Event, reason Reason, prefix Sequence, language string) Sequence
}

// Collaborators bundles the external renderers a Speaker calls.
type Collaborators struct {
	Fields      FieldRenderer
	RichContent RichContentRenderer
	Text        TextClassifier
	Spelling    SpellingRenderer
}
