package speech

import (
	"maps"
	"strings"
)

// EventKind identifies the kind of an Event.
type EventKind int

const (
	// EventText carries a run of document text.
	EventText EventKind = iota

	// EventEnterField opens a structural field.
	EventEnterField

	// EventExitField closes the innermost open structural field.
	EventExitField

	// EventFormatChange carries formatting that applies to following text.
	EventFormatChange
)

// String returns the string representation of the event kind
func (k EventKind) String() string {
	switch k {
	case EventText:
		return "text"
	case EventEnterField:
		return "enter"
	case EventExitField:
		return "exit"
	case EventFormatChange:
		return "format"
	default:
		return "unknown"
	}
}

// Event is one element of an annotated field stream.
type Event struct {
	Kind EventKind
	Text string

	// Field is set for enter and format events. Exit events may carry the
	// field being closed but it is never required.
	Field *Field
}

// TextEvent returns a text event.
func TextEvent(text string) Event {
	return Event{Kind: EventText, Text: text}
}

// EnterEvent returns an event opening field.
func EnterEvent(field *Field) Event {
	return Event{Kind: EventEnterField, Field: field}
}

// ExitEvent returns an event closing the innermost open field.
func ExitEvent() Event {
	return Event{Kind: EventExitField}
}

// FormatEvent returns a format change event.
func FormatEvent(field *Field) Event {
	return Event{Kind: EventFormatChange, Field: field}
}

// FieldKind separates structural fields from format fields.
type FieldKind int

const (
	// FieldStructural fields push and pop the ancestor stack.
	FieldStructural FieldKind = iota

	// FieldFormat fields are merged into a single format record.
	FieldFormat
)

// Role names what a structural field is.
type Role string

// Roles the bundled renderer and document models know about. Any other
// value is allowed and passed through to renderers untouched.
const (
	RoleDocument   Role = "document"
	RoleParagraph  Role = "paragraph"
	RoleHeading    Role = "heading"
	RoleList       Role = "list"
	RoleListItem   Role = "listitem"
	RoleLink       Role = "link"
	RoleGraphic    Role = "graphic"
	RoleBlockQuote Role = "blockquote"
	RoleCode       Role = "code"
	RoleTable      Role = "table"
	RoleRow        Role = "row"
	RoleCell       Role = "cell"
	RoleSeparator  Role = "separator"
	RoleMath       Role = "math"
	RoleSection    Role = "section"
)

// FieldState is a single field state such as "clickable" or "visited".
type FieldState string

const (
	StateClickable FieldState = "clickable"
	StateVisited   FieldState = "visited"
	StateChecked   FieldState = "checked"
	StateExpanded  FieldState = "expanded"
	StateCollapsed FieldState = "collapsed"
)

// StateSet is an unordered set of states.
type StateSet map[FieldState]struct{}

// NewStateSet returns a set holding states.
func NewStateSet(states ...FieldState) StateSet {
	set := make(StateSet, len(states))
	for _, s := range states {
		set[s] = struct{}{}
	}
	return set
}

// Has reports whether s is in the set.
func (s StateSet) Has(state FieldState) bool {
	_, ok := s[state]
	return ok
}

// PresentationCategory is the hint a host gives about how a field is
// presented: as a container, as a single item, or as pure layout.
type PresentationCategory string

const (
	PresentationNone      PresentationCategory = ""
	PresentationContainer PresentationCategory = "container"
	PresentationSingle    PresentationCategory = "singleLine"
	PresentationLayout    PresentationCategory = "layout"
)

// Attribute keys carrying node-bound positional metadata. They never take
// part in field comparison and are removed by the normalizer.
const (
	AttrStartOfNode = "_startOfNode"
	AttrEndOfNode   = "_endOfNode"
)

// Field describes one structural or formatting unit.
type Field struct {
	Kind   FieldKind
	Role   Role
	States StateSet

	// UniqueID is an optional stable identity token.
	UniqueID string

	// Language is an optional language tag. Empty means the default
	// language.
	Language string

	Presentation PresentationCategory

	// IsBlock marks block-level regions.
	IsBlock bool

	// Attrs holds renderer-specific attributes.
	Attrs map[string]string
}

// Attr returns the named attribute or "".
func (f *Field) Attr(name string) string {
	if f == nil || f.Attrs == nil {
		return ""
	}
	return f.Attrs[name]
}

// Equal reports whether two fields carry identical attributes.
func (f *Field) Equal(o *Field) bool {
	if f == nil || o == nil {
		return f == o
	}
	if f.Kind != o.Kind || f.Role != o.Role || f.UniqueID != o.UniqueID ||
		f.Language != o.Language || f.Presentation != o.Presentation || f.IsBlock != o.IsBlock {
		return false
	}
	if len(f.States) != len(o.States) {
		return false
	}
	for s := range f.States {
		if !o.States.Has(s) {
			return false
		}
	}
	return maps.Equal(f.Attrs, o.Attrs)
}

// SameField reports whether a and b denote the same field: same unique ID
// when either side provides one, otherwise full attribute equality.
func SameField(a, b *Field) bool {
	if a == nil || b == nil {
		return a == b
	}
	if (a.UniqueID != "" || b.UniqueID != "") && a.UniqueID == b.UniqueID {
		return true
	}
	return a.Equal(b)
}

// Clone returns a deep copy of the field.
func (f *Field) Clone() *Field {
	if f == nil {
		return nil
	}
	c := *f
	if f.States != nil {
		c.States = maps.Clone(f.States)
	}
	if f.Attrs != nil {
		c.Attrs = maps.Clone(f.Attrs)
	}
	return &c
}

// TokenKind identifies the kind of a Token.
type TokenKind int

const (
	// TokenText is a run of speakable text.
	TokenText TokenKind = iota

	// TokenLanguage switches the speaking language. An empty Lang
	// selects the default language.
	TokenLanguage

	// TokenEndUtterance forces an utterance break.
	TokenEndUtterance

	// TokenCommand is an opaque command produced by a renderer.
	TokenCommand
)

// Token is one element of a speech sequence.
type Token struct {
	Kind TokenKind
	Text string
	Lang string

	// Command is the renderer payload of a TokenCommand.
	Command any
}

// TextToken returns a text run token.
func TextToken(text string) Token {
	return Token{Kind: TokenText, Text: text}
}

// LanguageToken returns a language change token.
func LanguageToken(lang string) Token {
	return Token{Kind: TokenLanguage, Lang: lang}
}

// EndUtteranceToken returns an utterance break token.
func EndUtteranceToken() Token {
	return Token{Kind: TokenEndUtterance}
}

// CommandToken wraps an opaque renderer command.
func CommandToken(name string, payload any) Token {
	return Token{Kind: TokenCommand, Text: name, Command: payload}
}

// String returns a readable form of the token
func (t Token) String() string {
	switch t.Kind {
	case TokenText:
		return t.Text
	case TokenLanguage:
		if t.Lang == "" {
			return "[lang:default]"
		}
		return "[lang:" + t.Lang + "]"
	case TokenEndUtterance:
		return "[break]"
	case TokenCommand:
		return "[" + t.Text + "]"
	default:
		return "[?]"
	}
}

// Sequence is a flat list of tokens handed to a synthesizer.
type Sequence []Token

// Texts returns the text of every text token in order.
func (s Sequence) Texts() []string {
	out := make([]string, 0, len(s))
	for _, t := range s {
		if t.Kind == TokenText {
			out = append(out, t.Text)
		}
	}
	return out
}

// String joins the tokens with " | ".
func (s Sequence) String() string {
	parts := make([]string, len(s))
	for i, t := range s {
		parts[i] = t.String()
	}
	return strings.Join(parts, " | ")
}

// Reason says why a position is being spoken.
type Reason string

const (
	ReasonQuery     Reason = "query"
	ReasonCaret     Reason = "caret"
	ReasonFocus     Reason = "focus"
	ReasonQuickNav  Reason = "quicknav"
	ReasonSayAll    Reason = "sayall"
	ReasonOnlyCache Reason = "onlycache"
	ReasonMessage   Reason = "message"
)

// Unit is the text unit a query covers.
type Unit string

const (
	UnitNone      Unit = ""
	UnitCharacter Unit = "character"
	UnitWord      Unit = "word"
	UnitLine      Unit = "line"
	UnitParagraph Unit = "paragraph"
	UnitCell      Unit = "cell"
)

// FieldMode tells a renderer which transition a field is going through.
type FieldMode int

const (
	// ModeStartAddedToStack announces a leading field new since the last query.
	ModeStartAddedToStack FieldMode = iota

	// ModeStartInStack announces a leading field unchanged since the last query.
	ModeStartInStack

	// ModeStartRelative announces a field entered inside the queried range.
	ModeStartRelative

	// ModeEndRelative announces a field exited inside the queried range.
	ModeEndRelative

	// ModeEndRemovedFromStack announces a cached ancestor no longer open.
	ModeEndRemovedFromStack

	// ModeEndInStack announces a common ancestor still open at the end.
	ModeEndInStack
)

// String returns the string representation of the mode
func (m FieldMode) String() string {
	switch m {
	case ModeStartAddedToStack:
		return "start_addedToControlFieldStack"
	case ModeStartInStack:
		return "start_inControlFieldStack"
	case ModeStartRelative:
		return "start_relative"
	case ModeEndRelative:
		return "end_relative"
	case ModeEndRemovedFromStack:
		return "end_removedFromControlFieldStack"
	case ModeEndInStack:
		return "end_inControlFieldStack"
	default:
		return "unknown"
	}
}

// IsStart reports whether the mode announces entering a field.
func (m FieldMode) IsStart() bool {
	return m == ModeStartAddedToStack || m == ModeStartInStack || m == ModeStartRelative
}
