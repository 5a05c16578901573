package render

import (
	"unicode"

	"github.com/dgnsrekt/fieldspeech/pkg/speech"
)

var characterNames = map[rune]string{
	' ':  "space",
	'\t': "tab",
	'\n': "line feed",
	'\r': "carriage return",
	'.':  "dot",
	',':  "comma",
	'!':  "bang",
	'?':  "question",
	'-':  "dash",
	'_':  "line",
	'#':  "number",
	'*':  "star",
	'`':  "grave",
	'(':  "left paren",
	')':  "right paren",
	'[':  "left bracket",
	']':  "right bracket",
	'{':  "left brace",
	'}':  "right brace",
	':':  "colon",
	';':  "semi",
	'\'': "tick",
	'"':  "quote",
	'/':  "slash",
	'\\': "backslash",
	'|':  "bar",
	'&':  "and",
	'@':  "at",
	'$':  "dollar",
	'%':  "percent",
	'+':  "plus",
	'=':  "equals",
	'<':  "less",
	'>':  "greater",
	'~':  "tilde",
	'^':  "caret",

	'\u00a0': "no-break space",
}

// Spell speaks prefix followed by the first text of events spelled out
// character by character, for character and word units.
func (r *Renderer) Spell(unit speech.Unit, onlyInitialFields bool, events []speech.Event, reason speech.Reason, prefix speech.Sequence, lang string) speech.Sequence {
	seq := append(speech.Sequence(nil), prefix...)
	if unit != speech.UnitCharacter && unit != speech.UnitWord {
		return seq
	}
	if len(events) == 0 || events[0].Kind != speech.EventText {
		return seq
	}
	for _, c := range r.Normalize(events[0].Text) {
		seq = append(seq, speech.TextToken(CharacterName(c)))
	}
	return seq
}

// CharacterName returns the spoken name of c.
func CharacterName(c rune) string {
	if name, ok := characterNames[c]; ok {
		return name
	}
	if unicode.IsUpper(c) {
		return "cap " + string(c)
	}
	return string(c)
}
