package render

import (
	"regexp"
	"strings"

	"github.com/dgnsrekt/fieldspeech/pkg/speech"
)

var (
	fracPattern  = regexp.MustCompile(`\\frac\{([^{}]*)\}\{([^{}]*)\}`)
	sqrtPattern  = regexp.MustCompile(`\\sqrt\{([^{}]*)\}`)
	spacePattern = regexp.MustCompile(`\s+`)
)

func newMathReplacer() *strings.Replacer {
	return strings.NewReplacer(
		`\cdot`, " times ",
		`\times`, " times ",
		`\div`, " divided by ",
		`\pm`, " plus or minus ",
		`\leq`, " less than or equal to ",
		`\geq`, " greater than or equal to ",
		`\neq`, " not equal to ",
		`\infty`, " infinity ",
		`\pi`, " pi ",
		`\alpha`, " alpha ",
		`\beta`, " beta ",
		`\theta`, " theta ",
		`\sum`, " sum ",
		`\int`, " integral ",
		"^", " superscript ",
		"_", " subscript ",
		"=", " equals ",
		"+", " plus ",
		"-", " minus ",
		"<", " less than ",
		">", " greater than ",
		"{", " ",
		"}", " ",
		`\`, " ",
	)
}

// AppendRichContent appends the spoken form of the TeX source carried by
// math fields.
func (r *Renderer) AppendRichContent(seq *speech.Sequence, pos speech.Position, field *speech.Field) {
	if field == nil || field.Role != speech.RoleMath {
		return
	}
	if spoken := r.SpeakTeX(field.Attr(AttrTeX)); spoken != "" {
		*seq = append(*seq, speech.TextToken(spoken))
	}
}

// SpeakTeX reads a TeX expression aloud.
func (r *Renderer) SpeakTeX(tex string) string {
	tex = fracPattern.ReplaceAllString(tex, " $1 over $2 ")
	tex = sqrtPattern.ReplaceAllString(tex, " square root of $1 ")
	tex = r.math.Replace(tex)
	return strings.TrimSpace(spacePattern.ReplaceAllString(tex, " "))
}
