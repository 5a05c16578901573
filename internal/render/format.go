package render

import (
	"github.com/dgnsrekt/fieldspeech/pkg/speech"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Format attribute keys.
const (
	AttrBold          = "bold"
	AttrItalic        = "italic"
	AttrStrikethrough = "strikethrough"
	AttrInlineCode    = "code"
	AttrSpelling      = "invalid-spelling"

	// attrLanguage records the last reported language in the snapshot.
	attrLanguage = "language"
)

type formatAttr struct {
	key      string
	on, off  string
	reported func(cfg speech.FormatConfig) bool
}

var formatAttrs = []formatAttr{
	{AttrBold, "bold", "no bold", func(c speech.FormatConfig) bool { return c.ReportFontAttributes || c.ReportEmphasis }},
	{AttrItalic, "italic", "no italic", func(c speech.FormatConfig) bool { return c.ReportFontAttributes || c.ReportEmphasis }},
	{AttrStrikethrough, "strikethrough", "no strikethrough", func(c speech.FormatConfig) bool { return c.ReportFontAttributes }},
	{AttrInlineCode, "code", "out of code", func(c speech.FormatConfig) bool { return c.ReportFontAttributes }},
	{AttrSpelling, "spelling error", "", func(c speech.FormatConfig) bool { return c.ReportSpellingErrors }},
}

// FormatSpeech announces the attributes of field that differ from attrs
// and records them in attrs.
func (r *Renderer) FormatSpeech(field *speech.Field, attrs map[string]string, cfg speech.FormatConfig, reason speech.Reason, unit speech.Unit, extraDetail bool, initial bool) speech.Sequence {
	if field == nil {
		return nil
	}

	var seq speech.Sequence
	for _, fa := range formatAttrs {
		next, prev := field.Attr(fa.key), attrs[fa.key]
		if next == prev {
			continue
		}
		if next == "" {
			delete(attrs, fa.key)
		} else {
			attrs[fa.key] = next
		}
		if !fa.reported(cfg) {
			continue
		}
		text := fa.on
		if next == "" {
			text = fa.off
		}
		if text != "" {
			seq = append(seq, speech.TextToken(text))
		}
	}

	if field.Language != attrs[attrLanguage] {
		if field.Language == "" {
			delete(attrs, attrLanguage)
		} else {
			attrs[attrLanguage] = field.Language
		}
		if cfg.ReportLanguage && field.Language != "" {
			seq = append(seq, speech.TextToken(LanguageName(field.Language)))
		}
	}
	return seq
}

// CanonicalLanguage returns the canonical form of a BCP 47 tag, or tag
// unchanged when it does not parse.
func CanonicalLanguage(tag string) string {
	if tag == "" {
		return ""
	}
	t, err := language.Parse(tag)
	if err != nil {
		return tag
	}
	return t.String()
}

// LanguageName returns the English name of a language tag.
func LanguageName(tag string) string {
	t, err := language.Parse(tag)
	if err != nil {
		return tag
	}
	if name := display.Tags(language.English).Name(t); name != "" {
		return name
	}
	return tag
}
