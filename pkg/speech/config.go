package speech

import "slices"

// IndentationReporting selects how line indentation is reported.
type IndentationReporting int

const (
	IndentationOff IndentationReporting = iota
	IndentationSpeech
	IndentationTones
	IndentationSpeechAndTones
)

// FormatConfig holds the document formatting options a query runs with.
type FormatConfig struct {
	// ExtraDetail is forced on for character and word queries.
	ExtraDetail bool

	ReportClickable       bool
	ReportLineIndentation IndentationReporting

	// IgnoreBlankLinesForIndentation skips indentation announcements for
	// lines holding nothing but line endings.
	IgnoreBlankLinesForIndentation bool

	ReportSpellingErrors bool
	ReportFontAttributes bool
	ReportEmphasis       bool
	ReportHeadings       bool
	ReportLinks          bool
	ReportLists          bool
	ReportTables         bool
	ReportBlockQuotes    bool
	ReportLanguage       bool

	// AutoLanguageSwitching makes the speaker emit language change tokens.
	AutoLanguageSwitching bool
}

// DefaultFormatConfig returns the formatting defaults.
func DefaultFormatConfig() FormatConfig {
	return FormatConfig{
		ReportClickable:                true,
		ReportLineIndentation:          IndentationOff,
		IgnoreBlankLinesForIndentation: true,
		ReportSpellingErrors:           true,
		ReportFontAttributes:           false,
		ReportEmphasis:                 false,
		ReportHeadings:                 true,
		ReportLinks:                    true,
		ReportLists:                    true,
		ReportTables:                   true,
		ReportBlockQuotes:              true,
		ReportLanguage:                 false,
		AutoLanguageSwitching:          true,
	}
}

// Policy maps host reasons and roles onto transducer behaviour. The host's
// reason taxonomy is an external contract, so none of it is hard-coded in
// the speaker.
type Policy struct {
	// SuppressExits lists reasons for which leaving cached ancestors is
	// not announced.
	SuppressExits []Reason

	// ContinuousReading lists reasons that never report blank and that
	// break the utterance after leaving a block.
	ContinuousReading []Reason

	// CacheOnly lists reasons that update the cache without producing
	// output.
	CacheOnly []Reason

	// ContentFirst lists reasons for which entry announcements are
	// deferred until content is found.
	ContentFirst []Reason

	// SpellingCheckOff lists units for which spelling errors are not
	// reported when the reason is one of SpellingCheckOffReasons.
	SpellingCheckOff        []Unit
	SpellingCheckOffReasons []Reason

	// RichContentRoles lists roles whose rendering must always be emitted.
	RichContentRoles []Role

	// BlankText is spoken for blank results.
	BlankText string

	// ClickableText is prepended to the outermost clickable field.
	ClickableText string
}

// DefaultPolicy returns the policy matching the usual host reasons.
func DefaultPolicy() Policy {
	return Policy{
		SuppressExits:           []Reason{ReasonFocus, ReasonQuickNav},
		ContinuousReading:       []Reason{ReasonSayAll},
		CacheOnly:               []Reason{ReasonOnlyCache},
		ContentFirst:            []Reason{ReasonCaret},
		SpellingCheckOff:        []Unit{UnitParagraph, UnitCell},
		SpellingCheckOffReasons: []Reason{ReasonCaret},
		RichContentRoles:        []Role{RoleMath},
		BlankText:               "blank",
		ClickableText:           "clickable",
	}
}

func (p Policy) suppressesExits(r Reason) bool { return slices.Contains(p.SuppressExits, r) }
func (p Policy) isContinuous(r Reason) bool { return slices.Contains(p.ContinuousReading, r) }
func (p Policy) isCacheOnly(r Reason) bool { return slices.Contains(p.CacheOnly, r) }
func (p Policy) isContentFirst(r Reason) bool { return slices.Contains(p.ContentFirst, r) }
func (p Policy) isRichContent(f *Field) bool { return f != nil && slices.Contains(p.RichContentRoles, f.Role) }

func (p Policy) skipsSpelling(u Unit, r Reason) bool {
	return slices.Contains(p.SpellingCheckOff, u) && slices.Contains(p.SpellingCheckOffReasons, r)
}
