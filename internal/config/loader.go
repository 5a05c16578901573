package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Load returns the configuration from the environment, overridden by the
// speech section of v, and validates it.
func Load(v *viper.Viper) (Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return cfg, err
	}
	return LoadFromViper(v, cfg)
}

// LoadFromViper applies the keys set under "speech." in v on top of cfg.
func LoadFromViper(v *viper.Viper, cfg Config) (Config, error) {
	// Reading settings
	if v.IsSet("speech.unit") {
		cfg.Unit = v.GetString("speech.unit")
	}
	if v.IsSet("speech.reason") {
		cfg.Reason = v.GetString("speech.reason")
	}
	if v.IsSet("speech.ordering") {
		cfg.Ordering = v.GetString("speech.ordering")
	}
	if v.IsSet("speech.suppress_blanks") {
		cfg.SuppressBlanks = v.GetBool("speech.suppress_blanks")
	}

	// Formatting settings
	bools := map[string]*bool{
		"speech.report_clickable":         &cfg.ReportClickable,
		"speech.ignore_blank_indentation": &cfg.IgnoreBlankIndentation,
		"speech.report_spelling_errors":   &cfg.ReportSpellingErrors,
		"speech.report_font_attributes":   &cfg.ReportFontAttributes,
		"speech.report_emphasis":          &cfg.ReportEmphasis,
		"speech.report_headings":          &cfg.ReportHeadings,
		"speech.report_links":             &cfg.ReportLinks,
		"speech.report_lists":             &cfg.ReportLists,
		"speech.report_tables":            &cfg.ReportTables,
		"speech.report_block_quotes":      &cfg.ReportBlockQuotes,
		"speech.report_language":          &cfg.ReportLanguage,
		"speech.language_switching":       &cfg.LanguageSwitching,
	}
	for key, dst := range bools {
		if v.IsSet(key) {
			*dst = v.GetBool(key)
		}
	}
	if v.IsSet("speech.report_indentation") {
		cfg.ReportIndentation = v.GetString("speech.report_indentation")
	}

	// Policy settings
	if v.IsSet("speech.policy.content_first") {
		cfg.ContentFirstReasons = v.GetStringSlice("speech.policy.content_first")
	}
	if v.IsSet("speech.policy.suppress_exits") {
		cfg.SuppressExitReasons = v.GetStringSlice("speech.policy.suppress_exits")
	}
	if v.IsSet("speech.policy.continuous") {
		cfg.ContinuousReasons = v.GetStringSlice("speech.policy.continuous")
	}
	if v.IsSet("speech.policy.cache_only") {
		cfg.CacheOnlyReasons = v.GetStringSlice("speech.policy.cache_only")
	}
	if v.IsSet("speech.policy.blank_text") {
		cfg.BlankText = v.GetString("speech.policy.blank_text")
	}
	if v.IsSet("speech.policy.clickable_text") {
		cfg.ClickableText = v.GetString("speech.policy.clickable_text")
	}

	// Cache settings
	if v.IsSet("speech.cache.capacity") {
		cfg.CacheCapacity = v.GetInt("speech.cache.capacity")
	}
	if v.IsSet("speech.cache.ttl") {
		cfg.CacheTTL = v.GetDuration("speech.cache.ttl")
	}

	// Output settings
	if v.IsSet("width") {
		cfg.Width = v.GetInt("width")
	}
	if v.IsSet("speech.transcript.path") {
		cfg.Transcript = v.GetString("speech.transcript.path")
	}
	if v.IsSet("speech.transcript.compression_level") {
		cfg.CompressionLevel = v.GetInt("speech.transcript.compression_level")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid speech configuration: %w", err)
	}

	return cfg, nil
}

// DefaultYAML is written when no configuration file exists.
const DefaultYAML = `# word-wrap at width (0 detects the terminal width)
width: 0

speech:
  # unit to walk documents by: character, word, line, paragraph, cell or none
  unit: "line"
  # reason given for each query: caret, focus, quicknav, sayall, query...
  reason: "caret"
  # announcement ordering: content-first or immediate
  ordering: "content-first"
  suppress_blanks: false

  # Formatting
  report_clickable: true
  # off, speech, tones or both
  report_indentation: "off"
  ignore_blank_indentation: true
  report_spelling_errors: true
  report_font_attributes: false
  report_emphasis: false
  report_headings: true
  report_links: true
  report_lists: true
  report_tables: true
  report_block_quotes: true
  report_language: false
  language_switching: true

  # Which reasons get which behaviour
  policy:
    content_first: ["caret"]
    suppress_exits: ["focus", "quicknav"]
    continuous: ["sayall"]
    cache_only: ["onlycache"]
    blank_text: "blank"
    clickable_text: "clickable"

  # Per-document cache
  cache:
    capacity: 256
    ttl: "1h"

  # Transcript of everything spoken (zstd-compressed JSON lines)
  transcript:
    # path: "~/fieldspeech.jsonl.zst"
    compression_level: 3
`
