// Package config holds the fieldspeech configuration: reading defaults,
// formatting options, the reason policy and the cache settings.
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/dgnsrekt/fieldspeech/internal/cache"
	"github.com/dgnsrekt/fieldspeech/pkg/speech"
)

// Config is the complete configuration.
type Config struct {
	// Reading settings
	Unit           string `yaml:"unit" env:"FIELDSPEECH_UNIT" envDefault:"line"`
	Reason         string `yaml:"reason" env:"FIELDSPEECH_REASON" envDefault:"caret"`
	Ordering       string `yaml:"ordering" env:"FIELDSPEECH_ORDERING" envDefault:"content-first"`
	SuppressBlanks bool   `yaml:"suppress_blanks" env:"FIELDSPEECH_SUPPRESS_BLANKS" envDefault:"false"`

	// Formatting settings
	ReportClickable        bool   `yaml:"report_clickable" env:"FIELDSPEECH_REPORT_CLICKABLE" envDefault:"true"`
	ReportIndentation      string `yaml:"report_indentation" env:"FIELDSPEECH_REPORT_INDENTATION" envDefault:"off"`
	IgnoreBlankIndentation bool   `yaml:"ignore_blank_indentation" env:"FIELDSPEECH_IGNORE_BLANK_INDENTATION" envDefault:"true"`
	ReportSpellingErrors   bool   `yaml:"report_spelling_errors" env:"FIELDSPEECH_REPORT_SPELLING_ERRORS" envDefault:"true"`
	ReportFontAttributes   bool   `yaml:"report_font_attributes" env:"FIELDSPEECH_REPORT_FONT_ATTRIBUTES" envDefault:"false"`
	ReportEmphasis         bool   `yaml:"report_emphasis" env:"FIELDSPEECH_REPORT_EMPHASIS" envDefault:"false"`
	ReportHeadings         bool   `yaml:"report_headings" env:"FIELDSPEECH_REPORT_HEADINGS" envDefault:"true"`
	ReportLinks            bool   `yaml:"report_links" env:"FIELDSPEECH_REPORT_LINKS" envDefault:"true"`
	ReportLists            bool   `yaml:"report_lists" env:"FIELDSPEECH_REPORT_LISTS" envDefault:"true"`
	ReportTables           bool   `yaml:"report_tables" env:"FIELDSPEECH_REPORT_TABLES" envDefault:"true"`
	ReportBlockQuotes      bool   `yaml:"report_block_quotes" env:"FIELDSPEECH_REPORT_BLOCK_QUOTES" envDefault:"true"`
	ReportLanguage         bool   `yaml:"report_language" env:"FIELDSPEECH_REPORT_LANGUAGE" envDefault:"false"`
	LanguageSwitching      bool   `yaml:"language_switching" env:"FIELDSPEECH_LANGUAGE_SWITCHING" envDefault:"true"`

	// Policy settings
	ContentFirstReasons []string `yaml:"content_first_reasons" env:"FIELDSPEECH_CONTENT_FIRST_REASONS" envDefault:"caret"`
	SuppressExitReasons []string `yaml:"suppress_exit_reasons" env:"FIELDSPEECH_SUPPRESS_EXIT_REASONS" envDefault:"focus,quicknav"`
	ContinuousReasons   []string `yaml:"continuous_reasons" env:"FIELDSPEECH_CONTINUOUS_REASONS" envDefault:"sayall"`
	CacheOnlyReasons    []string `yaml:"cache_only_reasons" env:"FIELDSPEECH_CACHE_ONLY_REASONS" envDefault:"onlycache"`
	BlankText           string   `yaml:"blank_text" env:"FIELDSPEECH_BLANK_TEXT" envDefault:"blank"`
	ClickableText       string   `yaml:"clickable_text" env:"FIELDSPEECH_CLICKABLE_TEXT" envDefault:"clickable"`

	// Cache settings
	CacheCapacity int           `yaml:"cache_capacity" env:"FIELDSPEECH_CACHE_CAPACITY" envDefault:"256"`
	CacheTTL      time.Duration `yaml:"cache_ttl" env:"FIELDSPEECH_CACHE_TTL" envDefault:"1h"`

	// Output settings
	Width            int    `yaml:"width" env:"FIELDSPEECH_WIDTH" envDefault:"0"`
	Transcript       string `yaml:"transcript" env:"FIELDSPEECH_TRANSCRIPT"`
	CompressionLevel int    `yaml:"compression_level" env:"FIELDSPEECH_COMPRESSION_LEVEL" envDefault:"3"`
}

// Ordering names accepted by the ordering setting.
const (
	OrderingContentFirst = "content-first"
	OrderingImmediate    = "immediate"
)

var (
	validUnits       = []string{"character", "word", "line", "paragraph", "cell", "none"}
	validOrderings   = []string{OrderingContentFirst, OrderingImmediate}
	validIndentation = []string{"off", "speech", "tones", "both"}
)

// FromEnv returns the configuration from the environment, using the
// defaults for anything unset.
func FromEnv() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return cfg, fmt.Errorf("error parsing config: %w", err)
	}
	return cfg, nil
}

// Default returns the default configuration.
func Default() Config {
	var cfg Config
	_ = env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}})
	return cfg
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	c.Unit = strings.ToLower(c.Unit)
	if !slices.Contains(validUnits, c.Unit) {
		return fmt.Errorf("invalid unit '%s': must be one of %v", c.Unit, validUnits)
	}

	c.Ordering = strings.ToLower(c.Ordering)
	if !slices.Contains(validOrderings, c.Ordering) {
		return fmt.Errorf("invalid ordering '%s': must be one of %v", c.Ordering, validOrderings)
	}

	c.ReportIndentation = strings.ToLower(c.ReportIndentation)
	if !slices.Contains(validIndentation, c.ReportIndentation) {
		return fmt.Errorf("invalid indentation reporting '%s': must be one of %v", c.ReportIndentation, validIndentation)
	}

	if c.Reason == "" {
		return fmt.Errorf("reason must not be empty")
	}

	if c.CacheCapacity < 0 {
		return fmt.Errorf("cache capacity must not be negative, got %d", c.CacheCapacity)
	}

	if c.CompressionLevel < 1 || c.CompressionLevel > 22 {
		return fmt.Errorf("compression level must be between 1 and 22, got %d", c.CompressionLevel)
	}

	if c.Width < 0 {
		return fmt.Errorf("width must not be negative, got %d", c.Width)
	}

	return nil
}

// QueryUnit returns the configured unit.
func (c Config) QueryUnit() speech.Unit {
	if c.Unit == "none" {
		return speech.UnitNone
	}
	return speech.Unit(c.Unit)
}

// QueryReason returns the configured reason.
func (c Config) QueryReason() speech.Reason {
	return speech.Reason(c.Reason)
}

// SpeakerOrdering returns the configured announcement ordering.
func (c Config) SpeakerOrdering() speech.Ordering {
	if c.Ordering == OrderingImmediate {
		return speech.OrderingImmediate
	}
	return speech.OrderingContentFirst
}

// FormatConfig returns the formatting options.
func (c Config) FormatConfig() speech.FormatConfig {
	cfg := speech.DefaultFormatConfig()
	cfg.ReportClickable = c.ReportClickable
	cfg.IgnoreBlankLinesForIndentation = c.IgnoreBlankIndentation
	cfg.ReportSpellingErrors = c.ReportSpellingErrors
	cfg.ReportFontAttributes = c.ReportFontAttributes
	cfg.ReportEmphasis = c.ReportEmphasis
	cfg.ReportHeadings = c.ReportHeadings
	cfg.ReportLinks = c.ReportLinks
	cfg.ReportLists = c.ReportLists
	cfg.ReportTables = c.ReportTables
	cfg.ReportBlockQuotes = c.ReportBlockQuotes
	cfg.ReportLanguage = c.ReportLanguage
	cfg.AutoLanguageSwitching = c.LanguageSwitching

	switch c.ReportIndentation {
	case "speech":
		cfg.ReportLineIndentation = speech.IndentationSpeech
	case "tones":
		cfg.ReportLineIndentation = speech.IndentationTones
	case "both":
		cfg.ReportLineIndentation = speech.IndentationSpeechAndTones
	default:
		cfg.ReportLineIndentation = speech.IndentationOff
	}
	return cfg
}

// Policy returns the reason policy.
func (c Config) Policy() speech.Policy {
	p := speech.DefaultPolicy()
	p.ContentFirst = reasons(c.ContentFirstReasons)
	p.SuppressExits = reasons(c.SuppressExitReasons)
	p.ContinuousReading = reasons(c.ContinuousReasons)
	p.CacheOnly = reasons(c.CacheOnlyReasons)
	p.BlankText = c.BlankText
	p.ClickableText = c.ClickableText
	return p
}

// CacheConfig returns the cache store settings.
func (c Config) CacheConfig() cache.Config {
	cfg := cache.DefaultConfig()
	cfg.Capacity = c.CacheCapacity
	cfg.TTL = c.CacheTTL
	if c.CacheTTL <= 0 {
		cfg.CleanupInterval = 0
	}
	return cfg
}

func reasons(names []string) []speech.Reason {
	out := make([]speech.Reason, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, speech.Reason(n))
		}
	}
	return out
}
