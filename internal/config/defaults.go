package config

import "github.com/leapstack-labs/cosmosql/pkg/parser"

// Default values.
const (
	DefaultOutput      = OutputText
	DefaultColor       = ColorAuto
	DefaultLogLevel    = "warn"
	DefaultLogFormat   = "text"
	DefaultKeywordCase = "upper"
	DefaultIndent      = 2
)

// defaults returns the lowest configuration layer, keyed like the config
// file.
func defaults() map[string]any {
	return map[string]any{
		"parser.max_nesting_depth": parser.DefaultMaxNestingDepth,
		"parser.max_stack_depth":   parser.DefaultMaxStackDepth,
		"output":                   DefaultOutput,
		"color":                    DefaultColor,
		"verbose":                  false,
		"log.level":                DefaultLogLevel,
		"log.format":               DefaultLogFormat,
		"format.keyword_case":      DefaultKeywordCase,
		"format.indent":            DefaultIndent,
	}
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Parser: ParserConfig{
			MaxNestingDepth: parser.DefaultMaxNestingDepth,
			MaxStackDepth:   parser.DefaultMaxStackDepth,
		},
		Output: DefaultOutput,
		Color:  DefaultColor,
		Log:    LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Format: FormatConfig{KeywordCase: DefaultKeywordCase, Indent: DefaultIndent},
	}
}
