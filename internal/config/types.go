// Package config loads cosmosql settings from defaults, a config file, the
// environment and command-line flags, in increasing order of precedence.
package config

// Config holds all settings.
type Config struct {
	Parser  ParserConfig `koanf:"parser"`
	Output  string       `koanf:"output"`
	Color   string       `koanf:"color"`
	Verbose bool         `koanf:"verbose"`
	Log     LogConfig    `koanf:"log"`
	Format  FormatConfig `koanf:"format"`

	// File is the config file that was read, empty when none was.
	File string `koanf:"-"`
}

// ParserConfig bounds the resources a single parse may use.
type ParserConfig struct {
	MaxNestingDepth int `koanf:"max_nesting_depth"`
	MaxStackDepth   int `koanf:"max_stack_depth"`
}

// LogConfig configures the stderr logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// FormatConfig configures the fmt command.
type FormatConfig struct {
	KeywordCase string `koanf:"keyword_case"`
	Indent      int    `koanf:"indent"`
}

// Output formats.
const (
	OutputText  = "text"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
	OutputTable = "table"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)
