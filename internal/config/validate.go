package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/leapstack-labs/cosmosql/pkg/format"
	"github.com/leapstack-labs/cosmosql/pkg/parser"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

var (
	outputs    = []string{OutputText, OutputJSON, OutputYAML, OutputTable}
	colors     = []string{ColorAuto, ColorAlways, ColorNever}
	logFormats = []string{"text", "json"}
)

// Validate checks values that decoding alone cannot.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, msg string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+msg, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.Parser.MaxNestingDepth > 0, "parser.max_nesting_depth must be positive, got %d", c.Parser.MaxNestingDepth)
	check(c.Parser.MaxStackDepth > 1, "parser.max_stack_depth must be at least 2, got %d", c.Parser.MaxStackDepth)
	check(slices.Contains(outputs, c.Output), "output %q is not one of %s", c.Output, strings.Join(outputs, ", "))
	check(slices.Contains(colors, c.Color), "color %q is not one of %s", c.Color, strings.Join(colors, ", "))
	check(slices.Contains(logFormats, c.Log.Format), "log.format %q is not one of %s", c.Log.Format, strings.Join(logFormats, ", "))
	_, err := c.LogLevel()
	check(err == nil, "log.level %q is not a level", c.Log.Level)
	_, err = format.ParseCase(c.Format.KeywordCase)
	check(err == nil, "format.keyword_case %q is not one of upper, lower, title", c.Format.KeywordCase)
	check(c.Format.Indent > 0 && c.Format.Indent <= 16, "format.indent must be between 1 and 16, got %d", c.Format.Indent)

	return errors.Join(errs...)
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.Log.Level))
	return level, err
}

// ParserOptions returns the parse options the configuration implies.
func (c *Config) ParserOptions(logger *slog.Logger) []parser.Option {
	return []parser.Option{
		parser.WithMaxNestingDepth(c.Parser.MaxNestingDepth),
		parser.WithMaxStackDepth(c.Parser.MaxStackDepth),
		parser.WithLogger(logger),
	}
}

// FormatOptions returns the formatter options. The keyword case has been
// validated.
func (c *Config) FormatOptions() format.Options {
	kc, _ := format.ParseCase(c.Format.KeywordCase)
	return format.Options{KeywordCase: kc, Indent: c.Format.Indent}
}
