package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/cosmosql/pkg/format"
	"github.com/leapstack-labs/cosmosql/pkg/parser"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("output", DefaultOutput, "")
	fs.String("log-level", DefaultLogLevel, "")
	fs.Int("max-nesting-depth", parser.DefaultMaxNestingDepth, "")
	fs.Int("max-stack-depth", parser.DefaultMaxStackDepth, "")
	fs.String("input", "", "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	want := Default()
	assert.Equal(t, want, cfg)
	assert.Empty(t, cfg.File)
}

func TestLoad_Files(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: "cosmosql.yaml",
			content: `
parser:
  max_nesting_depth: 64
output: json
log:
  level: debug
format:
  keyword_case: lower
`,
		},
		{
			name: "toml",
			file: "cosmosql.toml",
			content: `
output = "json"

[parser]
max_nesting_depth = 64

[log]
level = "debug"

[format]
keyword_case = "lower"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, tt.file, tt.content)

			cfg, err := Load(path, nil)
			require.NoError(t, err)

			assert.Equal(t, path, cfg.File)
			assert.Equal(t, 64, cfg.Parser.MaxNestingDepth)
			assert.Equal(t, parser.DefaultMaxStackDepth, cfg.Parser.MaxStackDepth)
			assert.Equal(t, OutputJSON, cfg.Output)
			assert.Equal(t, "debug", cfg.Log.Level)
			assert.Equal(t, format.Lower, cfg.FormatOptions().KeywordCase)
		})
	}
}

func TestLoad_Discover(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, "cosmosql.yml", "output: yaml\n")

	assert.Equal(t, filepath.Join(".", "cosmosql.yml"), Discover("."))

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, OutputYAML, cfg.Output)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cosmosql.yaml", `
output: json
parser:
  max_nesting_depth: 10
  max_stack_depth: 100
log:
  level: info
`)

	t.Setenv("COSMOSQL_PARSER__MAX_NESTING_DEPTH", "20")
	t.Setenv("COSMOSQL_LOG__LEVEL", "error")

	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"--max-nesting-depth=30", "--input=q.sql"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Parser.MaxNestingDepth, "flag beats env")
	assert.Equal(t, "error", cfg.Log.Level, "env beats file")
	assert.Equal(t, 100, cfg.Parser.MaxStackDepth, "file beats default")
	assert.Equal(t, OutputJSON, cfg.Output, "unchanged flag does not override")
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{"unknown key", "parser:\n  max_depth: 3\n", "max_depth"},
		{"bad output", "output: xml\n", "output \"xml\""},
		{"bad depth", "parser:\n  max_nesting_depth: 0\n", "max_nesting_depth must be positive"},
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"bad keyword case", "format:\n  keyword_case: shouting\n", "keyword_case"},
		{"bad yaml", "output: [\n", "error reading config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "cosmosql.yaml", tt.content)
			_, err := Load(path, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
		assert.Error(t, err)
	})
}

func TestValidate_Invalid(t *testing.T) {
	cfg := Default()
	cfg.Color = "sometimes"
	cfg.Format.Indent = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "color")
	assert.Contains(t, err.Error(), "format.indent")
}

func TestConfig_Accessors(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "debug"

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	assert.Len(t, cfg.ParserOptions(nil), 3)
	assert.Equal(t, format.Options{KeywordCase: format.Upper, Indent: DefaultIndent}, cfg.FormatOptions())
}
