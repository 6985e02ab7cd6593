package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/cosmosql/internal/config"
)

func run(t *testing.T, stdin string, args ...string) (status int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	status = Run(args, strings.NewReader(stdin), &out, &errOut)
	return status, out.String(), errOut.String()
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "cosmosql", cmd.Use)
	flags := []string{"config", "output", "color", "verbose", "log-level", "log-format", "max-nesting-depth", "max-stack-depth"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"parse", "tokens", "fmt", "check", "repl", "grammar", "version", "completion"} {
		assert.Contains(t, names, want)
	}
}

func TestRun_FlagsReachConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	status, out, stderr := run(t, "", "fmt", "--keyword-case", "lower", "--indent", "4", "select c.a from c")
	require.Equal(t, 0, status, stderr)
	assert.Equal(t, "select\n    c.a\nfrom c\n", out)

	status, out, _ = run(t, "", "parse", "--max-nesting-depth", "2", "SELECT VALUE 1+2+3+4+5+6")
	assert.Equal(t, 1, status)
	assert.Contains(t, out, "SC1007")
}

func TestRun_EnvAndFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cosmosql.yaml"), []byte("format:\n  keyword_case: title\n"), 0o600))

	status, out, stderr := run(t, "", "fmt", "SELECT * FROM c")
	require.Equal(t, 0, status, stderr)
	assert.Equal(t, "Select\n  *\nFrom c\n", out)

	t.Setenv("COSMOSQL_OUTPUT", "json")
	status, out, stderr = run(t, "", "parse", "-v", "SELECT 1")
	require.Equal(t, 0, status, stderr)

	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	assert.Equal(t, "SELECT 1", res["query"])
	assert.Contains(t, stderr, "Using config file: cosmosql.yaml")
}

func TestRun_ExplicitConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("output = \"yaml\"\n"), 0o600))

	status, out, stderr := run(t, "", "--config", path, "parse", "SELECT 1")
	require.Equal(t, 0, status, stderr)
	assert.Contains(t, out, "query: SELECT 1")

	status, _, stderr = run(t, "", "--config", filepath.Join(t.TempDir(), "none.yaml"), "parse", "SELECT 1")
	assert.Equal(t, 1, status)
	assert.Contains(t, stderr, "error reading config file")
}

func TestRun_DebugLogging(t *testing.T) {
	t.Chdir(t.TempDir())

	status, _, stderr := run(t, "", "parse", "--log-level", "debug", "--log-format", "json", "SELECT 1")
	require.Equal(t, 0, status, stderr)

	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	require.NotEmpty(t, lines)
	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first), lines[0])
	assert.Equal(t, "DEBUG", first["level"])
	assert.Contains(t, stderr, `"msg":"accept"`)
}

func TestRun_DiagnosticsAreNotErrors(t *testing.T) {
	t.Chdir(t.TempDir())

	status, out, stderr := run(t, "", "parse", "SELECT *")
	assert.Equal(t, 1, status)
	assert.Contains(t, out, "SC1006")
	assert.NotContains(t, stderr, "Error:")
}

func TestRun_Completion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			status, out, stderr := run(t, "", "completion", shell)
			require.Equal(t, 0, status, stderr)
			assert.Contains(t, out, "cosmosql")
		})
	}

	status, _, _ := run(t, "", "completion", "tcsh")
	assert.Equal(t, 1, status)
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		verbose bool
		debug   bool
		json    bool
	}{
		{name: "default", level: "warn", format: "text"},
		{name: "json", level: "info", format: "json", json: true},
		{name: "verbose", level: "error", format: "text", verbose: true, debug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Log.Level, cfg.Log.Format, cfg.Verbose = tt.level, tt.format, tt.verbose

			var buf bytes.Buffer
			logger, err := newLogger(&buf, cfg)
			require.NoError(t, err)

			logger.Debug("probe")
			assert.Equal(t, tt.debug, buf.Len() > 0)

			logger.Error("boom")
			assert.Equal(t, tt.json, strings.HasPrefix(strings.TrimSpace(buf.String()), "{"))
		})
	}

	cfg := config.Default()
	cfg.Log.Level = "chatty"
	_, err := newLogger(&bytes.Buffer{}, cfg)
	assert.Error(t, err)
}

func TestVersionFlag(t *testing.T) {
	status, out, _ := run(t, "", "--version")
	assert.Equal(t, 0, status)
	assert.Equal(t, "cosmosql "+Version+"\n", out)
}
