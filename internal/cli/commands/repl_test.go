package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/cosmosql/internal/cli/output"
	"github.com/leapstack-labs/cosmosql/internal/cli/testutil"
	"github.com/leapstack-labs/cosmosql/internal/config"
	logtest "github.com/leapstack-labs/cosmosql/internal/testutil"
)

func newTestSession(t *testing.T) (*replSession, *testutil.TestRenderer) {
	t.Helper()
	tr := testutil.NewTestRenderer(output.ModeText, false)
	cc := &CommandContext{
		Cfg:      config.Default(),
		Logger:   logtest.NewTestLogger(t),
		Renderer: tr.Renderer,
	}
	return newREPLSession(cc), tr
}

func TestREPLSession_MultiLine(t *testing.T) {
	s, tr := newTestSession(t)

	assert.Equal(t, replPrompt, s.prompt())
	assert.False(t, s.feed("SELECT c.id"))
	assert.Equal(t, replContPrompt, s.prompt())
	assert.Empty(t, tr.Output())

	assert.False(t, s.feed("FROM c;"))
	assert.Equal(t, replPrompt, s.prompt())
	assert.Equal(t, "SELECT c.id FROM c\n", tr.Output())
}

func TestREPLSession_Diagnostics(t *testing.T) {
	s, tr := newTestSession(t)

	assert.False(t, s.feed("SELECT FROM;"))
	assert.Contains(t, tr.Output(), "SC1001")
	assert.Contains(t, tr.Output(), "--> <repl>:1:8")
}

func TestREPLSession_Modes(t *testing.T) {
	s, tr := newTestSession(t)

	s.feed(".mode fmt")
	s.feed("select * from c;")
	assert.Equal(t, "SELECT\n  *\nFROM c\n", tr.Output())

	tr.Reset()
	s.feed(".mode tokens")
	s.feed("SELECT 1;")
	assert.Contains(t, tr.Output(), "SELECT")
	assert.Contains(t, tr.Output(), "NUMBER")
	assert.Contains(t, tr.Output(), "EOF")

	tr.Reset()
	s.feed(".mode")
	assert.Equal(t, "mode: tokens\n", tr.Output())

	s.feed(".mode sideways")
	assert.Contains(t, tr.ErrorOutput(), "Unknown mode: sideways")
	assert.Equal(t, replModeTokens, s.mode)
}

func TestREPLSession_DotCommands(t *testing.T) {
	s, tr := newTestSession(t)

	assert.False(t, s.feed(".help"))
	assert.Contains(t, tr.Output(), ".mode tree|fmt|tokens")

	assert.False(t, s.feed(".nope"))
	assert.Contains(t, tr.ErrorOutput(), "Unknown command: .nope")

	assert.False(t, s.feed("   "))
	assert.True(t, s.feed(".quit"))
	assert.True(t, s.feed(".EXIT"))
}

func TestREPLSession_Reset(t *testing.T) {
	s, tr := newTestSession(t)

	s.feed("SELECT")
	s.reset()
	assert.Equal(t, replPrompt, s.prompt())

	// A dot line after a reset is a command again.
	assert.True(t, s.feed(".quit"))
	assert.Empty(t, tr.Output())
}

func TestKeywordCompleter(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    []string
		wantLen int
	}{
		{"keyword upper", "SEL", []string{"ECT "}, 3},
		{"keyword lower", "select * fr", []string{"om "}, 2},
		{"several", "SELECT * FROM c ORDER BY c.a DE", []string{"SC "}, 2},
		{"dot command", ".mo", []string{"de "}, 3},
		{"nothing to complete", "SELECT ", nil, 0},
		{"no match", "SELECT xyz", nil, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := []rune(tt.line)
			got, n := keywordCompleter{}.Do(line, len(line))

			var words []string
			for _, g := range got {
				words = append(words, string(g))
			}
			assert.Equal(t, tt.want, words)
			assert.Equal(t, tt.wantLen, n)
		})
	}
}
