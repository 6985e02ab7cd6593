package diag

import (
	"errors"
	"testing"

	"github.com/leapstack-labs/cosmosql/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodePhase(t *testing.T) {
	tests := []struct {
		code Code
		want Phase
	}{
		{IncorrectSyntax, PhaseParse},
		{StackOverflow, PhaseParse},
		{IdentifierNotResolved, PhaseBind},
		{UnsupportedExpression, PhaseCompile},
		{RuntimeOverflow, PhaseRuntime},
		{UnknownCode, PhaseUnknown},
		{Code(9000), PhaseUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.Phase())
		})
	}
}

func TestParseCodesAreDistinct(t *testing.T) {
	codes := []Code{
		IncorrectSyntax, UnexpectedEndOfInput, InvalidToken, InvalidNumericToken,
		InvalidStringToken, SelectStarWithoutFrom, QueryTooComplex, StackOverflow,
	}
	seen := map[Code]bool{}
	for _, c := range codes {
		assert.False(t, seen[c], "duplicate code %s", c)
		seen[c] = true
		assert.Equal(t, PhaseParse, c.Phase())
		assert.NotEqual(t, "Unknown diagnostic", c.Title())
	}
}

func TestCodeString(t *testing.T) {
	assert.Equal(t, "SC1001", IncorrectSyntax.String())
	assert.Equal(t, "SC2001", IdentifierNotResolved.String())
	assert.Equal(t, "parse", PhaseParse.String())
}

func TestMessageQuotesSourceText(t *testing.T) {
	src := "SELECT FROM c"
	d := New(IncorrectSyntax, token.NewSpan(7, 11))
	assert.Equal(t, "Syntax error, incorrect syntax near 'FROM'.", d.Message(src))

	eof := New(UnexpectedEndOfInput, token.At(13))
	assert.Equal(t, "Syntax error, unexpected end of file.", eof.Message(src))
}

func TestRender(t *testing.T) {
	src := "SELECT *\nFROM c WHERE c.a >> "
	d := New(IncorrectSyntax, token.NewSpan(16, 21))
	want := "SC1001: Syntax error, incorrect syntax near 'WHERE'.\n" +
		"  --> q.sql:2:8\n" +
		"  |\n" +
		"2 | FROM c WHERE c.a >> \n" +
		"  |        ^^^^^\n"
	assert.Equal(t, want, d.Render("q.sql", src))
}

func TestRenderEmptySpan(t *testing.T) {
	src := "SELECT"
	d := New(UnexpectedEndOfInput, token.At(6))
	out := d.Render("", src)
	assert.Contains(t, out, "<query>:1:7")
	assert.Contains(t, out, "      ^\n")
}

func TestListOrderAndErr(t *testing.T) {
	var l List
	require.NoError(t, l.Err())

	l.Add(InvalidToken, token.NewSpan(4, 5))
	l.Add(IncorrectSyntax, token.NewSpan(1, 2))
	assert.Equal(t, []Code{InvalidToken, IncorrectSyntax}, l.Codes())
	assert.Equal(t, 2, l.Len())

	err := l.Err()
	require.Error(t, err)
	var d Diagnostic
	require.True(t, errors.As(err, &d))
	assert.Equal(t, InvalidToken, d.Code)
}

func TestSuggestKeyword(t *testing.T) {
	tests := []struct {
		word string
		want string
		ok   bool
	}{
		{"SELCT", "SELECT", true},
		{"frm", "FROM", true},
		{"form", "FOR", true},
		{"wehre", "WHERE", true},
		{"SELECT", "", false},
		{"x", "", false},
		{"customer", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			got, ok := SuggestKeyword(tt.word)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNotes(t *testing.T) {
	src := "SELECT * FRM c"
	d := New(IncorrectSyntax, token.NewSpan(9, 12))
	assert.Equal(t, []string{"did you mean 'FROM'?"}, d.Notes(src))
	assert.Nil(t, New(QueryTooComplex, token.NewSpan(0, 6)).Notes(src))
}
