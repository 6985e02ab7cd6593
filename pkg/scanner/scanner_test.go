package scanner

import (
	"math"
	"strings"
	"testing"

	"github.com/leapstack-labs/cosmosql/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// kinds scans input and returns the non-trivia kinds, EOF excluded.
func kinds(input string) []token.Kind {
	var out []token.Kind
	for _, tok := range All(input) {
		if tok.Kind == token.EOF {
			break
		}
		if !tok.Kind.IsTrivia() {
			out = append(out, tok.Kind)
		}
	}
	return out
}

func TestScanOperatorsMaximalMunch(t *testing.T) {
	tests := []struct {
		input string
		want  []token.Kind
	}{
		{"<=", []token.Kind{token.LE}},
		{"<>", []token.Kind{token.NE}},
		{"<<", []token.Kind{token.LSHIFT}},
		{"<", []token.Kind{token.LT}},
		{">=", []token.Kind{token.GE}},
		{">>", []token.Kind{token.RSHIFT}},
		{">>>", []token.Kind{token.URSHIFT}},
		{">>>>", []token.Kind{token.URSHIFT, token.GT}},
		{"||", []token.Kind{token.DPIPE}},
		{"|", []token.Kind{token.PIPE}},
		{"??", []token.Kind{token.COALESCE}},
		{"?:", []token.Kind{token.QUESTION, token.COLON}},
		{"!=", []token.Kind{token.NE}},
		{"!", []token.Kind{token.ILLEGAL}},
		{"<<=", []token.Kind{token.LSHIFT, token.EQ}},
		{"a.b", []token.Kind{token.IDENT, token.DOT, token.IDENT}},
		{".5", []token.Kind{token.NUMBER}},
		{". 5", []token.Kind{token.DOT, token.NUMBER}},
		{"{}[](),:", []token.Kind{token.LBRACE, token.RBRACE, token.LBRACKET, token.RBRACKET, token.LPAREN, token.RPAREN, token.COMMA, token.COLON}},
		{"+-*/%~&^=", []token.Kind{token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT, token.TILDE, token.AMP, token.CARET, token.EQ}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, kinds(tt.input))
		})
	}
}

func TestScanNumbers(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
		value token.Value
	}{
		{"0", token.NUMBER, token.IntValue(0)},
		{"42", token.NUMBER, token.IntValue(42)},
		{"9223372036854775807", token.NUMBER, token.IntValue(math.MaxInt64)},
		{"9223372036854775808", token.NUMBER_MIN, token.FloatValue(9223372036854775808)},
		{"9223372036854775809", token.NUMBER, token.FloatValue(9223372036854775809)},
		{"1.5", token.NUMBER, token.FloatValue(1.5)},
		{".25", token.NUMBER, token.FloatValue(0.25)},
		{"1e3", token.NUMBER, token.FloatValue(1000)},
		{"2.5E-1", token.NUMBER, token.FloatValue(0.25)},
		{"0x1F", token.NUMBER, token.IntValue(31)},
		{"0X7FFFFFFFFFFFFFFF", token.NUMBER, token.IntValue(math.MaxInt64)},
		{"0x8000000000000000", token.ILLEGAL_NUMBER, token.Value{}},
		{"0x", token.ILLEGAL_NUMBER, token.Value{}},
		{"1e", token.ILLEGAL_NUMBER, token.Value{}},
		{"1e+", token.ILLEGAL_NUMBER, token.Value{}},
		{"1e999", token.ILLEGAL_NUMBER, token.Value{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := New(tt.input, nil)
			tok := s.Scan()
			assert.Equal(t, tt.kind, tok.Kind)
			assert.Equal(t, tt.value, tok.Value)
			assert.Equal(t, token.Span{Start: 0, End: uint64(len(tt.input))}, tok.Span)
			assert.Equal(t, token.EOF, s.Scan().Kind)
		})
	}
}

func TestScanNumberFollowedByDot(t *testing.T) {
	assert.Equal(t, []token.Kind{token.NUMBER, token.DOT, token.IDENT}, kinds("1.x"))
	assert.Equal(t, []token.Kind{token.IDENT, token.LBRACKET, token.NUMBER, token.RBRACKET, token.DOT, token.IDENT}, kinds("c[0].x"))
}

func TestScanStrings(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
		text  string
	}{
		{`'hello'`, token.STRING, "hello"},
		{`"hello"`, token.STRING, "hello"},
		{`''`, token.STRING, ""},
		{`'it\'s'`, token.STRING, "it's"},
		{`"a\"b"`, token.STRING, `a"b`},
		{`'tab\tnl\n'`, token.STRING, "tab\tnl\n"},
		{`'\/\\'`, token.STRING, `/\`},
		{`'é'`, token.STRING, "é"},
		{`'😀'`, token.STRING, "😀"},
		{`"it's"`, token.STRING, "it's"},
		{`'unterminated`, token.ILLEGAL_STRING, ""},
		{`'bad \q escape'`, token.ILLEGAL_STRING, ""},
		{`'\u12'`, token.ILLEGAL_STRING, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := New(tt.input, nil).Scan()
			assert.Equal(t, tt.kind, tok.Kind)
			assert.Equal(t, tt.text, tok.Text)
			assert.Equal(t, uint64(len(tt.input)), tok.Span.End)
		})
	}
}

func TestScanDoubledQuoteIsNotEscape(t *testing.T) {
	toks := All(`'a''b'`)
	require.Len(t, toks, 3)
	assert.Equal(t, token.STRING, toks[0].Kind)
	assert.Equal(t, "a", toks[0].Text)
	assert.Equal(t, token.STRING, toks[1].Kind)
	assert.Equal(t, "b", toks[1].Text)
}

func TestScanIdentifiersAndKeywords(t *testing.T) {
	toks := All("select Value FROM résumé _x1")
	var got []token.Token
	for _, tok := range toks {
		if !tok.Kind.IsTrivia() && tok.Kind != token.EOF {
			got = append(got, tok)
		}
	}
	require.Len(t, got, 5)
	assert.Equal(t, token.SELECT, got[0].Kind)
	assert.Equal(t, "select", got[0].Text)
	assert.Equal(t, token.VALUE, got[1].Kind)
	assert.Equal(t, "Value", got[1].Text)
	assert.Equal(t, token.FROM, got[2].Kind)
	assert.Equal(t, token.IDENT, got[3].Kind)
	assert.Equal(t, "résumé", got[3].Text)
	assert.Equal(t, "_x1", got[4].Text)
}

func TestScanParameters(t *testing.T) {
	toks := All("@id @ x")
	assert.Equal(t, token.PARAM, toks[0].Kind)
	assert.Equal(t, "@id", toks[0].Text)
	assert.Equal(t, token.ILLEGAL, toks[2].Kind)
	assert.Equal(t, token.Span{Start: 4, End: 5}, toks[2].Span)
}

func TestScanTrivia(t *testing.T) {
	toks := All("SELECT -- note\n  1")
	require.Len(t, toks, 6)
	assert.Equal(t, token.WHITESPACE, toks[1].Kind)
	assert.Equal(t, token.COMMENT, toks[2].Kind)
	assert.Equal(t, "-- note", toks[2].Span.Text("SELECT -- note\n  1"))
	assert.Equal(t, token.WHITESPACE, toks[3].Kind)
	assert.Equal(t, token.NUMBER, toks[4].Kind)
	assert.Equal(t, token.MINUS, All("a - b")[2].Kind)
}

func TestScanInvalidCharacter(t *testing.T) {
	toks := All("a # b")
	assert.Equal(t, token.ILLEGAL, toks[2].Kind)
	assert.Equal(t, token.Span{Start: 2, End: 3}, toks[2].Span)

	invalidUTF8 := All("\xff")
	assert.Equal(t, token.ILLEGAL, invalidUTF8[0].Kind)
	assert.Equal(t, token.EOF, invalidUTF8[1].Kind)
}

func TestScanEOFIsSticky(t *testing.T) {
	s := New("x", nil)
	s.Scan()
	for i := 0; i < 3; i++ {
		tok := s.Scan()
		assert.Equal(t, token.EOF, tok.Kind)
		assert.Equal(t, token.At(1), tok.Span)
	}
}

func TestUndoReadNeverPassesAtomStart(t *testing.T) {
	s := New("ab", nil)
	s.StartNewAtom()
	assert.Equal(t, 'a', s.read())
	s.UndoRead()
	s.UndoRead()
	assert.Equal(t, 0, s.atomEnd)
	assert.Equal(t, 'a', s.read())
	s.StartNewAtom()
	s.UndoRead()
	assert.Equal(t, 1, s.atomEnd)
}

// Concatenating the source text of every token reproduces the input.
func TestSpansTileInput(t *testing.T) {
	inputs := []string{
		"SELECT * FROM c WHERE c.age > 10",
		"SELECT VALUE {\"a\": [1, 2.5, 'x']} -- trailing",
		"  @p<>0x1F||c['k']??!\t#",
		"'unterminated",
		"",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			var b strings.Builder
			var prev uint64
			for _, tok := range All(input) {
				assert.Equal(t, prev, tok.Span.Start, "gap before %s", tok)
				b.WriteString(tok.Span.Text(input))
				prev = tok.Span.End
			}
			assert.Equal(t, input, b.String())
		})
	}
}

func TestTextCacheInterning(t *testing.T) {
	cache := NewTextCache()
	s := New("c.name = 'x' AND c.name = 'x' AND 'a\\nb' = 'a\\nb'", cache)
	var idents []string
	for tok := s.Scan(); tok.Kind != token.EOF; tok = s.Scan() {
		if tok.Kind == token.IDENT {
			idents = append(idents, tok.Text)
		}
	}
	require.Len(t, idents, 4)
	// c, name, x, and, a\nb
	assert.Equal(t, 5, cache.Len())
	text, ok := cache.Lookup(`'a\nb'`)
	require.True(t, ok)
	assert.Equal(t, "a\nb", text)
}

func TestScanDoesNotAllocateForPlainTokens(t *testing.T) {
	input := "SELECT c.id, c.age * 2 FROM c WHERE c.age >= 10.5 AND c.id != 0x10"
	cache := NewTextCache()
	// Warm the cache so the run measures scanning only.
	warm := New(input, cache)
	for warm.Scan().Kind != token.EOF {
	}

	allocs := testing.AllocsPerRun(50, func() {
		s := Scanner{text: input, cache: cache}
		for s.Scan().Kind != token.EOF {
		}
	})
	assert.Zero(t, allocs)
}
