package parser

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/cosmosql/internal/testutil"
	"github.com/leapstack-labs/cosmosql/pkg/ast"
	"github.com/leapstack-labs/cosmosql/pkg/diag"
	"github.com/leapstack-labs/cosmosql/pkg/scanner"
	"github.com/leapstack-labs/cosmosql/pkg/syntax"
	"github.com/leapstack-labs/cosmosql/pkg/token"
)

func TestParseValid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"select star", "SELECT * FROM c WHERE c.age > 10", "SELECT * FROM c WHERE (c.age > 10)"},
		{"lower case", "select value c.name from c", "SELECT VALUE c.name FROM c"},
		{"select list", "SELECT c.id, c.name AS n FROM root c", "SELECT c.id, c.name AS n FROM root AS c"},
		{"top distinct", "SELECT DISTINCT TOP 5 c.id FROM c", "SELECT DISTINCT TOP 5 c.id FROM c"},
		{"top param", "SELECT TOP @n * FROM c", "SELECT TOP @n * FROM c"},
		{"precedence", "SELECT VALUE 1 + 2 * 3 FROM c", "SELECT VALUE (1 + (2 * 3)) FROM c"},
		{"left assoc", "SELECT VALUE 1 - 2 - 3 FROM c", "SELECT VALUE ((1 - 2) - 3) FROM c"},
		{"logical", "SELECT * FROM c WHERE c.a = 1 AND NOT c.b OR c.c", "SELECT * FROM c WHERE (((c.a = 1) AND (NOT c.b)) OR c.c)"},
		{"between", "SELECT * FROM c WHERE c.a NOT BETWEEN 1 AND 5", "SELECT * FROM c WHERE (c.a NOT BETWEEN 1 AND 5)"},
		{"in", "SELECT * FROM c WHERE c.a IN (1, 2, 3)", "SELECT * FROM c WHERE (c.a IN (1, 2, 3))"},
		{"like escape", `SELECT * FROM c WHERE c.a LIKE "x!%" ESCAPE "!"`, `SELECT * FROM c WHERE (c.a LIKE "x!%" ESCAPE "!")`},
		{"coalesce and conditional", "SELECT VALUE c.a ?? c.b ? 1 : 2 FROM c", "SELECT VALUE ((c.a ?? c.b) ? 1 : 2) FROM c"},
		{"indexers", `SELECT VALUE c.tags[0]["x"] FROM c`, `SELECT VALUE c.tags[0]["x"] FROM c`},
		{"constructors", `SELECT VALUE {"a": [1, true, null], "b": {}} FROM c`, `SELECT VALUE {"a": [1, true, null], "b": {}} FROM c`},
		{"functions", "SELECT VALUE ARRAY_LENGTH(c.tags) + udf.score(c) FROM c", "SELECT VALUE (ARRAY_LENGTH(c.tags) + udf.score(c)) FROM c"},
		{"join iterator", "SELECT t FROM c JOIN t IN c.tags", "SELECT t FROM c JOIN t IN c.tags"},
		{"path collection", `SELECT * FROM c.kids[1]["x"] k`, `SELECT * FROM c.kids[1]["x"] AS k`},
		{"subquery collection", "SELECT * FROM (SELECT * FROM c) s", "SELECT * FROM (SELECT * FROM c) AS s"},
		{"exists", "SELECT * FROM c WHERE EXISTS(SELECT VALUE t FROM t IN c.tags)", "SELECT * FROM c WHERE EXISTS(SELECT VALUE t FROM t IN c.tags)"},
		{"array subquery", "SELECT ARRAY(SELECT VALUE 1) AS a FROM c", "SELECT ARRAY(SELECT VALUE 1) AS a FROM c"},
		{"clauses", "SELECT c.a FROM c GROUP BY c.a ORDER BY c.a DESC OFFSET 10 LIMIT 5", "SELECT c.a FROM c GROUP BY c.a ORDER BY c.a DESC OFFSET 10 LIMIT 5"},
		{"min int", "SELECT VALUE -9223372036854775808", "SELECT VALUE -9223372036854775808"},
		{"min magnitude alone", "SELECT VALUE 9223372036854775808 FROM c", "SELECT VALUE 9.223372036854776e+18 FROM c"},
		{"min magnitude subtracted", "SELECT VALUE 1 - 9223372036854775808", "SELECT VALUE (1 - 9.223372036854776e+18)"},
		{"min magnitude parenthesized", "SELECT VALUE -(9223372036854775808)", "SELECT VALUE (-9.223372036854776e+18)"},
		{"past min magnitude", "SELECT VALUE 9223372036854775809", "SELECT VALUE 9.223372036854776e+18"},
		{"unary", "SELECT VALUE -c.a + ~1", "SELECT VALUE ((-c.a) + (~1))"},
		{"comments", "SELECT * -- all\nFROM c", "SELECT * FROM c"},
		{"no from", "SELECT VALUE 1", "SELECT VALUE 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Parse(tt.input)
			require.NoError(t, err)
			require.Empty(t, out.Diagnostics)
			require.NotNil(t, out.Root)
			assert.True(t, out.OK())
			assert.Equal(t, tt.want, ast.String(out.Root))
		})
	}
}

func TestParseSoftKeywords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"function named LEFT", "SELECT LEFT(c.n, 3) FROM c", "SELECT LEFT(c.n, 3) FROM c"},
		{"property named value", "SELECT c.value FROM c", "SELECT c.value FROM c"},
		{"alias named desc", "SELECT c.a AS desc FROM c", "SELECT c.a AS desc FROM c"},
		{"order direction", "SELECT * FROM c ORDER BY c.x DESC", "SELECT * FROM c ORDER BY c.x DESC"},
		{"select value", "SELECT VALUE c FROM c", "SELECT VALUE c FROM c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Parse(tt.input)
			require.NoError(t, err)
			require.Empty(t, out.Diagnostics)
			assert.Equal(t, tt.want, ast.String(out.Root))
		})
	}
}

func TestParseDiagnostics(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []diag.Code
		span  token.Span // of the first diagnostic
	}{
		{"select star without from", "SELECT *", []diag.Code{diag.SelectStarWithoutFrom}, token.NewSpan(0, 8)},
		{"missing selection", "SELECT FROM", []diag.Code{diag.IncorrectSyntax}, token.NewSpan(7, 11)},
		{"unexpected end", "SELECT * FROM c WHERE", []diag.Code{diag.UnexpectedEndOfInput}, token.At(21)},
		{"invalid token", "SELECT # FROM c", []diag.Code{diag.InvalidToken}, token.NewSpan(7, 8)},
		{"invalid number", "SELECT 1e FROM c", []diag.Code{diag.InvalidNumericToken}, token.NewSpan(7, 9)},
		{"unterminated string", "SELECT 'abc", []diag.Code{diag.InvalidStringToken}, token.NewSpan(7, 11)},
		{"empty select item", "SELECT a, , b FROM c", []diag.Code{diag.IncorrectSyntax}, token.NewSpan(10, 11)},
		{
			"two regions",
			"SELECT a, , b FROM c WHERE c.x = = 1",
			[]diag.Code{diag.IncorrectSyntax, diag.IncorrectSyntax},
			token.NewSpan(10, 11),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Nil(t, out.Root)
			assert.False(t, out.OK())
			require.Equal(t, tt.want, out.Diagnostics.Codes())
			assert.Equal(t, tt.span, out.Diagnostics[0].Span)
		})
	}
}

func TestParseMessage(t *testing.T) {
	const input = "SELECT FROM"
	out, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, out.Diagnostics, 1)
	assert.Equal(t, "Syntax error, incorrect syntax near 'FROM'.", out.Diagnostics[0].Message(input))
}

func TestParseNestingGuard(t *testing.T) {
	t.Run("configured limit", func(t *testing.T) {
		input := "SELECT VALUE 1" + strings.Repeat("+1", 40) + " FROM c"
		out, err := Parse(input, WithMaxNestingDepth(16))
		require.NoError(t, err)
		assert.Nil(t, out.Root)
		assert.Equal(t, []diag.Code{diag.QueryTooComplex}, out.Diagnostics.Codes())
	})

	t.Run("default limit", func(t *testing.T) {
		input := "SELECT VALUE 1" + strings.Repeat(" + 1", DefaultMaxNestingDepth+50)
		out, err := Parse(input)
		require.NoError(t, err)
		assert.Nil(t, out.Root)
		assert.Equal(t, []diag.Code{diag.QueryTooComplex}, out.Diagnostics.Codes())
	})

	chains := []struct {
		name  string
		input string
	}{
		{"coalesce", "SELECT VALUE c.a" + strings.Repeat(" ?? c.a", 40) + " FROM c"},
		{"member access", "SELECT VALUE c" + strings.Repeat(".a", 40) + " FROM c"},
		{"indexing", "SELECT VALUE c" + strings.Repeat("[0]", 40) + " FROM c"},
	}
	for _, tt := range chains {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Parse(tt.input, WithMaxNestingDepth(16))
			require.NoError(t, err)
			assert.Nil(t, out.Root)
			assert.Equal(t, []diag.Code{diag.QueryTooComplex}, out.Diagnostics.Codes())

			out, err = Parse(tt.input)
			require.NoError(t, err)
			assert.True(t, out.OK())
		})
	}

	t.Run("under the limit", func(t *testing.T) {
		input := "SELECT VALUE 1" + strings.Repeat("+1", 10) + " FROM c"
		out, err := Parse(input, WithMaxNestingDepth(16))
		require.NoError(t, err)
		require.Empty(t, out.Diagnostics)
		assert.Equal(t, 11, ast.Depth(out.Root.Select.Spec.(*ast.SelectValue).Expr, 16))
	})
}

func TestParseStackGuard(t *testing.T) {
	t.Run("unmatched parentheses", func(t *testing.T) {
		out, err := Parse("SELECT " + strings.Repeat("(", 5000))
		require.NoError(t, err)
		assert.Nil(t, out.Root)
		assert.Equal(t, []diag.Code{diag.StackOverflow}, out.Diagnostics.Codes())
	})

	t.Run("configured limit", func(t *testing.T) {
		input := "SELECT VALUE " + strings.Repeat("(", 20) + "1" + strings.Repeat(")", 20)
		out, err := Parse(input, WithMaxStackDepth(16))
		require.NoError(t, err)
		assert.Equal(t, []diag.Code{diag.StackOverflow}, out.Diagnostics.Codes())

		out, err = Parse(input)
		require.NoError(t, err)
		assert.Empty(t, out.Diagnostics)
	})
}

func TestParseSpans(t *testing.T) {
	const input = "SELECT * FROM c WHERE c.age > 10"
	out, err := Parse(input)
	require.NoError(t, err)
	q := out.Root

	assert.Equal(t, token.NewSpan(0, 32), q.Span)
	assert.Equal(t, "SELECT *", q.Select.Span.Text(input))
	assert.Equal(t, "FROM c", q.From.Span.Text(input))
	assert.Equal(t, "c.age > 10", q.Where.Cond.GetSpan().Text(input))
	assert.Nil(t, q.GroupBy)
	assert.Nil(t, q.OffsetLimit)
}

func TestParseRoundTrip(t *testing.T) {
	inputs := []string{
		"SELECT * FROM c WHERE c.age > 10",
		"SELECT DISTINCT TOP 3 c.a, c.b AS x FROM root c JOIN t IN c.tags WHERE c.a ?? 1 = 1 ORDER BY c.a DESC, c.b ASC",
		`SELECT VALUE {"a": c.a, "b": [1, 2.5, "s"]} FROM c WHERE c.n LIKE "%x" AND c.m IN (1, 2)`,
		"SELECT VALUE -(-1) FROM c WHERE NOT (c.a BETWEEN 1 AND 2) OFFSET @o LIMIT @l",
		"SELECT c.a FROM c WHERE EXISTS(SELECT VALUE 1 FROM x IN c.xs WHERE x > 1) GROUP BY c.a",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			first := MustParse(input)
			text := ast.String(first)
			second := MustParse(text)
			assert.Equal(t, text, ast.String(second))
		})
	}
}

func TestParseConcurrent(t *testing.T) {
	inputs := []string{
		"SELECT * FROM c WHERE c.age > 10",
		"SELECT FROM",
		"SELECT *",
		"SELECT VALUE 1" + strings.Repeat("+1", 300),
	}

	var g errgroup.Group
	for i := range 32 {
		input := inputs[i%len(inputs)]
		g.Go(func() error {
			out, err := Parse(input)
			if err != nil {
				return err
			}
			if out.OK() == (len(out.Diagnostics) > 0) {
				return errors.New("root and diagnostics both set or both empty")
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestParseWithLogger(t *testing.T) {
	logger, events := testutil.NewRecordingLogger(t)
	out, err := Parse("SELECT a, , b FROM c", WithLogger(logger))
	require.NoError(t, err)
	assert.Len(t, out.Diagnostics, 1)

	msgs := events.Messages()
	for _, want := range []string{"shift", "reduce", "syntax error", "recover", "accept"} {
		assert.Contains(t, msgs, want)
	}
	assert.Equal(t, 1, events.Count("syntax error"))
}

func TestParseWithTables(t *testing.T) {
	tables, err := syntax.Tables()
	require.NoError(t, err)

	out, err := Parse("SELECT * FROM c", WithTables(tables))
	require.NoError(t, err)
	assert.True(t, out.OK())
}

func TestNewDriverClampsLimits(t *testing.T) {
	tables, err := syntax.Tables()
	require.NoError(t, err)

	src := scanner.New("SELECT VALUE 1 + 2 + 3 FROM c", scanner.NewTextCache())
	d := NewDriver(tables, syntax.Dispatcher{}, src, 0, 0, nil)
	v, err := d.Run()
	require.NoError(t, err)
	assert.Empty(t, d.Diagnostics())
	require.IsType(t, &ast.Query{}, v)
	assert.Equal(t, "SELECT VALUE ((1 + 2) + 3) FROM c", ast.String(v.(*ast.Query)))
}

func TestMustParse(t *testing.T) {
	assert.NotNil(t, MustParse("SELECT * FROM c"))
	assert.Panics(t, func() { MustParse("SELECT FROM") })
}

type failingActions struct{ rule int }

func (a failingActions) Reduce(rep diag.Reporter, rule int, span token.Span, values []any, spans []token.Span) (any, error) {
	if rule == a.rule || a.rule < 0 {
		return nil, errors.New("boom")
	}
	return syntax.Dispatcher{}.Reduce(rep, rule, span, values, spans)
}

type nilActions struct{}

func (nilActions) Reduce(diag.Reporter, int, token.Span, []any, []token.Span) (any, error) {
	return nil, nil
}

type kindSource struct{ kind token.Kind }

func (s kindSource) Scan() token.Token { return token.Token{Kind: s.kind} }

func TestParseFatal(t *testing.T) {
	t.Run("action error", func(t *testing.T) {
		out, err := Parse("SELECT * FROM c", WithActions(failingActions{rule: -1}))
		assert.Nil(t, out)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAction)

		var fe *FatalError
		require.ErrorAs(t, err, &fe)
		assert.EqualError(t, fe.Err, "boom")
	})

	t.Run("start value of wrong type", func(t *testing.T) {
		out, err := Parse("SELECT * FROM c", WithActions(nilActions{}))
		assert.Nil(t, out)
		assert.ErrorIs(t, err, ErrAction)
	})

	t.Run("targets past the tables", func(t *testing.T) {
		tables, err := syntax.Tables()
		require.NoError(t, err)

		bad := *tables
		bad.Table = slices.Clone(tables.Table)
		for i, v := range bad.Table {
			if v > 0 {
				bad.Table[i] = v + 100000
			}
		}
		require.Error(t, bad.Validate())

		out, err := Parse("SELECT * FROM c", WithTables(&bad))
		assert.Nil(t, out)
		assert.ErrorIs(t, err, ErrTables)
	})

	t.Run("rule reducing to a terminal", func(t *testing.T) {
		tables, err := syntax.Tables()
		require.NoError(t, err)

		bad := *tables
		bad.RuleLHS = make([]int32, len(tables.RuleLHS))
		require.Error(t, bad.Validate())

		out, err := Parse("SELECT * FROM c", WithTables(&bad))
		assert.Nil(t, out)
		assert.ErrorIs(t, err, ErrTables)
	})

	t.Run("unknown token kind", func(t *testing.T) {
		tables, err := syntax.Tables()
		require.NoError(t, err)

		d := NewDriver(tables, syntax.Dispatcher{}, kindSource{kind: token.MaxKind + 100}, 16, 100, nil)
		v, err := d.Run()
		assert.Nil(t, v)
		assert.ErrorIs(t, err, ErrScanner)
		assert.NotErrorIs(t, err, ErrTables)
	})
}

func TestCodeFor(t *testing.T) {
	tests := []struct {
		kind token.Kind
		want diag.Code
	}{
		{token.DEEP_NESTING, diag.QueryTooComplex},
		{token.EOF, diag.UnexpectedEndOfInput},
		{token.ILLEGAL_NUMBER, diag.InvalidNumericToken},
		{token.NUMBER_MIN, diag.IncorrectSyntax},
		{token.ILLEGAL_STRING, diag.InvalidStringToken},
		{token.ILLEGAL, diag.InvalidToken},
		{token.SELECT, diag.IncorrectSyntax},
		{token.IDENT, diag.IncorrectSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, codeFor(token.Token{Kind: tt.kind}))
		})
	}
}
