// Package token defines the lexical vocabulary of the Cosmos SQL dialect.
//
// Token kinds follow the numbering convention of bison-generated parsers:
// kind 0 is end of input, single-character punctuation uses its character
// code, and every named kind (multi-character operators, literals, keywords,
// trivia and invalid classes) is numbered from FirstNamed upward. The parser
// tables translate kinds to grammar symbols, so this numbering is the
// contract between the scanner and the tables.
package token

import "fmt"

// Kind identifies the class of a lexical token.
type Kind int32

// EOF marks the end of input.
//
//nolint:revive // ALL_CAPS names follow SQL token conventions
const EOF Kind = 0

// Single-character punctuation. The kind is the character code.
//
//nolint:revive // ALL_CAPS names follow SQL token conventions
const (
	COMMA    Kind = ','
	COLON    Kind = ':'
	LBRACE   Kind = '{'
	RBRACE   Kind = '}'
	LBRACKET Kind = '['
	RBRACKET Kind = ']'
	LPAREN   Kind = '('
	RPAREN   Kind = ')'
	PLUS     Kind = '+'
	MINUS    Kind = '-'
	STAR     Kind = '*'
	SLASH    Kind = '/'
	PERCENT  Kind = '%'
	TILDE    Kind = '~'
	AMP      Kind = '&'
	CARET    Kind = '^'
	PIPE     Kind = '|'
	EQ       Kind = '='
	LT       Kind = '<'
	GT       Kind = '>'
	QUESTION Kind = '?'
	DOT      Kind = '.'
)

// FirstNamed is the first kind number available to named tokens.
const FirstNamed Kind = 258

//nolint:revive // ALL_CAPS names follow SQL token conventions
const (
	// Literals
	IDENT      Kind = FirstNamed + iota // identifier
	NUMBER                              // 42, 1.5, .5, 1e10, 0x1F
	NUMBER_MIN                          // 9223372036854775808, the smallest int64 under unary minus
	STRING                              // 'hello' or "hello"
	PARAM                               // @name

	// Multi-character operators
	NE       // != or <>
	LE       // <=
	GE       // >=
	LSHIFT   // <<
	RSHIFT   // >>
	URSHIFT  // >>>
	DPIPE    // ||
	COALESCE // ??

	// Trivia
	WHITESPACE
	COMMENT // -- to end of line

	// Invalid classes. The scanner never fails; malformed input comes out
	// as one of these and the parser turns it into a diagnostic.
	ILLEGAL
	ILLEGAL_NUMBER
	ILLEGAL_STRING

	// DEEP_NESTING is never scanned. The parser substitutes it for the
	// lookahead when an expression exceeds the nesting limit.
	DEEP_NESTING

	// Keywords (alphabetical)
	AND
	ARRAY
	AS
	ASC
	BETWEEN
	BY
	CASE
	CAST
	CONVERT
	CROSS
	DESC
	DISTINCT
	ELSE
	END
	ESCAPE
	EXISTS
	FALSE
	FOR
	FROM
	GROUP
	HAVING
	IN
	INNER
	INSERT
	INTO
	IS
	JOIN
	LEFT
	LIKE
	LIMIT
	NOT
	NULL
	OFFSET
	ON
	OR
	ORDER
	OUTER
	OVER
	RIGHT
	SELECT
	SET
	THEN
	TOP
	TRUE
	UDF
	UNDEFINED
	UPDATE
	VALUE
	WHEN
	WHERE
	WITH

	maxKind
)

const (
	keywordFirst = AND
	keywordLast  = WITH
)

// MaxKind is one past the largest kind the scanner or parser produces.
const MaxKind = maxKind

var namedNames = map[Kind]string{
	IDENT:          "IDENT",
	NUMBER:         "NUMBER",
	NUMBER_MIN:     "NUMBER_MIN",
	STRING:         "STRING",
	PARAM:          "PARAM",
	NE:             "!=",
	LE:             "<=",
	GE:             ">=",
	LSHIFT:         "<<",
	RSHIFT:         ">>",
	URSHIFT:        ">>>",
	DPIPE:          "||",
	COALESCE:       "??",
	WHITESPACE:     "WHITESPACE",
	COMMENT:        "COMMENT",
	ILLEGAL:        "ILLEGAL",
	ILLEGAL_NUMBER: "ILLEGAL_NUMBER",
	ILLEGAL_STRING: "ILLEGAL_STRING",
	DEEP_NESTING:   "DEEP_NESTING",
}

// String returns the grammar name of the kind: the character for
// punctuation, the upper-case word for keywords.
func (k Kind) String() string {
	switch {
	case k == EOF:
		return "EOF"
	case k > 0 && k < 128:
		return string(rune(k))
	case k.IsKeyword():
		return keywordNames[k-keywordFirst]
	}
	if name, ok := namedNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int32(k))
}

// IsKeyword reports whether k is a keyword kind.
func (k Kind) IsKeyword() bool {
	return k >= keywordFirst && k <= keywordLast
}

// IsTrivia reports whether the parser skips tokens of kind k.
func (k Kind) IsTrivia() bool {
	return k == WHITESPACE || k == COMMENT
}

// IsInvalid reports whether k is one of the scanner's invalid classes.
func (k Kind) IsInvalid() bool {
	return k == ILLEGAL || k == ILLEGAL_NUMBER || k == ILLEGAL_STRING
}

// Token is one lexical token. Text holds the interned text of identifiers,
// parameters and decoded string literals; it is empty for other kinds, whose
// source text is recoverable through Span.
type Token struct {
	Kind  Kind
	Span  Span
	Value Value
	Text  string
}

// String renders the token for debugging output.
func (t Token) String() string {
	switch {
	case t.Text != "":
		return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Text, t.Span)
	case !t.Value.IsZero():
		return fmt.Sprintf("%s(%s)@%s", t.Kind, t.Value, t.Span)
	}
	return fmt.Sprintf("%s@%s", t.Kind, t.Span)
}
