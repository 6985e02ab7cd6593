// Package format pretty prints Cosmos SQL syntax trees.
//
// Clauses start on their own line and list items are indented one per
// line. Parentheses are emitted only where operator precedence requires
// them, so formatting a parsed query and parsing the result yields the same
// tree.
package format

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/cosmosql/pkg/ast"
)

// Case selects how keywords are written.
type Case int

// Keyword cases.
const (
	Upper Case = iota
	Lower
	Title
)

func (c Case) String() string {
	switch c {
	case Lower:
		return "lower"
	case Title:
		return "title"
	}
	return "upper"
}

// ParseCase parses the names returned by Case.String.
func ParseCase(s string) (Case, error) {
	switch strings.ToLower(s) {
	case "", "upper":
		return Upper, nil
	case "lower":
		return Lower, nil
	case "title":
		return Title, nil
	}
	return Upper, fmt.Errorf("unknown keyword case %q (want upper, lower or title)", s)
}

// Options control the layout.
type Options struct {
	KeywordCase Case
	Indent      int // spaces per level, defaults to 2
}

// Query formats q.
func Query(q *ast.Query, opts Options) string {
	p := newPrinter(opts)
	p.formatQuery(q)
	return p.String()
}

// Expr formats a single expression. Nested subqueries still span lines.
func Expr(e ast.Expr, opts Options) string {
	p := newPrinter(opts)
	p.formatExpr(e, precLowest)
	return p.String()
}
