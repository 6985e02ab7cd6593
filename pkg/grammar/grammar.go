// Package grammar compiles a context-free grammar with yacc-style precedence
// declarations into packed LALR(1) parsing tables.
//
// Symbols are numbered the way bison numbers them: 0 is $end, 1 is the
// error token, 2 stands for any token the grammar does not declare, the
// declared terminals follow, and the nonterminals come last starting with
// $accept. Rule 0 is always $accept: start $end, and the user's rules are
// numbered from 1 in declaration order, which is what reduction-action
// dispatchers switch on.
package grammar

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/cosmosql/pkg/token"
)

// Reserved symbol names.
const (
	EndName       = "$end"
	ErrorName     = "error"
	UndefinedName = "$undefined"
	AcceptName    = "$accept"
)

// Reserved symbol numbers.
const (
	EndSymbol       = 0
	ErrorSymbol     = 1
	UndefinedSymbol = 2
)

// Assoc is the associativity of a precedence level.
type Assoc uint8

// Associativities.
const (
	AssocNone Assoc = iota // no precedence declared
	AssocLeft
	AssocRight
	AssocNonassoc
)

func (a Assoc) String() string {
	switch a {
	case AssocLeft:
		return "left"
	case AssocRight:
		return "right"
	case AssocNonassoc:
		return "nonassoc"
	}
	return "none"
}

// Rule is one production as declared.
type Rule struct {
	LHS  string
	RHS  []string
	Prec string // %prec terminal, empty when the rule takes its precedence from its body
}

// String renders the rule in yacc notation.
func (r Rule) String() string {
	if len(r.RHS) == 0 {
		return r.LHS + ": %empty"
	}
	return r.LHS + ": " + strings.Join(r.RHS, " ")
}

type tokenDecl struct {
	name string
	kind token.Kind
}

type precLevel struct {
	assoc Assoc
	names []string
}

type fold struct {
	from, to string
}

// Grammar is a grammar under construction. Declarations are order
// sensitive: precedence levels are declared lowest first, and rules are
// numbered in the order they are added.
type Grammar struct {
	name   string
	start  string
	tokens []tokenDecl
	levels []precLevel
	rules  []Rule
	folds  []fold
}

// New returns an empty grammar.
func New(name string) *Grammar {
	return &Grammar{name: name}
}

// Name returns the grammar's name.
func (g *Grammar) Name() string { return g.name }

// Token declares a terminal and the token kind that the scanner produces
// for it.
func (g *Grammar) Token(name string, kind token.Kind) *Grammar {
	g.tokens = append(g.tokens, tokenDecl{name: name, kind: kind})
	return g
}

// Left declares a left-associative precedence level above all previous
// levels.
func (g *Grammar) Left(names ...string) *Grammar {
	return g.level(AssocLeft, names)
}

// Right declares a right-associative precedence level.
func (g *Grammar) Right(names ...string) *Grammar {
	return g.level(AssocRight, names)
}

// Nonassoc declares a non-associative precedence level.
func (g *Grammar) Nonassoc(names ...string) *Grammar {
	return g.level(AssocNonassoc, names)
}

func (g *Grammar) level(a Assoc, names []string) *Grammar {
	g.levels = append(g.levels, precLevel{assoc: a, names: names})
	return g
}

// Start sets the start symbol. By default it is the LHS of the first rule.
func (g *Grammar) Start(name string) *Grammar {
	g.start = name
	return g
}

// Rule adds a production. The body is a space-separated list of symbol
// names; an empty body declares an empty production. It returns the rule
// number.
func (g *Grammar) Rule(lhs, body string) int {
	return g.RulePrec(lhs, body, "")
}

// RulePrec adds a production whose precedence is taken from the terminal
// prec, like yacc's %prec.
func (g *Grammar) RulePrec(lhs, body, prec string) int {
	g.rules = append(g.rules, Rule{LHS: lhs, RHS: strings.Fields(body), Prec: prec})
	return len(g.rules)
}

// Fold declares that terminal from may be read as terminal to in any state
// where from has no action of its own but to does. Tables encode this as a
// transform entry that the driver applies before retrying the lookup.
func (g *Grammar) Fold(from, to string) *Grammar {
	g.folds = append(g.folds, fold{from: from, to: to})
	return g
}

// Rules returns the declared rules; index i holds rule i+1.
func (g *Grammar) Rules() []Rule {
	return g.rules
}

// Error reports a malformed grammar.
type Error struct {
	Grammar string
	Msg     string
}

func (e *Error) Error() string {
	return fmt.Sprintf("grammar %s: %s", e.Grammar, e.Msg)
}

func (g *Grammar) errorf(format string, args ...any) error {
	return &Error{Grammar: g.name, Msg: fmt.Sprintf(format, args...)}
}
