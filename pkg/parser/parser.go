// Package parser turns query text into a syntax tree or a list of
// diagnostics.
//
// # Usage
//
//	out, err := parser.Parse("SELECT * FROM c WHERE c.age > 10")
//	if err != nil {
//	    // broken tables or actions, never bad input
//	}
//	if len(out.Diagnostics) > 0 {
//	    // bad input
//	}
//	use(out.Root)
//
// Parse scans with pkg/scanner and runs a table-driven LALR(1) automaton
// over the tables of pkg/syntax. Syntax errors are recovered from with the
// error symbol of the grammar, so a single call reports one diagnostic per
// malformed region rather than stopping at the first one.
package parser

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/cosmosql/pkg/ast"
	"github.com/leapstack-labs/cosmosql/pkg/diag"
	"github.com/leapstack-labs/cosmosql/pkg/grammar"
	"github.com/leapstack-labs/cosmosql/pkg/scanner"
	"github.com/leapstack-labs/cosmosql/pkg/syntax"
)

// Limits applied when no option overrides them.
const (
	DefaultMaxNestingDepth = 256
	DefaultMaxStackDepth   = 1000
)

// Outcome is the result of a parse. Exactly one of Root and Diagnostics is
// set.
type Outcome struct {
	Root        *ast.Query
	Diagnostics diag.List
}

// OK reports whether the parse produced a tree.
func (o *Outcome) OK() bool {
	return o.Root != nil
}

type config struct {
	maxNesting int
	maxStack   int
	logger     *slog.Logger
	tables     *grammar.Tables
	actions    Actions
}

// Option configures a parse.
type Option func(*config)

// WithMaxNestingDepth sets the deepest binary expression accepted before
// the query is rejected as too complex. Values below 1 are ignored.
func WithMaxNestingDepth(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxNesting = n
		}
	}
}

// WithMaxStackDepth caps the automaton's stack height. Values below 2 are
// ignored.
func WithMaxStackDepth(n int) Option {
	return func(c *config) {
		if n > 1 {
			c.maxStack = n
		}
	}
}

// WithLogger traces the automaton at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithTables parses with tables other than the built-in ones, for example
// tables decoded from a file written by grammar.Encode. They must have been
// built from the pkg/syntax grammar unless WithActions is also given.
func WithTables(t *grammar.Tables) Option {
	return func(c *config) {
		c.tables = t
	}
}

// WithActions replaces the reduction actions.
func WithActions(a Actions) Option {
	return func(c *config) {
		c.actions = a
	}
}

// Parse parses one query. Malformed text yields an Outcome with diagnostics;
// a non-nil error means the tables or the actions are broken.
func Parse(text string, opts ...Option) (*Outcome, error) {
	cfg := config{
		maxNesting: DefaultMaxNestingDepth,
		maxStack:   DefaultMaxStackDepth,
		actions:    syntax.Dispatcher{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.tables == nil {
		t, err := syntax.Tables()
		if err != nil {
			return nil, fmt.Errorf("load tables: %w", err)
		}
		cfg.tables = t
	}

	src := scanner.New(text, scanner.NewTextCache())
	d := NewDriver(cfg.tables, cfg.actions, src, cfg.maxNesting, cfg.maxStack, cfg.logger)
	v, err := d.Run()
	if err != nil {
		return nil, err
	}

	out := &Outcome{Diagnostics: d.Diagnostics()}
	if len(out.Diagnostics) > 0 {
		return out, nil
	}
	root, ok := v.(*ast.Query)
	if !ok || root == nil {
		return nil, &FatalError{Class: ErrAction, Err: fmt.Errorf("start symbol value is %T", v)}
	}
	out.Root = root
	return out, nil
}

// MustParse is like Parse but panics on a fatal error or a diagnostic. It
// is meant for tests and static queries.
func MustParse(text string) *ast.Query {
	out, err := Parse(text)
	if err == nil && !out.OK() {
		err = out.Diagnostics.Err()
	}
	if err != nil {
		panic(fmt.Sprintf("parser: %q: %v", text, err))
	}
	return out.Root
}

