package parser

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/cosmosql/pkg/ast"
	"github.com/leapstack-labs/cosmosql/pkg/diag"
	"github.com/leapstack-labs/cosmosql/pkg/grammar"
	"github.com/leapstack-labs/cosmosql/pkg/token"
)

// Actions builds semantic values for reductions. values and spans hold the
// popped right-hand side in stack order; span is their merged span. An error
// aborts the parse.
type Actions interface {
	Reduce(rep diag.Reporter, rule int, span token.Span, values []any, spans []token.Span) (any, error)
}

// TokenSource yields tokens until EOF. Trivia is skipped by the driver.
type TokenSource interface {
	Scan() token.Token
}

// recoverShifts is the number of shifts after a recovery before a new
// syntax error is reported again.
const recoverShifts = 3

// Driver runs the LALR(1) automaton for one parse. It is not reusable.
type Driver struct {
	tables     *grammar.Tables
	actions    Actions
	src        TokenSource
	maxNesting int
	maxStack   int
	logger     *slog.Logger

	st    stacks
	diags diag.List

	la      token.Token
	laSym   int
	hasLA   bool
	pending *token.Token // real lookahead displaced by a sentinel

	errStatus int
}

// NewDriver returns a driver reading from src. A nil logger discards.
// Limits below their minimum of 1 and 2 fall back to the defaults.
func NewDriver(tables *grammar.Tables, actions Actions, src TokenSource, maxNesting, maxStack int, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if maxNesting < 1 {
		maxNesting = DefaultMaxNestingDepth
	}
	if maxStack < 2 {
		maxStack = DefaultMaxStackDepth
	}
	return &Driver{
		tables:     tables,
		actions:    actions,
		src:        src,
		maxNesting: maxNesting,
		maxStack:   maxStack,
		logger:     logger,
		st:         newStacks(64),
	}
}

// Diagnostics returns the diagnostics recorded so far, in discovery order.
func (d *Driver) Diagnostics() diag.List {
	return d.diags
}

// Run drives the automaton to acceptance or abort. It returns the semantic
// value of the start symbol on acceptance and nil on abort; in both cases
// Diagnostics holds what was found. Only bugs in the scanner, the tables or
// the actions produce an error.
func (d *Driver) Run() (any, error) {
	final := int(d.tables.FinalState)
	if !d.push(0, nil, token.Span{}) {
		return nil, nil
	}

	for {
		state := d.st.topState()
		if state == final {
			if d.st.height() < 3 {
				return nil, fatal(ErrTables, state, d.st.topSpan(), fmt.Errorf("accepted with stack height %d", d.st.height()))
			}
			values, _ := d.st.window(2)
			d.logger.Debug("accept", "diagnostics", len(d.diags))
			return values[0], nil
		}

		if rule, ok := d.tables.DefaultReduction(state); ok {
			done, err := d.reduce(rule)
			if err != nil || done {
				return nil, err
			}
			continue
		}

		if !d.hasLA {
			if err := d.next(state); err != nil {
				return nil, err
			}
		}

		act := d.tables.Shift(state, d.laSym)
		if act.Kind == grammar.Transform {
			if act.Target < 0 || act.Target >= int(d.tables.NumTerminals) {
				return nil, fatal(ErrTables, state, d.la.Span, fmt.Errorf("transform to symbol %d", act.Target))
			}
			d.logger.Debug("transform", "state", state, "from", d.tables.SymbolName(d.laSym), "to", d.tables.SymbolName(act.Target))
			d.laSym = act.Target
			act = d.tables.Shift(state, d.laSym)
			if act.Kind == grammar.Transform {
				act = grammar.Action{}
			}
		}

		if act.Kind == grammar.Shift {
			if act.Target >= int(d.tables.NumStates) {
				return nil, fatal(ErrTables, state, d.la.Span, fmt.Errorf("shift to state %d", act.Target))
			}
			d.logger.Debug("shift", "state", state, "token", d.la.Kind, "span", d.la.Span, "to", act.Target)
			if d.errStatus > 0 {
				d.errStatus--
			}
			if !d.push(act.Target, d.la, d.la.Span) {
				return nil, nil
			}
			d.hasLA = false
			continue
		}

		if rule, ok := d.tables.Reduce(state, d.laSym); ok {
			done, err := d.reduce(rule)
			if err != nil || done {
				return nil, err
			}
			continue
		}

		if !d.recover() {
			return nil, nil
		}
	}
}

// next reads the next significant token into the lookahead.
func (d *Driver) next(state int) error {
	if d.pending != nil {
		d.la, d.pending = *d.pending, nil
	} else {
		for {
			d.la = d.src.Scan()
			if !d.la.Kind.IsTrivia() {
				break
			}
		}
	}
	sym, ok := d.tables.Symbol(d.la.Kind)
	if !ok {
		return fatal(ErrScanner, state, d.la.Span, fmt.Errorf("token kind %d", d.la.Kind))
	}
	d.laSym = sym
	d.hasLA = true
	return nil
}

// push records a new top entry. It reports false after recording a stack
// overflow.
func (d *Driver) push(state int, value any, span token.Span) bool {
	if d.st.height() >= d.maxStack {
		d.logger.Debug("stack overflow", "height", d.st.height(), "span", span)
		d.diags.Add(diag.StackOverflow, span)
		return false
	}
	d.st.push(state, value, span)
	return true
}

// reduce applies rule to the top of the stacks. done is true when the parse
// was aborted.
func (d *Driver) reduce(rule int) (done bool, err error) {
	state := d.st.topState()
	if rule <= 0 || rule >= d.tables.NumRules() {
		return true, fatal(ErrTables, state, d.st.topSpan(), fmt.Errorf("reduce by rule %d", rule))
	}
	n := int(d.tables.RuleLength[rule])
	if n >= d.st.height() {
		return true, fatal(ErrTables, state, d.st.topSpan(), fmt.Errorf("rule %d pops %d of %d entries", rule, n, d.st.height()))
	}

	values, spans := d.st.window(n)
	span := token.At(d.st.topSpan().End)
	if n > 0 {
		span = spans[0].Cover(spans[n-1])
	}
	v, err := d.actions.Reduce(&d.diags, rule, span, values, spans)
	if err != nil {
		return true, fatal(ErrAction, state, span, err)
	}

	lhs := int(d.tables.RuleLHS[rule])
	if lhs < int(d.tables.NumTerminals) || lhs >= len(d.tables.SymbolNames) {
		return true, fatal(ErrTables, state, span, fmt.Errorf("rule %d reduces to symbol %d", rule, lhs))
	}
	d.st.pop(n)
	target := d.tables.Goto(d.st.topState(), lhs)
	if target < 0 || target >= int(d.tables.NumStates) {
		return true, fatal(ErrTables, d.st.topState(), span, fmt.Errorf("goto state %d on %s", target, d.tables.SymbolName(lhs)))
	}
	d.logger.Debug("reduce", "state", state, "rule", rule, "lhs", d.tables.SymbolName(lhs), "span", span, "to", target)

	if d.tooDeep(v, span) {
		d.inject(token.DEEP_NESTING, span)
		return !d.recover(), nil
	}
	return !d.push(target, v, span), nil
}

// tooDeep reports whether v is a left-recursive expression nesting deeper
// than the limit. Those are the shapes the stack guard cannot bound. Short
// spans cannot hold a deep tree, so the walk only runs for long ones.
func (d *Driver) tooDeep(v any, span token.Span) bool {
	var node ast.Node
	switch e := v.(type) {
	case *ast.Binary:
		node = e
	case *ast.Coalesce:
		node = e
	case *ast.PropertyRef:
		node = e
	case *ast.MemberIndexer:
		node = e
	default:
		return false
	}
	if span.Len() <= 2*uint64(d.maxNesting) { //nolint:gosec // limit is clamped positive
		return false
	}
	return ast.Depth(node, d.maxNesting) > d.maxNesting
}

// inject makes a sentinel token the lookahead. A real lookahead already read
// is kept and returned by the next read.
func (d *Driver) inject(kind token.Kind, span token.Span) {
	if d.hasLA {
		la := d.la
		d.pending = &la
	}
	d.la = token.Token{Kind: kind, Span: span}
	d.laSym, _ = d.tables.Symbol(kind)
	d.hasLA = true
}

// recover handles a syntax error at the lookahead: it reports it unless
// still recovering from the previous one, then pops to a state that can
// shift the error symbol and shifts it. It reports false when the parse
// must be abandoned.
func (d *Driver) recover() bool {
	if d.errStatus == 0 {
		code := codeFor(d.la)
		d.logger.Debug("syntax error", "code", code, "token", d.la.Kind, "span", d.la.Span)
		d.diags.Add(code, d.la.Span)
	}
	if d.errStatus == recoverShifts {
		if d.laSym == grammar.EndSymbol {
			return false
		}
		d.logger.Debug("discard", "token", d.la.Kind, "span", d.la.Span)
		d.hasLA = false
	}
	d.errStatus = recoverShifts

	for {
		state := d.st.topState()
		if act := d.tables.Shift(state, grammar.ErrorSymbol); act.Kind == grammar.Shift {
			d.logger.Debug("recover", "state", state, "to", act.Target)
			return d.push(act.Target, nil, d.la.Span)
		}
		if d.st.height() <= 1 {
			return false
		}
		d.st.pop(1)
	}
}

// codeFor picks the diagnostic for a syntax error at tok.
func codeFor(tok token.Token) diag.Code {
	switch tok.Kind {
	case token.DEEP_NESTING:
		return diag.QueryTooComplex
	case token.EOF:
		return diag.UnexpectedEndOfInput
	case token.ILLEGAL_NUMBER:
		return diag.InvalidNumericToken
	case token.ILLEGAL_STRING:
		return diag.InvalidStringToken
	case token.ILLEGAL:
		return diag.InvalidToken
	}
	return diag.IncorrectSyntax
}
