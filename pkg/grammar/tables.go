package grammar

import (
	"fmt"

	"github.com/leapstack-labs/cosmosql/pkg/token"
)

// FormatVersion identifies the layout of Tables. Decode rejects artifacts
// written with a different version.
const FormatVersion = 1

// noRow marks a state or nonterminal without a packed row.
const noRow = -1

// Tables are the packed LALR(1) tables for one grammar.
//
// Three families of rows share the Table/Check arrays in comb-vector form:
// per-state shift rows and reduce rows keyed by terminal symbol, and
// per-nonterminal goto rows keyed by state. An entry of row r under key k
// lives at Table[base(r)+k] and is valid only when Check[base(r)+k] == k;
// no two rows share a base, so a key can only match its own row.
//
// Shift row values are positive state numbers for shifts and negative
// values -(sym+1) for transforms that replace the lookahead by sym. Reduce
// row values are rule numbers. Consistent states, those with a single
// reduction and nothing else to do, have no reduce row; DefaultReduce
// holds their rule instead.
//
// Tables are read-only once built and safe to share between goroutines.
type Tables struct {
	Version       int32    `msgpack:"version"`
	Name          string   `msgpack:"name"`
	NumTerminals  int32    `msgpack:"num_terminals"`
	NumStates     int32    `msgpack:"num_states"`
	FinalState    int32    `msgpack:"final_state"`
	Translate     []int32  `msgpack:"translate"`
	SymbolNames   []string `msgpack:"symbol_names"`
	ShiftBase     []int32  `msgpack:"shift_base"`
	ReduceBase    []int32  `msgpack:"reduce_base"`
	DefaultReduce []int32  `msgpack:"default_reduce"`
	GotoBase      []int32  `msgpack:"goto_base"`
	DefaultGoto   []int32  `msgpack:"default_goto"`
	Table         []int32  `msgpack:"table"`
	Check         []int32  `msgpack:"check"`
	RuleLength    []int32  `msgpack:"rule_length"`
	RuleLHS       []int32  `msgpack:"rule_lhs"`
}

// ActionKind tags the result of a shift-table lookup.
type ActionKind uint8

// Shift-table outcomes.
const (
	NoAction ActionKind = iota
	Shift
	Transform // replace the lookahead symbol and look again
)

func (k ActionKind) String() string {
	switch k {
	case Shift:
		return "shift"
	case Transform:
		return "transform"
	}
	return "none"
}

// Action is the outcome of a shift-table lookup. Target is the next state
// for Shift and the replacement symbol for Transform.
type Action struct {
	Kind   ActionKind
	Target int
}

// lookup returns the packed entry of the row at base under key.
func (t *Tables) lookup(base int32, key int) (int32, bool) {
	if base == noRow {
		return 0, false
	}
	pos := int(base) + key
	if pos < 0 || pos >= len(t.Check) || t.Check[pos] != int32(key) { //nolint:gosec // keys are symbol or state numbers
		return 0, false
	}
	return t.Table[pos], true
}

// Symbol translates a token kind to a grammar symbol. Kinds the grammar does
// not declare translate to UndefinedSymbol. The second result is false for
// kinds outside the token space, which indicates a broken scanner.
func (t *Tables) Symbol(kind token.Kind) (int, bool) {
	if kind < 0 || int(kind) >= len(t.Translate) {
		return 0, false
	}
	return int(t.Translate[kind]), true
}

// Shift looks up the shift or transform action for sym in state.
func (t *Tables) Shift(state, sym int) Action {
	v, ok := t.lookup(t.ShiftBase[state], sym)
	switch {
	case !ok:
		return Action{}
	case v > 0:
		return Action{Kind: Shift, Target: int(v)}
	}
	return Action{Kind: Transform, Target: int(-v - 1)}
}

// Reduce looks up the rule to reduce by when sym is the lookahead in state.
func (t *Tables) Reduce(state, sym int) (int, bool) {
	v, ok := t.lookup(t.ReduceBase[state], sym)
	return int(v), ok
}

// DefaultReduction returns the rule a consistent state reduces by without
// consulting the lookahead.
func (t *Tables) DefaultReduction(state int) (int, bool) {
	r := t.DefaultReduce[state]
	return int(r), r != noRow
}

// Goto returns the state entered after reducing to nonterminal nt in state.
func (t *Tables) Goto(state, nt int) int {
	i := nt - int(t.NumTerminals)
	if v, ok := t.lookup(t.GotoBase[i], state); ok {
		return int(v)
	}
	return int(t.DefaultGoto[i])
}

// SymbolName returns the declared name of sym.
func (t *Tables) SymbolName(sym int) string {
	if sym < 0 || sym >= len(t.SymbolNames) {
		return fmt.Sprintf("sym(%d)", sym)
	}
	return t.SymbolNames[sym]
}

// NumRules returns the number of rules, including rule 0.
func (t *Tables) NumRules() int {
	return len(t.RuleLength)
}

// Validate checks that the arrays are mutually consistent and that every
// packed entry names a state, symbol or rule that exists. A table that fails
// validation must not be used for parsing.
func (t *Tables) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("grammar tables %q: %s", t.Name, fmt.Sprintf(format, args...))
	}

	if t.Version != FormatVersion {
		return fail("format version %d, want %d", t.Version, FormatVersion)
	}
	nstates := int(t.NumStates)
	nsyms := len(t.SymbolNames)
	nterms := int(t.NumTerminals)
	nnts := nsyms - nterms
	switch {
	case nstates <= 0:
		return fail("no states")
	case nterms <= UndefinedSymbol || nnts <= 0:
		return fail("bad symbol counts: %d terminals, %d symbols", nterms, nsyms)
	case len(t.ShiftBase) != nstates, len(t.ReduceBase) != nstates, len(t.DefaultReduce) != nstates:
		return fail("state arrays do not match %d states", nstates)
	case len(t.GotoBase) != nnts, len(t.DefaultGoto) != nnts:
		return fail("goto arrays do not match %d nonterminals", nnts)
	case len(t.Table) != len(t.Check):
		return fail("table has %d entries, check has %d", len(t.Table), len(t.Check))
	case len(t.RuleLength) == 0 || len(t.RuleLength) != len(t.RuleLHS):
		return fail("rule arrays have lengths %d and %d", len(t.RuleLength), len(t.RuleLHS))
	case t.FinalState <= 0 || int(t.FinalState) >= nstates:
		return fail("final state %d out of range", t.FinalState)
	case len(t.Translate) == 0 || t.Translate[token.EOF] != EndSymbol:
		return fail("EOF does not translate to %s", EndName)
	}

	for k, sym := range t.Translate {
		if sym < 0 || int(sym) >= nterms {
			return fail("token %d translates to non-terminal %d", k, sym)
		}
	}
	for r, lhs := range t.RuleLHS {
		if int(lhs) < nterms || int(lhs) >= nsyms || t.RuleLength[r] < 0 {
			return fail("rule %d is malformed", r)
		}
	}
	for s, r := range t.DefaultReduce {
		if r != noRow && (r < 0 || int(r) >= len(t.RuleLength)) {
			return fail("state %d default-reduces by unknown rule %d", s, r)
		}
	}
	for i, g := range t.DefaultGoto {
		if g < 0 || int(g) >= nstates {
			return fail("nonterminal %d has default goto %d", i+nterms, g)
		}
	}
	for _, bases := range [][]int32{t.ShiftBase, t.ReduceBase, t.GotoBase} {
		for _, b := range bases {
			if b != noRow && (b < 0 || int(b) >= len(t.Table)) {
				return fail("row base %d outside table of %d", b, len(t.Table))
			}
		}
	}

	nrules := len(t.RuleLength)
	rows := []struct {
		family string
		bases  []int32
		keys   int
		valid  func(v int32) bool
	}{
		{"shift", t.ShiftBase, nterms, func(v int32) bool {
			return (v > 0 && int(v) < nstates) || (v < 0 && int(-v-1) < nterms)
		}},
		{"reduce", t.ReduceBase, nterms, func(v int32) bool { return v >= 0 && int(v) < nrules }},
		{"goto", t.GotoBase, nstates, func(v int32) bool { return v >= 0 && int(v) < nstates }},
	}
	for _, f := range rows {
		for r, b := range f.bases {
			for k := range f.keys {
				if v, ok := t.lookup(b, k); ok && !f.valid(v) {
					return fail("%s row %d holds %d under key %d", f.family, r, v, k)
				}
			}
		}
	}
	return nil
}
