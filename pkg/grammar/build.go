package grammar

import (
	"slices"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/leapstack-labs/cosmosql/pkg/token"
)

type symbol struct {
	name     string
	terminal bool
	prec     int // precedence level, 0 when undeclared
	assoc    Assoc
}

type rule struct {
	lhs   int
	rhs   []int
	prec  int
	assoc Assoc
}

// lr0State is one state of the LR(0) automaton, identified by its kernel.
type lr0State struct {
	kernel []int       // sorted item numbers
	index  map[int]int // kernel item to position in kernel
	trans  map[int]int // symbol to successor state
	la     []bitset    // LALR(1) lookaheads, parallel to kernel
}

// laItem is an LR(1) item with a set of lookaheads.
type laItem struct {
	item int
	la   bitset
}

// propagation records that lookaheads of one kernel item flow to another.
type propagation struct {
	fromState, fromItem int
	toState, toItem     int
}

type builder struct {
	g        *Grammar
	syms     []symbol
	symIndex map[string]int
	nterms   int
	start    int
	rules    []rule
	byLHS    [][]int // rules per nonterminal, indexed by symbol - nterms

	// Items are numbered consecutively per rule: item ruleItem[r]+d has
	// the dot before position d of rule r.
	ruleItem []int
	itemRule []int
	itemDot  []int

	nullable []bool
	first    []bitset

	states     []*lr0State
	stateIndex map[string]int
	final      int

	report *Report
}

// Build compiles g into packed tables. The report lists every conflict and
// how it was resolved; conflicts are not errors. The error result covers
// malformed grammars only.
func Build(g *Grammar) (*Tables, *Report, error) {
	b := &builder{
		g:          g,
		symIndex:   make(map[string]int),
		stateIndex: make(map[string]int),
		report:     &Report{Grammar: g.name},
	}
	if err := b.declareSymbols(); err != nil {
		return nil, nil, err
	}
	if err := b.declareRules(); err != nil {
		return nil, nil, err
	}
	b.numberItems()
	b.computeFirst()
	b.buildLR0()
	b.computeLookaheads()
	t, err := b.emit()
	if err != nil {
		return nil, nil, err
	}
	return t, b.report, nil
}

func (b *builder) addSymbol(name string, terminal bool) int {
	id := len(b.syms)
	b.syms = append(b.syms, symbol{name: name, terminal: terminal})
	b.symIndex[name] = id
	return id
}

func (b *builder) declareSymbols() error {
	g := b.g
	b.addSymbol(EndName, true)
	b.addSymbol(ErrorName, true)
	b.addSymbol(UndefinedName, true)

	for _, t := range g.tokens {
		if _, dup := b.symIndex[t.name]; dup {
			return g.errorf("token %s declared twice", t.name)
		}
		if t.kind <= token.EOF || t.kind >= token.MaxKind {
			return g.errorf("token %s has kind %d outside the token space", t.name, t.kind)
		}
		b.addSymbol(t.name, true)
	}

	// Names used only for precedence, like UNARY in %prec UNARY, become
	// terminals no token kind maps to.
	for i, lvl := range g.levels {
		for _, name := range lvl.names {
			id, ok := b.symIndex[name]
			if !ok {
				id = b.addSymbol(name, true)
			}
			if b.syms[id].prec != 0 {
				return g.errorf("precedence of %s declared twice", name)
			}
			b.syms[id].prec = i + 1
			b.syms[id].assoc = lvl.assoc
		}
	}
	b.nterms = len(b.syms)

	if len(g.rules) == 0 {
		return g.errorf("no rules")
	}
	b.addSymbol(AcceptName, false)
	for _, r := range g.rules {
		id, ok := b.symIndex[r.LHS]
		switch {
		case !ok:
			b.addSymbol(r.LHS, false)
		case b.syms[id].terminal:
			return g.errorf("terminal %s used as a rule's left-hand side", r.LHS)
		}
	}

	start := g.start
	if start == "" {
		start = g.rules[0].LHS
	}
	id, ok := b.symIndex[start]
	if !ok || b.syms[id].terminal {
		return g.errorf("start symbol %s is not a nonterminal", start)
	}
	b.start = id
	return nil
}

func (b *builder) declareRules() error {
	g := b.g
	b.byLHS = make([][]int, len(b.syms)-b.nterms)
	b.addRule(rule{lhs: b.symIndex[AcceptName], rhs: []int{b.start, EndSymbol}})

	for _, r := range g.rules {
		nr := rule{lhs: b.symIndex[r.LHS]}
		for _, name := range r.RHS {
			id, ok := b.symIndex[name]
			if !ok {
				return g.errorf("rule %q uses undefined symbol %s", r.String(), name)
			}
			if id == EndSymbol || id == UndefinedSymbol || id == b.symIndex[AcceptName] {
				return g.errorf("rule %q uses reserved symbol %s", r.String(), name)
			}
			nr.rhs = append(nr.rhs, id)
			if s := b.syms[id]; s.terminal && s.prec != 0 {
				nr.prec, nr.assoc = s.prec, s.assoc
			}
		}
		if r.Prec != "" {
			id, ok := b.symIndex[r.Prec]
			if !ok || b.syms[id].prec == 0 {
				return g.errorf("rule %q: %%prec %s has no precedence", r.String(), r.Prec)
			}
			nr.prec, nr.assoc = b.syms[id].prec, b.syms[id].assoc
		}
		b.addRule(nr)
	}
	return nil
}

func (b *builder) addRule(r rule) {
	b.byLHS[r.lhs-b.nterms] = append(b.byLHS[r.lhs-b.nterms], len(b.rules))
	b.rules = append(b.rules, r)
}

func (b *builder) numberItems() {
	b.ruleItem = make([]int, len(b.rules))
	for r, ru := range b.rules {
		b.ruleItem[r] = len(b.itemRule)
		for d := 0; d <= len(ru.rhs); d++ {
			b.itemRule = append(b.itemRule, r)
			b.itemDot = append(b.itemDot, d)
		}
	}
}

// next returns the symbol after the dot of item, or -1 for a completed item.
func (b *builder) next(item int) int {
	rhs := b.rules[b.itemRule[item]].rhs
	if d := b.itemDot[item]; d < len(rhs) {
		return rhs[d]
	}
	return -1
}

// laWidth is the width of lookahead sets: every terminal plus one marker
// bit used while discovering propagated lookaheads.
func (b *builder) laWidth() int { return b.nterms + 1 }

func (b *builder) hashBit() int { return b.nterms }

func (b *builder) computeFirst() {
	n := len(b.syms)
	b.nullable = make([]bool, n)
	b.first = make([]bitset, n)
	for s := range b.syms {
		b.first[s] = newBitset(b.laWidth())
		if b.syms[s].terminal {
			b.first[s].set(s)
		}
	}

	for changed := true; changed; {
		changed = false
		for _, r := range b.rules {
			allNullable := true
			for _, s := range r.rhs {
				if b.first[r.lhs].union(b.first[s]) {
					changed = true
				}
				if !b.nullable[s] {
					allNullable = false
					break
				}
			}
			if allNullable && !b.nullable[r.lhs] {
				b.nullable[r.lhs] = true
				changed = true
			}
		}
	}
}

func kernelKey(kernel []int) string {
	var sb strings.Builder
	for _, it := range kernel {
		sb.WriteString(strconv.Itoa(it))
		sb.WriteByte(',')
	}
	return sb.String()
}

func (b *builder) stateFor(kernel []int) int {
	key := kernelKey(kernel)
	if id, ok := b.stateIndex[key]; ok {
		return id
	}
	st := &lr0State{
		kernel: kernel,
		index:  make(map[int]int, len(kernel)),
		trans:  make(map[int]int),
	}
	for i, it := range kernel {
		st.index[it] = i
	}
	id := len(b.states)
	b.states = append(b.states, st)
	b.stateIndex[key] = id
	return id
}

// closure0 returns the LR(0) closure of kernel.
func (b *builder) closure0(kernel []int) []int {
	items := slices.Clone(kernel)
	added := make([]bool, len(b.syms)-b.nterms)
	for i := 0; i < len(items); i++ {
		x := b.next(items[i])
		if x < b.nterms || added[x-b.nterms] {
			continue
		}
		added[x-b.nterms] = true
		for _, r := range b.byLHS[x-b.nterms] {
			items = append(items, b.ruleItem[r])
		}
	}
	return items
}

func (b *builder) buildLR0() {
	b.stateFor([]int{b.ruleItem[0]})
	for i := 0; i < len(b.states); i++ {
		st := b.states[i]
		groups := make(map[int][]int)
		for _, it := range b.closure0(st.kernel) {
			if x := b.next(it); x >= 0 {
				groups[x] = append(groups[x], it+1)
			}
		}
		syms := make([]int, 0, len(groups))
		for x := range groups {
			syms = append(syms, x)
		}
		slices.Sort(syms)
		for _, x := range syms {
			kernel := groups[x]
			slices.Sort(kernel)
			kernel = slices.Compact(kernel)
			st.trans[x] = b.stateFor(kernel)
		}
	}
	afterStart := b.states[0].trans[b.start]
	b.final = b.states[afterStart].trans[EndSymbol]
}

// closure1 returns the LR(1) closure of seed, merging lookaheads of equal
// items.
func (b *builder) closure1(seed []laItem) []laItem {
	items := make([]laItem, 0, len(seed)*8)
	pos := make(map[int]int, len(seed)*8)
	work := make([]int, 0, len(seed)*8)
	for _, s := range seed {
		pos[s.item] = len(items)
		work = append(work, len(items))
		items = append(items, laItem{item: s.item, la: s.la.clone()})
	}

	for len(work) > 0 {
		i := work[len(work)-1]
		work = work[:len(work)-1]
		x := b.next(items[i].item)
		if x < b.nterms {
			continue
		}
		f := b.firstAfterDot(items[i].item, items[i].la)
		for _, r := range b.byLHS[x-b.nterms] {
			ni := b.ruleItem[r]
			if p, ok := pos[ni]; ok {
				if items[p].la.union(f) {
					work = append(work, p)
				}
				continue
			}
			pos[ni] = len(items)
			work = append(work, len(items))
			items = append(items, laItem{item: ni, la: f.clone()})
		}
	}
	return items
}

// firstAfterDot returns FIRST of the symbols following the one after the
// dot of item, followed by la.
func (b *builder) firstAfterDot(item int, la bitset) bitset {
	out := newBitset(b.laWidth())
	rhs := b.rules[b.itemRule[item]].rhs
	for _, s := range rhs[b.itemDot[item]+1:] {
		out.union(b.first[s])
		if !b.nullable[s] {
			return out
		}
	}
	out.union(la)
	return out
}

// computeLookaheads runs the spontaneous-generation and propagation passes
// that turn the LR(0) automaton into an LALR(1) one.
func (b *builder) computeLookaheads() {
	for _, st := range b.states {
		st.la = make([]bitset, len(st.kernel))
		for i := range st.la {
			st.la[i] = newBitset(b.laWidth())
		}
	}

	var props []propagation
	marker := newBitset(b.laWidth())
	marker.set(b.hashBit())

	for si, st := range b.states {
		for ki, k := range st.kernel {
			for _, e := range b.closure1([]laItem{{item: k, la: marker}}) {
				x := b.next(e.item)
				if x < 0 {
					continue
				}
				to := st.trans[x]
				ti := b.states[to].index[e.item+1]
				if e.la.has(b.hashBit()) {
					props = append(props, propagation{fromState: si, fromItem: ki, toState: to, toItem: ti})
					e.la.clear(b.hashBit())
				}
				b.states[to].la[ti].union(e.la)
			}
		}
	}

	for changed := true; changed; {
		changed = false
		for _, p := range props {
			if b.states[p.toState].la[p.toItem].union(b.states[p.fromState].la[p.fromItem]) {
				changed = true
			}
		}
	}
}

// stateActions collects the resolved actions of one state.
type stateActions struct {
	shift     map[int]int  // terminal to state
	reduce    map[int]int  // terminal to rule
	errs      map[int]bool // nonassoc error entries
	transform map[int]int  // terminal to replacement terminal
}

func (b *builder) actions(si int) stateActions {
	st := b.states[si]
	acts := stateActions{
		shift:     make(map[int]int),
		reduce:    make(map[int]int),
		errs:      make(map[int]bool),
		transform: make(map[int]int),
	}
	for x, to := range st.trans {
		if x < b.nterms {
			acts.shift[x] = to
		}
	}

	seed := make([]laItem, len(st.kernel))
	for i, k := range st.kernel {
		seed[i] = laItem{item: k, la: st.la[i]}
	}
	var completed []laItem
	for _, e := range b.closure1(seed) {
		if b.next(e.item) < 0 {
			completed = append(completed, e)
		}
	}
	slices.SortFunc(completed, func(a, c laItem) int { return b.itemRule[a.item] - b.itemRule[c.item] })

	for _, e := range completed {
		r := b.itemRule[e.item]
		e.la.each(func(t int) {
			if prev, ok := acts.reduce[t]; ok {
				if prev != r {
					b.report.addConflict(Conflict{
						State: si, Symbol: b.syms[t].name, Kind: ReduceReduce,
						Rule: prev, Other: r, Resolution: "reduce by rule " + strconv.Itoa(prev),
					})
				}
				return
			}
			acts.reduce[t] = r
		})
	}

	for t, r := range acts.reduce {
		to, ok := acts.shift[t]
		if !ok {
			continue
		}
		b.resolveShiftReduce(si, t, r, to, &acts)
	}

	for _, f := range b.g.folds {
		from, to := b.symIndex[f.from], b.symIndex[f.to]
		if acts.has(from) {
			continue
		}
		if _, ok := acts.shift[to]; ok {
			acts.transform[from] = to
		} else if _, ok := acts.reduce[to]; ok {
			acts.transform[from] = to
		}
	}
	return acts
}

func (a stateActions) has(t int) bool {
	_, s := a.shift[t]
	_, r := a.reduce[t]
	return s || r || a.errs[t]
}

func (b *builder) resolveShiftReduce(si, t, r, to int, acts *stateActions) {
	tok, ru := b.syms[t], b.rules[r]
	if tok.prec == 0 || ru.prec == 0 {
		delete(acts.reduce, t)
		b.report.addConflict(Conflict{
			State: si, Symbol: tok.name, Kind: ShiftReduce,
			Rule: r, Other: to, Resolution: "shift",
		})
		return
	}

	b.report.ResolvedByPrecedence++
	switch {
	case tok.prec > ru.prec:
		delete(acts.reduce, t)
	case tok.prec < ru.prec:
		delete(acts.shift, t)
	case tok.assoc == AssocLeft:
		delete(acts.shift, t)
	case tok.assoc == AssocRight:
		delete(acts.reduce, t)
	default:
		delete(acts.shift, t)
		delete(acts.reduce, t)
		acts.errs[t] = true
	}
}

// consistentRule returns the single rule a state reduces by when it has
// nothing else to do.
func (a stateActions) consistentRule() (int, bool) {
	if len(a.shift) != 0 || len(a.errs) != 0 || len(a.reduce) == 0 {
		return 0, false
	}
	rule := -1
	for _, r := range a.reduce {
		if rule != -1 && r != rule {
			return 0, false
		}
		rule = r
	}
	return rule, true
}

func conv32(v int) int32 {
	out, err := safecast.Conv[int32](v)
	if err != nil {
		panic(err)
	}
	return out
}

func (b *builder) emit() (*Tables, error) {
	nstates := len(b.states)
	nsyms := len(b.syms)
	t := &Tables{
		Version:       FormatVersion,
		Name:          b.g.name,
		NumTerminals:  conv32(b.nterms),
		NumStates:     conv32(nstates),
		FinalState:    conv32(b.final),
		Translate:     make([]int32, token.MaxKind),
		SymbolNames:   make([]string, nsyms),
		DefaultReduce: make([]int32, nstates),
		DefaultGoto:   make([]int32, nsyms-b.nterms),
		RuleLength:    make([]int32, len(b.rules)),
		RuleLHS:       make([]int32, len(b.rules)),
	}
	for i := range t.Translate {
		t.Translate[i] = UndefinedSymbol
	}
	t.Translate[token.EOF] = EndSymbol
	for _, tok := range b.g.tokens {
		t.Translate[tok.kind] = conv32(b.symIndex[tok.name])
	}
	for i, s := range b.syms {
		t.SymbolNames[i] = s.name
	}
	for r, ru := range b.rules {
		t.RuleLength[r] = conv32(len(ru.rhs))
		t.RuleLHS[r] = conv32(ru.lhs)
	}

	shiftRows := make([]*row, nstates)
	reduceRows := make([]*row, nstates)
	for si := range b.states {
		acts := b.actions(si)
		shiftRows[si] = &row{}
		reduceRows[si] = &row{}
		for sym, to := range acts.shift {
			shiftRows[si].add(sym, conv32(to))
		}
		for sym, to := range acts.transform {
			shiftRows[si].add(sym, conv32(-to-1))
		}
		if r, ok := acts.consistentRule(); ok {
			t.DefaultReduce[si] = conv32(r)
			continue
		}
		t.DefaultReduce[si] = noRow
		for sym, r := range acts.reduce {
			reduceRows[si].add(sym, conv32(r))
		}
	}

	gotoRows := make([]*row, nsyms-b.nterms)
	for nt := b.nterms; nt < nsyms; nt++ {
		counts := make(map[int]int)
		for _, st := range b.states {
			if to, ok := st.trans[nt]; ok {
				counts[to]++
			}
		}
		def, best := 0, 0
		for to, n := range counts {
			if n > best || (n == best && to < def) {
				def, best = to, n
			}
		}
		t.DefaultGoto[nt-b.nterms] = conv32(def)
		gr := &row{}
		for si, st := range b.states {
			if to, ok := st.trans[nt]; ok && to != def {
				gr.add(si, conv32(to))
			}
		}
		gotoRows[nt-b.nterms] = gr
	}

	all := make([]*row, 0, 2*nstates+len(gotoRows))
	all = append(all, shiftRows...)
	all = append(all, reduceRows...)
	all = append(all, gotoRows...)
	t.Table, t.Check = pack(all)

	t.ShiftBase = bases(shiftRows)
	t.ReduceBase = bases(reduceRows)
	t.GotoBase = bases(gotoRows)

	b.report.Terminals = b.nterms
	b.report.Nonterminals = nsyms - b.nterms
	b.report.Rules = len(b.rules)
	b.report.States = nstates
	b.report.TableSize = len(t.Table)
	for _, r := range b.rules {
		names := make([]string, len(r.rhs))
		for i, s := range r.rhs {
			names[i] = b.syms[s].name
		}
		b.report.RuleText = append(b.report.RuleText, Rule{LHS: b.syms[r.lhs].name, RHS: names}.String())
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
