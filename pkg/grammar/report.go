package grammar

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// ConflictKind distinguishes the two kinds of LALR(1) conflicts.
type ConflictKind uint8

// Conflict kinds.
const (
	ShiftReduce ConflictKind = iota
	ReduceReduce
)

func (k ConflictKind) String() string {
	if k == ReduceReduce {
		return "reduce/reduce"
	}
	return "shift/reduce"
}

// Conflict is an ambiguity that precedence declarations did not settle.
// For shift/reduce conflicts Other is the shift target; for reduce/reduce
// conflicts it is the losing rule.
type Conflict struct {
	State      int
	Symbol     string
	Kind       ConflictKind
	Rule       int
	Other      int
	Resolution string
}

func (c Conflict) String() string {
	return fmt.Sprintf("state %d: %s conflict on %s (rule %d vs %d), resolved as %s",
		c.State, c.Kind, c.Symbol, c.Rule, c.Other, c.Resolution)
}

// Report summarizes a table build.
type Report struct {
	Grammar              string
	Terminals            int
	Nonterminals         int
	Rules                int
	States               int
	TableSize            int
	ResolvedByPrecedence int
	Conflicts            []Conflict
	RuleText             []string
}

func (r *Report) addConflict(c Conflict) {
	r.Conflicts = append(r.Conflicts, c)
	slices.SortFunc(r.Conflicts, func(a, b Conflict) int {
		if n := cmp.Compare(a.State, b.State); n != 0 {
			return n
		}
		return cmp.Compare(a.Symbol, b.Symbol)
	})
}

// Count returns the number of conflicts of kind k.
func (r *Report) Count(k ConflictKind) int {
	n := 0
	for _, c := range r.Conflicts {
		if c.Kind == k {
			n++
		}
	}
	return n
}

// String renders a short summary in the style of bison's conflict report.
func (r *Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d terminals, %d nonterminals, %d rules, %d states, %d table entries",
		r.Grammar, r.Terminals, r.Nonterminals, r.Rules, r.States, r.TableSize)
	if sr, rr := r.Count(ShiftReduce), r.Count(ReduceReduce); sr+rr > 0 {
		fmt.Fprintf(&sb, "; conflicts: %d shift/reduce, %d reduce/reduce", sr, rr)
	}
	return sb.String()
}
