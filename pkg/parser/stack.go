package parser

import "github.com/leapstack-labs/cosmosql/pkg/token"

// stacks holds the state, value and span stacks of one parse. Push and pop
// go through this type so the three always have the same height.
type stacks struct {
	states []int
	values []any
	spans  []token.Span
}

func newStacks(capacity int) stacks {
	return stacks{
		states: make([]int, 0, capacity),
		values: make([]any, 0, capacity),
		spans:  make([]token.Span, 0, capacity),
	}
}

func (s *stacks) height() int { return len(s.states) }

func (s *stacks) push(state int, value any, span token.Span) {
	s.states = append(s.states, state)
	s.values = append(s.values, value)
	s.spans = append(s.spans, span)
}

// pop removes the top n entries. The caller checks n against height.
func (s *stacks) pop(n int) {
	h := len(s.states) - n
	clear(s.values[h:])
	s.states = s.states[:h]
	s.values = s.values[:h]
	s.spans = s.spans[:h]
}

func (s *stacks) topState() int { return s.states[len(s.states)-1] }

func (s *stacks) topSpan() token.Span { return s.spans[len(s.spans)-1] }

// window returns the top n values and spans. The slices alias the stacks
// and are valid until the next push or pop.
func (s *stacks) window(n int) ([]any, []token.Span) {
	h := len(s.states)
	return s.values[h-n : h], s.spans[h-n : h]
}
