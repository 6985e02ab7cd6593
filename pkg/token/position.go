package token

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Position is a human-facing location in the source text.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number, counted in runes
	Offset uint64
}

// IsValid returns true if the position is valid (line > 0).
func (p Position) IsValid() bool {
	return p.Line > 0
}

// String formats the position as line:column.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is a half-open range [Start, End) of byte offsets into the text being
// parsed. Spans are plain values; Start <= End always holds.
type Span struct {
	Start uint64
	End   uint64
}

// NewSpan returns the span [start, end). It panics if start > end.
func NewSpan(start, end uint64) Span {
	if start > end {
		panic(fmt.Sprintf("token: invalid span %d:%d", start, end))
	}
	return Span{Start: start, End: end}
}

// At returns the empty span at offset.
func At(offset uint64) Span {
	return Span{Start: offset, End: offset}
}

// Len returns the number of bytes covered.
func (s Span) Len() uint64 {
	return s.End - s.Start
}

// Empty reports whether the span covers nothing.
func (s Span) Empty() bool {
	return s.Start == s.End
}

// Cover returns the smallest span containing both s and o.
func (s Span) Cover(o Span) Span {
	out := s
	if o.Start < out.Start {
		out.Start = o.Start
	}
	if o.End > out.End {
		out.End = o.End
	}
	return out
}

// Contains returns true if the span contains the given offset.
func (s Span) Contains(offset uint64) bool {
	return offset >= s.Start && offset < s.End
}

// Text returns the slice of src covered by the span, clamped to src.
func (s Span) Text(src string) string {
	n := uint64(len(src))
	start, end := min(s.Start, n), min(s.End, n)
	return src[start:end]
}

// String formats the span as start:end.
func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Start, s.End)
}

// Resolve converts a byte offset into a line/column position within src.
// Offsets past the end resolve to the end of src.
func Resolve(src string, offset uint64) Position {
	offset = min(offset, uint64(len(src)))
	before := src[:offset]
	line := strings.Count(before, "\n") + 1
	lineStart := strings.LastIndexByte(before, '\n') + 1
	return Position{
		Line:   line,
		Column: utf8.RuneCountInString(before[lineStart:]) + 1,
		Offset: offset,
	}
}
