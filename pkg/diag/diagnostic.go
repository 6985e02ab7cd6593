package diag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/cosmosql/pkg/token"
)

// Diagnostic is one user-facing problem found in the query text.
type Diagnostic struct {
	Code Code
	Span token.Span
}

// New returns a diagnostic for code at span.
func New(code Code, span token.Span) Diagnostic {
	return Diagnostic{Code: code, Span: span}
}

// Error implements error using the message without source text.
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s at %s: %s", d.Code, d.Span, d.Code.Title())
}

// Message returns the full English message, quoting the offending text from
// src where the code refers to it.
func (d Diagnostic) Message(src string) string {
	near := d.Span.Text(src)
	switch d.Code {
	case IncorrectSyntax:
		return fmt.Sprintf("Syntax error, incorrect syntax near '%s'.", near)
	case InvalidToken:
		return fmt.Sprintf("Syntax error, invalid token '%s'.", near)
	case InvalidNumericToken:
		return fmt.Sprintf("Syntax error, invalid numeric value token '%s'.", near)
	case InvalidStringToken:
		return fmt.Sprintf("Syntax error, invalid string literal token '%s'.", near)
	}
	return d.Code.Title() + "."
}

// Render formats the diagnostic with the offending source line and a caret
// underline. The name labels the source, typically a file path.
func (d Diagnostic) Render(name, src string) string {
	start := token.Resolve(src, d.Span.Start)
	end := token.Resolve(src, d.Span.End)

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", d.Code, d.Message(src))
	if name == "" {
		name = "<query>"
	}
	fmt.Fprintf(&b, "  --> %s:%s\n", name, start)

	lines := strings.Split(src, "\n")
	if start.Line-1 >= len(lines) {
		return b.String()
	}
	text := lines[start.Line-1]
	gutter := fmt.Sprintf("%d", start.Line)
	pad := strings.Repeat(" ", len(gutter))

	width := 1
	if end.Line == start.Line && end.Column > start.Column {
		width = end.Column - start.Column
	} else if end.Line > start.Line {
		width = max(len([]rune(text))-start.Column+1, 1)
	}

	fmt.Fprintf(&b, "%s |\n", pad)
	fmt.Fprintf(&b, "%s | %s\n", gutter, text)
	fmt.Fprintf(&b, "%s | %s%s\n", pad, strings.Repeat(" ", start.Column-1), strings.Repeat("^", width))
	return b.String()
}

// Reporter receives diagnostics as they are discovered.
type Reporter interface {
	Add(code Code, span token.Span)
}

// List is an ordered collection of diagnostics. Order is discovery order.
type List []Diagnostic

// Add appends a diagnostic.
func (l *List) Add(code Code, span token.Span) {
	*l = append(*l, New(code, span))
}

// Len returns the number of diagnostics.
func (l List) Len() int {
	return len(l)
}

// Codes returns the codes in order, mainly for tests and summaries.
func (l List) Codes() []Code {
	out := make([]Code, len(l))
	for i, d := range l {
		out[i] = d.Code
	}
	return out
}

// Err joins the diagnostics into a single error, or returns nil when the
// list is empty.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	errs := make([]error, len(l))
	for i, d := range l {
		errs[i] = d
	}
	return errors.Join(errs...)
}
