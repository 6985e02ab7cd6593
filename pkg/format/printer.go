package format

import (
	"bytes"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/cosmosql/pkg/token"
)

const defaultIndent = 2

// Printer accumulates formatted output with indentation.
type Printer struct {
	output      *bytes.Buffer
	depth       int
	indentSize  int
	atLineStart bool
	caser       cases.Caser
}

func newPrinter(opts Options) *Printer {
	size := opts.Indent
	if size <= 0 {
		size = defaultIndent
	}
	var caser cases.Caser
	switch opts.KeywordCase {
	case Lower:
		caser = cases.Lower(language.Und)
	case Title:
		caser = cases.Title(language.Und)
	default:
		caser = cases.Upper(language.Und)
	}
	return &Printer{
		output:      &bytes.Buffer{},
		indentSize:  size,
		atLineStart: true,
		caser:       caser,
	}
}

// String returns the formatted output.
func (p *Printer) String() string {
	return strings.TrimRight(p.output.String(), "\n") + "\n"
}

func (p *Printer) write(s string) {
	if p.atLineStart && len(s) > 0 && s[0] != '\n' {
		p.writeIndent()
	}
	p.output.WriteString(s)
	p.atLineStart = false
}

func (p *Printer) writeln() {
	p.output.WriteByte('\n')
	p.atLineStart = true
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.depth*p.indentSize; i++ {
		p.output.WriteByte(' ')
	}
	p.atLineStart = false
}

func (p *Printer) indent() {
	p.depth++
}

func (p *Printer) dedent() {
	if p.depth > 0 {
		p.depth--
	}
}

func (p *Printer) space() {
	p.output.WriteByte(' ')
}

// kw prints keywords separated by spaces in the configured case.
func (p *Printer) kw(kinds ...token.Kind) {
	for i, k := range kinds {
		if i > 0 {
			p.space()
		}
		p.write(p.caser.String(k.String()))
	}
}

// formatList prints count items with sep between them, breaking the line
// after each separator when multiline is set.
func (p *Printer) formatList(count int, format func(i int), sep string, multiline bool) {
	for i := 0; i < count; i++ {
		format(i)
		if i < count-1 {
			p.write(sep)
			if multiline {
				p.writeln()
			}
		}
	}
}
