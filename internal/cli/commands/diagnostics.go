package commands

import (
	"strings"

	"github.com/leapstack-labs/cosmosql/internal/cli/output"
	"github.com/leapstack-labs/cosmosql/pkg/diag"
	"github.com/leapstack-labs/cosmosql/pkg/token"
)

// DiagnosticRecord is the machine-readable form of a diagnostic.
type DiagnosticRecord struct {
	File    string   `json:"file,omitempty" yaml:"file,omitempty"`
	Code    string   `json:"code" yaml:"code"`
	Phase   string   `json:"phase" yaml:"phase"`
	Message string   `json:"message" yaml:"message"`
	Start   uint64   `json:"start" yaml:"start"`
	End     uint64   `json:"end" yaml:"end"`
	Line    int      `json:"line" yaml:"line"`
	Column  int      `json:"column" yaml:"column"`
	Notes   []string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

func diagnosticRecords(file, src string, list diag.List) []DiagnosticRecord {
	out := make([]DiagnosticRecord, 0, len(list))
	for _, d := range list {
		pos := token.Resolve(src, d.Span.Start)
		out = append(out, DiagnosticRecord{
			File:    file,
			Code:    d.Code.String(),
			Phase:   d.Code.Phase().String(),
			Message: d.Message(src),
			Start:   d.Span.Start,
			End:     d.Span.End,
			Line:    pos.Line,
			Column:  pos.Column,
			Notes:   d.Notes(src),
		})
	}
	return out
}

// printDiagnostics writes each diagnostic with its source line and caret
// underline.
func printDiagnostics(r *output.Renderer, name, src string, list diag.List) {
	styles := r.Styles()
	for _, d := range list {
		lines := strings.Split(strings.TrimSuffix(d.Render(name, src), "\n"), "\n")
		for i, line := range lines {
			switch {
			case i == 0:
				code := d.Code.String()
				r.Println(styles.Error.Render(code) + strings.TrimPrefix(line, code))
			case strings.HasSuffix(line, "^"):
				cut := strings.IndexByte(line, '^')
				r.Println(styles.Muted.Render(line[:cut]) + styles.Caret.Render(line[cut:]))
			default:
				r.Println(styles.Muted.Render(line))
			}
		}
		for _, note := range d.Notes(src) {
			r.Println(styles.Muted.Render("  = note: ") + note)
		}
		r.Println("")
	}
}
