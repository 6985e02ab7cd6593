package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/cosmosql/internal/cli/output"
	"github.com/leapstack-labs/cosmosql/pkg/scanner"
)

// TokensOptions holds options for the tokens command.
type TokensOptions struct {
	Input  string
	Trivia bool
}

// TokenRecord is the machine-readable form of a token.
type TokenRecord struct {
	Kind  string `json:"kind" yaml:"kind"`
	Start uint64 `json:"start" yaml:"start"`
	End   uint64 `json:"end" yaml:"end"`
	Text  string `json:"text" yaml:"text"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

// NewTokensCommand creates the tokens command.
func NewTokensCommand() *cobra.Command {
	opts := &TokensOptions{}

	cmd := &cobra.Command{
		Use:   "tokens [query]",
		Short: "Print the tokens of a query",
		Long: `Scan a query and print one row per token with its kind, span, source
text and numeric value. Whitespace and comments are hidden unless --trivia
is given.`,
		Example: `  cosmosql tokens "SELECT TOP 5 * FROM c"
  cosmosql tokens --trivia -o json -i query.sql`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokens(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read the query from a file ('-' for stdin)")
	cmd.Flags().BoolVar(&opts.Trivia, "trivia", false, "Include whitespace and comments")

	return cmd
}

func tokenRecords(text string, trivia bool) []TokenRecord {
	var out []TokenRecord
	for _, tok := range scanner.All(text) {
		if tok.Kind.IsTrivia() && !trivia {
			continue
		}
		rec := TokenRecord{
			Kind:  tok.Kind.String(),
			Start: tok.Span.Start,
			End:   tok.Span.End,
			Text:  tok.Span.Text(text),
		}
		if !tok.Value.IsZero() {
			rec.Value = tok.Value.String()
		}
		out = append(out, rec)
	}
	return out
}

func runTokens(cmd *cobra.Command, args []string, opts *TokensOptions) error {
	cc := NewCommandContext(cmd)
	r := cc.Renderer

	_, text, err := readQuery(cmd, args, opts.Input)
	if err != nil {
		return err
	}
	records := tokenRecords(text, opts.Trivia)

	if r.IsStructured() {
		return r.Encode(records)
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Kind", "Span", "Text", "Value"})
	for i, rec := range records {
		t.AppendRow(table.Row{i, rec.Kind, fmt.Sprintf("%d:%d", rec.Start, rec.End), rec.Text, rec.Value})
	}
	if r.EffectiveMode() == output.ModeText {
		t.Style().Options.DrawBorder = false
	}
	t.Render()
	return nil
}
