package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/cosmosql/internal/config"
	"github.com/leapstack-labs/cosmosql/pkg/format"
	"github.com/leapstack-labs/cosmosql/pkg/parser"
)

// FmtOptions holds options for the fmt command.
type FmtOptions struct {
	Input string
}

// FmtResult is the machine-readable result of the fmt command.
type FmtResult struct {
	Formatted   string             `json:"formatted,omitempty" yaml:"formatted,omitempty"`
	Diagnostics []DiagnosticRecord `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// NewFmtCommand creates the fmt command.
func NewFmtCommand() *cobra.Command {
	opts := &FmtOptions{}

	cmd := &cobra.Command{
		Use:   "fmt [query]",
		Short: "Pretty print a query",
		Long: `Parse a query and print it laid out over several lines, one clause per
line, with keywords in the configured case.`,
		Example: `  cosmosql fmt "select * from c where c.a = 1 and c.b = 2"
  cosmosql fmt --keyword-case lower --indent 4 -i query.sql`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read the query from a file ('-' for stdin)")
	cmd.Flags().String("keyword-case", config.DefaultKeywordCase, "Keyword case (upper|lower|title)")
	cmd.Flags().Int("indent", config.DefaultIndent, "Spaces per indentation level")

	_ = cmd.RegisterFlagCompletionFunc("keyword-case", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"upper", "lower", "title"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runFmt(cmd *cobra.Command, args []string, opts *FmtOptions) error {
	cc := NewCommandContext(cmd)
	r := cc.Renderer

	name, text, err := readQuery(cmd, args, opts.Input)
	if err != nil {
		return err
	}

	out, err := parser.Parse(text, cc.Cfg.ParserOptions(cc.Logger)...)
	if err != nil {
		return err
	}

	var formatted string
	if out.OK() {
		formatted = format.Query(out.Root, cc.Cfg.FormatOptions())
	}

	switch {
	case r.IsStructured():
		if err := r.Encode(FmtResult{
			Formatted:   formatted,
			Diagnostics: diagnosticRecords("", text, out.Diagnostics),
		}); err != nil {
			return err
		}
	case out.OK():
		r.Printf("%s", formatted)
	default:
		printDiagnostics(r, name, text, out.Diagnostics)
	}

	if !out.OK() {
		return ErrDiagnostics
	}
	return nil
}
