package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/cosmosql/internal/cli/output"
	"github.com/leapstack-labs/cosmosql/pkg/ast"
	"github.com/leapstack-labs/cosmosql/pkg/grammar"
	"github.com/leapstack-labs/cosmosql/pkg/parser"
)

// ParseOptions holds options for the parse command.
type ParseOptions struct {
	Input  string
	Tables string
}

// ParseResult is the machine-readable result of the parse command.
type ParseResult struct {
	Query       string             `json:"query,omitempty" yaml:"query,omitempty"`
	Tree        *TreeNode          `json:"tree,omitempty" yaml:"tree,omitempty"`
	Diagnostics []DiagnosticRecord `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	opts := &ParseOptions{}

	cmd := &cobra.Command{
		Use:   "parse [query]",
		Short: "Parse a query and print its syntax tree",
		Long: `Parse a query and print its syntax tree, or the diagnostics found in it.

The query is read from the arguments, from --input, or from standard input.
The exit status is 1 when the query has diagnostics.`,
		Example: `  # Print the canonical form of a query
  cosmosql parse "SELECT c.name FROM c WHERE c.age > 21"

  # Print the tree as JSON
  cosmosql parse -o json -i query.sql

  # Parse with tables written by 'cosmosql grammar export'
  cosmosql parse --tables cosmosql.tables "SELECT VALUE 1"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read the query from a file ('-' for stdin)")
	cmd.Flags().StringVar(&opts.Tables, "tables", "", "Parse with tables read from a file")

	return cmd
}

// parseOptions returns the parser options for cc, loading tables from
// tablesFile when given.
func parseOptions(cc *CommandContext, tablesFile string) ([]parser.Option, error) {
	opts := cc.Cfg.ParserOptions(cc.Logger)
	if tablesFile != "" {
		t, err := grammar.ReadFile(tablesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load tables: %w", err)
		}
		opts = append(opts, parser.WithTables(t))
	}
	return opts, nil
}

func runParse(cmd *cobra.Command, args []string, opts *ParseOptions) error {
	cc := NewCommandContext(cmd)
	r := cc.Renderer

	name, text, err := readQuery(cmd, args, opts.Input)
	if err != nil {
		return err
	}
	popts, err := parseOptions(cc, opts.Tables)
	if err != nil {
		return err
	}

	out, err := parser.Parse(text, popts...)
	if err != nil {
		return err
	}
	cc.Logger.Debug("parsed", "source", name, "ok", out.OK(), "diagnostics", len(out.Diagnostics))

	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		res := ParseResult{Diagnostics: diagnosticRecords("", text, out.Diagnostics)}
		if out.OK() {
			res.Query = ast.String(out.Root)
			res.Tree = buildTree(out.Root)
		}
		if err := r.Encode(res); err != nil {
			return err
		}
	case output.ModeTable:
		if out.OK() {
			renderTreeTable(r, buildTree(out.Root))
		} else {
			printDiagnostics(r, name, text, out.Diagnostics)
		}
	default:
		if out.OK() {
			r.Println(ast.String(out.Root))
		} else {
			printDiagnostics(r, name, text, out.Diagnostics)
		}
	}

	if !out.OK() {
		return ErrDiagnostics
	}
	return nil
}
