package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/cosmosql/internal/cli/output"
	"github.com/leapstack-labs/cosmosql/pkg/grammar"
	"github.com/leapstack-labs/cosmosql/pkg/syntax"
)

// GrammarOptions holds options for the grammar command.
type GrammarOptions struct {
	Rules bool
}

// GrammarResult is the machine-readable result of the grammar command.
type GrammarResult struct {
	Grammar              string   `json:"grammar" yaml:"grammar"`
	Terminals            int      `json:"terminals" yaml:"terminals"`
	Nonterminals         int      `json:"nonterminals" yaml:"nonterminals"`
	Rules                int      `json:"rules" yaml:"rules"`
	States               int      `json:"states" yaml:"states"`
	TableSize            int      `json:"table_size" yaml:"table_size"`
	ResolvedByPrecedence int      `json:"resolved_by_precedence" yaml:"resolved_by_precedence"`
	Conflicts            []string `json:"conflicts" yaml:"conflicts"`
	RuleText             []string `json:"rule_text,omitempty" yaml:"rule_text,omitempty"`
}

// NewGrammarCommand creates the grammar command and its export subcommand.
func NewGrammarCommand() *cobra.Command {
	opts := &GrammarOptions{}

	cmd := &cobra.Command{
		Use:   "grammar",
		Short: "Show parsing table statistics",
		Long: `Build the parsing tables and print their size, the number of conflicts
settled by precedence, and any conflicts left unresolved.`,
		Example: `  cosmosql grammar
  cosmosql grammar --rules -o yaml
  cosmosql grammar export cosmosql.tables`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGrammar(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Rules, "rules", false, "List the grammar rules")
	cmd.AddCommand(newGrammarExportCommand())

	return cmd
}

func newGrammarExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write the parsing tables to a file",
		Long: `Write the parsing tables in their binary form. The file can be passed to
'parse --tables' and 'check --tables' to skip building the tables.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			t, err := syntax.Tables()
			if err != nil {
				return err
			}
			if err := t.WriteFile(args[0]); err != nil {
				return fmt.Errorf("failed to write tables: %w", err)
			}
			cc.Logger.Debug("tables exported", "path", args[0], "states", t.NumStates)
			cc.Renderer.Printf("Wrote %d states to %s\n", t.NumStates, args[0])
			return nil
		},
	}
}

func grammarResult(rep *grammar.Report, rules bool) GrammarResult {
	res := GrammarResult{
		Grammar:              rep.Grammar,
		Terminals:            rep.Terminals,
		Nonterminals:         rep.Nonterminals,
		Rules:                rep.Rules,
		States:               rep.States,
		TableSize:            rep.TableSize,
		ResolvedByPrecedence: rep.ResolvedByPrecedence,
		Conflicts:            make([]string, 0, len(rep.Conflicts)),
	}
	for _, c := range rep.Conflicts {
		res.Conflicts = append(res.Conflicts, c.String())
	}
	if rules {
		res.RuleText = rep.RuleText
	}
	return res
}

func runGrammar(cmd *cobra.Command, opts *GrammarOptions) error {
	cc := NewCommandContext(cmd)
	r := cc.Renderer

	rep, err := syntax.Report()
	if err != nil {
		return err
	}
	res := grammarResult(rep, opts.Rules)

	if r.IsStructured() {
		return r.Encode(res)
	}

	styles := r.Styles()
	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.SetTitle(res.Grammar)
	t.AppendRows([]table.Row{
		{"Terminals", res.Terminals},
		{"Nonterminals", res.Nonterminals},
		{"Rules", res.Rules},
		{"States", res.States},
		{"Table entries", res.TableSize},
		{"Resolved by precedence", res.ResolvedByPrecedence},
		{"Unresolved conflicts", len(res.Conflicts)},
	})
	t.Render()

	for _, c := range res.Conflicts {
		r.Println(styles.Warning.Render(c))
	}
	if opts.Rules {
		r.Println("")
		for i, rule := range res.RuleText {
			r.Printf("%s %s\n", styles.Muted.Render(fmt.Sprintf("%4d", i)), rule)
		}
	}
	if r.EffectiveMode() == output.ModeText && len(res.Conflicts) == 0 {
		r.Println(styles.Success.Render("No unresolved conflicts."))
	}
	return nil
}
