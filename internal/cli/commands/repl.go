package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/cosmosql/pkg/ast"
	"github.com/leapstack-labs/cosmosql/pkg/format"
	"github.com/leapstack-labs/cosmosql/pkg/parser"
	"github.com/leapstack-labs/cosmosql/pkg/token"
)

const (
	replPrompt     = "cosmosql> "
	replContPrompt = "     ...> "
)

// REPL display modes.
const (
	replModeTree   = "tree"
	replModeFmt    = "fmt"
	replModeTokens = "tokens"
)

var replDotCommands = []string{".help", ".mode", ".clear", ".quit", ".exit"}

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	var history string

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Parse queries interactively",
		Long: `Start an interactive session that parses each query as it is entered.

Queries end with a semicolon and may span several lines. Tab completes
keywords. Type .help for the list of commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd, history)
		},
	}

	cmd.Flags().StringVar(&history, "history", defaultHistoryFile(), "History file (empty to disable)")

	return cmd
}

func defaultHistoryFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "cosmosql", "repl_history")
}

func runREPL(cmd *cobra.Command, history string) error {
	cc := NewCommandContext(cmd)

	if history != "" {
		if err := os.MkdirAll(filepath.Dir(history), 0o750); err != nil {
			cc.Logger.Warn("history disabled", "error", err)
			history = ""
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     history,
		AutoComplete:    keywordCompleter{},
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdin:           io.NopCloser(cmd.InOrStdin()),
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "cosmosql REPL")
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	s := newREPLSession(cc)
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			s.reset()
			rl.SetPrompt(s.prompt())
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if s.feed(line) {
			return nil
		}
		rl.SetPrompt(s.prompt())
	}
}

// replSession accumulates input lines and parses each complete query.
type replSession struct {
	cc    *CommandContext
	mode  string
	query strings.Builder
}

func newREPLSession(cc *CommandContext) *replSession {
	return &replSession{cc: cc, mode: replModeTree}
}

func (s *replSession) prompt() string {
	if s.query.Len() > 0 {
		return replContPrompt
	}
	return replPrompt
}

func (s *replSession) reset() {
	s.query.Reset()
}

// feed handles one line of input. It reports true when the session should
// end.
func (s *replSession) feed(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if s.query.Len() == 0 && strings.HasPrefix(line, ".") {
		return s.dotCommand(line)
	}

	s.query.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		s.query.WriteString("\n")
		return false
	}
	text := strings.TrimSuffix(s.query.String(), ";")
	s.query.Reset()

	if err := s.eval(text); err != nil {
		s.cc.Renderer.Errorf("Error: %v\n", err)
	}
	return false
}

func (s *replSession) dotCommand(line string) bool {
	r := s.cc.Renderer
	parts := strings.Fields(line)

	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit":
		return true
	case ".help":
		r.Println(replHelp)
	case ".mode":
		if len(parts) < 2 {
			r.Printf("mode: %s\n", s.mode)
			return false
		}
		switch m := strings.ToLower(parts[1]); m {
		case replModeTree, replModeFmt, replModeTokens:
			s.mode = m
		default:
			r.Errorf("Unknown mode: %s (tree, fmt or tokens)\n", parts[1])
		}
	case ".clear":
		r.Printf("\033[H\033[2J")
	default:
		r.Errorf("Unknown command: %s (type .help for commands)\n", parts[0])
	}
	return false
}

func (s *replSession) eval(text string) error {
	r := s.cc.Renderer

	if s.mode == replModeTokens {
		for _, rec := range tokenRecords(text, false) {
			r.Printf("%-14s %d:%d %s\n", rec.Kind, rec.Start, rec.End, rec.Text)
		}
		return nil
	}

	out, err := parser.Parse(text, s.cc.Cfg.ParserOptions(s.cc.Logger)...)
	if err != nil {
		return err
	}
	if !out.OK() {
		printDiagnostics(r, "<repl>", text, out.Diagnostics)
		return nil
	}
	if s.mode == replModeFmt {
		r.Printf("%s", format.Query(out.Root, s.cc.Cfg.FormatOptions()))
		return nil
	}
	r.Println(ast.String(out.Root))
	return nil
}

const replHelp = `
Commands:
  .help               Show this help message
  .mode tree|fmt|tokens
                      Print the canonical query, the formatted query or the tokens
  .clear              Clear the screen
  .quit / .exit       Exit the REPL

Tips:
  - Queries must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Tab completion works for keywords`

// keywordCompleter completes the word before the cursor to a keyword, or
// the whole line to a dot command.
type keywordCompleter struct{}

// Do implements readline.AutoCompleter.
func (keywordCompleter) Do(line []rune, pos int) ([][]rune, int) {
	start := pos
	for start > 0 && isWordRune(line[start-1]) {
		start--
	}
	if start > 0 && line[start-1] == '.' && strings.TrimSpace(string(line[:start-1])) == "" {
		start--
	}
	prefix := string(line[start:pos])
	if prefix == "" {
		return nil, 0
	}

	candidates := token.Keywords()
	upper := strings.ToUpper(prefix)
	if strings.HasPrefix(prefix, ".") {
		candidates, upper = replDotCommands, strings.ToLower(prefix)
	}

	var out [][]rune
	for _, c := range candidates {
		if strings.HasPrefix(c, upper) && len(c) > len(upper) {
			suffix := c[len(upper):]
			if !strings.HasPrefix(prefix, ".") && isLowerWord(prefix) {
				suffix = strings.ToLower(suffix)
			}
			out = append(out, []rune(suffix+" "))
		}
	}
	return out, len([]rune(prefix))
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isLowerWord(s string) bool {
	return strings.ToLower(s) == s
}
