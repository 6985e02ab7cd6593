package commands

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/cosmosql/internal/cli/output"
	"github.com/leapstack-labs/cosmosql/pkg/diag"
	"github.com/leapstack-labs/cosmosql/pkg/parser"
)

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Jobs   int
	Watch  bool
	Tables string
}

// FileResult is the outcome of checking one file.
type FileResult struct {
	File        string             `json:"file" yaml:"file"`
	OK          bool               `json:"ok" yaml:"ok"`
	Diagnostics []DiagnosticRecord `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`

	src   string
	diags diag.List
}

// CheckReport is the machine-readable result of one check run.
type CheckReport struct {
	RunID   string       `json:"run_id" yaml:"run_id"`
	Checked int          `json:"checked" yaml:"checked"`
	Failed  int          `json:"failed" yaml:"failed"`
	Files   []FileResult `json:"files" yaml:"files"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check <path>...",
		Short: "Check query files for diagnostics",
		Long: `Parse every .sql file named on the command line, or found below a named
directory, and report the diagnostics of each. Files are parsed
concurrently. The exit status is 1 when any file has diagnostics.

With --watch the files are checked again whenever one changes, until
interrupted.`,
		Example: `  cosmosql check queries/
  cosmosql check -o json a.sql b.sql
  cosmosql check --watch queries/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", runtime.GOMAXPROCS(0), "Files parsed at once")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Check again when files change")
	cmd.Flags().StringVar(&opts.Tables, "tables", "", "Parse with tables read from a file")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts *CheckOptions) error {
	cc := NewCommandContext(cmd)
	popts, err := parseOptions(cc, opts.Tables)
	if err != nil {
		return err
	}

	if opts.Watch {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return watchCheck(ctx, cc, args, popts, opts.Jobs)
	}

	report, err := checkPaths(cmd.Context(), cc, args, popts, opts.Jobs)
	if err != nil {
		return err
	}
	if report.Failed > 0 {
		return ErrDiagnostics
	}
	return nil
}

// checkPaths runs one check over the files named by paths and prints the
// report.
func checkPaths(ctx context.Context, cc *CommandContext, paths []string, popts []parser.Option, jobs int) (*CheckReport, error) {
	files, err := collectFiles(paths)
	if err != nil {
		return nil, err
	}

	report := &CheckReport{RunID: uuid.NewString(), Checked: len(files)}
	cc.Logger.Debug("check started", "run_id", report.RunID, "files", len(files), "jobs", jobs)

	report.Files, err = checkFiles(ctx, files, popts, jobs)
	if err != nil {
		return nil, err
	}
	for _, f := range report.Files {
		if !f.OK {
			report.Failed++
		}
	}
	cc.Logger.Debug("check finished", "run_id", report.RunID, "failed", report.Failed)

	if err := printReport(cc.Renderer, report); err != nil {
		return nil, err
	}
	return report, nil
}

// collectFiles expands directories to the .sql files below them. Hidden
// directories are skipped. The result is sorted and free of duplicates.
func collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if isQueryFile(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", p, err)
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

func isQueryFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".sql")
}

// checkFiles parses files with at most jobs parses in flight. Results keep
// the order of files.
func checkFiles(ctx context.Context, files []string, popts []parser.Option, jobs int) ([]FileResult, error) {
	results := make([]FileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}
			src := string(b)
			out, err := parser.Parse(src, popts...)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			results[i] = FileResult{
				File:        file,
				OK:          out.OK(),
				Diagnostics: diagnosticRecords(file, src, out.Diagnostics),
				src:         src,
				diags:       out.Diagnostics,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func printReport(r *output.Renderer, report *CheckReport) error {
	if r.IsStructured() {
		return r.Encode(report)
	}

	styles := r.Styles()
	if r.EffectiveMode() == output.ModeText {
		for _, f := range report.Files {
			if !f.OK {
				printDiagnostics(r, f.File, f.src, f.diags)
			}
		}
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"File", "Status", "Diagnostics", "First"})
	for _, f := range report.Files {
		status, first := styles.Success.Render("ok"), ""
		if !f.OK {
			status = styles.Error.Render("fail")
			d := f.Diagnostics[0]
			first = fmt.Sprintf("%s %d:%d %s", d.Code, d.Line, d.Column, d.Message)
		}
		t.AppendRow(table.Row{f.File, status, len(f.Diagnostics), first})
	}
	t.AppendFooter(table.Row{"", "", report.Failed, fmt.Sprintf("%d of %d files failed", report.Failed, report.Checked)})
	t.Render()
	return nil
}
