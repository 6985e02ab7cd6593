package commands

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/cosmosql/pkg/grammar"
	"github.com/leapstack-labs/cosmosql/pkg/syntax"
)

// VersionInfo describes the binary and the parsing tables it was built with.
type VersionInfo struct {
	Version      string `json:"version" yaml:"version"`
	Commit       string `json:"commit" yaml:"commit"`
	Date         string `json:"date" yaml:"date"`
	GoVersion    string `json:"go_version" yaml:"go_version"`
	Grammar      string `json:"grammar" yaml:"grammar"`
	States       int    `json:"states" yaml:"states"`
	TableVersion int    `json:"table_version" yaml:"table_version"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display cosmosql version and build information, including the grammar
the built-in parsing tables were generated from.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			info, err := versionInfo(version, commit, date)
			if err != nil {
				return err
			}

			r := cc.Renderer
			if r.IsStructured() {
				return r.Encode(info)
			}
			r.Println(r.Styles().Header.Render("cosmosql v" + info.Version))
			r.Printf("commit %s, built %s, %s\n", info.Commit, info.Date, info.GoVersion)
			r.Printf("grammar %s, %d states, table format %d\n", info.Grammar, info.States, info.TableVersion)
			return nil
		},
	}
}

func versionInfo(version, commit, date string) (*VersionInfo, error) {
	tables, err := syntax.Tables()
	if err != nil {
		return nil, err
	}
	return &VersionInfo{
		Version:      version,
		Commit:       valueOr(commit, "unknown"),
		Date:         valueOr(date, "unknown"),
		GoVersion:    runtime.Version(),
		Grammar:      tables.Name,
		States:       int(tables.NumStates),
		TableVersion: grammar.FormatVersion,
	}, nil
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
