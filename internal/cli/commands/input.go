package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// stdinName labels queries read from standard input.
const stdinName = "<stdin>"

// readQuery returns the query text and a name for it. Arguments win over
// the input file, which wins over standard input.
func readQuery(cmd *cobra.Command, args []string, inputFile string) (name, text string, err error) {
	switch {
	case len(args) > 0:
		return "<query>", strings.Join(args, " "), nil
	case inputFile == "-":
	case inputFile != "":
		b, err := os.ReadFile(inputFile)
		if err != nil {
			return "", "", fmt.Errorf("failed to read %s: %w", inputFile, err)
		}
		return inputFile, string(b), nil
	}

	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return stdinName, string(b), nil
}
