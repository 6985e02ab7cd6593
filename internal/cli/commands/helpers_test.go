package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/cosmosql/internal/config"
	"github.com/leapstack-labs/cosmosql/internal/testutil"
)

// execute runs cmd as a root command with cfg in its context. A nil cfg
// means the defaults.
func execute(t *testing.T, cmd *cobra.Command, cfg *config.Config, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	if cfg == nil {
		cfg = config.Default()
	}
	if args == nil {
		args = []string{}
	}
	var out, errOut bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	ctx := WithConfig(context.Background(), cfg)
	ctx = WithLogger(ctx, testutil.NewTestLogger(t))
	err = cmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

// withOutput returns the default configuration with the output mode set.
func withOutput(mode string) *config.Config {
	cfg := config.Default()
	cfg.Output = mode
	return cfg
}
