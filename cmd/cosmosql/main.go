// Package main provides the cosmosql command.
package main

import (
	"os"

	"github.com/leapstack-labs/cosmosql/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
