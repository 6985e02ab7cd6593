package syntax

import (
	"fmt"
	"sync"

	"github.com/leapstack-labs/cosmosql/pkg/grammar"
)

type built struct {
	tables *grammar.Tables
	report *grammar.Report
}

var build = sync.OnceValues(func() (*built, error) {
	t, r, err := grammar.Build(Grammar())
	if err != nil {
		return nil, fmt.Errorf("build %s tables: %w", GrammarName, err)
	}
	return &built{tables: t, report: r}, nil
})

// Tables returns the parsing tables of the grammar. They are built on first
// use and shared afterwards.
func Tables() (*grammar.Tables, error) {
	b, err := build()
	if err != nil {
		return nil, err
	}
	return b.tables, nil
}

// Report returns the build report of the shared tables.
func Report() (*grammar.Report, error) {
	b, err := build()
	if err != nil {
		return nil, err
	}
	return b.report, nil
}
