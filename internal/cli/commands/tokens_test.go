package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/cosmosql/internal/config"
)

func TestTokenRecords(t *testing.T) {
	records := tokenRecords("SELECT TOP 5 * FROM c", false)

	var kinds []string
	for _, r := range records {
		kinds = append(kinds, r.Kind)
	}
	assert.Equal(t, []string{"SELECT", "TOP", "NUMBER", "*", "FROM", "IDENT", "EOF"}, kinds)

	num := records[2]
	assert.Equal(t, "5", num.Text)
	assert.Equal(t, "5", num.Value)
	assert.Equal(t, uint64(11), num.Start)
	assert.Equal(t, uint64(12), num.End)

	assert.Empty(t, records[0].Value)

	withTrivia := tokenRecords("SELECT TOP 5 * FROM c", true)
	assert.Len(t, withTrivia, len(records)+5)
	assert.Equal(t, "WHITESPACE", withTrivia[1].Kind)
}

func TestTokensCommand(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		out, _, err := execute(t, NewTokensCommand(), nil, "", "SELECT c.a != 1 FROM c -- done")
		require.NoError(t, err)

		assert.Contains(t, out, "SELECT")
		assert.Contains(t, out, "!=")
		assert.NotContains(t, out, "COMMENT")
	})

	t.Run("json with trivia", func(t *testing.T) {
		out, _, err := execute(t, NewTokensCommand(), withOutput(config.OutputJSON), "", "--trivia", "SELECT 1 -- done")
		require.NoError(t, err)

		var records []TokenRecord
		require.NoError(t, json.Unmarshal([]byte(out), &records), out)
		require.Len(t, records, 6)
		assert.Equal(t, "COMMENT", records[4].Kind)
		assert.Equal(t, "-- done", records[4].Text)
		assert.Equal(t, "EOF", records[5].Kind)
	})
}
