package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_UsersQueries(t *testing.T) {
	sc, err := LoadScenario("testdata/scenarios/users_queries.yaml")
	require.NoError(t, err)

	require.NoError(t, RunWithGolden(t, sc))
}

func TestSnapshot_MarshalKeepsOperators(t *testing.T) {
	data, err := Snapshot{
		Scenario: "ops",
		Steps: []StepTrace{{
			Step:   0,
			Entity: "User",
			SQL:    "SELECT id FROM users WHERE age < ? AND age > ?",
			IDs:    []string{},
		}},
	}.Marshal()
	require.NoError(t, err)

	assert.Contains(t, string(data), `"sql": "SELECT id FROM users WHERE age < ? AND age > ?"`)
	assert.Contains(t, string(data), `"ids": []`)
	assert.NotContains(t, string(data), "records")
	assert.Equal(t, byte('\n'), data[len(data)-1])
}
