package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenario writes content to a temporary scenario file.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func schemaDir(t *testing.T) string {
	t.Helper()
	abs, err := filepath.Abs("testdata/schema")
	require.NoError(t, err)
	return abs
}

func TestLoadScenario_ValidFile(t *testing.T) {
	sc, err := LoadScenario("testdata/scenarios/users_queries.yaml")
	require.NoError(t, err)

	assert.Equal(t, "users_queries", sc.Name)
	assert.Equal(t, filepath.Join("testdata", "schema"), sc.Schema)
	assert.Len(t, sc.Fixtures["User"], 5)
	require.Len(t, sc.Steps, 10)

	assert.Equal(t, "findByAddressCity", sc.Steps[1].Op)
	assert.Equal(t, []any{"Seattle", map[string]any{"page": 0, "size": 1, "sort": "age:desc"}}, sc.Steps[1].Args)

	require.NotNil(t, sc.Steps[6].Where)
	assert.Len(t, sc.Steps[6].Where.Or, 2)
	assert.Equal(t, "age", sc.Steps[6].Sort)

	require.NotNil(t, sc.Steps[7].Page)
	assert.Equal(t, PageArg{Page: 1, Size: 2, Sort: "age"}, *sc.Steps[7].Page)

	require.NotNil(t, sc.Steps[3].Expect.Count)
	assert.Equal(t, int64(3), *sc.Steps[3].Expect.Count)
}

func TestLoadScenario_Invalid(t *testing.T) {
	schema := schemaDir(t)

	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "unknown field",
			content: "name: x\ndescription: y\nschema: " + schema + "\nstep: []\n",
			errMsg:  "field step not found",
		},
		{
			name:    "missing name",
			content: "description: y\nschema: " + schema + "\nsteps: [{entity: User}]\n",
			errMsg:  "name is required",
		},
		{
			name:    "missing description",
			content: "name: x\nschema: " + schema + "\nsteps: [{entity: User}]\n",
			errMsg:  "description is required",
		},
		{
			name:    "missing schema",
			content: "name: x\ndescription: y\nsteps: [{entity: User}]\n",
			errMsg:  "schema is required",
		},
		{
			name:    "schema not found",
			content: "name: x\ndescription: y\nschema: nowhere\nsteps: [{entity: User}]\n",
			errMsg:  "schema directory not found",
		},
		{
			name:    "no steps",
			content: "name: x\ndescription: y\nschema: " + schema + "\nsteps: []\n",
			errMsg:  "steps list is required",
		},
		{
			name:    "missing entity",
			content: "name: x\ndescription: y\nschema: " + schema + "\nsteps: [{op: findByFirstname}]\n",
			errMsg:  "steps[0]: entity is required",
		},
		{
			name:    "op with where",
			content: "name: x\ndescription: y\nschema: " + schema + "\nsteps: [{entity: User, op: findByFirstname, where: {property: age, is: IsNull}}]\n",
			errMsg:  "op cannot be combined",
		},
		{
			name:    "args without op",
			content: "name: x\ndescription: y\nschema: " + schema + "\nsteps: [{entity: User, args: [1]}]\n",
			errMsg:  "args require op",
		},
		{
			name:    "page and sort",
			content: "name: x\ndescription: y\nschema: " + schema + "\nsteps: [{entity: User, page: {page: 0, size: 1}, sort: age}]\n",
			errMsg:  "page and sort are exclusive",
		},
		{
			name:    "bad where",
			content: "name: x\ndescription: y\nschema: " + schema + "\nsteps: [{entity: User, where: {property: age, is: Between}}]\n",
			errMsg:  "unknown comparator",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}
