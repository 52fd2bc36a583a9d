package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "hades", cmd.Use)
	assert.Contains(t, cmd.Long, "findByLastnameOrFirstnameLike")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"compile", "validate", "query", "seed", "run"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			require.NotNil(t, sub)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestRoot_InvalidFormat(t *testing.T) {
	_, err := execute(NewRootCommand(), "--format", "xml", "validate", schemaDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRoot_ConfigSelectsDialect(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "hades.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
database:
  driver: postgres
  dsn: postgres://localhost/hades
`), 0o644))

	out, err := execute(NewRootCommand(), "--config", cfgPath, "compile", schemaDir)
	require.NoError(t, err)
	assert.Contains(t, out, "for postgres")
	assert.Contains(t, out, `WHERE "lastname" = $1 ORDER BY "age" ASC`)
	assert.Contains(t, out, `WHERE "active" = TRUE`)
}

func TestRoot_BadConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "hades.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database:\n  driver: oracle\n"), 0o644))

	_, err := execute(NewRootCommand(), "--config", cfgPath, "validate", schemaDir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRoot_PrefixesFromConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "hades.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("parser:\n  prefixes: [searchBy]\n"), 0o644))

	_, err := execute(NewRootCommand(), "--config", cfgPath, "validate", schemaDir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
