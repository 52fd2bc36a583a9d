package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	out, err := execute(NewValidateCommand(testOptions(t, "text")), schemaDir)
	require.NoError(t, err)
	assert.Equal(t, "✓ 1 entity(ies), 5 operation(s) valid\n", out)

	out, err = execute(NewValidateCommand(testOptions(t, "json")), schemaDir)
	require.NoError(t, err)
	var result ValidationResult
	decodeData(t, out, &result)
	assert.True(t, result.Valid)
	assert.Equal(t, 1, result.Entities)
	assert.Equal(t, 5, result.Operations)
	assert.Empty(t, result.Errors)
}

func TestValidate_Invalid(t *testing.T) {
	out, err := execute(NewValidateCommand(testOptions(t, "text")), "testdata/bad")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed with 2 error(s)")
	assert.Contains(t, out, "UNKNOWN_PROPERTY")
}
