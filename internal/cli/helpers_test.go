package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/ginhom/hades/internal/config"
)

const schemaDir = "testdata/schema"

// testOptions returns root options with the default config and a SQLite
// database in a temp dir, as PersistentPreRunE would resolve them.
func testOptions(t *testing.T, format string) *RootOptions {
	t.Helper()
	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "hades.db")
	return &RootOptions{Format: format, Config: cfg}
}

func execute(cmd *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// decodeData unmarshals the data of an ok JSON response into v.
func decodeData(t *testing.T, out string, v any) {
	t.Helper()
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status, out)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

// seedFixtures loads testdata/fixtures.yaml into the options' database.
func seedFixtures(t *testing.T, opts *RootOptions) {
	t.Helper()
	_, err := execute(NewSeedCommand(opts), schemaDir, "testdata/fixtures.yaml")
	require.NoError(t, err)
}
