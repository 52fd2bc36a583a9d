package cli

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// SeedResult reports the ids inserted per entity.
type SeedResult struct {
	Inserted map[string][]string `json:"inserted"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <schema-dir> <fixtures.yaml>",
		Short: "Create entity tables and insert fixture records",
		Long: `Create the tables of every schema entity in the configured database
and insert the records of a fixtures file. The file maps entity names to
lists of records keyed by property path:

  User:
    - {firstname: Dave, lastname: Matthews, address.city: Charlottesville}

Records without an id get a generated UUIDv7.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runSeed(ctx, rootOpts, args[0], args[1], cmd)
		},
	}
}

func runSeed(ctx context.Context, opts *RootOptions, dir, fixturesPath string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	s, err := loadSchema(f, dir)
	if err != nil {
		return err
	}

	fixtures, err := readFixtures(fixturesPath)
	if err != nil {
		_ = f.Error(ErrCodeArgument, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid fixtures", err)
	}

	db, err := openBackend(ctx, opts.Config.Database)
	if err != nil {
		_ = f.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx, s.Entities...); err != nil {
		_ = f.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to migrate", err)
	}

	names := make([]string, 0, len(fixtures))
	for name := range fixtures {
		names = append(names, name)
	}
	slices.Sort(names)

	result := SeedResult{Inserted: map[string][]string{}}
	for _, name := range names {
		e := s.Entity(name)
		if e == nil {
			msg := fmt.Sprintf("fixtures name unknown entity %q", name)
			_ = f.Error(ErrCodeArgument, msg, nil)
			return NewExitError(ExitCommandError, msg)
		}
		ids, err := db.InsertAll(ctx, e, fixtures[name]...)
		if err != nil {
			_ = f.Error(ErrCodeDatabase, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to insert fixtures", err)
		}
		f.VerboseLog("Inserted %d %s record(s)", len(ids), name)
		result.Inserted[name] = ids
	}

	if f.Format == "json" {
		return f.Success(result)
	}
	for _, name := range names {
		fmt.Fprintf(f.Writer, "✓ %s: %d record(s)\n", name, len(result.Inserted[name]))
	}
	return nil
}

func readFixtures(path string) (map[string][]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}
	var fixtures map[string][]map[string]any
	if err := yaml.Unmarshal(data, &fixtures); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	return fixtures, nil
}
