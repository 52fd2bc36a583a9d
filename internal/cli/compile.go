package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output  string // output file path
	Dialect string // overrides the configured driver
}

// CompiledOperation is one registered operation as printed by compile.
type CompiledOperation struct {
	Entity    string `json:"entity"`
	Name      string `json:"name"`
	Signature string `json:"signature"`
	Shape     string `json:"shape"`
	SQL       string `json:"sql"`
	CountSQL  string `json:"count_sql"`
}

// CompilationResult is the output of compile.
type CompilationResult struct {
	Dialect    string              `json:"dialect"`
	Operations []CompiledOperation `json:"operations"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <schema-dir>",
		Short: "Compile repository operations to SQL",
		Long: `Compile every repository operation declared in a CUE schema directory
and print its query and count query.

The SQL dialect follows database.driver unless --dialect is given.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the result as JSON to this file")
	cmd.Flags().StringVar(&opts.Dialect, "dialect", "", "SQL dialect (sqlite3|postgres)")

	return cmd
}

func runCompile(opts *CompileOptions, dir string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg := opts.Config
	if opts.Dialect != "" {
		cfg.Database.Driver = opts.Dialect
	}
	eng, err := newEngine(cfg, nil)
	if err != nil {
		_ = f.Error(ErrCodeArgument, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid dialect", err)
	}

	s, err := loadSchema(f, dir)
	if err != nil {
		return err
	}

	ops, errs := s.Register(eng)
	if len(errs) > 0 {
		_ = f.Errors(fmt.Sprintf("Compilation failed with %d error(s)", len(errs)), toCLIErrors(errs))
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	result := CompilationResult{Dialect: eng.Dialect().Name(), Operations: make([]CompiledOperation, len(ops))}
	for i, op := range ops {
		f.VerboseLog("Compiled %s.%s", op.Entity().Name(), op.Name())
		result.Operations[i] = CompiledOperation{
			Entity:    op.Entity().Name(),
			Name:      op.Name(),
			Signature: op.Signature().String(),
			Shape:     op.Shape().String(),
			SQL:       op.Compiled().SQL,
			CountSQL:  op.Compiled().CountSQL,
		}
	}

	if opts.Output != "" {
		if err := writeJSON(opts.Output, result); err != nil {
			_ = f.Error(ErrCodeWriteFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to write output", err)
		}
	}

	if f.Format == "json" {
		return f.Success(result)
	}

	w := f.Writer
	fmt.Fprintf(w, "✓ Compiled %d operation(s) for %s\n\n", len(ops), result.Dialect)
	for _, op := range result.Operations {
		fmt.Fprintf(w, "%s.%s\n", op.Entity, op.Signature)
		fmt.Fprintf(w, "  shape: %s\n", op.Shape)
		fmt.Fprintf(w, "  sql:   %s\n", op.SQL)
		fmt.Fprintf(w, "  count: %s\n\n", op.CountSQL)
	}
	if opts.Output != "" {
		fmt.Fprintf(w, "Wrote %s\n", opts.Output)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
