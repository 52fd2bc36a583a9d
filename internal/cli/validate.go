package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool       `json:"valid"`
	Entities   int        `json:"entities"`
	Operations int        `json:"operations"`
	Errors     []CLIError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <schema-dir>",
		Short: "Check a schema and its operations without printing SQL",
		Long: `Load a CUE schema directory and register every repository operation,
reporting all schema and registration errors at once.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	eng, err := newEngine(opts.Config, nil)
	if err != nil {
		_ = f.Error(ErrCodeArgument, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid driver", err)
	}

	s, err := loadSchema(f, dir)
	if err != nil {
		return err
	}

	ops, errs := s.Register(eng)
	result := ValidationResult{
		Valid:      len(errs) == 0,
		Entities:   len(s.Entities),
		Operations: len(ops),
		Errors:     toCLIErrors(errs),
	}

	if !result.Valid {
		if f.Format == "json" {
			_ = f.encode(CLIResponse{Status: "error", Data: result, Error: &result.Errors[0]})
		} else {
			_ = f.Errors(fmt.Sprintf("Validation failed with %d error(s)", len(errs)), result.Errors)
		}
		return NewExitError(ExitCommandError, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	if f.Format == "json" {
		return f.Success(result)
	}
	fmt.Fprintf(f.Writer, "✓ %d entity(ies), %d operation(s) valid\n", result.Entities, result.Operations)
	return nil
}
