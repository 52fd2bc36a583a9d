package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ginhom/hades/internal/harness"
)

// ScenarioOutcome is the result of one scenario file.
type ScenarioOutcome struct {
	File   string   `json:"file"`
	Name   string   `json:"name,omitempty"`
	Pass   bool     `json:"pass"`
	Steps  int      `json:"steps"`
	Errors []string `json:"errors,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <scenario.yaml>...",
		Short: "Run query scenarios against an in-memory store",
		Long: `Run YAML query scenarios. Each scenario loads its schema, seeds its
fixtures into a fresh in-memory SQLite store and checks the expectations of
every step.

Exits 1 when any expectation fails and 2 when a scenario cannot run.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runScenarios(ctx, rootOpts, args, cmd)
		},
	}
}

func runScenarios(ctx context.Context, opts *RootOptions, files []string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	var outcomes []ScenarioOutcome
	failed := 0
	for _, file := range files {
		sc, err := harness.LoadScenario(file)
		if err != nil {
			_ = f.Error(ErrCodeScenario, fmt.Sprintf("%s: %v", file, err), nil)
			return WrapExitError(ExitCommandError, "invalid scenario", err)
		}

		f.VerboseLog("Running %s (%d step(s))", sc.Name, len(sc.Steps))
		res, err := harness.Run(ctx, sc, harness.WithLogger(slog.Default()))
		if err != nil {
			_ = f.Error(ErrCodeScenario, fmt.Sprintf("%s: %v", file, err), nil)
			return WrapExitError(ExitCommandError, "scenario could not run", err)
		}

		outcomes = append(outcomes, ScenarioOutcome{
			File:   file,
			Name:   sc.Name,
			Pass:   res.Pass,
			Steps:  len(res.Trace),
			Errors: res.Errors,
		})
		if !res.Pass {
			failed++
		}
	}

	if f.Format == "json" {
		if err := f.Success(outcomes); err != nil {
			return err
		}
	} else {
		for _, o := range outcomes {
			mark := "✓"
			if !o.Pass {
				mark = "✗"
			}
			fmt.Fprintf(f.Writer, "%s %s (%d step(s))\n", mark, o.Name, o.Steps)
			for _, msg := range o.Errors {
				fmt.Fprintf(f.Writer, "    %s\n", msg)
			}
		}
		fmt.Fprintf(f.Writer, "\n%d passed, %d failed\n", len(outcomes)-failed, failed)
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", failed))
	}
	return nil
}
