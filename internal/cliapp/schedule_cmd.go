package cliapp

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/chronoplan/chronoplan/internal/cliapp/render"
	"github.com/chronoplan/chronoplan/internal/diagnostics"
	"github.com/chronoplan/chronoplan/internal/leveling"
	"github.com/chronoplan/chronoplan/internal/pipeline"
	"github.com/spf13/cobra"
)

func newScheduleCmd(app *App) *cobra.Command {
	var (
		inputPath       string
		asOf            string
		strict          bool
		levelingStrategy string
		explain         bool
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the scheduling core over a project document and print the resulting schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if inputPath != "" && inputPath != "-" {
				f, err := os.Open(inputPath)
				if err != nil {
					return &ExitError{Code: ExitUsage, Err: fmt.Errorf("opening input: %w", err)}
				}
				defer f.Close()
				in = f
			}

			project, err := LoadProject(in)
			if err != nil {
				return &ExitError{Code: ExitParserFailure, Err: err}
			}

			opts := pipeline.Options{Strict: strict, Explain: explain}
			if asOf != "" {
				d, err := parseDate(asOf)
				if err != nil {
					return &ExitError{Code: ExitUsage, Err: fmt.Errorf("--as-of: %w", err)}
				}
				opts.AsOf = &d
			}
			switch levelingStrategy {
			case "":
			case string(leveling.StrategyStandard):
				opts.Leveling = leveling.StrategyStandard
			case string(leveling.StrategyHybrid):
				opts.Leveling = leveling.StrategyHybrid
			default:
				return &ExitError{Code: ExitUsage, Err: fmt.Errorf("--leveling-strategy: unknown strategy %q", levelingStrategy)}
			}

			var obs pipeline.Observer = pipeline.NoopObserver{}
			if os.Getenv("CHRONOPLAN_LOG_STAGES") != "" {
				obs = pipeline.NewSlogObserver(os.Stderr)
			}

			schedule, diags, err := pipeline.Run(project, opts, obs)
			if err != nil {
				return &ExitError{Code: ExitSemanticFailure, Err: err}
			}

			render.Diagnostics(cmd.ErrOrStderr(), diags, !app.Interactive)
			if err := json.NewEncoder(cmd.OutOrStdout()).Encode(toScheduleDoc(schedule, diags)); err != nil {
				return fmt.Errorf("encoding schedule: %w", err)
			}

			if diagnostics.HasErrors(diags) {
				return &ExitError{Code: ExitErrorsPresent, Err: fmt.Errorf("schedule produced with error-severity diagnostics")}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "-", "path to the project JSON document (- for stdin)")
	cmd.Flags().StringVar(&asOf, "as-of", "", "override the status date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&strict, "strict", false, "escalate diagnostic severities by one step")
	cmd.Flags().StringVar(&levelingStrategy, "leveling-strategy", "", "resource leveling strategy: standard|hybrid (omit to skip leveling)")
	cmd.Flags().BoolVar(&explain, "explain", false, "emit verbose regime/leveling trace diagnostics")

	return cmd
}
