package cliapp

import (
	"github.com/spf13/cobra"
)

// App holds the IO the CLI needs: whether the terminal is interactive
// (controls color), and is otherwise stateless — every scheduling run gets
// its own pipeline.Options built fresh from flags.
type App struct {
	Interactive bool
}

// NewRootCmd creates the top-level "chronoplan" command.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "chronoplan",
		Short:         "Deterministic, text-first project scheduling core",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(newScheduleCmd(app))
	return root
}
