package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/chronoplan/chronoplan/internal/cliapp"
	"github.com/mattn/go-isatty"
)

func main() {
	os.Exit(run())
}

func run() int {
	app := &cliapp.App{
		Interactive: isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
	}

	root := cliapp.NewRootCmd(app)
	err := root.Execute()
	if err == nil {
		return cliapp.ExitOK
	}

	var exitErr *cliapp.ExitError
	if errors.As(err, &exitErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", exitErr.Err)
		return exitErr.Code
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return cliapp.ExitErrorsPresent
}
