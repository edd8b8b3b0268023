package main

import (
	"io"
	"os"

	"subconv/internal/present"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command tree and maps the outcome to a process exit code.
// Every error is printed here exactly once.
func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		noColor, _ := cmd.PersistentFlags().GetBool("no-color")
		colorize := !noColor && present.ShouldColorize(stderr)
		present.NewPrinter(stderr, colorize).Error(err)
		return 1
	}
	return 0
}
