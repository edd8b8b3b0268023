package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"subconv/internal/preflight"
	"subconv/internal/present"
)

var errChecksFailed = errors.New("one or more checks failed")

// newDoctorCommand skips the shared config hook: doctor reports on the state
// directory, so it must not create it.
func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "doctor",
		Short:       "Check that the converter and directories are ready",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			dir, err := ctx.batchDir()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := !ctx.flags.noColor && present.ShouldColorize(out)
			for _, line := range renderSectionHeader("subconv doctor") {
				fmt.Fprintln(out, line)
			}
			results := preflight.RunAll(cmd.Context(), cfg, dir)
			for _, r := range results {
				kind := present.Success
				if !r.Passed {
					kind = present.Failure
				}
				fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}
			if preflight.Failed(results) {
				return errChecksFailed
			}
			return nil
		},
	}
}
