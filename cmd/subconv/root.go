package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var flags rootFlags
	var summary bool

	ctx := newCommandContext(&flags)

	rootCmd := &cobra.Command{
		Use:   "subconv",
		Short: "Convert every subtitle in a directory to another format",
		Long: `subconv converts each file with the source extension (default .ass) in a
directory into a sibling file with the target extension (default .srt) by
running "ffmpeg -i <input> <output>" once per file.

One status line is printed per file. Failed files do not stop the batch;
the exit status is non-zero only when the run itself cannot proceed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, ctx, summary)
		},
	}

	persistent := rootCmd.PersistentFlags()
	persistent.StringVarP(&flags.config, "config", "c", "", "Configuration file path")
	persistent.StringVarP(&flags.dir, "dir", "d", "", "Directory to convert (default: current directory)")
	persistent.StringVar(&flags.from, "from", "", "Source extension override (e.g. .ass)")
	persistent.StringVar(&flags.to, "to", "", "Target extension override (e.g. .srt)")
	persistent.BoolVar(&flags.noColor, "no-color", false, "Disable coloured output")
	persistent.BoolVarP(&flags.verbose, "verbose", "v", false, "Also write debug logs to stderr")
	rootCmd.Flags().BoolVar(&summary, "summary", false, "Print a summary table after the run")

	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newDoctorCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))

	return rootCmd
}
