package main

import (
	"fmt"

	"github.com/chazu/sdfkit/version"
	"github.com/spf13/cobra"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "sdfkit %s\n", version.GetVersion())
			fmt.Fprintf(out, "  commit: %s\n", version.GitCommit)
			fmt.Fprintf(out, "  built:  %s\n", version.BuildDate)
		},
	}
}
