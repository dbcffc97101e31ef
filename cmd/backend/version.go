package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version information - set during build with ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Display version information",
		Aliases: []string{"v"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "filedrop %s (commit %s)\n", Version, GitCommit)
		},
	}
}
