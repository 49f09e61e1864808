package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var VersionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Print the version number of gallery",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "gallery version: %s %s/%s\nBuildTime: %s, Commit: %s\n",
			Version, runtime.GOOS, runtime.GOARCH, BuildTime, GitCommit)
	},
}

func init() {
	rootCmd.AddCommand(VersionCmd)
}
