package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gumshoehq/gumshoe/internal/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, k := range []string{"version", "git_commit", "git_branch", "build_time", "go_version", "os", "arch"} {
			fmt.Fprintf(w, "%s\t%s\n", dimStyle.Render(k), buildinfo.Info()[k])
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
