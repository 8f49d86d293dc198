package main

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

// Build metadata, overridable with -ldflags "-X main.Version=...".
var (
	Version   = "0.1.0-dev"
	GitCommit = ""
	BuildDate = ""
)

var versionFull bool

func init() {
	versionCmd.Flags().BoolVar(&versionFull, "full", false, "include commit, build date and Go version")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show strictemit version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		renderVersion(cmd.OutOrStdout(), versionFull)
		return nil
	},
}

func renderVersion(w io.Writer, full bool) {
	fmt.Fprintf(w, "strictemit %s\n", mnemonicColor.Sprint(Version))
	if !full {
		return
	}
	if GitCommit != "" {
		fmt.Fprintf(w, "  commit: %s\n", GitCommit)
	}
	if BuildDate != "" {
		fmt.Fprintf(w, "  built:  %s\n", BuildDate)
	}
	fmt.Fprintf(w, "  go:     %s\n", runtime.Version())
}
