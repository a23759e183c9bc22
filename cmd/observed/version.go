package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/observed"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of observed",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "observed version %s\n", strings.TrimSpace(observed.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
