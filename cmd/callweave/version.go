package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/callweave/callweave"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of callweave",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("callweave version %s\n", strings.TrimSpace(callweave.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
