package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moviops/movi"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of movi",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("movi version %s\n", strings.TrimSpace(movi.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
