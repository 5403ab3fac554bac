package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flightdeck/adbot"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of adbot",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("adbot version %s\n", strings.TrimSpace(adbot.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
