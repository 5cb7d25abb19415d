package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"trackd.sh/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("trackd " + version.GetVersion())
	},
}
