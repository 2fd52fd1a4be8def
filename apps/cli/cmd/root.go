package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "reqctl",
	Short: "A curl front-end for exercising API endpoints during development.",
	Long: `reqctl shapes a single HTTP request from flags and hands it to curl:
XDEBUG session tagging, multipart upload shortcuts, JSON schema checks
and a local invocation history, without reimplementing any transport.`,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitValidationError)
	}
}

func init() {
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}
