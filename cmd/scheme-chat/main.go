// cmd/scheme-chat/main.go
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "scheme-chat",
	Short:         "Talk to the scheme assistant from a terminal",
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log dialogue internals to stderr")
	rootCmd.AddCommand(chatCmd, validateCmd, workersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
