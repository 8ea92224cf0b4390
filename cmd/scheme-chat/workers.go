// cmd/scheme-chat/workers.go
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"scheme-assistant/internal/workers"
	"scheme-assistant/pkg/registry"
)

var workersCheck string

var workersCmd = &cobra.Command{
	Use:   "workers",
	Short: "Print the activity registry of the job workers",
	Long: `Prints the job types, input schemas and error codes served by
assistant-server as JSON. With --check, compares a published registry file
against them instead and fails on any drift.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		served := workers.Registry()
		if workersCheck == "" {
			return served.Write(cmd.OutOrStdout())
		}

		published, err := registry.LoadRegistry(workersCheck)
		if err != nil {
			return err
		}
		missing, unknown := registry.Diff(published, served)
		if len(missing) == 0 && len(unknown) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%s matches %d served activities\n", workersCheck, len(served.Activities))
			return nil
		}
		return fmt.Errorf("registry drift: not published [%s], not served [%s]",
			strings.Join(missing, ", "), strings.Join(unknown, ", "))
	},
}

func init() {
	workersCmd.Flags().StringVar(&workersCheck, "check", "", "published registry file to compare")
}
