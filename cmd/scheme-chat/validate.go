// cmd/scheme-chat/validate.go
package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"scheme-assistant/internal/catalog"
)

var validateCmd = &cobra.Command{
	Use:   "validate <catalog>",
	Short: "Load a catalog file and list its schemes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Load(cmd.Context(), catalog.FileSource{Path: args[0]}, cliLogger())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTEPS")
		for _, s := range cat.All() {
			fmt.Fprintf(w, "%s\t%s\t%d\n", s.ID, s.Name, len(s.Application.Steps))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d schemes OK\n", cat.Len())
		return nil
	},
}
