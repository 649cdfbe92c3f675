package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"billtracker/internal/services"
)

func newGenerateURLsCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "generate-urls",
		Short: "Derive the bill page URL for every bill that has none",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(a *app) error {
				generated, err := a.bills.GenerateMissingURLs(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), services.GenerateURLsMessage(len(generated)))
				for _, g := range generated {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\t%s\n", g.BillNumber, g.URL)
				}
				return nil
			})
		},
	}
}
