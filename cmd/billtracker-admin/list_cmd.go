package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"billtracker/internal/core"
)

func newListCmd(open opener) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print every bill, pinned first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(a *app) error {
				bills, err := a.bills.List(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), bills)
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tBILL\tCHAMBER\tPOSITION\tPINNED\tTITLE")
				for _, b := range bills {
					pinned := ""
					if b.IsPinned {
						pinned = "*"
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
						b.ID, b.BillNumber, b.Chamber, b.Position, pinned, core.Truncate(core.StringValue(b.Title), 60))
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print bills as JSON")
	return cmd
}
