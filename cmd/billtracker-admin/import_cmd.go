package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"billtracker/internal/core"
)

type importOutput struct {
	Message       string   `json:"message"`
	InsertedCount int      `json:"inserted_count"`
	Skipped       int      `json:"skipped"`
	Errors        []string `json:"errors"`
}

func newImportCmd(open opener) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Insert every valid bill from a CSV, TSV or space-aligned file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			return withApp(cmd, open, func(a *app) error {
				res, err := a.imports.Import(cmd.Context(), string(content))
				if err != nil && !errors.Is(err, core.ErrNoValidBills) {
					return err
				}

				out := importOutput{
					Message:       res.Message(),
					InsertedCount: res.InsertedCount,
					Skipped:       res.SkippedCount,
					Errors:        res.RowErrors,
				}
				if asJSON {
					if werr := writeJSON(cmd.OutOrStdout(), out); werr != nil {
						return werr
					}
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), out.Message)
					for _, e := range out.Errors {
						fmt.Fprintln(cmd.OutOrStdout(), "  "+e)
					}
				}
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}
