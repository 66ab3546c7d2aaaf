package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"contractrisk/internal/app/domains/entity/etrisk"
)

func newCriteriaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "criteria",
		Short: "List the risk criteria in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDESCRIPTION")
			for _, c := range etrisk.DefaultCriteria() {
				fmt.Fprintf(tw, "%s\t%s\n", c.ID, c.Description)
			}
			return tw.Flush()
		},
	}
}
