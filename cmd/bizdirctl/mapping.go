package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newMapCategoriesCmd() *cobra.Command {
	var accept bool

	cmd := &cobra.Command{
		Use:   "map-categories FILE",
		Short: "Suggest existing categories for the category strings of a business CSV",
		Long: "Lists every distinct category string of FILE with the stored mapping or the best\n" +
			"matching existing category. --accept stores the suggestions for unmapped strings.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			candidates, err := svc.Mappings.Extract(f)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CATEGORY\tROWS\tMAPPED\tSUGGESTION\tSCORE")
			saved := 0
			for _, c := range candidates {
				mapped := "-"
				if c.MappedID != 0 {
					mapped = fmt.Sprint(c.MappedID)
				}
				suggestion := "-"
				if c.SuggestedID != 0 {
					suggestion = fmt.Sprintf("%s (#%d)", c.SuggestedName, c.SuggestedID)
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%.1f\n", c.Raw, c.Rows, mapped, suggestion, c.Score)

				if accept && c.MappedID == 0 && c.SuggestedID != 0 {
					if err := svc.Mappings.Save(c.Raw, c.SuggestedID); err != nil {
						return fmt.Errorf("saving mapping for %q: %w", c.Raw, err)
					}
					saved++
				}
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if accept {
				fmt.Fprintf(cmd.OutOrStdout(), "%d mapping(s) saved\n", saved)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&accept, "accept", false, "store the suggested categories")
	return cmd
}
