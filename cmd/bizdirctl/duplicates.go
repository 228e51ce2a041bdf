package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ManuelReschke/bizdir/internal/pkg/duplicates"
)

func newDuplicatesCmd() *cobra.Command {
	var (
		mode    string
		remove  bool
		confirm bool
	)

	cmd := &cobra.Command{
		Use:   "duplicates",
		Short: "List duplicate listings; --delete removes all but the oldest of each group",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := duplicates.ParseMode(mode)
			if err != nil {
				return err
			}
			groups, err := svc.Duplicates.Scan(cmd.Context(), m)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var selected []uint
			for _, g := range groups {
				fmt.Fprintf(out, "%s (%d)\n", g.Key, len(g.Rows))
				for _, r := range g.Rows {
					mark := " "
					if r.Oldest {
						mark = "*"
					}
					if r.Selected {
						selected = append(selected, r.ID)
					}
					fmt.Fprintf(out, "  %s #%d %s [%s] %s\n", mark, r.ID, r.Title, r.Status, r.CreatedAt.Format("2006-01-02"))
				}
			}
			fmt.Fprintf(out, "%d group(s), %d copies (%s)\n", len(groups), len(selected), m.Label())

			if !remove {
				return nil
			}
			n, err := svc.Duplicates.Delete(cmd.Context(), selected, confirm)
			if err != nil {
				if errors.Is(err, duplicates.ErrNotConfirmed) {
					return fmt.Errorf("%w: pass --yes to delete permanently", err)
				}
				return err
			}
			fmt.Fprintf(out, "%d listing(s) deleted\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "title_postcode, title_postcode_street or title (default title_postcode)")
	cmd.Flags().BoolVar(&remove, "delete", false, "delete the copies")
	cmd.Flags().BoolVar(&confirm, "yes", false, "confirm the permanent deletion")
	return cmd
}

func newFlushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Drop the cached term lists",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc.Terms.Flush()
			if _, err := svc.ConsumeFlushFlag(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "term cache flushed")
			return nil
		},
	}
}
