package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ManuelReschke/bizdir/internal/pkg/csvimport"
	"github.com/ManuelReschke/bizdir/internal/pkg/statistics"
)

func newImportCmd() *cobra.Command {
	var categories bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import businesses (or categories with --categories) from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			var res *csvimport.Result
			if categories {
				res, err = svc.Importer.ImportCategories(cmd.Context(), f)
			} else {
				res, err = svc.Importer.ImportBusinesses(cmd.Context(), f)
				statistics.Invalidate()
			}
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().BoolVar(&categories, "categories", false, "file holds categories instead of businesses")
	return cmd
}

func printResult(w io.Writer, res *csvimport.Result) {
	for _, m := range res.Messages {
		fmt.Fprintln(w, "  "+m)
	}
	fmt.Fprintf(w, "imported: %d  skipped: %d  errors: %d  terms created: %d\n",
		res.Imported, res.Skipped, res.Errors, res.Created)
}

func newExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all businesses as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			n, err := csvimport.ExportBusinesses(svc.Repos, w)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d businesses\n", n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	return cmd
}
