// Command bizdirctl runs the directory maintenance jobs from the shell.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ManuelReschke/bizdir/internal/pkg/bootstrap"
	"github.com/ManuelReschke/bizdir/internal/pkg/directory"
)

// loaded by the root command before any subcommand runs
var svc *directory.Services

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bizdirctl",
		Short:         "Business directory maintenance",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if svc == nil {
				svc = bootstrap.Services()
			}
		},
	}
	root.AddCommand(
		newImportCmd(),
		newExportCmd(),
		newMapCategoriesCmd(),
		newDuplicatesCmd(),
		newFlushCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
