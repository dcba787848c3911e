package main

import (
	"fmt"

	"github.com/spf13/cobra"

	psymversion "github.com/p-org/psym/pkg/version"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "psym",
		Short:        "Symbolic exploration of message-passing programs",
		Long:         `psym explores the interleavings of a program symbolically, merging the choices of one step into guarded value summaries.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(newExploreCmd(), newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the psym version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), psymversion.String())
		},
	}
}
