// Command dstvimport runs the DSTV import pipeline over a file and
// prints the normalized profile, the way cmd/iecat in
// github.com/pascaldekloe/part5 is the thin CLI wrapper around that
// library's session package.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dstvimport",
		Short: "Import DSTV NC files into a normalized profile description",
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newVersionCmd())
	return root
}
