package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chazu/strictemit/pkg/metadata"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the declared types and their members",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadTable()
		if err != nil {
			return err
		}
		printTypes(cmd.OutOrStdout(), table)
		return nil
	},
}

func printTypes(w io.Writer, table *metadata.Table) {
	for i, decl := range table.All() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, refColor.Sprint(decl))
		for _, c := range decl.Constructors() {
			fmt.Fprintf(w, "  %s\n", c.Reference())
		}
		for _, m := range decl.Methods() {
			fmt.Fprintf(w, "  %s %s %s\n", traitColor.Sprint(m.Traits()), m.ReturnType(), m.Reference())
		}
	}
}
