package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/chazu/strictemit/pkg/metadata"
)

var (
	refColor   = color.New(color.FgCyan)
	traitColor = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed, color.Bold)
)

var resolveCmd = &cobra.Command{
	Use:   "resolve REF...",
	Short: "Resolve member references against the loaded metadata",
	Long: `Resolve each member reference and print the descriptor it names.

References have the form Type::Name(P1, P2). Use .ctor for constructors;
leave out the parentheses to match a method by name only.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		queries, err := parseReferences(args)
		if err != nil {
			return err
		}

		table, err := loadTable()
		if err != nil {
			return err
		}

		members, err := newResolver(table).ResolveAll(cmd.Context(), queries)
		if err != nil {
			return err
		}
		printMembers(cmd.OutOrStdout(), table, args, members)
		return nil
	},
}

func parseReferences(refs []string) ([]metadata.Query, error) {
	queries := make([]metadata.Query, len(refs))
	for i, ref := range refs {
		q, err := metadata.ParseReference(ref)
		if err != nil {
			return nil, err
		}
		queries[i] = q
	}
	return queries, nil
}

func printMembers(w io.Writer, table *metadata.Table, refs []string, members []metadata.MemberDescriptor) {
	for i, m := range members {
		fmt.Fprintf(w, "%s\n", refColor.Sprint(refs[i]))
		if decl := table.Lookup(m.DeclaringType()); decl != nil {
			fmt.Fprintf(w, "  in %s\n", decl)
		}
		fmt.Fprintf(w, "  %s %s\n", traitColor.Sprint(m.Traits()), m.Reference())
		if !m.IsConstructor() {
			fmt.Fprintf(w, "  returns %s\n", m.ReturnType())
		}
	}
}
