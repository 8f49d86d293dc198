package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chazu/strictemit/pkg/bytecode"
	"github.com/chazu/strictemit/pkg/emit"
)

var (
	emitOutput string
	emitFormat string
	emitQuiet  bool
)

func init() {
	emitCmd.Flags().StringVarP(&emitOutput, "output", "o", "", "write the assembled body to FILE")
	emitCmd.Flags().StringVar(&emitFormat, "format", "", "body format (binary|cbor, default from manifest)")
	emitCmd.Flags().BoolVarP(&emitQuiet, "quiet", "q", false, "do not print the listing")
}

var emitCmd = &cobra.Command{
	Use:   "emit SCRIPT",
	Short: "Assemble an emission script into a method body",
	Long: `Assemble an emission script into a method body and print its listing.

Each line of SCRIPT holds one instruction:

  call        Widget::.ctor(int)
  callvirt    Service::Run(int)
  constrained Point
  castclass   Widget
  ldftn       Service::Stop
  ldvirtftn   Service::Run(int)
  volatile

Text after '#' is ignored.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(emitFormat, project)
		if err != nil {
			return err
		}

		table, err := loadTable()
		if err != nil {
			return err
		}
		r := newResolver(table)

		script := args[0]
		f, err := os.Open(script)
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", script, err)
		}
		defer f.Close()

		body := bytecode.NewBody()
		n, err := emit.Assemble(f, r, body)
		if err != nil {
			return fmt.Errorf("%s: %w", script, err)
		}
		logger().Infof("assembled %d instructions from %s", n, script)

		if !emitQuiet {
			fmt.Fprint(cmd.OutOrStdout(), colorizeListing(body.DisassembleWithName(filepath.Base(script))))
		}

		if emitOutput == "" {
			return nil
		}
		data, err := encodeBody(body, format)
		if err != nil {
			return err
		}
		if err := os.WriteFile(emitOutput, data, 0644); err != nil {
			return fmt.Errorf("cannot write %s: %w", emitOutput, err)
		}
		logger().Noticef("wrote %s body %s (%d bytes)", format, emitOutput, len(data))
		return nil
	},
}
