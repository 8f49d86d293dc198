package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var disasmFormat string

func init() {
	disasmCmd.Flags().StringVar(&disasmFormat, "format", "", "body format (binary|cbor, default: detect)")
}

var disasmCmd = &cobra.Command{
	Use:   "disasm FILE",
	Short: "Print the listing of a stored method body",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", path, err)
		}

		body, err := decodeBody(data, disasmFormat)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Fprint(cmd.OutOrStdout(), colorizeListing(body.DisassembleWithName(filepath.Base(path))))
		return nil
	},
}
