package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/M4tthewDE/emu8080/pkg/asm"
)

var disassembleCmd = &cobra.Command{
	Use:   "disassemble [binary file]",
	Short: "Decode a binary back into mnemonic text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return errors.Wrapf(err, "reading %s", args[0])
		}

		_, listing, err := asm.Disassemble(data)
		if err != nil {
			return errors.Wrap(err, "disassembly failed")
		}

		for _, line := range listing {
			fmt.Printf("%04X  % -9x  %s\n", line.Offset, line.Bytes, line.Text)
		}
		return nil
	},
}

func writeListing(path string, listing []asm.ListingLine) error {
	var b []byte
	for _, line := range listing {
		b = append(b, []byte(fmt.Sprintf("%04X  % -9x  %s\n", line.Offset, line.Bytes, line.Text))...)
	}
	return os.WriteFile(path, b, 0o644)
}
