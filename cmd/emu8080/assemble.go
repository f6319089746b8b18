package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/M4tthewDE/emu8080/pkg/asm"
	"github.com/M4tthewDE/emu8080/pkg/parser"
)

var (
	assembleOutput  string
	assembleListing string
	assembleVerbose bool
)

var assembleCmd = &cobra.Command{
	Use:   "assemble [source file]",
	Short: "Assemble mnemonic source into a binary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputFile := args[0]

		source, err := os.ReadFile(inputFile)
		if err != nil {
			return errors.Wrapf(err, "reading %s", inputFile)
		}

		instructions, err := parser.ParseProgram(source)
		if err != nil {
			return errors.Wrap(err, "assembly failed")
		}

		binary, err := asm.EncodeProgram(instructions)
		if err != nil {
			return errors.Wrap(err, "assembly failed")
		}

		outputFile := assembleOutput
		if outputFile == "" {
			ext := filepath.Ext(inputFile)
			outputFile = strings.TrimSuffix(inputFile, ext) + ".bin"
		}
		if err := os.WriteFile(outputFile, binary, 0o644); err != nil {
			return errors.Wrapf(err, "writing %s", outputFile)
		}

		if assembleVerbose {
			fmt.Printf("assembled %d instructions into %d bytes -> %s\n", len(instructions), len(binary), outputFile)
		}

		if assembleListing != "" {
			_, listing, err := asm.Disassemble(binary)
			if err != nil {
				return errors.Wrap(err, "generating listing")
			}
			if err := writeListing(assembleListing, listing); err != nil {
				return errors.Wrapf(err, "writing listing %s", assembleListing)
			}
		}

		return nil
	},
}

func init() {
	assembleCmd.Flags().StringVarP(&assembleOutput, "output", "o", "", "output binary file (default: input.bin)")
	assembleCmd.Flags().StringVarP(&assembleListing, "listing", "l", "", "write a listing file alongside the binary")
	assembleCmd.Flags().BoolVarP(&assembleVerbose, "verbose", "v", false, "print a summary after assembling")
}
