// Command emu8080 assembles, disassembles, and runs programs for the
// 8080-style toolchain in github.com/M4tthewDE/emu8080.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "emu8080",
	Short: "emu8080 - an 8080-style assembler, disassembler and emulator",
	Long: `emu8080 - an 8080-style assembler, disassembler and emulator
━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━

SUBCOMMANDS:
  assemble     compile mnemonic source into a binary
  disassemble  decode a binary back into mnemonic text
  run          execute a binary or source file to completion

EXAMPLES:
  emu8080 assemble program.asm -o program.bin
  emu8080 disassemble program.bin
  emu8080 run program.asm -v`,
}

func main() {
	rootCmd.AddCommand(assembleCmd, disassembleCmd, runCmd, listCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "emu8080: %v\n", err)
		os.Exit(1)
	}
}
