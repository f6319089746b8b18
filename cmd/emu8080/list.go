package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/M4tthewDE/emu8080/pkg/instr"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every recognized mnemonic",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Recognized mnemonics:")
		for _, m := range instr.Mnemonics() {
			fmt.Printf("  %s\n", m)
		}
	},
}
