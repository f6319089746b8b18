package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/M4tthewDE/emu8080/pkg/asm"
	"github.com/M4tthewDE/emu8080/pkg/cpu"
	"github.com/M4tthewDE/emu8080/pkg/instr"
	"github.com/M4tthewDE/emu8080/pkg/parser"
	"github.com/M4tthewDE/emu8080/pkg/register"
)

var (
	runVerbose bool
	runSource  bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Execute a binary or source file to completion",
	Long: `run executes a program to completion. It prints the final register
file, stack pointer and flags when --verbose is given or when the program
ends without reaching HLT.

A file whose name ends in .asm, or any file when --source is given, is
parsed as mnemonic text first; any other input is treated as an assembled
binary.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return errors.Wrapf(err, "reading %s", args[0])
		}

		program, err := loadProgram(data, runSource || strings.HasSuffix(args[0], ".asm"))
		if err != nil {
			return err
		}

		machine := cpu.New()
		halted, err := machine.Run(program)
		if err != nil {
			return errors.Wrap(err, "execution failed")
		}

		if runVerbose || !halted {
			printState(machine, halted)
		}
		return nil
	},
}

func loadProgram(data []byte, asSource bool) ([]instr.Instruction, error) {
	if asSource {
		program, err := parser.ParseProgram(data)
		if err != nil {
			return nil, errors.Wrap(err, "parsing source")
		}
		return program, nil
	}
	program, err := asm.DecodeProgram(data)
	if err != nil {
		return nil, errors.Wrap(err, "decoding binary")
	}
	return program, nil
}

func printState(machine *cpu.CPU, halted bool) {
	snap := machine.Snapshot()
	fmt.Printf("halted: %v\n", halted)
	for _, r := range []register.Register{register.A, register.B, register.C, register.D, register.E, register.H, register.L, register.M} {
		fmt.Printf("  %s=%d", r, snap.Registers[register.Index(r)])
	}
	fmt.Println()
	fmt.Printf("  SP=%d\n", snap.SP)
	fmt.Printf("  flags: S=%v Z=%v A=%v P=%v C=%v\n",
		snap.Flags.Get(cpu.FlagS), snap.Flags.Get(cpu.FlagZ), snap.Flags.Get(cpu.FlagA),
		snap.Flags.Get(cpu.FlagP), snap.Flags.Get(cpu.FlagC))
}

func init() {
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "print final CPU state even on a clean halt")
	runCmd.Flags().BoolVar(&runSource, "source", false, "treat the input file as mnemonic source rather than a binary")
}
