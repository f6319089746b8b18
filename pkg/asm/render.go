package asm

import (
	"fmt"
	"strings"

	"github.com/M4tthewDE/emu8080/pkg/instr"
)

// ListingLine is one row of a disassembly listing: the byte offset an
// instruction started at, the bytes it decoded from, and its rendered
// mnemonic text.
type ListingLine struct {
	Offset int
	Bytes  []byte
	Text   string
}

// Render reconstructs the canonical mnemonic text for an instruction, the
// inverse of pkg/parser.ParseLine. It does not reproduce comments or the
// original whitespace style of any particular source line.
func Render(in instr.Instruction) string {
	switch in.Kind {
	case instr.NoReg:
		return in.Opcode.String()
	case instr.SingleReg:
		return fmt.Sprintf("%s %s", in.Opcode, in.Registers[0])
	case instr.DoubleReg:
		return fmt.Sprintf("%s %s %s", in.Opcode, in.Registers[0], in.Registers[1])
	case instr.Immediate:
		return fmt.Sprintf("%s %s", in.Opcode, renderImmediate(in.Immediate))
	case instr.ImmediateReg:
		return fmt.Sprintf("%s %s %s", in.Opcode, in.Registers[0], renderImmediate(in.Immediate))
	default:
		return fmt.Sprintf("<invalid %s>", in.Opcode)
	}
}

func renderImmediate(v int8) string {
	var b strings.Builder
	for i := 7; i >= 0; i-- {
		if (byte(v)>>uint(i))&1 == 1 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// Disassemble decodes a byte stream into its instruction sequence and a
// parallel listing suitable for a `-l` style listing file.
func Disassemble(data []byte) ([]instr.Instruction, []ListingLine, error) {
	var instructions []instr.Instruction
	var listing []ListingLine
	offset := 0
	for offset < len(data) {
		in, n, err := DecodeOne(data, offset)
		if err != nil {
			return nil, nil, err
		}
		instructions = append(instructions, in)
		listing = append(listing, ListingLine{
			Offset: offset,
			Bytes:  append([]byte(nil), data[offset:offset+n]...),
			Text:   Render(in),
		})
		offset += n
	}
	return instructions, listing, nil
}
