// Package asm implements the encoder and decoder halves of the toolchain:
// the bidirectional mapping between a canonical instr.Instruction and its
// 1- or 2-byte 8080-style binary encoding.
package asm

import (
	"github.com/M4tthewDE/emu8080/pkg/instr"
	"github.com/M4tthewDE/emu8080/pkg/register"
	"github.com/pkg/errors"
)

// arithmeticBase maps the eight accumulator ops to the high 5 bits of their
// single-byte encoding, `10xxx RRR`.
var arithmeticBase = map[instr.Opcode]byte{
	instr.ADD: 0b10000_000,
	instr.ADC: 0b10001_000,
	instr.SUB: 0b10010_000,
	instr.SBB: 0b10011_000,
	instr.ANA: 0b10100_000,
	instr.XRA: 0b10101_000,
	instr.ORA: 0b10110_000,
	instr.CMP: 0b10111_000,
}

// noRegEncoding is the fixed full-byte encoding of every opcode that takes
// no operands.
var noRegEncoding = map[instr.Opcode]byte{
	instr.STC:  0b00110111,
	instr.CMC:  0b00111111,
	instr.CMA:  0b00101111,
	instr.HLT:  0b01110110,
	instr.RLC:  0b00000111,
	instr.RRC:  0b00001111,
	instr.RAL:  0b00010111,
	instr.RAR:  0b00011111,
	instr.DAA:  0b00100111,
	instr.XCHG: 0b11101011,
	instr.SPHL: 0b11111001,
	instr.XTHL: 0b11100011,
}

// immediateEncoding is the fixed opcode byte (before the immediate) of
// every Kind-Immediate opcode.
var immediateEncoding = map[instr.Opcode]byte{
	instr.ADI: 0b11000110,
	instr.ACI: 0b11001110,
	instr.SUI: 0b11010110,
}

// regPairCode maps the register naming a STAX/LDAX pair to its rp field:
// pair B = (B,C) -> 0, pair D = (D,E) -> 1. See DESIGN.md for how this
// resolves the ambiguous bit count for the rp-family opcodes.
func regPairCode(r register.Register) (byte, bool) {
	switch r {
	case register.B:
		return 0, true
	case register.D:
		return 1, true
	default:
		return 0, false
	}
}

// Encode maps a single well-formed Instruction to its 1- or 2-byte
// encoding.
func Encode(in instr.Instruction) ([]byte, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	switch in.Opcode {
	case instr.MOV:
		src, dst := in.Registers[0], in.Registers[1]
		b := byte(0b01_000_000) | (register.Encode(src) << 3) | register.Encode(dst)
		return []byte{b}, nil

	case instr.MVI:
		b := byte(0b00_000_110) | (register.Encode(in.Registers[0]) << 3)
		return []byte{b, byte(in.Immediate)}, nil

	case instr.ADD, instr.ADC, instr.SUB, instr.SBB, instr.ANA, instr.XRA, instr.ORA, instr.CMP:
		b := arithmeticBase[in.Opcode] | register.Encode(in.Registers[0])
		return []byte{b}, nil

	case instr.INR:
		b := byte(0b00_000_100) | (register.Encode(in.Registers[0]) << 3)
		return []byte{b}, nil

	case instr.DCR:
		b := byte(0b00_000_101) | (register.Encode(in.Registers[0]) << 3)
		return []byte{b}, nil

	case instr.ADI, instr.ACI, instr.SUI:
		return []byte{immediateEncoding[in.Opcode], byte(in.Immediate)}, nil

	case instr.STC, instr.CMC, instr.CMA, instr.HLT, instr.RLC, instr.RRC, instr.RAL, instr.RAR,
		instr.DAA, instr.XCHG, instr.SPHL, instr.XTHL:
		return []byte{noRegEncoding[in.Opcode]}, nil

	case instr.STAX, instr.LDAX:
		rp, ok := regPairCode(in.Registers[0])
		if !ok {
			return nil, &instr.EncodeError{Instruction: in, Reason: "register pair must be B or D"}
		}
		base := byte(0b00000010)
		if in.Opcode == instr.LDAX {
			base = 0b00001010
		}
		return []byte{base | (rp << 4)}, nil

	default:
		return nil, &instr.EncodeError{Instruction: in, Reason: "unsupported opcode"}
	}
}

// EncodeProgram encodes a whole instruction stream by concatenating each
// instruction's encoding in order, with no header, alignment, or trailer.
func EncodeProgram(instructions []instr.Instruction) ([]byte, error) {
	var out []byte
	for i, in := range instructions {
		bytes, err := Encode(in)
		if err != nil {
			return nil, errors.Wrapf(err, "instruction %d", i)
		}
		out = append(out, bytes...)
	}
	return out, nil
}
