package asm

import (
	"github.com/M4tthewDE/emu8080/pkg/instr"
	"github.com/M4tthewDE/emu8080/pkg/register"
)

var noRegByOpcode = invertByteMap(noRegEncoding)
var immediateByOpcode = invertByteMap(immediateEncoding)

func invertByteMap(m map[instr.Opcode]byte) map[byte]instr.Opcode {
	out := make(map[byte]instr.Opcode, len(m))
	for op, b := range m {
		out[b] = op
	}
	return out
}

var arithmeticByBase = invertArithmeticBase()

func invertArithmeticBase() map[byte]instr.Opcode {
	out := make(map[byte]instr.Opcode, len(arithmeticBase))
	for op, base := range arithmeticBase {
		out[base] = op
	}
	return out
}

// DecodeOne reads one instruction starting at offset, returning it along
// with how many bytes it consumed (1 or 2). It implements the matching
// order: longest/most-specific mask first.
func DecodeOne(data []byte, offset int) (instr.Instruction, int, error) {
	if offset >= len(data) {
		return instr.Instruction{}, 0, &DecodeError{Offset: offset, Truncated: true}
	}
	b := data[offset]

	// 1. Exact full-byte matches, including those that carry an immediate.
	if op, ok := noRegByOpcode[b]; ok {
		return instr.NoRegInstr(op), 1, nil
	}
	if op, ok := immediateByOpcode[b]; ok {
		if offset+1 >= len(data) {
			return instr.Instruction{}, 0, &DecodeError{Offset: offset, Truncated: true}
		}
		return instr.ImmediateInstr(op, int8(data[offset+1])), 2, nil
	}

	// 2. 5-bit prefix: ADD/ADC/SUB/SBB/ANA/XRA/ORA/CMP.
	if op, ok := arithmeticByBase[b&0b11111_000]; ok {
		r := register.Decode(b & 0b111)
		return instr.SingleRegInstr(op, r), 1, nil
	}

	// 3. 2-bit prefix + 3-bit suffix families.
	switch {
	case b&0b11_000_111 == 0b00_000_100:
		r := register.Decode((b >> 3) & 0b111)
		return instr.SingleRegInstr(instr.INR, r), 1, nil

	case b&0b11_000_111 == 0b00_000_101:
		r := register.Decode((b >> 3) & 0b111)
		return instr.SingleRegInstr(instr.DCR, r), 1, nil

	case b&0b11_000_111 == 0b00_000_110:
		if offset+1 >= len(data) {
			return instr.Instruction{}, 0, &DecodeError{Offset: offset, Truncated: true}
		}
		r := register.Decode((b >> 3) & 0b111)
		return instr.ImmediateRegInstr(instr.MVI, r, int8(data[offset+1])), 2, nil

	case b&0b11_000_000 == 0b01_000_000:
		// HLT (01110110) already matched in step 1 and never reaches here.
		src := register.Decode((b >> 3) & 0b111)
		dst := register.Decode(b & 0b111)
		return instr.DoubleRegInstr(instr.MOV, src, dst), 1, nil
	}

	// 4. STAX/LDAX literal masks.
	switch b {
	case 0x02:
		return instr.SingleRegInstr(instr.STAX, register.B), 1, nil
	case 0x12:
		return instr.SingleRegInstr(instr.STAX, register.D), 1, nil
	case 0x0A:
		return instr.SingleRegInstr(instr.LDAX, register.B), 1, nil
	case 0x1A:
		return instr.SingleRegInstr(instr.LDAX, register.D), 1, nil
	}

	return instr.Instruction{}, 0, &DecodeError{Offset: offset, Byte: b}
}

// DecodeProgram decodes a full byte stream into the ordered instruction
// sequence it encodes.
func DecodeProgram(data []byte) ([]instr.Instruction, error) {
	var out []instr.Instruction
	offset := 0
	for offset < len(data) {
		in, n, err := DecodeOne(data, offset)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
		offset += n
	}
	return out, nil
}
