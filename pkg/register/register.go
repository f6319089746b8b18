// Package register implements the 8080-style register codec: the pure,
// stateless mapping between a symbolic register, its 3-bit instruction
// encoding, and its linear index into the CPU's register file.
package register

import "fmt"

// Register is one of the eight operands an 8080 opcode can name. M is a
// pseudo-register standing for "memory at address HL"; see the cpu package
// for how (and whether) an opcode is allowed to use it.
type Register uint8

const (
	A Register = iota
	B
	C
	D
	E
	H
	L
	M
)

func (r Register) String() string {
	switch r {
	case A:
		return "A"
	case B:
		return "B"
	case C:
		return "C"
	case D:
		return "D"
	case E:
		return "E"
	case H:
		return "H"
	case L:
		return "L"
	case M:
		return "M"
	default:
		return fmt.Sprintf("Register(%d)", uint8(r))
	}
}

// code3 and index hold, for every register, its 3-bit instruction encoding
// and its 0..7 linear index, side by side so both tables stay in lockstep.
var code3 = [...]byte{
	A: 0b111,
	B: 0b000,
	C: 0b001,
	D: 0b010,
	E: 0b011,
	H: 0b100,
	L: 0b101,
	M: 0b110,
}

var index = [...]byte{
	A: 0,
	B: 1,
	C: 2,
	D: 3,
	E: 4,
	H: 5,
	L: 6,
	M: 7,
}

// decodeTable inverts code3: decodeTable[code3[r]] == r for every r.
var decodeTable = [8]Register{
	0b111: A,
	0b000: B,
	0b001: C,
	0b010: D,
	0b011: E,
	0b100: H,
	0b101: L,
	0b110: M,
}

// Encode returns the 3-bit opcode field for r. The result is always in
// 0..7, so callers can shift it into a wider byte without masking.
func Encode(r Register) byte {
	return code3[r]
}

// Decode is total: every 3-bit pattern names a register.
func Decode(bits byte) Register {
	return decodeTable[bits&0b111]
}

// Index returns r's slot, 0..7, in the CPU's register file. A is 0, M is 7.
func Index(r Register) int {
	return int(index[r])
}

// ByLetter parses a single uppercase register letter as used in source text.
func ByLetter(letter byte) (Register, bool) {
	switch letter {
	case 'A':
		return A, true
	case 'B':
		return B, true
	case 'C':
		return C, true
	case 'D':
		return D, true
	case 'E':
		return E, true
	case 'H':
		return H, true
	case 'L':
		return L, true
	case 'M':
		return M, true
	default:
		return 0, false
	}
}
