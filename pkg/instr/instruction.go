// Package instr defines the canonical in-memory instruction record shared
// by the parser, encoder, decoder, and execution core, plus the opcode
// taxonomy of the 8080-style instruction set this toolchain targets.
package instr

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/M4tthewDE/emu8080/pkg/register"
)

// Kind is the shape of an instruction's operand list, fixed per opcode.
// Validate is the single place that enforces it matches the opcode and the
// register/immediate counts agree with it.
type Kind uint8

const (
	NoReg Kind = iota
	SingleReg
	DoubleReg
	Immediate
	ImmediateReg
)

func (k Kind) String() string {
	switch k {
	case NoReg:
		return "NoReg"
	case SingleReg:
		return "SingleReg"
	case DoubleReg:
		return "DoubleReg"
	case Immediate:
		return "Immediate"
	case ImmediateReg:
		return "ImmediateReg"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Opcode enumerates every mnemonic this core recognizes.
type Opcode uint8

const (
	MOV Opcode = iota
	MVI
	ADD
	ADC
	SUB
	SBB
	ANA
	XRA
	ORA
	CMP
	INR
	DCR
	ADI
	ACI
	SUI
	STC
	CMC
	CMA
	HLT
	RLC
	RRC
	RAL
	RAR
	DAA
	STAX
	LDAX
	XCHG
	SPHL
	XTHL
)

var mnemonics = [...]string{
	MOV: "MOV", MVI: "MVI", ADD: "ADD", ADC: "ADC", SUB: "SUB", SBB: "SBB",
	ANA: "ANA", XRA: "XRA", ORA: "ORA", CMP: "CMP", INR: "INR", DCR: "DCR",
	ADI: "ADI", ACI: "ACI", SUI: "SUI", STC: "STC", CMC: "CMC", CMA: "CMA",
	HLT: "HLT", RLC: "RLC", RRC: "RRC", RAL: "RAL", RAR: "RAR", DAA: "DAA",
	STAX: "STAX", LDAX: "LDAX", XCHG: "XCHG", SPHL: "SPHL", XTHL: "XTHL",
}

func (o Opcode) String() string {
	if int(o) < len(mnemonics) {
		return mnemonics[o]
	}
	return fmt.Sprintf("Opcode(%d)", uint8(o))
}

// Mnemonics returns every recognized mnemonic in alphabetical order, for
// CLI listings (the `list` subcommand) and documentation generation.
func Mnemonics() []string {
	out := make([]string, len(mnemonics))
	copy(out, mnemonics[:])
	slices.Sort(out)
	return out
}

// kindOf fixes the Kind each opcode must carry.
var kindOf = map[Opcode]Kind{
	MOV:  DoubleReg,
	MVI:  ImmediateReg,
	ADD:  SingleReg,
	ADC:  SingleReg,
	SUB:  SingleReg,
	SBB:  SingleReg,
	ANA:  SingleReg,
	XRA:  SingleReg,
	ORA:  SingleReg,
	CMP:  SingleReg,
	INR:  SingleReg,
	DCR:  SingleReg,
	ADI:  Immediate,
	ACI:  Immediate,
	SUI:  Immediate,
	STC:  NoReg,
	CMC:  NoReg,
	CMA:  NoReg,
	HLT:  NoReg,
	RLC:  NoReg,
	RRC:  NoReg,
	RAL:  NoReg,
	RAR:  NoReg,
	DAA:  NoReg,
	STAX: SingleReg,
	LDAX: SingleReg,
	XCHG: NoReg,
	SPHL: NoReg,
	XTHL: NoReg,
}

// ExpectedKind reports the Kind that Opcode op must be constructed with.
func ExpectedKind(op Opcode) (Kind, bool) {
	k, ok := kindOf[op]
	return k, ok
}

// Instruction is the canonical in-memory form produced by the parser and
// consumed by the encoder and execution core.
//
// Registers holds 0, 1, or 2 register operands depending on Kind; Immediate
// is valid only when Kind is Immediate or ImmediateReg.
type Instruction struct {
	Opcode    Opcode
	Kind      Kind
	Registers []register.Register
	Immediate int8
}

// EncodeError reports an Instruction whose Kind, register count, or opcode
// don't agree and therefore cannot be encoded. A well-formed Instruction
// built by this package's constructors, or by pkg/parser, never triggers
// it; it exists for instructions built directly by external callers.
type EncodeError struct {
	Instruction Instruction
	Reason      string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %s", e.Instruction.Opcode, e.Reason)
}

// Validate checks an Instruction's Kind, opcode, and register count agree
// before it is handed to the encoder or the execution core.
func (in Instruction) Validate() error {
	want, ok := ExpectedKind(in.Opcode)
	if !ok {
		return &EncodeError{Instruction: in, Reason: "unrecognized opcode"}
	}
	if in.Kind != want {
		return &EncodeError{
			Instruction: in,
			Reason:      fmt.Sprintf("opcode %s requires kind %s, got %s", in.Opcode, want, in.Kind),
		}
	}

	wantRegs := map[Kind]int{NoReg: 0, SingleReg: 1, DoubleReg: 2, Immediate: 0, ImmediateReg: 1}[in.Kind]
	if len(in.Registers) != wantRegs {
		return &EncodeError{
			Instruction: in,
			Reason:      fmt.Sprintf("kind %s requires %d register operand(s), got %d", in.Kind, wantRegs, len(in.Registers)),
		}
	}

	hasImm := in.Kind == Immediate || in.Kind == ImmediateReg
	_ = hasImm // Immediate is always exactly one int8 field; no further check needed in Go's type system.

	return nil
}

// NoRegInstr builds a Kind-NoReg instruction, e.g. HLT, STC, XCHG.
func NoRegInstr(op Opcode) Instruction {
	return Instruction{Opcode: op, Kind: NoReg}
}

// SingleRegInstr builds a Kind-SingleReg instruction, e.g. ADD B.
func SingleRegInstr(op Opcode, r register.Register) Instruction {
	return Instruction{Opcode: op, Kind: SingleReg, Registers: []register.Register{r}}
}

// DoubleRegInstr builds a Kind-DoubleReg instruction, e.g. MOV B,A. The
// first register is the source, the second the destination.
func DoubleRegInstr(op Opcode, first, second register.Register) Instruction {
	return Instruction{Opcode: op, Kind: DoubleReg, Registers: []register.Register{first, second}}
}

// ImmediateInstr builds a Kind-Immediate instruction, e.g. ADI 10000000.
func ImmediateInstr(op Opcode, imm int8) Instruction {
	return Instruction{Opcode: op, Kind: Immediate, Immediate: imm}
}

// ImmediateRegInstr builds a Kind-ImmediateReg instruction, e.g. MVI A,imm.
func ImmediateRegInstr(op Opcode, r register.Register, imm int8) Instruction {
	return Instruction{Opcode: op, Kind: ImmediateReg, Registers: []register.Register{r}, Immediate: imm}
}
