// Package parser turns 8080-style mnemonic source text into the ordered
// instruction stream the encoder and execution core both consume. The
// grammar is line-oriented and whitespace-insensitive within a line; a
// recursive-descent reader over the already-split token list is enough
// for it.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/M4tthewDE/emu8080/pkg/instr"
	"github.com/M4tthewDE/emu8080/pkg/register"
)

// ParseError reports malformed source: an unknown mnemonic, an arity
// mismatch, an unknown register letter, or a non-8-bit immediate.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// mnemonicKind classifies every recognized mnemonic by the operand shape
// its source line must have. STAX and LDAX share single_reg's one-register
// shape; the register-pair restriction to B/D is checked separately.
var mnemonicKind = map[string]instr.Kind{
	"HLT": instr.NoReg, "STC": instr.NoReg, "CMC": instr.NoReg, "CMA": instr.NoReg,
	"RLC": instr.NoReg, "RRC": instr.NoReg, "RAL": instr.NoReg, "RAR": instr.NoReg,
	"DAA": instr.NoReg, "XCHG": instr.NoReg, "SPHL": instr.NoReg, "XTHL": instr.NoReg,

	"ADD": instr.SingleReg, "ADC": instr.SingleReg, "SUB": instr.SingleReg, "SBB": instr.SingleReg,
	"INR": instr.SingleReg, "DCR": instr.SingleReg, "ANA": instr.SingleReg, "ORA": instr.SingleReg,
	"XRA": instr.SingleReg, "CMP": instr.SingleReg,
	"STAX": instr.SingleReg, "LDAX": instr.SingleReg,

	"MOV": instr.DoubleReg,

	"ADI": instr.Immediate, "ACI": instr.Immediate, "SUI": instr.Immediate,

	"MVI": instr.ImmediateReg,
}

var mnemonicOpcode = map[string]instr.Opcode{
	"HLT": instr.HLT, "STC": instr.STC, "CMC": instr.CMC, "CMA": instr.CMA,
	"RLC": instr.RLC, "RRC": instr.RRC, "RAL": instr.RAL, "RAR": instr.RAR,
	"DAA": instr.DAA, "XCHG": instr.XCHG, "SPHL": instr.SPHL, "XTHL": instr.XTHL,

	"ADD": instr.ADD, "ADC": instr.ADC, "SUB": instr.SUB, "SBB": instr.SBB,
	"INR": instr.INR, "DCR": instr.DCR, "ANA": instr.ANA, "ORA": instr.ORA,
	"XRA": instr.XRA, "CMP": instr.CMP,
	"STAX": instr.STAX, "LDAX": instr.LDAX,

	"MOV": instr.MOV,

	"ADI": instr.ADI, "ACI": instr.ACI, "SUI": instr.SUI,

	"MVI": instr.MVI,
}

// ParseLine parses one non-comment, non-blank source line. lineNum is used
// only for error reporting.
func ParseLine(line string, lineNum int) (instr.Instruction, error) {
	if idx := strings.IndexByte(line, ';'); idx >= 0 {
		line = line[:idx]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return instr.Instruction{}, &ParseError{Line: lineNum, Reason: "empty line"}
	}

	mnemonic := strings.ToUpper(fields[0])
	operands := fields[1:]

	kind, ok := mnemonicKind[mnemonic]
	if !ok {
		return instr.Instruction{}, &ParseError{Line: lineNum, Reason: fmt.Sprintf("unrecognized mnemonic %q", fields[0])}
	}
	op := mnemonicOpcode[mnemonic]

	switch kind {
	case instr.NoReg:
		if len(operands) != 0 {
			return instr.Instruction{}, &ParseError{Line: lineNum, Reason: fmt.Sprintf("%s takes no operands", mnemonic)}
		}
		return instr.NoRegInstr(op), nil

	case instr.SingleReg:
		if len(operands) != 1 {
			return instr.Instruction{}, &ParseError{Line: lineNum, Reason: fmt.Sprintf("%s requires exactly one register operand", mnemonic)}
		}
		r, err := parseRegister(operands[0], lineNum)
		if err != nil {
			return instr.Instruction{}, err
		}
		if (op == instr.STAX || op == instr.LDAX) && r != register.B && r != register.D {
			return instr.Instruction{}, &ParseError{Line: lineNum, Reason: fmt.Sprintf("%s requires register pair B or D, got %s", mnemonic, r)}
		}
		return instr.SingleRegInstr(op, r), nil

	case instr.DoubleReg:
		if len(operands) != 2 {
			return instr.Instruction{}, &ParseError{Line: lineNum, Reason: fmt.Sprintf("%s requires exactly two register operands", mnemonic)}
		}
		first, err := parseRegister(operands[0], lineNum)
		if err != nil {
			return instr.Instruction{}, err
		}
		second, err := parseRegister(operands[1], lineNum)
		if err != nil {
			return instr.Instruction{}, err
		}
		return instr.DoubleRegInstr(op, first, second), nil

	case instr.Immediate:
		if len(operands) != 1 {
			return instr.Instruction{}, &ParseError{Line: lineNum, Reason: fmt.Sprintf("%s requires exactly one immediate operand", mnemonic)}
		}
		imm, err := parseImmediate(operands[0], lineNum)
		if err != nil {
			return instr.Instruction{}, err
		}
		return instr.ImmediateInstr(op, imm), nil

	case instr.ImmediateReg:
		if len(operands) != 2 {
			return instr.Instruction{}, &ParseError{Line: lineNum, Reason: fmt.Sprintf("%s requires a register and an immediate operand", mnemonic)}
		}
		r, err := parseRegister(operands[0], lineNum)
		if err != nil {
			return instr.Instruction{}, err
		}
		imm, err := parseImmediate(operands[1], lineNum)
		if err != nil {
			return instr.Instruction{}, err
		}
		return instr.ImmediateRegInstr(op, r, imm), nil
	}

	// Unreachable: mnemonicKind only ever maps to the cases above.
	return instr.Instruction{}, &ParseError{Line: lineNum, Reason: "internal: unhandled kind"}
}

func parseRegister(token string, lineNum int) (register.Register, error) {
	token = strings.ToUpper(token)
	if len(token) != 1 {
		return 0, &ParseError{Line: lineNum, Reason: fmt.Sprintf("invalid register %q", token)}
	}
	r, ok := register.ByLetter(token[0])
	if !ok {
		return 0, &ParseError{Line: lineNum, Reason: fmt.Sprintf("invalid register %q", token)}
	}
	return r, nil
}

// parseImmediate decodes eight binary digits, MSB first, as a two's
// complement 8-bit value: "11111111" -> -1, "01111111" -> 127.
func parseImmediate(token string, lineNum int) (int8, error) {
	if len(token) != 8 {
		return 0, &ParseError{Line: lineNum, Reason: fmt.Sprintf("immediate %q must be exactly 8 binary digits", token)}
	}
	v, err := strconv.ParseUint(token, 2, 8)
	if err != nil {
		return 0, &ParseError{Line: lineNum, Reason: fmt.Sprintf("immediate %q is not an 8-bit binary literal", token)}
	}
	return int8(byte(v)), nil
}

// ParseProgram parses a complete source buffer into its instruction
// stream, in source order, skipping comments and blank lines.
func ParseProgram(source []byte) ([]instr.Instruction, error) {
	var out []instr.Instruction
	lines := strings.Split(string(source), "\n")
	for i, raw := range lines {
		lineNum := i + 1
		trimmed := strings.TrimSpace(raw)
		if idx := strings.IndexByte(trimmed, ';'); idx >= 0 {
			trimmed = strings.TrimSpace(trimmed[:idx])
		}
		if trimmed == "" {
			continue
		}
		in, err := ParseLine(raw, lineNum)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}
