// Package cpu implements the execution core: an 8080-style register file,
// a flat 64K memory, a stack pointer, and the flag word, driven by the same
// instr.Instruction records the assembler and disassembler produce.
package cpu

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/M4tthewDE/emu8080/pkg/instr"
	"github.com/M4tthewDE/emu8080/pkg/register"
)

const memorySize = 1 << 16

// ExecutionError reports an instruction the core cannot carry out: a
// malformed operand shape, or a register-pair operand outside {B, D} for
// STAX/LDAX.
type ExecutionError struct {
	Instruction instr.Instruction
	Reason      string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("cannot execute %s: %s", e.Instruction.Opcode, e.Reason)
}

// CPU holds the complete machine state: eight signed
// 8-bit register cells (indexed the way pkg/register.Index maps register
// letters), a 64K memory, a 16-bit stack pointer, and a flag word.
type CPU struct {
	Regs   [8]int8
	Memory [memorySize]int8
	SP     uint16
	Flags  Flags

	// TreatXRAAsBug: when true (the default, pinning the behavior this
	// core is grounded on) XRA writes its result into the operand
	// register rather than the accumulator. Exposed so callers that want
	// the "intended" 8080 semantics instead can flip it.
	TreatXRAAsBug bool
}

// New returns a CPU with all state zeroed, matching the original's default
// construction (a freshly reset chip with A=...=L=0, SP=0, flags clear).
func New() *CPU {
	return &CPU{TreatXRAAsBug: true}
}

// Snapshot is a point-in-time, comparable view of the register file, stack
// pointer and flag word, suitable for test assertions and CLI introspection
// without exposing the full 64K memory array by value.
type Snapshot struct {
	Registers [8]int8
	SP        uint16
	Flags     Flags
}

// Snapshot captures the CPU's register file, stack pointer and flags.
func (c *CPU) Snapshot() Snapshot {
	return Snapshot{Registers: c.Regs, SP: c.SP, Flags: c.Flags}
}

// String renders a one-line diagnostic, e.g. "A=15 B=5 C=0 D=0 E=0 H=0 L=0
// M=0 SP=0 S=false Z=false A=false P=false C=false".
func (s Snapshot) String() string {
	names := [8]string{"A", "B", "C", "D", "E", "H", "L", "M"}
	out := ""
	for i, n := range names {
		out += fmt.Sprintf("%s=%d ", n, s.Registers[i])
	}
	out += fmt.Sprintf("SP=%d S=%v Z=%v A=%v P=%v C=%v",
		s.SP, s.Flags.Get(FlagS), s.Flags.Get(FlagZ), s.Flags.Get(FlagA), s.Flags.Get(FlagP), s.Flags.Get(FlagC))
	return out
}

func u8(v int8) byte { return byte(v) }

func regIdx(r register.Register) int { return register.Index(r) }

// Run executes a full instruction stream in order, stopping either when a
// HLT instruction is reached (halted=true, err=nil) or the stream is
// exhausted without one (halted=false, err=nil).
func (c *CPU) Run(program []instr.Instruction) (halted bool, err error) {
	for i, in := range program {
		halted, err = c.Step(in)
		if err != nil {
			return false, errors.Wrapf(err, "instruction %d", i)
		}
		if halted {
			return true, nil
		}
	}
	return false, nil
}

// Step applies a single instruction to the CPU state and reports whether it
// was HLT.
func (c *CPU) Step(in instr.Instruction) (halted bool, err error) {
	if err := in.Validate(); err != nil {
		return false, &ExecutionError{Instruction: in, Reason: err.Error()}
	}

	switch in.Opcode {
	case instr.MOV:
		src, dst := regIdx(in.Registers[0]), regIdx(in.Registers[1])
		c.Regs[dst] = c.Regs[src]

	case instr.MVI:
		c.Regs[regIdx(in.Registers[0])] = in.Immediate

	case instr.ADD:
		c.addLike(regIdx(in.Registers[0]), false)
	case instr.ADC:
		c.addLike(regIdx(in.Registers[0]), true)
	case instr.ADI:
		c.addLikeImmediate(in.Immediate, false)
	case instr.ACI:
		c.addLikeImmediate(in.Immediate, true)

	case instr.SUB:
		c.subLike(regIdx(in.Registers[0]), false)
	case instr.SBB:
		c.subLike(regIdx(in.Registers[0]), true)
	case instr.SUI:
		c.subLikeImmediate(in.Immediate, false)

	case instr.INR:
		idx := regIdx(in.Registers[0])
		result := u8(c.Regs[idx]) + 1
		c.Regs[idx] = int8(result)
		c.Flags = c.Flags.Set(FlagZ, c.Regs[idx] == 0)
		c.Flags = c.Flags.Set(FlagS, c.Regs[idx] < 0)

	case instr.DCR:
		idx := regIdx(in.Registers[0])
		result := u8(c.Regs[idx]) - 1
		c.Regs[idx] = int8(result)
		c.Flags = c.Flags.Set(FlagZ, c.Regs[idx] == 0)
		c.Flags = c.Flags.Set(FlagS, c.Regs[idx] < 0)

	case instr.ANA:
		idx := regIdx(in.Registers[0])
		result := u8(c.Regs[0]) & u8(c.Regs[idx])
		c.Regs[0] = int8(result)
		c.Flags = c.Flags.Set(FlagC, false)

	case instr.ORA:
		idx := regIdx(in.Registers[0])
		result := u8(c.Regs[0]) | u8(c.Regs[idx])
		c.Regs[0] = int8(result)
		c.Flags = c.Flags.Set(FlagC, false)

	case instr.XRA:
		idx := regIdx(in.Registers[0])
		result := u8(c.Regs[0]) ^ u8(c.Regs[idx])
		if c.TreatXRAAsBug {
			c.Regs[idx] = int8(result)
		} else {
			c.Regs[0] = int8(result)
		}
		c.Flags = c.Flags.Set(FlagZ, result == 0)

	case instr.CMP:
		c.compare(regIdx(in.Registers[0]))

	case instr.STC:
		c.Flags = c.Flags.Set(FlagC, true)
	case instr.CMC:
		c.Flags = c.Flags.Set(FlagC, !c.Flags.Get(FlagC))
	case instr.CMA:
		c.Regs[0] = int8(^u8(c.Regs[0]))

	case instr.HLT:
		return true, nil

	case instr.RLC:
		a := u8(c.Regs[0])
		carry := a&0x80 != 0
		c.Flags = c.Flags.Set(FlagC, carry)
		result := a << 1
		if carry {
			result |= 1
		}
		c.Regs[0] = int8(result)

	case instr.RRC:
		a := u8(c.Regs[0])
		carry := a&0x01 != 0
		c.Flags = c.Flags.Set(FlagC, carry)
		result := a >> 1
		if carry {
			result |= 0x80
		}
		c.Regs[0] = int8(result)

	case instr.RAL:
		a := u8(c.Regs[0])
		oldCarry := c.Flags.Get(FlagC)
		c.Flags = c.Flags.Set(FlagC, a&0x80 != 0)
		result := a << 1
		if oldCarry {
			result |= 1
		}
		c.Regs[0] = int8(result)

	case instr.RAR:
		a := u8(c.Regs[0])
		oldCarry := c.Flags.Get(FlagC)
		c.Flags = c.Flags.Set(FlagC, a&0x01 != 0)
		result := a >> 1
		if oldCarry {
			result |= 0x80
		}
		c.Regs[0] = int8(result)

	case instr.DAA:
		c.decimalAdjust()

	case instr.STAX:
		hi, lo, err := pairIndices(in.Registers[0])
		if err != nil {
			return false, &ExecutionError{Instruction: in, Reason: err.Error()}
		}
		c.Memory[c.pairAddress(hi, lo)] = c.Regs[0]

	case instr.LDAX:
		hi, lo, err := pairIndices(in.Registers[0])
		if err != nil {
			return false, &ExecutionError{Instruction: in, Reason: err.Error()}
		}
		c.Regs[0] = c.Memory[c.pairAddress(hi, lo)]

	case instr.XCHG:
		d, e := regIdx(register.D), regIdx(register.E)
		h, l := regIdx(register.H), regIdx(register.L)
		c.Regs[d], c.Regs[h] = c.Regs[h], c.Regs[d]
		c.Regs[e], c.Regs[l] = c.Regs[l], c.Regs[e]

	case instr.SPHL:
		h, l := regIdx(register.H), regIdx(register.L)
		c.SP = c.pairAddress(h, l)

	case instr.XTHL:
		h, l := regIdx(register.H), regIdx(register.L)
		top := c.Memory[c.SP]
		second := c.Memory[c.SP+1]
		c.Memory[c.SP] = c.Regs[l]
		c.Memory[c.SP+1] = c.Regs[h]
		c.Regs[l] = top
		c.Regs[h] = second

	default:
		return false, &ExecutionError{Instruction: in, Reason: "unimplemented opcode"}
	}

	return false, nil
}

// addLike implements ADD/ADC against a register operand.
func (c *CPU) addLike(operand int, withCarry bool) {
	var carryIn byte
	if withCarry && c.Flags.Get(FlagC) {
		carryIn = 1
	}
	a := u8(c.Regs[0])
	b := u8(c.Regs[operand])
	sum16 := uint16(a) + uint16(b) + uint16(carryIn)
	result := a + b + carryIn
	c.Regs[0] = int8(result)
	c.Flags = c.Flags.Set(FlagZ, c.Regs[0] == 0)
	c.Flags = c.Flags.Set(FlagS, c.Regs[0] < 0)
	c.Flags = c.Flags.Set(FlagC, sum16 > 255)
}

func (c *CPU) addLikeImmediate(imm int8, withCarry bool) {
	var carryIn byte
	if withCarry && c.Flags.Get(FlagC) {
		carryIn = 1
	}
	a := u8(c.Regs[0])
	b := u8(imm)
	sum16 := uint16(a) + uint16(b) + uint16(carryIn)
	result := a + b + carryIn
	c.Regs[0] = int8(result)
	c.Flags = c.Flags.Set(FlagZ, c.Regs[0] == 0)
	c.Flags = c.Flags.Set(FlagS, c.Regs[0] < 0)
	c.Flags = c.Flags.Set(FlagC, sum16 > 255)
}

// subLike implements SUB/SBB against a register operand. The carry-out is
// computed over the full three-term expression
// A - operand - Cin rather than chained two-term subtractions, and SBB
// leaves S untouched (only Z and C are defined for it).
func (c *CPU) subLike(operand int, withBorrow bool) {
	var borrowIn byte
	if withBorrow && c.Flags.Get(FlagC) {
		borrowIn = 1
	}
	a := u8(c.Regs[0])
	b := u8(c.Regs[operand])
	subtrahend := uint16(b) + uint16(borrowIn)
	result := a - b - borrowIn
	c.Regs[0] = int8(result)
	c.Flags = c.Flags.Set(FlagZ, c.Regs[0] == 0)
	c.Flags = c.Flags.Set(FlagC, uint16(a) < subtrahend)
	if !withBorrow {
		c.Flags = c.Flags.Set(FlagS, c.Regs[0] < 0)
	}
}

func (c *CPU) subLikeImmediate(imm int8, withBorrow bool) {
	var borrowIn byte
	if withBorrow && c.Flags.Get(FlagC) {
		borrowIn = 1
	}
	a := u8(c.Regs[0])
	b := u8(imm)
	subtrahend := uint16(b) + uint16(borrowIn)
	result := a - b - borrowIn
	c.Regs[0] = int8(result)
	c.Flags = c.Flags.Set(FlagZ, c.Regs[0] == 0)
	c.Flags = c.Flags.Set(FlagC, uint16(a) < subtrahend)
	if !withBorrow {
		c.Flags = c.Flags.Set(FlagS, c.Regs[0] < 0)
	}
}

// compare computes A - regs[operand] without storing the result, updating
// Z and C. A negative operand takes a special-cased carry rule: C is set
// iff the unsigned sum A + operand stays within a single byte.
func (c *CPU) compare(operand int) {
	a := c.Regs[0]
	b := c.Regs[operand]
	result := u8(a) - u8(b)
	c.Flags = c.Flags.Set(FlagZ, result == 0)
	if b < 0 {
		sum := uint16(u8(a)) + uint16(u8(b))
		c.Flags = c.Flags.Set(FlagC, sum <= 255)
	} else {
		c.Flags = c.Flags.Set(FlagC, uint16(u8(a)) < uint16(u8(b)))
	}
}

// decimalAdjust implements DAA's two-stage nibble correction, carried over
// from the source behavior bit for bit: the low-nibble correction decides
// whether it overflowed into the high nibble by comparing the pre- and
// post-correction high nibbles, rather than inspecting the raw addition.
func (c *CPU) decimalAdjust() {
	oldA := c.Regs[0]
	a := oldA
	if a&0x0F > 9 || c.Flags.Get(FlagA) {
		adjusted := int8(u8(a) + 6)
		c.Flags = c.Flags.Set(FlagA, u8(oldA)&0xF0 != u8(adjusted)&0xF0)
		a = adjusted
	}
	msb := (u8(a) & 0xF0) >> 4
	if msb > 9 || c.Flags.Get(FlagC) {
		c.Flags = c.Flags.Set(FlagC, uint16(u8(a))+0x60 > 255)
		a = int8(u8(a) + 0x60)
	}
	c.Regs[0] = a
}

// pairAddress combines two register cells into a 16-bit address, high byte
// first, reinterpreting each signed cell as its unsigned byte pattern.
func (c *CPU) pairAddress(hi, lo int) uint16 {
	return uint16(u8(c.Regs[hi]))<<8 | uint16(u8(c.Regs[lo]))
}

// pairIndices maps the register pair operand of STAX/LDAX (which must be B
// or D) to its high/low register cell indices: B pairs with C, D with E.
func pairIndices(r register.Register) (hi, lo int, err error) {
	switch r {
	case register.B:
		return regIdx(register.B), regIdx(register.C), nil
	case register.D:
		return regIdx(register.D), regIdx(register.E), nil
	default:
		return 0, 0, errors.Errorf("register pair operand must be B or D, got %s", r)
	}
}
