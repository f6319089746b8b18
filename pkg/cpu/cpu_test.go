package cpu

import (
	"testing"

	"github.com/M4tthewDE/emu8080/pkg/instr"
	"github.com/M4tthewDE/emu8080/pkg/register"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarioMVIAndADD assembles and runs the canonical add-two-numbers example.
func TestScenarioMVIAndADD(t *testing.T) {
	c := New()
	program := []instr.Instruction{
		instr.ImmediateRegInstr(instr.MVI, register.A, 10),
		instr.ImmediateRegInstr(instr.MVI, register.B, 5),
		instr.SingleRegInstr(instr.ADD, register.B),
		instr.NoRegInstr(instr.HLT),
	}
	halted, err := c.Run(program)
	require.NoError(t, err)
	assert.True(t, halted)
	assert.EqualValues(t, 15, c.Regs[register.Index(register.A)])
	assert.EqualValues(t, 5, c.Regs[register.Index(register.B)])
	assert.False(t, c.Flags.Get(FlagZ))
	assert.False(t, c.Flags.Get(FlagS))
	assert.False(t, c.Flags.Get(FlagC))
}

// TestScenarioSignedOverflowSetsCarry checks that 127+127 wraps and sets carry/sign.
func TestScenarioSignedOverflowSetsCarry(t *testing.T) {
	c := New()
	c.Regs[register.Index(register.A)] = 127
	c.Regs[register.Index(register.B)] = 127
	_, err := c.Step(instr.SingleRegInstr(instr.ADD, register.B))
	require.NoError(t, err)

	assert.EqualValues(t, -2, c.Regs[register.Index(register.A)])
	assert.True(t, c.Flags.Get(FlagC))
	assert.True(t, c.Flags.Get(FlagS))
	assert.False(t, c.Flags.Get(FlagZ))
}

// TestScenarioSubtractionBorrow checks a subtraction against a negative operand.
func TestScenarioSubtractionBorrow(t *testing.T) {
	c := New()
	c.Regs[register.Index(register.A)] = 12
	c.Regs[register.Index(register.B)] = -15
	_, err := c.Step(instr.SingleRegInstr(instr.SUB, register.B))
	require.NoError(t, err)

	assert.EqualValues(t, 27, c.Regs[register.Index(register.A)])
	assert.True(t, c.Flags.Get(FlagC))
}

// TestScenarioCMPNegativeOperand checks CMP's negative-operand carry rule.
func TestScenarioCMPNegativeOperand(t *testing.T) {
	c := New()
	c.Regs[register.Index(register.A)] = 10
	c.Regs[register.Index(register.E)] = -5
	_, err := c.Step(instr.SingleRegInstr(instr.CMP, register.E))
	require.NoError(t, err)

	assert.False(t, c.Flags.Get(FlagZ))
	assert.False(t, c.Flags.Get(FlagC))
	// CMP must not alter the accumulator; the subtraction is discarded.
	assert.EqualValues(t, 10, c.Regs[register.Index(register.A)])
}

// TestScenarioStaxLdax round-trips a value through memory via STAX/LDAX.
func TestScenarioStaxLdax(t *testing.T) {
	c := New()
	c.Regs[register.Index(register.B)] = 123
	c.Regs[register.Index(register.C)] = 17
	c.Regs[register.Index(register.A)] = 42

	_, err := c.Step(instr.SingleRegInstr(instr.STAX, register.B))
	require.NoError(t, err)
	assert.EqualValues(t, 42, c.Memory[31505])

	c.Regs[register.Index(register.A)] = 0
	_, err = c.Step(instr.SingleRegInstr(instr.LDAX, register.B))
	require.NoError(t, err)
	assert.EqualValues(t, 42, c.Regs[register.Index(register.A)])
}

// TestScenarioRotation checks RLC against a negative accumulator value.
func TestScenarioRotation(t *testing.T) {
	c := New()
	c.Regs[register.Index(register.A)] = -14
	_, err := c.Step(instr.NoRegInstr(instr.RLC))
	require.NoError(t, err)

	assert.EqualValues(t, -27, c.Regs[register.Index(register.A)])
	assert.True(t, c.Flags.Get(FlagC))
}

// TestScenarioMOVOperandOrder checks MOV's operand order independently of
// asm's internals; the byte encoding and its decoding are asserted by asm's
// own table tests.
func TestScenarioMOVOperandOrder(t *testing.T) {
	in := instr.DoubleRegInstr(instr.MOV, register.B, register.A)
	assert.Equal(t, instr.MOV, in.Opcode)
	assert.Equal(t, []register.Register{register.B, register.A}, in.Registers)
}

// TestScenarioHLTStopsExecution checks that HLT stops Run before the
// following instruction executes.
func TestScenarioHLTStopsExecution(t *testing.T) {
	c := New()
	program := []instr.Instruction{
		instr.SingleRegInstr(instr.ADD, register.A),
		instr.NoRegInstr(instr.HLT),
		instr.SingleRegInstr(instr.ADD, register.A),
	}
	c.Regs[register.Index(register.A)] = 1

	halted, err := c.Run(program)
	require.NoError(t, err)
	assert.True(t, halted)
	// Two additions would double A to 4; HLT must stop it at 2.
	assert.EqualValues(t, 2, c.Regs[register.Index(register.A)])
}

func TestFlagZMonotonicity(t *testing.T) {
	c := New()
	c.Regs[register.Index(register.A)] = 5
	c.Regs[register.Index(register.B)] = -5
	_, err := c.Step(instr.SingleRegInstr(instr.ADD, register.B))
	require.NoError(t, err)
	assert.True(t, c.Flags.Get(FlagZ))
	assert.EqualValues(t, 0, c.Regs[register.Index(register.A)])

	_, err = c.Step(instr.ImmediateRegInstr(instr.MVI, register.A, 1))
	require.NoError(t, err)
	_, err = c.Step(instr.SingleRegInstr(instr.INR, register.A))
	require.NoError(t, err)
	assert.False(t, c.Flags.Get(FlagZ))
}

func TestTwosComplementWrapNeverPanics(t *testing.T) {
	c := New()
	for a := -128; a <= 127; a++ {
		for b := -128; b <= 127; b++ {
			c.Regs[register.Index(register.A)] = int8(a)
			c.Regs[register.Index(register.B)] = int8(b)
			assert.NotPanics(t, func() {
				_, _ = c.Step(instr.SingleRegInstr(instr.ADD, register.B))
				_, _ = c.Step(instr.SingleRegInstr(instr.SUB, register.B))
				_, _ = c.Step(instr.SingleRegInstr(instr.SBB, register.B))
			})
		}
	}
}

func TestCMAInvolution(t *testing.T) {
	c := New()
	c.Regs[register.Index(register.A)] = 53
	_, err := c.Step(instr.NoRegInstr(instr.CMA))
	require.NoError(t, err)
	_, err = c.Step(instr.NoRegInstr(instr.CMA))
	require.NoError(t, err)
	assert.EqualValues(t, 53, c.Regs[register.Index(register.A)])
}

func TestRotationsArePeriodic(t *testing.T) {
	for _, op := range []instr.Opcode{instr.RLC, instr.RRC} {
		c := New()
		c.Regs[register.Index(register.A)] = 77
		c.Flags = c.Flags.Set(FlagC, true)
		// RLC/RRC overwrite C from A on every step, so the starting (A, C)
		// is taken after one rotation has set C.
		_, err := c.Step(instr.NoRegInstr(op))
		require.NoError(t, err)
		startA, startC := c.Regs[register.Index(register.A)], c.Flags.Get(FlagC)
		for i := 0; i < 8; i++ {
			_, err := c.Step(instr.NoRegInstr(op))
			require.NoError(t, err)
		}
		assert.Equal(t, startA, c.Regs[register.Index(register.A)])
		assert.Equal(t, startC, c.Flags.Get(FlagC))
	}

	for _, op := range []instr.Opcode{instr.RAL, instr.RAR} {
		c := New()
		c.Regs[register.Index(register.A)] = 77
		c.Flags = c.Flags.Set(FlagC, true)
		startA, startC := c.Regs[register.Index(register.A)], c.Flags.Get(FlagC)
		for i := 0; i < 9; i++ {
			_, err := c.Step(instr.NoRegInstr(op))
			require.NoError(t, err)
		}
		assert.Equal(t, startA, c.Regs[register.Index(register.A)])
		assert.Equal(t, startC, c.Flags.Get(FlagC))
	}
}

func TestAnaAndOraLeaveZAndSUntouched(t *testing.T) {
	for _, op := range []instr.Opcode{instr.ANA, instr.ORA} {
		c := New()
		c.Regs[register.Index(register.A)] = 0x0F
		c.Regs[register.Index(register.B)] = 0x0F // result is nonzero and positive either way
		c.Flags = c.Flags.Set(FlagZ, true)
		c.Flags = c.Flags.Set(FlagS, true)

		_, err := c.Step(instr.SingleRegInstr(op, register.B))
		require.NoError(t, err)

		assert.True(t, c.Flags.Get(FlagZ), "%s must not touch Z", op)
		assert.True(t, c.Flags.Get(FlagS), "%s must not touch S", op)
		assert.False(t, c.Flags.Get(FlagC))
	}
}

func TestStaxRejectsNonPairRegister(t *testing.T) {
	c := New()
	_, err := c.Step(instr.SingleRegInstr(instr.STAX, register.H))
	require.Error(t, err)
	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
}

func TestXchgSwapsPairs(t *testing.T) {
	c := New()
	c.Regs[register.Index(register.D)] = 1
	c.Regs[register.Index(register.E)] = 2
	c.Regs[register.Index(register.H)] = 3
	c.Regs[register.Index(register.L)] = 4

	_, err := c.Step(instr.NoRegInstr(instr.XCHG))
	require.NoError(t, err)

	assert.EqualValues(t, 3, c.Regs[register.Index(register.D)])
	assert.EqualValues(t, 4, c.Regs[register.Index(register.E)])
	assert.EqualValues(t, 1, c.Regs[register.Index(register.H)])
	assert.EqualValues(t, 2, c.Regs[register.Index(register.L)])
}

func TestSphlLoadsStackPointerFromHL(t *testing.T) {
	c := New()
	c.Regs[register.Index(register.H)] = 1
	c.Regs[register.Index(register.L)] = 2
	_, err := c.Step(instr.NoRegInstr(instr.SPHL))
	require.NoError(t, err)
	assert.EqualValues(t, 0x0102, c.SP)
}

func TestXthlSwapsTopOfStackWithHL(t *testing.T) {
	c := New()
	c.SP = 100
	c.Memory[100] = 10
	c.Memory[101] = 20
	c.Regs[register.Index(register.H)] = 1
	c.Regs[register.Index(register.L)] = 2

	_, err := c.Step(instr.NoRegInstr(instr.XTHL))
	require.NoError(t, err)

	assert.EqualValues(t, 10, c.Regs[register.Index(register.L)])
	assert.EqualValues(t, 20, c.Regs[register.Index(register.H)])
	assert.EqualValues(t, 2, c.Memory[100])
	assert.EqualValues(t, 1, c.Memory[101])
}

func TestDaaLowNibbleCorrection(t *testing.T) {
	c := New()
	c.Regs[register.Index(register.A)] = 0x0A // invalid BCD low nibble
	_, err := c.Step(instr.NoRegInstr(instr.DAA))
	require.NoError(t, err)
	assert.EqualValues(t, 0x10, c.Regs[register.Index(register.A)])
	assert.True(t, c.Flags.Get(FlagA))
}

func TestSnapshotReflectsState(t *testing.T) {
	c := New()
	c.Regs[register.Index(register.A)] = 9
	c.SP = 42
	c.Flags = c.Flags.Set(FlagZ, true)

	snap := c.Snapshot()
	assert.EqualValues(t, 9, snap.Registers[register.Index(register.A)])
	assert.EqualValues(t, 42, snap.SP)
	assert.True(t, snap.Flags.Get(FlagZ))
	assert.Contains(t, snap.String(), "A=9")
	assert.Contains(t, snap.String(), "SP=42")
}
