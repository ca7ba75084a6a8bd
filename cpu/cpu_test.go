package cpu

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/duck/memory"
)

// word encodes an instruction for test programs.
func word(op OpCode, cond CondFlag, target, src1, src2 uint8, offset int32) int32 {
	return MakeInstruction(op, cond, target, src1, src2, offset).Encode()
}

var wordHalt = word(OP_HALT, COND_ALWAYS, 0, 0, 0, 0)

// newTestCpu builds a CPU over a 512 word memory holding program at 0.
func newTestCpu(t *testing.T, program ...int32) (cpu *Cpu, mem *memory.Memory) {
	mem = memory.NewMemory(512)
	assert.NoError(t, mem.Load(0, program))

	cpu = NewCpu(mem)
	return
}

func TestCpu(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t)

	assert.Equal(COND_ALWAYS, cpu.Cond)
	assert.False(cpu.Halted)
	assert.Equal(HALT_NONE, cpu.Reason)
	assert.Equal(RegisterFile{}, cpu.Register)
	assert.Contains(cpu.String(), "cond: ALWAYS")
}

func TestCpu_StoreHalt(t *testing.T) {
	assert := assert.New(t)

	cpu, mem := newTestCpu(t,
		word(OP_ADD, COND_ALWAYS, 1, 0, 0, 2),
		word(OP_STORE, COND_ALWAYS, 1, 0, 0, 10),
		wordHalt,
	)

	halt, err := cpu.Run(0, false)
	assert.NoError(err)
	assert.Equal(HALT_NORMAL, halt)
	assert.True(cpu.Halted)

	assert.Equal(int32(2), cpu.Register[1])
	assert.Equal(int32(2), mem.Cell[10])

	// HALT does not advance the program counter.
	assert.Equal(int32(2), cpu.Register.PC())
	assert.Equal(3, cpu.Ticks)
	assert.Equal(COND_P, cpu.Cond)
}

func TestCpu_DivideByZero(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t,
		word(OP_ADD, COND_ALWAYS, 1, 0, 0, 7),
		word(OP_ADD, COND_ALWAYS, 2, 0, 0, 9),
		word(OP_DIV, COND_ALWAYS, 2, 1, 0, 0),
		wordHalt,
	)

	halt, err := cpu.Run(0, false)
	assert.Equal(HALT_FAULT, halt)
	assert.ErrorIs(err, ErrDivideByZero)
	assert.True(cpu.Halted)
	assert.Equal(COND_V, cpu.Cond)

	var fault *ErrFault
	assert.True(errors.As(err, &fault))
	assert.Equal(int32(2), fault.Addr)
	assert.Equal(OP_DIV, Decode(fault.Word).Op)

	// Result register untouched, program counter not advanced.
	assert.Equal(int32(9), cpu.Register[2])
	assert.Equal(int32(2), cpu.Register.PC())
}

func TestCpu_PredicateSkip(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t,
		word(OP_SUB, COND_ALWAYS, 0, 0, 0, 0),    // Z
		word(OP_ADD, COND_P, 15, 0, 15, 5),       // not taken
		word(OP_ADD, COND_M|COND_P, 1, 0, 0, 99), // not taken
		wordHalt,
	)

	halt, err := cpu.Run(0, false)
	assert.NoError(err)
	assert.Equal(HALT_NORMAL, halt)

	assert.Equal(int32(3), cpu.Register.PC())
	assert.Equal(int32(0), cpu.Register[1])
	assert.Equal(COND_Z, cpu.Cond)
	assert.Equal(4, cpu.Ticks)
}

func TestCpu_PredicateSkipStep(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t,
		word(OP_ADD, COND_P, 15, 0, 15, 100),
	)
	cpu.Cond = COND_Z
	cpu.Register[15] = 0
	cpu.Register[3] = 33

	before := cpu.Register
	assert.NoError(cpu.Step())

	// Only the program counter moves.
	before[15] = 1
	assert.Equal(before, cpu.Register)
	assert.Equal(COND_Z, cpu.Cond)
	assert.False(cpu.Halted)
}

func TestCpu_NeverPredicate(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t,
		word(OP_DIV, COND_NEVER, 1, 0, 0, 0),
		wordHalt,
	)

	halt, err := cpu.Run(0, false)
	assert.NoError(err)
	assert.Equal(HALT_NORMAL, halt)
	assert.Equal(COND_ALWAYS, cpu.Cond)
}

func TestCpu_Jump(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t,
		word(OP_ADD, COND_ALWAYS, 15, 0, 15, 3), // jump to 3
		word(OP_ADD, COND_ALWAYS, 1, 0, 0, 1),
		wordHalt,
		word(OP_ADD, COND_ALWAYS, 2, 0, 0, 2),
		wordHalt,
	)

	halt, err := cpu.Run(0, false)
	assert.NoError(err)
	assert.Equal(HALT_NORMAL, halt)
	assert.Equal(int32(0), cpu.Register[1])
	assert.Equal(int32(2), cpu.Register[2])
	assert.Equal(int32(4), cpu.Register.PC())
}

func TestCpu_Loop(t *testing.T) {
	assert := assert.New(t)

	cpu, mem := newTestCpu(t,
		word(OP_ADD, COND_ALWAYS, 1, 1, 0, 2),     // count up r1 by 2
		word(OP_STORE, COND_ALWAYS, 1, 0, 0, 511), // ... printing each value
		word(OP_SUB, COND_ALWAYS, 0, 1, 0, 10),    // ... r1 < 10 ?
		word(OP_ADD, COND_M, 15, 0, 15, -3),       // repeat while r1 < 10
		wordHalt,
	)

	var printed []int32
	assert.NoError(mem.MapOutput(511, func(value int32) error {
		printed = append(printed, value)
		return nil
	}))

	halt, err := cpu.Run(0, false)
	assert.NoError(err)
	assert.Equal(HALT_NORMAL, halt)
	assert.Equal([]int32{2, 4, 6, 8, 10}, printed)
	assert.Equal(int32(10), cpu.Register[1])
	assert.Equal(COND_Z, cpu.Cond)
}

func TestCpu_RegisterZero(t *testing.T) {
	assert := assert.New(t)

	cpu, mem := newTestCpu(t,
		word(OP_ADD, COND_ALWAYS, 0, 0, 0, 5),
		word(OP_SUB, COND_ALWAYS, 0, 0, 0, 5),
		word(OP_MUL, COND_ALWAYS, 0, 0, 0, 5),
		word(OP_DIV, COND_ALWAYS, 0, 0, 0, 5),
		word(OP_LOAD, COND_ALWAYS, 0, 0, 0, 100),
		word(OP_STORE, COND_ALWAYS, 0, 0, 0, 101),
		wordHalt,
	)
	mem.Cell[100] = 1234
	mem.Cell[101] = 4321

	observed := 0
	cpu.Observer = func(step Step) {
		observed++
		assert.Equal(int32(0), cpu.Register[0])
	}

	halt, err := cpu.Run(0, false)
	assert.NoError(err)
	assert.Equal(HALT_NORMAL, halt)
	assert.Equal(int32(0), cpu.Register[0])
	assert.Equal(7, observed)

	// STORE from r0 writes zero.
	assert.Equal(int32(0), mem.Cell[101])
}

func TestCpu_LoadStore(t *testing.T) {
	assert := assert.New(t)

	cpu, mem := newTestCpu(t,
		word(OP_LOAD, COND_ALWAYS, 1, 0, 15, 4), // r1 = mem[0+4]
		word(OP_ADD, COND_ALWAYS, 2, 0, 0, 200),
		word(OP_STORE, COND_ALWAYS, 1, 2, 0, 7), // mem[200+7] = r1
		wordHalt,
		-42,
	)

	halt, err := cpu.Run(0, false)
	assert.NoError(err)
	assert.Equal(HALT_NORMAL, halt)
	assert.Equal(int32(-42), cpu.Register[1])
	assert.Equal(int32(-42), mem.Cell[207])
	// Address computation sets the condition.
	assert.Equal(COND_P, cpu.Cond)
}

func TestCpu_LoadPC(t *testing.T) {
	assert := assert.New(t)

	// LOAD into r15 happens after the program counter increment.
	cpu, _ := newTestCpu(t,
		word(OP_LOAD, COND_ALWAYS, 15, 0, 0, 3),
		wordHalt,
		wordHalt,
		5,
		0,
		wordHalt,
	)

	halt, err := cpu.Run(0, false)
	assert.NoError(err)
	assert.Equal(HALT_NORMAL, halt)
	assert.Equal(int32(5), cpu.Register.PC())
	assert.Equal(2, cpu.Ticks)
}

func TestCpu_MemoryFault(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t,
		word(OP_ADD, COND_ALWAYS, 2, 0, 0, 500),
		word(OP_LOAD, COND_ALWAYS, 1, 2, 0, 100),
		wordHalt,
	)
	cpu.Register[1] = 77

	halt, err := cpu.Run(0, false)
	assert.Equal(HALT_FAULT, halt)
	assert.ErrorIs(err, memory.ErrSegFault)
	assert.ErrorIs(err, ErrLoad)
	assert.Equal(int32(77), cpu.Register[1])
	assert.Equal(COND_V, cpu.Cond)
	assert.True(cpu.Halted)
	// The increment happens before the memory access.
	assert.Equal(int32(2), cpu.Register.PC())

	cpu, mem := newTestCpu(t,
		word(OP_SUB, COND_ALWAYS, 2, 0, 0, 1),
		word(OP_STORE, COND_ALWAYS, 1, 2, 0, 0),
		wordHalt,
	)
	cpu.Register[1] = 77

	halt, err = cpu.Run(0, false)
	assert.Equal(HALT_FAULT, halt)
	assert.ErrorIs(err, memory.ErrSegFault)
	assert.ErrorIs(err, ErrStore)
	assert.Equal(int32(wordHalt), mem.Cell[2])
}

func TestCpu_FetchFault(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t)

	halt, err := cpu.Run(512, false)
	assert.Equal(HALT_FAULT, halt)
	assert.ErrorIs(err, ErrFetch)
	assert.ErrorIs(err, memory.ErrSegFault)
	assert.Equal(int32(512), cpu.Register.PC())
	assert.Equal(0, cpu.Ticks)

	// Nothing was fetched, so there is no instruction to show.
	var fault *ErrFault
	if assert.ErrorAs(err, &fault) {
		assert.Equal(int32(512), fault.Addr)
		assert.Contains(err.Error(), "fault at 512: ")
		assert.NotContains(err.Error(), "HALT")
	}

	// Running off the end of memory.
	small := memory.NewMemory(4)
	for addr := range int32(4) {
		assert.NoError(small.Put(addr, word(OP_ADD, COND_ALWAYS, 1, 1, 0, 1)))
	}
	cpu = NewCpu(small)
	halt, err = cpu.Run(0, false)
	assert.Equal(HALT_FAULT, halt)
	assert.ErrorIs(err, ErrFetch)
	assert.Equal(4, cpu.Ticks)
}

func TestCpu_InvalidOpcode(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t,
		word(OP_ADD, COND_ALWAYS, 1, 0, 0, 1),
		word(OpCode(7), COND_NEVER, 1, 0, 0, 1),
		wordHalt,
	)

	halt, err := cpu.Run(0, false)
	assert.Equal(HALT_FAULT, halt)
	assert.ErrorIs(err, ErrOpcodeInvalid)
	assert.Equal(int32(1), cpu.Register.PC())
	assert.Equal(int32(1), cpu.Register[1])
	assert.Equal(COND_V, cpu.Cond)
}

func TestCpu_Overflow(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t,
		word(OP_LOAD, COND_ALWAYS, 1, 0, 0, 3),
		word(OP_ADD, COND_ALWAYS, 1, 1, 0, 1),
		wordHalt,
		math.MaxInt32,
	)

	halt, err := cpu.Run(0, false)
	assert.Equal(HALT_FAULT, halt)
	assert.ErrorIs(err, ErrOverflow)
	assert.Equal(int32(math.MaxInt32), cpu.Register[1])
	assert.Equal(int32(1), cpu.Register.PC())

	// Displacement added to a full register.
	cpu, _ = newTestCpu(t,
		word(OP_ADD, COND_ALWAYS, 1, 0, 2, 1),
		wordHalt,
	)
	cpu.Register[2] = math.MaxInt32

	halt, err = cpu.Run(0, false)
	assert.Equal(HALT_FAULT, halt)
	assert.ErrorIs(err, ErrOverflow)
	assert.Equal(int32(0), cpu.Register[1])
}

func TestCpu_StepLimit(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t,
		word(OP_ADD, COND_ALWAYS, 15, 0, 15, 0), // spin
	)
	cpu.StepLimit = 10

	halt, err := cpu.Run(0, false)
	assert.Equal(HALT_LIMIT, halt)
	assert.ErrorIs(err, ErrStepLimit)
	assert.False(cpu.Halted)
	assert.Equal(10, cpu.Ticks)
	assert.Equal(int32(0), cpu.Register.PC())
}

func TestCpu_Observer(t *testing.T) {
	assert := assert.New(t)

	program := []int32{
		word(OP_ADD, COND_ALWAYS, 1, 0, 0, 2),
		word(OP_ADD, COND_ALWAYS, 1, 1, 0, 3),
		wordHalt,
	}
	cpu, _ := newTestCpu(t, program...)

	var steps []Step
	var r1 []int32
	cpu.Observer = func(step Step) {
		steps = append(steps, step)
		r1 = append(r1, cpu.Register[1])
		// The program counter still holds the fetch address.
		assert.Equal(step.Addr, cpu.Register.PC())
	}

	halt, err := cpu.Run(0, false)
	assert.NoError(err)
	assert.Equal(HALT_NORMAL, halt)

	assert.Len(steps, 3)
	for n, step := range steps {
		assert.Equal(int32(n), step.Addr)
		assert.Equal(program[n], step.Word)
		assert.Equal(Decode(program[n]), step.Instr)
	}

	// Observed before each instruction changed anything.
	assert.Equal([]int32{0, 2, 5}, r1)
}

func TestCpu_SingleStep(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t,
		word(OP_ADD, COND_ALWAYS, 1, 0, 0, 2),
		word(OP_ADD, COND_ALWAYS, 1, 1, 0, 3),
		wordHalt,
	)

	var pauses []int
	cpu.Pause = func(tick int) {
		pauses = append(pauses, tick)
	}

	halt, err := cpu.Run(0, true)
	assert.NoError(err)
	assert.Equal(HALT_NORMAL, halt)
	assert.Equal([]int{0, 1, 2}, pauses)
	assert.Equal(int32(5), cpu.Register[1])

	// Not single stepping: no pauses.
	pauses = nil
	cpu.Reset()
	_, err = cpu.Run(0, false)
	assert.NoError(err)
	assert.Nil(pauses)
}

func TestCpu_RunResumes(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t,
		wordHalt,
		word(OP_ADD, COND_ALWAYS, 1, 0, 0, 1),
		wordHalt,
	)

	halt, err := cpu.Run(0, false)
	assert.NoError(err)
	assert.Equal(HALT_NORMAL, halt)
	assert.Equal(int32(0), cpu.Register[1])

	halt, err = cpu.Run(1, false)
	assert.NoError(err)
	assert.Equal(HALT_NORMAL, halt)
	assert.Equal(int32(1), cpu.Register[1])
	assert.Equal(int32(2), cpu.Register.PC())
}
