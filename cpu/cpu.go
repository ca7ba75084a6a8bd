package cpu

import (
	"errors"
	"fmt"
	"log"
	"math"
)

// Memory is the bus the CPU fetches instructions and data through.
// The CPU does not own the memory behind it.
type Memory interface {
	Get(addr int32) (value int32, err error)
	Put(addr int32, value int32) (err error)
}

// Step is the observation made after an instruction is decoded and
// before it changes any machine state.
type Step struct {
	Addr  int32       // Program counter at fetch.
	Word  int32       // Raw instruction word.
	Instr Instruction // Decoded instruction.
}

// Cpu is the simulation context of the Duck Machine processor.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Memory Memory // Connection to main memory.

	Register RegisterFile // r0 reads as zero, r15 is the program counter.
	Cond     CondFlag     // Current condition.
	Halted   bool         // Halt latch.
	Reason   Halt         // Why the last run stopped.

	Ticks int // Steps executed since reset, including skipped ones.

	StepLimit int             // If non-zero, Run stops after this many steps.
	Observer  func(step Step) // Called before each instruction executes.
	Pause     func(tick int)  // Called between steps when single stepping.

	alu Alu
}

// NewCpu creates a CPU attached to mem.
func NewCpu(mem Memory) (cpu *Cpu) {
	cpu = &Cpu{
		Memory: mem,
	}

	cpu.Reset()

	return
}

// Reset clears the registers, condition and halt state.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Register.Reset()
	cpu.Cond = COND_ALWAYS
	cpu.Halted = false
	cpu.Reason = HALT_NONE
	cpu.Ticks = 0
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("% 5s: %v\n", "pc", cpu.Register.PC())
	text += fmt.Sprintf("% 5s: %v\n", "cond", cpu.Cond)
	text += fmt.Sprintf("% 5s: %v\n", "state", cpu.Reason)
	for n, val := range cpu.Register {
		text += fmt.Sprintf("% 5s: %04X_%04X (%d)\n", fmt.Sprintf("r%d", n), uint32(val)>>16, uint32(val)&0xffff, val)
	}

	return
}

// fault latches the halt on a fault and wraps the cause.
func (cpu *Cpu) fault(addr int32, word int32, err error) error {
	cpu.Cond = COND_V
	cpu.Halted = true
	cpu.Reason = HALT_FAULT

	err = &ErrFault{Addr: addr, Word: word, Err: err}
	if cpu.Verbose {
		log.Printf("cpu: %v", err)
	}

	return err
}

// Step performs one fetch, decode, execute cycle.
func (cpu *Cpu) Step() (err error) {
	addr := cpu.Register.PC()

	word, err := cpu.Memory.Get(addr)
	if err != nil {
		return cpu.fault(addr, word, errors.Join(ErrFetch, err))
	}

	instr := Decode(word)

	if cpu.Observer != nil {
		cpu.Observer(Step{Addr: addr, Word: word, Instr: instr})
	}

	if cpu.Verbose {
		log.Printf("cpu: %04d: %08x %v (%v)", addr, uint32(word), instr, cpu.Cond)
	}

	cpu.Ticks++

	if instr.Op == OP_HALT {
		cpu.Halted = true
		cpu.Reason = HALT_NORMAL
		return
	}

	if !instr.Op.Valid() {
		return cpu.fault(addr, word, ErrOpcodeInvalid)
	}

	if !cpu.Cond.Match(instr.Cond) {
		cpu.Register.SetPC(addr + 1)
		return
	}

	a, err := cpu.Register.Get(int(instr.Src1))
	if err != nil {
		return cpu.fault(addr, word, err)
	}

	b, err := cpu.Register.Get(int(instr.Src2))
	if err != nil {
		return cpu.fault(addr, word, err)
	}

	// The displacement is added before the ALU sees the operand.
	b_wide := int64(b) + int64(instr.Offset)
	if b_wide < math.MinInt32 || b_wide > math.MaxInt32 {
		return cpu.fault(addr, word, ErrOverflow)
	}

	result, flag, err := cpu.alu.Compute(instr.Op, a, int32(b_wide))
	cpu.Cond = flag
	if err != nil {
		return cpu.fault(addr, word, err)
	}

	cpu.Register.SetPC(addr + 1)

	if !instr.Op.Memory() {
		if instr.Target != REG_ZERO {
			err = cpu.Register.Put(int(instr.Target), result)
		}
		if err != nil {
			return cpu.fault(addr, word, err)
		}
		return
	}

	switch instr.Op {
	case OP_LOAD:
		var value int32
		value, err = cpu.Memory.Get(result)
		if err != nil {
			return cpu.fault(addr, word, errors.Join(ErrLoad, err))
		}
		err = cpu.Register.Put(int(instr.Target), value)
	case OP_STORE:
		var value int32
		value, err = cpu.Register.Get(int(instr.Target))
		if err != nil {
			return cpu.fault(addr, word, err)
		}
		err = cpu.Memory.Put(result, value)
		if err != nil {
			return cpu.fault(addr, word, errors.Join(ErrStore, err))
		}
	}

	if err != nil {
		return cpu.fault(addr, word, err)
	}

	return
}

// Run steps the CPU from address from until it halts.
//
// In single step mode Pause is called before every step. A non-zero
// StepLimit ends the run with HALT_LIMIT and ErrStepLimit; the halt latch
// is left clear so the run may be resumed.
func (cpu *Cpu) Run(from int32, singleStep bool) (halt Halt, err error) {
	cpu.Halted = false
	cpu.Reason = HALT_NONE
	cpu.Register.SetPC(from)

	for steps := 0; !cpu.Halted; steps++ {
		if cpu.StepLimit > 0 && steps >= cpu.StepLimit {
			cpu.Reason = HALT_LIMIT
			err = ErrStepLimit
			break
		}

		if singleStep && cpu.Pause != nil {
			cpu.Pause(steps)
		}

		err = cpu.Step()
		if err != nil {
			break
		}
	}

	halt = cpu.Reason

	if cpu.Verbose {
		log.Printf("cpu: %v after %v ticks", halt, cpu.Ticks)
	}

	return
}
