// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/duck/cpu"
	"github.com/ezrec/duck/io"
	"github.com/ezrec/duck/memory"
)

const (
	MEM_SIZE = 512 // Words of main memory.
	IO_READ  = 510 // Memory mapped console input.
	IO_PRINT = 511 // Memory mapped console output.
)

var _emulator_defines = map[string]string{
	"MEM_SIZE": fmt.Sprintf("%v", MEM_SIZE),
	"IO_READ":  fmt.Sprintf("%v", IO_READ),
	"IO_PRINT": fmt.Sprintf("%v", IO_PRINT),
}

// Emulator state. CPU + main memory + console.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.

	Ram     *memory.Memory // Main memory.
	Console io.Console     // Console mapped at IO_READ and IO_PRINT.

	last int32 // Address of the last instruction fetched.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Ram:     memory.NewMemory(MEM_SIZE),
		Program: &cpu.Program{},
	}

	emu.Console.Prompt = io.DEFAULT_PROMPT

	// The addresses are fixed and in range, so mapping cannot fail.
	_ = emu.Ram.MapInput(IO_READ, emu.Console.Read)
	_ = emu.Ram.MapOutput(IO_PRINT, emu.Console.Write)

	emu.Cpu = cpu.NewCpu(emu.Ram)
	emu.Cpu.Observer = emu.observe

	return
}

// observe records and optionally traces each step.
func (emu *Emulator) observe(step cpu.Step) {
	emu.last = step.Addr

	if emu.Verbose {
		log.Printf("emu: %v: %04d: %v", emu.lineOf(step.Addr), step.Addr, step.Instr)
	}
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return maps.All(_emulator_defines)
}

// Reset clears memory, loads the program at address 0, drops buffered
// console input and resets the CPU.
func (emu *Emulator) Reset() (err error) {
	emu.Ram.Reset()

	err = emu.Ram.Load(0, emu.Program.Binary())
	if err != nil {
		return
	}

	emu.Console.Rewind()
	emu.Cpu.Reset()
	emu.last = 0

	return
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Pc returns the current program counter.
func (emu *Emulator) Pc() int32 {
	return emu.Cpu.Register.PC()
}

// lineOf returns the source line number of the word at addr.
func (emu *Emulator) lineOf(addr int32) int {
	dbg := emu.Program.Debug(addr)
	if dbg.Line == nil {
		return 0
	}

	return dbg.LineNo
}

// LineNo returns the current line number for the next instruction.
func (emu *Emulator) LineNo() int {
	return emu.lineOf(emu.Pc())
}

// Tick performs a single step of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	emu.Cpu.Verbose = emu.Verbose
	emu.Ram.Verbose = emu.Verbose

	if emu.Cpu.Halted {
		done = true
		return
	}

	err = emu.Cpu.Step()
	if err != nil {
		err = &ErrRuntime{Addr: emu.last, LineNo: emu.lineOf(emu.last), Err: err}
	}

	done = emu.Cpu.Halted

	return
}

// Run executes the program from address 0 until it halts.
func (emu *Emulator) Run(singleStep bool) (halt cpu.Halt, err error) {
	emu.Cpu.Verbose = emu.Verbose
	emu.Ram.Verbose = emu.Verbose

	halt, err = emu.Cpu.Run(0, singleStep)
	if err != nil {
		err = &ErrRuntime{Addr: emu.last, LineNo: emu.lineOf(emu.last), Err: err}
	}

	return
}
