// Package memory implements the word addressed main memory of the Duck Machine.
//
// Every address is checked against the size chosen at construction; an access
// outside [0, size) is a segmentation fault. Individual addresses may be mapped
// to input or output devices, which is how the machine talks to its console.
package memory

import (
	"fmt"
	"log"
)

// InputFunc supplies the value read from a mapped input address.
type InputFunc func() (value int32, err error)

// OutputFunc receives the value written to a mapped output address.
type OutputFunc func(value int32) (err error)

// Memory is a flat array of 32-bit cells.
type Memory struct {
	Verbose bool // Set to log every mapped device access.

	Cell []int32 // Backing store.

	input  map[int32]InputFunc
	output map[int32]OutputFunc
}

// NewMemory creates a zeroed memory of size cells.
func NewMemory(size int) (mem *Memory) {
	mem = &Memory{
		Cell:   make([]int32, size),
		input:  map[int32]InputFunc{},
		output: map[int32]OutputFunc{},
	}

	return
}

// Size returns the number of addressable cells.
func (mem *Memory) Size() int {
	return len(mem.Cell)
}

// String returns a compact hex dump of the non-zero cells.
func (mem *Memory) String() (text string) {
	for addr, value := range mem.Cell {
		if value == 0 {
			continue
		}
		text += fmt.Sprintf("%04d: %08x\n", addr, uint32(value))
	}

	return
}

// check validates addr against the address space.
func (mem *Memory) check(addr int32) (err error) {
	if addr < 0 || int(addr) >= len(mem.Cell) {
		err = &ErrAddress{Addr: addr, Size: len(mem.Cell)}
	}

	return
}

// Get reads the cell at addr, or the mapped input device.
func (mem *Memory) Get(addr int32) (value int32, err error) {
	err = mem.check(addr)
	if err != nil {
		return
	}

	in, ok := mem.input[addr]
	if ok {
		value, err = in()
		if mem.Verbose {
			log.Printf("memory: input %d => %d (%v)", addr, value, err)
		}
		return
	}

	value = mem.Cell[addr]
	return
}

// Put writes value to the cell at addr. A mapped output device is
// handed the value before the cell is updated.
func (mem *Memory) Put(addr int32, value int32) (err error) {
	err = mem.check(addr)
	if err != nil {
		return
	}

	out, ok := mem.output[addr]
	if ok {
		if mem.Verbose {
			log.Printf("memory: output %d <= %d", addr, value)
		}
		err = out(value)
		if err != nil {
			return
		}
	}

	mem.Cell[addr] = value
	return
}

// MapInput routes reads of addr to in.
func (mem *Memory) MapInput(addr int32, in InputFunc) (err error) {
	err = mem.check(addr)
	if err != nil {
		return
	}

	_, ok := mem.input[addr]
	if ok {
		err = ErrMapped
		return
	}

	mem.input[addr] = in
	return
}

// MapOutput routes writes of addr to out.
func (mem *Memory) MapOutput(addr int32, out OutputFunc) (err error) {
	err = mem.check(addr)
	if err != nil {
		return
	}

	_, ok := mem.output[addr]
	if ok {
		err = ErrMapped
		return
	}

	mem.output[addr] = out
	return
}

// Load copies words into memory starting at address at.
func (mem *Memory) Load(at int32, words []int32) (err error) {
	err = mem.check(at)
	if err != nil {
		return
	}

	if int(at)+len(words) > len(mem.Cell) {
		err = ErrLoadLength
		return
	}

	copy(mem.Cell[at:], words)

	return
}

// Reset zeroes every cell. Device mappings are kept.
func (mem *Memory) Reset() {
	clear(mem.Cell)
}
