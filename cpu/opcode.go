package cpu

// OpCode selects the operation of an instruction.
type OpCode uint8

//go:generate go tool stringer -type=OpCode -trimprefix=OP_
const (
	OP_HALT  = OpCode(0)
	OP_LOAD  = OpCode(1)
	OP_STORE = OpCode(2)
	OP_ADD   = OpCode(3)
	OP_SUB   = OpCode(4)
	OP_MUL   = OpCode(5)
	OP_DIV   = OpCode(6)
)

// opcodeMap maps assembly mnemonics to opcodes.
var opcodeMap = map[string]OpCode{
	"HALT":  OP_HALT,
	"LOAD":  OP_LOAD,
	"STORE": OP_STORE,
	"ADD":   OP_ADD,
	"SUB":   OP_SUB,
	"MUL":   OP_MUL,
	"DIV":   OP_DIV,
}

// Valid returns true if the opcode is implemented by the machine.
func (op OpCode) Valid() bool {
	return op <= OP_DIV
}

// Memory returns true for the opcodes that access memory.
func (op OpCode) Memory() bool {
	return op == OP_LOAD || op == OP_STORE
}

// Halt is the reason the CPU stopped.
type Halt int

//go:generate go tool stringer -linecomment -type=Halt
const (
	HALT_NONE   = Halt(0) // running
	HALT_NORMAL = Halt(1) // halted
	HALT_FAULT  = Halt(2) // fault
	HALT_LIMIT  = Halt(3) // step limit
)
