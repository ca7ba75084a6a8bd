package cpu

const (
	REG_ZERO  = 0  // Always reads as zero.
	REG_PC    = 15 // Program counter.
	REG_COUNT = 16
)

// registerMap maps assembly register names to indices.
var registerMap = map[string]uint8{
	"r0": 0, "r1": 1, "r2": 2, "r3": 3,
	"r4": 4, "r5": 5, "r6": 6, "r7": 7,
	"r8": 8, "r9": 9, "r10": 10, "r11": 11,
	"r12": 12, "r13": 13, "r14": 14, "r15": 15,
	"zero": REG_ZERO,
	"pc":   REG_PC,
}

// RegisterFile is the bank of general registers. Writes to r0 are dropped.
type RegisterFile [REG_COUNT]int32

// Get returns the value of register index.
func (rf *RegisterFile) Get(index int) (value int32, err error) {
	if index < 0 || index >= len(rf) {
		err = ErrRegisterRange
		return
	}

	value = rf[index]
	return
}

// Put sets register index to value.
func (rf *RegisterFile) Put(index int, value int32) (err error) {
	if index < 0 || index >= len(rf) {
		err = ErrRegisterRange
		return
	}

	if index != REG_ZERO {
		rf[index] = value
	}

	return
}

// PC returns the program counter.
func (rf *RegisterFile) PC() int32 {
	return rf[REG_PC]
}

// SetPC sets the program counter.
func (rf *RegisterFile) SetPC(addr int32) {
	rf[REG_PC] = addr
}

// Reset zeroes every register.
func (rf *RegisterFile) Reset() {
	clear(rf[:])
}
