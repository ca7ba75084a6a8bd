package cpu

import (
	"fmt"

	"github.com/ezrec/duck/internal"
)

// DM2022 instruction word layout. Bit 31 is reserved.
var (
	fieldOpcode = internal.BitField{From: 26, To: 30}
	fieldCond   = internal.BitField{From: 22, To: 25}
	fieldTarget = internal.BitField{From: 18, To: 21}
	fieldSrc1   = internal.BitField{From: 14, To: 17}
	fieldSrc2   = internal.BitField{From: 10, To: 13}
	fieldOffset = internal.BitField{From: 0, To: 9}
)

// Offset limits of the signed 10-bit displacement.
const (
	OFFSET_MIN = -(1 << 9)
	OFFSET_MAX = (1 << 9) - 1
)

// Instruction is a decoded instruction word.
type Instruction struct {
	Op     OpCode
	Cond   CondFlag // Predicate mask.
	Target uint8
	Src1   uint8
	Src2   uint8
	Offset int32
}

// Decode unpacks an instruction word. Every word decodes; the opcode may
// still be one the machine does not implement.
func Decode(word int32) (instr Instruction) {
	bits := uint32(word)

	instr = Instruction{
		Op:     OpCode(fieldOpcode.Extract(bits)),
		Cond:   CondFlag(fieldCond.Extract(bits)),
		Target: uint8(fieldTarget.Extract(bits)),
		Src1:   uint8(fieldSrc1.Extract(bits)),
		Src2:   uint8(fieldSrc2.Extract(bits)),
		Offset: fieldOffset.ExtractSigned(bits),
	}

	return
}

// Encode packs the instruction into a word. Fields wider than their slot
// are truncated.
func (instr Instruction) Encode() int32 {
	var bits uint32

	bits = fieldOpcode.Insert(bits, uint32(instr.Op))
	bits = fieldCond.Insert(bits, uint32(instr.Cond))
	bits = fieldTarget.Insert(bits, uint32(instr.Target))
	bits = fieldSrc1.Insert(bits, uint32(instr.Src1))
	bits = fieldSrc2.Insert(bits, uint32(instr.Src2))
	bits = fieldOffset.Insert(bits, uint32(instr.Offset))

	return int32(bits)
}

// MakeInstruction builds an instruction from its fields.
func MakeInstruction(op OpCode, cond CondFlag, target, src1, src2 uint8, offset int32) Instruction {
	return Instruction{
		Op:     op,
		Cond:   cond,
		Target: target,
		Src1:   src1,
		Src2:   src2,
		Offset: offset,
	}
}

// String returns the assembly language form, e.g. ADD/P r15,r0,r15[-3].
func (instr Instruction) String() (out string) {
	out = instr.Op.String()
	if instr.Cond != COND_ALWAYS {
		out += "/" + instr.Cond.String()
	}

	out += fmt.Sprintf(" r%d,r%d,r%d", instr.Target, instr.Src1, instr.Src2)
	if instr.Offset != 0 {
		out += fmt.Sprintf("[%d]", instr.Offset)
	}

	return
}
