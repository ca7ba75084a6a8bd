package cpu

import (
	"math"
)

// Alu is the arithmetic logic unit. It holds no state, so a single
// value may be shared freely.
type Alu struct{}

// Exec performs op on a and b, returning the result and its condition.
// Any fault is reported as (0, COND_V).
func (alu Alu) Exec(op OpCode, a, b int32) (result int32, flag CondFlag) {
	result, flag, _ = alu.Compute(op, a, b)
	return
}

// Compute is Exec with the cause of a COND_V fault.
func (Alu) Compute(op OpCode, a, b int32) (result int32, flag CondFlag, err error) {
	x := int64(a)
	y := int64(b)

	var wide int64
	switch op {
	case OP_ADD, OP_LOAD, OP_STORE:
		// LOAD and STORE only compute the address.
		wide = x + y
	case OP_SUB:
		wide = x - y
	case OP_MUL:
		wide = x * y
	case OP_DIV:
		if y == 0 {
			err = ErrDivideByZero
			break
		}
		wide = floorDiv(x, y)
	case OP_HALT:
		wide = 0
	default:
		err = ErrOpcodeInvalid
	}

	if err == nil && (wide < math.MinInt32 || wide > math.MaxInt32) {
		err = ErrOverflow
	}

	if err != nil {
		flag = COND_V
		return
	}

	result = int32(wide)
	flag = FlagOf(result)

	return
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(x, y int64) (q int64) {
	q = x / y
	if (x%y != 0) && ((x < 0) != (y < 0)) {
		q--
	}

	return
}
