package emulator

import (
	"github.com/ezrec/duck/translate"
)

var f = translate.From

// ErrRuntime locates a runtime error in the running program.
type ErrRuntime struct {
	Addr   int32 // Address of the failing instruction.
	LineNo int   // Source line of Addr, 0 when the program has no source.
	Err    error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo == 0 {
		return f("pc %d: %v", err.Addr, err.Err)
	}

	return f("line %d, pc %d: %v", err.LineNo, err.Addr, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
