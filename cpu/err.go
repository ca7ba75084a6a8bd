package cpu

import (
	"errors"

	"github.com/ezrec/duck/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrFetch         = translate.New("fetch")
	ErrLoad          = translate.New("load")
	ErrStore         = translate.New("store")
	ErrRegisterRange = translate.New("register index out of range")
	ErrStepLimit     = translate.New("step limit exceeded")

	// Alu errors
	ErrDivideByZero  = translate.New("divide by zero")
	ErrOverflow      = translate.New("arithmetic overflow")
	ErrOpcodeInvalid = translate.New("opcode invalid")

	// Assembler errors
	ErrEquateSyntax       = translate.New(".equ syntax")
	ErrEquateDuplicate    = translate.New(".equ duplicated")
	ErrLabelDuplicate     = translate.New("label duplicated")
	ErrLabelInvalid       = translate.New("label invalid")
	ErrOpcodeMissing      = translate.New("opcode missing")
	ErrOpcodeValueMissing = translate.New("value missing")
	ErrOpcodeExtraArgs    = translate.New("excessive arguments")
	ErrRegisterInvalid    = translate.New("register invalid")
	ErrPredicateInvalid   = translate.New("predicate invalid")
	ErrOffsetRange        = translate.New("offset out of range")
	ErrDataRange          = translate.New("data out of range")
	ErrInstructionInvalid = translate.New("instruction invalid")
)

// ErrFault describes the instruction that halted the machine on a fault.
type ErrFault struct {
	Addr int32 // Address the instruction was fetched from.
	Word int32 // Raw instruction word.
	Err  error
}

func (err *ErrFault) Error() string {
	// No word was read.
	if errors.Is(err.Err, ErrFetch) {
		return f("fault at %v: %v", err.Addr, err.Err)
	}

	return f("fault at %v [%08x] %v: %v", err.Addr, uint32(err.Word), Decode(err.Word).String(), err.Err)
}

func (err *ErrFault) Unwrap() error {
	return err.Err
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %v '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
