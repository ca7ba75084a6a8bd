package io

import (
	"github.com/ezrec/duck/translate"
)

var f = translate.From

var (
	// Console errors
	ErrConsoleInput  = translate.New("console input unavailable")
	ErrConsoleOutput = translate.New("console output unavailable")
)

// ErrParseWord is returned for text that is not a 32-bit word.
type ErrParseWord string

func (err ErrParseWord) Error() string {
	return f("'%v' is not a word", string(err))
}

// ErrImageLine locates a bad line in an object image.
type ErrImageLine struct {
	LineNo int
	Err    error
}

func (err *ErrImageLine) Error() string {
	return f("image line %d %v", err.LineNo, err.Err)
}

func (err *ErrImageLine) Unwrap() error {
	return err.Err
}
