package io

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const DEFAULT_PROMPT = "Quack! Gimme an int! "

// Console provides line oriented integer I/O for the memory mapped
// input and output addresses. It wraps an io.Reader for input and an
// io.Writer for output.
type Console struct {
	Input  io.Reader
	Output io.Writer
	Prompt string // Written to Output before each read.

	input  io.Reader
	reader *bufio.Reader
}

// Rewind drops any buffered input.
func (con *Console) Rewind() {
	con.input = nil
	con.reader = nil
}

// Read prompts for and returns the next integer from the input stream.
// Blank lines are skipped.
func (con *Console) Read() (value int32, err error) {
	if con.Input == nil {
		err = ErrConsoleInput
		return
	}

	if con.reader == nil || con.input != con.Input {
		con.input = con.Input
		// An Input that is already a *bufio.Reader is used as is, so
		// it may be shared with other readers.
		con.reader = bufio.NewReader(con.Input)
	}

	for {
		if len(con.Prompt) > 0 && con.Output != nil {
			_, err = io.WriteString(con.Output, con.Prompt)
			if err != nil {
				err = errors.Join(ErrConsoleOutput, err)
				return
			}
		}

		var line string
		line, err = con.reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || len(line) == 0) {
			err = errors.Join(ErrConsoleInput, err)
			return
		}
		err = nil

		text := strings.TrimSpace(line)
		if len(text) == 0 {
			continue
		}

		var v64 int64
		v64, err = strconv.ParseInt(text, 0, 32)
		if err != nil {
			err = ErrParseWord(text)
			return
		}

		value = int32(v64)
		return
	}
}

// Write prints value to the output stream.
func (con *Console) Write(value int32) (err error) {
	if con.Output == nil {
		err = ErrConsoleOutput
		return
	}

	_, err = fmt.Fprintf(con.Output, "Quack!: %d\n", value)
	if err != nil {
		err = errors.Join(ErrConsoleOutput, err)
	}

	return
}
