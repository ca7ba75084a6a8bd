package cpu

import (
	"fmt"
	"iter"
	"strings"
)

// Line is one assembled source line and the word it produced.
type Line struct {
	LineNo    int      // Source line number.
	Addr      int      // Address of the word.
	Words     []string // Source text, split.
	Word      int32    // Assembled word.
	LinkLabel string   // Label to resolve after assembly.
	LinkData  bool     // LinkLabel is stored as an absolute value, not a displacement.
}

// Program is an assembled Duck Machine program.
type Program struct {
	Lines []Line
}

type Debug struct {
	*Line
}

// Debug returns the source line that produced the word at addr.
func (prog *Program) Debug(addr int32) (dbg Debug) {
	for n, ln := range prog.Lines {
		if int(addr) == ln.Addr {
			dbg = Debug{Line: &prog.Lines[n]}
			break
		}
	}

	return
}

// Words iterates over the assembled words by address.
func (prog *Program) Words() iter.Seq2[int32, int32] {
	return func(yield func(addr int32, word int32) bool) {
		for _, ln := range prog.Lines {
			if !yield(int32(ln.Addr), ln.Word) {
				return
			}
		}
	}
}

// Binary returns the memory image of the program, starting at address 0.
func (prog *Program) Binary() (bins []int32) {
	for addr, word := range prog.Words() {
		for int(addr) >= len(bins) {
			bins = append(bins, 0)
		}
		bins[addr] = word
	}

	return
}

// String returns a listing of address, word and source text.
func (prog *Program) String() (text string) {
	for _, ln := range prog.Lines {
		text += fmt.Sprintf("%04d: %08x  ; %d: %v\n", ln.Addr, uint32(ln.Word), ln.LineNo, strings.Join(ln.Words, " "))
	}

	return
}
