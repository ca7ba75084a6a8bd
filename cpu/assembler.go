// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":     "0",
	"OFFSET_MIN": fmt.Sprintf("%d", OFFSET_MIN),
	"OFFSET_MAX": fmt.Sprintf("%d", OFFSET_MAX),
}

var (
	reLabel    = regexp.MustCompile(`^([A-Za-z_]\w*):\s*`)
	reName     = regexp.MustCompile(`^[A-Za-z_]\w*$`)
	reParen    = regexp.MustCompile(`\$\([^\$]*\)`)
	reOperand2 = regexp.MustCompile(`^([A-Za-z_]\w*)(?:\[([^\]]+)\])?$`)
)

// Assembler is a two pass assembler for Duck Machine assembly language.
//
// Each source line has the form
//
//	[label:] OPCODE[/PREDICATE] target,src1,src2[[disp]]
//
// with the pseudo-operations JUMP, DATA and .equ, and memory operand
// forms like 'LOAD r1,x' that are resolved relative to the program
// counter.
type Assembler struct {
	Verbose bool   // If set, verbosely logs the assembler actions.
	Lines   []Line // List of generated lines.

	predefine map[string]string // Predefines
	Label     map[string]int    // Map of labels to addresses.
	Equate    map[string]string // Map of equates.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	equate, ok := asm.Equate[word]
	if ok {
		word = equate
	}

	value, err = strconv.ParseInt(word, 0, 64)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	return
}

// registerOf returns the register index named by word.
func (asm *Assembler) registerOf(word string) (reg uint8, err error) {
	equate, ok := asm.Equate[word]
	if ok {
		word = equate
	}

	reg, ok = registerMap[strings.ToLower(word)]
	if !ok {
		err = ErrRegisterInvalid
		return
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key := range asm.Equate {
		var equ int64
		equ, err = asm.valueOf(key)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt64(equ)
	}
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(addr)
	}
	pred["HERE"] = starlark.MakeInt(asm.currentAddr())

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// currentAddr gets the address of the next word.
func (asm *Assembler) currentAddr() int {
	if len(asm.Lines) == 0 {
		return 0
	}

	last := asm.Lines[len(asm.Lines)-1]

	return last.Addr + 1
}

// parseLine strips comments and labels, expands $(...) and handles .equ.
// It returns the remaining instruction text, if any.
func (asm *Assembler) parseLine(line string, lineno int) (text string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	if n := strings.IndexAny(line, "#;"); n >= 0 {
		line = line[:n]
	}
	line = strings.TrimSpace(line)

	for {
		match := reLabel.FindStringSubmatch(line)
		if match == nil {
			break
		}
		label := match[1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}
		_, ok = registerMap[strings.ToLower(label)]
		if ok {
			err = ErrLabelInvalid
			return
		}
		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentAddr()
		line = line[len(match[0]):]
	}

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words := strings.Fields(line)
	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 || !reName.MatchString(words[1]) {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		return
	}

	text = line
	return
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Label = map[string]int{}
	asm.Lines = asm.Lines[:0]
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		line = scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("asm: %v: %v\n", lineno, line)
		}

		var text string
		text, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		if len(text) == 0 {
			continue
		}

		err = asm.parseInstruction(text, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	// Final linking of labels.
	for n := range asm.Lines {
		ln := &asm.Lines[n]

		if len(ln.LinkLabel) == 0 {
			continue
		}

		lineno = ln.LineNo
		line = strings.Join(ln.Words, " ")

		addr, ok := asm.Label[ln.LinkLabel]
		if !ok {
			err = ErrLabelMissing(ln.LinkLabel)
			return
		}

		if ln.LinkData {
			ln.Word = int32(addr)
			continue
		}

		disp := addr - ln.Addr
		if disp < OFFSET_MIN || disp > OFFSET_MAX {
			err = ErrOffsetRange
			return
		}
		instr := Decode(ln.Word)
		instr.Offset = int32(disp)
		ln.Word = instr.Encode()

		if asm.Verbose {
			log.Printf("asm: link %v => %v", ln.LinkLabel, instr)
		}
	}

	prog = &Program{
		Lines: slices.Clone(asm.Lines),
	}

	return
}

// splitOpcode splits OPCODE/PREDICATE into its parts.
func splitOpcode(word string) (op string, cond CondFlag, err error) {
	cond = COND_ALWAYS

	op, pred, has_pred := strings.Cut(strings.ToUpper(word), "/")
	if has_pred {
		cond, err = ParseCond(pred)
	}

	return
}

// parseInstruction assembles a single instruction or DATA word.
func (asm *Assembler) parseInstruction(text string, lineno int) (err error) {
	fields := strings.Fields(text)
	mnemonic := fields[0]
	args := strings.Join(fields[1:], "")

	var operands []string
	if len(args) > 0 {
		operands = strings.Split(args, ",")
	}

	ln := Line{
		LineNo: lineno,
		Addr:   asm.currentAddr(),
		Words:  fields,
	}

	defer func() {
		if err != nil {
			return
		}
		asm.Lines = append(asm.Lines, ln)
	}()

	name, cond, err := splitOpcode(mnemonic)
	if err != nil {
		return
	}

	switch name {
	case "DATA":
		if cond != COND_ALWAYS {
			err = ErrPredicateInvalid
			return
		}
		switch len(operands) {
		case 0:
			return
		case 1:
		default:
			err = ErrOpcodeExtraArgs
			return
		}
		var value int64
		value, err = asm.valueOf(operands[0])
		if err != nil {
			if !reName.MatchString(operands[0]) {
				return
			}
			err = nil
			ln.LinkLabel = operands[0]
			ln.LinkData = true
			return
		}
		// Accept both signed and unsigned 32-bit spellings.
		if value < math.MinInt32 || value > math.MaxUint32 {
			err = ErrDataRange
			return
		}
		ln.Word = int32(uint32(value))
		return
	case "JUMP":
		if len(operands) < 1 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(operands) > 1 {
			err = ErrOpcodeExtraArgs
			return
		}
		if !reName.MatchString(operands[0]) {
			err = ErrLabelInvalid
			return
		}
		ln.Word = MakeInstruction(OP_ADD, cond, REG_PC, REG_ZERO, REG_PC, 0).Encode()
		ln.LinkLabel = operands[0]
		return
	}

	op, ok := opcodeMap[name]
	if !ok {
		err = ErrInstructionInvalid
		return
	}

	var instr Instruction
	switch len(operands) {
	case 0:
		if op != OP_HALT {
			err = ErrOpcodeValueMissing
			return
		}
		instr = MakeInstruction(op, cond, REG_ZERO, REG_ZERO, REG_ZERO, 0)
	case 2:
		// OPCODE rT,label => OPCODE rT,r0,r15[label-here]
		var target uint8
		target, err = asm.registerOf(operands[0])
		if err != nil {
			return
		}
		_, is_reg := registerMap[strings.ToLower(operands[1])]
		if is_reg || !reName.MatchString(operands[1]) {
			err = ErrLabelInvalid
			return
		}
		instr = MakeInstruction(op, cond, target, REG_ZERO, REG_PC, 0)
		ln.LinkLabel = operands[1]
	case 3:
		var target, src1, src2 uint8
		target, err = asm.registerOf(operands[0])
		if err != nil {
			return
		}
		src1, err = asm.registerOf(operands[1])
		if err != nil {
			return
		}
		match := reOperand2.FindStringSubmatch(operands[2])
		if match == nil {
			err = ErrRegisterInvalid
			return
		}
		src2, err = asm.registerOf(match[1])
		if err != nil {
			return
		}
		var disp int64
		if len(match[2]) > 0 {
			disp, err = asm.valueOf(match[2])
			if err != nil {
				return
			}
		}
		if disp < OFFSET_MIN || disp > OFFSET_MAX {
			err = ErrOffsetRange
			return
		}
		instr = MakeInstruction(op, cond, target, src1, src2, int32(disp))
	case 1:
		err = ErrOpcodeValueMissing
		return
	default:
		err = ErrOpcodeExtraArgs
		return
	}

	ln.Word = instr.Encode()

	return
}
