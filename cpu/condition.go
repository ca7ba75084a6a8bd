package cpu

import (
	"strings"
)

// CondFlag is a set of condition bits. The CPU condition holds exactly one
// of M, Z, P or V once an instruction has executed; an instruction predicate
// may hold any combination.
type CondFlag uint8

const (
	COND_M = CondFlag(1 << 0) // Minus (negative result)
	COND_Z = CondFlag(1 << 1) // Zero
	COND_P = CondFlag(1 << 2) // Positive
	COND_V = CondFlag(1 << 3) // Overflow or other fault

	COND_NEVER  = CondFlag(0)
	COND_ALWAYS = COND_M | COND_Z | COND_P
)

const condLetters = "MZPV"

// Match returns true if the condition is a member of the predicate.
func (cond CondFlag) Match(pred CondFlag) bool {
	return cond&pred != COND_NEVER
}

// String returns ALWAYS, NEVER, or the member letters in MZPV order.
func (cond CondFlag) String() string {
	switch cond {
	case COND_ALWAYS:
		return "ALWAYS"
	case COND_NEVER:
		return "NEVER"
	}

	var text strings.Builder
	for n := range len(condLetters) {
		if cond&(1<<n) != 0 {
			text.WriteByte(condLetters[n])
		}
	}

	return text.String()
}

// ParseCond parses a predicate: ALWAYS, NEVER, or a set of M, Z, P, V letters.
func ParseCond(text string) (cond CondFlag, err error) {
	switch text {
	case "ALWAYS":
		cond = COND_ALWAYS
		return
	case "NEVER":
		cond = COND_NEVER
		return
	case "":
		err = ErrPredicateInvalid
		return
	}

	for _, letter := range text {
		n := strings.IndexRune(condLetters, letter)
		if n < 0 {
			err = ErrPredicateInvalid
			return
		}
		cond |= CondFlag(1 << n)
	}

	return
}

// FlagOf classifies a result as M, Z or P.
func FlagOf(result int32) CondFlag {
	switch {
	case result < 0:
		return COND_M
	case result == 0:
		return COND_Z
	default:
		return COND_P
	}
}
