// Package cpu implements the processor and assembler for the Duck Machine.
//
// The CPU has sixteen 32-bit registers, where r0 always reads as zero and r15
// is the program counter, a stateless ALU, and a single condition flag that
// records whether the last executed result was negative (M), zero (Z),
// positive (P), or a fault (V). Every instruction carries a predicate mask and
// is skipped unless the current condition is a member of it. There are no
// branch instructions: a jump is an ADD whose target is r15.
//
// Instruction words are 32 bits wide:
//
//	31     reserved
//	30..26 opcode
//	25..22 predicate
//	21..18 target register
//	17..14 source register 1
//	13..10 source register 2
//	9..0   signed displacement
//
// The assembler accepts the DM2022 assembly language, resolving labels,
// JUMP and DATA pseudo-operations, equates, and compile-time expressions.
package cpu
