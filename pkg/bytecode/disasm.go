package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing for the body.
func (b *Body) Disassemble() string {
	return b.DisassembleWithName("")
}

// DisassembleWithName returns a human-readable listing with a name header.
func (b *Body) DisassembleWithName(name string) string {
	var sb strings.Builder

	// Header
	if name != "" {
		sb.WriteString(fmt.Sprintf("; === %s ===\n", name))
	}
	sb.WriteString(fmt.Sprintf("; StrictEmit Body v%d\n", b.Version))
	sb.WriteString(fmt.Sprintf("; ID: %s\n", b.ID))
	sb.WriteString("\n")

	// Pools
	if len(b.Types) > 0 {
		sb.WriteString("; Types:\n")
		for i, t := range b.Types {
			sb.WriteString(fmt.Sprintf(";   [%3d] %s\n", i, t))
		}
		sb.WriteString("\n")
	}
	if len(b.Members) > 0 {
		sb.WriteString("; Members:\n")
		for i, m := range b.Members {
			sb.WriteString(fmt.Sprintf(";   [%3d] %s\n", i, m))
		}
		sb.WriteString("\n")
	}

	// Code section
	sb.WriteString("; Code:\n")
	for offset := 0; offset < len(b.Code); {
		line, instrLen := b.disassembleInstruction(offset)
		sb.WriteString(fmt.Sprintf("%04X  %s\n", offset, line))
		if instrLen == 0 {
			break
		}
		offset += instrLen
	}

	return sb.String()
}

// disassembleInstruction disassembles a single instruction at the given offset.
// Returns the formatted string and the instruction length, which is 0 when
// the rest of the code cannot be decoded.
func (b *Body) disassembleInstruction(offset int) (string, int) {
	instr, err := b.decode(offset)
	if err != nil {
		return fmt.Sprintf("<%v>", err), 0
	}

	op := instr.Op
	switch op.Operand() {
	case OperandMember:
		pop, push := StackEffect(op, instr.Member)
		return fmt.Sprintf("%-14s %s  ; #%d stack -%d +%d", op, instr.Member.Reference(), instr.Token, pop, push),
			op.InstructionLen()
	case OperandType:
		return fmt.Sprintf("%-14s %s  ; #%d", op, instr.Type, instr.Token), op.InstructionLen()
	default:
		return op.String(), op.InstructionLen()
	}
}
