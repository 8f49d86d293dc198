package bytecode

import (
	"fmt"

	"github.com/chazu/strictemit/pkg/metadata"
)

// Opcode represents a bytecode instruction.
// Opcodes are organized into ranges by category for easy identification.
type Opcode byte

const (
	// ========================================================================
	// Misc (0x00-0x0F)
	// ========================================================================

	OpNop Opcode = 0x00 // No operation

	// ========================================================================
	// Calls (0x20-0x2F)
	// ========================================================================

	OpCall     Opcode = 0x20 // Call exact member: OpCall <member:u16>
	OpCallVirt Opcode = 0x21 // Call through receiver's runtime type: OpCallVirt <member:u16>

	// ========================================================================
	// Function pointers (0x30-0x3F)
	// ========================================================================

	OpLoadFunction        Opcode = 0x30 // Push code address of exact method: OpLoadFunction <member:u16>
	OpLoadVirtualFunction Opcode = 0x31 // Pop receiver, push code address of its override: OpLoadVirtualFunction <member:u16>

	// ========================================================================
	// Type operations (0x40-0x4F)
	// ========================================================================

	OpCastClass Opcode = 0x40 // Pop reference, check type, push it back: OpCastClass <type:u16>

	// ========================================================================
	// Prefixes (0xF0-0xFF) - modify the instruction that follows
	// ========================================================================

	OpConstrained Opcode = 0xF0 // Receiver of next callvirt is treated as: OpConstrained <type:u16>
	OpVolatile    Opcode = 0xF1 // Next memory access must not be cached or reordered
)

// OperandKind says what an opcode's operand token refers to.
type OperandKind uint8

const (
	OperandNone   OperandKind = 0
	OperandMember OperandKind = 1 // token indexes Body.Members
	OperandType   OperandKind = 2 // token indexes Body.Types
)

// String returns a human-readable name for OperandKind.
func (k OperandKind) String() string {
	switch k {
	case OperandNone:
		return "none"
	case OperandMember:
		return "member"
	case OperandType:
		return "type"
	default:
		return fmt.Sprintf("OperandKind(%d)", k)
	}
}

// OpcodeInfo provides metadata about each opcode for debugging and validation.
type OpcodeInfo struct {
	Name      string      // Mnemonic as printed by the disassembler
	StackPop  int         // How many values popped from stack (-1 = depends on member)
	StackPush int         // How many values pushed to stack (-1 = depends on member)
	Operand   OperandKind // What the operand token refers to
	Prefix    bool        // Modifies the following instruction
}

// opcodeInfoTable maps opcodes to their metadata.
var opcodeInfoTable = map[Opcode]OpcodeInfo{
	OpNop: {"nop", 0, 0, OperandNone, false},

	// Calls
	OpCall:     {"call", -1, -1, OperandMember, false},
	OpCallVirt: {"callvirt", -1, -1, OperandMember, false},

	// Function pointers
	OpLoadFunction:        {"ldftn", 0, 1, OperandMember, false},
	OpLoadVirtualFunction: {"ldvirtftn", 1, 1, OperandMember, false},

	// Types
	OpCastClass: {"castclass", 1, 1, OperandType, false},

	// Prefixes
	OpConstrained: {"constrained.", 0, 0, OperandType, true},
	OpVolatile:    {"volatile.", 0, 0, OperandNone, true},
}

// GetOpcodeInfo returns metadata for an opcode.
// Returns a zero OpcodeInfo with name "UNKNOWN" if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))}
}

// IsKnown reports whether op has an entry in the opcode table.
func (op Opcode) IsKnown() bool {
	_, ok := opcodeInfoTable[op]
	return ok
}

// String returns the mnemonic of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// Operand returns what kind of operand op takes.
func (op Opcode) Operand() OperandKind {
	return GetOpcodeInfo(op).Operand
}

// OperandLen returns the number of operand bytes for this opcode.
func (op Opcode) OperandLen() int {
	if op.Operand() == OperandNone {
		return 0
	}
	return 2
}

// InstructionLen returns the total length of an instruction (1 + operand bytes).
func (op Opcode) InstructionLen() int {
	return 1 + op.OperandLen()
}

// IsCall returns true if this opcode invokes a member.
func (op Opcode) IsCall() bool {
	return op == OpCall || op == OpCallVirt
}

// IsPrefix returns true if this opcode modifies the next instruction.
func (op Opcode) IsPrefix() bool {
	return GetOpcodeInfo(op).Prefix
}

// StackEffect returns how many values an instruction pops and pushes. For
// calls the numbers come from the member: the receiver (if any) plus the
// declared arguments are popped, and a result is pushed only if the member
// returns one.
func StackEffect(op Opcode, member metadata.MemberDescriptor) (pop, push int) {
	info := GetOpcodeInfo(op)
	if !op.IsCall() {
		return info.StackPop, info.StackPush
	}
	pop = member.ArgCount()
	if member.HasThis() {
		pop++
	}
	if member.HasReturn() {
		push = 1
	}
	return pop, push
}

// AllOpcodes returns a slice of all defined opcodes.
// Useful for testing that all opcodes have metadata.
func AllOpcodes() []Opcode {
	opcodes := make([]Opcode, 0, len(opcodeInfoTable))
	for op := range opcodeInfoTable {
		opcodes = append(opcodes, op)
	}
	return opcodes
}

// OpcodeCount returns the number of defined opcodes.
func OpcodeCount() int {
	return len(opcodeInfoTable)
}
