// Package emit appends call and memory-access instructions to an
// instruction stream.
//
// Every function takes the stream as its first argument and appends a fixed
// instruction; none of them look anything up or keep state, so none of them
// can fail. Stack shape, prefix placement and operand validity are checked
// later by the runtime's verifier, not here.
package emit

import (
	"fmt"

	"github.com/chazu/strictemit/pkg/bytecode"
	"github.com/chazu/strictemit/pkg/metadata"
)

// CallKind selects how a call binds to its target.
type CallKind uint8

const (
	// Direct binds to the exact member at generation time. Used for
	// constructors, static methods and non-overridable instance methods.
	Direct CallKind = iota

	// Virtual dispatches through the receiver's runtime type; the member
	// only identifies the slot.
	Virtual
)

// String returns a human-readable name for CallKind.
func (k CallKind) String() string {
	switch k {
	case Direct:
		return "direct"
	case Virtual:
		return "virtual"
	default:
		return fmt.Sprintf("CallKind(%d)", k)
	}
}

// Opcode returns the call opcode for k.
func (k CallKind) Opcode() bytecode.Opcode {
	if k == Virtual {
		return bytecode.OpCallVirt
	}
	return bytecode.OpCall
}

// EmitCall appends one call instruction referencing member.
//
//	call     member    (Direct)
//	callvirt member    (Virtual)
//
// The receiver (for instance members) and the arguments in declared order
// must already be on the evaluation stack.
func EmitCall(s bytecode.Stream, member metadata.MemberDescriptor, kind CallKind) {
	s.EmitMember(kind.Opcode(), member)
}

// EmitConstrainedPrefix appends a "constrained." prefix telling the runtime
// to treat the receiver of the following virtual call as an instance of t.
// This lets a value-type receiver call an interface method without boxing.
func EmitConstrainedPrefix(s bytecode.Stream, t metadata.TypeHandle) {
	s.EmitType(bytecode.OpConstrained, t)
}

// EmitCastClass appends a "castclass" instruction.
//
//	ref -> ref   (re-typed as t; null passes)
func EmitCastClass(s bytecode.Stream, t metadata.TypeHandle) {
	s.EmitType(bytecode.OpCastClass, t)
}

// EmitLoadFunctionPointer appends "ldftn", pushing the code address of
// exactly member. No dispatch is involved.
func EmitLoadFunctionPointer(s bytecode.Stream, member metadata.MemberDescriptor) {
	s.EmitMember(bytecode.OpLoadFunction, member)
}

// EmitLoadVirtualFunctionPointer appends "ldvirtftn".
//
//	receiver -> address of the receiver type's implementation of member
func EmitLoadVirtualFunctionPointer(s bytecode.Stream, member metadata.MemberDescriptor) {
	s.EmitMember(bytecode.OpLoadVirtualFunction, member)
}

// EmitVolatileAccessPrefix appends a "volatile." prefix marking the next
// memory access as one the runtime must not cache, reorder or coalesce.
func EmitVolatileAccessPrefix(s bytecode.Stream) {
	s.Emit(bytecode.OpVolatile)
}
