// Package bytecode holds the instruction stream that call emission appends
// to: the opcode table, the Stream interface, and Body, a concrete stream
// for one method body.
//
// The format is designed for:
//   - Compact representation (one opcode byte plus an optional 2-byte token)
//   - Fast decoding (fixed-width opcodes, a single operand format)
//   - Easy serialization (binary "SEMB" format or canonical CBOR)
//
// # Opcodes
//
// Only the call family is modelled: call, callvirt, ldftn, ldvirtftn,
// castclass and the constrained. and volatile. prefixes, plus nop. Every
// other instruction family belongs to the code generator hosting the
// stream.
//
// # Operands
//
// An operand is either a member (a metadata.MemberDescriptor) or a type (a
// metadata.TypeHandle). Bodies intern operands into two pools and encode
// the pool index as a big-endian u16 token. Equal operands share a token.
//
// # Prefixes
//
// Prefix opcodes modify the instruction that follows them. The stream does
// not check that a suitable instruction follows; that is the job of the
// runtime's verifier.
package bytecode
