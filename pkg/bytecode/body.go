package bytecode

import (
	"encoding/binary"
	"fmt"

	"fortio.org/safecast"
	"github.com/google/uuid"

	"github.com/chazu/strictemit/pkg/metadata"
)

// BodyVersion is the current body format version.
// Increment when making incompatible changes to the format.
const BodyVersion uint16 = 1

// Magic bytes for serialized bodies: "SEMB" (StrictEmit Method Body)
var BodyMagic = []byte{'S', 'E', 'M', 'B'}

// Stream is the append-only instruction sink emission writes to. Each call
// appends exactly one instruction with zero or one operand. A stream has a
// single writer; implementations need no locking.
type Stream interface {
	// Emit appends an instruction without an operand.
	Emit(op Opcode)

	// EmitMember appends an instruction whose operand is a member.
	EmitMember(op Opcode, member metadata.MemberDescriptor)

	// EmitType appends an instruction whose operand is a type.
	EmitType(op Opcode, t metadata.TypeHandle)
}

// Body is an in-progress method body. It implements Stream.
//
// Each instruction is one opcode byte followed, when the opcode takes an
// operand, by a big-endian u16 token indexing Members or Types. Equal
// operands share one pool entry.
type Body struct {
	// Header
	ID      uuid.UUID // Identity of this body, stable across serialization
	Version uint16    // Body format version

	// Code section
	Code []byte

	// Operand pools
	Types   []metadata.TypeHandle
	Members []metadata.MemberDescriptor
}

// Instruction is one decoded instruction. Member or Type is set according to
// the opcode's operand kind.
type Instruction struct {
	Offset int
	Op     Opcode
	Token  uint16
	Member metadata.MemberDescriptor
	Type   metadata.TypeHandle
}

// NewBody creates a new empty body with a fresh identity.
func NewBody() *Body {
	return &Body{
		ID:      uuid.New(),
		Version: BodyVersion,
		Code:    make([]byte, 0, 32),
	}
}

// AddType adds a type to the pool and returns its token.
// If the type already exists, returns the existing token.
func (b *Body) AddType(t metadata.TypeHandle) uint16 {
	for i, existing := range b.Types {
		if existing == t {
			return uint16(i)
		}
	}
	b.Types = append(b.Types, t)
	return poolToken(len(b.Types) - 1)
}

// AddMember adds a member to the pool and returns its token.
// If an equal member already exists, returns the existing token.
func (b *Body) AddMember(m metadata.MemberDescriptor) uint16 {
	for i, existing := range b.Members {
		if existing.Equal(m) {
			return uint16(i)
		}
	}
	b.Members = append(b.Members, m)
	return poolToken(len(b.Members) - 1)
}

func poolToken(index int) uint16 {
	token, err := safecast.Conv[uint16](index)
	if err != nil {
		panic(fmt.Errorf("operand pool overflow: %w", err))
	}
	return token
}

// Emit implements Stream.
func (b *Body) Emit(op Opcode) {
	b.checkOperand(op, OperandNone)
	b.Code = append(b.Code, byte(op))
}

// EmitMember implements Stream.
func (b *Body) EmitMember(op Opcode, member metadata.MemberDescriptor) {
	b.checkOperand(op, OperandMember)
	b.emitToken(op, b.AddMember(member))
}

// EmitType implements Stream.
func (b *Body) EmitType(op Opcode, t metadata.TypeHandle) {
	b.checkOperand(op, OperandType)
	b.emitToken(op, b.AddType(t))
}

func (b *Body) emitToken(op Opcode, token uint16) {
	b.Code = append(b.Code, byte(op))
	b.Code = binary.BigEndian.AppendUint16(b.Code, token)
}

// checkOperand panics when op is used with the wrong operand kind. That is a
// bug in the emitting code, not a property of the generated program.
func (b *Body) checkOperand(op Opcode, kind OperandKind) {
	if !op.IsKnown() {
		panic(fmt.Errorf("emit of unknown opcode 0x%02X", byte(op)))
	}
	if got := op.Operand(); got != kind {
		panic(fmt.Errorf("%s takes a %s operand, not %s", op, got, kind))
	}
}

// CodeLen returns the length of the code section.
func (b *Body) CodeLen() int {
	return len(b.Code)
}

// Instructions decodes the code section.
func (b *Body) Instructions() ([]Instruction, error) {
	var result []Instruction
	for offset := 0; offset < len(b.Code); {
		instr, err := b.decode(offset)
		if err != nil {
			return nil, err
		}
		result = append(result, instr)
		offset += instr.Op.InstructionLen()
	}
	return result, nil
}

// InstructionCount returns the number of instructions, or -1 if the code
// section cannot be decoded.
func (b *Body) InstructionCount() int {
	instrs, err := b.Instructions()
	if err != nil {
		return -1
	}
	return len(instrs)
}

func (b *Body) decode(offset int) (Instruction, error) {
	op := Opcode(b.Code[offset])
	if !op.IsKnown() {
		return Instruction{}, fmt.Errorf("unknown opcode 0x%02X at offset %d", byte(op), offset)
	}
	instr := Instruction{Offset: offset, Op: op}
	if op.Operand() == OperandNone {
		return instr, nil
	}

	if offset+3 > len(b.Code) {
		return Instruction{}, fmt.Errorf("truncated %s operand at offset %d", op, offset)
	}
	instr.Token = binary.BigEndian.Uint16(b.Code[offset+1:])
	switch op.Operand() {
	case OperandMember:
		if int(instr.Token) >= len(b.Members) {
			return Instruction{}, fmt.Errorf("%s at offset %d: member token %d out of range", op, offset, instr.Token)
		}
		instr.Member = b.Members[instr.Token]
	case OperandType:
		if int(instr.Token) >= len(b.Types) {
			return Instruction{}, fmt.Errorf("%s at offset %d: type token %d out of range", op, offset, instr.Token)
		}
		instr.Type = b.Types[instr.Token]
	}
	return instr, nil
}

// Serialize encodes the body to bytes for storage/transport.
// Format:
//
//	[magic:4] [version:2] [id:16]
//	[code_len:4] [code:...]
//	[type_count:2] [types: str16...]
//	[member_count:2] [members:...]
//
// where each member is
//
//	[kind:1] [traits:1] [declaring:str16] [name:str16] [returns:str16]
//	[param_count:1] [params: str16...]
//
// and str16 is a u16 length followed by the bytes.
func (b *Body) Serialize() ([]byte, error) {
	buf := make([]byte, 0, 26+len(b.Code)+len(b.Types)*16+len(b.Members)*48)

	buf = append(buf, BodyMagic...)
	buf = binary.BigEndian.AppendUint16(buf, b.Version)
	buf = append(buf, b.ID[:]...)

	codeLen, err := sectionLen32(len(b.Code))
	if err != nil {
		return nil, fmt.Errorf("code section: %w", err)
	}
	buf = binary.BigEndian.AppendUint32(buf, codeLen)
	buf = append(buf, b.Code...)

	count, err := safecast.Conv[uint16](len(b.Types))
	if err != nil {
		return nil, fmt.Errorf("too many types: %w", err)
	}
	buf = binary.BigEndian.AppendUint16(buf, count)
	for _, t := range b.Types {
		if buf, err = appendString16(buf, string(t)); err != nil {
			return nil, err
		}
	}

	count, err = safecast.Conv[uint16](len(b.Members))
	if err != nil {
		return nil, fmt.Errorf("too many members: %w", err)
	}
	buf = binary.BigEndian.AppendUint16(buf, count)
	for _, m := range b.Members {
		buf = append(buf, byte(m.Kind()), byte(m.Traits()))
		for _, s := range []string{string(m.DeclaringType()), m.Name(), string(m.ReturnType())} {
			if buf, err = appendString16(buf, s); err != nil {
				return nil, err
			}
		}
		params := m.Params()
		n, err := safecast.Conv[uint8](len(params))
		if err != nil {
			return nil, fmt.Errorf("member %s: too many parameters: %w", m.Reference(), err)
		}
		buf = append(buf, n)
		for _, p := range params {
			if buf, err = appendString16(buf, string(p)); err != nil {
				return nil, err
			}
		}
	}

	return buf, nil
}

// sectionLen32 narrows a section length to its u32 length prefix.
func sectionLen32(n int) (uint32, error) {
	return safecast.Conv[uint32](n)
}

func appendString16(buf []byte, s string) ([]byte, error) {
	n, err := safecast.Conv[uint16](len(s))
	if err != nil {
		return nil, fmt.Errorf("string %.20q... too long: %w", s, err)
	}
	buf = binary.BigEndian.AppendUint16(buf, n)
	return append(buf, s...), nil
}

// reader walks a serialized body and remembers the first error.
type reader struct {
	data []byte
	pos  int
	err  error
}

func (r *reader) need(n int, what string) bool {
	if r.err != nil {
		return false
	}
	if r.pos+n > len(r.data) {
		r.err = fmt.Errorf("unexpected end of body reading %s at pos %d", what, r.pos)
		return false
	}
	return true
}

func (r *reader) u8(what string) uint8 {
	if !r.need(1, what) {
		return 0
	}
	v := r.data[r.pos]
	r.pos++
	return v
}

func (r *reader) u16(what string) uint16 {
	if !r.need(2, what) {
		return 0
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v
}

func (r *reader) u32(what string) uint32 {
	if !r.need(4, what) {
		return 0
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v
}

func (r *reader) bytes(n int, what string) []byte {
	if !r.need(n, what) {
		return nil
	}
	v := make([]byte, n)
	copy(v, r.data[r.pos:r.pos+n])
	r.pos += n
	return v
}

func (r *reader) str16(what string) string {
	n := r.u16(what + " length")
	return string(r.bytes(int(n), what))
}

// Deserialize decodes a body from bytes.
func Deserialize(data []byte) (*Body, error) {
	if len(data) < 22 {
		return nil, fmt.Errorf("body too short: need at least 22 bytes, got %d", len(data))
	}
	if string(data[0:4]) != string(BodyMagic) {
		return nil, fmt.Errorf("invalid body magic: expected %q, got %q", BodyMagic, data[0:4])
	}

	r := &reader{data: data, pos: 4}
	b := &Body{Version: r.u16("version")}
	if b.Version > BodyVersion {
		return nil, fmt.Errorf("body version %d is newer than supported version %d", b.Version, BodyVersion)
	}
	copy(b.ID[:], r.bytes(16, "id"))

	codeLen := r.u32("code length")
	if r.err == nil && int64(codeLen) > int64(len(data)-r.pos) {
		return nil, fmt.Errorf("unexpected end of body reading code section: need %d bytes at pos %d", codeLen, r.pos)
	}
	b.Code = r.bytes(int(codeLen), "code")

	typeCount := r.u16("type count")
	for i := 0; i < int(typeCount) && r.err == nil; i++ {
		b.Types = append(b.Types, metadata.TypeHandle(r.str16(fmt.Sprintf("type %d", i))))
	}

	memberCount := r.u16("member count")
	for i := 0; i < int(memberCount) && r.err == nil; i++ {
		what := fmt.Sprintf("member %d", i)
		kind := metadata.MemberKind(r.u8(what + " kind"))
		traits := metadata.Traits(r.u8(what + " traits"))
		declaring := metadata.TypeHandle(r.str16(what + " declaring type"))
		name := r.str16(what + " name")
		returns := metadata.TypeHandle(r.str16(what + " return type"))
		params := metadata.Sig()
		paramCount := r.u8(what + " param count")
		for j := 0; j < int(paramCount) && r.err == nil; j++ {
			params = append(params, metadata.TypeHandle(r.str16(fmt.Sprintf("%s param %d", what, j))))
		}
		if r.err != nil {
			break
		}

		m, err := rebuildMember(kind, declaring, name, params, returns, traits)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", what, err)
		}
		b.Members = append(b.Members, m)
	}
	if r.err != nil {
		return nil, r.err
	}
	if r.pos != len(data) {
		return nil, fmt.Errorf("%d trailing bytes after body", len(data)-r.pos)
	}

	if _, err := b.Instructions(); err != nil {
		return nil, fmt.Errorf("invalid code section: %w", err)
	}
	return b, nil
}

func rebuildMember(kind metadata.MemberKind, declaring metadata.TypeHandle, name string, params metadata.Signature, returns metadata.TypeHandle, traits metadata.Traits) (metadata.MemberDescriptor, error) {
	switch kind {
	case metadata.KindConstructor:
		if name != metadata.ConstructorName {
			return metadata.MemberDescriptor{}, fmt.Errorf("constructor named %q", name)
		}
		return metadata.NewConstructor(declaring, params), nil
	case metadata.KindMethod:
		return metadata.NewMethod(declaring, name, params, returns, traits), nil
	default:
		return metadata.MemberDescriptor{}, fmt.Errorf("unknown member kind %d", kind)
	}
}
