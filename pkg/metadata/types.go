package metadata

import (
	"fmt"
	"strings"
)

// ConstructorName is the member name every constructor descriptor carries.
const ConstructorName = ".ctor"

// TypeHandle identifies a declared type. It is only ever used as a lookup
// key; the zero handle means "no type" (for example a void return).
type TypeHandle string

// IsZero reports whether h is the zero handle.
func (h TypeHandle) IsZero() bool {
	return h == ""
}

// String returns the qualified type name, or "void" for the zero handle.
func (h TypeHandle) String() string {
	if h == "" {
		return "void"
	}
	return string(h)
}

// Signature is an ordered list of parameter types. Position matters and the
// same type may appear more than once.
type Signature []TypeHandle

// Sig builds a Signature from type names. Sig() returns an empty, non-nil
// signature, which is different from an omitted (nil) one.
func Sig(types ...TypeHandle) Signature {
	s := make(Signature, len(types))
	copy(s, types)
	return s
}

// Equal reports whether s and other have the same types in the same order.
func (s Signature) Equal(other Signature) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of s. Cloning nil yields nil.
func (s Signature) Clone() Signature {
	if s == nil {
		return nil
	}
	c := make(Signature, len(s))
	copy(c, s)
	return c
}

// String formats the signature as "(T1, T2)".
func (s Signature) String() string {
	parts := make([]string, len(s))
	for i, t := range s {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// MemberKind distinguishes constructors from methods.
type MemberKind uint8

const (
	KindConstructor MemberKind = iota
	KindMethod
)

// String returns a human-readable name for MemberKind.
func (k MemberKind) String() string {
	switch k {
	case KindConstructor:
		return "constructor"
	case KindMethod:
		return "method"
	default:
		return fmt.Sprintf("MemberKind(%d)", k)
	}
}

// Traits are the dispatch-relevant properties of a member as reported by the
// metadata source.
type Traits uint8

const (
	// TraitStatic marks a member with no receiver.
	TraitStatic Traits = 1 << 0

	// TraitVirtual marks a method that occupies an overridable slot.
	TraitVirtual Traits = 1 << 1

	// TraitSealed marks a virtual method that cannot be overridden further.
	TraitSealed Traits = 1 << 2
)

// String lists the set traits, e.g. "static|virtual".
func (t Traits) String() string {
	var parts []string
	if t&TraitStatic != 0 {
		parts = append(parts, "static")
	}
	if t&TraitVirtual != 0 {
		parts = append(parts, "virtual")
	}
	if t&TraitSealed != 0 {
		parts = append(parts, "sealed")
	}
	if len(parts) == 0 {
		return "instance"
	}
	return strings.Join(parts, "|")
}

// MemberDescriptor is a resolved reference to exactly one constructor or
// method. It is a value: copies are independent and nothing reachable from
// it can be mutated.
type MemberDescriptor struct {
	kind      MemberKind
	declaring TypeHandle
	name      string
	params    Signature
	returns   TypeHandle
	traits    Traits
}

// NewConstructor describes a constructor of declaring taking params.
func NewConstructor(declaring TypeHandle, params Signature) MemberDescriptor {
	return MemberDescriptor{
		kind:      KindConstructor,
		declaring: declaring,
		name:      ConstructorName,
		params:    Sig(params...),
	}
}

// NewMethod describes a method of declaring. A zero returns handle means the
// method returns nothing.
func NewMethod(declaring TypeHandle, name string, params Signature, returns TypeHandle, traits Traits) MemberDescriptor {
	return MemberDescriptor{
		kind:      KindMethod,
		declaring: declaring,
		name:      name,
		params:    Sig(params...),
		returns:   returns,
		traits:    traits,
	}
}

// Kind returns whether d is a constructor or a method.
func (d MemberDescriptor) Kind() MemberKind { return d.kind }

// DeclaringType returns the type that declares d.
func (d MemberDescriptor) DeclaringType() TypeHandle { return d.declaring }

// Name returns the member name; constructors are named ".ctor".
func (d MemberDescriptor) Name() string { return d.name }

// ReturnType returns the result type, or the zero handle for none.
func (d MemberDescriptor) ReturnType() TypeHandle { return d.returns }

// Traits returns the static, virtual and sealed flags.
func (d MemberDescriptor) Traits() Traits { return d.traits }

// Params returns a copy of the parameter signature.
func (d MemberDescriptor) Params() Signature {
	return d.params.Clone()
}

// ArgCount is the number of declared parameters, not counting the receiver.
func (d MemberDescriptor) ArgCount() int {
	return len(d.params)
}

// IsConstructor reports whether d describes a constructor.
func (d MemberDescriptor) IsConstructor() bool {
	return d.kind == KindConstructor
}

// IsStatic reports whether d has no receiver.
func (d MemberDescriptor) IsStatic() bool {
	return d.traits&TraitStatic != 0
}

// IsVirtual reports whether d occupies an overridable slot.
func (d MemberDescriptor) IsVirtual() bool {
	return d.traits&TraitVirtual != 0
}

// HasThis reports whether a call to d consumes a receiver.
func (d MemberDescriptor) HasThis() bool {
	return !d.IsStatic()
}

// HasReturn reports whether a call to d pushes a result. Constructors
// invoked through a call instruction push nothing.
func (d MemberDescriptor) HasReturn() bool {
	return d.kind == KindMethod && !d.returns.IsZero()
}

// IsZero reports whether d is the zero descriptor.
func (d MemberDescriptor) IsZero() bool {
	return d.declaring == "" && d.name == ""
}

// Equal reports whether d and other describe the same member with the same
// traits.
func (d MemberDescriptor) Equal(other MemberDescriptor) bool {
	return d.kind == other.kind &&
		d.declaring == other.declaring &&
		d.name == other.name &&
		d.returns == other.returns &&
		d.traits == other.traits &&
		d.params.Equal(other.params)
}

// Reference formats d as a member reference, "Type::Name(P1, P2)".
func (d MemberDescriptor) Reference() string {
	return d.declaring.String() + "::" + d.name + d.params.String()
}

// String implements the Stringer interface.
func (d MemberDescriptor) String() string {
	if d.kind == KindConstructor {
		return d.Reference()
	}
	return fmt.Sprintf("%s %s %s", d.traits, d.returns, d.Reference())
}

// Query is a request to resolve one member. Name is required for methods
// and must be empty for constructors. HasSignature distinguishes an omitted
// signature from an explicitly empty one.
type Query struct {
	Type         TypeHandle
	Kind         MemberKind
	Name         string
	Signature    Signature
	HasSignature bool
}

// ConstructorQuery builds a constructor query with an explicit signature.
func ConstructorQuery(t TypeHandle, params Signature) Query {
	return Query{Type: t, Kind: KindConstructor, Signature: Sig(params...), HasSignature: true}
}

// MethodQuery builds a method query. A nil params omits the signature.
func MethodQuery(t TypeHandle, name string, params Signature) Query {
	q := Query{Type: t, Kind: KindMethod, Name: name}
	if params != nil {
		q.Signature = Sig(params...)
		q.HasSignature = true
	}
	return q
}

// String formats q as a member reference.
func (q Query) String() string {
	name := q.Name
	if q.Kind == KindConstructor {
		name = ConstructorName
	}
	s := q.Type.String() + "::" + name
	if q.HasSignature {
		s += q.Signature.String()
	}
	return s
}

// Source is the read-only metadata surface the resolver queries.
// Implementations must be safe for concurrent use.
type Source interface {
	// Constructors returns the constructors declared on t. The boolean is
	// false when t is not a known type.
	Constructors(t TypeHandle) ([]MemberDescriptor, bool)

	// Methods returns the methods declared on t whose name equals name
	// (case-sensitive). The boolean is false when t is not a known type.
	Methods(t TypeHandle, name string) ([]MemberDescriptor, bool)

	// BaseType returns the base type of t, if it has one.
	BaseType(t TypeHandle) (TypeHandle, bool)
}
