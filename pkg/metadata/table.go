package metadata

import (
	"sort"
	"strings"
	"sync"
)

// ---------------------------------------------------------------------------
// TypeDecl: declared shape of one type
// ---------------------------------------------------------------------------

// TypeDecl records the constructors and methods declared on one type.
// Members keep their declaration order and may be added while the
// declaration is registered and being read. Handle, Base and the flags must
// be set before registration.
type TypeDecl struct {
	Handle    TypeHandle
	Base      TypeHandle // zero for root types
	ValueType bool
	Sealed    bool

	mu      sync.RWMutex
	ctors   []MemberDescriptor
	methods []MemberDescriptor
	byName  map[string][]int // method name -> indices into methods
}

// NewTypeDecl creates an empty declaration for h deriving from base.
func NewTypeDecl(h TypeHandle, base TypeHandle) *TypeDecl {
	return &TypeDecl{
		Handle: h,
		Base:   base,
		byName: make(map[string][]int),
	}
}

// AddConstructor declares a constructor and returns its descriptor.
func (d *TypeDecl) AddConstructor(params ...TypeHandle) MemberDescriptor {
	m := NewConstructor(d.Handle, params)
	d.mu.Lock()
	d.ctors = append(d.ctors, m)
	d.mu.Unlock()
	return m
}

// AddMethod declares a method and returns its descriptor. Declaring two
// methods with the same name and signature is allowed; resolving them with
// that signature is then ambiguous.
func (d *TypeDecl) AddMethod(name string, returns TypeHandle, traits Traits, params ...TypeHandle) MemberDescriptor {
	m := NewMethod(d.Handle, name, params, returns, traits)
	d.mu.Lock()
	d.byName[name] = append(d.byName[name], len(d.methods))
	d.methods = append(d.methods, m)
	d.mu.Unlock()
	return m
}

// Constructors returns a copy of the declared constructors.
func (d *TypeDecl) Constructors() []MemberDescriptor {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]MemberDescriptor(nil), d.ctors...)
}

// Methods returns a copy of all declared methods.
func (d *TypeDecl) Methods() []MemberDescriptor {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]MemberDescriptor(nil), d.methods...)
}

// MethodsNamed returns the declared methods called name.
func (d *TypeDecl) MethodsNamed(name string) []MemberDescriptor {
	d.mu.RLock()
	defer d.mu.RUnlock()
	idx := d.byName[name]
	if len(idx) == 0 {
		return nil
	}
	result := make([]MemberDescriptor, len(idx))
	for i, j := range idx {
		result[i] = d.methods[j]
	}
	return result
}

// String returns a one-line header such as "sealed class Widget : Object"
// or "struct Point".
func (d *TypeDecl) String() string {
	var sb strings.Builder
	if d.Sealed {
		sb.WriteString("sealed ")
	}
	if d.ValueType {
		sb.WriteString("struct ")
	} else {
		sb.WriteString("class ")
	}
	sb.WriteString(string(d.Handle))
	if !d.Base.IsZero() {
		sb.WriteString(" : ")
		sb.WriteString(string(d.Base))
	}
	return sb.String()
}

// ---------------------------------------------------------------------------
// Table: process-wide type registry
// ---------------------------------------------------------------------------

// Table is an in-memory Source. It's safe for concurrent access.
type Table struct {
	mu    sync.RWMutex
	types map[TypeHandle]*TypeDecl
}

// NewTable creates a new empty table.
func NewTable() *Table {
	return &Table{
		types: make(map[TypeHandle]*TypeDecl),
	}
}

// Register adds a declaration to the table.
// Returns the previous declaration with this handle, or nil.
func (t *Table) Register(d *TypeDecl) *TypeDecl {
	t.mu.Lock()
	defer t.mu.Unlock()

	old := t.types[d.Handle]
	t.types[d.Handle] = d
	return old
}

// Declare creates, registers and returns a declaration for h.
func (t *Table) Declare(h TypeHandle, base TypeHandle) *TypeDecl {
	d := NewTypeDecl(h, base)
	t.Register(d)
	return d
}

// Lookup finds a declaration by handle.
func (t *Table) Lookup(h TypeHandle) *TypeDecl {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.types[h]
}

// Has returns true if a type with this handle is registered.
func (t *Table) Has(h TypeHandle) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.types[h]
	return ok
}

// All returns all registered declarations ordered by handle.
func (t *Table) All() []*TypeDecl {
	t.mu.RLock()
	result := make([]*TypeDecl, 0, len(t.types))
	for _, d := range t.types {
		result = append(result, d)
	}
	t.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].Handle < result[j].Handle })
	return result
}

// Len returns the number of registered types.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.types)
}

// Constructors implements Source.
func (t *Table) Constructors(h TypeHandle) ([]MemberDescriptor, bool) {
	d := t.Lookup(h)
	if d == nil {
		return nil, false
	}
	return d.Constructors(), true
}

// Methods implements Source.
func (t *Table) Methods(h TypeHandle, name string) ([]MemberDescriptor, bool) {
	d := t.Lookup(h)
	if d == nil {
		return nil, false
	}
	return d.MethodsNamed(name), true
}

// BaseType implements Source.
func (t *Table) BaseType(h TypeHandle) (TypeHandle, bool) {
	d := t.Lookup(h)
	if d == nil || d.Base.IsZero() {
		return "", false
	}
	return d.Base, true
}

// BaseChain returns the base types of h from immediate base to root, as
// reported by src. The walk stops at a root or at a cycle.
func BaseChain(src Source, h TypeHandle) []TypeHandle {
	var result []TypeHandle
	seen := map[TypeHandle]bool{h: true}
	for base, ok := src.BaseType(h); ok && !seen[base]; base, ok = src.BaseType(base) {
		seen[base] = true
		result = append(result, base)
	}
	return result
}
