// Package metadata models the type information a code generator queries when
// it needs to call into already-declared types.
//
// The package defines three groups of things:
//
//   - Values: TypeHandle, Signature and MemberDescriptor. Handles are opaque
//     lookup keys. Descriptors are immutable, freely copyable references to a
//     single constructor or method; they never own the metadata they were
//     read from.
//
//   - The Source interface: the read-only query surface a resolver needs
//     (constructors of a type, methods of a type by name, and the base type).
//     Anything that can answer these questions can back resolution: the
//     in-memory Table in this package, a parsed symbol table, or a test
//     double.
//
//   - Member references: the textual form "Type::Name(P1, P2)" parsed by
//     ParseReference into a Query.
//
// # Member references
//
//	Widget::.ctor()            constructor taking no parameters
//	Widget::.ctor(int)         constructor taking one int
//	Service::Run               method Run, signature omitted
//	Service::Run()             method Run taking no parameters
//	Map::Put(string, List<int>)
//
// Omitting the parentheses omits the signature; "()" is an explicit empty
// signature. Commas nested inside <...> or [...] do not split parameters.
package metadata
