package emit

import (
	"github.com/chazu/strictemit/pkg/bytecode"
	"github.com/chazu/strictemit/pkg/metadata"
	"github.com/chazu/strictemit/pkg/resolve"
)

// CallConstructor resolves the constructor of t taking sig and emits a call
// to it. Nothing is appended if resolution fails.
func CallConstructor(s bytecode.Stream, r *resolve.Resolver, t metadata.TypeHandle, kind CallKind, sig metadata.Signature) (metadata.MemberDescriptor, error) {
	ctor, err := r.ResolveConstructor(t, sig)
	if err != nil {
		return metadata.MemberDescriptor{}, err
	}
	EmitCall(s, ctor, kind)
	return ctor, nil
}

// CallMethod resolves the method name of t and emits a call to it. A nil sig
// resolves by name only. Nothing is appended if resolution fails.
func CallMethod(s bytecode.Stream, r *resolve.Resolver, t metadata.TypeHandle, name string, kind CallKind, sig metadata.Signature) (metadata.MemberDescriptor, error) {
	method, err := r.ResolveMethod(t, name, sig)
	if err != nil {
		return metadata.MemberDescriptor{}, err
	}
	EmitCall(s, method, kind)
	return method, nil
}
