// Package resolve turns member queries into member descriptors.
//
// Matching is exact and structural: a constructor or method matches only if
// its parameter types equal the requested signature position by position.
// There is no overload scoring and no implicit conversion; callers that need
// either must pick the signature themselves and pass it explicitly.
//
// Zero matches fail with MemberNotFoundError. A name-only method query that
// finds several overloads fails with AmbiguousMemberError. A full-signature
// query that still finds several members (possible only when the metadata
// source declares members differing in traits a query cannot express) fails
// with AmbiguousSignatureError, which also matches ErrAmbiguousMember.
package resolve

import (
	"github.com/tliron/commonlog"

	"github.com/chazu/strictemit/pkg/metadata"
)

// logger is looked up per call so a backend configured after package init
// still applies.
func logger() commonlog.Logger {
	return commonlog.GetLogger("strictemit.resolve")
}

// DefaultParallelism bounds ResolveAll when no limit is configured.
const DefaultParallelism = 8

// Resolver resolves queries against a metadata source. It holds no mutable
// state and is safe for concurrent use when its source is.
type Resolver struct {
	source      metadata.Source
	inherited   bool
	parallelism int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithInheritedMethods makes method lookup include methods declared on base
// types. A base method is hidden by a more derived method with the same name
// and signature. Constructors are never inherited.
func WithInheritedMethods() Option {
	return func(r *Resolver) { r.inherited = true }
}

// WithParallelism sets how many queries ResolveAll resolves at once.
// Values below 1 are ignored.
func WithParallelism(n int) Option {
	return func(r *Resolver) {
		if n >= 1 {
			r.parallelism = n
		}
	}
}

// New creates a resolver over source.
func New(source metadata.Source, opts ...Option) *Resolver {
	r := &Resolver{
		source:      source,
		parallelism: DefaultParallelism,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve dispatches q to ResolveConstructor or ResolveMethod.
func (r *Resolver) Resolve(q metadata.Query) (metadata.MemberDescriptor, error) {
	switch q.Kind {
	case metadata.KindConstructor:
		if q.Name != "" && q.Name != metadata.ConstructorName {
			return metadata.MemberDescriptor{}, &InvalidQueryError{Query: q, Reason: "constructor queries take no name"}
		}
		return r.ResolveConstructor(q.Type, q.Signature)
	case metadata.KindMethod:
		sig := q.Signature
		if !q.HasSignature {
			sig = nil
		} else if sig == nil {
			sig = metadata.Sig()
		}
		return r.ResolveMethod(q.Type, q.Name, sig)
	default:
		return metadata.MemberDescriptor{}, &InvalidQueryError{Query: q, Reason: "unknown member kind " + q.Kind.String()}
	}
}

// ResolveConstructor finds the constructor of t whose parameters are exactly
// sig. A nil sig is the same as an empty one.
func (r *Resolver) ResolveConstructor(t metadata.TypeHandle, sig metadata.Signature) (metadata.MemberDescriptor, error) {
	ctors, ok := r.source.Constructors(t)
	if !ok {
		return r.fail(&MemberNotFoundError{Type: t, Kind: metadata.KindConstructor, Signature: metadata.Sig(sig...), HasSignature: true, UnknownType: true})
	}

	matches := matchSignature(ctors, sig)
	switch len(matches) {
	case 0:
		return r.fail(&MemberNotFoundError{Type: t, Kind: metadata.KindConstructor, Signature: metadata.Sig(sig...), HasSignature: true})
	case 1:
		return r.found(matches[0])
	default:
		return r.fail(&AmbiguousSignatureError{
			Type:       t,
			Kind:       metadata.KindConstructor,
			Name:       metadata.ConstructorName,
			Signature:  metadata.Sig(sig...),
			Candidates: matches,
		})
	}
}

// ResolveMethod finds the method of t called name. A non-nil sig must match
// exactly; a nil sig matches by name alone and fails if name is overloaded.
func (r *Resolver) ResolveMethod(t metadata.TypeHandle, name string, sig metadata.Signature) (metadata.MemberDescriptor, error) {
	hasSig := sig != nil
	q := metadata.MethodQuery(t, name, sig)
	switch name {
	case "":
		return r.fail(&InvalidQueryError{Query: q, Reason: "method queries need a name"})
	case metadata.ConstructorName:
		return r.fail(&InvalidQueryError{Query: q, Reason: "use a constructor query for " + metadata.ConstructorName})
	}

	matches, known := r.methodCandidates(t, name, sig)
	if !known {
		return r.fail(&MemberNotFoundError{Type: t, Kind: metadata.KindMethod, Name: name, Signature: sig.Clone(), HasSignature: hasSig, UnknownType: true})
	}

	switch {
	case len(matches) == 0:
		return r.fail(&MemberNotFoundError{Type: t, Kind: metadata.KindMethod, Name: name, Signature: sig.Clone(), HasSignature: hasSig})
	case len(matches) == 1:
		return r.found(matches[0])
	case hasSig:
		return r.fail(&AmbiguousSignatureError{
			Type:       t,
			Kind:       metadata.KindMethod,
			Name:       name,
			Signature:  sig.Clone(),
			Candidates: matches,
		})
	default:
		return r.fail(&AmbiguousMemberError{Type: t, Name: name, Candidates: matches})
	}
}

// methodCandidates collects the methods called name that match sig (or all
// of them when sig is nil). With inherited lookup it also searches the base
// chain: a signature query stops at the most derived type with a match, and a
// name-only query gathers every overload not hidden by a more derived one.
// known is false only when t itself is undeclared.
func (r *Resolver) methodCandidates(t metadata.TypeHandle, name string, sig metadata.Signature) (matches []metadata.MemberDescriptor, known bool) {
	levels := []metadata.TypeHandle{t}
	if r.inherited {
		levels = append(levels, metadata.BaseChain(r.source, t)...)
	}

	for i, level := range levels {
		methods, ok := r.source.Methods(level, name)
		if !ok {
			if i == 0 {
				return nil, false
			}
			break
		}
		if sig != nil {
			if found := matchSignature(methods, sig); len(found) > 0 {
				return found, true
			}
			continue
		}
		for _, m := range methods {
			if !hiddenBy(matches, m) {
				matches = append(matches, m)
			}
		}
	}
	return matches, true
}

// hiddenBy reports whether a method declared on a more derived type in
// derived has the same signature as m.
func hiddenBy(derived []metadata.MemberDescriptor, m metadata.MemberDescriptor) bool {
	for _, d := range derived {
		if d.DeclaringType() != m.DeclaringType() && d.Params().Equal(m.Params()) {
			return true
		}
	}
	return false
}

func matchSignature(members []metadata.MemberDescriptor, sig metadata.Signature) []metadata.MemberDescriptor {
	var matches []metadata.MemberDescriptor
	for _, m := range members {
		if m.Params().Equal(sig) {
			matches = append(matches, m)
		}
	}
	return matches
}

func (r *Resolver) found(d metadata.MemberDescriptor) (metadata.MemberDescriptor, error) {
	logger().Debugf("resolved %s", d)
	return d, nil
}

func (r *Resolver) fail(err error) (metadata.MemberDescriptor, error) {
	logger().Infof("%s", err)
	return metadata.MemberDescriptor{}, err
}
