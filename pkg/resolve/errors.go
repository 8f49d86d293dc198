package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/strictemit/pkg/metadata"
)

// Sentinels for errors.Is. Every resolver error matches exactly one of them,
// except AmbiguousSignatureError which also matches ErrAmbiguousMember.
var (
	ErrMemberNotFound     = errors.New("member not found")
	ErrAmbiguousMember    = errors.New("ambiguous member")
	ErrAmbiguousSignature = errors.New("ambiguous signature")
	ErrInvalidQuery       = errors.New("invalid member query")
)

// MemberNotFoundError reports that no member matched a query.
type MemberNotFoundError struct {
	Type         metadata.TypeHandle
	Kind         metadata.MemberKind
	Name         string
	Signature    metadata.Signature
	HasSignature bool
	UnknownType  bool // the declaring type itself is not declared
}

func (e *MemberNotFoundError) Error() string {
	if e.UnknownType {
		return fmt.Sprintf("%s: type %s is not declared", ErrMemberNotFound, e.Type)
	}
	switch {
	case e.Kind == metadata.KindConstructor:
		return fmt.Sprintf("%s: no constructor %s::.ctor%s", ErrMemberNotFound, e.Type, e.Signature)
	case e.HasSignature:
		return fmt.Sprintf("%s: no method %s::%s%s", ErrMemberNotFound, e.Type, e.Name, e.Signature)
	default:
		return fmt.Sprintf("%s: no method named %s on %s", ErrMemberNotFound, e.Name, e.Type)
	}
}

func (e *MemberNotFoundError) Is(target error) bool {
	return target == ErrMemberNotFound
}

// AmbiguousMemberError reports that a name-only method query matched more
// than one overload. The caller must supply a signature.
type AmbiguousMemberError struct {
	Type       metadata.TypeHandle
	Name       string
	Candidates []metadata.MemberDescriptor
}

func (e *AmbiguousMemberError) Error() string {
	return fmt.Sprintf("%s: %s::%s has %d overloads, a signature is required: %s",
		ErrAmbiguousMember, e.Type, e.Name, len(e.Candidates), candidateList(e.Candidates))
}

func (e *AmbiguousMemberError) Is(target error) bool {
	return target == ErrAmbiguousMember
}

// AmbiguousSignatureError reports that the metadata source declared more
// than one member matching a full signature. This happens only when a source
// allows members that differ in traits the query cannot express, such as
// return type or static-ness.
type AmbiguousSignatureError struct {
	Type       metadata.TypeHandle
	Kind       metadata.MemberKind
	Name       string
	Signature  metadata.Signature
	Candidates []metadata.MemberDescriptor
}

func (e *AmbiguousSignatureError) Error() string {
	return fmt.Sprintf("%s: %d members of %s match %s%s: %s",
		ErrAmbiguousSignature, len(e.Candidates), e.Type, e.Name, e.Signature, candidateList(e.Candidates))
}

func (e *AmbiguousSignatureError) Is(target error) bool {
	return target == ErrAmbiguousSignature || target == ErrAmbiguousMember
}

// InvalidQueryError reports a query that cannot be resolved as written.
type InvalidQueryError struct {
	Query  metadata.Query
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("%s %s: %s", ErrInvalidQuery, e.Query, e.Reason)
}

func (e *InvalidQueryError) Is(target error) bool {
	return target == ErrInvalidQuery
}

func candidateList(ms []metadata.MemberDescriptor) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = m.String()
	}
	return strings.Join(parts, "; ")
}
