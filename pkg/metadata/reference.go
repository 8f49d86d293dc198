package metadata

import (
	"fmt"
	"strings"
)

// ParseReference parses a member reference of the form
// "Type::Name(P1, P2)" into a Query. See the package documentation for the
// accepted forms.
func ParseReference(ref string) (Query, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Query{}, fmt.Errorf("empty member reference")
	}

	head, params, hasSig, err := splitSignature(ref)
	if err != nil {
		return Query{}, fmt.Errorf("member reference %q: %w", ref, err)
	}

	sep := strings.LastIndex(head, "::")
	if sep < 0 {
		return Query{}, fmt.Errorf("member reference %q: missing \"::\" between type and member", ref)
	}
	typeName := strings.TrimSpace(head[:sep])
	name := strings.TrimSpace(head[sep+2:])
	if typeName == "" {
		return Query{}, fmt.Errorf("member reference %q: missing type name", ref)
	}
	if name == "" {
		return Query{}, fmt.Errorf("member reference %q: missing member name", ref)
	}

	if name == ConstructorName {
		if !hasSig {
			return Query{}, fmt.Errorf("member reference %q: constructors need a parameter list", ref)
		}
		return ConstructorQuery(TypeHandle(typeName), params), nil
	}
	if !hasSig {
		return MethodQuery(TypeHandle(typeName), name, nil), nil
	}
	return MethodQuery(TypeHandle(typeName), name, params), nil
}

// ParseType validates a bare type reference.
func ParseType(ref string) (TypeHandle, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty type reference")
	}
	if strings.ContainsAny(ref, "(),") || strings.Contains(ref, "::") {
		return "", fmt.Errorf("type reference %q: unexpected member syntax", ref)
	}
	return TypeHandle(ref), nil
}

// splitSignature separates "head(params)" into head and parsed params.
// hasSig is false when ref carries no parameter list.
func splitSignature(ref string) (head string, params Signature, hasSig bool, err error) {
	open := strings.IndexByte(ref, '(')
	if open < 0 {
		if strings.IndexByte(ref, ')') >= 0 {
			return "", nil, false, fmt.Errorf("unbalanced ')'")
		}
		return ref, nil, false, nil
	}
	if !strings.HasSuffix(ref, ")") {
		return "", nil, false, fmt.Errorf("parameter list must end the reference")
	}

	head = ref[:open]
	inner := strings.TrimSpace(ref[open+1 : len(ref)-1])
	params = Sig()
	if inner == "" {
		return head, params, true, nil
	}

	depth := 0
	start := 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '<', '[':
			depth++
		case '>', ']':
			depth--
			if depth < 0 {
				return "", nil, false, fmt.Errorf("unbalanced %q at offset %d", inner[i], open+1+i)
			}
		case '(', ')':
			return "", nil, false, fmt.Errorf("nested parentheses in parameter list")
		case ',':
			if depth == 0 {
				p, err := paramType(inner[start:i], len(params))
				if err != nil {
					return "", nil, false, err
				}
				params = append(params, p)
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return "", nil, false, fmt.Errorf("unbalanced generic brackets in parameter list")
	}
	p, err := paramType(inner[start:], len(params))
	if err != nil {
		return "", nil, false, err
	}
	params = append(params, p)
	return head, params, true, nil
}

func paramType(s string, index int) (TypeHandle, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("parameter %d: empty type", index)
	}
	return TypeHandle(s), nil
}
