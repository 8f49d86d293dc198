package emit

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/chazu/strictemit/pkg/bytecode"
	"github.com/chazu/strictemit/pkg/metadata"
	"github.com/chazu/strictemit/pkg/resolve"
)

// Assemble reads an emission script from src, resolving member references
// with r and appending the instructions to s. It returns the number of
// instructions appended.
//
// One instruction per line; blank lines and text after '#' are ignored:
//
//	call        Widget::.ctor(int)
//	callvirt    Service::Run(int)
//	constrained Point
//	castclass   Widget
//	ldftn       Service::Stop
//	ldvirtftn   Service::Run(int)
//	volatile
//
// The first bad line stops assembly. Instructions from earlier lines stay in
// s; the failing line appends nothing.
func Assemble(src io.Reader, r *resolve.Resolver, s bytecode.Stream) (int, error) {
	scanner := bufio.NewScanner(src)
	count := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if err := assembleLine(line, r, s); err != nil {
			return count, fmt.Errorf("line %d: %w", lineNo, err)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("reading script: %w", err)
	}
	return count, nil
}

func assembleLine(line string, r *resolve.Resolver, s bytecode.Stream) error {
	mnemonic, operand := line, ""
	if i := strings.IndexFunc(line, unicode.IsSpace); i >= 0 {
		mnemonic, operand = line[:i], strings.TrimSpace(line[i:])
	}

	switch strings.TrimSuffix(mnemonic, ".") {
	case "call":
		return withMember(operand, r, func(d metadata.MemberDescriptor) { EmitCall(s, d, Direct) })
	case "callvirt":
		return withMember(operand, r, func(d metadata.MemberDescriptor) { EmitCall(s, d, Virtual) })
	case "ldftn":
		return withMember(operand, r, func(d metadata.MemberDescriptor) { EmitLoadFunctionPointer(s, d) })
	case "ldvirtftn":
		return withMember(operand, r, func(d metadata.MemberDescriptor) { EmitLoadVirtualFunctionPointer(s, d) })
	case "constrained":
		return withType(operand, func(t metadata.TypeHandle) { EmitConstrainedPrefix(s, t) })
	case "castclass":
		return withType(operand, func(t metadata.TypeHandle) { EmitCastClass(s, t) })
	case "volatile":
		if operand != "" {
			return fmt.Errorf("volatile takes no operand, got %q", operand)
		}
		EmitVolatileAccessPrefix(s)
		return nil
	default:
		return fmt.Errorf("unknown instruction %q", mnemonic)
	}
}

func withMember(operand string, r *resolve.Resolver, emit func(metadata.MemberDescriptor)) error {
	if operand == "" {
		return fmt.Errorf("missing member reference")
	}
	q, err := metadata.ParseReference(operand)
	if err != nil {
		return err
	}
	d, err := r.Resolve(q)
	if err != nil {
		return err
	}
	emit(d)
	return nil
}

func withType(operand string, emit func(metadata.TypeHandle)) error {
	t, err := metadata.ParseType(operand)
	if err != nil {
		return err
	}
	emit(t)
	return nil
}
