package bytecode

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/chazu/strictemit/pkg/metadata"
)

// cborEncMode uses canonical mode so equal bodies encode to equal bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// wireBody is the CBOR shape of a Body.
type wireBody struct {
	ID      [16]byte     `cbor:"1,keyasint"`
	Version uint16       `cbor:"2,keyasint"`
	Code    []byte       `cbor:"3,keyasint"`
	Types   []string     `cbor:"4,keyasint,omitempty"`
	Members []wireMember `cbor:"5,keyasint,omitempty"`
}

type wireMember struct {
	Kind      uint8    `cbor:"1,keyasint"`
	Traits    uint8    `cbor:"2,keyasint,omitempty"`
	Declaring string   `cbor:"3,keyasint"`
	Name      string   `cbor:"4,keyasint"`
	Returns   string   `cbor:"5,keyasint,omitempty"`
	Params    []string `cbor:"6,keyasint"`
}

// MarshalBody serializes a Body to CBOR bytes.
func MarshalBody(b *Body) ([]byte, error) {
	w := wireBody{
		ID:      b.ID,
		Version: b.Version,
		Code:    b.Code,
	}
	for _, t := range b.Types {
		w.Types = append(w.Types, string(t))
	}
	for _, m := range b.Members {
		params := m.Params()
		wm := wireMember{
			Kind:      uint8(m.Kind()),
			Traits:    uint8(m.Traits()),
			Declaring: string(m.DeclaringType()),
			Name:      m.Name(),
			Returns:   string(m.ReturnType()),
			Params:    make([]string, len(params)),
		}
		for i, p := range params {
			wm.Params[i] = string(p)
		}
		w.Members = append(w.Members, wm)
	}
	return cborEncMode.Marshal(w)
}

// UnmarshalBody deserializes a Body from CBOR bytes.
func UnmarshalBody(data []byte) (*Body, error) {
	var w wireBody
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal body: %w", err)
	}
	if w.Version > BodyVersion {
		return nil, fmt.Errorf("bytecode: body version %d is newer than supported version %d", w.Version, BodyVersion)
	}

	b := &Body{
		ID:      uuid.UUID(w.ID),
		Version: w.Version,
		Code:    w.Code,
	}
	for _, t := range w.Types {
		b.Types = append(b.Types, metadata.TypeHandle(t))
	}
	for i, wm := range w.Members {
		params := metadata.Sig()
		for _, p := range wm.Params {
			params = append(params, metadata.TypeHandle(p))
		}
		m, err := rebuildMember(metadata.MemberKind(wm.Kind), metadata.TypeHandle(wm.Declaring), wm.Name,
			params, metadata.TypeHandle(wm.Returns), metadata.Traits(wm.Traits))
		if err != nil {
			return nil, fmt.Errorf("bytecode: member %d: %w", i, err)
		}
		b.Members = append(b.Members, m)
	}

	if _, err := b.Instructions(); err != nil {
		return nil, fmt.Errorf("bytecode: invalid code section: %w", err)
	}
	return b, nil
}
