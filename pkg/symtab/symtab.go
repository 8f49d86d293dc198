// Package symtab loads type metadata from TOML or YAML symbol files into a
// metadata.Table.
//
// A symbol file lists types with their constructors and methods:
//
//	[[type]]
//	name = "Widget"
//	base = "Object"
//
//	  [[type.constructor]]
//	  params = ["int"]
//
//	  [[type.method]]
//	  name = "Run"
//	  params = ["int"]
//	  returns = "bool"
//	  virtual = true
//
// The YAML form uses the same keys. Unknown keys are errors in both.
package symtab

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tliron/commonlog"
	"gopkg.in/yaml.v3"

	"github.com/chazu/strictemit/pkg/metadata"
)

// ErrDuplicateType is returned when two symbol entries declare the same type.
var ErrDuplicateType = errors.New("duplicate type")

// File is the decoded form of one symbol file.
type File struct {
	Types []TypeEntry `toml:"type" yaml:"type"`
}

// TypeEntry declares one type.
type TypeEntry struct {
	Name         string             `toml:"name" yaml:"name"`
	Base         string             `toml:"base" yaml:"base"`
	Sealed       bool               `toml:"sealed" yaml:"sealed"`
	ValueType    bool               `toml:"value-type" yaml:"value-type"`
	Constructors []ConstructorEntry `toml:"constructor" yaml:"constructor"`
	Methods      []MethodEntry      `toml:"method" yaml:"method"`
}

// ConstructorEntry declares one constructor overload.
type ConstructorEntry struct {
	Params []string `toml:"params" yaml:"params"`
}

// MethodEntry declares one method overload.
type MethodEntry struct {
	Name    string   `toml:"name" yaml:"name"`
	Params  []string `toml:"params" yaml:"params"`
	Returns string   `toml:"returns" yaml:"returns"`
	Static  bool     `toml:"static" yaml:"static"`
	Virtual bool     `toml:"virtual" yaml:"virtual"`
	Sealed  bool     `toml:"sealed" yaml:"sealed"`
}

func logger() commonlog.Logger {
	return commonlog.GetLogger("strictemit.symtab")
}

// Load reads every path into a fresh table.
func Load(paths ...string) (*metadata.Table, error) {
	table := metadata.NewTable()
	for _, path := range paths {
		if err := LoadInto(table, path); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// LoadInto reads path and declares its types in table. The format is chosen
// by extension: .toml, .yaml or .yml.
func LoadInto(table *metadata.Table, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	var f *File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		f, err = ParseTOML(data)
	case ".yaml", ".yml":
		f, err = ParseYAML(data)
	default:
		return fmt.Errorf("%s: unsupported symbol file extension %q", path, ext)
	}
	if err != nil {
		return fmt.Errorf("parse error in %s: %w", path, err)
	}

	if err := f.DeclareInto(table); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	logger().Infof("loaded %d types from %s", len(f.Types), path)
	return nil
}

// ParseTOML decodes a TOML symbol file. Keys the File shape does not know
// are rejected.
func ParseTOML(data []byte) (*File, error) {
	var f File
	meta, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return &f, nil
}

// ParseYAML decodes a YAML symbol file. Keys the File shape does not know
// are rejected. An empty document yields an empty File.
func ParseYAML(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &f, nil
}

// DeclareInto validates every entry and adds the types to table. Nothing is
// declared unless the whole file is valid.
func (f *File) DeclareInto(table *metadata.Table) error {
	decls := make([]*metadata.TypeDecl, 0, len(f.Types))
	seen := make(map[metadata.TypeHandle]bool, len(f.Types))

	for i, entry := range f.Types {
		decl, err := entry.decl()
		if err != nil {
			return fmt.Errorf("type %d: %w", i, err)
		}
		if seen[decl.Handle] || table.Has(decl.Handle) {
			return fmt.Errorf("%w %s", ErrDuplicateType, decl.Handle)
		}
		seen[decl.Handle] = true
		decls = append(decls, decl)
	}

	for _, decl := range decls {
		table.Register(decl)
	}
	return nil
}

func (e TypeEntry) decl() (*metadata.TypeDecl, error) {
	name, err := metadata.ParseType(e.Name)
	if err != nil {
		return nil, err
	}
	var base metadata.TypeHandle
	if e.Base != "" {
		if base, err = metadata.ParseType(e.Base); err != nil {
			return nil, fmt.Errorf("%s: base: %w", name, err)
		}
	}

	decl := metadata.NewTypeDecl(name, base)
	decl.Sealed = e.Sealed
	decl.ValueType = e.ValueType

	for i, c := range e.Constructors {
		params, err := handles(c.Params)
		if err != nil {
			return nil, fmt.Errorf("%s: constructor %d: %w", name, i, err)
		}
		decl.AddConstructor(params...)
	}

	for i, m := range e.Methods {
		if m.Name == "" || m.Name == metadata.ConstructorName {
			return nil, fmt.Errorf("%s: method %d: invalid name %q", name, i, m.Name)
		}
		params, err := handles(m.Params)
		if err != nil {
			return nil, fmt.Errorf("%s::%s: %w", name, m.Name, err)
		}
		var returns metadata.TypeHandle
		if m.Returns != "" && m.Returns != "void" {
			if returns, err = metadata.ParseType(m.Returns); err != nil {
				return nil, fmt.Errorf("%s::%s: returns: %w", name, m.Name, err)
			}
		}
		decl.AddMethod(m.Name, returns, m.traits(), params...)
	}
	return decl, nil
}

func (m MethodEntry) traits() metadata.Traits {
	var t metadata.Traits
	if m.Static {
		t |= metadata.TraitStatic
	}
	if m.Virtual {
		t |= metadata.TraitVirtual
	}
	if m.Sealed {
		t |= metadata.TraitSealed
	}
	return t
}

func handles(params []string) ([]metadata.TypeHandle, error) {
	out := make([]metadata.TypeHandle, len(params))
	for i, p := range params {
		h, err := metadata.ParseType(p)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
		out[i] = h
	}
	return out, nil
}
