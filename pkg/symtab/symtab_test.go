package symtab

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/strictemit/pkg/metadata"
	"github.com/chazu/strictemit/pkg/resolve"
)

const widgetTOML = `
[[type]]
name = "Object"

  [[type.constructor]]

  [[type.method]]
  name = "ToString"
  returns = "string"
  virtual = true

[[type]]
name = "Widget"
base = "Object"
sealed = true

  [[type.constructor]]
  params = []

  [[type.constructor]]
  params = ["int"]

  [[type.method]]
  name = "Resize"
  params = ["int", "int"]

  [[type.method]]
  name = "Create"
  params = ["string"]
  returns = "Widget"
  static = true
`

const serviceYAML = `
type:
  - name: Service
    base: Object
    constructor:
      - params: [string]
    method:
      - name: Run
        virtual: true
      - name: Run
        params: [int]
        returns: bool
      - name: ToString
        returns: string
        virtual: true
        sealed: true
  - name: Point
    value-type: true
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseTOML(t *testing.T) {
	f, err := ParseTOML([]byte(widgetTOML))
	if err != nil {
		t.Fatalf("ParseTOML error: %v", err)
	}
	if len(f.Types) != 2 {
		t.Fatalf("got %d types, want 2", len(f.Types))
	}

	w := f.Types[1]
	if w.Name != "Widget" || w.Base != "Object" || !w.Sealed {
		t.Errorf("Widget entry = %+v", w)
	}
	if len(w.Constructors) != 2 || len(w.Methods) != 2 {
		t.Errorf("Widget has %d ctors, %d methods", len(w.Constructors), len(w.Methods))
	}
	if !w.Methods[1].Static {
		t.Error("Create should be static")
	}
}

func TestParseTOMLUnknownKey(t *testing.T) {
	src := "[[type]]\nname = \"Widget\"\ncolour = \"blue\"\n"
	_, err := ParseTOML([]byte(src))
	if err == nil || !strings.Contains(err.Error(), "unknown keys: type.colour") {
		t.Errorf("ParseTOML error = %v, want unknown key type.colour", err)
	}
}

func TestParseYAML(t *testing.T) {
	f, err := ParseYAML([]byte(serviceYAML))
	if err != nil {
		t.Fatalf("ParseYAML error: %v", err)
	}
	if len(f.Types) != 2 {
		t.Fatalf("got %d types, want 2", len(f.Types))
	}
	if !f.Types[1].ValueType {
		t.Error("Point should be a value type")
	}
	if m := f.Types[0].Methods[2]; !m.Virtual || !m.Sealed {
		t.Errorf("ToString entry = %+v", m)
	}
}

func TestParseYAMLUnknownKey(t *testing.T) {
	src := "type:\n  - name: Widget\n    abstract: true\n"
	if _, err := ParseYAML([]byte(src)); err == nil {
		t.Error("expected an error for unknown field abstract")
	}
}

func TestParseYAMLEmpty(t *testing.T) {
	f, err := ParseYAML(nil)
	if err != nil {
		t.Fatalf("ParseYAML(nil) error: %v", err)
	}
	if len(f.Types) != 0 {
		t.Errorf("got %d types, want 0", len(f.Types))
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	table, err := Load(
		writeFile(t, dir, "base.toml", widgetTOML),
		writeFile(t, dir, "service.yml", serviceYAML),
	)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if table.Len() != 4 {
		t.Errorf("Len() = %d, want 4", table.Len())
	}

	w := table.Lookup("Widget")
	if w == nil || !w.Sealed || w.Base != "Object" {
		t.Fatalf("Widget decl = %+v", w)
	}
	if p := table.Lookup("Point"); p == nil || !p.ValueType {
		t.Errorf("Point decl = %+v", p)
	}

	r := resolve.New(table)

	ctor, err := r.ResolveConstructor("Widget", metadata.Sig("int"))
	if err != nil {
		t.Fatalf("ResolveConstructor error: %v", err)
	}
	if got := ctor.Reference(); got != "Widget::.ctor(int)" {
		t.Errorf("ctor = %s", got)
	}

	create, err := r.ResolveMethod("Widget", "Create", nil)
	if err != nil {
		t.Fatalf("ResolveMethod(Create) error: %v", err)
	}
	if !create.IsStatic() || create.ReturnType() != "Widget" {
		t.Errorf("Create = %s", create)
	}

	run, err := r.ResolveMethod("Service", "Run", metadata.Sig())
	if err != nil {
		t.Fatalf("ResolveMethod(Run, []) error: %v", err)
	}
	if !run.IsVirtual() || run.HasReturn() {
		t.Errorf("Run() = %s", run)
	}

	if _, err := r.ResolveMethod("Service", "Run", nil); !errors.Is(err, resolve.ErrAmbiguousMember) {
		t.Errorf("ResolveMethod(Run) error = %v, want ErrAmbiguousMember", err)
	}
}

func TestLoadVoidReturn(t *testing.T) {
	f, err := ParseTOML([]byte("[[type]]\nname = \"T\"\n[[type.method]]\nname = \"M\"\nreturns = \"void\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	table := metadata.NewTable()
	if err := f.DeclareInto(table); err != nil {
		t.Fatal(err)
	}
	if m := table.Lookup("T").Methods()[0]; m.HasReturn() {
		t.Errorf("void method %s should have no return", m)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"extension", "symbols.json", "{}", "unsupported symbol file extension"},
		{"syntax", "bad.toml", "[[type]\n", "parse error in"},
		{"empty name", "noname.toml", "[[type]]\nbase = \"Object\"\n", "empty type reference"},
		{"ctor method", "ctor.toml", "[[type]]\nname = \"T\"\n[[type.method]]\nname = \".ctor\"\n", "invalid name"},
		{"bad param", "param.toml", "[[type]]\nname = \"T\"\n[[type.constructor]]\nparams = [\"a::b\"]\n", "constructor 0: parameter 0"},
		{"duplicate", "dup.yaml", "type:\n  - name: T\n  - name: T\n", "duplicate type T"},
	}
	for _, tt := range tests {
		path := writeFile(t, dir, tt.file, tt.content)
		_, err := Load(path)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: error = %v, want %q", tt.name, err, tt.want)
		}
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil || !strings.Contains(err.Error(), "cannot read") {
		t.Errorf("missing file: error = %v", err)
	}
}

func TestDeclareIntoIsAtomic(t *testing.T) {
	table := metadata.NewTable()
	table.Declare("Existing", "")

	f := &File{Types: []TypeEntry{{Name: "Fresh"}, {Name: "Existing"}}}
	err := f.DeclareInto(table)
	if !errors.Is(err, ErrDuplicateType) {
		t.Fatalf("DeclareInto error = %v, want ErrDuplicateType", err)
	}
	if table.Has("Fresh") {
		t.Error("Fresh should not be declared when the file is rejected")
	}
}
