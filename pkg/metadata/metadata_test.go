package metadata

import (
	"sync"
	"testing"
)

func TestSignatureEqual(t *testing.T) {
	tests := []struct {
		a, b Signature
		want bool
	}{
		{Sig(), Sig(), true},
		{nil, Sig(), true},
		{Sig("int"), Sig("int"), true},
		{Sig("int", "string"), Sig("string", "int"), false},
		{Sig("int"), Sig("int", "int"), false},
		{Sig("int", "int"), Sig("int", "int"), true},
	}
	for _, tt := range tests {
		if got := tt.a.Equal(tt.b); got != tt.want {
			t.Errorf("%v.Equal(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSigIsNeverNil(t *testing.T) {
	if Sig() == nil {
		t.Error("Sig() returned nil, want empty non-nil signature")
	}
	if Signature(nil).Clone() != nil {
		t.Error("nil.Clone() should stay nil")
	}
}

func TestDescriptorIsImmutable(t *testing.T) {
	params := Sig("int", "string")
	d := NewMethod("Service", "Run", params, "bool", TraitVirtual)

	params[0] = "float"
	if got := d.Params()[0]; got != "int" {
		t.Errorf("descriptor param changed through constructor argument: got %s", got)
	}

	p := d.Params()
	p[1] = "float"
	if got := d.Params()[1]; got != "string" {
		t.Errorf("descriptor param changed through Params() copy: got %s", got)
	}

	copied := d
	if !copied.Equal(d) {
		t.Error("copy of descriptor should be equal")
	}
}

func TestDescriptorStackShape(t *testing.T) {
	ctor := NewConstructor("Widget", Sig("int"))
	if !ctor.IsConstructor() || ctor.Name() != ConstructorName {
		t.Errorf("constructor descriptor = %v", ctor)
	}
	if ctor.HasReturn() {
		t.Error("constructor should not report a return value")
	}
	if !ctor.HasThis() {
		t.Error("constructor should consume a receiver")
	}

	static := NewMethod("Math", "Abs", Sig("int"), "int", TraitStatic)
	if static.HasThis() {
		t.Error("static method should not consume a receiver")
	}
	if !static.HasReturn() {
		t.Error("Abs should report a return value")
	}
	if static.ArgCount() != 1 {
		t.Errorf("ArgCount() = %d, want 1", static.ArgCount())
	}

	void := NewMethod("Service", "Stop", Sig(), "", 0)
	if void.HasReturn() {
		t.Error("void method should not report a return value")
	}
}

func TestDescriptorString(t *testing.T) {
	d := NewMethod("Service", "Run", Sig("int"), "", TraitVirtual)
	if got, want := d.Reference(), "Service::Run(int)"; got != want {
		t.Errorf("Reference() = %q, want %q", got, want)
	}
	if got, want := d.String(), "virtual void Service::Run(int)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	c := NewConstructor("Widget", nil)
	if got, want := c.String(), "Widget::.ctor()"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestTraitsString(t *testing.T) {
	tests := []struct {
		traits Traits
		want   string
	}{
		{0, "instance"},
		{TraitStatic, "static"},
		{TraitVirtual | TraitSealed, "virtual|sealed"},
	}
	for _, tt := range tests {
		if got := tt.traits.String(); got != tt.want {
			t.Errorf("Traits(%d).String() = %q, want %q", tt.traits, got, tt.want)
		}
	}
}

func TestTableSource(t *testing.T) {
	table := NewTable()
	obj := table.Declare("Object", "")
	obj.AddConstructor()
	obj.AddMethod("ToString", "string", TraitVirtual)

	w := table.Declare("Widget", "Object")
	w.AddConstructor()
	w.AddConstructor("int")
	w.AddMethod("Run", "", 0)
	w.AddMethod("Run", "", 0, "int")
	w.AddMethod("Stop", "", 0)

	var _ Source = table

	ctors, ok := table.Constructors("Widget")
	if !ok || len(ctors) != 2 {
		t.Fatalf("Constructors(Widget) = %v, %v; want 2 constructors", ctors, ok)
	}
	runs, ok := table.Methods("Widget", "Run")
	if !ok || len(runs) != 2 {
		t.Fatalf("Methods(Widget, Run) = %v, %v; want 2 methods", runs, ok)
	}
	if got, _ := table.Methods("Widget", "run"); len(got) != 0 {
		t.Errorf("method names should be case-sensitive, got %v", got)
	}
	if _, ok := table.Methods("Gadget", "Run"); ok {
		t.Error("unknown type should report ok=false")
	}

	if base, ok := table.BaseType("Widget"); !ok || base != "Object" {
		t.Errorf("BaseType(Widget) = %q, %v", base, ok)
	}
	if _, ok := table.BaseType("Object"); ok {
		t.Error("root type should have no base")
	}
	if got := BaseChain(table, "Widget"); len(got) != 1 || got[0] != "Object" {
		t.Errorf("BaseChain(Widget) = %v", got)
	}

	if ms := w.Methods(); len(ms) != 3 || ms[0].Name() != "Run" || ms[2].Name() != "Stop" {
		t.Errorf("Methods() = %v", ms)
	}
	if table.Len() != 2 {
		t.Errorf("Len() = %d, want 2", table.Len())
	}
	all := table.All()
	if len(all) != 2 || all[0].Handle != "Object" {
		t.Errorf("All() not sorted by handle: %v", all)
	}
}

func TestTableRegisterReplaces(t *testing.T) {
	table := NewTable()
	first := table.Declare("Widget", "")
	if old := table.Register(NewTypeDecl("Widget", "")); old != first {
		t.Error("Register should return the replaced declaration")
	}
}

func TestBaseChainStopsOnCycle(t *testing.T) {
	table := NewTable()
	table.Declare("A", "B")
	table.Declare("B", "A")
	if got := BaseChain(table, "A"); len(got) != 1 || got[0] != "B" {
		t.Errorf("BaseChain(A) = %v, want [B]", got)
	}
	if got := BaseChain(table, "Missing"); len(got) != 0 {
		t.Errorf("BaseChain(Missing) = %v, want empty", got)
	}
}

func TestTypeDeclString(t *testing.T) {
	sealed := NewTypeDecl("Widget", "Object")
	sealed.Sealed = true
	point := NewTypeDecl("Point", "")
	point.ValueType = true

	tests := []struct {
		decl *TypeDecl
		want string
	}{
		{NewTypeDecl("Object", ""), "class Object"},
		{sealed, "sealed class Widget : Object"},
		{point, "struct Point"},
	}
	for _, tt := range tests {
		if got := tt.decl.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestTableConcurrentDeclaration(t *testing.T) {
	table := NewTable()
	d := table.Declare("Widget", "")
	d.AddMethod("Run", "", 0)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			if ms, ok := table.Methods("Widget", "Run"); !ok || len(ms) == 0 {
				t.Errorf("Methods(Widget, Run) = %v, %v", ms, ok)
				return
			}
			table.Constructors("Widget")
		}
	}()

	for i := 0; i < 200; i++ {
		d.AddMethod("Run", "", 0, "int")
		d.AddConstructor()
	}
	<-done

	if ms, _ := table.Methods("Widget", "Run"); len(ms) != 201 {
		t.Errorf("Methods(Widget, Run) has %d entries, want 201", len(ms))
	}
}

func TestTableConcurrentReads(t *testing.T) {
	table := NewTable()
	d := table.Declare("Widget", "")
	d.AddMethod("Run", "", 0)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if ms, ok := table.Methods("Widget", "Run"); !ok || len(ms) != 1 {
					t.Errorf("Methods(Widget, Run) = %v, %v", ms, ok)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestParseReference(t *testing.T) {
	tests := []struct {
		ref  string
		want Query
	}{
		{"Widget::.ctor()", ConstructorQuery("Widget", Sig())},
		{"Widget::.ctor(int)", ConstructorQuery("Widget", Sig("int"))},
		{"Service::Run", MethodQuery("Service", "Run", nil)},
		{"Service::Run()", MethodQuery("Service", "Run", Sig())},
		{" Service :: Run ( int , string ) ", MethodQuery("Service", "Run", Sig("int", "string"))},
		{"System.String::Concat(System.String, System.String)",
			MethodQuery("System.String", "Concat", Sig("System.String", "System.String"))},
		{"Map::Put(Pair<int, string>, int[])", MethodQuery("Map", "Put", Sig("Pair<int, string>", "int[]"))},
		{"Outer::Inner::Go()", MethodQuery("Outer::Inner", "Go", Sig())},
	}
	for _, tt := range tests {
		got, err := ParseReference(tt.ref)
		if err != nil {
			t.Errorf("ParseReference(%q) error: %v", tt.ref, err)
			continue
		}
		if got.Type != tt.want.Type || got.Kind != tt.want.Kind || got.Name != tt.want.Name ||
			got.HasSignature != tt.want.HasSignature || !got.Signature.Equal(tt.want.Signature) {
			t.Errorf("ParseReference(%q) = %+v, want %+v", tt.ref, got, tt.want)
		}
	}
}

func TestParseReferenceErrors(t *testing.T) {
	bad := []string{
		"",
		"Widget",
		"::Run()",
		"Widget::()",
		"Widget::.ctor",
		"Service::Run(int",
		"Service::Run(int,)",
		"Service::Run(,int)",
		"Service::Run(List<int)",
		"Service::Run(int>)",
		"Service::Run((int))",
		"Service::Run)",
		"Service::Run() trailing",
	}
	for _, ref := range bad {
		if q, err := ParseReference(ref); err == nil {
			t.Errorf("ParseReference(%q) = %+v, want error", ref, q)
		}
	}
}

func TestParseType(t *testing.T) {
	if h, err := ParseType(" Point "); err != nil || h != "Point" {
		t.Errorf("ParseType(Point) = %q, %v", h, err)
	}
	for _, bad := range []string{"", "Service::Run", "Run()"} {
		if _, err := ParseType(bad); err == nil {
			t.Errorf("ParseType(%q) should fail", bad)
		}
	}
}

func TestQueryString(t *testing.T) {
	if got := MethodQuery("Service", "Run", nil).String(); got != "Service::Run" {
		t.Errorf("String() = %q", got)
	}
	if got := ConstructorQuery("Widget", Sig("int")).String(); got != "Widget::.ctor(int)" {
		t.Errorf("String() = %q", got)
	}
}
