package speech

import "testing"

type fakeEngine struct{ name string }

func (f *fakeEngine) Name() string                        { return f.name }
func (f *fakeEngine) Start(SessionOptions) (Session, error) { return nil, nil }

func TestRegistry_FirstRegisteredIsDefault(t *testing.T) {
	r := NewRegistry()
	a := &fakeEngine{name: "a"}
	b := &fakeEngine{name: "b"}
	r.Register("a", a)
	r.Register("b", b)

	def, err := r.Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}
	if def != a {
		t.Errorf("default engine = %v, want a", def.Name())
	}
}

func TestRegistry_SetDefault(t *testing.T) {
	r := NewRegistry()
	r.Register("a", &fakeEngine{name: "a"})
	r.Register("b", &fakeEngine{name: "b"})
	r.SetDefault("b")

	def, err := r.Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}
	if def.Name() != "b" {
		t.Errorf("default engine = %q, want b", def.Name())
	}
}

func TestRegistry_EmptyDefault(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Default(); err == nil {
		t.Error("expected error from empty registry")
	}
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()
	r.Register("ws", &fakeEngine{name: "ws"})

	if _, ok := r.Get("ws"); !ok {
		t.Error("expected to find registered engine")
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("did not expect to find unregistered engine")
	}
}
