package env

import "testing"

func TestScopeGetFallsThroughToParent(t *testing.T) {
	root := NewScope("root")
	root.Set("x", 1)
	child := root.Child("block")
	child.Set("y", 2)

	if v, ok := child.Get("x"); !ok || v != 1 {
		t.Fatalf("Get(x) from child = (%v, %v), want (1, true)", v, ok)
	}
	if _, ok := root.Get("y"); ok {
		t.Fatal("parent scope should not see child-only bindings")
	}
}

func TestEnvironmentPushPopScope(t *testing.T) {
	e := New()
	root := e.Scope()
	e.PushScope("inner")
	if e.Scope() == root {
		t.Fatal("PushScope should enter a new scope")
	}
	e.PopScope()
	if e.Scope() != root {
		t.Fatal("PopScope should return to the parent scope")
	}
	e.PopScope() // popping the root is a no-op
	if e.Scope() != root {
		t.Fatal("popping the root scope should be a no-op")
	}
}

func TestFrameLIFOOrder(t *testing.T) {
	f := NewFrame()
	f.Push(1)
	f.Push(2)
	f.Push(3)
	if f.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", f.Len())
	}
	if v := f.Pop(); v != 3 {
		t.Fatalf("Pop() = %v, want 3", v)
	}
	if v := f.Pop(); v != 2 {
		t.Fatalf("Pop() = %v, want 2", v)
	}
	if f.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", f.Len())
	}
}

func TestEnvironmentFrameStackIsIndependentOfScopes(t *testing.T) {
	e := New()
	fr := e.PushFrame()
	fr.Push("accumulated")
	if e.TopFrame() != fr {
		t.Fatal("TopFrame should return the just-pushed frame")
	}
	e.PopFrame()
	if e.TopFrame() != nil {
		t.Fatal("TopFrame should be nil once the only frame is popped")
	}
}
