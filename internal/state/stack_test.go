package state

import "testing"

func TestStackPushPop(t *testing.T) {
	s := NewStack[string](2)
	s.Push("a")
	s.Push("b")

	if got := s.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
	if top, ok := s.Peek(); !ok || top != "b" {
		t.Fatalf("Peek() = %q, %v", top, ok)
	}
	if v, ok := s.Pop(); !ok || v != "b" {
		t.Fatalf("Pop() = %q, %v", v, ok)
	}
	if s.Contains("b") {
		t.Fatal("Contains(b) after pop = true")
	}
	if !s.Contains("a") {
		t.Fatal("Contains(a) = false")
	}
	if got := s.Items(); len(got) != 1 || got[0] != "a" {
		t.Fatalf("Items() = %v", got)
	}
}

func TestStackContainsCountsDuplicates(t *testing.T) {
	s := NewStack[int](0)
	s.Push(1)
	s.Push(1)
	s.Pop()
	if !s.Contains(1) {
		t.Fatal("Contains(1) = false with one copy left")
	}
	s.Pop()
	if s.Contains(1) {
		t.Fatal("Contains(1) = true on empty stack")
	}
}

func TestStackEmpty(t *testing.T) {
	s := NewStack[string](-1)
	if _, ok := s.Pop(); ok {
		t.Fatal("Pop() on empty stack ok = true")
	}
	if _, ok := s.Peek(); ok {
		t.Fatal("Peek() on empty stack ok = true")
	}

	var nilStack *Stack[string]
	if nilStack.Len() != 0 || nilStack.Contains("x") || nilStack.Items() != nil {
		t.Fatal("nil stack not empty")
	}
}
