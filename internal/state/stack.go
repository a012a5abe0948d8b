// Package state provides small generic containers for traversal state.
package state

// Stack is a LIFO stack that also answers membership queries, used to track
// the chain of definitions currently being expanded.
type Stack[T comparable] struct {
	items []T
	count map[T]int
}

// NewStack creates a stack with an optional capacity hint.
func NewStack[T comparable](capacity int) *Stack[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Stack[T]{items: make([]T, 0, capacity), count: make(map[T]int, capacity)}
}

// Push adds one value to the stack top.
func (s *Stack[T]) Push(value T) {
	s.items = append(s.items, value)
	s.count[value]++
}

// Pop removes and returns the top value.
func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	if s == nil || len(s.items) == 0 {
		return zero, false
	}
	last := len(s.items) - 1
	value := s.items[last]
	s.items = s.items[:last]
	if s.count[value]--; s.count[value] == 0 {
		delete(s.count, value)
	}
	return value, true
}

// Peek returns the top value without removing it.
func (s *Stack[T]) Peek() (T, bool) {
	var zero T
	if s == nil || len(s.items) == 0 {
		return zero, false
	}
	return s.items[len(s.items)-1], true
}

// Contains reports whether value is on the stack.
func (s *Stack[T]) Contains(value T) bool {
	if s == nil {
		return false
	}
	return s.count[value] > 0
}

// Len reports the current stack depth.
func (s *Stack[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Items returns the stack contents in push order.
// The returned slice aliases the stack; do not modify or retain it.
func (s *Stack[T]) Items() []T {
	if s == nil {
		return nil
	}
	return s.items
}
