package stack

import (
	"errors"

	"calc/lib/utils/slice"
)

var (
	Underflow = errors.New("stack underflow error")
)

const minGrowth = 4

// Stack is a LIFO of T. The zero value is an empty stack ready to use.
type Stack[T any] struct {
	data []T
	top  int
}

// Push pushes an object onto the stack
func (s *Stack[T]) Push(obj T) {
	if s.top >= len(s.data) {
		n := len(s.data)
		if n < minGrowth {
			n = minGrowth
		}
		s.data = slice.Grow(s.data, n)
		s.data = s.data[:cap(s.data)]
	}
	s.data[s.top] = obj
	s.top++
}

// Pop pops the top element from the stack or returns an Underflow error if there is None
func (s *Stack[T]) Pop() (T, error) {
	var zero T
	if s.top == 0 {
		return zero, Underflow
	}
	s.top--
	ret := s.data[s.top]
	s.data[s.top] = zero
	return ret, nil
}

// Top returns the top element of the stack (without popping) or returns
// an Underflow error if there is none.
func (s *Stack[T]) Top() (T, error) {
	if s.top == 0 {
		var zero T
		return zero, Underflow
	}
	return s.data[s.top-1], nil
}

// Len returns the number of elements in the stack
func (s *Stack[T]) Len() int {
	return s.top
}

// New returns a new stack of type T with room for size elements
func New[T any](size int) Stack[T] {
	return Stack[T]{data: make([]T, size)}
}
