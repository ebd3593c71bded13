package generator

import (
	"github.com/google/uuid"
)

// Generator is an interface that defines a method to generate a new value of type T.
// This can be used to generate unique identifiers, lazily iterate, etc.
type Generator[T any] interface {
	Next() (T, error)
}

// UUIDV4Generator is a generator that produces random (version 4) UUIDs.
// It implements the Generator interface.
type UUIDV4Generator struct{}

func (g *UUIDV4Generator) Next() (uuid.UUID, error) {
	return uuid.NewRandom()
}

var _ Generator[uuid.UUID] = &UUIDV4Generator{}

// SequenceGenerator yields the given values in order and then keeps
// returning the last one. It is meant for deterministic tests.
type SequenceGenerator[T any] struct {
	values []T
	next   int
}

func NewSequenceGenerator[T any](values ...T) *SequenceGenerator[T] {
	return &SequenceGenerator[T]{values: values}
}

func (g *SequenceGenerator[T]) Next() (T, error) {
	var zero T
	if len(g.values) == 0 {
		return zero, nil
	}
	v := g.values[min(g.next, len(g.values)-1)]
	g.next++
	return v, nil
}

var _ Generator[string] = &SequenceGenerator[string]{}
