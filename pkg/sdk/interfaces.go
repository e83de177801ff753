package sdk

import "context"

// --- Functional Interfaces (Interface Segregation) ---

// Lister reads a whole collection.
type Lister[T any] interface {
	List(ctx context.Context) ([]T, error)
}

// Writer creates, replaces and removes records of a collection.
type Writer[T any] interface {
	Create(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, id string, rec T) (T, error)
	Remove(ctx context.Context, id string) error
}

// Remote is the full contract of a remote collection. *Resource[T] implements it.
type Remote[T any] interface {
	Lister[T]
	Writer[T]
}

var _ Remote[struct{}] = (*Resource[struct{}])(nil)
