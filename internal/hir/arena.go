package hir

// Arena stores values addressed by 1-based indices. Values are boxed so that
// pointers returned by Get stay valid while the arena grows.
type Arena[T any] struct {
	data []*T
}

// NewArena returns an arena with room for capHint values.
func NewArena[T any](capHint uint) *Arena[T] {
	return &Arena[T]{data: make([]*T, 0, capHint)}
}

// Allocate appends value and returns its 1-based index.
func (a *Arena[T]) Allocate(value T) uint32 {
	v := value
	a.data = append(a.data, &v)
	return uint32(len(a.data)) // #nosec G115 -- arenas never hold 2^32 items
}

// Get returns the value at index, or nil for the zero index.
func (a *Arena[T]) Get(index uint32) *T {
	if index == 0 || int(index) > len(a.data) {
		return nil
	}
	return a.data[index-1]
}

// Len is the number of allocated values.
func (a *Arena[T]) Len() uint32 {
	return uint32(len(a.data)) // #nosec G115 -- see Allocate
}
