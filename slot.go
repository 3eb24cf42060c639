package pincol

// Slot is a handle to one allocated slot. It is only obtainable from
// Col.Slot, so holding one proves the slot was within capacity.
//
// The address behind a Slot never changes. Writing through it is subject to
// the same exclusivity rule as Col.WriteUnchecked.
type Slot[T any] struct {
	ptr   *T
	index int
}

// Index returns the slot's position in the collection.
func (s Slot[T]) Index() int { return s.index }

// Write stores v in the slot.
func (s Slot[T]) Write(v T) { *s.ptr = v }

// Load returns the slot's value.
func (s Slot[T]) Load() T { return *s.ptr }

// Ptr returns the slot's stable address.
func (s Slot[T]) Ptr() *T { return s.ptr }

// Valid reports whether the handle refers to a slot.
func (s Slot[T]) Valid() bool { return s.ptr != nil }
