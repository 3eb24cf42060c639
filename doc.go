// Package pincol provides a growable collection whose slots never move.
//
// A Col hands out stable slot addresses to many goroutines at once. Writers
// call EnsureCapacityFor for the index they own and then write the slot
// directly; the collection never copies or relocates allocated slots, so
// pointers obtained earlier remain valid for the collection's lifetime.
//
// # Quick Start
//
//	col, _ := pincol.NewDoubling[Event]()
//	defer col.Close()
//
//	// Each goroutine owns the indices it claims, for example from a counter.
//	i := int(next.Add(1) - 1)
//	if err := col.EnsureCapacityFor(i); err != nil {
//		return err // *pincol.AllocationError; the call may be retried
//	}
//	col.WriteUnchecked(i, ev)
//
// # Growth
//
// Capacity is published through a single atomic value. Ensuring an index
// below it is one atomic load. Above it, goroutines race to move the growth
// state from Stable to Growing; the winner appends blocks to the storage and
// publishes the new capacity, and every other goroutine waits for that
// episode to end instead of growing on its own. Waiters spin briefly and then
// park, so a slow allocation does not burn CPU.
//
// A failed growth leaves the collection stable and usable. The winner and
// every waiter whose request was at least as large receive the same
// *AllocationError; waiters with smaller requests arbitrate again.
//
// # Storage
//
// The storage package supplies the pinned storages:
//
//   - storage.Split with storage.Doubling blocks (NewDoubling, the default)
//   - storage.Split with storage.Linear blocks (NewLinear)
//   - storage.Fixed, a single block that never grows (NewFixed)
//
// Any storage.Pinned implementation can be wrapped with New. Blocks may be
// accounted against a resource.Controller through WithMemoryAcquirer and
// placed off the Go heap with WithOffHeap.
//
// # Safety
//
// The collection does not track which slots were written and does not stop
// two goroutines from writing the same slot. Builds with the
// pincoldebug tag adds bounds assertions to the unchecked accessors.
package pincol
